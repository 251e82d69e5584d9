// Package paygate defines the contract for the external payment gateway
// that hosts the actual card payment page. Both aggregators (credit
// voucher and FX paygate) expose the same wire API on different base
// URLs, so a single client contract covers both.
package paygate

import (
	"context"

	"github.com/shopspring/decimal"
)

// URLData is the gateway's answer to a payment URL request: the hosted
// redirect URL plus the return URLs and client-side matching rules.
type URLData struct {
	PaymentURL   string
	OkURL        string
	FailURL      string
	ReloadRegexp string
	URLsRegexp   string
	ErrorMessage string
}

// Client talks to one payment gateway deployment. A client is scoped to
// a single resolved base URL and must be closed after use.
type Client interface {
	// GetURLData asks the gateway for a hosted payment redirect URL for
	// the given order. otherInfo is the free-form JSON billing payload.
	GetURLData(
		ctx context.Context,
		orderID, clientID string,
		amount decimal.Decimal,
		assetID, otherInfo string,
	) (*URLData, error)

	// GetSourceClientID fetches the gateway's source client identifier.
	GetSourceClientID(ctx context.Context) (string, error)

	// Close releases the client's transport resources.
	Close() error
}

// Factory builds a scoped Client for a resolved gateway base URL.
type Factory interface {
	NewClient(serviceURL string) (Client, error)
}
