// Package paymenttx defines the contract of the payment transaction
// store: durable, indexed, idempotent persistence of cash-in attempts
// with conditional state transitions.
package paymenttx

import (
	"context"
	"time"

	"github.com/amirasaad/walletapi/pkg/domain/payment"
	"github.com/shopspring/decimal"
)

// Filter is an in-memory predicate applied after a storage scan.
type Filter func(*payment.Transaction) bool

// Repository persists payment transactions and their audit log.
//
// Lookup misses, duplicate creations and rejected guards are normal
// outcomes signalled by a (nil, nil) return, not errors: the caller
// treats them as "someone else already advanced this transaction".
// Storage-layer failures propagate unmodified.
type Repository interface {
	// Create writes the transaction unconditionally. Callers that need
	// idempotency must go through TryCreate.
	Create(ctx context.Context, tx *payment.Transaction) error

	// TryCreate creates the transaction unless one already exists for
	// the same (ClientID, ID) pair, in which case it is a no-op
	// returning nil. A nil transaction is rejected with
	// payment.ErrInvalidTransaction before any I/O.
	TryCreate(ctx context.Context, tx *payment.Transaction) (*payment.Transaction, error)

	// GetByTransactionID resolves the transaction through the secondary
	// index, without knowing the owning client.
	GetByTransactionID(ctx context.Context, id string) (*payment.Transaction, error)

	// GetByClientID returns all transactions of a client, unordered.
	GetByClientID(ctx context.Context, clientID string) ([]*payment.Transaction, error)

	// GetLastByDate returns the client's most recently created
	// transaction, or nil if the client has none.
	GetLastByDate(ctx context.Context, clientID string) (*payment.Transaction, error)

	// GetByDateRange scans transactions created between from and to.
	// to is normalized to end-of-day; the upper bound is exclusive.
	// filter, when non-nil, narrows the result in memory.
	GetByDateRange(ctx context.Context, from, to time.Time, filter Filter) ([]*payment.Transaction, error)

	// ScanAndFind scans all transactions and filters them in memory.
	// Intended for ad hoc admin and reporting queries only.
	ScanAndFind(ctx context.Context, filter Filter) ([]*payment.Transaction, error)

	// StartProcessing advances the transaction from Created to
	// Processing, storing the aggregator transaction id (when given)
	// and a freshly generated matching-engine transaction id. The guard
	// is atomic per record: any current status other than Created is a
	// silent no-op returning nil, so the edge fires at most once.
	StartProcessing(ctx context.Context, id string, aggregatorTxID *string) (*payment.Transaction, error)

	// SetAggregatorTransactionID attaches or corrects the external
	// processor's transaction id at any lifecycle stage.
	SetAggregatorTransactionID(ctx context.Context, id, aggregatorTxID string) (*payment.Transaction, error)

	// SetStatus overwrites the status unconditionally. Escape hatch for
	// administrative and failure-path transitions.
	SetStatus(ctx context.Context, id string, status payment.Status) (*payment.Transaction, error)

	// SetAsOk marks the transaction settled: status NotifyProcessed,
	// recording the deposited amount and, when given, the rate.
	SetAsOk(ctx context.Context, id string, depositedAmount decimal.Decimal, rate *decimal.Decimal) (*payment.Transaction, error)

	// AddLog appends an audit-trail entry. Entries are write-once.
	AddLog(ctx context.Context, entry *payment.TransactionEventLog) error

	// GetLogs returns the audit trail of a transaction in chronological
	// order.
	GetLogs(ctx context.Context, transactionID string) ([]*payment.TransactionEventLog, error)
}
