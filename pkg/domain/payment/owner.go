package payment

import "strings"

// OwnerType is the category of the account initiating a cash-in request.
// Managed trading account variants have no concept of a credit-voucher
// cash-in and always route to the FX paygate.
type OwnerType string

const (
	// OwnerSpot is an ordinary spot trading account.
	OwnerSpot OwnerType = "Spot"
	// OwnerMarginTrading is a managed margin trading account.
	OwnerMarginTrading OwnerType = "MarginTrading"
	// OwnerMarginTradingMt5 is a managed margin trading account on the MT5 venue.
	OwnerMarginTradingMt5 OwnerType = "MarginTradingMt5"
)

// String returns the string representation of the owner type.
func (o OwnerType) String() string {
	return string(o)
}

// IsManagedAccount reports whether the owner is one of the managed trading
// account variants that must short-circuit to the FX paygate.
func (o OwnerType) IsManagedAccount() bool {
	return o == OwnerMarginTrading || o == OwnerMarginTradingMt5
}

// ParseOwnerType parses an owner type from configuration keys or wallet
// metadata. Unrecognized values report ok=false.
func ParseOwnerType(s string) (owner OwnerType, ok bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "spot":
		return OwnerSpot, true
	case "margintrading":
		return OwnerMarginTrading, true
	case "margintradingmt5":
		return OwnerMarginTradingMt5, true
	default:
		return OwnerSpot, false
	}
}
