// Package payment holds the payment domain model: the payment-system and
// owner-type enumerations, the cash-in transaction aggregate and its
// append-only event log.
//
// Invariants:
//   - A Transaction is created exactly once per (ClientID, ID) pair.
//   - Status moves forward through the lifecycle; the Created→Processing
//     edge is guarded by the store and happens at most once.
//   - Created and ID are immutable after construction.
package payment

import "strings"

// System identifies the external payment aggregator servicing a cash-in.
type System string

const (
	// SystemUnknown is the zero value; it is never a routable aggregator.
	SystemUnknown System = "Unknown"
	// SystemCreditVoucher is the credit-voucher card processor.
	SystemCreditVoucher System = "CreditVoucher"
	// SystemFxpaygate is the FX paygate card processor.
	SystemFxpaygate System = "Fxpaygate"
)

// String returns the string representation of the payment system.
func (s System) String() string {
	return string(s)
}

// IsValid reports whether s is a known, routable payment system.
func (s System) IsValid() bool {
	return s == SystemCreditVoucher || s == SystemFxpaygate
}

// ParseSystem parses a client-supplied payment-system preference.
// Parsing is deliberately permissive: an empty or unrecognized value is
// treated as "no preference" and reported via ok=false, never as an error.
func ParseSystem(s string) (sys System, ok bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "creditvoucher":
		return SystemCreditVoucher, true
	case "fxpaygate":
		return SystemFxpaygate, true
	default:
		return SystemUnknown, false
	}
}
