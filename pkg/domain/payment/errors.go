package payment

import "errors"

// Domain errors for the payment core.
var (
	// ErrNotSupported is returned when routing hits a misconfiguration:
	// no service URL for a required owner type, or an unknown payment
	// system. It is fatal to the request, never silently recovered.
	ErrNotSupported = errors.New("payment system not supported")
	// ErrNotFound is returned when a requested transaction does not exist.
	ErrNotFound = errors.New("payment transaction not found")
	// ErrAlreadyExists is returned when creating a transaction that
	// already exists for the same (ClientID, ID) pair.
	ErrAlreadyExists = errors.New("payment transaction already exists")
	// ErrInvalidTransaction is returned when a nil or malformed
	// transaction is handed to the store.
	ErrInvalidTransaction = errors.New("invalid payment transaction")
)
