package payment

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is the aggregate root for a single bank-card cash-in attempt.
// It is created once, mutated only through the store's conditional update
// operations, and never deleted.
type Transaction struct {
	// ID is the unique transaction identifier, client-supplied or
	// generator-issued. Immutable.
	ID string
	// ClientID is the owning client. Immutable.
	ClientID string
	// System is the aggregator servicing this cash-in. Set at creation;
	// may be corrected once by the router's resolution before persistence.
	System System
	// Amount is the amount requested by the client, in AssetID units.
	Amount decimal.Decimal
	// FeeAmount is the fee charged on top of Amount.
	FeeAmount decimal.Decimal
	// AssetID is the asset the client pays in.
	AssetID string
	// DepositedAssetID is the asset ultimately credited. Defaults to
	// AssetID when unset.
	DepositedAssetID string
	// WalletID is the destination wallet. Empty means the trading account.
	WalletID string
	// Status drives the transaction lifecycle.
	Status Status
	// AggregatorTransactionID is the external processor's transaction id.
	// Nil until processing starts.
	AggregatorTransactionID *string
	// MeTransactionID is the internal matching-engine transaction id,
	// generated when processing starts.
	MeTransactionID *string
	// DepositedAmount is populated only on successful settlement.
	DepositedAmount *decimal.Decimal
	// Rate is the settlement exchange rate, populated only on success.
	Rate *decimal.Decimal
	// Created is the creation timestamp. Immutable.
	Created time.Time
	// Info is a free-form JSON payload with billing/contact details
	// forwarded to the payment aggregator.
	Info string
}

// NewTransaction builds a cash-in transaction in its initial state.
// DepositedAssetID defaults to assetID and Created is stamped with the
// current UTC time.
func NewTransaction(
	id, clientID string,
	system System,
	amount decimal.Decimal,
	assetID, walletID, info string,
) *Transaction {
	return &Transaction{
		ID:               id,
		ClientID:         clientID,
		System:           system,
		Amount:           amount,
		FeeAmount:        decimal.Zero,
		AssetID:          assetID,
		DepositedAssetID: assetID,
		WalletID:         walletID,
		Status:           StatusCreated,
		Created:          time.Now().UTC(),
		Info:             info,
	}
}

// TransactionEventLog is a single append-only audit-trail entry attached
// to a transaction. Entries are write-once and never mutated or deleted.
type TransactionEventLog struct {
	// PaymentTransactionID is the parent transaction id.
	PaymentTransactionID string
	// Created is the entry timestamp.
	Created time.Time
	// Who identifies the actor that produced the entry.
	Who string
	// Message is the human-readable audit message.
	Message string
	// TechData carries free-form technical payload for diagnostics.
	TechData string
}

// NewTransactionEventLog builds a timestamped audit entry for the given
// transaction.
func NewTransactionEventLog(transactionID, who, message, techData string) *TransactionEventLog {
	return &TransactionEventLog{
		PaymentTransactionID: transactionID,
		Created:              time.Now().UTC(),
		Who:                  who,
		Message:              message,
		TechData:             techData,
	}
}

// IsValidAssetID checks that an asset id looks like an ISO 4217 style
// uppercase alphabetic code of 3 to 8 characters.
func IsValidAssetID(assetID string) bool {
	if len(assetID) < 3 || len(assetID) > 8 {
		return false
	}
	for i := 0; i < len(assetID); i++ {
		if assetID[i] < 'A' || assetID[i] > 'Z' {
			return false
		}
	}
	return true
}
