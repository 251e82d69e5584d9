package paymenttx

import (
	"time"

	"github.com/shopspring/decimal"
)

// The store keeps three physical copies of every transaction, one per
// access pattern: a per-client copy for client lookups, a global copy
// row-keyed by creation time for chronological scans, and a secondary
// index mapping the bare transaction id to both.
//
// The copies are written as independent statements, not as one database
// transaction. A crash mid-create can leave an orphaned index or data
// copy with no compensating cleanup; this is a known consistency gap
// accepted in favour of read-path performance.

// transactionRow is the per-client canonical copy.
type transactionRow struct {
	ClientID                string `gorm:"primaryKey;type:varchar(64)"`
	ID                      string `gorm:"primaryKey;type:varchar(64)"`
	PaymentSystem           string `gorm:"type:varchar(32);not null"`
	Amount                  decimal.Decimal `gorm:"type:decimal(20,8)"`
	FeeAmount               decimal.Decimal `gorm:"type:decimal(20,8)"`
	AssetID                 string `gorm:"type:varchar(16);not null"`
	DepositedAssetID        string `gorm:"type:varchar(16)"`
	WalletID                string `gorm:"type:varchar(64)"`
	Status                  string `gorm:"type:varchar(32);not null"`
	AggregatorTransactionID *string `gorm:"type:varchar(128)"`
	MeTransactionID         *string `gorm:"type:varchar(64)"`
	DepositedAmount         *decimal.Decimal `gorm:"type:decimal(20,8)"`
	Rate                    *decimal.Decimal `gorm:"type:decimal(20,8)"`
	Created                 time.Time
	Info                    string `gorm:"type:text"`
}

// TableName specifies the table name for the per-client copy.
func (transactionRow) TableName() string {
	return "payment_transactions"
}

// transactionByDateRow is the global copy, row-keyed by a sortable
// creation timestamp so that date ranges become key-range scans.
type transactionByDateRow struct {
	DateRowKey              string `gorm:"primaryKey;type:varchar(64);column:date_row_key"`
	ID                      string `gorm:"type:varchar(64);not null"`
	ClientID                string `gorm:"type:varchar(64);not null"`
	PaymentSystem           string `gorm:"type:varchar(32);not null"`
	Amount                  decimal.Decimal `gorm:"type:decimal(20,8)"`
	FeeAmount               decimal.Decimal `gorm:"type:decimal(20,8)"`
	AssetID                 string `gorm:"type:varchar(16);not null"`
	DepositedAssetID        string `gorm:"type:varchar(16)"`
	WalletID                string `gorm:"type:varchar(64)"`
	Status                  string `gorm:"type:varchar(32);not null"`
	AggregatorTransactionID *string `gorm:"type:varchar(128)"`
	MeTransactionID         *string `gorm:"type:varchar(64)"`
	DepositedAmount         *decimal.Decimal `gorm:"type:decimal(20,8)"`
	Rate                    *decimal.Decimal `gorm:"type:decimal(20,8)"`
	Created                 time.Time
	Info                    string `gorm:"type:text"`
}

// TableName specifies the table name for the global copy.
func (transactionByDateRow) TableName() string {
	return "payment_transactions_by_date"
}

// transactionIndexRow maps a bare transaction id to the location of both
// data copies, enabling lookup without the owning client id.
type transactionIndexRow struct {
	ID         string `gorm:"primaryKey;type:varchar(64)"`
	ClientID   string `gorm:"type:varchar(64);not null"`
	DateRowKey string `gorm:"type:varchar(64);not null;column:date_row_key"`
}

// TableName specifies the table name for the secondary index.
func (transactionIndexRow) TableName() string {
	return "payment_transaction_index"
}

// transactionLogRow is a single append-only audit-trail entry.
type transactionLogRow struct {
	ID                   string `gorm:"primaryKey;type:varchar(64)"`
	PaymentTransactionID string `gorm:"type:varchar(64);not null;index"`
	Created              time.Time
	Who                  string `gorm:"type:varchar(128)"`
	Message              string `gorm:"type:text"`
	TechData             string `gorm:"type:text"`
}

// TableName specifies the table name for the audit log.
func (transactionLogRow) TableName() string {
	return "payment_transaction_logs"
}

// dateRowKeyFormat is fixed-width so that lexicographic key order equals
// chronological order.
const dateRowKeyFormat = "2006-01-02T15:04:05.000000000Z"

func dateRowKey(created time.Time, id string) string {
	return created.UTC().Format(dateRowKeyFormat) + "_" + id
}

func dateRowKeyBound(t time.Time) string {
	return t.UTC().Format(dateRowKeyFormat)
}
