// Package paymenttx implements the payment transaction store over GORM.
package paymenttx

import (
	"context"
	"errors"
	"time"

	"github.com/amirasaad/walletapi/pkg/domain/payment"
	repo "github.com/amirasaad/walletapi/pkg/repository/paymenttx"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

// New creates a payment transaction repository using the provided *gorm.DB.
func New(db *gorm.DB) repo.Repository {
	return &repository{db: db}
}

// Create implements paymenttx.Repository. The three copies are written
// as three independent statements; see the consistency note in model.go.
func (r *repository) Create(ctx context.Context, tx *payment.Transaction) error {
	if tx == nil {
		return payment.ErrInvalidTransaction
	}

	row := mapTransactionToRow(tx)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return mapGormError(err)
	}

	byDate := mapTransactionToByDateRow(tx)
	if err := r.db.WithContext(ctx).Create(&byDate).Error; err != nil {
		return mapGormError(err)
	}

	index := transactionIndexRow{
		ID:         tx.ID,
		ClientID:   tx.ClientID,
		DateRowKey: byDate.DateRowKey,
	}
	if err := r.db.WithContext(ctx).Create(&index).Error; err != nil {
		return mapGormError(err)
	}
	return nil
}

// TryCreate implements paymenttx.Repository.
func (r *repository) TryCreate(
	ctx context.Context,
	tx *payment.Transaction,
) (*payment.Transaction, error) {
	if tx == nil {
		return nil, payment.ErrInvalidTransaction
	}

	var existing transactionRow
	err := r.db.WithContext(ctx).
		First(&existing, "client_id = ? AND id = ?", tx.ClientID, tx.ID).Error
	switch {
	case err == nil:
		// Idempotent no-op: the transaction already exists.
		return nil, nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}

	if err := r.Create(ctx, tx); err != nil {
		return nil, err
	}
	return tx, nil
}

// GetByTransactionID implements paymenttx.Repository.
func (r *repository) GetByTransactionID(
	ctx context.Context,
	id string,
) (*payment.Transaction, error) {
	index, err := r.lookupIndex(ctx, id)
	if err != nil || index == nil {
		return nil, err
	}
	return r.getByIndex(ctx, index)
}

// GetByClientID implements paymenttx.Repository.
func (r *repository) GetByClientID(
	ctx context.Context,
	clientID string,
) ([]*payment.Transaction, error) {
	var rows []transactionRow
	if err := r.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make([]*payment.Transaction, 0, len(rows))
	for i := range rows {
		result = append(result, mapRowToTransaction(&rows[i]))
	}
	return result, nil
}

// GetLastByDate implements paymenttx.Repository. The maximum is taken
// client-side over the client's full set; the storage layer does not
// sort for us.
func (r *repository) GetLastByDate(
	ctx context.Context,
	clientID string,
) (*payment.Transaction, error) {
	all, err := r.GetByClientID(ctx, clientID)
	if err != nil {
		return nil, err
	}

	var last *payment.Transaction
	for _, tx := range all {
		if last == nil || tx.Created.After(last.Created) {
			last = tx
		}
	}
	return last, nil
}

// GetByDateRange implements paymenttx.Repository.
func (r *repository) GetByDateRange(
	ctx context.Context,
	from, to time.Time,
	filter repo.Filter,
) ([]*payment.Transaction, error) {
	// to is normalized to end-of-day; the upper bound is exclusive.
	toDay := to.UTC()
	upper := time.Date(toDay.Year(), toDay.Month(), toDay.Day(), 0, 0, 0, 0, time.UTC).
		AddDate(0, 0, 1)

	var rows []transactionByDateRow
	if err := r.db.WithContext(ctx).
		Where("date_row_key >= ? AND date_row_key < ?",
			dateRowKeyBound(from), dateRowKeyBound(upper)).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return filterByDateRows(rows, filter), nil
}

// ScanAndFind implements paymenttx.Repository.
func (r *repository) ScanAndFind(
	ctx context.Context,
	filter repo.Filter,
) ([]*payment.Transaction, error) {
	var rows []transactionByDateRow
	if err := r.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, err
	}
	return filterByDateRows(rows, filter), nil
}

// StartProcessing implements paymenttx.Repository. The Created check and
// the update run as a single conditional statement, which is the atomic
// per-record merge the state machine relies on: concurrent callers
// racing to start the same transaction advance it at most once.
func (r *repository) StartProcessing(
	ctx context.Context,
	id string,
	aggregatorTxID *string,
) (*payment.Transaction, error) {
	index, err := r.lookupIndex(ctx, id)
	if err != nil || index == nil {
		return nil, err
	}

	updates := map[string]any{
		"status":            payment.StatusProcessing.String(),
		"me_transaction_id": uuid.New().String(),
	}
	if aggregatorTxID != nil {
		updates["aggregator_transaction_id"] = *aggregatorTxID
	}

	res := r.db.WithContext(ctx).
		Model(&transactionRow{}).
		Where("client_id = ? AND id = ? AND status = ?",
			index.ClientID, id, payment.StatusCreated.String()).
		Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		// Guard rejected: the transaction is not in Created anymore.
		return nil, nil
	}

	if err := r.mirrorToByDate(ctx, index, updates); err != nil {
		return nil, err
	}
	return r.getByIndex(ctx, index)
}

// SetAggregatorTransactionID implements paymenttx.Repository.
// Unconditional: the aggregator id can be attached or corrected at any
// lifecycle stage.
func (r *repository) SetAggregatorTransactionID(
	ctx context.Context,
	id, aggregatorTxID string,
) (*payment.Transaction, error) {
	return r.updateIndexed(ctx, id, map[string]any{
		"aggregator_transaction_id": aggregatorTxID,
	})
}

// SetStatus implements paymenttx.Repository. Unconditional overwrite
// used for administrative and failure-path transitions; it can move a
// terminal transaction backwards and the caller is trusted not to.
func (r *repository) SetStatus(
	ctx context.Context,
	id string,
	status payment.Status,
) (*payment.Transaction, error) {
	return r.updateIndexed(ctx, id, map[string]any{
		"status": status.String(),
	})
}

// SetAsOk implements paymenttx.Repository.
func (r *repository) SetAsOk(
	ctx context.Context,
	id string,
	depositedAmount decimal.Decimal,
	rate *decimal.Decimal,
) (*payment.Transaction, error) {
	updates := map[string]any{
		"status":           payment.StatusNotifyProcessed.String(),
		"deposited_amount": depositedAmount,
	}
	if rate != nil {
		updates["rate"] = *rate
	}
	return r.updateIndexed(ctx, id, updates)
}

// AddLog implements paymenttx.Repository.
func (r *repository) AddLog(ctx context.Context, entry *payment.TransactionEventLog) error {
	if entry == nil {
		return payment.ErrInvalidTransaction
	}
	row := transactionLogRow{
		ID:                   uuid.New().String(),
		PaymentTransactionID: entry.PaymentTransactionID,
		Created:              entry.Created,
		Who:                  entry.Who,
		Message:              entry.Message,
		TechData:             entry.TechData,
	}
	return r.db.WithContext(ctx).Create(&row).Error
}

// GetLogs implements paymenttx.Repository.
func (r *repository) GetLogs(
	ctx context.Context,
	transactionID string,
) ([]*payment.TransactionEventLog, error) {
	var rows []transactionLogRow
	if err := r.db.WithContext(ctx).
		Where("payment_transaction_id = ?", transactionID).
		Order("created ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make([]*payment.TransactionEventLog, 0, len(rows))
	for i := range rows {
		result = append(result, &payment.TransactionEventLog{
			PaymentTransactionID: rows[i].PaymentTransactionID,
			Created:              rows[i].Created,
			Who:                  rows[i].Who,
			Message:              rows[i].Message,
			TechData:             rows[i].TechData,
		})
	}
	return result, nil
}

// updateIndexed applies an unconditional last-writer-wins update to both
// data copies of the indexed transaction and returns the updated record,
// or nil when the id is unknown.
func (r *repository) updateIndexed(
	ctx context.Context,
	id string,
	updates map[string]any,
) (*payment.Transaction, error) {
	index, err := r.lookupIndex(ctx, id)
	if err != nil || index == nil {
		return nil, err
	}

	res := r.db.WithContext(ctx).
		Model(&transactionRow{}).
		Where("client_id = ? AND id = ?", index.ClientID, id).
		Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		// Orphaned index with no data copy behind it.
		return nil, nil
	}

	if err := r.mirrorToByDate(ctx, index, updates); err != nil {
		return nil, err
	}
	return r.getByIndex(ctx, index)
}

func (r *repository) mirrorToByDate(
	ctx context.Context,
	index *transactionIndexRow,
	updates map[string]any,
) error {
	return r.db.WithContext(ctx).
		Model(&transactionByDateRow{}).
		Where("date_row_key = ?", index.DateRowKey).
		Updates(updates).Error
}

func (r *repository) lookupIndex(
	ctx context.Context,
	id string,
) (*transactionIndexRow, error) {
	var index transactionIndexRow
	err := r.db.WithContext(ctx).First(&index, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &index, nil
}

func (r *repository) getByIndex(
	ctx context.Context,
	index *transactionIndexRow,
) (*payment.Transaction, error) {
	var row transactionRow
	err := r.db.WithContext(ctx).
		First(&row, "client_id = ? AND id = ?", index.ClientID, index.ID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return mapRowToTransaction(&row), nil
}

func filterByDateRows(rows []transactionByDateRow, filter repo.Filter) []*payment.Transaction {
	result := make([]*payment.Transaction, 0, len(rows))
	for i := range rows {
		tx := mapByDateRowToTransaction(&rows[i])
		if filter == nil || filter(tx) {
			result = append(result, tx)
		}
	}
	return result
}

// --- Mappers ---

func mapTransactionToRow(tx *payment.Transaction) transactionRow {
	return transactionRow{
		ClientID:                tx.ClientID,
		ID:                      tx.ID,
		PaymentSystem:           tx.System.String(),
		Amount:                  tx.Amount,
		FeeAmount:               tx.FeeAmount,
		AssetID:                 tx.AssetID,
		DepositedAssetID:        tx.DepositedAssetID,
		WalletID:                tx.WalletID,
		Status:                  tx.Status.String(),
		AggregatorTransactionID: tx.AggregatorTransactionID,
		MeTransactionID:         tx.MeTransactionID,
		DepositedAmount:         tx.DepositedAmount,
		Rate:                    tx.Rate,
		Created:                 tx.Created,
		Info:                    tx.Info,
	}
}

func mapTransactionToByDateRow(tx *payment.Transaction) transactionByDateRow {
	return transactionByDateRow{
		DateRowKey:              dateRowKey(tx.Created, tx.ID),
		ID:                      tx.ID,
		ClientID:                tx.ClientID,
		PaymentSystem:           tx.System.String(),
		Amount:                  tx.Amount,
		FeeAmount:               tx.FeeAmount,
		AssetID:                 tx.AssetID,
		DepositedAssetID:        tx.DepositedAssetID,
		WalletID:                tx.WalletID,
		Status:                  tx.Status.String(),
		AggregatorTransactionID: tx.AggregatorTransactionID,
		MeTransactionID:         tx.MeTransactionID,
		DepositedAmount:         tx.DepositedAmount,
		Rate:                    tx.Rate,
		Created:                 tx.Created,
		Info:                    tx.Info,
	}
}

func mapRowToTransaction(row *transactionRow) *payment.Transaction {
	return &payment.Transaction{
		ID:                      row.ID,
		ClientID:                row.ClientID,
		System:                  payment.System(row.PaymentSystem),
		Amount:                  row.Amount,
		FeeAmount:               row.FeeAmount,
		AssetID:                 row.AssetID,
		DepositedAssetID:        row.DepositedAssetID,
		WalletID:                row.WalletID,
		Status:                  payment.Status(row.Status),
		AggregatorTransactionID: row.AggregatorTransactionID,
		MeTransactionID:         row.MeTransactionID,
		DepositedAmount:         row.DepositedAmount,
		Rate:                    row.Rate,
		Created:                 row.Created,
		Info:                    row.Info,
	}
}

func mapByDateRowToTransaction(row *transactionByDateRow) *payment.Transaction {
	return &payment.Transaction{
		ID:                      row.ID,
		ClientID:                row.ClientID,
		System:                  payment.System(row.PaymentSystem),
		Amount:                  row.Amount,
		FeeAmount:               row.FeeAmount,
		AssetID:                 row.AssetID,
		DepositedAssetID:        row.DepositedAssetID,
		WalletID:                row.WalletID,
		Status:                  payment.Status(row.Status),
		AggregatorTransactionID: row.AggregatorTransactionID,
		MeTransactionID:         row.MeTransactionID,
		DepositedAmount:         row.DepositedAmount,
		Rate:                    row.Rate,
		Created:                 row.Created,
		Info:                    row.Info,
	}
}
