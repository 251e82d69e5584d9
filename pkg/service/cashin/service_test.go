package cashin_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/amirasaad/walletapi/pkg/config"
	"github.com/amirasaad/walletapi/pkg/domain/payment"
	"github.com/amirasaad/walletapi/pkg/provider/paygate"
	"github.com/amirasaad/walletapi/pkg/repository/paymenttx"
	"github.com/amirasaad/walletapi/pkg/service/cashin"
	"github.com/amirasaad/walletapi/pkg/service/paymentrouter"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.PaymentSystems {
	return &config.PaymentSystems{
		CreditVoucher: &config.CreditVoucher{
			ServiceURL:          "https://cv.example.com",
			SupportedCurrencies: []string{"USD", "EUR"},
		},
		Fxpaygate: &config.Fxpaygate{
			ServiceURLs: config.ServiceURLMap{
				"Spot":          "https://fxpg.example.com",
				"MarginTrading": "https://fxpg-mt.example.com",
			},
			SupportedCurrencies: []string{"USD", "EUR"},
			SupportedCountries:  []string{"US", "CH"},
		},
		DefaultFiatAsset: "USD",
	}
}

func newService(
	factory *fakeFactory,
	repo *fakeRepo,
	owner payment.OwnerType,
) *cashin.Service {
	logger := slog.Default()
	router := paymentrouter.New(testConfig(), factory, logger)
	return cashin.New(router, factory, repo, &fakeAccounts{owner: owner}, logger)
}

func validRequest() *cashin.PaymentURLRequest {
	return &cashin.PaymentURLRequest{
		OrderID:        "order-1",
		ClientID:       "client-1",
		Amount:         decimal.RequireFromString("100.50"),
		AssetID:        "USD",
		WalletID:       "wallet-1",
		IsoCountryCode: "US",
		OtherInfo:      `{"email":"client@example.com"}`,
	}
}

func TestGetBankCardPaymentURL_HappyPath(t *testing.T) {
	factory := &fakeFactory{urlData: &paygate.URLData{
		PaymentURL: "https://pay.example.com/redirect",
		OkURL:      "https://wallet.example.com/ok",
		FailURL:    "https://wallet.example.com/fail",
	}}
	repo := newFakeRepo()
	svc := newService(factory, repo, payment.OwnerSpot)

	resp, err := svc.GetBankCardPaymentURL(context.Background(), validRequest())
	require.NoError(t, err)
	require.NotNil(t, resp)

	// USD/US is on the fxpaygate allowlists, so the default is overridden.
	assert.Equal(t, payment.SystemFxpaygate, resp.System)
	assert.Equal(t, "https://pay.example.com/redirect", resp.PaymentURL)
	assert.Equal(t, "https://fxpg.example.com", factory.lastURL)
	assert.True(t, factory.lastClient.closed)

	stored, err := repo.GetByTransactionID(context.Background(), "order-1")
	require.NoError(t, err)
	require.NotNil(t, stored, "the pending transaction must be recorded before returning")
	assert.Equal(t, payment.StatusCreated, stored.Status)
	assert.Equal(t, payment.SystemFxpaygate, stored.System)
	assert.Equal(t, "USD", stored.DepositedAssetID)

	logs, err := repo.GetLogs(context.Background(), "order-1")
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "client-1", logs[0].Who)
}

func TestGetBankCardPaymentURL_DuplicateOrder(t *testing.T) {
	factory := &fakeFactory{urlData: &paygate.URLData{PaymentURL: "https://pay.example.com/r"}}
	repo := newFakeRepo()
	svc := newService(factory, repo, payment.OwnerSpot)

	_, err := svc.GetBankCardPaymentURL(context.Background(), validRequest())
	require.NoError(t, err)

	_, err = svc.GetBankCardPaymentURL(context.Background(), validRequest())
	require.ErrorIs(t, err, payment.ErrAlreadyExists)
	assert.Equal(t, 1, repo.count(), "exactly one stored record")
}

func TestGetBankCardPaymentURL_GatewayError(t *testing.T) {
	factory := &fakeFactory{urlData: &paygate.URLData{ErrorMessage: "card country blocked"}}
	repo := newFakeRepo()
	svc := newService(factory, repo, payment.OwnerSpot)

	_, err := svc.GetBankCardPaymentURL(context.Background(), validRequest())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "card country blocked")
	assert.Equal(t, 0, repo.count(), "no transaction recorded on gateway rejection")
}

func TestGetBankCardPaymentURL_ValidationFailure(t *testing.T) {
	factory := &fakeFactory{}
	repo := newFakeRepo()
	svc := newService(factory, repo, payment.OwnerSpot)

	req := validRequest()
	req.ClientID = ""
	_, err := svc.GetBankCardPaymentURL(context.Background(), req)
	require.Error(t, err)
	assert.Nil(t, factory.lastClient, "no gateway call on invalid input")
}

func TestGetBankCardPaymentURL_UnsupportedAsset(t *testing.T) {
	factory := &fakeFactory{urlData: &paygate.URLData{PaymentURL: "https://pay.example.com/r"}}
	repo := newFakeRepo()
	svc := newService(factory, repo, payment.OwnerSpot)

	req := validRequest()
	req.AssetID = "ZZZ"
	req.IsoCountryCode = "BR"
	_, err := svc.GetBankCardPaymentURL(context.Background(), req)
	require.ErrorIs(t, err, payment.ErrNotSupported)
	assert.Equal(t, 0, repo.count())
}

func TestGetBankCardPaymentURL_ManagedAccountRoutesToOwnerURL(t *testing.T) {
	factory := &fakeFactory{urlData: &paygate.URLData{PaymentURL: "https://pay.example.com/r"}}
	repo := newFakeRepo()
	svc := newService(factory, repo, payment.OwnerMarginTrading)

	req := validRequest()
	req.PaymentSystemPreference = "CreditVoucher" // ignored for managed accounts
	resp, err := svc.GetBankCardPaymentURL(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, payment.SystemFxpaygate, resp.System)
	assert.Equal(t, "https://fxpg-mt.example.com", factory.lastURL)
}

// --- Fakes ---

type fakeAccounts struct {
	owner payment.OwnerType
}

func (f *fakeAccounts) GetOwnerType(
	_ context.Context, _, _ string,
) (payment.OwnerType, error) {
	return f.owner, nil
}

type fakeFactory struct {
	urlData    *paygate.URLData
	lastURL    string
	lastClient *fakeClient
}

func (f *fakeFactory) NewClient(serviceURL string) (paygate.Client, error) {
	f.lastURL = serviceURL
	f.lastClient = &fakeClient{urlData: f.urlData}
	return f.lastClient, nil
}

type fakeClient struct {
	urlData *paygate.URLData
	closed  bool
}

func (c *fakeClient) GetURLData(
	_ context.Context, _, _ string, _ decimal.Decimal, _, _ string,
) (*paygate.URLData, error) {
	return c.urlData, nil
}

func (c *fakeClient) GetSourceClientID(_ context.Context) (string, error) {
	return "src-1", nil
}

func (c *fakeClient) Close() error {
	c.closed = true
	return nil
}

// fakeRepo is an in-memory payment transaction store good enough for
// exercising the cash-in flow.
type fakeRepo struct {
	byID map[string]*payment.Transaction
	logs map[string][]*payment.TransactionEventLog
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		byID: make(map[string]*payment.Transaction),
		logs: make(map[string][]*payment.TransactionEventLog),
	}
}

func (r *fakeRepo) count() int { return len(r.byID) }

func (r *fakeRepo) Create(_ context.Context, tx *payment.Transaction) error {
	r.byID[tx.ID] = tx
	return nil
}

func (r *fakeRepo) TryCreate(
	ctx context.Context, tx *payment.Transaction,
) (*payment.Transaction, error) {
	if tx == nil {
		return nil, payment.ErrInvalidTransaction
	}
	if _, ok := r.byID[tx.ID]; ok {
		return nil, nil
	}
	if err := r.Create(ctx, tx); err != nil {
		return nil, err
	}
	return tx, nil
}

func (r *fakeRepo) GetByTransactionID(
	_ context.Context, id string,
) (*payment.Transaction, error) {
	return r.byID[id], nil
}

func (r *fakeRepo) GetByClientID(
	_ context.Context, clientID string,
) ([]*payment.Transaction, error) {
	var result []*payment.Transaction
	for _, tx := range r.byID {
		if tx.ClientID == clientID {
			result = append(result, tx)
		}
	}
	return result, nil
}

func (r *fakeRepo) GetLastByDate(
	ctx context.Context, clientID string,
) (*payment.Transaction, error) {
	all, _ := r.GetByClientID(ctx, clientID)
	var last *payment.Transaction
	for _, tx := range all {
		if last == nil || tx.Created.After(last.Created) {
			last = tx
		}
	}
	return last, nil
}

func (r *fakeRepo) GetByDateRange(
	_ context.Context, _, _ time.Time, filter paymenttx.Filter,
) ([]*payment.Transaction, error) {
	return r.scan(filter), nil
}

func (r *fakeRepo) ScanAndFind(
	_ context.Context, filter paymenttx.Filter,
) ([]*payment.Transaction, error) {
	return r.scan(filter), nil
}

func (r *fakeRepo) scan(filter paymenttx.Filter) []*payment.Transaction {
	var result []*payment.Transaction
	for _, tx := range r.byID {
		if filter == nil || filter(tx) {
			result = append(result, tx)
		}
	}
	return result
}

func (r *fakeRepo) StartProcessing(
	_ context.Context, id string, aggregatorTxID *string,
) (*payment.Transaction, error) {
	tx, ok := r.byID[id]
	if !ok || tx.Status != payment.StatusCreated {
		return nil, nil
	}
	tx.Status = payment.StatusProcessing
	tx.AggregatorTransactionID = aggregatorTxID
	me := "me-" + id
	tx.MeTransactionID = &me
	return tx, nil
}

func (r *fakeRepo) SetAggregatorTransactionID(
	_ context.Context, id, aggregatorTxID string,
) (*payment.Transaction, error) {
	tx, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	tx.AggregatorTransactionID = &aggregatorTxID
	return tx, nil
}

func (r *fakeRepo) SetStatus(
	_ context.Context, id string, status payment.Status,
) (*payment.Transaction, error) {
	tx, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	tx.Status = status
	return tx, nil
}

func (r *fakeRepo) SetAsOk(
	_ context.Context, id string, depositedAmount decimal.Decimal, rate *decimal.Decimal,
) (*payment.Transaction, error) {
	tx, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	tx.Status = payment.StatusNotifyProcessed
	tx.DepositedAmount = &depositedAmount
	tx.Rate = rate
	return tx, nil
}

func (r *fakeRepo) AddLog(_ context.Context, entry *payment.TransactionEventLog) error {
	r.logs[entry.PaymentTransactionID] = append(r.logs[entry.PaymentTransactionID], entry)
	return nil
}

func (r *fakeRepo) GetLogs(
	_ context.Context, transactionID string,
) ([]*payment.TransactionEventLog, error) {
	return r.logs[transactionID], nil
}
