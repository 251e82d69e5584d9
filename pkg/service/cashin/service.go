// Package cashin orchestrates a bank-card cash-in request: route to a
// payment aggregator, obtain the hosted redirect URL from the gateway
// and durably record the pending transaction before handing the URL
// back to the caller.
package cashin

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/amirasaad/walletapi/pkg/domain/payment"
	"github.com/amirasaad/walletapi/pkg/provider/paygate"
	"github.com/amirasaad/walletapi/pkg/repository/paymenttx"
	"github.com/amirasaad/walletapi/pkg/service/paymentrouter"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// AccountProvider resolves the owner type of the wallet initiating the
// cash-in. Backed by the client account service.
type AccountProvider interface {
	GetOwnerType(ctx context.Context, clientID, walletID string) (payment.OwnerType, error)
}

// PaymentURLRequest is an inbound bank-card cash-in request.
type PaymentURLRequest struct {
	OrderID        string `validate:"required"`
	ClientID       string `validate:"required"`
	Amount         decimal.Decimal
	AssetID        string `validate:"required"`
	WalletID       string
	IsoCountryCode string `validate:"required,len=2"`
	// PaymentSystemPreference is the client's optional aggregator
	// choice; unparseable values count as no preference.
	PaymentSystemPreference string
	// OtherInfo is the free-form JSON billing payload forwarded to the
	// gateway.
	OtherInfo string
}

// PaymentURLResponse carries the hosted redirect URL and the aggregator
// that will service the payment.
type PaymentURLResponse struct {
	System       payment.System
	PaymentURL   string
	OkURL        string
	FailURL      string
	ReloadRegexp string
	URLsRegexp   string
}

// Service wires the router, the gateway factory and the transaction
// store into the cash-in flow.
type Service struct {
	router   *paymentrouter.Service
	gateways paygate.Factory
	repo     paymenttx.Repository
	accounts AccountProvider
	validate *validator.Validate
	logger   *slog.Logger
}

// New creates the cash-in service.
func New(
	router *paymentrouter.Service,
	gateways paygate.Factory,
	repo paymenttx.Repository,
	accounts AccountProvider,
	logger *slog.Logger,
) *Service {
	return &Service{
		router:   router,
		gateways: gateways,
		repo:     repo,
		accounts: accounts,
		validate: validator.New(),
		logger:   logger,
	}
}

// GetBankCardPaymentURL runs the cash-in flow: validate, resolve the
// owner type, pick the aggregator, fetch the redirect URL and record the
// pending transaction. The transaction is persisted before the URL is
// returned so that a later aggregator callback always finds it.
func (s *Service) GetBankCardPaymentURL(
	ctx context.Context,
	req *PaymentURLRequest,
) (*PaymentURLResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("cashin: nil request: %w", payment.ErrInvalidTransaction)
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("cashin: invalid request: %w", err)
	}
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("cashin: amount must be positive: %w", payment.ErrInvalidTransaction)
	}
	if !payment.IsValidAssetID(req.AssetID) {
		return nil, fmt.Errorf("cashin: invalid asset id %q: %w", req.AssetID, payment.ErrInvalidTransaction)
	}

	owner, err := s.accounts.GetOwnerType(ctx, req.ClientID, req.WalletID)
	if err != nil {
		return nil, err
	}

	system, serviceURL, err := s.router.SelectPaymentSystem(
		req.AssetID, req.IsoCountryCode, req.PaymentSystemPreference, owner)
	if err != nil {
		return nil, err
	}
	if !s.router.IsPaymentSystemSupported(system, req.AssetID) {
		return nil, fmt.Errorf("cashin: asset %q not supported by %s: %w",
			req.AssetID, system, payment.ErrNotSupported)
	}

	client, err := s.gateways.NewClient(serviceURL)
	if err != nil {
		return nil, err
	}
	defer client.Close() //nolint:errcheck

	urlData, err := client.GetURLData(
		ctx, req.OrderID, req.ClientID, req.Amount, req.AssetID, req.OtherInfo)
	if err != nil {
		return nil, err
	}
	if urlData.ErrorMessage != "" {
		return nil, fmt.Errorf("cashin: gateway rejected the request: %s", urlData.ErrorMessage)
	}

	tx := payment.NewTransaction(
		req.OrderID, req.ClientID, system,
		req.Amount, req.AssetID, req.WalletID, req.OtherInfo)
	created, err := s.repo.TryCreate(ctx, tx)
	if err != nil {
		return nil, err
	}
	if created == nil {
		return nil, fmt.Errorf("cashin: order %q: %w", req.OrderID, payment.ErrAlreadyExists)
	}

	// The audit entry is best effort: the URL is already issued and the
	// transaction is recorded, failing the request now would only hurt.
	entry := payment.NewTransactionEventLog(tx.ID, req.ClientID,
		"Bank card payment url issued", urlData.PaymentURL)
	if err := s.repo.AddLog(ctx, entry); err != nil {
		s.logger.Error("Failed to append payment audit entry",
			"transaction_id", tx.ID, "error", err)
	}

	s.logger.Info("Bank card payment url issued",
		"transaction_id", tx.ID,
		"client_id", req.ClientID,
		"payment_system", system,
		"asset", req.AssetID,
	)

	return &PaymentURLResponse{
		System:       system,
		PaymentURL:   urlData.PaymentURL,
		OkURL:        urlData.OkURL,
		FailURL:      urlData.FailURL,
		ReloadRegexp: urlData.ReloadRegexp,
		URLsRegexp:   urlData.URLsRegexp,
	}, nil
}
