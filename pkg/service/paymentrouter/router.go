// Package paymentrouter decides which external payment aggregator
// services a bank-card cash-in request and resolves that aggregator's
// configured endpoint.
package paymentrouter

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/amirasaad/walletapi/pkg/config"
	"github.com/amirasaad/walletapi/pkg/domain/payment"
	"github.com/amirasaad/walletapi/pkg/provider/paygate"
)

// Service routes cash-in requests to a payment aggregator. Decisions are
// pure reads over the routing configuration; the only side effect is the
// gateway call behind GetSourceClientID.
type Service struct {
	cfg      *config.PaymentSystems
	gateways paygate.Factory
	logger   *slog.Logger
}

// New creates a payment router over the given routing configuration.
func New(cfg *config.PaymentSystems, gateways paygate.Factory, logger *slog.Logger) *Service {
	return &Service{cfg: cfg, gateways: gateways, logger: logger}
}

// SelectPaymentSystem picks the aggregator for a cash-in request and
// resolves its service URL. Priority order, first match wins:
//
//  1. Managed trading account owners always route to the FX paygate
//     endpoint configured for that owner variant. A missing endpoint is
//     a fatal misconfiguration.
//  2. Everything else defaults to the credit voucher processor.
//  3. The default is overridden to the FX paygate (spot endpoint) when
//     the client explicitly asked for it, or when the client expressed
//     no usable preference and both the asset and the country are in the
//     FX paygate allowlists.
//
// clientPreference is parsed permissively: an unparseable value counts
// as "no preference", never as an error.
func (s *Service) SelectPaymentSystem(
	assetID, isoCountryCode, clientPreference string,
	owner payment.OwnerType,
) (payment.System, string, error) {
	if owner.IsManagedAccount() {
		url, err := s.fxpaygateURL(owner)
		if err != nil {
			return payment.SystemUnknown, "", err
		}
		s.logger.Debug("Routing managed account to fxpaygate",
			"owner", owner, "asset", assetID)
		return payment.SystemFxpaygate, url, nil
	}

	preferred, hasPreference := payment.ParseSystem(clientPreference)

	useFxpaygate := preferred == payment.SystemFxpaygate
	if !hasPreference {
		useFxpaygate = slices.Contains(s.cfg.Fxpaygate.SupportedCurrencies, assetID) &&
			slices.Contains(s.cfg.Fxpaygate.SupportedCountries, isoCountryCode)
	}

	if useFxpaygate {
		url, err := s.fxpaygateURL(payment.OwnerSpot)
		if err != nil {
			return payment.SystemUnknown, "", err
		}
		return payment.SystemFxpaygate, url, nil
	}
	return payment.SystemCreditVoucher, s.cfg.CreditVoucher.ServiceURL, nil
}

// IsPaymentSystemSupported reports whether the aggregator can settle the
// given asset. A configured currency allowlist decides membership; with
// no allowlist only the default fiat asset is supported. Unknown payment
// systems support nothing.
func (s *Service) IsPaymentSystemSupported(system payment.System, assetID string) bool {
	switch system {
	case payment.SystemCreditVoucher:
		return s.assetSupported(s.cfg.CreditVoucher.SupportedCurrencies, assetID)
	case payment.SystemFxpaygate:
		return s.assetSupported(s.cfg.Fxpaygate.SupportedCurrencies, assetID)
	default:
		return false
	}
}

// GetSourceClientID resolves the aggregator endpoint the same way
// SelectPaymentSystem does and fetches the gateway's source client
// identifier from it.
func (s *Service) GetSourceClientID(
	ctx context.Context,
	system payment.System,
	owner payment.OwnerType,
) (string, error) {
	url, err := s.serviceURL(system, owner)
	if err != nil {
		return "", err
	}

	client, err := s.gateways.NewClient(url)
	if err != nil {
		return "", err
	}
	defer client.Close() //nolint:errcheck

	return client.GetSourceClientID(ctx)
}

func (s *Service) serviceURL(system payment.System, owner payment.OwnerType) (string, error) {
	switch system {
	case payment.SystemCreditVoucher:
		return s.cfg.CreditVoucher.ServiceURL, nil
	case payment.SystemFxpaygate:
		return s.fxpaygateURL(owner)
	default:
		return "", fmt.Errorf("no service URL for payment system %q: %w",
			system, payment.ErrNotSupported)
	}
}

func (s *Service) fxpaygateURL(owner payment.OwnerType) (string, error) {
	url, ok := s.cfg.Fxpaygate.ServiceURLs[owner.String()]
	if !ok || url == "" {
		return "", fmt.Errorf("no fxpaygate service URL configured for owner type %q: %w",
			owner, payment.ErrNotSupported)
	}
	return url, nil
}

func (s *Service) assetSupported(allowlist []string, assetID string) bool {
	if len(allowlist) > 0 {
		return slices.Contains(allowlist, assetID)
	}
	return assetID == s.cfg.DefaultFiatAsset
}
