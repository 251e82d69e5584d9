package config

import (
	"fmt"
	"strings"
	"time"
)

// DB holds the database connection settings.
type DB struct {
	Url string `envconfig:"URL"`
}

// Log holds structured-logging settings.
type Log struct {
	Level      int    `envconfig:"LEVEL" default:"0"`
	Format     string `envconfig:"FORMAT" default:"json"`
	TimeFormat string `envconfig:"TIME_FORMAT" default:"2006-01-02 15:04:05"`
	Prefix     string `envconfig:"PREFIX" default:"[walletapi]"`
}

// ServiceURLMap maps account owner types to gateway base URLs. It
// carries its own envconfig decoder: the URLs contain colons, so the
// default "key:value" map parsing cannot split the pairs.
type ServiceURLMap map[string]string

// Decode implements envconfig.Decoder.
// Format: "Spot:https://a.example.com,MarginTrading:https://b.example.com".
func (m *ServiceURLMap) Decode(value string) error {
	result := make(map[string]string)
	for _, pair := range strings.Split(value, ",") {
		kv := strings.SplitN(pair, ":", 2)
		if len(kv) != 2 {
			return fmt.Errorf("invalid service URL map item %q", pair)
		}
		result[strings.TrimSpace(kv[0])] = strings.TrimSpace(kv[1])
	}
	*m = result
	return nil
}

// CreditVoucher configures the credit-voucher payment aggregator.
// The aggregator has a single service endpoint regardless of account
// owner type.
type CreditVoucher struct {
	ServiceURL string `envconfig:"SERVICE_URL"`
	// SupportedCurrencies is an optional explicit allowlist. When empty,
	// only the default fiat asset is considered supported.
	SupportedCurrencies []string `envconfig:"SUPPORTED_CURRENCIES"`
}

// Fxpaygate configures the FX paygate payment aggregator.
// Endpoints are keyed by account owner type so that managed trading
// accounts route to their dedicated gateway deployments.
type Fxpaygate struct {
	// ServiceURLs maps owner type (Spot, MarginTrading, ...) to the
	// gateway base URL, e.g. "Spot:https://fxpg.example.com".
	ServiceURLs ServiceURLMap `envconfig:"SERVICE_URLS"`
	// SupportedCurrencies is the currency allowlist used both for the
	// spot-owner routing override and for the support predicate.
	SupportedCurrencies []string `envconfig:"SUPPORTED_CURRENCIES"`
	// SupportedCountries is the ISO country allowlist for the spot-owner
	// routing override.
	SupportedCountries []string `envconfig:"SUPPORTED_COUNTRIES"`
}

// PaymentSystems groups the per-aggregator routing configuration.
type PaymentSystems struct {
	CreditVoucher *CreditVoucher `envconfig:"CREDIT_VOUCHER"`
	Fxpaygate     *Fxpaygate     `envconfig:"FXPAYGATE"`
	// DefaultFiatAsset is the reference fiat asset considered supported
	// by an aggregator with no explicit currency allowlist.
	DefaultFiatAsset string `envconfig:"DEFAULT_FIAT_ASSET" default:"USD"`
}

// Paygate holds transport settings for the external gateway HTTP client.
type Paygate struct {
	HTTPTimeout time.Duration `envconfig:"HTTP_TIMEOUT" default:"30s"`
}

// App is the root application configuration bound from the environment.
type App struct {
	Env            string          `envconfig:"APP_ENV" default:"development"`
	Log            *Log            `envconfig:"LOG"`
	DB             *DB             `envconfig:"DATABASE"`
	PaymentSystems *PaymentSystems `envconfig:"PAYMENT_SYSTEM"`
	Paygate        *Paygate        `envconfig:"PAYGATE"`
}
