// Package paygate implements the payment-gateway client over HTTP/JSON.
package paygate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/amirasaad/walletapi/pkg/config"
	"github.com/amirasaad/walletapi/pkg/provider/paygate"
	"github.com/shopspring/decimal"
)

// Client is an HTTP client for one payment gateway deployment.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// Factory builds scoped HTTP clients from the shared transport config.
type Factory struct {
	cfg    *config.Paygate
	logger *slog.Logger
}

// NewFactory creates a gateway client factory.
func NewFactory(cfg *config.Paygate, logger *slog.Logger) *Factory {
	return &Factory{cfg: cfg, logger: logger}
}

// NewClient implements paygate.Factory.
func (f *Factory) NewClient(serviceURL string) (paygate.Client, error) {
	if serviceURL == "" {
		return nil, fmt.Errorf("paygate: empty service URL")
	}
	return &Client{
		baseURL: strings.TrimRight(serviceURL, "/"),
		httpClient: &http.Client{
			Timeout: f.cfg.HTTPTimeout,
		},
		logger: f.logger,
	}, nil
}

// getUrlDataRequest is the wire request for the payment URL endpoint.
type getUrlDataRequest struct {
	OrderID   string `json:"orderId"`
	ClientID  string `json:"clientId"`
	Amount    string `json:"amount"`
	AssetID   string `json:"assetId"`
	OtherInfo string `json:"otherInfo,omitempty"`
}

// getUrlDataResponse is the wire response for the payment URL endpoint.
type getUrlDataResponse struct {
	PaymentURL   string `json:"paymentUrl"`
	OkURL        string `json:"okUrl"`
	FailURL      string `json:"failUrl"`
	ReloadRegexp string `json:"reloadRegexp"`
	URLsRegexp   string `json:"urlsRegexp"`
	ErrorMessage string `json:"errorMessage,omitempty"`
}

type sourceClientIDResponse struct {
	SourceClientID string `json:"sourceClientId"`
}

// GetURLData implements paygate.Client.
func (c *Client) GetURLData(
	ctx context.Context,
	orderID, clientID string,
	amount decimal.Decimal,
	assetID, otherInfo string,
) (*paygate.URLData, error) {
	reqBody := getUrlDataRequest{
		OrderID:   orderID,
		ClientID:  clientID,
		Amount:    amount.String(),
		AssetID:   assetID,
		OtherInfo: otherInfo,
	}
	var resp getUrlDataResponse
	if err := c.postJSON(ctx, "/api/GetUrlData", reqBody, &resp); err != nil {
		return nil, err
	}
	return &paygate.URLData{
		PaymentURL:   resp.PaymentURL,
		OkURL:        resp.OkURL,
		FailURL:      resp.FailURL,
		ReloadRegexp: resp.ReloadRegexp,
		URLsRegexp:   resp.URLsRegexp,
		ErrorMessage: resp.ErrorMessage,
	}, nil
}

// GetSourceClientID implements paygate.Client.
func (c *Client) GetSourceClientID(ctx context.Context) (string, error) {
	url := c.baseURL + "/api/GetSourceClientId"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("paygate: request failed: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("paygate: gateway returned status %d: %s", resp.StatusCode, string(body))
	}

	var decoded sourceClientIDResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("paygate: failed to decode response: %w", err)
	}
	return decoded.SourceClientID, nil
}

// Close implements paygate.Client.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

func (c *Client) postJSON(ctx context.Context, path string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("paygate: failed to encode request: %w", err)
	}

	url := c.baseURL + path
	c.logger.Debug("Calling payment gateway", "url", url)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("paygate: request failed: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("paygate: gateway returned status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("paygate: failed to decode response: %w", err)
	}
	return nil
}
