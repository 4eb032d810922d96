package openpix

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	pkgerrors "github.com/angelmondragon/spacerent-backend/pkg/errors"
)

const (
	defaultBaseURL              = "https://api.openpix.com.br"
	chargePath                  = "api/v1/charge"
	responseBodyReadLimit int64 = 1024
)

var errAppIDRequired = errors.New("openpix app id is required")

// APIError is a non-2xx answer from OpenPix.
type APIError struct {
	StatusCode int
	Message    string
}

func newAPIError(status int, body []byte) *APIError {
	var payload struct {
		Error string `json:"error"`
	}
	message := strings.TrimSpace(string(body))
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != "" {
		message = payload.Error
	}
	return &APIError{StatusCode: status, Message: message}
}

func (e *APIError) Error() string {
	return fmt.Sprintf("openpix status %d: %s", e.StatusCode, e.Message)
}

func (e *APIError) Gateway() string    { return "openpix" }
func (e *APIError) GatewayStatus() int { return e.StatusCode }

// Client talks to the OpenPix charge API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	appID      string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the OpenPix API host.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(baseURL)
		if trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// WithTimeout sets the timeout on the default HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 && c.httpClient != nil {
			c.httpClient.Timeout = timeout
		}
	}
}

// NewClient builds an OpenPix client authenticated with the application id.
func NewClient(appID string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimSpace(appID)
	if trimmed == "" {
		return nil, errAppIDRequired
	}

	client := &Client{
		appID:      trimmed,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return client, nil
}

// Split routes part of a charge to a wallet. Value is in cents.
type Split struct {
	WalletID string `json:"walletId"`
	Value    int64  `json:"value"`
}

// ChargeRequest is the body of POST /api/v1/charge.
type ChargeRequest struct {
	// CorrelationID makes charge creation idempotent on the OpenPix side.
	CorrelationID string  `json:"correlationID"`
	Value         int64   `json:"value"`
	Comment       string  `json:"comment,omitempty"`
	Splits        []Split `json:"splits,omitempty"`
}

// Charge is the subset of the created charge the service keeps.
type Charge struct {
	CorrelationID string `json:"correlationID"`
	TransactionID string `json:"transactionID"`
	Status        string `json:"status"`
	Value         int64  `json:"value"`
	BRCode        string `json:"brCode"`
	PaymentLink   string `json:"paymentLinkUrl"`
	QRCodeImage   string `json:"qrCodeImage"`
}

// CreateCharge creates a Pix charge. Splits are omitted from the payload when empty.
func (c *Client) CreateCharge(ctx context.Context, req ChargeRequest) (*Charge, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "openpix client not configured")
	}
	if strings.TrimSpace(req.CorrelationID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "correlation id is required")
	}
	if req.Value <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "charge value must be positive")
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "marshal charge request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.buildURL(chargePath), bytes.NewReader(payload))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build charge request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", c.appID)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute charge request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, newAPIError(resp.StatusCode, msg), "charge request failed")
	}

	var apiResp struct {
		Charge Charge `json:"charge"`
		BRCode string `json:"brCode"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode charge response")
	}

	charge := apiResp.Charge
	if charge.BRCode == "" {
		charge.BRCode = apiResp.BRCode
	}
	return &charge, nil
}

func (c *Client) buildURL(path string) string {
	trimmed := strings.TrimRight(c.baseURL, "/")
	path = strings.TrimLeft(path, "/")
	return fmt.Sprintf("%s/%s", trimmed, path)
}
