// Package airwallex wraps the Airwallex payment acceptance endpoints used at
// checkout: login, payment intent creation, and intent lookup.
package airwallex

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/wholesale-storefront/pkg/config"
	pkgerrors "github.com/angelmondragon/wholesale-storefront/pkg/errors"
	"github.com/angelmondragon/wholesale-storefront/pkg/logger"
	"github.com/angelmondragon/wholesale-storefront/pkg/metrics"
)

const (
	DemoBaseURL = "https://api-demo.airwallex.com"
	ProdBaseURL = "https://api.airwallex.com"

	serviceName                 = "airwallex"
	defaultTimeout              = 5 * time.Second
	defaultCurrency             = "USD"
	tokenRefreshSkew            = time.Minute
	responseBodyReadLimit int64 = 1024
)

// Intent statuses reported by the provider.
const (
	StatusRequiresPaymentMethod  = "REQUIRES_PAYMENT_METHOD"
	StatusRequiresCustomerAction = "REQUIRES_CUSTOMER_ACTION"
	StatusRequiresCapture        = "REQUIRES_CAPTURE"
	StatusSucceeded              = "SUCCEEDED"
	StatusCancelled              = "CANCELLED"
)

// Client holds server-side credentials so they never reach the browser.
type Client struct {
	httpClient      *http.Client
	baseURL         string
	clientID        string
	apiKey          string
	defaultCurrency string
	logg            *logger.Logger
	metrics         *metrics.UpstreamMetrics
	now             func() time.Time
	newRequestID    func() string

	mu    sync.Mutex
	token *Token
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

// WithBaseURL overrides the environment-derived API host.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if trimmed := strings.TrimSpace(baseURL); trimmed != "" {
			c.baseURL = strings.TrimRight(trimmed, "/")
		}
	}
}

func WithLogger(logg *logger.Logger) Option {
	return func(c *Client) {
		c.logg = logg
	}
}

func WithMetrics(m *metrics.UpstreamMetrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithClock overrides time.Now for token expiry checks.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// NewClient builds a client for the configured environment. Missing
// credentials surface per call as configuration errors.
func NewClient(cfg config.AirwallexConfig, opts ...Option) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	baseURL := DemoBaseURL
	if cfg.Environment() == config.AirwallexEnvProd {
		baseURL = ProdBaseURL
	}
	currency := strings.ToUpper(strings.TrimSpace(cfg.DefaultCurrency))
	if currency == "" {
		currency = defaultCurrency
	}

	client := &Client{
		httpClient:      &http.Client{Timeout: timeout},
		baseURL:         baseURL,
		clientID:        strings.TrimSpace(cfg.ClientID),
		apiKey:          strings.TrimSpace(cfg.APIKey),
		defaultCurrency: currency,
		now:             time.Now,
		newRequestID:    func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client
}

// Token is a bearer token issued by the login endpoint.
type Token struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (c *Client) validate() error {
	if c == nil {
		return pkgerrors.New(pkgerrors.CodeConfiguration, "airwallex client not configured")
	}
	if c.clientID == "" || c.apiKey == "" {
		return pkgerrors.New(pkgerrors.CodeConfiguration, "airwallex credentials are not set")
	}
	return nil
}

// Authenticate returns a bearer token, reusing the cached one until shortly
// before it expires.
func (c *Client) Authenticate(ctx context.Context) (*Token, error) {
	if err := c.validate(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token != nil && c.now().Add(tokenRefreshSkew).Before(c.token.ExpiresAt) {
		cached := *c.token
		return &cached, nil
	}

	var resp struct {
		Token     string `json:"token"`
		ExpiresAt string `json:"expires_at"`
	}
	headers := map[string]string{
		"x-client-id": c.clientID,
		"x-api-key":   c.apiKey,
	}
	if err := c.do(ctx, "authenticate", http.MethodPost, "/api/v1/authentication/login", headers, struct{}{}, &resp); err != nil {
		return nil, err
	}
	if resp.Token == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUpstream, "airwallex login returned no token")
	}

	token := &Token{Token: resp.Token, ExpiresAt: parseExpiry(resp.ExpiresAt, c.now())}
	c.token = token
	cached := *token
	return &cached, nil
}

// parseExpiry accepts RFC3339 and the provider's offset form without a colon.
// Unparseable values are treated as already close to expiry.
func parseExpiry(value string, now time.Time) time.Time {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05-0700", "2006-01-02T15:04:05.000-0700"} {
		if parsed, err := time.Parse(layout, strings.TrimSpace(value)); err == nil {
			return parsed
		}
	}
	return now.Add(tokenRefreshSkew)
}

// IntentRequest describes a payment intent for an order total.
type IntentRequest struct {
	Amount          decimal.Decimal
	Currency        string
	MerchantOrderID string
	CustomerEmail   string
	Metadata        map[string]string
}

// PaymentIntent is the provider's view of an intent.
type PaymentIntent struct {
	ID              string          `json:"id"`
	ClientSecret    string          `json:"client_secret"`
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency"`
	Status          string          `json:"status"`
	MerchantOrderID string          `json:"merchant_order_id"`
}

// Succeeded reports whether funds were authorized or captured.
func (p *PaymentIntent) Succeeded() bool {
	if p == nil {
		return false
	}
	return p.Status == StatusSucceeded || p.Status == StatusRequiresCapture
}

// CreatePaymentIntent creates an intent for a positive amount rounded to cents.
func (c *Client) CreatePaymentIntent(ctx context.Context, req IntentRequest) (*PaymentIntent, error) {
	if !req.Amount.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Invalid amount")
	}
	if err := c.validate(); err != nil {
		return nil, err
	}

	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = c.defaultCurrency
	}
	orderID := strings.TrimSpace(req.MerchantOrderID)
	if orderID == "" {
		orderID = fmt.Sprintf("order-%d", c.now().UnixMilli())
	}
	metadata := map[string]string{}
	for k, v := range req.Metadata {
		metadata[k] = v
	}
	if email := strings.TrimSpace(req.CustomerEmail); email != "" {
		metadata["customer_email"] = email
	}

	body := map[string]any{
		"request_id":        c.newRequestID(),
		"amount":            req.Amount.Round(2).StringFixed(2),
		"currency":          currency,
		"merchant_order_id": orderID,
		"metadata":          metadata,
	}

	var intent PaymentIntent
	if err := c.authorized(ctx, "create_payment_intent", http.MethodPost, "/api/v1/pa/payment_intents/create", body, &intent); err != nil {
		return nil, err
	}
	if intent.ID == "" || intent.ClientSecret == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUpstream, "airwallex returned an incomplete payment intent")
	}
	if intent.Currency == "" {
		intent.Currency = currency
	}
	return &intent, nil
}

// GetPaymentIntent fetches an intent so its status can be verified server side.
func (c *Client) GetPaymentIntent(ctx context.Context, id string) (*PaymentIntent, error) {
	trimmed := strings.TrimSpace(id)
	if trimmed == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment intent id is required")
	}
	var intent PaymentIntent
	path := "/api/v1/pa/payment_intents/" + url.PathEscape(trimmed)
	if err := c.authorized(ctx, "get_payment_intent", http.MethodGet, path, nil, &intent); err != nil {
		return nil, err
	}
	return &intent, nil
}

// authorized runs a bearer-token call and drops the cached token when the
// provider rejects it, so the next call logs in again.
func (c *Client) authorized(ctx context.Context, operation, method, path string, body any, out any) error {
	token, err := c.Authenticate(ctx)
	if err != nil {
		return err
	}
	headers := map[string]string{"Authorization": "Bearer " + token.Token}
	err = c.do(ctx, operation, method, path, headers, body, out)
	if statusErr, ok := pkgerrors.UpstreamStatus(err); ok && statusErr.Status == http.StatusUnauthorized {
		c.mu.Lock()
		c.token = nil
		c.mu.Unlock()
	}
	return err
}

func (c *Client) do(ctx context.Context, operation, method, path string, headers map[string]string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marshal airwallex request")
		}
		reader = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build airwallex request")
	}
	httpReq.Header.Set("Accept", "application/json")
	if reader != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		httpReq.Header.Set(k, v)
	}

	started := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.metrics.Observe(serviceName, operation, 0, time.Since(started), err)
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "airwallex request failed")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
		statusErr := &pkgerrors.UpstreamStatusError{Service: serviceName, Status: resp.StatusCode}
		c.metrics.Observe(serviceName, operation, resp.StatusCode, time.Since(started), statusErr)
		if c.logg != nil {
			logCtx := c.logg.WithFields(c.logg.WithOperation(ctx, operation), map[string]any{
				"upstream":      serviceName,
				"status":        resp.StatusCode,
				"upstream_body": strings.TrimSpace(string(msg)),
			})
			c.logg.Error(logCtx, "airwallex.request_failed", statusErr)
		}
		if resp.StatusCode == http.StatusNotFound {
			return pkgerrors.Wrap(pkgerrors.CodeNotFound, statusErr, "payment intent not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeUpstream, statusErr, "airwallex request failed")
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			c.metrics.Observe(serviceName, operation, resp.StatusCode, time.Since(started), err)
			return pkgerrors.Wrap(pkgerrors.CodeUpstream, err, "decode airwallex response")
		}
	}
	c.metrics.Observe(serviceName, operation, resp.StatusCode, time.Since(started), nil)
	return nil
}
