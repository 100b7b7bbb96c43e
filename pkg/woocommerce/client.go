// Package woocommerce is a small client for the WooCommerce REST API (wc/v3)
// covering the catalog, customer, and order endpoints the storefront reads and writes.
package woocommerce

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/angelmondragon/wholesale-storefront/pkg/config"
	pkgerrors "github.com/angelmondragon/wholesale-storefront/pkg/errors"
	"github.com/angelmondragon/wholesale-storefront/pkg/logger"
	"github.com/angelmondragon/wholesale-storefront/pkg/metrics"
)

const (
	apiPrefix                   = "/wp-json/wc/v3"
	serviceName                 = "woocommerce"
	defaultTimeout              = 5 * time.Second
	responseBodyReadLimit int64 = 1024

	headerTotal      = "X-WP-Total"
	headerTotalPages = "X-WP-TotalPages"
)

// Client talks to one WooCommerce store. Credentials are checked on every
// call so a process can boot without them.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	consumerKey    string
	consumerSecret string
	logg           *logger.Logger
	metrics        *metrics.UpstreamMetrics
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

// WithLogger attaches a logger for upstream failures.
func WithLogger(logg *logger.Logger) Option {
	return func(c *Client) {
		c.logg = logg
	}
}

// WithMetrics records call latency and outcome.
func WithMetrics(m *metrics.UpstreamMetrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// NewClient builds a client from config. It never fails; see Client.
func NewClient(cfg config.WooCommerceConfig, opts ...Option) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	client := &Client{
		httpClient:     &http.Client{Timeout: timeout},
		baseURL:        strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		consumerKey:    strings.TrimSpace(cfg.ConsumerKey),
		consumerSecret: strings.TrimSpace(cfg.ConsumerSecret),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client
}

func (c *Client) validate() error {
	if c == nil {
		return pkgerrors.New(pkgerrors.CodeConfiguration, "woocommerce client not configured")
	}
	if c.baseURL == "" {
		return pkgerrors.New(pkgerrors.CodeConfiguration, "woocommerce base url is not set")
	}
	if !strings.HasPrefix(c.baseURL, "http://") && !strings.HasPrefix(c.baseURL, "https://") {
		return pkgerrors.New(pkgerrors.CodeConfiguration, "woocommerce base url must start with http:// or https://")
	}
	if c.consumerKey == "" || c.consumerSecret == "" {
		return pkgerrors.New(pkgerrors.CodeConfiguration, "woocommerce consumer key and secret are required")
	}
	return nil
}

type call struct {
	operation string
	method    string
	path      string
	query     url.Values
	body      any
}

// do executes the call, decodes a 2xx body into out and returns the response headers.
func (c *Client) do(ctx context.Context, in call, out any) (http.Header, error) {
	if err := c.validate(); err != nil {
		return nil, err
	}

	endpoint := c.baseURL + apiPrefix + in.path
	if len(in.query) > 0 {
		endpoint += "?" + in.query.Encode()
	}

	var body io.Reader
	if in.body != nil {
		payload, err := json.Marshal(in.body)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marshal woocommerce request")
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, in.method, endpoint, body)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build woocommerce request")
	}
	req.SetBasicAuth(c.consumerKey, c.consumerSecret)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.Observe(serviceName, in.operation, 0, time.Since(started), err)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "woocommerce request failed")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
		statusErr := &pkgerrors.UpstreamStatusError{Service: serviceName, Status: resp.StatusCode}
		c.metrics.Observe(serviceName, in.operation, resp.StatusCode, time.Since(started), statusErr)
		if c.logg != nil {
			logCtx := c.logg.WithFields(c.logg.WithOperation(ctx, in.operation), map[string]any{
				"upstream":      serviceName,
				"status":        resp.StatusCode,
				"upstream_body": strings.TrimSpace(string(msg)),
			})
			c.logg.Error(logCtx, "woocommerce.request_failed", statusErr)
		}
		if resp.StatusCode == http.StatusNotFound {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, statusErr, "resource not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeUpstream, statusErr, "woocommerce request failed")
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			c.metrics.Observe(serviceName, in.operation, resp.StatusCode, time.Since(started), err)
			return nil, pkgerrors.Wrap(pkgerrors.CodeUpstream, err, "decode woocommerce response")
		}
	}
	c.metrics.Observe(serviceName, in.operation, resp.StatusCode, time.Since(started), nil)
	return resp.Header, nil
}

// headerInt reads a numeric header; a missing or malformed value reads as 0.
func headerInt(h http.Header, key string) int {
	value, err := strconv.Atoi(strings.TrimSpace(h.Get(key)))
	if err != nil || value < 0 {
		return 0
	}
	return value
}

// FlexString decodes a JSON string, number, or null into a string.
// WooCommerce returns prices as strings but plugins sometimes send numbers.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*f = ""
		return nil
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(trimmed, &n); err != nil {
		return errors.New("woocommerce: expected string or number")
	}
	*f = FlexString(n.String())
	return nil
}

func (f FlexString) String() string {
	return string(f)
}
