package httpclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/kbukum/restorm/logger"
	"github.com/kbukum/restorm/resilience"
	"github.com/kbukum/restorm/version"
)

// Client is a configurable HTTP client with built-in auth, TLS, and resilience.
type Client struct {
	httpClient *http.Client
	config     Config
	policy     *resilience.Policy
	log        *logger.Logger
	userAgent  string
}

// New creates a new HTTP client with the given configuration.
func New(cfg Config) (*Client, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	tlsCfg, err := cfg.TLS.Build()
	if err != nil {
		return nil, err
	}
	if tlsCfg != nil {
		transport.TLSClientConfig = tlsCfg
	}

	c := &Client{
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   cfg.Timeout,
		},
		config:    cfg,
		log:       logger.Get("httpclient").WithFields(logger.Fields("remote", cfg.Name)),
		userAgent: version.UserAgent(),
	}

	if cfg.Retry != nil || cfg.CircuitBreaker != nil || cfg.RateLimiter != nil {
		c.policy = &resilience.Policy{Retry: cfg.Retry}
		if cfg.CircuitBreaker != nil {
			cb := *cfg.CircuitBreaker
			if cb.OnStateChange == nil {
				cb.OnStateChange = func(name string, from, to resilience.State) {
					c.log.Warn("circuit breaker state changed", logger.Fields("from", from.String(), "to", to.String()))
				}
			}
			c.policy.Breaker = resilience.NewCircuitBreaker(cb)
		}
		if cfg.RateLimiter != nil {
			c.policy.Limiter = resilience.NewRateLimiter(*cfg.RateLimiter)
		}
	}

	return c, nil
}

// Name returns the configured remote name.
func (c *Client) Name() string {
	return c.config.Name
}

// Available reports whether the client would currently attempt a request.
// It is false only while the circuit breaker is open.
func (c *Client) Available() bool {
	if c.policy == nil || c.policy.Breaker == nil {
		return true
	}
	return c.policy.Breaker.State() != resilience.StateOpen
}

// Do executes an HTTP request under the configured resilience policy and
// returns the complete response. Non-2xx responses are returned together
// with a classified *Error.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	resp, err := resilience.Do(ctx, c.policy, func() (*Response, error) {
		return c.execute(ctx, req)
	})

	fields := logger.Fields(logger.FieldPath, req.Path, logger.FieldDuration, time.Since(start).Milliseconds())
	if resp != nil {
		fields[logger.FieldStatus] = resp.StatusCode
	}
	if err != nil {
		c.log.WithContext(ctx).Debug("request failed", logger.MergeWithError(fields, err))
		return resp, err
	}
	c.log.WithContext(ctx).Debug("request completed", fields)
	return resp, nil
}

// Unwrap returns the underlying *http.Client for advanced use cases.
func (c *Client) Unwrap() *http.Client {
	return c.httpClient
}

// execute builds and sends a single HTTP request.
func (c *Client) execute(ctx context.Context, req Request) (*Response, error) {
	httpReq, err := c.buildRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, NewTimeoutError(err)
		}
		return nil, NewConnectionError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewConnectionError(fmt.Errorf("read response body: %w", err))
	}

	result := &Response{
		StatusCode: resp.StatusCode,
		Headers:    flattenHeaders(resp.Header),
		Body:       body,
	}
	if classErr := ClassifyStatusCode(resp.StatusCode, body); classErr != nil {
		return result, classErr
	}
	return result, nil
}

// buildRequest constructs an *http.Request from the client config and request.
func (c *Client) buildRequest(ctx context.Context, req Request) (*http.Request, error) {
	url := req.Path
	if c.config.BaseURL != "" && !strings.HasPrefix(req.Path, "http://") && !strings.HasPrefix(req.Path, "https://") {
		url = strings.TrimRight(c.config.BaseURL, "/") + "/" + strings.TrimLeft(req.Path, "/")
	}

	body, contentType, err := encodeBody(req.Body)
	if err != nil {
		return nil, NewValidationError(fmt.Sprintf("encode body: %v", err))
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, NewValidationError(fmt.Sprintf("create request: %v", err))
	}

	if len(req.Query) > 0 {
		q := httpReq.URL.Query()
		for k, vs := range req.Query {
			q[k] = append(q[k], vs...)
		}
		httpReq.URL.RawQuery = q.Encode()
	}

	httpReq.Header.Set("User-Agent", c.userAgent)
	for k, v := range c.config.Headers {
		httpReq.Header.Set(k, v)
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}
	if body != nil && httpReq.Header.Get("Content-Type") == "" && contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}

	auth := c.config.Auth
	if req.Auth != nil {
		auth = req.Auth
	}
	if err := auth.apply(httpReq); err != nil {
		return nil, NewValidationError(err.Error())
	}

	return httpReq, nil
}

// encodeBody converts a body value into an io.Reader and content type.
func encodeBody(body any) (io.Reader, string, error) {
	switch v := body.(type) {
	case nil:
		return nil, "", nil
	case []byte:
		return bytes.NewReader(v), "", nil
	case string:
		return strings.NewReader(v), "text/plain", nil
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return nil, "", err
		}
		return bytes.NewReader(data), "application/json", nil
	}
}

// flattenHeaders converts multi-value headers to single-value.
func flattenHeaders(h http.Header) map[string]string {
	result := make(map[string]string, len(h))
	for k, v := range h {
		if len(v) > 0 {
			result[k] = v[0]
		}
	}
	return result
}
