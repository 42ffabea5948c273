package rest

import (
	"context"
	"net/http"
	"net/url"

	"github.com/goccy/go-json"

	"github.com/kbukum/restorm/httpclient"
)

// HeaderRequestID carries the per-request correlation id.
const HeaderRequestID = "X-Request-Id"

// Client is a JSON-focused read client that wraps the base HTTP client.
// Requests advertise Accept: application/json.
type Client struct {
	http *httpclient.Client
}

// New creates a REST client from the given config.
func New(cfg httpclient.Config) (*Client, error) {
	headers := make(map[string]string, len(cfg.Headers)+1)
	for k, v := range cfg.Headers {
		headers[k] = v
	}
	if _, ok := headers["Accept"]; !ok {
		headers["Accept"] = "application/json"
	}
	cfg.Headers = headers

	c, err := httpclient.New(cfg)
	if err != nil {
		return nil, err
	}
	return &Client{http: c}, nil
}

// NewFromClient creates a REST client from an existing HTTP client.
func NewFromClient(c *httpclient.Client) *Client {
	return &Client{http: c}
}

// HTTP returns the underlying HTTP client.
func (c *Client) HTTP() *httpclient.Client {
	return c.http
}

// Name returns the remote name used in logs and errors.
func (c *Client) Name() string {
	return c.http.Name()
}

// RequestOption configures a single REST request.
type RequestOption func(*httpclient.Request)

// WithQuery merges query parameters into the request.
func WithQuery(params url.Values) RequestOption {
	return func(r *httpclient.Request) {
		if r.Query == nil {
			r.Query = url.Values{}
		}
		for k, vs := range params {
			r.Query[k] = append(r.Query[k], vs...)
		}
	}
}

// WithHeader sets a single request header.
func WithHeader(key, value string) RequestOption {
	return func(r *httpclient.Request) {
		if r.Headers == nil {
			r.Headers = make(map[string]string)
		}
		r.Headers[key] = value
	}
}

// WithRequestID tags the request with a correlation id.
func WithRequestID(id string) RequestOption {
	return WithHeader(HeaderRequestID, id)
}

// WithAuth overrides authentication for the request.
func WithAuth(auth *httpclient.AuthConfig) RequestOption {
	return func(r *httpclient.Request) {
		r.Auth = auth
	}
}

// Response wraps a typed REST response.
type Response[T any] struct {
	StatusCode int
	Headers    map[string]string
	Data       T
}

// Get performs a GET request and decodes the JSON response into type T.
//
// When the server answers with an error status, the body is still decoded
// into Data when it is valid JSON, and the classified error is returned
// alongside the response.
func Get[T any](ctx context.Context, c *Client, path string, opts ...RequestOption) (*Response[T], error) {
	req := httpclient.Request{Method: http.MethodGet, Path: path}
	for _, opt := range opts {
		opt(&req)
	}

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		if resp != nil {
			var data T
			if jsonErr := json.Unmarshal(resp.Body, &data); jsonErr == nil {
				return &Response[T]{StatusCode: resp.StatusCode, Headers: resp.Headers, Data: data}, err
			}
		}
		return nil, err
	}

	var data T
	if len(resp.Body) > 0 {
		if err := json.Unmarshal(resp.Body, &data); err != nil {
			return nil, httpclient.NewDecodeError(resp.StatusCode, resp.Body, err)
		}
	}
	return &Response[T]{StatusCode: resp.StatusCode, Headers: resp.Headers, Data: data}, nil
}
