package httpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kbukum/restorm/resilience"
)

func newTestClient(t *testing.T, cfg Config) *Client {
	t.Helper()
	c, err := New(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return c
}

func TestClient_Do_GET(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		if r.URL.Path != "/people/1" {
			t.Errorf("expected /people/1, got %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"name":"Alice"}`))
	}))
	defer srv.Close()

	c := newTestClient(t, Config{BaseURL: srv.URL})
	resp, err := c.Do(context.Background(), Request{Path: "/people/1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resp.IsSuccess() {
		t.Errorf("expected success, got %d", resp.StatusCode)
	}
	if !strings.Contains(string(resp.Body), "Alice") {
		t.Errorf("response body should contain Alice, got %s", string(resp.Body))
	}
	if resp.Headers["Content-Type"] != "application/json" {
		t.Errorf("unexpected headers: %v", resp.Headers)
	}
}

func TestClient_Do_HeadersAndQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("X-Default"); got != "d" {
			t.Errorf("expected X-Default=d, got %q", got)
		}
		if got := r.Header.Get("User-Agent"); !strings.HasPrefix(got, "restorm/") {
			t.Errorf("expected restorm User-Agent, got %q", got)
		}
		if got := r.Header.Get("X-Request-Id"); got != "req-1" {
			t.Errorf("expected X-Request-Id=req-1, got %q", got)
		}
		if got := r.URL.Query()["tag"]; len(got) != 2 || got[0] != "a" || got[1] != "b" {
			t.Errorf("expected repeated tag params, got %v", got)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := newTestClient(t, Config{BaseURL: srv.URL, Headers: map[string]string{"X-Default": "d"}})
	_, err := c.Do(context.Background(), Request{
		Path:    "/people",
		Headers: map[string]string{"X-Request-Id": "req-1"},
		Query:   url.Values{"tag": {"a", "b"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestClient_Do_Auth(t *testing.T) {
	var seen atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen.Store(r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := newTestClient(t, Config{BaseURL: srv.URL, Auth: BearerAuth("default-token")})

	if _, err := c.Do(context.Background(), Request{Path: "/"}); err != nil {
		t.Fatal(err)
	}
	if got := seen.Load(); got != "Bearer default-token" {
		t.Errorf("got %v", got)
	}

	if _, err := c.Do(context.Background(), Request{Path: "/", Auth: BearerAuth("override-token")}); err != nil {
		t.Fatal(err)
	}
	if got := seen.Load(); got != "Bearer override-token" {
		t.Errorf("got %v", got)
	}
}

func TestClient_Do_ErrorClassification(t *testing.T) {
	tests := []struct {
		code    int
		checker func(error) bool
	}{
		{401, IsAuth},
		{403, IsAuth},
		{404, IsNotFound},
		{429, IsRateLimit},
		{500, IsServerError},
		{503, IsServerError},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("HTTP_%d", tt.code), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.code)
				_, _ = w.Write([]byte(`{"error":{"code":"NOT_FOUND"}}`))
			}))
			defer srv.Close()

			c := newTestClient(t, Config{BaseURL: srv.URL})
			resp, err := c.Do(context.Background(), Request{Path: "/"})
			if err == nil {
				t.Fatal("expected error")
			}
			if !tt.checker(err) {
				t.Errorf("error classification failed for HTTP %d: %v", tt.code, err)
			}
			if resp == nil || resp.StatusCode != tt.code {
				t.Fatalf("expected response with status %d, got %+v", tt.code, resp)
			}
		})
	}
}

func TestClient_Do_ContextCanceled(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c := newTestClient(t, Config{BaseURL: srv.URL})
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.Do(ctx, Request{Path: "/"})
	if !IsTimeout(err) {
		t.Fatalf("expected timeout error, got %v", err)
	}
}

func TestClient_Do_FullURL_IgnoresBaseURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := newTestClient(t, Config{BaseURL: "http://should-not-be-used.invalid"})
	resp, err := c.Do(context.Background(), Request{Path: srv.URL + "/direct"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
}

func TestClient_Do_Retry(t *testing.T) {
	var attempts int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&attempts, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	retryCfg := DefaultRetryConfig()
	retryCfg.InitialBackoff = time.Millisecond

	c := newTestClient(t, Config{BaseURL: srv.URL, Retry: retryCfg})
	resp, err := c.Do(context.Background(), Request{Path: "/"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
	if got := atomic.LoadInt32(&attempts); got != 3 {
		t.Errorf("expected 3 attempts, got %d", got)
	}
}

func TestClient_Do_NoRetryOn404(t *testing.T) {
	var attempts int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	retryCfg := DefaultRetryConfig()
	retryCfg.InitialBackoff = time.Millisecond
	c := newTestClient(t, Config{BaseURL: srv.URL, Retry: retryCfg})

	if _, err := c.Do(context.Background(), Request{Path: "/"}); !IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	if got := atomic.LoadInt32(&attempts); got != 1 {
		t.Errorf("expected 1 attempt, got %d", got)
	}
}

func TestClient_Do_CircuitBreaker(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	cbCfg := DefaultCircuitBreakerConfig("people-api")
	cbCfg.MaxFailures = 2
	c := newTestClient(t, Config{BaseURL: srv.URL, CircuitBreaker: cbCfg})

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		_, _ = c.Do(ctx, Request{Path: "/"})
	}
	if c.Available() {
		t.Error("expected client to be unavailable with an open breaker")
	}

	_, err := c.Do(ctx, Request{Path: "/"})
	if !errors.Is(err, resilience.ErrCircuitOpen) {
		t.Errorf("expected ErrCircuitOpen, got %v", err)
	}
}

func TestClient_Do_Bodies(t *testing.T) {
	tests := []struct {
		name        string
		body        any
		contentType string
		want        string
	}{
		{"string", "hello", "text/plain", "hello"},
		{"bytes", []byte("raw"), "", "raw"},
		{"json", map[string]int{"n": 1}, "application/json", `{"n":1}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if ct := r.Header.Get("Content-Type"); tc.contentType != "" && ct != tc.contentType {
					t.Errorf("expected %q, got %q", tc.contentType, ct)
				}
				data, _ := io.ReadAll(r.Body)
				if string(data) != tc.want {
					t.Errorf("expected body %q, got %q", tc.want, data)
				}
			}))
			defer srv.Close()

			c := newTestClient(t, Config{BaseURL: srv.URL})
			if _, err := c.Do(context.Background(), Request{Method: http.MethodPost, Path: "/", Body: tc.body}); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestClient_NameAndUnwrap(t *testing.T) {
	c := newTestClient(t, Config{Name: "people-api"})
	if c.Name() != "people-api" {
		t.Errorf("expected name people-api, got %q", c.Name())
	}
	if c.Unwrap() == nil {
		t.Error("Unwrap should return non-nil http.Client")
	}
	if !c.Available() {
		t.Error("client without breaker should be available")
	}
}

func TestResponse_Helpers(t *testing.T) {
	ok := &Response{StatusCode: 200}
	if !ok.IsSuccess() || ok.IsError() {
		t.Error("200 should be success")
	}
	bad := &Response{StatusCode: 500}
	if bad.IsSuccess() || !bad.IsError() {
		t.Error("500 should be error")
	}
}
