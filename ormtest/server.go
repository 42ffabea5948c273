package ormtest

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/restorm/httpclient"
	"github.com/kbukum/restorm/httpclient/rest"
)

// Request is a request received by the Server.
type Request struct {
	Method    string
	Path      string
	Query     url.Values
	RequestID string
	Header    http.Header
}

// Server is an in-memory REST API backed by gin and httptest. Collections
// are seeded by path; list and detail routes follow Django REST framework
// conventions.
type Server struct {
	mu        sync.Mutex
	srv       *httptest.Server
	resources map[string][]map[string]any
	requests  []Request
	failures  []int

	resultsKey    string
	idKey         string
	orderingParam string
	limitParam    string
	offsetParam   string
}

// Option configures a Server.
type Option func(*Server)

// WithEnvelope wraps list responses as {"count": n, "results": [...]} using
// key instead of "results".
func WithEnvelope(key string) Option {
	return func(s *Server) { s.resultsKey = key }
}

// WithIDKey sets the field matched by detail routes. Defaults to "id".
func WithIDKey(key string) Option {
	return func(s *Server) { s.idKey = key }
}

// WithParams renames the ordering, limit and offset query parameters.
func WithParams(ordering, limit, offset string) Option {
	return func(s *Server) {
		s.orderingParam, s.limitParam, s.offsetParam = ordering, limit, offset
	}
}

// NewServer starts a server. Close it when done.
func NewServer(opts ...Option) *Server {
	s := &Server{
		resources:     make(map[string][]map[string]any),
		idKey:         "id",
		orderingParam: "ordering",
		limitParam:    "limit",
		offsetParam:   "offset",
	}
	for _, opt := range opts {
		opt(s)
	}

	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(recovery(), requestID(), s.record(), s.injectFailures())
	engine.GET("/*path", s.handle)

	s.srv = httptest.NewServer(engine)
	return s
}

// Start starts a server that is closed when t ends.
func Start(t testing.TB, opts ...Option) *Server {
	t.Helper()
	s := NewServer(opts...)
	t.Cleanup(s.Close)
	return s
}

// MustClient is like Client but fails t on error.
func (s *Server) MustClient(t testing.TB) *rest.Client {
	t.Helper()
	c, err := s.Client()
	if err != nil {
		t.Fatalf("ormtest: client: %v", err)
	}
	return c
}

// URL returns the base URL of the server.
func (s *Server) URL() string {
	return s.srv.URL
}

// Close shuts the server down.
func (s *Server) Close() {
	s.srv.Close()
}

// Config returns a client configuration pointed at the server, for callers
// that want to add retry or breaker settings.
func (s *Server) Config() httpclient.Config {
	return httpclient.Config{Name: "ormtest", BaseURL: s.URL()}
}

// Client returns a REST client pointed at the server.
func (s *Server) Client() (*rest.Client, error) {
	return rest.New(s.Config())
}

// Seed appends items to the collection at path, e.g. "people" or
// "authors/1/books". Items are stored as given.
func (s *Server) Seed(path string, items ...map[string]any) {
	key := normalize(path)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resources[key] = append(s.resources[key], items...)
}

// Requests returns the requests received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// LastRequest returns the most recent request.
func (s *Server) LastRequest() (Request, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) == 0 {
		return Request{}, false
	}
	return s.requests[len(s.requests)-1], true
}

// Reset forgets recorded requests and pending failures. Seeded data stays.
func (s *Server) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = nil
	s.failures = nil
}

// FailNext makes the next n requests fail with status.
func (s *Server) FailNext(n, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for range n {
		s.failures = append(s.failures, status)
	}
}

func (s *Server) handle(c *gin.Context) {
	path := normalize(c.Param("path"))

	s.mu.Lock()
	items, isList := s.resources[path]
	var parent string
	var id string
	if !isList {
		if i := strings.LastIndex(path, "/"); i > 0 {
			parent, id = path[:i], path[i+1:]
		}
	}
	parentItems, isDetail := s.resources[parent]
	items = append([]map[string]any(nil), items...)
	parentItems = append([]map[string]any(nil), parentItems...)
	s.mu.Unlock()

	switch {
	case isList:
		s.list(c, path, items)
	case isDetail && id != "":
		s.detail(c, parent, id, parentItems)
	default:
		respondNotFound(c, path, "")
	}
}

func normalize(path string) string {
	return strings.Trim(path, "/")
}
