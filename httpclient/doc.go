// Package httpclient is the transport under restorm's querysets: a
// configurable HTTP client with authentication (bearer, basic, API key,
// per-request signed JWT), TLS, and resilience (retry, circuit breaker,
// rate limiting).
//
// The rest subpackage layers JSON decoding on top of it.
//
//	client, err := httpclient.New(httpclient.Config{
//	    BaseURL:        "https://api.example.com",
//	    Auth:           httpclient.JWTAuth(secret, "restorm"),
//	    Retry:          httpclient.DefaultRetryConfig(),
//	    CircuitBreaker: httpclient.DefaultCircuitBreakerConfig("example-api"),
//	})
//
//	resp, err := client.Do(ctx, httpclient.Request{Path: "/people"})
//
// Transport failures are classified as *Error. ToAppError maps them onto
// the restorm errors package so callers can branch on one vocabulary.
package httpclient
