// Package resilience guards outbound REST calls against flaky remotes.
//
// It provides a token bucket RateLimiter, a CircuitBreaker that fails fast
// once a service keeps erroring, and Retry with exponential backoff. A Policy
// composes all three around one call:
//
//	p := &resilience.Policy{
//	    Retry:   &retryCfg,
//	    Breaker: resilience.NewCircuitBreaker(resilience.DefaultCircuitBreakerConfig("api")),
//	    Limiter: resilience.NewRateLimiter(resilience.DefaultRateLimiterConfig("api")),
//	}
//	resp, err := resilience.Do(ctx, p, func() (*Response, error) { return send(ctx) })
package resilience
