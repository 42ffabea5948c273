package resilience

import "context"

// Policy composes the optional guards around a single remote call in the
// order rate limit, circuit breaker, retry. Nil fields are skipped.
type Policy struct {
	Retry   *RetryConfig
	Breaker *CircuitBreaker
	Limiter *RateLimiter
}

// Do runs fn under the policy. A nil Policy runs fn directly.
func Do[T any](ctx context.Context, p *Policy, fn func() (T, error)) (T, error) {
	if p == nil {
		return fn()
	}
	once := func() (T, error) {
		var zero T
		if p.Limiter != nil {
			if err := p.Limiter.Wait(ctx); err != nil {
				return zero, err
			}
		}
		if p.Breaker == nil {
			return fn()
		}
		var result T
		err := p.Breaker.Execute(func() error {
			var callErr error
			result, callErr = fn()
			return callErr
		})
		return result, err
	}

	if p.Retry == nil {
		return once()
	}
	return Retry(ctx, *p.Retry, once)
}
