package ratelimit

import "context"

// RateLimiter controls outbound send throughput per tenant.
type RateLimiter interface {
	Allow(ctx context.Context, tenant string) (bool, error)
	Wait(ctx context.Context, tenant string) error
}
