// ABOUTME: Rate-limiting decorator for any completion client
// ABOUTME: Ingestion issues many calls in a row; this keeps them under the provider's limits
package llm

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// RateLimited waits on a token bucket before each call
type RateLimited struct {
	next    Client
	limiter *rate.Limiter
}

// NewRateLimited wraps next with a limiter of rps requests per second
func NewRateLimited(next Client, rps float64, burst int) *RateLimited {
	if burst < 1 {
		burst = 1
	}
	return &RateLimited{
		next:    next,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

// Complete waits for a token, then delegates
func (r *RateLimited) Complete(ctx context.Context, prompt string) (string, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter: %w", err)
	}
	return r.next.Complete(ctx, prompt)
}

// Model reports the wrapped client's model
func (r *RateLimited) Model() string {
	return ModelName(r.next)
}
