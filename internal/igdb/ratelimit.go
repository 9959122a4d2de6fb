package igdb

import (
	"context"

	"golang.org/x/time/rate"
)

// DefaultRequestsPerSecond is the outbound request quota the IGDB API
// tolerates comfortably.
const DefaultRequestsPerSecond = 4

// Limiter gates outbound API requests. One instance is shared by every call
// site so the total outbound rate is bounded process-wide. Wait blocks until
// a token is available and fails only on context cancellation.
type Limiter interface {
	Wait(ctx context.Context) error
}

// NewLimiter returns a token-bucket limiter allowing perSecond requests per
// second.
func NewLimiter(perSecond int) *rate.Limiter {
	if perSecond <= 0 {
		perSecond = DefaultRequestsPerSecond
	}
	return rate.NewLimiter(rate.Limit(perSecond), perSecond)
}
