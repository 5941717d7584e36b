package nvd

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

const (
	// RateWindow is the fixed window the NVD quota is measured against.
	RateWindow = 30 * time.Second

	// DefaultKeylessQuota and DefaultKeyedQuota are the documented NVD
	// request quotas per 30-second window without and with an API key.
	DefaultKeylessQuota = 5
	DefaultKeyedQuota   = 50
)

// Limiter paces outbound requests with a uniform inter-request delay of
// RateWindow/quota. Burst 1 keeps spacing strictly even, trading burst
// throughput for a hard guarantee of staying inside the quota. One instance
// must be shared by every fetch session using the same credential.
type Limiter struct {
	quota   int
	limiter *rate.Limiter
}

// NewLimiter builds a limiter for the given quota of requests per 30s window.
func NewLimiter(quota int) *Limiter {
	if quota <= 0 {
		quota = DefaultKeylessQuota
	}
	return &Limiter{
		quota:   quota,
		limiter: rate.NewLimiter(rate.Every(RateWindow/time.Duration(quota)), 1),
	}
}

// Wait blocks the calling goroutine until the next dispatch slot. It only
// fails when ctx is cancelled; the delay itself never errors.
func (l *Limiter) Wait(ctx context.Context) error {
	return l.limiter.Wait(ctx)
}

// Quota reports the configured requests-per-window limit.
func (l *Limiter) Quota() int {
	return l.quota
}

// Delay reports the enforced spacing between consecutive dispatches.
func (l *Limiter) Delay() time.Duration {
	return RateWindow / time.Duration(l.quota)
}
