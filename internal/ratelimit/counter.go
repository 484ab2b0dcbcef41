package ratelimit

import (
	"context"
	"time"
)

// Counter counts hits per key inside fixed windows.
type Counter interface {
	// Hit records one hit for key and returns the number of hits in the current window.
	Hit(ctx context.Context, key string, window time.Duration) (int64, error)
}

func windowStart(now time.Time, window time.Duration) time.Time {
	return now.Truncate(window)
}
