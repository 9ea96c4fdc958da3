package ratelimit

import (
	"context"
	"time"
)

// Store holds the per-key timestamp sequences. Implementations must be safe
// for concurrent use; the limiter itself carries no state.
type Store interface {
	// PruneAndCount drops entries older than cutoff and returns how many
	// remain for the key.
	PruneAndCount(ctx context.Context, key string, cutoff time.Time) (int, error)
	// Append records a new request timestamp for the key.
	Append(ctx context.Context, key string, at time.Time) error
}

// Limiter is a sliding-window request throttle. It is advisory: store errors
// fail open so an unavailable backing store never blocks traffic.
type Limiter struct {
	limit  int
	window time.Duration
	store  Store
	now    func() time.Time
}

// New creates a limiter allowing limit requests per window for each key.
func New(limit int, window time.Duration, store Store) *Limiter {
	if limit <= 0 {
		limit = 60
	}
	if window <= 0 {
		window = time.Minute
	}
	return &Limiter{limit: limit, window: window, store: store, now: time.Now}
}

// Allow reports whether the request identified by key may proceed, recording
// it when allowed.
func (l *Limiter) Allow(ctx context.Context, key string) bool {
	now := l.now()
	count, err := l.store.PruneAndCount(ctx, key, now.Add(-l.window))
	if err != nil {
		return true
	}
	if count >= l.limit {
		return false
	}
	if err := l.store.Append(ctx, key, now); err != nil {
		return true
	}
	return true
}
