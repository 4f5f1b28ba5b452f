package batch

import (
	"time"
)

// Option configures a Run call.
type Option func(*config)

type config struct {
	workers    int
	maxRetries int
	backoff    Backoff
}

// defaultConfig returns the default configuration.
func defaultConfig() *config {
	return &config{
		workers:    1,
		maxRetries: 0,
	}
}

// WithWorkers sets the number of concurrent workers.
// Default is 1 (sequential).
func WithWorkers(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.workers = n
		}
	}
}

// Backoff returns the wait before retry number attempt (1-based).
type Backoff func(attempt int) time.Duration

// WithRetry retries a failed job up to maxRetries more times, waiting
// backoff(attempt) before each retry. A nil backoff retries immediately.
func WithRetry(maxRetries int, backoff Backoff) Option {
	return func(c *config) {
		if maxRetries >= 0 {
			c.maxRetries = maxRetries
		}
		c.backoff = backoff
	}
}

// ConstantBackoff waits d before every retry.
func ConstantBackoff(d time.Duration) Backoff {
	return func(int) time.Duration { return d }
}

// ExponentialBackoff doubles the wait on every retry starting from initial,
// never exceeding limit. A non-positive limit leaves the wait uncapped.
func ExponentialBackoff(initial, limit time.Duration) Backoff {
	return func(attempt int) time.Duration {
		d := initial
		for i := 1; i < attempt; i++ {
			d *= 2
			if limit > 0 && d >= limit {
				return limit
			}
		}
		if limit > 0 && d > limit {
			return limit
		}
		return d
	}
}
