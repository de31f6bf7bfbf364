// Package retrier retries failing calls with exponential backoff and jitter.
package retrier

import (
	"context"
	"math/rand/v2"
	"time"
)

const (
	defaultInitialInterval = time.Second
	defaultMaxInterval     = 30 * time.Second
	defaultMaxRetries      = 5
	defaultJitter          = 0.1
)

// Retrier retries a call, doubling the wait after every failure up to a ceiling.
type Retrier struct {
	initialInterval time.Duration
	maxInterval     time.Duration
	maxRetries      int
	jitter          float64
	retryIf         func(err error) bool
	onRetry         func(attempt int, err error, wait time.Duration)
}

// Option configures a Retrier.
type Option func(*Retrier)

// WithInitialInterval sets the wait before the first retry.
func WithInitialInterval(d time.Duration) Option {
	return func(r *Retrier) { r.initialInterval = d }
}

// WithMaxInterval caps the wait between retries.
func WithMaxInterval(d time.Duration) Option {
	return func(r *Retrier) { r.maxInterval = d }
}

// WithMaxRetries sets how many times a failed call is repeated.
func WithMaxRetries(n int) Option {
	return func(r *Retrier) { r.maxRetries = n }
}

// WithJitter spreads every wait by up to ±j of its length.
func WithJitter(j float64) Option {
	return func(r *Retrier) { r.jitter = j }
}

// WithRetryIf limits retries to errors the predicate accepts; others are returned at once.
func WithRetryIf(fn func(err error) bool) Option {
	return func(r *Retrier) { r.retryIf = fn }
}

// WithOnRetry registers a hook called before every retry sleep.
func WithOnRetry(fn func(attempt int, err error, wait time.Duration)) Option {
	return func(r *Retrier) { r.onRetry = fn }
}

// New creates a Retrier; unset options fall back to one second doubling up to 30s, five retries.
func New(opts ...Option) *Retrier {
	r := &Retrier{
		initialInterval: defaultInitialInterval,
		maxInterval:     defaultMaxInterval,
		maxRetries:      defaultMaxRetries,
		jitter:          defaultJitter,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// wait returns the pause before retry number attempt (1-based), without jitter.
func (r *Retrier) wait(attempt int) time.Duration {
	d := r.initialInterval
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= r.maxInterval {
			return r.maxInterval
		}
	}
	return min(d, r.maxInterval)
}

func (r *Retrier) spread(d time.Duration) time.Duration {
	if r.jitter <= 0 {
		return d
	}
	delta := (rand.Float64()*2 - 1) * r.jitter * float64(d)
	return max(time.Duration(float64(d)+delta), 0)
}

// Do calls fn until it succeeds, the retries run out, the predicate rejects the error
// or ctx is done. It returns the last error.
func (r *Retrier) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	err := fn(ctx)
	for attempt := 1; err != nil && attempt <= r.maxRetries; attempt++ {
		if r.retryIf != nil && !r.retryIf(err) {
			return err
		}

		pause := r.spread(r.wait(attempt))
		if r.onRetry != nil {
			r.onRetry(attempt, err, pause)
		}

		timer := time.NewTimer(pause)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		err = fn(ctx)
	}
	return err
}
