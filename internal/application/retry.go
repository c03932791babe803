package application

import (
	"context"
	"errors"
	"time"

	"github.com/example/campus-scheduler/internal/persistence"
)

// RetryPolicy configures retries of storage reads that fail transiently.
type RetryPolicy struct {
	MaxRetries    int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
}

// DefaultRetryPolicy retries three times starting at 50ms, capped at 1s.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:    3,
		InitialDelay:  50 * time.Millisecond,
		MaxDelay:      time.Second,
		BackoffFactor: 2.0,
	}
}

// normalized clamps values that would skip the first attempt or collapse
// later delays to zero.
func (p RetryPolicy) normalized() RetryPolicy {
	def := DefaultRetryPolicy()
	if p.MaxRetries < 0 {
		p.MaxRetries = 0
	}
	if p.InitialDelay <= 0 {
		p.InitialDelay = def.InitialDelay
	}
	if p.BackoffFactor < 1 {
		p.BackoffFactor = 1
	}
	if p.MaxDelay < p.InitialDelay {
		p.MaxDelay = p.InitialDelay
	}
	return p
}

// do runs fn until it succeeds, fails with an error other than
// persistence.ErrUnavailable, exhausts the retries or ctx is done. fn is
// always called at least once.
func (p RetryPolicy) do(ctx context.Context, fn func() error) error {
	p = p.normalized()
	delay := p.InitialDelay

	for attempt := 0; ; attempt++ {
		err := fn()
		if err == nil || !errors.Is(err, persistence.ErrUnavailable) || attempt >= p.MaxRetries {
			return err
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		delay = time.Duration(float64(delay) * p.BackoffFactor)
		if delay > p.MaxDelay {
			delay = p.MaxDelay
		}
	}
}
