package repeat

import (
	"context"
	"time"
)

// Repeat calls f until it succeeds, up to attempts times, sleeping delay
// between tries. The last error is returned when every attempt fails.
func Repeat(f func() error, attempts int, delay time.Duration) error {
	return WithContext(context.Background(), f, attempts, delay)
}

// WithContext is Repeat with cancellation between attempts. A canceled
// context stops the loop and returns the context error.
func WithContext(ctx context.Context, f func() error, attempts int, delay time.Duration) error {
	var err error
	for i := 0; i < attempts; i++ {
		if err = f(); err == nil {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}

	return err
}
