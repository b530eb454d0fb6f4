// Package retry provides bounded retry with a fixed delay for remote calls.
package retry

import (
	"context"
	"fmt"
	"time"
)

// Do runs fn up to attempts times, sleeping delay between tries. Only errors
// for which retryable returns true are retried; anything else propagates
// immediately. Exhausting the attempts returns the last error wrapped.
func Do(ctx context.Context, attempts int, delay time.Duration, retryable func(error) bool, fn func() error) error {
	var last error
	for i := 0; i < attempts; i++ {
		last = fn()
		if last == nil {
			return nil
		}
		if !retryable(last) {
			return last
		}
		if i == attempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return fmt.Errorf("after %d attempts: %w", attempts, last)
}
