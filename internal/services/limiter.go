package services

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/semaphore"
)

const rateWaitTimeout = 5 * time.Minute

// requestSlots bounds in-flight provider calls.
type requestSlots struct {
	sem *semaphore.Weighted
}

func newRequestSlots(n int) *requestSlots {
	if n < 1 {
		n = 1
	}
	return &requestSlots{sem: semaphore.NewWeighted(int64(n))}
}

// acquire blocks until a slot is available
func (r *requestSlots) acquire(ctx context.Context, provider string) error {
	waitCtx, cancel := context.WithTimeout(ctx, rateWaitTimeout)
	defer cancel()

	if err := r.sem.Acquire(waitCtx, 1); err != nil {
		if ctx.Err() == nil {
			err = fmt.Errorf("timeout waiting for %s rate slot", provider)
		}
		return &TransportError{Provider: provider, Err: err}
	}
	return nil
}

func (r *requestSlots) release() {
	r.sem.Release(1)
}
