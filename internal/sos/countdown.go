package sos

import (
	"context"
	"sync"
	"sync/atomic"

	"safecircle/internal/models"
)

// Countdown states. Transitions go counting -> cancelled or counting ->
// sending, exactly once, never between the two.
const (
	stateCounting int32 = iota
	stateCancelled
	stateSending
)

// Countdown is the handle returned by Trigger. Wait blocks until the alert
// is dispatched or cancelled; Cancel aborts only while the timer is still
// running.
type Countdown struct {
	done      chan struct{}
	cancelled chan struct{}

	state       atomic.Int32
	resolveOnce sync.Once

	rec *models.SOSRecord
	err error
}

// Cancel aborts the countdown. Returns true when the abort happened before
// dispatch began; in that case no record was or will be created. Once
// dispatch has started, Cancel has no effect and reports false.
func (cd *Countdown) Cancel() bool {
	if cd.state.CompareAndSwap(stateCounting, stateCancelled) {
		close(cd.cancelled)
		return true
	}
	return false
}

// beginSend claims the dispatch slot. It loses to a cancellation that was
// already acknowledged, even when the timer fired in the same instant.
func (cd *Countdown) beginSend() bool {
	return cd.state.CompareAndSwap(stateCounting, stateSending)
}

// Wait blocks until resolution and returns the queued record, ErrCancelled,
// or the context error.
func (cd *Countdown) Wait(ctx context.Context) (*models.SOSRecord, error) {
	select {
	case <-cd.done:
		return cd.rec, cd.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Done exposes completion for select loops.
func (cd *Countdown) Done() <-chan struct{} { return cd.done }

func (cd *Countdown) resolve(rec *models.SOSRecord, err error) {
	cd.resolveOnce.Do(func() {
		cd.rec = rec
		cd.err = err
		close(cd.done)
	})
}
