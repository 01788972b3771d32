// Package search runs the event search as the user types.
package search

import (
	"context"
	"sync"
	"time"
)

const DefaultDelay = 300 * time.Millisecond

// FetchFunc runs one search. ctx is cancelled as soon as a newer search is
// scheduled, so a late result can be recognised and dropped.
type FetchFunc func(ctx context.Context, query string)

// Debouncer coalesces rapid Trigger calls into one fetch of the latest
// query, issued after the input has been quiet for the delay.
type Debouncer struct {
	delay time.Duration
	fetch FetchFunc
	base  context.Context

	mu      sync.Mutex
	timer   *time.Timer
	cancel  context.CancelFunc
	stopped bool
}

func NewDebouncer(ctx context.Context, delay time.Duration, fetch FetchFunc) *Debouncer {
	return &Debouncer{
		delay: delay,
		fetch: fetch,
		base:  ctx,
	}
}

// Trigger schedules a fetch for query, replacing any fetch that has not
// fired yet and cancelling one that is still running.
func (d *Debouncer) Trigger(query string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	d.resetLocked()

	ctx, cancel := context.WithCancel(d.base)
	d.cancel = cancel
	d.timer = time.AfterFunc(d.delay, func() {
		if ctx.Err() != nil {
			return
		}
		d.fetch(ctx, query)
	})
}

// Stop cancels everything pending or running. Later triggers are ignored.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	d.resetLocked()
}

func (d *Debouncer) resetLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
}
