// Package debounce coalesces bursts of values into one trailing call.
package debounce

import (
	"sync"
	"time"
)

// Debouncer delivers the most recent value passed to Trigger once no new
// value has arrived for the configured wait. Every Trigger restarts the
// quiet period; the last value of a burst is always delivered unless Stop is
// called first. Calls to fn never overlap.
type Debouncer[T any] struct {
	wait time.Duration
	fn   func(T)

	mu      sync.Mutex
	timer   *time.Timer
	latest  T
	pending bool
	gen     uint64
	stopped bool

	callMu sync.Mutex
}

func New[T any](wait time.Duration, fn func(T)) *Debouncer[T] {
	return &Debouncer[T]{wait: wait, fn: fn}
}

// Trigger records v and (re)starts the quiet period.
func (d *Debouncer[T]) Trigger(v T) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	d.latest = v
	d.pending = true
	d.gen++
	gen := d.gen
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.wait, func() { d.fire(gen) })
}

func (d *Debouncer[T]) fire(gen uint64) {
	d.mu.Lock()
	// a newer Trigger, a Flush or Stop superseded this timer
	if d.stopped || !d.pending || gen != d.gen {
		d.mu.Unlock()
		return
	}
	v := d.take()
	d.mu.Unlock()
	d.call(v)
}

// take clears the pending state; d.mu must be held.
func (d *Debouncer[T]) take() T {
	v := d.latest
	var zero T
	d.latest = zero
	d.pending = false
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	return v
}

func (d *Debouncer[T]) call(v T) {
	d.callMu.Lock()
	defer d.callMu.Unlock()
	d.fn(v)
}

// Flush delivers a pending value immediately. It reports whether a value was
// delivered.
func (d *Debouncer[T]) Flush() bool {
	d.mu.Lock()
	if d.stopped || !d.pending {
		d.mu.Unlock()
		return false
	}
	v := d.take()
	d.mu.Unlock()
	d.call(v)
	return true
}

// Pending reports whether a value is waiting for its quiet period.
func (d *Debouncer[T]) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}

// Stop drops any pending value and ignores later Triggers.
func (d *Debouncer[T]) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	d.take()
}
