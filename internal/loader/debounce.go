package loader

import (
	"sync"
	"time"
)

// Debouncer coalesces a rapid stream of values into a single trailing
// commit: the commit callback fires once per quiet window, with the last
// value seen. Independent of any UI layer.
type Debouncer[T any] struct {
	mu      sync.Mutex
	delay   time.Duration
	commit  func(T)
	timer   *time.Timer
	stopped bool
}

// NewDebouncer creates a debouncer that calls commit after delay of quiet
func NewDebouncer[T any](delay time.Duration, commit func(T)) *Debouncer[T] {
	return &Debouncer[T]{delay: delay, commit: commit}
}

// Set records a new raw value and restarts the quiet-window timer. The
// commit callback runs on a timer goroutine once no newer value arrives
// within the window.
func (d *Debouncer[T]) Set(v T) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		if d.stopped {
			d.mu.Unlock()
			return
		}
		d.mu.Unlock()
		d.commit(v)
	})
}

// Stop clears any pending timer. Nothing commits after Stop returns, so a
// torn-down owner never sees a dangling callback fire.
func (d *Debouncer[T]) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
