package search

import (
	"sync"
	"time"
)

// DefaultDebounceInterval is the quiet window applied to raw keystroke input
// before a query is committed.
const DefaultDebounceInterval = 300 * time.Millisecond

// Debouncer turns a stream of raw input values into a single committed value
// once the stream has been quiet for the configured interval. If further
// input arrives within the window the timer restarts; intermediate values
// are dropped, never queued.
type Debouncer struct {
	mu       sync.Mutex
	interval time.Duration
	commit   func(string)
	timer    *time.Timer
	latest   string
	stopped  bool
}

func NewDebouncer(interval time.Duration, commit func(string)) *Debouncer {
	if interval <= 0 {
		interval = DefaultDebounceInterval
	}
	return &Debouncer{
		interval: interval,
		commit:   commit,
	}
}

// Input records a raw value and restarts the quiet-window timer.
func (d *Debouncer) Input(raw string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	d.latest = raw
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.interval, d.fire)
}

func (d *Debouncer) fire() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	value := d.latest
	d.timer = nil
	d.mu.Unlock()

	d.commit(value)
}

// Stop cancels any pending commit. A stopped debouncer ignores further input.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
