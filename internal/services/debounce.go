package services

import (
	"sync"
	"time"
)

// DefaultAutoSyncDelay is the quiescence window before an auto push fires.
const DefaultAutoSyncDelay = 3 * time.Second

// Debouncer coalesces a burst of triggers into one invocation of fn after
// the delay elapses with no further trigger. A single timer is re-armed on
// each trigger rather than stacking timers.
type Debouncer struct {
	mu    sync.Mutex
	delay time.Duration
	fn    func()
	timer *time.Timer
}

func NewDebouncer(delay time.Duration, fn func()) *Debouncer {
	if delay <= 0 {
		delay = DefaultAutoSyncDelay
	}
	return &Debouncer{delay: delay, fn: fn}
}

// Trigger arms or re-arms the timer.
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, d.fn)
}

// Stop cancels a pending invocation, if any.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
