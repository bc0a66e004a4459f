package background

import (
	"sync"
	"time"
)

// defaultBroadcastDelay collapses bursts of settings writes into one
// settingsUpdated push.
const defaultBroadcastDelay = 250 * time.Millisecond

// debouncer runs the latest function after a quiet period. Each Trigger
// resets the timer, so only the last call in a burst fires.
type debouncer struct {
	mu    sync.Mutex
	delay time.Duration
	timer *time.Timer
}

func newDebouncer(delay time.Duration) *debouncer {
	return &debouncer{delay: delay}
}

func (d *debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, fn)
}
