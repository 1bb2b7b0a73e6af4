package session

import (
	"context"
	"sync"
	"time"
)

const DefaultDebounce = 300 * time.Millisecond

// Debouncer implements a trailing debounce: a call proceeds only if no newer
// call arrives within the delay. It never cancels work already under way.
type Debouncer struct {
	delay time.Duration

	mu      sync.Mutex
	pending chan struct{}
}

func NewDebouncer(delay time.Duration) *Debouncer {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &Debouncer{delay: delay}
}

// Wait blocks for the delay. It returns false early when a newer call
// supersedes this one or ctx ends.
func (d *Debouncer) Wait(ctx context.Context) bool {
	mine := make(chan struct{})
	d.mu.Lock()
	if d.pending != nil {
		close(d.pending)
	}
	d.pending = mine
	d.mu.Unlock()

	timer := time.NewTimer(d.delay)
	defer timer.Stop()

	select {
	case <-mine:
		return false
	case <-ctx.Done():
		d.release(mine)
		return false
	case <-timer.C:
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.pending != mine {
		return false
	}
	d.pending = nil
	return true
}

func (d *Debouncer) release(mine chan struct{}) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.pending == mine {
		d.pending = nil
	}
}
