// Package effects decides which decorative weather effects a forecast code
// asks for and runs the lightning flasher.
package effects

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"
)

const (
	rainParticles = 80
	snowParticles = 50
	hailParticles = 40
)

// Plan lists the particle counts per layer. Layers are independent; a hail
// storm also rains and flashes.
type Plan struct {
	Rain      int  `json:"rain"`
	Snow      int  `json:"snow"`
	Hail      int  `json:"hail"`
	Lightning bool `json:"lightning"`
}

func (p Plan) Empty() bool {
	return p == Plan{}
}

func PlanFor(code int) Plan {
	var p Plan
	if (code >= 51 && code <= 67) || (code >= 80 && code <= 82) {
		p.Rain = rainParticles
	}
	if (code >= 71 && code <= 77) || (code >= 85 && code <= 86) {
		p.Snow = snowParticles
	}
	if code == 77 || code >= 96 {
		p.Hail = hailParticles
	}
	p.Lightning = code >= 95
	return p
}

type Flash struct {
	At       time.Time     `json:"at"`
	Duration time.Duration `json:"duration"`
}

const (
	DefaultFlashInterval = time.Second
	DefaultFlashChance   = 0.05
	flashDuration        = 500 * time.Millisecond
)

// Lightning owns at most one running flasher. Each Trigger cancels the previous
// flasher and waits for it to exit before starting the next.
type Lightning struct {
	interval time.Duration
	chance   float64
	roll     func() float64

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewLightning(interval time.Duration, chance float64) *Lightning {
	if interval <= 0 {
		interval = DefaultFlashInterval
	}
	return &Lightning{interval: interval, chance: chance, roll: rand.Float64}
}

// Trigger replaces the running flasher. With active false it only stops the
// current one. emit is called from the flasher goroutine and must not block.
func (l *Lightning) Trigger(parent context.Context, active bool, emit func(Flash)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stopLocked()
	if !active {
		return
	}
	ctx, cancel := context.WithCancel(parent)
	done := make(chan struct{})
	l.cancel, l.done = cancel, done
	go l.run(ctx, done, emit)
}

func (l *Lightning) run(ctx context.Context, done chan struct{}, emit func(Flash)) {
	defer close(done)
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if l.roll() < l.chance {
				emit(Flash{At: now, Duration: flashDuration})
			}
		}
	}
}

func (l *Lightning) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stopLocked()
}

func (l *Lightning) Running() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.done == nil {
		return false
	}
	select {
	case <-l.done:
		return false
	default:
		return true
	}
}

func (l *Lightning) stopLocked() {
	if l.cancel == nil {
		return
	}
	l.cancel()
	<-l.done
	l.cancel, l.done = nil, nil
}
