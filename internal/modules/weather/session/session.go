// Package session keeps the per-browser dashboard state: the last committed
// lookup, the suggestion debouncer, and the lightning flasher.
package session

import (
	"context"
	"sync"
	"time"

	"weatherdash/internal/modules/weather/aggregate"
	"weatherdash/internal/modules/weather/effects"
	"weatherdash/internal/modules/weather/types"
)

// Snapshot is one committed lookup. It replaces the previous one as a whole.
type Snapshot struct {
	Place       string
	CountryCode string
	Coordinates types.Coordinates
	Result      aggregate.Result
	FetchedAt   time.Time
}

type State struct {
	ID string

	mu        sync.Mutex
	nextSeq   uint64
	committed uint64
	last      *Snapshot
	touched   time.Time
	language  types.Language

	debouncer *Debouncer
	lightning *effects.Lightning
	flashes   chan effects.Flash
	ctx       context.Context
	cancel    context.CancelFunc
}

func newState(id string, debounce time.Duration, now time.Time) *State {
	ctx, cancel := context.WithCancel(context.Background())
	return &State{
		ID:        id,
		touched:   now,
		debouncer: NewDebouncer(debounce),
		lightning: effects.NewLightning(effects.DefaultFlashInterval, effects.DefaultFlashChance),
		flashes:   make(chan effects.Flash, 8),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Begin hands out the sequence number for a new lookup.
func (s *State) Begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSeq++
	return s.nextSeq
}

// Commit stores snap if no newer lookup has been committed. It reports whether
// snap is now the current state; a false return means the response is stale.
func (s *State) Commit(seq uint64, snap Snapshot) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq <= s.committed {
		return false
	}
	s.committed = seq
	s.last = &snap
	return true
}

func (s *State) Last() (Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		return Snapshot{}, false
	}
	return *s.last, true
}

// SetLanguage sets the language in effect for this session only. A guess
// from the resolved location lands here and is never persisted.
func (s *State) SetLanguage(lang types.Language) {
	s.mu.Lock()
	s.language = lang
	s.mu.Unlock()
}

func (s *State) Language() (types.Language, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.language, s.language != ""
}

func (s *State) Debouncer() *Debouncer { return s.debouncer }

// Done is closed when the session is torn down.
func (s *State) Done() <-chan struct{} { return s.ctx.Done() }

// Flashes delivers lightning flashes for the session's event stream.
func (s *State) Flashes() <-chan effects.Flash { return s.flashes }

// ApplyEffects restarts the lightning flasher for plan. Flashes nobody is
// reading are dropped.
func (s *State) ApplyEffects(plan effects.Plan) {
	s.lightning.Trigger(s.ctx, plan.Lightning, func(f effects.Flash) {
		select {
		case s.flashes <- f:
		default:
		}
	})
}

func (s *State) LightningActive() bool { return s.lightning.Running() }

func (s *State) touch(now time.Time) {
	s.mu.Lock()
	s.touched = now
	s.mu.Unlock()
}

func (s *State) idleSince(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.touched)
}

// Close stops everything the session runs in the background.
func (s *State) Close() {
	s.cancel()
	s.lightning.Stop()
}
