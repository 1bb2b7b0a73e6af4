package session

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

type Store struct {
	debounce time.Duration
	idleTTL  time.Duration
	now      func() time.Time
	logger   *slog.Logger

	mu       sync.Mutex
	sessions map[string]*State
}

func NewStore(debounce, idleTTL time.Duration, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		debounce: debounce,
		idleTTL:  idleTTL,
		now:      time.Now,
		logger:   logger,
		sessions: make(map[string]*State),
	}
}

// Get returns the state for id, creating it on first use.
func (st *Store) Get(id string) *State {
	now := st.now()
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.sessions[id]
	if !ok {
		s = newState(id, st.debounce, now)
		st.sessions[id] = s
		st.logger.Debug("session created", "session", id)
	}
	s.touch(now)
	return s
}

func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

// Sweep closes sessions idle for longer than the TTL and returns how many
// were removed.
func (st *Store) Sweep() int {
	now := st.now()
	st.mu.Lock()
	defer st.mu.Unlock()
	n := 0
	for id, s := range st.sessions {
		if s.idleSince(now) > st.idleTTL {
			s.Close()
			delete(st.sessions, id)
			n++
		}
	}
	if n > 0 {
		st.logger.Debug("sessions swept", "count", n, "remaining", len(st.sessions))
	}
	return n
}

// RunSweeper sweeps on every tick until ctx ends.
func (st *Store) RunSweeper(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			st.Sweep()
		}
	}
}

// Close tears down every session.
func (st *Store) Close() {
	st.mu.Lock()
	defer st.mu.Unlock()
	for id, s := range st.sessions {
		s.Close()
		delete(st.sessions, id)
	}
}
