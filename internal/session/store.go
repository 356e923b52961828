package session

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/baalimago/go_away_boilerplate/pkg/ancli"
	"github.com/baalimago/go_away_boilerplate/pkg/misc"
	"github.com/baalimago/webagent/internal/vendors"
	"github.com/google/uuid"
)

const DefaultTTL = 24 * time.Hour

// Store keeps sessions in memory, for the lifetime of the process.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
	now      func() time.Time
	debug    bool
}

func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		now:      time.Now,
		debug:    misc.Truthy(os.Getenv("DEBUG")),
	}
}

func (st *Store) Create(model vendors.Choice) *Session {
	s := newSession(uuid.NewString(), model, st.now())
	st.mu.Lock()
	defer st.mu.Unlock()
	st.sessions[s.ID] = s
	if st.debug {
		ancli.Okf("created session: %v, model: %v\n", s.ID, model)
	}
	return s
}

func (st *Store) Get(id string) (*Session, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: '%v'", ErrNotFound, id)
	}
	return s, nil
}

func (st *Store) Delete(id string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.sessions, id)
}

func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// Sweep evicts sessions idle for longer than the ttl, relative to now.
// Sessions with a turn in flight are kept. Returns the amount evicted.
func (st *Store) Sweep(now time.Time) int {
	cutoff := now.Add(-st.ttl)
	st.mu.Lock()
	defer st.mu.Unlock()
	am := 0
	for id, s := range st.sessions {
		if s.idleSince(cutoff) {
			delete(st.sessions, id)
			am++
		}
	}
	if st.debug && am > 0 {
		ancli.Okf("evicted %v idle sessions\n", am)
	}
	return am
}

// Janitor sweeps every interval until ctx is cancelled.
func (st *Store) Janitor(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			st.Sweep(st.now())
		}
	}
}
