package session

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Info summarizes a stored session for listings.
type Info struct {
	ID         string    `json:"id"`
	Revision   uint64    `json:"revision"`
	Dimensions int       `json:"dimensions"`
	Series     int       `json:"series"`
	CreatedAt  time.Time `json:"created_at"`
	LastUsed   time.Time `json:"last_used"`
}

type entry struct {
	mu        sync.Mutex
	session   *Session
	createdAt time.Time
	seq       uint64       // creation order
	lastUsed  atomic.Int64 // unix nanoseconds
}

func (e *entry) touch(now time.Time) {
	e.lastUsed.Store(now.UnixNano())
}

func (e *entry) idleSince() time.Time {
	return time.Unix(0, e.lastUsed.Load())
}

// Store is an in-memory registry of sessions keyed by id. Each session is
// guarded by its own mutex so requests against one session serialize while
// different sessions proceed in parallel.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*entry
	logger   *slog.Logger
	now      func() time.Time
	onEvict  func(ids []string)
	created  uint64
}

// NewStore creates an empty store.
func NewStore(logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		sessions: make(map[string]*entry),
		logger:   logger.With(slog.String("component", "session_store")),
		now:      time.Now,
	}
}

// Create registers a new empty session under a fresh id.
func (s *Store) Create(settings Settings) *Session {
	sess := New(uuid.NewString(), settings)
	now := s.now()
	e := &entry{session: sess, createdAt: now}
	e.touch(now)

	s.mu.Lock()
	s.created++
	e.seq = s.created
	s.sessions[sess.ID()] = e
	s.mu.Unlock()

	s.logger.Debug("session created", slog.String("session_id", sess.ID()))
	return sess
}

func (s *Store) lookup(id string) (*entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, exists := s.sessions[id]
	if !exists {
		return nil, fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	return e, nil
}

// Get returns the session with the given id. The returned session must only
// be used through With while other goroutines may reach it.
func (s *Store) Get(id string) (*Session, error) {
	e, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	return e.session, nil
}

// With runs fn with exclusive access to the session and marks it used.
func (s *Store) With(id string, fn func(*Session) error) error {
	e, err := s.lookup(id)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.touch(s.now())
	return fn(e.session)
}

// Delete removes a session.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sessions[id]; !exists {
		return fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	delete(s.sessions, id)
	s.logger.Debug("session deleted", slog.String("session_id", id))
	return nil
}

// List returns every session, newest first.
func (s *Store) List() []Info {
	s.mu.RLock()
	entries := make([]*entry, 0, len(s.sessions))
	for _, e := range s.sessions {
		entries = append(entries, e)
	}
	s.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].seq > entries[j].seq
	})

	infos := make([]Info, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		info := Info{
			ID:         e.session.ID(),
			Revision:   e.session.Revision(),
			Dimensions: len(e.session.model.Dimensions()),
			Series:     len(e.session.model.Series()),
			CreatedAt:  e.createdAt,
			LastUsed:   e.idleSince(),
		}
		e.mu.Unlock()
		infos = append(infos, info)
	}
	return infos
}

// Len returns the number of stored sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// OnEvict registers fn to be called with the ids removed by each Evict
// pass that removed at least one session. It runs outside the store lock.
func (s *Store) OnEvict(fn func(ids []string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onEvict = fn
}

// Evict removes sessions unused for longer than olderThan and returns how
// many were removed.
func (s *Store) Evict(olderThan time.Duration) int {
	cutoff := s.now().Add(-olderThan)

	s.mu.Lock()
	var evicted []string
	for id, e := range s.sessions {
		if e.idleSince().Before(cutoff) {
			delete(s.sessions, id)
			evicted = append(evicted, id)
		}
	}
	remaining := len(s.sessions)
	hook := s.onEvict
	s.mu.Unlock()

	if len(evicted) == 0 {
		return 0
	}

	s.logger.Info("evicted idle sessions",
		slog.Int("evicted", len(evicted)),
		slog.Int("remaining", remaining),
		slog.Duration("ttl", olderThan))

	if hook != nil {
		sort.Strings(evicted)
		hook(evicted)
	}
	return len(evicted)
}

// Run evicts sessions idle for longer than ttl every interval until ctx is
// done.
func (s *Store) Run(ctx context.Context, interval, ttl time.Duration) {
	if interval <= 0 || ttl <= 0 {
		s.logger.Warn("session eviction disabled",
			slog.Duration("interval", interval),
			slog.Duration("ttl", ttl))
		<-ctx.Done()
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Evict(ttl)
		}
	}
}
