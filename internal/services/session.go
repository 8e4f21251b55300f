package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/bobby-s-dev/weather-app/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrSuperseded is returned to a search whose result arrived after a newer
// search (or a clear) on the same session.
var ErrSuperseded = errors.New("search superseded by a newer request")

type ViewModelProvider interface {
	GetViewModel(ctx context.Context, q Query) (*models.ViewModel, error)
}

// Session owns the single current view model for one user. Searches follow a
// last-search-wins policy: starting a search cancels the one in flight, and a
// result is committed only if no newer search or clear happened meanwhile.
// A failed search leaves the previous view model in place.
type Session struct {
	id       string
	provider ViewModelProvider
	logger   *zap.Logger

	mu         sync.Mutex
	generation uint64
	cancel     context.CancelFunc
	current    *models.ViewModel
	lastAccess time.Time
}

func NewSession(provider ViewModelProvider, logger *zap.Logger) *Session {
	return &Session{
		id:         uuid.NewString(),
		provider:   provider,
		logger:     logger,
		lastAccess: time.Now(),
	}
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) Search(ctx context.Context, q Query) (*models.ViewModel, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.generation++
	gen := s.generation
	if s.cancel != nil {
		s.cancel()
	}
	searchCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.lastAccess = time.Now()
	s.mu.Unlock()
	defer cancel()

	vm, err := s.provider.GetViewModel(searchCtx, q)

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		s.logger.Debug("Discarding stale search result",
			zap.String("session", s.id),
			zap.String("query", q.String()),
			zap.Uint64("generation", gen),
			zap.Uint64("current_generation", s.generation))
		return nil, ErrSuperseded
	}
	s.cancel = nil

	if err != nil {
		s.logger.Warn("Search failed, keeping previous view model",
			zap.String("session", s.id),
			zap.String("query", q.String()),
			zap.Error(err))
		return nil, err
	}

	s.current = vm
	return vm, nil
}

// Current returns the committed view model, or nil.
func (s *Session) Current() *models.ViewModel {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastAccess = time.Now()
	return s.current
}

// Clear discards the current view model and any search in flight.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.generation++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.current = nil
	s.lastAccess = time.Now()
}

func (s *Session) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastAccess
}

type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	provider ViewModelProvider
	logger   *zap.Logger
}

func NewSessionStore(provider ViewModelProvider, logger *zap.Logger) *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*Session),
		provider: provider,
		logger:   logger,
	}
}

func (st *SessionStore) Create() *Session {
	s := NewSession(st.provider, st.logger)

	st.mu.Lock()
	st.sessions[s.ID()] = s
	st.mu.Unlock()

	return s
}

func (st *SessionStore) Get(id string) (*Session, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.sessions[id]
	return s, ok
}

func (st *SessionStore) Delete(id string) {
	st.mu.Lock()
	s, ok := st.sessions[id]
	delete(st.sessions, id)
	st.mu.Unlock()

	if ok {
		s.Clear()
	}
}

func (st *SessionStore) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// PruneIdle drops sessions untouched for longer than ttl and returns how many went.
func (st *SessionStore) PruneIdle(ttl time.Duration) int {
	cutoff := time.Now().Add(-ttl)

	st.mu.Lock()
	var stale []*Session
	for id, s := range st.sessions {
		if s.idleSince().Before(cutoff) {
			stale = append(stale, s)
			delete(st.sessions, id)
		}
	}
	st.mu.Unlock()

	for _, s := range stale {
		s.Clear()
	}
	if len(stale) > 0 {
		st.logger.Info("Pruned idle sessions", zap.Int("count", len(stale)))
	}
	return len(stale)
}
