package memory

import (
	"context"
	"sync"
	"time"

	"github.com/Ragnaroek/terminus/internal/domain"
	"github.com/Ragnaroek/terminus/internal/usecase"
)

type sessionEntry struct {
	session   domain.Session
	createdAt time.Time
}

type Store struct {
	mu sync.RWMutex
	// ring by insertion order of session ids
	order []string
	items map[string]*sessionEntry

	maxSessions int
	ttl         time.Duration
	now         func() time.Time
}

func NewStore(maxSessions int, ttl time.Duration) *Store {
	if maxSessions <= 0 {
		maxSessions = 1
	}
	return &Store{
		order:       make([]string, 0, maxSessions),
		items:       make(map[string]*sessionEntry, maxSessions),
		maxSessions: maxSessions,
		ttl:         ttl,
		now:         time.Now,
	}
}

// SessionRepository
func (s *Store) CreateSession(ctx context.Context, sess domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	// evict by ttl
	s.evictExpiredLocked()
	if old, ok := s.items[sess.ID]; ok {
		old.session = cloneSession(sess)
		return nil
	}
	// evict by capacity
	if len(s.items) >= s.maxSessions {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.items, oldest)
	}
	s.items[sess.ID] = &sessionEntry{session: cloneSession(sess), createdAt: s.now()}
	s.order = append(s.order, sess.ID)
	return nil
}

func (s *Store) GetSession(ctx context.Context, id string) (domain.Session, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if e, ok := s.items[id]; ok && !s.expired(e) {
		return cloneSession(e.session), true, nil
	}
	return domain.Session{}, false, nil
}

// UpdateSession replaces a stored session. Unknown ids are ignored, so a
// session evicted mid-command is not resurrected.
func (s *Store) UpdateSession(ctx context.Context, sess domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.items[sess.ID]; ok {
		e.session = cloneSession(sess)
	}
	return nil
}

func (s *Store) DeleteSession(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; ok {
		delete(s.items, id)
		// remove from order
		for i, sid := range s.order {
			if sid == id {
				s.order = append(s.order[:i], s.order[i+1:]...)
				break
			}
		}
	}
	return nil
}

// ClearAllSessions removes all sessions
func (s *Store) ClearAllSessions(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make(map[string]*sessionEntry, s.maxSessions)
	s.order = s.order[:0]
	return nil
}

func (s *Store) ListSessions(ctx context.Context, f usecase.SessionFilter) ([]domain.Session, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	results := make([]domain.Session, 0, len(s.items))
	for _, id := range s.order { // preserve insertion order
		e := s.items[id]
		if e == nil || s.expired(e) {
			continue
		}
		results = append(results, cloneSession(e.session))
	}
	total := len(results)
	start := f.Offset
	if start < 0 {
		start = 0
	}
	if start > total {
		start = total
	}
	end := start + f.Limit
	if f.Limit <= 0 || end > total {
		end = total
	}
	return results[start:end], total, nil
}

// Len reports the number of live sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, e := range s.items {
		if !s.expired(e) {
			n++
		}
	}
	return n
}

func (s *Store) expired(e *sessionEntry) bool {
	return s.ttl > 0 && s.now().Sub(e.createdAt) > s.ttl
}

func (s *Store) evictExpiredLocked() {
	if s.ttl <= 0 {
		return
	}
	i := 0
	for i < len(s.order) {
		id := s.order[i]
		e := s.items[id]
		if e == nil || s.expired(e) {
			delete(s.items, id)
			s.order = append(s.order[:i], s.order[i+1:]...)
			continue
		}
		i++
	}
}

func cloneSession(sess domain.Session) domain.Session {
	sess.View = sess.View.Clone()
	return sess
}
