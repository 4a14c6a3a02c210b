package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Ragnaroek/terminus/internal/domain"
)

var ErrSessionNotFound = errors.New("session not found")

// LoadStats summarises one trace load.
type LoadStats struct {
	Path    string
	Records int
	Frames  int
	Elapsed time.Duration
}

// TraceService owns the frames of the loaded trace file and the remote
// inspection sessions browsing them.
type TraceService struct {
	source   RecordSource
	sessions SessionRepository

	mu     sync.RWMutex
	path   string
	frames []domain.Frame
}

func NewTraceService(src RecordSource, sessions SessionRepository) *TraceService {
	return &TraceService{source: src, sessions: sessions}
}

// Load reads and aggregates path, replacing any previously loaded frames.
// On error the current frames are kept.
func (s *TraceService) Load(ctx context.Context, path string) (LoadStats, error) {
	start := time.Now()
	recs, err := s.source.ReadRecords(ctx, path)
	if err != nil {
		return LoadStats{Path: path}, err
	}
	frames := Aggregate(recs)
	s.mu.Lock()
	s.path = path
	s.frames = frames
	s.mu.Unlock()
	return LoadStats{Path: path, Records: len(recs), Frames: len(frames), Elapsed: time.Since(start)}, nil
}

// Frames returns the loaded frame sequence. Callers must treat it as
// read-only; Load swaps in a new slice rather than mutating this one.
func (s *TraceService) Frames() []domain.Frame {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.frames
}

func (s *TraceService) Path() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.path
}

// Frame returns a copy of the frame at index i.
func (s *TraceService) Frame(i int) (domain.Frame, bool) {
	frames := s.Frames()
	if i < 0 || i >= len(frames) {
		return domain.Frame{}, false
	}
	return frames[i].Clone(), true
}

func (s *TraceService) CreateSession(ctx context.Context, id string) (domain.Session, error) {
	now := time.Now().UTC()
	sess := domain.Session{ID: id, CreatedAt: now, UpdatedAt: now}
	if err := s.sessions.CreateSession(ctx, sess); err != nil {
		return domain.Session{}, err
	}
	return sess, nil
}

func (s *TraceService) Session(ctx context.Context, id string) (domain.Session, bool, error) {
	return s.sessions.GetSession(ctx, id)
}

func (s *TraceService) ListSessions(ctx context.Context, f SessionFilter) ([]domain.Session, int, error) {
	return s.sessions.ListSessions(ctx, f)
}

func (s *TraceService) DeleteSession(ctx context.Context, id string) error {
	return s.sessions.DeleteSession(ctx, id)
}

// Exec runs one command line in the session's view and stores the result.
// A quit command deletes the session.
func (s *TraceService) Exec(ctx context.Context, id, input string) (domain.Session, Outcome, error) {
	sess, ok, err := s.sessions.GetSession(ctx, id)
	if err != nil {
		return domain.Session{}, Outcome{}, err
	}
	if !ok {
		return domain.Session{}, Outcome{}, ErrSessionNotFound
	}
	out := Interpret(s.Frames(), sess.View, input)
	sess.View = out.View
	sess.Commands++
	sess.UpdatedAt = time.Now().UTC()
	if out.Quit {
		return sess, out, s.sessions.DeleteSession(ctx, id)
	}
	return sess, out, s.sessions.UpdateSession(ctx, sess)
}
