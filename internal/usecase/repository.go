package usecase

import (
	"context"

	"github.com/Ragnaroek/terminus/internal/domain"
)

// RecordSource yields the decoded records of one trace file.
type RecordSource interface {
	ReadRecords(ctx context.Context, path string) ([]domain.Record, error)
}

type SessionRepository interface {
	CreateSession(ctx context.Context, s domain.Session) error
	GetSession(ctx context.Context, id string) (domain.Session, bool, error)
	UpdateSession(ctx context.Context, s domain.Session) error
	DeleteSession(ctx context.Context, id string) error
	ListSessions(ctx context.Context, f SessionFilter) ([]domain.Session, int, error)
	ClearAllSessions(ctx context.Context) error
}

type SessionFilter struct {
	Limit  int
	Offset int
}
