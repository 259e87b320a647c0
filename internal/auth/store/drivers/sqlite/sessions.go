package sqlite

import (
	"context"
	"time"

	"github.com/diyageorge33/minipro/internal/auth/domain"
	"github.com/diyageorge33/minipro/internal/auth/store/drivers/sqlite/gen"
)

type sessionsRepo struct {
	q *gen.Queries
}

func (r *sessionsRepo) CreateSession(ctx context.Context, s domain.Session) error {
	created := s.CreatedAt.UTC()
	if s.CreatedAt.IsZero() {
		created = utcNow()
	}

	err := r.q.CreateSession(ctx, gen.CreateSessionParams{
		ID:        s.ID,
		UserID:    s.UserID,
		TokenHash: s.TokenHash,
		IpAddress: s.IPAddress,
		UserAgent: s.UserAgent,
		ExpiresAt: s.ExpiresAt.UTC(),
		CreatedAt: created,
	})
	return mapConstraint(err)
}

func (r *sessionsRepo) GetActiveSessionByTokenHash(ctx context.Context, hash string, now time.Time) (domain.Session, error) {
	row, err := r.q.GetActiveSessionByTokenHash(ctx, gen.GetActiveSessionByTokenHashParams{
		TokenHash: hash,
		ExpiresAt: now.UTC(),
	})
	if err != nil {
		return domain.Session{}, mapNotFound(err)
	}
	return mapSession(row), nil
}

func (r *sessionsRepo) DeleteSessionByTokenHash(ctx context.Context, hash string) error {
	return r.q.DeleteSessionByTokenHash(ctx, hash)
}

func (r *sessionsRepo) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	return r.q.DeleteExpiredSessions(ctx, now.UTC())
}
