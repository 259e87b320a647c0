package postgres

import (
	"context"
	"time"

	"github.com/diyageorge33/minipro/internal/auth/domain"
)

type sessionsRepo struct {
	db dbtx
}

func (r *sessionsRepo) CreateSession(ctx context.Context, s domain.Session) error {
	created := s.CreatedAt.UTC()
	if s.CreatedAt.IsZero() {
		created = utcNow()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sessions (id, user_id, token_hash, ip_address, user_agent, expires_at, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		s.ID, s.UserID, s.TokenHash, s.IPAddress, s.UserAgent, s.ExpiresAt.UTC(), created,
	)
	return mapConstraint(err)
}

func (r *sessionsRepo) GetActiveSessionByTokenHash(ctx context.Context, hash string, now time.Time) (domain.Session, error) {
	var s domain.Session
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, token_hash, ip_address, user_agent, expires_at, created_at
		 FROM sessions WHERE token_hash = $1 AND expires_at > $2`,
		hash, now.UTC(),
	).Scan(&s.ID, &s.UserID, &s.TokenHash, &s.IPAddress, &s.UserAgent, &s.ExpiresAt, &s.CreatedAt)
	if err != nil {
		return domain.Session{}, mapNotFound(err)
	}
	s.ExpiresAt = s.ExpiresAt.UTC()
	s.CreatedAt = s.CreatedAt.UTC()
	return s, nil
}

func (r *sessionsRepo) DeleteSessionByTokenHash(ctx context.Context, hash string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE token_hash = $1`, hash)
	return err
}

func (r *sessionsRepo) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= $1`, now.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
