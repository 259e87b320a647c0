package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/diyageorge33/minipro/internal/auth/domain"
	"github.com/diyageorge33/minipro/internal/auth/store"
	"github.com/diyageorge33/minipro/pkg/cryptox"
	"github.com/diyageorge33/minipro/pkg/idx"
)

// DefaultSessionTTL is the lifetime of a login session.
const DefaultSessionTTL = 24 * time.Hour

// SessionService issues and resolves opaque session tokens. Only the token
// fingerprint is persisted.
type SessionService struct {
	Store store.Store

	// TTL defaults to DefaultSessionTTL.
	TTL time.Duration
	Now func() time.Time
}

func (s *SessionService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *SessionService) ttl() time.Duration {
	if s.TTL > 0 {
		return s.TTL
	}
	return DefaultSessionTTL
}

// Create opens a session for userID and returns the raw token.
func (s *SessionService) Create(ctx context.Context, userID, ipAddress, userAgent string) (string, error) {
	return s.create(ctx, s.Store, userID, ipAddress, userAgent)
}

// create writes through st so callers can include it in a transaction.
func (s *SessionService) create(ctx context.Context, st store.Store, userID, ipAddress, userAgent string) (string, error) {
	token, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return "", err
	}

	now := s.now()
	sess := domain.Session{
		ID:        idx.NewAt(now).String(),
		UserID:    userID,
		TokenHash: cryptox.FingerprintToken(token),
		IPAddress: ipAddress,
		UserAgent: userAgent,
		ExpiresAt: now.Add(s.ttl()),
		CreatedAt: now,
	}
	if err := st.Sessions().CreateSession(ctx, sess); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}
	return token, nil
}

// Resolve returns the live session behind token.
func (s *SessionService) Resolve(ctx context.Context, token string) (domain.Session, error) {
	if token == "" {
		return domain.Session{}, ErrSessionNotFound
	}

	sess, err := s.Store.Sessions().GetActiveSessionByTokenHash(ctx, cryptox.FingerprintToken(token), s.now())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Session{}, ErrSessionNotFound
		}
		return domain.Session{}, fmt.Errorf("lookup session: %w", err)
	}
	return sess, nil
}

// Destroy removes the session behind token. Unknown or empty tokens are not
// an error, which keeps logout idempotent.
func (s *SessionService) Destroy(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.Store.Sessions().DeleteSessionByTokenHash(ctx, cryptox.FingerprintToken(token)); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// Lifetime is the duration new sessions are valid for; the cookie Max-Age
// follows it.
func (s *SessionService) Lifetime() time.Duration { return s.ttl() }
