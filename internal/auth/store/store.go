package store

import (
	"context"
	"errors"
	"time"

	"github.com/diyageorge33/minipro/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite, postgres)
// implement this. It exposes sub-repositories so that a transaction-scoped
// Store hands out repositories bound to the same transaction.
type Store interface {
	Users() Users
	Sessions() Sessions

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx runs fn inside a transaction, committing when fn returns nil
	// and rolling back otherwise. Inside fn only the repos of tx may be used.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail expects an already normalised address.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// CreateUser inserts a new user together with its first verification
	// code. Returns ErrAlreadyExists when the email is taken.
	CreateUser(ctx context.Context, u domain.User) error

	// SetVerificationCode replaces the pending code and resets the attempt
	// counter. The previous code stops verifying.
	SetVerificationCode(ctx context.Context, userID, otpHash string, expiresAt time.Time) error

	// IncrementOTPAttempts bumps the failed attempt counter and returns the
	// new value.
	IncrementOTPAttempts(ctx context.Context, userID string) (int, error)

	// MarkVerified flips verified and clears all pending code state.
	MarkVerified(ctx context.Context, userID string) error

	// UpdatePasswordHash replaces the stored hash, e.g. when upgrading a
	// legacy bcrypt hash after a successful login.
	UpdatePasswordHash(ctx context.Context, userID, newHash string) error
}

type Sessions interface {
	CreateSession(ctx context.Context, s domain.Session) error

	// GetActiveSessionByTokenHash returns the session whose expiry is after now.
	GetActiveSessionByTokenHash(ctx context.Context, hash string, now time.Time) (domain.Session, error)

	// DeleteSessionByTokenHash is idempotent; unknown hashes are not an error.
	DeleteSessionByTokenHash(ctx context.Context, hash string) error

	// DeleteExpiredSessions is housekeeping and returns the number of rows removed.
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)
}
