package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/diyageorge33/minipro/internal/auth/domain"
)

const userColumns = `id, email, password_hash, verified, otp_hash, otp_expires_at, otp_attempts, created_at, updated_at`

type usersRepo struct {
	db dbtx
}

func scanUser(row *sql.Row) (domain.User, error) {
	var (
		u         domain.User
		otpHash   sql.NullString
		otpExpiry sql.NullTime
	)
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.Verified,
		&otpHash,
		&otpExpiry,
		&u.OTPAttempts,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}

	u.OTPHash = otpHash.String
	if otpExpiry.Valid {
		exp := otpExpiry.Time.UTC()
		u.OTPExpiresAt = &exp
	}
	u.CreatedAt = u.CreatedAt.UTC()
	u.UpdatedAt = u.UpdatedAt.UTC()
	return u, nil
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	return scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	return scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	created := u.CreatedAt.UTC()
	if u.CreatedAt.IsZero() {
		created = utcNow()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, email, password_hash, verified, otp_hash, otp_expires_at, otp_attempts, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, 0, $7, $7)`,
		u.ID, u.Email, u.PasswordHash, u.Verified, nullString(u.OTPHash), nullTime(u.OTPExpiresAt), created,
	)
	return mapConstraint(err)
}

func (r *usersRepo) SetVerificationCode(ctx context.Context, userID, otpHash string, expiresAt time.Time) error {
	return requireRows(r.db.ExecContext(ctx,
		`UPDATE users SET otp_hash = $1, otp_expires_at = $2, otp_attempts = 0, updated_at = $3 WHERE id = $4`,
		nullString(otpHash), nullTime(&expiresAt), utcNow(), userID,
	))
}

func (r *usersRepo) IncrementOTPAttempts(ctx context.Context, userID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`UPDATE users SET otp_attempts = otp_attempts + 1, updated_at = $1 WHERE id = $2 RETURNING otp_attempts`,
		utcNow(), userID,
	).Scan(&n)
	if err != nil {
		return 0, mapNotFound(err)
	}
	return n, nil
}

func (r *usersRepo) MarkVerified(ctx context.Context, userID string) error {
	return requireRows(r.db.ExecContext(ctx,
		`UPDATE users SET verified = TRUE, otp_hash = NULL, otp_expires_at = NULL, otp_attempts = 0, updated_at = $1 WHERE id = $2`,
		utcNow(), userID,
	))
}

func (r *usersRepo) UpdatePasswordHash(ctx context.Context, userID, newHash string) error {
	return requireRows(r.db.ExecContext(ctx,
		`UPDATE users SET password_hash = $1, updated_at = $2 WHERE id = $3`,
		newHash, utcNow(), userID,
	))
}
