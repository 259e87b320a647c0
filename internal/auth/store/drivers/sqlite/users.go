package sqlite

import (
	"context"
	"time"

	"github.com/diyageorge33/minipro/internal/auth/domain"
	"github.com/diyageorge33/minipro/internal/auth/store/drivers/sqlite/gen"
)

type usersRepo struct {
	q *gen.Queries
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	row, err := r.q.GetUserByID(ctx, id)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return mapUser(row), nil
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	row, err := r.q.GetUserByEmail(ctx, email)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return mapUser(row), nil
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	created := u.CreatedAt.UTC()
	if u.CreatedAt.IsZero() {
		created = utcNow()
	}

	err := r.q.CreateUser(ctx, gen.CreateUserParams{
		ID:           u.ID,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Verified:     u.Verified,
		OtpHash:      mapStringNull(u.OTPHash),
		OtpExpiresAt: mapOptionalTime(u.OTPExpiresAt),
		CreatedAt:    created,
		UpdatedAt:    created,
	})
	return mapConstraint(err)
}

func (r *usersRepo) SetVerificationCode(ctx context.Context, userID, otpHash string, expiresAt time.Time) error {
	return requireRows(r.q.SetUserVerificationCode(ctx, gen.SetUserVerificationCodeParams{
		OtpHash:      mapStringNull(otpHash),
		OtpExpiresAt: mapOptionalTime(&expiresAt),
		UpdatedAt:    utcNow(),
		ID:           userID,
	}))
}

func (r *usersRepo) IncrementOTPAttempts(ctx context.Context, userID string) (int, error) {
	n, err := r.q.IncrementUserOTPAttempts(ctx, gen.IncrementUserOTPAttemptsParams{
		UpdatedAt: utcNow(),
		ID:        userID,
	})
	if err != nil {
		return 0, mapNotFound(err)
	}
	return int(n), nil
}

func (r *usersRepo) MarkVerified(ctx context.Context, userID string) error {
	return requireRows(r.q.MarkUserVerified(ctx, gen.MarkUserVerifiedParams{
		UpdatedAt: utcNow(),
		ID:        userID,
	}))
}

func (r *usersRepo) UpdatePasswordHash(ctx context.Context, userID, newHash string) error {
	return requireRows(r.q.UpdateUserPasswordHash(ctx, gen.UpdateUserPasswordHashParams{
		PasswordHash: newHash,
		UpdatedAt:    utcNow(),
		ID:           userID,
	}))
}
