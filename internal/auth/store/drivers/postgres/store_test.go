package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/diyageorge33/minipro/internal/auth/domain"
	"github.com/diyageorge33/minipro/internal/auth/store"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/require"
)

var userCols = []string{
	"id", "email", "password_hash", "verified", "otp_hash",
	"otp_expires_at", "otp_attempts", "created_at", "updated_at",
}

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return NewStoreFromDB(db), mock
}

func TestGetUserByEmail(t *testing.T) {
	st, mock := newMockStore(t)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	exp := now.Add(10 * time.Minute)

	mock.ExpectQuery(`SELECT id, email, .* FROM users WHERE email = \$1`).
		WithArgs("alice@example.com").
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow("u1", "alice@example.com", "hash", false, "otp", exp, int64(2), now, now))

	u, err := st.Users().GetUserByEmail(context.Background(), "alice@example.com")
	require.NoError(t, err)
	require.Equal(t, "u1", u.ID)
	require.Equal(t, "otp", u.OTPHash)
	require.Equal(t, 2, u.OTPAttempts)
	require.NotNil(t, u.OTPExpiresAt)
	require.True(t, exp.Equal(*u.OTPExpiresAt))
	require.True(t, u.HasPendingOTP())
}

func TestGetUserByIDVerifiedHasNoOTP(t *testing.T) {
	st, mock := newMockStore(t)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`FROM users WHERE id = \$1`).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow("u1", "alice@example.com", "hash", true, nil, nil, int64(0), now, now))

	u, err := st.Users().GetUserByID(context.Background(), "u1")
	require.NoError(t, err)
	require.True(t, u.Verified)
	require.Empty(t, u.OTPHash)
	require.Nil(t, u.OTPExpiresAt)
}

func TestGetUserNotFound(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectQuery(`FROM users WHERE email = \$1`).
		WithArgs("nobody@example.com").
		WillReturnRows(sqlmock.NewRows(userCols))

	_, err := st.Users().GetUserByEmail(context.Background(), "nobody@example.com")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestCreateUserUniqueViolation(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectExec(`INSERT INTO users`).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

	err := st.Users().CreateUser(context.Background(), domain.User{
		ID: "u2", Email: "alice@example.com", PasswordHash: "hash",
	})
	require.ErrorIs(t, err, store.ErrAlreadyExists)
}

func TestCreateUserPassesOTPState(t *testing.T) {
	st, mock := newMockStore(t)
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	exp := created.Add(10 * time.Minute)

	mock.ExpectExec(`INSERT INTO users`).
		WithArgs("u3", "bob@example.com", "hash", false,
			sql.NullString{String: "otp", Valid: true},
			sql.NullTime{Time: exp, Valid: true},
			created).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, st.Users().CreateUser(context.Background(), domain.User{
		ID: "u3", Email: "bob@example.com", PasswordHash: "hash",
		OTPHash: "otp", OTPExpiresAt: &exp, CreatedAt: created,
	}))
}

func TestIncrementOTPAttempts(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectQuery(`UPDATE users SET otp_attempts = otp_attempts \+ 1`).
		WithArgs(sqlmock.AnyArg(), "u1").
		WillReturnRows(sqlmock.NewRows([]string{"otp_attempts"}).AddRow(int64(3)))

	n, err := st.Users().IncrementOTPAttempts(context.Background(), "u1")
	require.NoError(t, err)
	require.Equal(t, 3, n)
}

func TestMarkVerifiedMissingUser(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectExec(`UPDATE users SET verified = TRUE, otp_hash = NULL`).
		WithArgs(sqlmock.AnyArg(), "ghost").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.ErrorIs(t, st.Users().MarkVerified(context.Background(), "ghost"), store.ErrNotFound)
}

func TestSetVerificationCode(t *testing.T) {
	st, mock := newMockStore(t)
	exp := time.Date(2026, 3, 1, 12, 10, 0, 0, time.UTC)

	mock.ExpectExec(`UPDATE users SET otp_hash = \$1, otp_expires_at = \$2, otp_attempts = 0`).
		WithArgs(sql.NullString{String: "new", Valid: true}, sql.NullTime{Time: exp, Valid: true}, sqlmock.AnyArg(), "u1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, st.Users().SetVerificationCode(context.Background(), "u1", "new", exp))
}

func TestSessionsQueries(t *testing.T) {
	st, mock := newMockStore(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`FROM sessions WHERE token_hash = \$1 AND expires_at > \$2`).
		WithArgs("fp", now).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "token_hash", "ip_address", "user_agent", "expires_at", "created_at"}).
			AddRow("s1", "u1", "fp", "127.0.0.1", "curl", now.Add(time.Hour), now))

	s, err := st.Sessions().GetActiveSessionByTokenHash(ctx, "fp", now)
	require.NoError(t, err)
	require.Equal(t, "u1", s.UserID)

	mock.ExpectExec(`DELETE FROM sessions WHERE expires_at <= \$1`).
		WithArgs(now).
		WillReturnResult(sqlmock.NewResult(0, 4))

	n, err := st.Sessions().DeleteExpiredSessions(ctx, now)
	require.NoError(t, err)
	require.EqualValues(t, 4, n)
}

func TestWithTx(t *testing.T) {
	t.Run("commit", func(t *testing.T) {
		st, mock := newMockStore(t)

		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM sessions WHERE token_hash = \$1`).
			WithArgs("old").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := st.WithTx(context.Background(), func(tx store.Tx) error {
			return tx.Sessions().DeleteSessionByTokenHash(context.Background(), "old")
		})
		require.NoError(t, err)
	})

	t.Run("rollback", func(t *testing.T) {
		st, mock := newMockStore(t)
		boom := errors.New("boom")

		mock.ExpectBegin()
		mock.ExpectRollback()

		err := st.WithTx(context.Background(), func(store.Tx) error { return boom })
		require.ErrorIs(t, err, boom)
	})
}

func TestApplyMigrationsRunsGoose(t *testing.T) {
	st, _ := newMockStore(t)

	orig := gooseUp
	t.Cleanup(func() { gooseUp = orig })

	var dir string
	gooseUp = func(_ context.Context, _ *sql.DB, d string, _ ...goose.OptionsFunc) error {
		dir = d
		return nil
	}

	require.NoError(t, st.ApplyMigrations())
	require.Equal(t, ".", dir)
}
