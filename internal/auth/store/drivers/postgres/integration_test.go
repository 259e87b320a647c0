package postgres

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/diyageorge33/minipro/internal/auth/domain"
	"github.com/diyageorge33/minipro/internal/auth/store"
	"github.com/diyageorge33/minipro/pkg/idx"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// startPostgres runs a throwaway postgres container and returns a migrated store.
func startPostgres(t *testing.T) *Store {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres container test in -short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "minipro",
				"POSTGRES_PASSWORD": "minipro",
				"POSTGRES_DB":       "minipro",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	st, err := NewStore(fmt.Sprintf("postgres://minipro:minipro@%s:%s/minipro?sslmode=disable", host, port.Port()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())
	return st
}

func TestPostgresRoundTrip(t *testing.T) {
	st := startPostgres(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)
	exp := now.Add(10 * time.Minute)

	u := domain.User{
		ID:           idx.New().String(),
		Email:        "pg@example.com",
		PasswordHash: "hash",
		OTPHash:      "otp",
		OTPExpiresAt: &exp,
		CreatedAt:    now,
	}
	require.NoError(t, st.Users().CreateUser(ctx, u))
	require.ErrorIs(t, st.Users().CreateUser(ctx, domain.User{
		ID: idx.New().String(), Email: "pg@example.com", PasswordHash: "x",
	}), store.ErrAlreadyExists)

	n, err := st.Users().IncrementOTPAttempts(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	require.NoError(t, st.Users().MarkVerified(ctx, u.ID))
	got, err := st.Users().GetUserByEmail(ctx, "pg@example.com")
	require.NoError(t, err)
	require.True(t, got.Verified)
	require.Nil(t, got.OTPExpiresAt)
	require.Zero(t, got.OTPAttempts)

	err = st.WithTx(ctx, func(tx store.Tx) error {
		return tx.Sessions().CreateSession(ctx, domain.Session{
			ID: idx.New().String(), UserID: u.ID, TokenHash: "fp", ExpiresAt: now.Add(time.Hour), CreatedAt: now,
		})
	})
	require.NoError(t, err)

	s, err := st.Sessions().GetActiveSessionByTokenHash(ctx, "fp", now)
	require.NoError(t, err)
	require.Equal(t, u.ID, s.UserID)

	removed, err := st.Sessions().DeleteExpiredSessions(ctx, now.Add(2*time.Hour))
	require.NoError(t, err)
	require.EqualValues(t, 1, removed)
}
