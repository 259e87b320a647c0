package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/diyageorge33/minipro/internal/auth/store/drivers/sqlite"
	"github.com/diyageorge33/minipro/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "service-test")
	if err != nil {
		panic(err)
	}
	cryptox.SetPepperPath(filepath.Join(dir, "pepper"))

	code := m.Run()
	os.RemoveAll(dir)
	os.Exit(code)
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// captureNotifier records the last code sent to each address.
type captureNotifier struct {
	mu    sync.Mutex
	codes map[string]string
	sent  int
	fail  bool
}

func (n *captureNotifier) SendVerificationCode(_ context.Context, email, code string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.sent++
	if n.fail {
		return errors.New("smtp: connection refused")
	}
	if n.codes == nil {
		n.codes = make(map[string]string)
	}
	n.codes[email] = code
	return nil
}

func (n *captureNotifier) code(t *testing.T, email string) string {
	t.Helper()
	n.mu.Lock()
	defer n.mu.Unlock()

	c, ok := n.codes[email]
	require.True(t, ok, "no code sent to %s", email)
	return c
}

type fixture struct {
	store    *sqlite.Store
	clock    *fakeClock
	notifier *captureNotifier
	accounts *AccountService
	sessions *SessionService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	clock := newFakeClock()
	notifier := &captureNotifier{}
	sessions := &SessionService{Store: st, TTL: time.Hour, Now: clock.Now}

	return &fixture{
		store:    st,
		clock:    clock,
		notifier: notifier,
		sessions: sessions,
		accounts: &AccountService{
			Store:    st,
			Notifier: notifier,
			Sessions: sessions,
			OTPTTL:   10 * time.Minute,
			Now:      clock.Now,
		},
	}
}

// signupVerified creates an account and completes email verification.
func (f *fixture) signupVerified(t *testing.T, email, password string) {
	t.Helper()
	ctx := context.Background()

	_, err := f.accounts.Signup(ctx, email, password)
	require.NoError(t, err)
	require.NoError(t, f.accounts.VerifyEmail(ctx, email, f.notifier.code(t, email)))
}

// otherCode returns a well-formed code different from code.
func otherCode(code string) string {
	if code == "123456" {
		return "654321"
	}
	return "123456"
}
