package service

import (
	"context"
	"testing"
	"time"

	"github.com/diyageorge33/minipro/internal/auth/domain"
	"github.com/diyageorge33/minipro/pkg/cryptox"
	"github.com/diyageorge33/minipro/pkg/idx"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestSignup(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	u, err := f.accounts.Signup(ctx, "  Alice@Example.com ", "s3cret!")
	require.NoError(t, err)
	require.Equal(t, "alice@example.com", u.Email)
	require.False(t, u.Verified)

	stored, err := f.store.Users().GetUserByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	require.NotEqual(t, "s3cret!", stored.PasswordHash)
	require.NoError(t, cryptox.VerifyPassword("s3cret!", stored.PasswordHash))
	require.True(t, stored.HasPendingOTP())
	require.True(t, f.clock.Now().Add(10*time.Minute).Equal(*stored.OTPExpiresAt))

	code := f.notifier.code(t, "alice@example.com")
	require.True(t, cryptox.IsOTPFormat(code))
	require.NotEqual(t, code, stored.OTPHash, "codes are stored hashed")
}

func TestSignupRejectsDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.accounts.Signup(ctx, "dup@example.com", "pw")
	require.NoError(t, err)

	_, err = f.accounts.Signup(ctx, "dup@example.com", "other")
	require.ErrorIs(t, err, ErrEmailTaken)

	_, err = f.accounts.Signup(ctx, "DUP@example.com", "other")
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestSignupValidation(t *testing.T) {
	f := newFixture(t)

	_, err := f.accounts.Signup(context.Background(), "", "pw")
	require.ErrorIs(t, err, ErrInvalidRequest)

	_, err = f.accounts.Signup(context.Background(), "a@example.com", "")
	require.ErrorIs(t, err, ErrInvalidRequest)
}

func TestSignupSurvivesNotifierFailure(t *testing.T) {
	f := newFixture(t)
	f.notifier.fail = true
	f.accounts.LogCodesOnFailure = true

	_, err := f.accounts.Signup(context.Background(), "offline@example.com", "pw")
	require.NoError(t, err)
	require.Equal(t, 1, f.notifier.sent)
}

func TestVerifyEmailBeforeExpiry(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.accounts.Signup(ctx, "bob@example.com", "pw")
	require.NoError(t, err)

	f.clock.Advance(9 * time.Minute)
	require.NoError(t, f.accounts.VerifyEmail(ctx, "bob@example.com", f.notifier.code(t, "bob@example.com")))

	u, err := f.store.Users().GetUserByEmail(ctx, "bob@example.com")
	require.NoError(t, err)
	require.True(t, u.Verified)
	require.False(t, u.HasPendingOTP())
	require.Zero(t, u.OTPAttempts)
}

func TestVerifyEmailAfterExpiry(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.accounts.Signup(ctx, "late@example.com", "pw")
	require.NoError(t, err)

	f.clock.Advance(10*time.Minute + time.Second)
	err = f.accounts.VerifyEmail(ctx, "late@example.com", f.notifier.code(t, "late@example.com"))
	require.ErrorIs(t, err, ErrOTPExpired)

	u, err := f.store.Users().GetUserByEmail(ctx, "late@example.com")
	require.NoError(t, err)
	require.False(t, u.Verified)
}

func TestWrongCodesIncrementAttemptsWithoutLockout(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.accounts.Signup(ctx, "carol@example.com", "pw")
	require.NoError(t, err)
	code := f.notifier.code(t, "carol@example.com")

	for range 3 {
		require.ErrorIs(t, f.accounts.VerifyEmail(ctx, "carol@example.com", otherCode(code)), ErrInvalidOTP)
	}

	u, err := f.store.Users().GetUserByEmail(ctx, "carol@example.com")
	require.NoError(t, err)
	require.Equal(t, 3, u.OTPAttempts)

	// Malformed input counts as a wrong code too.
	require.ErrorIs(t, f.accounts.VerifyEmail(ctx, "carol@example.com", "abc"), ErrInvalidOTP)

	require.NoError(t, f.accounts.VerifyEmail(ctx, "carol@example.com", " "+code+" "))
}

func TestVerifyEmailErrors(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.signupVerified(t, "done@example.com", "pw")

	require.ErrorIs(t, f.accounts.VerifyEmail(ctx, "ghost@example.com", "123456"), ErrUserNotFound)
	require.ErrorIs(t, f.accounts.VerifyEmail(ctx, "done@example.com", "123456"), ErrNoVerificationPending)
	require.ErrorIs(t, f.accounts.VerifyEmail(ctx, "done@example.com", ""), ErrInvalidRequest)
}

func TestResendInvalidatesPreviousCode(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.accounts.Signup(ctx, "dave@example.com", "pw")
	require.NoError(t, err)
	oldCode := f.notifier.code(t, "dave@example.com")

	require.ErrorIs(t, f.accounts.VerifyEmail(ctx, "dave@example.com", otherCode(oldCode)), ErrInvalidOTP)

	// A fresh code is six random digits; draw again on the rare collision.
	newCode := oldCode
	for i := 0; newCode == oldCode && i < 5; i++ {
		require.NoError(t, f.accounts.ResendVerification(ctx, "dave@example.com"))
		newCode = f.notifier.code(t, "dave@example.com")
	}
	require.NotEqual(t, oldCode, newCode)

	u, err := f.store.Users().GetUserByEmail(ctx, "dave@example.com")
	require.NoError(t, err)
	require.Zero(t, u.OTPAttempts, "resend resets attempts")

	require.ErrorIs(t, f.accounts.VerifyEmail(ctx, "dave@example.com", oldCode), ErrInvalidOTP)
	require.NoError(t, f.accounts.VerifyEmail(ctx, "dave@example.com", newCode))
}

func TestResendExtendsExpiry(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.accounts.Signup(ctx, "slow@example.com", "pw")
	require.NoError(t, err)

	f.clock.Advance(15 * time.Minute)
	require.NoError(t, f.accounts.ResendVerification(ctx, "slow@example.com"))
	f.clock.Advance(5 * time.Minute)

	require.NoError(t, f.accounts.VerifyEmail(ctx, "slow@example.com", f.notifier.code(t, "slow@example.com")))
}

func TestResendErrors(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.signupVerified(t, "done@example.com", "pw")

	require.ErrorIs(t, f.accounts.ResendVerification(ctx, "ghost@example.com"), ErrUserNotFound)
	require.ErrorIs(t, f.accounts.ResendVerification(ctx, "done@example.com"), ErrAlreadyVerified)
	require.ErrorIs(t, f.accounts.ResendVerification(ctx, " "), ErrInvalidRequest)
}

func TestLoginRequiresVerification(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.accounts.Signup(ctx, "erin@example.com", "correct-horse")
	require.NoError(t, err)

	_, _, err = f.accounts.Login(ctx, LoginParams{Email: "erin@example.com", Password: "correct-horse"})
	require.ErrorIs(t, err, ErrEmailNotVerified)

	require.NoError(t, f.accounts.VerifyEmail(ctx, "erin@example.com", f.notifier.code(t, "erin@example.com")))

	u, token, err := f.accounts.Login(ctx, LoginParams{Email: "ERIN@example.com", Password: "correct-horse"})
	require.NoError(t, err)
	require.Equal(t, "erin@example.com", u.Email)
	require.NotEmpty(t, token)

	sess, err := f.sessions.Resolve(ctx, token)
	require.NoError(t, err)
	require.Equal(t, u.ID, sess.UserID)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.signupVerified(t, "frank@example.com", "right")

	_, _, err := f.accounts.Login(ctx, LoginParams{Email: "frank@example.com", Password: "wrong"})
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = f.accounts.Login(ctx, LoginParams{Email: "nobody@example.com", Password: "right"})
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = f.accounts.Login(ctx, LoginParams{Email: "frank@example.com"})
	require.ErrorIs(t, err, ErrInvalidRequest)
}

func TestLoginReplacesPresentedSession(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.signupVerified(t, "gina@example.com", "pw")

	_, first, err := f.accounts.Login(ctx, LoginParams{Email: "gina@example.com", Password: "pw"})
	require.NoError(t, err)

	_, second, err := f.accounts.Login(ctx, LoginParams{
		Email:          "gina@example.com",
		Password:       "pw",
		PresentedToken: first,
		IPAddress:      "10.0.0.7",
		UserAgent:      "test-agent",
	})
	require.NoError(t, err)
	require.NotEqual(t, first, second)

	_, err = f.sessions.Resolve(ctx, first)
	require.ErrorIs(t, err, ErrSessionNotFound)

	sess, err := f.sessions.Resolve(ctx, second)
	require.NoError(t, err)
	require.Equal(t, "10.0.0.7", sess.IPAddress)
	require.Equal(t, "test-agent", sess.UserAgent)
}

func TestLoginUpgradesLegacyBcryptHash(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	legacy, err := bcrypt.GenerateFromPassword([]byte("from-node"), 10)
	require.NoError(t, err)
	require.NoError(t, f.store.Users().CreateUser(ctx, domain.User{
		ID:           idx.New().String(),
		Email:        "legacy@example.com",
		PasswordHash: string(legacy),
		Verified:     true,
	}))

	_, _, err = f.accounts.Login(ctx, LoginParams{Email: "legacy@example.com", Password: "from-node"})
	require.NoError(t, err)

	u, err := f.store.Users().GetUserByEmail(ctx, "legacy@example.com")
	require.NoError(t, err)
	require.False(t, cryptox.NeedsRehash(u.PasswordHash))
	require.NoError(t, cryptox.VerifyPassword("from-node", u.PasswordHash))
}
