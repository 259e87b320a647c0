package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/diyageorge33/minipro/internal/auth/domain"
	"github.com/diyageorge33/minipro/internal/auth/store"
	"github.com/diyageorge33/minipro/pkg/cryptox"
	"github.com/diyageorge33/minipro/pkg/idx"
	"github.com/diyageorge33/minipro/pkg/slogx"
)

// DefaultOTPTTL is how long a verification code stays valid.
const DefaultOTPTTL = 10 * time.Minute

// AccountService drives the signup, verification and login state machine.
type AccountService struct {
	Store    store.Store
	Notifier Notifier
	Sessions *SessionService

	// OTPTTL defaults to DefaultOTPTTL.
	OTPTTL time.Duration

	// LogCodesOnFailure writes the code to the log when delivery fails, so a
	// developer without a mail relay can still finish signup.
	LogCodesOnFailure bool

	// Now defaults to time.Now.
	Now func() time.Time
}

func (s *AccountService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *AccountService) otpTTL() time.Duration {
	if s.OTPTTL > 0 {
		return s.OTPTTL
	}
	return DefaultOTPTTL
}

// Signup registers an unverified account and sends its first verification
// code.
func (s *AccountService) Signup(ctx context.Context, email, password string) (domain.User, error) {
	log := slogx.FromContext(ctx)

	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		return domain.User{}, ErrInvalidRequest
	}

	_, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err == nil {
		log.Info("signup attempted with registered email")
		return domain.User{}, ErrEmailTaken
	}
	if !errors.Is(err, store.ErrNotFound) {
		return domain.User{}, fmt.Errorf("lookup user: %w", err)
	}

	passwordHash, err := cryptox.HashPassword(password)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}

	code, codeHash, err := newVerificationCode()
	if err != nil {
		return domain.User{}, err
	}

	now := s.now()
	expiresAt := now.Add(s.otpTTL())
	user := domain.User{
		ID:           idx.NewAt(now).String(),
		Email:        email,
		PasswordHash: passwordHash,
		OTPHash:      codeHash,
		OTPExpiresAt: &expiresAt,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.Store.Users().CreateUser(ctx, user); err != nil {
		// Lost a race with a concurrent signup for the same address.
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.User{}, ErrEmailTaken
		}
		return domain.User{}, fmt.Errorf("create user: %w", err)
	}

	log.Info("user signed up", slog.String("user_id", user.ID))
	s.deliver(ctx, email, code)
	return user, nil
}

// VerifyEmail checks code against the pending verification of email. A wrong
// code only increments the attempt counter; there is no lockout.
func (s *AccountService) VerifyEmail(ctx context.Context, email, code string) error {
	log := slogx.FromContext(ctx)

	email = domain.NormalizeEmail(email)
	code = strings.TrimSpace(code)
	if email == "" || code == "" {
		return ErrInvalidRequest
	}

	user, err := s.getUser(ctx, email)
	if err != nil {
		return err
	}

	if !user.HasPendingOTP() {
		return ErrNoVerificationPending
	}
	if user.OTPExpired(s.now()) {
		log.Info("expired verification code presented", slog.String("user_id", user.ID))
		return ErrOTPExpired
	}

	if err := checkCode(code, user.OTPHash); err != nil {
		if !errors.Is(err, cryptox.ErrPasswordMismatch) {
			return fmt.Errorf("check verification code: %w", err)
		}

		attempts, err := s.Store.Users().IncrementOTPAttempts(ctx, user.ID)
		if err != nil {
			return fmt.Errorf("record failed attempt: %w", err)
		}
		log.Warn("invalid verification code",
			slog.String("user_id", user.ID),
			slog.Int("attempts", attempts),
		)
		return ErrInvalidOTP
	}

	if err := s.Store.Users().MarkVerified(ctx, user.ID); err != nil {
		return fmt.Errorf("mark verified: %w", err)
	}

	log.Info("email verified", slog.String("user_id", user.ID))
	return nil
}

// ResendVerification replaces the pending code with a fresh one and sends it.
func (s *AccountService) ResendVerification(ctx context.Context, email string) error {
	email = domain.NormalizeEmail(email)
	if email == "" {
		return ErrInvalidRequest
	}

	user, err := s.getUser(ctx, email)
	if err != nil {
		return err
	}
	if user.Verified {
		return ErrAlreadyVerified
	}

	code, codeHash, err := newVerificationCode()
	if err != nil {
		return err
	}

	expiresAt := s.now().Add(s.otpTTL())
	if err := s.Store.Users().SetVerificationCode(ctx, user.ID, codeHash, expiresAt); err != nil {
		return fmt.Errorf("store verification code: %w", err)
	}

	slogx.FromContext(ctx).Info("verification code reissued", slog.String("user_id", user.ID))
	s.deliver(ctx, email, code)
	return nil
}

// LoginParams carries the credentials plus the request details recorded on
// the new session.
type LoginParams struct {
	Email    string
	Password string

	// PresentedToken is the session cookie sent with the login request, if
	// any. It is destroyed so every login yields a fresh session.
	PresentedToken string
	IPAddress      string
	UserAgent      string
}

// Login authenticates a verified user and opens a session. It returns the
// user and the raw session token for the cookie.
func (s *AccountService) Login(ctx context.Context, p LoginParams) (domain.User, string, error) {
	log := slogx.FromContext(ctx)

	email := domain.NormalizeEmail(p.Email)
	if email == "" || p.Password == "" {
		return domain.User{}, "", ErrInvalidRequest
	}

	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Info("login for unknown email")
			return domain.User{}, "", ErrInvalidCredentials
		}
		return domain.User{}, "", fmt.Errorf("lookup user: %w", err)
	}

	if err := cryptox.VerifyPassword(p.Password, user.PasswordHash); err != nil {
		if errors.Is(err, cryptox.ErrPasswordMismatch) {
			log.Warn("login with wrong password", slog.String("user_id", user.ID))
			return domain.User{}, "", ErrInvalidCredentials
		}
		return domain.User{}, "", fmt.Errorf("verify password: %w", err)
	}

	if !user.Verified {
		log.Info("login before email verification", slog.String("user_id", user.ID))
		return domain.User{}, "", ErrEmailNotVerified
	}

	if cryptox.NeedsRehash(user.PasswordHash) {
		s.upgradeHash(ctx, user.ID, p.Password)
	}

	var token string
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if p.PresentedToken != "" {
			if err := tx.Sessions().DeleteSessionByTokenHash(ctx, cryptox.FingerprintToken(p.PresentedToken)); err != nil {
				return err
			}
		}
		var err error
		token, err = s.Sessions.create(ctx, tx, user.ID, p.IPAddress, p.UserAgent)
		return err
	})
	if err != nil {
		return domain.User{}, "", fmt.Errorf("create session: %w", err)
	}

	log.Info("user logged in", slog.String("user_id", user.ID))
	return user, token, nil
}

// upgradeHash replaces a legacy or weaker hash. Failure only costs another
// upgrade attempt on the next login.
func (s *AccountService) upgradeHash(ctx context.Context, userID, password string) {
	log := slogx.FromContext(ctx)

	hash, err := cryptox.HashPassword(password)
	if err == nil {
		err = s.Store.Users().UpdatePasswordHash(ctx, userID, hash)
	}
	if err != nil {
		log.Error("failed to upgrade password hash", slog.String("user_id", userID), slog.Any("error", err))
		return
	}
	log.Info("password hash upgraded", slog.String("user_id", userID))
}

func (s *AccountService) getUser(ctx context.Context, email string) (domain.User, error) {
	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, fmt.Errorf("lookup user: %w", err)
	}
	return user, nil
}

func (s *AccountService) deliver(ctx context.Context, email, code string) {
	log := slogx.FromContext(ctx)

	if s.Notifier == nil {
		log.Warn("no notifier configured, verification code not sent")
		return
	}
	if err := s.Notifier.SendVerificationCode(ctx, email, code); err != nil {
		log.Error("failed to send verification code", slog.Any("error", err))
		if s.LogCodesOnFailure {
			log.Info("[DEV] verification code", slog.String("email", email), slog.String("code", code))
		}
	}
}

func newVerificationCode() (code, hash string, err error) {
	code, err = cryptox.GenerateOTP()
	if err != nil {
		return "", "", err
	}
	hash, err = cryptox.HashPassword(code)
	if err != nil {
		return "", "", fmt.Errorf("hash verification code: %w", err)
	}
	return code, hash, nil
}

// checkCode rejects malformed codes without spending a hash computation.
func checkCode(code, hash string) error {
	if !cryptox.IsOTPFormat(code) {
		return cryptox.ErrPasswordMismatch
	}
	return cryptox.VerifyPassword(code, hash)
}
