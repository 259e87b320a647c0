package domain

import (
	"strings"
	"time"
)

type User struct {
	ID           string
	Email        string // trimmed, lower-cased
	PasswordHash string // argon2id PHC string, or a legacy bcrypt hash
	Verified     bool

	// Pending verification state. Empty/nil once the address is verified.
	OTPHash      string
	OTPExpiresAt *time.Time
	OTPAttempts  int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasPendingOTP reports whether a verification code is waiting to be used.
func (u User) HasPendingOTP() bool {
	return u.OTPHash != "" && u.OTPExpiresAt != nil
}

// OTPExpired reports whether the pending code expired before now. A code is
// still valid at the exact instant of its expiry.
func (u User) OTPExpired(now time.Time) bool {
	return u.OTPExpiresAt == nil || now.After(*u.OTPExpiresAt)
}

// NormalizeEmail is the canonical form used for storage and lookups.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
