package domain

import "time"

// Session is the server-side record behind a session cookie. Only the
// fingerprint of the cookie value is kept.
type Session struct {
	ID        string
	UserID    string
	TokenHash string
	IPAddress string
	UserAgent string
	ExpiresAt time.Time
	CreatedAt time.Time
}

func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
