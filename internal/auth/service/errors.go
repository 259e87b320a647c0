package service

import "errors"

var (
	ErrInvalidRequest        = errors.New("invalid request")
	ErrEmailTaken            = errors.New("email already registered")
	ErrUserNotFound          = errors.New("user not found")
	ErrNoVerificationPending = errors.New("no verification pending")
	ErrAlreadyVerified       = errors.New("user already verified")
	ErrOTPExpired            = errors.New("verification code expired")
	ErrInvalidOTP            = errors.New("invalid verification code")
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrEmailNotVerified      = errors.New("email not verified")
	ErrSessionNotFound       = errors.New("session not found or expired")
)
