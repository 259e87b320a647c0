package http

import (
	"errors"
	"net/http"

	"github.com/diyageorge33/minipro/internal/auth/service"
	"github.com/diyageorge33/minipro/pkg/authsdk"
	"github.com/diyageorge33/minipro/pkg/httpx"
	"github.com/diyageorge33/minipro/pkg/slogx"
)

const (
	msgServerError      = "Server error"
	msgInvalidRequest   = "Invalid request"
	msgNotAuthenticated = "Not authenticated"
)

// writeServiceError maps service errors onto status codes and the messages
// clients already rely on. Unexpected errors are logged and answered with
// fallback.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrInvalidRequest):
		httpx.WriteMessage(w, http.StatusBadRequest, msgInvalidRequest)
	case errors.Is(err, service.ErrEmailTaken):
		httpx.WriteMessage(w, http.StatusBadRequest, "User already exists!")
	case errors.Is(err, service.ErrUserNotFound):
		httpx.WriteMessage(w, http.StatusNotFound, "User not found")
	case errors.Is(err, service.ErrNoVerificationPending):
		httpx.WriteMessage(w, http.StatusBadRequest, "No verification pending")
	case errors.Is(err, service.ErrAlreadyVerified):
		httpx.WriteMessage(w, http.StatusBadRequest, "User already verified")
	case errors.Is(err, service.ErrOTPExpired):
		httpx.WriteMessage(w, http.StatusBadRequest, "OTP expired")
	case errors.Is(err, service.ErrInvalidOTP):
		httpx.WriteMessage(w, http.StatusUnauthorized, "Invalid OTP")
	case errors.Is(err, service.ErrInvalidCredentials):
		httpx.WriteMessage(w, http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, service.ErrEmailNotVerified):
		httpx.WriteMessage(w, http.StatusUnauthorized, "Please verify your email before logging in.")
	default:
		slogx.FromContext(r.Context()).Error("request failed", "err", err)
		httpx.WriteMessage(w, http.StatusInternalServerError, fallback)
	}
}

// writeValidationError answers a request that failed decoding or validation.
// missingMsg is used when a required field is absent.
func writeValidationError(w http.ResponseWriter, fe *fieldErrors, missingMsg string) {
	msg := msgInvalidRequest
	if fe.missing {
		msg = missingMsg
	}
	httpx.WriteJSON(w, http.StatusBadRequest, authsdk.ErrorResponse{
		Message: msg,
		Details: fe.details,
	})
}
