package http

import (
	"net/http"
	"strings"

	"github.com/diyageorge33/minipro/internal/auth/service"
	"github.com/diyageorge33/minipro/pkg/authsdk"
	"github.com/diyageorge33/minipro/pkg/httpx"
)

// AccountHandler serves the signup and email verification endpoints.
type AccountHandler struct {
	AccountService *service.AccountService
	validate       *requestValidator
}

// HandleSignup godoc
//
//	@Summary		Sign Up
//	@Description	Create an unverified account and mail a 6-digit verification code to the address
//	@Tags			Account
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.SignupRequest	true	"email, password"
//	@Success		201		{object}	authsdk.SignupResponse	"needsVerification, email, message"
//	@Failure		400		{object}	authsdk.ErrorResponse	"missing fields or email already registered"
//	@Failure		429		{object}	authsdk.ErrorResponse	"rate limited"
//	@Failure		500		{object}	authsdk.ErrorResponse	"message"
//	@Router			/api/auth/signup [post].
func (h *AccountHandler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var req authsdk.SignupRequest
	if err := decodeBody(w, r, &req); err != nil {
		httpx.WriteMessage(w, http.StatusBadRequest, msgInvalidRequest)
		return
	}
	req.Email = strings.TrimSpace(req.Email)

	if fe := h.validate.check(req); fe != nil {
		writeValidationError(w, fe, "Email and password are required")
		return
	}

	user, err := h.AccountService.Signup(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, err, "Error signing up")
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, authsdk.SignupResponse{
		NeedsVerification: true,
		Email:             user.Email,
		Message:           "Signup successful. Please verify your email.",
	})
}

// HandleVerifyEmail godoc
//
//	@Summary		Verify Email
//	@Description	Confirm an address with the code sent at signup or resend. Wrong codes are counted but never lock the account
//	@Tags			Account
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.VerifyEmailRequest	true	"email, otp"
//	@Success		200		{object}	authsdk.StatusResponse		"success, message"
//	@Failure		400		{object}	authsdk.ErrorResponse		"missing fields, no verification pending or code expired"
//	@Failure		401		{object}	authsdk.ErrorResponse		"wrong code"
//	@Failure		404		{object}	authsdk.ErrorResponse		"unknown email"
//	@Failure		429		{object}	authsdk.ErrorResponse		"rate limited"
//	@Failure		500		{object}	authsdk.ErrorResponse		"message"
//	@Router			/api/auth/verify-email [post].
func (h *AccountHandler) HandleVerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req authsdk.VerifyEmailRequest
	if err := decodeBody(w, r, &req); err != nil {
		httpx.WriteMessage(w, http.StatusBadRequest, msgInvalidRequest)
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	req.OTP = strings.TrimSpace(req.OTP)

	if fe := h.validate.check(req); fe != nil {
		writeValidationError(w, fe, "Email and OTP required")
		return
	}

	if err := h.AccountService.VerifyEmail(r.Context(), req.Email, req.OTP); err != nil {
		writeServiceError(w, r, err, msgServerError)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.StatusResponse{
		Success: true,
		Message: "Email verified",
	})
}

// HandleResendVerification godoc
//
//	@Summary		Resend Verification Code
//	@Description	Replace the pending code with a new one and mail it. The previous code stops working
//	@Tags			Account
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.ResendVerificationRequest	true	"email"
//	@Success		200		{object}	authsdk.StatusResponse				"success, message"
//	@Failure		400		{object}	authsdk.ErrorResponse				"missing email or already verified"
//	@Failure		404		{object}	authsdk.ErrorResponse				"unknown email"
//	@Failure		429		{object}	authsdk.ErrorResponse				"rate limited"
//	@Failure		500		{object}	authsdk.ErrorResponse				"message"
//	@Router			/api/auth/resend-verification [post].
func (h *AccountHandler) HandleResendVerification(w http.ResponseWriter, r *http.Request) {
	var req authsdk.ResendVerificationRequest
	if err := decodeBody(w, r, &req); err != nil {
		httpx.WriteMessage(w, http.StatusBadRequest, msgInvalidRequest)
		return
	}
	req.Email = strings.TrimSpace(req.Email)

	if fe := h.validate.check(req); fe != nil {
		writeValidationError(w, fe, "Email required")
		return
	}

	if err := h.AccountService.ResendVerification(r.Context(), req.Email); err != nil {
		writeServiceError(w, r, err, msgServerError)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.StatusResponse{
		Success: true,
		Message: "Verification code resent",
	})
}
