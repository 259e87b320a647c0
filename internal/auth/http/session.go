package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/diyageorge33/minipro/internal/auth/service"
	"github.com/diyageorge33/minipro/pkg/authsdk"
	"github.com/diyageorge33/minipro/pkg/httpx"
)

// CookieConfig describes the session cookie.
type CookieConfig struct {
	Name   string
	Secure bool
}

// SessionHandler serves login, logout and the current-user endpoint.
type SessionHandler struct {
	AccountService *service.AccountService
	SessionService *service.SessionService
	UserService    *service.UserService
	Cookie         CookieConfig

	// LoginURL is where POST /logout sends the browser afterwards.
	LoginURL string

	validate *requestValidator
}

// HandleLogin godoc
//
//	@Summary		Log In
//	@Description	Authenticate a verified account and set the session cookie. Any session cookie sent with the request is replaced
//	@Tags			Session
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.LoginRequest	true	"email, password"
//	@Success		200		{object}	authsdk.UserResponse	"user id and email; Set-Cookie carries the session"
//	@Failure		400		{object}	authsdk.ErrorResponse	"missing fields"
//	@Failure		401		{object}	authsdk.ErrorResponse	"invalid credentials or unverified email"
//	@Failure		429		{object}	authsdk.ErrorResponse	"rate limited"
//	@Failure		500		{object}	authsdk.ErrorResponse	"message"
//	@Router			/api/auth/login [post].
func (h *SessionHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req authsdk.LoginRequest
	if err := decodeBody(w, r, &req); err != nil {
		httpx.WriteMessage(w, http.StatusBadRequest, msgInvalidRequest)
		return
	}
	req.Email = strings.TrimSpace(req.Email)

	if fe := h.validate.check(req); fe != nil {
		writeValidationError(w, fe, "Email and password are required")
		return
	}

	var presented string
	if c, err := r.Cookie(h.Cookie.Name); err == nil {
		presented = c.Value
	}

	user, token, err := h.AccountService.Login(r.Context(), service.LoginParams{
		Email:          req.Email,
		Password:       req.Password,
		PresentedToken: presented,
		IPAddress:      httpx.IPKeyExtractor(r),
		UserAgent:      r.UserAgent(),
	})
	if err != nil {
		writeServiceError(w, r, err, msgServerError)
		return
	}

	h.setCookie(w, token)
	httpx.WriteJSON(w, http.StatusOK, authsdk.UserResponse{
		User: authsdk.User{ID: user.ID, Email: user.Email},
	})
}

// HandleMe godoc
//
//	@Summary		Current User
//	@Description	Return the account behind the session cookie
//	@Tags			Session
//	@Produce		json
//	@Success		200	{object}	authsdk.UserResponse	"user id and email"
//	@Failure		401	{object}	authsdk.ErrorResponse	"no valid session"
//	@Failure		500	{object}	authsdk.ErrorResponse	"message"
//	@Security		SessionCookie
//	@Router			/api/auth/me [get].
func (h *SessionHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	userID, _ := httpx.UserIDFromContext(r.Context())

	user, err := h.UserService.GetUserByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			httpx.WriteMessage(w, http.StatusUnauthorized, msgNotAuthenticated)
			return
		}
		writeServiceError(w, r, err, msgServerError)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.UserResponse{
		User: authsdk.User{ID: user.ID, Email: user.Email},
	})
}

// HandleLogout godoc
//
//	@Summary		Log Out
//	@Description	Destroy the current session and clear the cookie. Succeeds without a session too
//	@Tags			Session
//	@Produce		json
//	@Success		200	{object}	authsdk.StatusResponse	"success"
//	@Failure		500	{object}	authsdk.ErrorResponse	"message"
//	@Router			/api/auth/logout [post].
func (h *SessionHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if !h.destroy(w, r) {
		return
	}
	httpx.WriteJSON(w, http.StatusOK, authsdk.StatusResponse{Success: true})
}

// HandleLogoutRedirect godoc
//
//	@Summary		Log Out (browser)
//	@Description	Destroy the current session, clear the cookie and redirect to the client's login page
//	@Tags			Session
//	@Success		302	"redirect to the login page"
//	@Failure		500	{object}	authsdk.ErrorResponse	"message"
//	@Router			/logout [post].
func (h *SessionHandler) HandleLogoutRedirect(w http.ResponseWriter, r *http.Request) {
	if !h.destroy(w, r) {
		return
	}
	http.Redirect(w, r, h.LoginURL, http.StatusFound)
}

// destroy removes the session and clears the cookie. It reports false after
// writing an error response.
func (h *SessionHandler) destroy(w http.ResponseWriter, r *http.Request) bool {
	if c, err := r.Cookie(h.Cookie.Name); err == nil {
		if err := h.SessionService.Destroy(r.Context(), c.Value); err != nil {
			writeServiceError(w, r, err, "Error logging out")
			return false
		}
	}
	h.clearCookie(w)
	return true
}

func (h *SessionHandler) setCookie(w http.ResponseWriter, token string) {
	ttl := h.SessionService.Lifetime()
	http.SetCookie(w, &http.Cookie{
		Name:     h.Cookie.Name,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl / time.Second),
		Expires:  time.Now().Add(ttl),
		HttpOnly: true,
		Secure:   h.Cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *SessionHandler) clearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.Cookie.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.Cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
