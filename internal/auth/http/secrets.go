package http

import (
	"embed"
	"errors"
	"html/template"
	"net/http"

	"github.com/diyageorge33/minipro/internal/auth/service"
	"github.com/diyageorge33/minipro/pkg/httpx"
	"github.com/diyageorge33/minipro/pkg/slogx"
)

//go:embed templates/*.html
var templateFS embed.FS

var dashboardTemplate = template.Must(template.ParseFS(templateFS, "templates/dashboard.html"))

type dashboardData struct {
	Title string
	Email string
}

// DashboardHandler renders the protected page for the session's user.
type DashboardHandler struct {
	UserService *service.UserService
	LoginURL    string
}

// ServeHTTP godoc
//
//	@Summary		User Dashboard
//	@Description	HTML page for the signed-in user. Browsers without a session are redirected to the login page
//	@Tags			Session
//	@Produce		html
//	@Success		200	{string}	string	"dashboard page"
//	@Success		302	"redirect to the login page"
//	@Router			/secrets [get].
func (h *DashboardHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, _ := httpx.UserIDFromContext(ctx)

	user, err := h.UserService.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			http.Redirect(w, r, h.LoginURL, http.StatusFound)
			return
		}
		slogx.FromContext(ctx).Error("failed to load dashboard user", "err", err)
		httpx.WriteMessage(w, http.StatusInternalServerError, msgServerError)
		return
	}

	data := dashboardData{Title: "User Dashboard", Email: user.Email}
	if data.Email == "" {
		data.Email = "User"
	}

	httpx.NoCache(w)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := dashboardTemplate.Execute(w, data); err != nil {
		slogx.FromContext(ctx).Error("failed to render dashboard", "err", err)
	}
}
