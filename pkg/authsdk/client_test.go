package authsdk

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSDKClientKeepsSessionCookie(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		http.SetCookie(w, &http.Cookie{Name: "sid", Value: "tok", Path: "/", HttpOnly: true})
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(UserResponse{User: User{ID: "01J", Email: req.Email}})
	})
	mux.HandleFunc("GET /api/auth/me", func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie("sid"); err != nil || c.Value != "tok" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"Not authenticated"}`))
			return
		}
		_ = json.NewEncoder(w).Encode(UserResponse{User: User{ID: "01J", Email: "a@example.com"}})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	client := NewSDKClient(srv.URL + "/")
	ctx := context.Background()

	_, err := client.Me(ctx)
	require.True(t, IsStatus(err, http.StatusUnauthorized))
	require.Equal(t, "Not authenticated", err.(*APIError).Message)

	user, err := client.Login(ctx, "a@example.com", "pw")
	require.NoError(t, err)
	require.Equal(t, "a@example.com", user.Email)

	c, ok := client.SessionCookie("sid")
	require.True(t, ok)
	require.Equal(t, "tok", c.Value)

	me, err := client.Me(ctx)
	require.NoError(t, err)
	require.Equal(t, "01J", me.ID)
}

func TestDashboardReportsRedirect(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "http://localhost:5173/login", http.StatusFound)
	}))
	t.Cleanup(srv.Close)

	_, err := NewSDKClient(srv.URL).Dashboard(context.Background())
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusFound, apiErr.StatusCode)
	require.Equal(t, "http://localhost:5173/login", apiErr.Location)
}

func TestParseErrorResponseFallsBackToStatusText(t *testing.T) {
	t.Parallel()

	resp := &http.Response{StatusCode: http.StatusBadGateway, Header: http.Header{}}
	err := parseErrorResponse(resp, []byte("<html>bad gateway</html>"))

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, "Bad Gateway", apiErr.Message)
}

func TestParseErrorResponseKeepsDetails(t *testing.T) {
	t.Parallel()

	resp := &http.Response{StatusCode: http.StatusBadRequest, Header: http.Header{}}
	err := parseErrorResponse(resp, []byte(`{"message":"Invalid request","details":{"email":"email must be a valid email address"}}`))

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, "Invalid request", apiErr.Message)
	require.Equal(t, "email must be a valid email address", apiErr.Details["email"])
}
