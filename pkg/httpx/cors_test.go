package httpx_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/diyageorge33/minipro/pkg/httpx"
	"github.com/stretchr/testify/require"
)

func TestCORS(t *testing.T) {
	h := httpx.CORS(httpx.CORSConfig{
		AllowedOrigins:   []string{"http://localhost:5173"},
		AllowCredentials: true,
	})(okHandler())

	t.Run("allowed origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		req.Header.Set("Origin", "http://localhost:5173")

		rec := serve(h, req)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
		require.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/auth/login", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		req.Header.Set("Access-Control-Request-Method", "POST")
		req.Header.Set("Access-Control-Request-Headers", "content-type")

		rec := serve(h, req)
		require.Equal(t, http.StatusNoContent, rec.Code)
		require.Equal(t, "GET,HEAD,PUT,PATCH,POST,DELETE", rec.Header().Get("Access-Control-Allow-Methods"))
		require.Equal(t, "content-type", rec.Header().Get("Access-Control-Allow-Headers"))
	})

	t.Run("foreign origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "https://evil.example")

		rec := serve(h, req)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("same origin request", func(t *testing.T) {
		rec := serve(h, httptest.NewRequest(http.MethodGet, "/", nil))
		require.Empty(t, rec.Header().Get("Vary"))
	})
}

func TestSplitOrigins(t *testing.T) {
	require.Equal(t,
		[]string{"http://localhost:5173", "https://app.example.com"},
		httpx.SplitOrigins(" http://localhost:5173, ,https://app.example.com/ "),
	)
	require.Nil(t, httpx.SplitOrigins(""))
}
