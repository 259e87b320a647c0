package app

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/diyageorge33/minipro/internal/auth/notify"
	"github.com/diyageorge33/minipro/pkg/authsdk"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T, overrides map[string]string) Config {
	t.Helper()

	environ := map[string]string{
		"DATABASE_FILE": filepath.Join(t.TempDir(), "minipro.db"),
		"PEPPER_FILE":   filepath.Join(t.TempDir(), "pepper"),
		"LOG_LEVEL":     "error",
	}
	for k, v := range overrides {
		environ[k] = v
	}

	cfg, err := loadConfigFrom(environ)
	require.NoError(t, err)
	return cfg
}

func TestNewWiresSQLiteAndLogNotifier(t *testing.T) {
	application, err := New(testConfig(t, nil))
	require.NoError(t, err)
	t.Cleanup(func() { _ = application.db.Close() })

	require.IsType(t, notify.LogNotifier{}, application.notifier)

	rec := httptest.NewRecorder()
	application.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var health authsdk.HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	require.Equal(t, "log", health.Checks.Mailer)
}

func TestNewWiresSMTPNotifier(t *testing.T) {
	application, err := New(testConfig(t, map[string]string{
		"EMAIL_HOST": "smtp.example.com",
		"EMAIL_USER": "mailer@example.com",
	}))
	require.NoError(t, err)
	t.Cleanup(func() { _ = application.db.Close() })

	require.IsType(t, &notify.SMTPNotifier{}, application.notifier)
	require.Equal(t, "smtp", application.mailer)
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	_, err := New(testConfig(t, map[string]string{"DATABASE_DRIVER": "mysql"}))
	require.Error(t, err)
}
