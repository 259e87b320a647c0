package auth_test

import (
	"testing"

	"github.com/diyageorge33/minipro/pkg/authsdk"
	"github.com/stretchr/testify/require"
)

// TestLivezEndpoint verifies the liveness check endpoint.
func TestLivezEndpoint(t *testing.T) {
	svc := setupAuthContainer(t)
	client := authsdk.NewSDKClient(svc.BaseURL)

	health, err := client.GetLiveness(t.Context())
	assertHealthy(t, health, err)
}

// TestReadyzEndpoint verifies the readiness check reports the database and
// the log-only mailer used when no SMTP relay is configured.
func TestReadyzEndpoint(t *testing.T) {
	svc := setupAuthContainer(t)
	client := authsdk.NewSDKClient(svc.BaseURL)

	health, err := client.GetReadiness(t.Context())
	assertHealthy(t, health, err)
	require.NotNil(t, health.Checks)
	require.Equal(t, "ok", health.Checks.Database)
	require.Equal(t, "log", health.Checks.Mailer)
}
