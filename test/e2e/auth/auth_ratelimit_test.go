package auth_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/diyageorge33/minipro/pkg/authsdk"
	"github.com/stretchr/testify/require"
)

// TestRateLimitLoginEndpoint verifies that login is rate limited per client
// and email. The strict limit is 5 req/min.
func TestRateLimitLoginEndpoint(t *testing.T) {
	svc := setupAuthContainerWithDefaultRateLimits(t)
	client := authsdk.NewSDKClient(svc.BaseURL)

	for i := range 6 {
		_, err := client.Login(t.Context(), "victim@example.com", "guess")
		if i < 5 {
			assertStatus(t, err, http.StatusUnauthorized, "request %d should reach the handler", i+1)
			continue
		}
		assertStatus(t, err, http.StatusTooManyRequests, "request %d should be rate limited", i+1)
	}

	// A different email from the same client has its own budget
	_, err := client.Login(t.Context(), "other@example.com", "guess")
	assertStatus(t, err, http.StatusUnauthorized)
}

// TestRateLimitSignupEndpoint verifies that signup is rate limited per IP.
func TestRateLimitSignupEndpoint(t *testing.T) {
	svc := setupAuthContainerWithDefaultRateLimits(t)
	client := authsdk.NewSDKClient(svc.BaseURL)

	var lastErr error
	for i := range 6 {
		_, lastErr = client.Signup(t.Context(), fmt.Sprintf("user%d@example.com", i), "pw")
		if i < 5 {
			require.NoError(t, lastErr, "signup %d should succeed", i+1)
		}
	}
	assertStatus(t, lastErr, http.StatusTooManyRequests)
}
