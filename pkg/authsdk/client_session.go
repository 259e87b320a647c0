package authsdk

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// Login authenticates and stores the session cookie in the client's jar.
func (c *SDKClient) Login(ctx context.Context, email, password string) (*User, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/api/auth/login", LoginRequest{
		Email:    email,
		Password: password,
	})
	if err != nil {
		return nil, err
	}

	var out UserResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out.User, nil
}

// Me returns the user behind the current session.
func (c *SDKClient) Me(ctx context.Context) (*User, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/api/auth/me", nil)
	if err != nil {
		return nil, err
	}

	var out UserResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out.User, nil
}

// Logout destroys the current session. It succeeds without a session too.
func (c *SDKClient) Logout(ctx context.Context) error {
	resp, err := c.doRequest(ctx, http.MethodPost, "/api/auth/logout", nil)
	if err != nil {
		return err
	}

	var out StatusResponse
	return decodeJSON(resp, &out, http.StatusOK)
}

// Dashboard fetches the HTML page served at /secrets. Without a valid
// session the service redirects to the login page, reported as an *APIError
// carrying the Location.
func (c *SDKClient) Dashboard(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url("/secrets"), nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "text/html")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", parseErrorResponse(resp, body)
	}
	return string(body), nil
}
