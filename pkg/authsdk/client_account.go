package authsdk

import (
	"context"
	"net/http"
)

// Signup registers an account. The service answers with 201 and sends a
// verification code to the address.
func (c *SDKClient) Signup(ctx context.Context, email, password string) (*SignupResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/api/auth/signup", SignupRequest{
		Email:    email,
		Password: password,
	})
	if err != nil {
		return nil, err
	}

	var out SignupResponse
	if err := decodeJSON(resp, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

// VerifyEmail submits the code that was mailed to email.
func (c *SDKClient) VerifyEmail(ctx context.Context, email, otp string) (*StatusResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/api/auth/verify-email", VerifyEmailRequest{
		Email: email,
		OTP:   otp,
	})
	if err != nil {
		return nil, err
	}

	var out StatusResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// ResendVerification asks for a new code, invalidating the previous one.
func (c *SDKClient) ResendVerification(ctx context.Context, email string) (*StatusResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/api/auth/resend-verification", ResendVerificationRequest{
		Email: email,
	})
	if err != nil {
		return nil, err
	}

	var out StatusResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}
