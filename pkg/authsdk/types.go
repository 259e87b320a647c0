package authsdk

// ============================================================================
// Error Types
// ============================================================================

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	// Message is a human-readable description of the failure
	Message string `json:"message"`

	// Details maps request fields to validation messages, when the request
	// failed validation
	Details map[string]string `json:"details,omitempty"`
}

// ============================================================================
// Account Types
// ============================================================================

// SignupRequest is the body of POST /api/auth/signup.
type SignupRequest struct {
	Email    string `json:"email"    validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,max=128"`
}

// SignupResponse is returned once the account exists and a verification code
// has been issued.
type SignupResponse struct {
	NeedsVerification bool   `json:"needsVerification"`
	Email             string `json:"email"`
	Message           string `json:"message"`
}

// VerifyEmailRequest is the body of POST /api/auth/verify-email.
type VerifyEmailRequest struct {
	Email string `json:"email" validate:"required,email,max=254"`
	OTP   string `json:"otp"   validate:"required,max=16"`
}

// ResendVerificationRequest is the body of POST /api/auth/resend-verification.
type ResendVerificationRequest struct {
	Email string `json:"email" validate:"required,email,max=254"`
}

// StatusResponse acknowledges an operation that returns no resource.
type StatusResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// ============================================================================
// Session Types
// ============================================================================

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,max=128"`
}

// User is the public view of an account.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// UserResponse is returned by login and GET /api/auth/me.
type UserResponse struct {
	User User `json:"user"`
}

// ============================================================================
// Health Types
// ============================================================================

// HealthResponse represents the response structure for health check endpoints.
// Used by both /livez and /readyz endpoints (readyz includes additional Checks field).
type HealthResponse struct {
	// Status indicates the overall health status (e.g., "ok")
	Status string `json:"status"`

	// Uptime is the service uptime duration as a string (e.g., "1h23m45s")
	Uptime string `json:"uptime,omitempty"`

	// Version is the service version string
	Version string `json:"version,omitempty"`

	// Checks contains readiness check results for critical dependencies (only for /readyz)
	Checks *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks represents the status of critical service dependencies.
type HealthChecks struct {
	// Database indicates the database connection status
	Database string `json:"database"`

	// Mailer reports how verification codes are delivered ("smtp" or "log")
	Mailer string `json:"mailer"`
}
