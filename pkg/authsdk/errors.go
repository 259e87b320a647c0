package authsdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// APIError is returned for any response with an unexpected status code.
type APIError struct {
	StatusCode int
	Message    string
	Details    map[string]string

	// Location is set for redirect responses.
	Location string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Location != "" {
		return fmt.Sprintf("HTTP %d: redirect to %s", e.StatusCode, e.Location)
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// parseErrorResponse turns an unexpected response into an *APIError,
// falling back to the status text when the body is not a JSON message.
func parseErrorResponse(resp *http.Response, body []byte) error {
	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		Location:   resp.Header.Get("Location"),
	}

	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Message != "" {
		apiErr.Message = errResp.Message
		apiErr.Details = errResp.Details
		return apiErr
	}

	apiErr.Message = http.StatusText(resp.StatusCode)
	return apiErr
}

// IsStatus reports whether err is an *APIError with the given status code.
func IsStatus(err error, code int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == code
}
