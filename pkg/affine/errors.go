package affine

import (
	"errors"
	"fmt"
)

// ConfigError reports missing or invalid plugin configuration.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return "affine config: " + e.Message
}

// AuthError reports a failed sign-in. StatusCode is zero when the server
// answered successfully but issued no session cookies.
type AuthError struct {
	StatusCode int
	Status     string
	Message    string
}

func (e *AuthError) Error() string {
	if e.StatusCode == 0 {
		return "affine sign-in failed: " + e.Message
	}
	return fmt.Sprintf("affine sign-in failed: %d %s", e.StatusCode, e.Status)
}

// APIError represents a non-2xx response from the document API.
type APIError struct {
	StatusCode int
	Path       string
	Body       string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("affine API error %d: %s", e.StatusCode, e.Path)
	}
	return fmt.Sprintf("affine API error %d: %s: %s", e.StatusCode, e.Path, e.Body)
}

// IsStatus returns true if err (or any wrapped error) is an APIError or
// AuthError with the given status code.
func IsStatus(err error, code int) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == code
	}
	var authErr *AuthError
	if errors.As(err, &authErr) {
		return authErr.StatusCode == code
	}
	return false
}
