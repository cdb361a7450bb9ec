// Package dto contains Data Transfer Objects for API requests and responses
package dto

// APIResponse represents a standard API response structure
type APIResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty" validate:"omitempty"`
	Error   any    `json:"error,omitempty" validate:"omitempty"`
}

// ErrorDetail represents error details in API responses
type ErrorDetail struct {
	Code    string `json:"code"`
	Details any    `json:"details,omitempty"`
}

// VerifyPasswordRequest carries the password submitted for a protected short link
type VerifyPasswordRequest struct {
	Password string `json:"password" validate:"required"`
}

// VerifyPasswordResponse reports the verification result. Message carries the
// same generic text on every failure cause.
type VerifyPasswordResponse struct {
	DestinationURL string `json:"destination_url,omitempty"`
}

// PasswordRequiredResponse tells the client the short link exists but needs a password
type PasswordRequiredResponse struct {
	ShortCode         string `json:"short_code"`
	PasswordProtected bool   `json:"password_protected"`
}
