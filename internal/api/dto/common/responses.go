package common

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	OK    bool      `json:"ok"`
	Error ErrorCode `json:"error"`
}

// OKResponse is the body of a request accepted without further data
type OKResponse struct {
	OK bool `json:"ok"`
}

// HealthResponse is returned by the health check
type HealthResponse struct {
	OK      bool   `json:"ok"`
	Version string `json:"version"`
}

// Define type for error codes to enforce consistency
type ErrorCode string

// Error codes returned to the website
const (
	ErrCodeMethodNotAllowed    ErrorCode = "method_not_allowed"
	ErrCodeMissingFields       ErrorCode = "missing_fields"
	ErrCodeInvalidEmail        ErrorCode = "invalid_email"
	ErrCodeFieldTooLong        ErrorCode = "field_too_long"
	ErrCodeMessageTooLong      ErrorCode = "message_too_long"
	ErrCodeRateLimited         ErrorCode = "rate_limited"
	ErrCodeServerNotConfigured ErrorCode = "server_not_configured"
	ErrCodeSendFailed          ErrorCode = "send_failed"
	ErrCodeNotFound            ErrorCode = "not_found"
	ErrCodeOriginNotAllowed    ErrorCode = "origin_not_allowed"
)

// NewErrorResponse creates a new error API response
func NewErrorResponse(code ErrorCode) ErrorResponse {
	return ErrorResponse{OK: false, Error: code}
}

// NewOKResponse creates a bare success response
func NewOKResponse() OKResponse {
	return OKResponse{OK: true}
}
