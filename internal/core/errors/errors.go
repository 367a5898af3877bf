package errors

const (
	HttpInternalError          = "internal_error"
	HttpValidationError        = "validation_error"
	HttpAuthenticationError    = "authentication_error"
	HttpRateLimitError         = "rate_limit_exceeded"
	HttpNotFoundError          = "not_found"
	HttpMalformedUpstreamError = "malformed_upstream_response"
	HttpNetworkError           = "upstream_unreachable"
)

// ErrorResponse is the error response body for API failures. Success
// is always false and mirrors the success envelope for clients that
// branch on the flag rather than the status code.
type ErrorResponse struct {
	Success    bool        `json:"success"`
	ErrorType  string      `json:"error_type"`
	Message    string      `json:"message"`
	RequestID  string      `json:"request_id,omitempty"`
	RetryAfter int         `json:"retry_after,omitempty"`
	Details    interface{} `json:"details,omitempty"`
}
