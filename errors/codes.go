package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Configuration errors (never retried automatically)
const (
	// ErrCodeConfiguration indicates no credential or provider is configured.
	ErrCodeConfiguration ErrorCode = "CONFIGURATION_ERROR"
)

// Provider errors
const (
	// ErrCodeAuthentication indicates the provider rejected the credential.
	ErrCodeAuthentication ErrorCode = "AUTHENTICATION_ERROR"
	// ErrCodeQuotaExceeded indicates a provider-reported usage limit.
	ErrCodeQuotaExceeded ErrorCode = "QUOTA_EXCEEDED"
	// ErrCodeInvalidRequest indicates the provider rejected the request shape.
	ErrCodeInvalidRequest ErrorCode = "INVALID_REQUEST"
	// ErrCodeNetwork indicates a connection-level failure reaching the provider.
	ErrCodeNetwork ErrorCode = "NETWORK_ERROR"
	// ErrCodeProvider indicates an uncategorized provider failure.
	ErrCodeProvider ErrorCode = "PROVIDER_ERROR"
)

// Processing errors
const (
	// ErrCodeMalformedResponse indicates the processing response did not
	// contain the expected sections. Non-fatal: callers degrade to a
	// partial result instead of failing the operation.
	ErrCodeMalformedResponse ErrorCode = "MALFORMED_RESPONSE"
)

// Local errors
const (
	// ErrCodeInvalidInput indicates the input is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeStorage indicates a settings or cache storage failure.
	ErrCodeStorage ErrorCode = "STORAGE_ERROR"
	// ErrCodeInternal indicates an internal error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeNetwork:  true,
	ErrCodeProvider: true,
	ErrCodeStorage:  true,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
// Configuration, authentication, and quota errors require user action and are
// never retried automatically.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
