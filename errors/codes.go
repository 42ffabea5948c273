package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Transport errors (retryable)
const (
	// ErrCodeServiceUnavailable indicates the remote API is temporarily unavailable.
	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	// ErrCodeTimeout indicates the request timed out.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
	// ErrCodeExternalService indicates an error reported by the remote API.
	ErrCodeExternalService ErrorCode = "EXTERNAL_SERVICE_ERROR"
)

// Resource errors
const (
	// ErrCodeNotFound indicates the requested resource was not found.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodeDoesNotExist indicates a query matched no resource of a model.
	ErrCodeDoesNotExist ErrorCode = "DOES_NOT_EXIST"
	// ErrCodeMultipleObjectsReturned indicates a query expected one resource
	// of a model and matched several.
	ErrCodeMultipleObjectsReturned ErrorCode = "MULTIPLE_OBJECTS_RETURNED"
)

// Model definition errors
const (
	// ErrCodeManagerAccess indicates a manager was reached through an instance.
	ErrCodeManagerAccess ErrorCode = "MANAGER_ACCESS"
	// ErrCodeAlreadyBound indicates a class-level attribute was bound to a second model.
	ErrCodeAlreadyBound ErrorCode = "ALREADY_BOUND"
	// ErrCodeTypeMismatch indicates data could not be bound onto an attribute.
	ErrCodeTypeMismatch ErrorCode = "TYPE_MISMATCH"
)

// Validation errors
const (
	// ErrCodeInvalidInput indicates the input is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeMissingField indicates a required field is missing.
	ErrCodeMissingField ErrorCode = "MISSING_FIELD"
)

// Internal errors
const (
	// ErrCodeInternal indicates an internal error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeServiceUnavailable: true,
	ErrCodeTimeout:            true,
	ErrCodeExternalService:    true,
	ErrCodeInternal:           false,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
