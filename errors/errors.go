package errors

import (
	"fmt"
	"net/http"
)

// AppError is the unified error type returned by restorm packages.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates if the operation can be retried.
	Retryable bool `json:"retryable"`
	// HTTPStatus is the closest HTTP status code for this error.
	HTTPStatus int `json:"-"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// Is reports whether target is a Kind matching this error, so callers can
// write errors.Is(err, People.DoesNotExist).
func (e *AppError) Is(target error) bool {
	k, ok := target.(Kind)
	if !ok {
		return false
	}
	if e.Code != k.Code {
		return false
	}
	if k.Model == "" {
		return true
	}
	model, _ := e.Details[DetailModel].(string)
	return model == k.Model
}

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetails merges the provided details into the error and returns the receiver.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError with automatic retryable detection.
func New(code ErrorCode, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Retryable:  IsRetryableCode(code),
	}
}

// --- Model errors ---

// ManagerAccess creates the error returned when a model manager is reached
// through an instance instead of the model type.
func ManagerAccess(model string) *AppError {
	return &AppError{
		Code: ErrCodeManagerAccess, Message: fmt.Sprintf("manager isn't accessible via %s instances", model),
		HTTPStatus: http.StatusInternalServerError, Retryable: false,
		Details: map[string]any{DetailModel: model},
	}
}

// DoesNotExist creates the error raised when a query for exactly one
// resource of model matched none.
func DoesNotExist(model string) *AppError {
	return &AppError{
		Code: ErrCodeDoesNotExist, Message: fmt.Sprintf("%s matching query does not exist", model),
		HTTPStatus: http.StatusNotFound, Retryable: false,
		Details: map[string]any{DetailModel: model},
	}
}

// MultipleObjectsReturned creates the error raised when a query for exactly
// one resource of model matched count of them.
func MultipleObjectsReturned(model string, count int) *AppError {
	return &AppError{
		Code: ErrCodeMultipleObjectsReturned, Message: fmt.Sprintf("get() returned more than one %s -- it returned %d", model, count),
		HTTPStatus: http.StatusConflict, Retryable: false,
		Details: map[string]any{DetailModel: model, DetailCount: count},
	}
}

// TypeMismatch creates an error for data that cannot be bound onto key.
func TypeMismatch(key, reason string) *AppError {
	return &AppError{
		Code: ErrCodeTypeMismatch, Message: fmt.Sprintf("cannot bind %q: %s", key, reason),
		HTTPStatus: http.StatusUnprocessableEntity, Retryable: false,
		Details: map[string]any{"key": key},
	}
}

// AlreadyBound creates an error for a class-level attribute that was already
// contributed to another model.
func AlreadyBound(attr, model string) *AppError {
	return &AppError{
		Code: ErrCodeAlreadyBound, Message: fmt.Sprintf("%s is already bound to %s", attr, model),
		HTTPStatus: http.StatusInternalServerError, Retryable: false,
		Details: map[string]any{"attribute": attr, DetailModel: model},
	}
}

// --- Common Error Constructors ---

// ServiceUnavailable creates a new AppError for a remote API that is temporarily unavailable.
func ServiceUnavailable(service string) *AppError {
	return &AppError{
		Code: ErrCodeServiceUnavailable, Message: fmt.Sprintf("The %s is temporarily unavailable. Please try again.", service),
		HTTPStatus: http.StatusServiceUnavailable, Retryable: true,
		Details: map[string]any{"service": service},
	}
}

// Timeout creates a new AppError for a request that timed out.
func Timeout(operation string) *AppError {
	return &AppError{
		Code: ErrCodeTimeout, Message: "The request took too long. Please try again.",
		HTTPStatus: http.StatusGatewayTimeout, Retryable: true,
		Details: map[string]any{"operation": operation},
	}
}

// NotFound creates a new AppError for a resource that was not found.
func NotFound(resource, id string) *AppError {
	details := map[string]any{"resource": resource}
	if id != "" {
		details["id"] = id
	}
	return &AppError{
		Code: ErrCodeNotFound, Message: fmt.Sprintf("The requested %s was not found.", resource),
		HTTPStatus: http.StatusNotFound, Retryable: false, Details: details,
	}
}

// InvalidInput creates a new AppError for invalid input.
func InvalidInput(field, reason string) *AppError {
	details := make(map[string]any)
	if field != "" {
		details["field"] = field
	}
	return &AppError{
		Code: ErrCodeInvalidInput, Message: fmt.Sprintf("Invalid input: %s", reason),
		HTTPStatus: http.StatusBadRequest, Retryable: false, Details: details,
	}
}

// Validation creates a new AppError for validation errors.
func Validation(message string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidInput, Message: message,
		HTTPStatus: http.StatusBadRequest, Retryable: false,
	}
}

// MissingField creates a new AppError for a missing required field.
func MissingField(field string) *AppError {
	return &AppError{
		Code: ErrCodeMissingField, Message: fmt.Sprintf("Missing required field: %s", field),
		HTTPStatus: http.StatusBadRequest, Retryable: false,
		Details: map[string]any{"field": field},
	}
}

// Internal creates a new AppError for an internal error.
func Internal(cause error) *AppError {
	return &AppError{
		Code: ErrCodeInternal, Message: "An unexpected error occurred.",
		HTTPStatus: http.StatusInternalServerError, Retryable: false, Cause: cause,
	}
}

// ExternalServiceError creates a new AppError for an error from the remote API.
func ExternalServiceError(service string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeExternalService, Message: fmt.Sprintf("The %s service encountered an error. Please try again.", service),
		HTTPStatus: http.StatusBadGateway, Retryable: true,
		Details: map[string]any{"service": service}, Cause: cause,
	}
}
