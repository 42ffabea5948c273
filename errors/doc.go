// Package errors provides unified error handling for restorm.
// It implements structured error types with error codes, HTTP status mapping
// and retryable detection following RFC 7807, plus model-scoped error kinds
// usable as errors.Is targets.
package errors
