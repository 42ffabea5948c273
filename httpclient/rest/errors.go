package rest

import (
	"errors"

	"github.com/kbukum/restorm/httpclient"
)

// Convenience re-exports so callers of the REST layer do not need to
// import httpclient for error checks.

// IsNotFound checks if the error is a 404 Not Found.
func IsNotFound(err error) bool { return httpclient.IsNotFound(err) }

// IsAuth checks if the error is a 401/403 authentication error.
func IsAuth(err error) bool { return httpclient.IsAuth(err) }

// IsRetryable checks if the error can be retried.
func IsRetryable(err error) bool { return httpclient.IsRetryable(err) }

// IsDecode checks if the response body could not be decoded as JSON.
func IsDecode(err error) bool {
	var e *httpclient.Error
	return errors.As(err, &e) && e.Code == httpclient.ErrCodeDecode
}
