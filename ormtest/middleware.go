package ormtest

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apperrors "github.com/kbukum/restorm/errors"
	"github.com/kbukum/restorm/httpclient/rest"
	"github.com/kbukum/restorm/logger"
)

// requestID echoes X-Request-Id, generating one when the client sent none.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(rest.HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(rest.HeaderRequestID, id)
		c.Next()
	}
}

// recovery turns handler panics into 500 responses.
func recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.Get("ormtest").Error("panic recovered", logger.Fields(
					logger.FieldError, fmt.Sprintf("%v", r),
					logger.FieldPath, c.Request.URL.Path,
				))
				respondError(c, apperrors.Internal(fmt.Errorf("panic: %v", r)))
			}
		}()
		c.Next()
	}
}

func (s *Server) record() gin.HandlerFunc {
	return func(c *gin.Context) {
		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method:    c.Request.Method,
			Path:      c.Request.URL.Path,
			Query:     c.Request.URL.Query(),
			RequestID: c.GetHeader(rest.HeaderRequestID),
			Header:    c.Request.Header.Clone(),
		})
		s.mu.Unlock()
		c.Next()
	}
}

func (s *Server) injectFailures() gin.HandlerFunc {
	return func(c *gin.Context) {
		s.mu.Lock()
		status := 0
		if len(s.failures) > 0 {
			status, s.failures = s.failures[0], s.failures[1:]
		}
		s.mu.Unlock()

		if status == 0 {
			c.Next()
			return
		}
		err := apperrors.New(failureCode(status), http.StatusText(status), status)
		c.AbortWithStatusJSON(status, err.ToResponse())
	}
}

func failureCode(status int) apperrors.ErrorCode {
	switch {
	case status == http.StatusNotFound:
		return apperrors.ErrCodeNotFound
	case status == http.StatusGatewayTimeout:
		return apperrors.ErrCodeTimeout
	case status >= http.StatusInternalServerError:
		return apperrors.ErrCodeServiceUnavailable
	default:
		return apperrors.ErrCodeInvalidInput
	}
}

// respondError writes err as an ErrorResponse body, using the AppError
// status when there is one.
func respondError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		c.AbortWithStatusJSON(appErr.HTTPStatus, appErr.ToResponse())
		return
	}
	c.AbortWithStatusJSON(http.StatusInternalServerError, apperrors.Internal(err).ToResponse())
}

func respondNotFound(c *gin.Context, resource, id string) {
	respondError(c, apperrors.NotFound(resource, id))
}
