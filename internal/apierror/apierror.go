package apierror

import (
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"
)

type ErrorCode string

const (
	ErrNotFound         ErrorCode = "NOT_FOUND"
	ErrConflict         ErrorCode = "CONFLICT"
	ErrBadRequest       ErrorCode = "BAD_REQUEST"
	ErrInvalidInput     ErrorCode = "INVALID_INPUT"
	ErrProviderRejected ErrorCode = "PROVIDER_REJECTED"
	ErrUpstream         ErrorCode = "UPSTREAM_ERROR"
	ErrInternalServer   ErrorCode = "INTERNAL_SERVER_ERROR"
)

type APIError struct {
	Code    ErrorCode   `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

func (e APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewAPIError(code ErrorCode, message string, details interface{}) APIError {
	logrus.Error(details)
	return APIError{
		Code:    code,
		Message: message,
		Details: details,
	}
}

// Retryable reports whether the caller may retry the whole operation.
// Provider rejections are terminal; upstream/transport failures are not.
func (e APIError) Retryable() bool {
	return e.Code == ErrUpstream
}

// Is reports whether err is an APIError carrying the given code.
func Is(err error, code ErrorCode) bool {
	apiErr, ok := err.(APIError)
	return ok && apiErr.Code == code
}

func MapErrorToHTTPStatus(err error) int {
	if apiErr, ok := err.(APIError); ok {
		switch apiErr.Code {
		case ErrNotFound:
			return http.StatusNotFound
		case ErrConflict:
			return http.StatusBadRequest
		case ErrInvalidInput, ErrBadRequest:
			return http.StatusBadRequest
		case ErrProviderRejected, ErrUpstream:
			return http.StatusBadGateway
		case ErrInternalServer:
			return http.StatusInternalServerError
		default:
			return http.StatusInternalServerError
		}
	}
	return http.StatusInternalServerError
}
