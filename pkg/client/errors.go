package client

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
)

// ErrorKind distinguishes transport failures from HTTP error responses
type ErrorKind string

const (
	// KindTransport means the request never produced an HTTP response
	// (DNS, connection refused, timeout, cancelled context).
	KindTransport ErrorKind = "transport"
	// KindHTTP means the backend answered with a non-2xx status
	KindHTTP ErrorKind = "http"
)

// APIError is the single error type returned for failed backend calls
type APIError struct {
	Kind       ErrorKind
	StatusCode int
	Message    string
	Method     string
	Path       string
	Err        error
}

func (e *APIError) Error() string {
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Err
}

func httpError(method, path string, status int, body []byte) *APIError {
	return &APIError{
		Kind:       KindHTTP,
		StatusCode: status,
		Message:    detailMessage(status, body),
		Method:     method,
		Path:       path,
	}
}

func transportError(method, path string, err error) *APIError {
	return &APIError{
		Kind:    KindTransport,
		Message: err.Error(),
		Method:  method,
		Path:    path,
		Err:     err,
	}
}

// detailMessage returns the server-supplied detail string, or a fallback
// naming the status code when the body has no usable detail.
func detailMessage(status int, body []byte) string {
	if gjson.ValidBytes(body) {
		detail := gjson.GetBytes(body, "detail")
		if detail.Type == gjson.String && strings.TrimSpace(detail.Str) != "" {
			return detail.Str
		}
	}
	return fmt.Sprintf("HTTP error! Status: %d", status)
}

// IsTransport reports whether err is a transport-level APIError
func IsTransport(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Kind == KindTransport
}

// StatusCode returns the HTTP status of an HTTP APIError, or 0
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Kind == KindHTTP {
		return apiErr.StatusCode
	}
	return 0
}

// UserMessage turns an error into a message fit for a toast
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	switch StatusCode(err) {
	case http.StatusNotFound:
		return "The requested resource was not found."
	case http.StatusUnauthorized:
		return "Authentication failed. Please check your credentials."
	case http.StatusForbidden:
		return "You do not have permission to perform this action."
	case http.StatusBadRequest:
		return "Invalid request. Please check your input data."
	case http.StatusInternalServerError:
		return "Server error. Please try again later."
	}

	if IsTransport(err) {
		return "The scheduling service is unreachable. Please try again later."
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return "An unexpected error occurred. Please try again."
}
