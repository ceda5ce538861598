package client

import (
	"errors"
	"fmt"
	"net/http"

	"hibp/internal/models"
)

// Error is returned by every Client operation. Code is one of the
// models.ErrorCode* values; StatusCode is set when the service answered
// with a non-success HTTP status.
type Error struct {
	Code       string
	Message    string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Error constructors

func NewValidationError(message string, err error) *Error {
	return &Error{
		Code:    models.ErrorCodeValidation,
		Message: message,
		Err:     err,
	}
}

func NewNotFoundError(message string) *Error {
	return &Error{
		Code:       models.ErrorCodeNotFound,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

func NewTransportError(message string, err error) *Error {
	return &Error{
		Code:    models.ErrorCodeTransport,
		Message: message,
		Err:     err,
	}
}

// NewStatusError reports a non-success response the endpoint has no other
// mapping for.
func NewStatusError(endpoint string, statusCode int) *Error {
	return &Error{
		Code:       models.ErrorCodeTransport,
		Message:    fmt.Sprintf("%s: API request failed with status %d %s", endpoint, statusCode, http.StatusText(statusCode)),
		StatusCode: statusCode,
	}
}

func NewParseError(message string, err error) *Error {
	return &Error{
		Code:    models.ErrorCodeParse,
		Message: message,
		Err:     err,
	}
}

// Predicates

func IsValidation(err error) bool { return hasCode(err, models.ErrorCodeValidation) }
func IsNotFound(err error) bool   { return hasCode(err, models.ErrorCodeNotFound) }
func IsTransport(err error) bool  { return hasCode(err, models.ErrorCodeTransport) }
func IsParse(err error) bool      { return hasCode(err, models.ErrorCodeParse) }

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.StatusCode
	}
	return 0
}

func hasCode(err error, code string) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == code
}
