package client

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorReason string

const (
	REASON_BACKEND_ERROR    ErrorReason = "BACKEND_ERROR"
	REASON_TRANSPORT_FAILED ErrorReason = "TRANSPORT_FAILED"
	REASON_INVALID_RESPONSE ErrorReason = "INVALID_RESPONSE"
	REASON_FAILED_TO_ENCODE ErrorReason = "FAILED_TO_ENCODE"
)

// genericFailureMessage is used when the backend gives no usable reason.
const genericFailureMessage = "Request failed"

type Error struct {
	Reason     ErrorReason
	StatusCode int
	Message    string
	Cause      error
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("%s: %s", e.Reason, e.Message)
	}
	return fmt.Sprintf("%s: %s. Cause: %s", e.Reason, e.Message, e.Cause)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// UserMessage is the text shown to the user for this failure.
func (e *Error) UserMessage() string {
	return e.Message
}

func newClientError(reason ErrorReason, statusCode int, message string, cause error) *Error {
	return &Error{
		Reason:     reason,
		StatusCode: statusCode,
		Message:    message,
		Cause:      cause,
	}
}

func NewBackendError(statusCode int, message string) *Error {
	return newClientError(REASON_BACKEND_ERROR, statusCode, message, nil)
}

func NewTransportFailedError(cause error) *Error {
	return newClientError(REASON_TRANSPORT_FAILED, 0, "Could not reach the server", cause)
}

func NewInvalidResponseError(statusCode int, message string, cause error) *Error {
	return newClientError(REASON_INVALID_RESPONSE, statusCode, message, cause)
}

func NewFailedToEncodeError(message string, cause error) *Error {
	return newClientError(REASON_FAILED_TO_ENCODE, 0, message, cause)
}

// ErrorMessage returns the message of a client error, or fallback for any
// other error.
func ErrorMessage(err error, fallback string) string {
	var clientErr *Error
	if errors.As(err, &clientErr) && clientErr.Message != "" {
		return clientErr.Message
	}
	return fallback
}

// IsUnauthorized reports whether the backend rejected the credential.
func IsUnauthorized(err error) bool {
	var clientErr *Error
	return errors.As(err, &clientErr) &&
		clientErr.Reason == REASON_BACKEND_ERROR &&
		clientErr.StatusCode == http.StatusUnauthorized
}
