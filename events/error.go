package events

import "fmt"

type ErrorReason string

const (
	REASON_INVALID_DRAFT       ErrorReason = "INVALID_DRAFT"
	REASON_INVALID_FIELD       ErrorReason = "INVALID_FIELD"
	REASON_DUPLICATE_FIELD_KEY ErrorReason = "DUPLICATE_FIELD_KEY"
	REASON_INVALID_QR_CODE     ErrorReason = "INVALID_QR_CODE"
	REASON_INVALID_BROADCAST   ErrorReason = "INVALID_BROADCAST"
)

type Error struct {
	Reason  ErrorReason
	Message string
	Cause   error
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

func newEventError(reason ErrorReason, message string, cause error) *Error {
	return &Error{
		Reason:  reason,
		Message: message,
		Cause:   cause,
	}
}

func NewInvalidDraftError(message string, cause error) *Error {
	return newEventError(REASON_INVALID_DRAFT, message, cause)
}

func NewInvalidFieldError(message string) *Error {
	return newEventError(REASON_INVALID_FIELD, message, nil)
}

func NewDuplicateFieldKeyError(key string) *Error {
	return newEventError(REASON_DUPLICATE_FIELD_KEY, fmt.Sprintf("Field key %q must be unique", key), nil)
}

func NewInvalidQRCodeError(message string, cause error) *Error {
	return newEventError(REASON_INVALID_QR_CODE, message, cause)
}

func NewInvalidBroadcastError(message string) *Error {
	return newEventError(REASON_INVALID_BROADCAST, message, nil)
}
