package dashboard

import "fmt"

type ErrorReason string

const (
	REASON_SHARED_EVENT_UNAVAILABLE ErrorReason = "SHARED_EVENT_UNAVAILABLE"
	REASON_NO_EVENT_SELECTED        ErrorReason = "NO_EVENT_SELECTED"
	REASON_FAILED_TO_EXPORT         ErrorReason = "FAILED_TO_EXPORT"
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

func (e *Error) UserMessage() string {
	return e.Message
}

func newDashboardError(reason ErrorReason, message string, cause error) *Error {
	return &Error{
		Reason:  reason,
		Message: message,
		Cause:   cause,
	}
}

func NewSharedEventError(message string, cause error) *Error {
	return newDashboardError(REASON_SHARED_EVENT_UNAVAILABLE, message, cause)
}

func NewNoEventSelectedError() *Error {
	return newDashboardError(REASON_NO_EVENT_SELECTED, "Please select an event", nil)
}

func NewFailedToExportError(message string, cause error) *Error {
	return newDashboardError(REASON_FAILED_TO_EXPORT, message, cause)
}
