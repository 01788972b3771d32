package registration

import "fmt"

type ErrorReason string

const (
	REASON_EVENT_FULL                ErrorReason = "EVENT_FULL"
	REASON_UNKNOWN_FIELD             ErrorReason = "UNKNOWN_FIELD"
	REASON_INVALID_FIELDS            ErrorReason = "INVALID_FIELDS"
	REASON_INVALID_SCREENSHOT        ErrorReason = "INVALID_SCREENSHOT"
	REASON_PAYMENT_PROOF_MISSING     ErrorReason = "PAYMENT_PROOF_MISSING"
	REASON_WRONG_STEP                ErrorReason = "WRONG_STEP"
	REASON_SUBMISSION_IN_FLIGHT      ErrorReason = "SUBMISSION_IN_FLIGHT"
	REASON_SUBMISSION_FAILED         ErrorReason = "SUBMISSION_FAILED"
	REASON_ALREADY_COMPLETE          ErrorReason = "ALREADY_COMPLETE"
	REASON_FAILED_TO_ENCODE          ErrorReason = "FAILED_TO_ENCODE"
	REASON_MALFORMED_EVENT_REFERENCE ErrorReason = "MALFORMED_EVENT_REFERENCE"
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

func newRegistrationError(reason ErrorReason, message string, cause error) *Error {
	return &Error{
		Reason:  reason,
		Message: message,
		Cause:   cause,
	}
}

func NewEventFullError(title string) *Error {
	return newRegistrationError(REASON_EVENT_FULL, fmt.Sprintf("%q has no spots left", title), nil)
}

func NewUnknownFieldError(key string) *Error {
	return newRegistrationError(REASON_UNKNOWN_FIELD, fmt.Sprintf("Event has no registration field %q", key), nil)
}

func NewInvalidFieldsError(message string) *Error {
	return newRegistrationError(REASON_INVALID_FIELDS, message, nil)
}

func NewInvalidScreenshotError(cause error) *Error {
	return newRegistrationError(REASON_INVALID_SCREENSHOT, "Please upload an image file", cause)
}

func NewPaymentProofMissingError() *Error {
	return newRegistrationError(REASON_PAYMENT_PROOF_MISSING, "Transaction ID and payment screenshot are required", nil)
}

func NewWrongStepError(step Step, action string) *Error {
	return newRegistrationError(REASON_WRONG_STEP, fmt.Sprintf("Cannot %s from step %s", action, step), nil)
}

func NewSubmissionInFlightError() *Error {
	return newRegistrationError(REASON_SUBMISSION_IN_FLIGHT, "A registration request is already in flight", nil)
}

func NewSubmissionFailedError(message string, cause error) *Error {
	return newRegistrationError(REASON_SUBMISSION_FAILED, message, cause)
}

func NewAlreadyCompleteError() *Error {
	return newRegistrationError(REASON_ALREADY_COMPLETE, "Registration was already submitted", nil)
}

func NewFailedToEncodeError(message string, cause error) *Error {
	return newRegistrationError(REASON_FAILED_TO_ENCODE, message, cause)
}

func NewMalformedEventReferenceError(cause error) *Error {
	return newRegistrationError(REASON_MALFORMED_EVENT_REFERENCE, "event_id is neither an id nor an event object", cause)
}
