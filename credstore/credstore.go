package credstore

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Store persists the session credential across runs.
type Store interface {
	// Load returns the saved credential or an error with
	// REASON_NO_CREDENTIAL when nothing is saved.
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, credential string) error
	// Clear removes the saved credential. Clearing an empty store is not an
	// error.
	Clear(ctx context.Context) error
}

// Profile is a named saved credential in a store that holds several.
type Profile struct {
	Name    string
	SavedAt time.Time
}

type ListProfilesResponse struct {
	Data        []Profile
	Cursor      *string
	HasNextPage bool
}

type ErrorReason string

const (
	REASON_NO_CREDENTIAL    ErrorReason = "NO_CREDENTIAL"
	REASON_FAILED_TO_LOAD   ErrorReason = "FAILED_TO_LOAD"
	REASON_FAILED_TO_SAVE   ErrorReason = "FAILED_TO_SAVE"
	REASON_FAILED_TO_CLEAR  ErrorReason = "FAILED_TO_CLEAR"
	REASON_VERSION_CONFLICT ErrorReason = "VERSION_CONFLICT"
	REASON_TIMEOUT          ErrorReason = "TIMEOUT"
	REASON_INVALID_CURSOR   ErrorReason = "INVALID_CURSOR"
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

func newStoreError(reason ErrorReason, message string, cause error) *Error {
	return &Error{
		Reason:  reason,
		Message: message,
		Cause:   cause,
	}
}

func NewNoCredentialError(message string) *Error {
	return newStoreError(REASON_NO_CREDENTIAL, message, nil)
}

func NewFailedToLoadError(message string, cause error) *Error {
	return newStoreError(REASON_FAILED_TO_LOAD, message, cause)
}

func NewFailedToSaveError(message string, cause error) *Error {
	return newStoreError(REASON_FAILED_TO_SAVE, message, cause)
}

func NewFailedToClearError(message string, cause error) *Error {
	return newStoreError(REASON_FAILED_TO_CLEAR, message, cause)
}

func NewVersionConflictError(message string, cause error) *Error {
	return newStoreError(REASON_VERSION_CONFLICT, message, cause)
}

func NewTimeoutError(message string) *Error {
	return newStoreError(REASON_TIMEOUT, message, nil)
}

func NewInvalidCursorError(message string, cause error) *Error {
	return newStoreError(REASON_INVALID_CURSOR, message, cause)
}

func IsNoCredential(err error) bool {
	var storeErr *Error
	return errors.As(err, &storeErr) && storeErr.Reason == REASON_NO_CREDENTIAL
}
