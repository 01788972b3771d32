package registration

import (
	"context"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00\x1f\x15\xc4\x89")

var _ Submitter = &mockSubmitter{}

type mockSubmitter struct {
	RegisterForEventFunc func(ctx context.Context, req Request) (Registration, error)
}

func (m *mockSubmitter) RegisterForEvent(ctx context.Context, req Request) (Registration, error) {
	return m.RegisterForEventFunc(ctx, req)
}

var _ Updater = &mockUpdater{}

type mockUpdater struct {
	UpdateRegistrationFunc func(ctx context.Context, id string, data map[string]any) (Registration, error)
}

func (m *mockUpdater) UpdateRegistration(ctx context.Context, id string, data map[string]any) (Registration, error) {
	return m.UpdateRegistrationFunc(ctx, id, data)
}

// userFacingError stands in for a backend failure that carries a message.
type userFacingError struct {
	msg string
}

func (e *userFacingError) Error() string {
	return "backend: " + e.msg
}

func (e *userFacingError) UserMessage() string {
	return e.msg
}
