package dashboard

import (
	"context"
	"log/slog"

	"github.com/International-Combat-Archery-Alliance/registration-client/events"
	"github.com/International-Combat-Archery-Alliance/registration-client/registration"
)

var noopLogger = slog.New(slog.DiscardHandler)

type mockAPI struct {
	GetEventsFunc             func(ctx context.Context, query string) ([]events.Event, error)
	GetEventFunc              func(ctx context.Context, id string) (events.Event, error)
	GetAdminStatsFunc         func(ctx context.Context) (events.AdminStats, error)
	GetRegistrationsFunc      func(ctx context.Context) ([]registration.Registration, error)
	GetEventRegistrationsFunc func(ctx context.Context, eventID string) ([]registration.Registration, error)
	GetEventByShareIDFunc     func(ctx context.Context, shareID string) (events.Event, error)
	CreateEventFunc           func(ctx context.Context, draft *events.Draft) (events.SavedEvent, error)
	UpdateEventFunc           func(ctx context.Context, id string, draft *events.Draft) (events.SavedEvent, error)
	DeleteEventFunc           func(ctx context.Context, id string) error
	BroadcastFunc             func(ctx context.Context, eventID string, msg events.Broadcast) error
	RegisterForEventFunc      func(ctx context.Context, req registration.Request) (registration.Registration, error)
}

func (m *mockAPI) GetEvents(ctx context.Context, query string) ([]events.Event, error) {
	return m.GetEventsFunc(ctx, query)
}

func (m *mockAPI) GetEvent(ctx context.Context, id string) (events.Event, error) {
	return m.GetEventFunc(ctx, id)
}

func (m *mockAPI) GetAdminStats(ctx context.Context) (events.AdminStats, error) {
	return m.GetAdminStatsFunc(ctx)
}

func (m *mockAPI) GetRegistrations(ctx context.Context) ([]registration.Registration, error) {
	return m.GetRegistrationsFunc(ctx)
}

func (m *mockAPI) GetEventRegistrations(ctx context.Context, eventID string) ([]registration.Registration, error) {
	return m.GetEventRegistrationsFunc(ctx, eventID)
}

func (m *mockAPI) GetEventByShareID(ctx context.Context, shareID string) (events.Event, error) {
	return m.GetEventByShareIDFunc(ctx, shareID)
}

func (m *mockAPI) CreateEvent(ctx context.Context, draft *events.Draft) (events.SavedEvent, error) {
	return m.CreateEventFunc(ctx, draft)
}

func (m *mockAPI) UpdateEvent(ctx context.Context, id string, draft *events.Draft) (events.SavedEvent, error) {
	return m.UpdateEventFunc(ctx, id, draft)
}

func (m *mockAPI) DeleteEvent(ctx context.Context, id string) error {
	return m.DeleteEventFunc(ctx, id)
}

func (m *mockAPI) Broadcast(ctx context.Context, eventID string, msg events.Broadcast) error {
	return m.BroadcastFunc(ctx, eventID, msg)
}

func (m *mockAPI) RegisterForEvent(ctx context.Context, req registration.Request) (registration.Registration, error) {
	return m.RegisterForEventFunc(ctx, req)
}
