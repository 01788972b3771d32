package dashboard

import (
	"context"
	"errors"

	"github.com/International-Combat-Archery-Alliance/registration-client/events"
	"github.com/International-Combat-Archery-Alliance/registration-client/notify"
)

type EventManager interface {
	EventLister
	GetEvent(ctx context.Context, id string) (events.Event, error)
	CreateEvent(ctx context.Context, draft *events.Draft) (events.SavedEvent, error)
	UpdateEvent(ctx context.Context, id string, draft *events.Draft) (events.SavedEvent, error)
	DeleteEvent(ctx context.Context, id string) error
}

// ManageEvents is the organizer's create, edit and delete surface.
type ManageEvents struct {
	api         EventManager
	notifier    notify.Notifier
	shareOrigin string
}

func NewManageEvents(api EventManager, notifier notify.Notifier, shareOrigin string) *ManageEvents {
	return &ManageEvents{
		api:         api,
		notifier:    notifier,
		shareOrigin: shareOrigin,
	}
}

func (m *ManageEvents) List(ctx context.Context, query string) ([]events.Event, error) {
	list, err := m.api.GetEvents(ctx, query)
	if err != nil {
		m.notifier.Error("Failed to fetch events")
		return nil, err
	}
	return list, nil
}

// Edit loads an existing event into a draft.
func (m *ManageEvents) Edit(ctx context.Context, id string) (*events.Draft, error) {
	e, err := m.api.GetEvent(ctx, id)
	if err != nil {
		m.notifier.Error("Failed to load event")
		return nil, err
	}
	return events.DraftFromEvent(e), nil
}

type Saved struct {
	Event    events.Event
	ShareURL string
}

// Save creates the event when id is empty and updates it otherwise.
func (m *ManageEvents) Save(ctx context.Context, id string, draft *events.Draft) (Saved, error) {
	var saved events.SavedEvent
	var err error
	if id == "" {
		saved, err = m.api.CreateEvent(ctx, draft)
	} else {
		saved, err = m.api.UpdateEvent(ctx, id, draft)
	}
	if err != nil {
		var draftErr *events.Error
		if errors.As(err, &draftErr) {
			m.notifier.Error(draftErr.Message)
		} else {
			m.notifier.Error("Failed to save event")
		}
		return Saved{}, err
	}

	if id == "" {
		m.notifier.Success("Event created successfully")
	} else {
		m.notifier.Success("Event updated successfully")
	}

	shareURL := saved.ShareableURL
	if shareURL == "" {
		shareURL = m.ShareURL(saved.Event)
	}
	return Saved{Event: saved.Event, ShareURL: shareURL}, nil
}

func (m *ManageEvents) Delete(ctx context.Context, id string) error {
	if err := m.api.DeleteEvent(ctx, id); err != nil {
		m.notifier.Error("Failed to delete event")
		return err
	}
	m.notifier.Success("Event deleted successfully")
	return nil
}

func (m *ManageEvents) ShareURL(e events.Event) string {
	return e.ShareURL(m.shareOrigin)
}
