package dashboard

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/International-Combat-Archery-Alliance/registration-client/events"
	"github.com/International-Combat-Archery-Alliance/registration-client/notify"
	"github.com/International-Combat-Archery-Alliance/registration-client/registration"
	"github.com/International-Combat-Archery-Alliance/registration-client/slices"
)

type EventLister interface {
	GetEvents(ctx context.Context, query string) ([]events.Event, error)
}

type AdminSource interface {
	EventLister
	GetAdminStats(ctx context.Context) (events.AdminStats, error)
}

type RegistrationLister interface {
	GetRegistrations(ctx context.Context) ([]registration.Registration, error)
}

type UserSource interface {
	EventLister
	RegistrationLister
}

type AdminOverview struct {
	Events []events.Event
	Stats  events.AdminStats
	// StatsLoaded is false when the stats call failed but events did not.
	StatsLoaded bool
}

// LoadAdmin fetches the event list and stats side by side. Whatever loads is
// kept; each failure is notified and the errors are joined.
func LoadAdmin(ctx context.Context, api AdminSource, notifier notify.Notifier, query string) (AdminOverview, error) {
	var out AdminOverview
	var eventsErr, statsErr error

	// A Group without a context never cancels the other fetch, so whatever
	// loaded is kept when one side fails.
	var g errgroup.Group
	g.Go(func() error {
		out.Events, eventsErr = api.GetEvents(ctx, query)
		return eventsErr
	})
	g.Go(func() error {
		out.Stats, statsErr = api.GetAdminStats(ctx)
		return statsErr
	})
	if err := g.Wait(); err == nil {
		out.StatsLoaded = true
		return out, nil
	}

	if eventsErr != nil {
		notifier.Error("Failed to fetch events")
	}
	if statsErr != nil {
		notifier.Error("Failed to fetch stats")
	}
	out.StatsLoaded = statsErr == nil

	return out, errors.Join(eventsErr, statsErr)
}

type UserOverview struct {
	Events        []events.Event
	Registrations []registration.Registration
}

// UpcomingEvents counts events that start after now.
func (u UserOverview) UpcomingEvents(now time.Time) int {
	return len(slices.Filter(u.Events, func(e events.Event) bool { return e.IsUpcoming(now) }))
}

// UpcomingRegistrations counts registrations whose populated event starts
// after now.
func (u UserOverview) UpcomingRegistrations(now time.Time) int {
	return len(slices.Filter(u.Registrations, func(r registration.Registration) bool {
		return r.Event != nil && r.Event.IsUpcoming(now)
	}))
}

// LoadUser fetches the attendee's overview. A failed registrations call is
// not notified; a failed events call is.
func LoadUser(ctx context.Context, api UserSource, notifier notify.Notifier) (UserOverview, error) {
	var out UserOverview
	var eventsErr, regsErr error

	var g errgroup.Group
	g.Go(func() error {
		out.Events, eventsErr = api.GetEvents(ctx, "")
		return eventsErr
	})
	g.Go(func() error {
		out.Registrations, regsErr = api.GetRegistrations(ctx)
		return regsErr
	})
	if err := g.Wait(); err == nil {
		return out, nil
	}

	if eventsErr != nil {
		notifier.Error("Failed to load events")
	}

	return out, errors.Join(eventsErr, regsErr)
}

// LoadRegistrations is the "my registrations" view.
func LoadRegistrations(ctx context.Context, api RegistrationLister, notifier notify.Notifier) ([]registration.Registration, error) {
	regs, err := api.GetRegistrations(ctx)
	if err != nil {
		notifier.Error("Failed to load registrations")
		return nil, err
	}
	return regs, nil
}
