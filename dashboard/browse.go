package dashboard

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/International-Combat-Archery-Alliance/registration-client/events"
	"github.com/International-Combat-Archery-Alliance/registration-client/notify"
	"github.com/International-Combat-Archery-Alliance/registration-client/registration"
	"github.com/International-Combat-Archery-Alliance/registration-client/search"
)

type BrowseSource interface {
	UserSource
	registration.Submitter
}

// Browse is the attendee's event catalogue with live search.
type Browse struct {
	api      BrowseSource
	notifier notify.Notifier
	logger   *slog.Logger
	search   *search.Debouncer

	mu            sync.Mutex
	query         string
	events        []events.Event
	registrations []registration.Registration
	// onResults is called after each search that was not superseded.
	onResults func([]events.Event)
}

func NewBrowse(ctx context.Context, api BrowseSource, notifier notify.Notifier, logger *slog.Logger, onResults func([]events.Event)) *Browse {
	if onResults == nil {
		onResults = func([]events.Event) {}
	}
	b := &Browse{
		api:       api,
		notifier:  notifier,
		logger:    logger,
		onResults: onResults,
	}
	b.search = search.NewDebouncer(ctx, search.DefaultDelay, b.runSearch)
	return b
}

// Refresh reloads events for the current query and the user's
// registrations.
func (b *Browse) Refresh(ctx context.Context) error {
	b.mu.Lock()
	query := b.query
	b.mu.Unlock()

	list, err := b.api.GetEvents(ctx, query)
	if err != nil {
		b.notifier.Error("Failed to load events")
		return err
	}

	regs, regErr := b.api.GetRegistrations(ctx)
	if regErr != nil {
		b.logger.WarnContext(ctx, "failed to fetch registrations", slog.String("error", regErr.Error()))
	}

	b.mu.Lock()
	b.events = list
	if regErr == nil {
		b.registrations = regs
	}
	b.mu.Unlock()
	return nil
}

// Search records the query and fetches matching events once typing pauses.
func (b *Browse) Search(query string) {
	b.mu.Lock()
	b.query = query
	b.mu.Unlock()
	b.search.Trigger(query)
}

func (b *Browse) runSearch(ctx context.Context, query string) {
	list, err := b.api.GetEvents(ctx, query)
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		b.notifier.Error("Failed to load events")
		return
	}

	b.mu.Lock()
	b.events = list
	b.mu.Unlock()
	b.onResults(list)
}

func (b *Browse) Close() {
	b.search.Stop()
}

func (b *Browse) Events() []events.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.events)
}

func (b *Browse) Find(eventID string) (events.Event, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	i := slices.IndexFunc(b.events, func(e events.Event) bool { return e.ID == eventID })
	if i < 0 {
		return events.Event{}, false
	}
	return b.events[i], true
}

func (b *Browse) IsRegistered(eventID string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.ContainsFunc(b.registrations, func(r registration.Registration) bool { return r.IsFor(eventID) })
}

func (b *Browse) CanRegister(e events.Event) bool {
	return !e.IsFull() && !b.IsRegistered(e.ID)
}

// OpenWizard starts a registration for e. Once it completes, events and
// registrations are fetched again so counts and badges are current.
func (b *Browse) OpenWizard(ctx context.Context, e events.Event) (*registration.Wizard, error) {
	return registration.NewWizard(e, b.api, b.notifier, func(registration.Registration) {
		if err := b.Refresh(ctx); err != nil {
			b.logger.WarnContext(ctx, "failed to refresh after registering", slog.String("error", err.Error()))
		}
	})
}
