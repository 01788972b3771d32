package dashboard

import (
	"context"

	"github.com/International-Combat-Archery-Alliance/registration-client/events"
	"github.com/International-Combat-Archery-Alliance/registration-client/guard"
	"github.com/International-Combat-Archery-Alliance/registration-client/session"
)

type SharedEventSource interface {
	GetEventByShareID(ctx context.Context, shareID string) (events.Event, error)
}

type SharedEventResult struct {
	Event events.Event
	// Next is where to go from the share page.
	Next string
}

// SharedEvent opens a share link using the session store carried by ctx.
// Signed-in visitors are sent straight to browse with the event selected;
// anonymous visitors have the link remembered and are sent to sign in.
func SharedEvent(ctx context.Context, api SharedEventSource, shareID string) (SharedEventResult, error) {
	if shareID == "" {
		return SharedEventResult{}, NewSharedEventError("Invalid event link", nil)
	}
	store, ok := session.StoreFromCtx(ctx)
	if !ok {
		return SharedEventResult{}, NewSharedEventError("No session to open the event link with", nil)
	}

	e, err := api.GetEventByShareID(ctx, shareID)
	if err != nil {
		return SharedEventResult{}, NewSharedEventError("Event not found or no longer available", err)
	}

	st := store.State()
	if st.User != nil {
		return SharedEventResult{
			Event: e,
			Next:  guard.AfterLogin(*st.User, session.PendingRedirect{EventID: e.ID}),
		}, nil
	}

	store.SetPendingRedirect(session.PendingRedirect{ShareID: shareID, EventID: e.ID})
	return SharedEventResult{Event: e, Next: guard.PathAuth}, nil
}
