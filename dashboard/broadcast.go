package dashboard

import (
	"context"
	"errors"

	"github.com/International-Combat-Archery-Alliance/registration-client/events"
	"github.com/International-Combat-Archery-Alliance/registration-client/notify"
)

type Broadcaster interface {
	Broadcast(ctx context.Context, eventID string, msg events.Broadcast) error
}

// SendBroadcast emails everyone registered for eventID. Blank subjects or
// messages are refused before anything is sent.
func SendBroadcast(ctx context.Context, api Broadcaster, notifier notify.Notifier, eventID string, msg events.Broadcast) error {
	if eventID == "" {
		err := NewNoEventSelectedError()
		notifier.Error(err.Message)
		return err
	}
	if err := msg.Validate(); err != nil {
		var eventErr *events.Error
		if errors.As(err, &eventErr) {
			notifier.Error(eventErr.Message)
		}
		return err
	}

	if err := api.Broadcast(ctx, eventID, msg); err != nil {
		notifier.Error("Failed to send broadcast email")
		return err
	}
	notifier.Success("Broadcast email sent successfully")
	return nil
}
