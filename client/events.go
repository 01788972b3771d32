package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/International-Combat-Archery-Alliance/registration-client/events"
)

// GetEvents lists events, filtered server-side by query when it is not empty.
func (c *Client) GetEvents(ctx context.Context, query string) ([]events.Event, error) {
	endpoint := "/events"
	if query != "" {
		endpoint += "?q=" + url.QueryEscape(query)
	}
	return do[[]events.Event](ctx, c, endpoint, RequestOptions{})
}

func (c *Client) GetEvent(ctx context.Context, id string) (events.Event, error) {
	return do[events.Event](ctx, c, "/events/"+url.PathEscape(id), RequestOptions{})
}

// GetEventByShareID fetches the public view of an event. It works without a
// credential.
func (c *Client) GetEventByShareID(ctx context.Context, shareID string) (events.Event, error) {
	return do[events.Event](ctx, c, "/public/events/"+url.PathEscape(shareID), RequestOptions{})
}

func (c *Client) CreateEvent(ctx context.Context, draft *events.Draft) (events.SavedEvent, error) {
	body, err := draftBody(draft)
	if err != nil {
		return events.SavedEvent{}, err
	}
	return do[events.SavedEvent](ctx, c, "/events", RequestOptions{
		Method: http.MethodPost,
		Body:   body,
	})
}

func (c *Client) UpdateEvent(ctx context.Context, id string, draft *events.Draft) (events.SavedEvent, error) {
	body, err := draftBody(draft)
	if err != nil {
		return events.SavedEvent{}, err
	}
	return do[events.SavedEvent](ctx, c, "/events/"+url.PathEscape(id), RequestOptions{
		Method: http.MethodPut,
		Body:   body,
	})
}

func (c *Client) DeleteEvent(ctx context.Context, id string) error {
	return c.Request(ctx, "/events/"+url.PathEscape(id), RequestOptions{Method: http.MethodDelete}, nil)
}

// Broadcast emails every registrant of the event.
func (c *Client) Broadcast(ctx context.Context, eventID string, msg events.Broadcast) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	return c.Request(ctx, "/events/"+url.PathEscape(eventID)+"/broadcast", RequestOptions{
		Method: http.MethodPost,
		Body:   msg,
	}, nil)
}

// Event create and update always go out as a form so the QR code image can
// ride along with the JSON document.
func draftBody(draft *events.Draft) (*Multipart, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	m := NewMultipart()
	if err := m.AddJSON("data", draft); err != nil {
		return nil, err
	}
	if qr, ok := draft.QRCode(); ok {
		m.AddFile("qr_code", qr)
	}
	return m, nil
}
