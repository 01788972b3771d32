package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/International-Combat-Archery-Alliance/registration-client/registration"
)

var (
	_ registration.Submitter = (*Client)(nil)
	_ registration.Updater   = (*Client)(nil)
)

// GetRegistrations lists the signed-in user's own registrations.
func (c *Client) GetRegistrations(ctx context.Context) ([]registration.Registration, error) {
	return do[[]registration.Registration](ctx, c, "/registrations", RequestOptions{})
}

func (c *Client) GetEventRegistrations(ctx context.Context, eventID string) ([]registration.Registration, error) {
	return do[[]registration.Registration](ctx, c, "/events/"+url.PathEscape(eventID)+"/registrations", RequestOptions{})
}

// RegisterForEvent sends JSON for free events and a form with the payment
// screenshot attached otherwise.
func (c *Client) RegisterForEvent(ctx context.Context, req registration.Request) (registration.Registration, error) {
	opts := RequestOptions{Method: http.MethodPost, Body: req.Submission}

	if !req.Screenshot.IsZero() {
		m := NewMultipart()
		if err := m.AddJSON("data", req.Submission); err != nil {
			return registration.Registration{}, err
		}
		m.AddFile("payment_screenshot", req.Screenshot)
		opts.Body = m
	}

	return do[registration.Registration](ctx, c, "/registrations", opts)
}

type updateRegistrationRequest struct {
	RegistrationData map[string]any `json:"registration_data"`
}

func (c *Client) UpdateRegistration(ctx context.Context, id string, data map[string]any) (registration.Registration, error) {
	return do[registration.Registration](ctx, c, "/registrations/"+url.PathEscape(id), RequestOptions{
		Method: http.MethodPut,
		Body:   updateRegistrationRequest{RegistrationData: data},
	})
}
