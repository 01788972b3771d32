package registration

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"github.com/International-Combat-Archery-Alliance/registration-client/events"
	"github.com/International-Combat-Archery-Alliance/registration-client/upload"
)

type Status string

const (
	STATUS_REGISTERED Status = "registered"
	STATUS_CHECKED_IN Status = "checked_in"
	STATUS_CANCELLED  Status = "cancelled"
)

type Registration struct {
	ID               string          `json:"id" validate:"required"`
	EventID          EventRef        `json:"event_id"`
	FullName         string          `json:"full_name"`
	Email            string          `json:"email"`
	Status           Status          `json:"status" validate:"omitempty,oneof=registered checked_in cancelled"`
	RegisteredAt     time.Time       `json:"registered_at"`
	RegistrationData map[string]any  `json:"registration_data"`
	PaymentVerified  *bool           `json:"payment_verified,omitempty"`
	PaymentDetails   *PaymentDetails `json:"payment_details,omitempty"`
	Event            *events.Event   `json:"events,omitempty" validate:"-"`
}

type PaymentDetails struct {
	TransactionID string  `json:"transaction_id"`
	Amount        float64 `json:"amount"`
	ScreenshotURL string  `json:"screenshot_url,omitempty"`
}

// Payment returns the payment proof recorded for the registration. Older
// records keep it inside registration_data.
func (r Registration) Payment() (PaymentDetails, bool) {
	if r.PaymentDetails != nil {
		return *r.PaymentDetails, true
	}

	raw, ok := r.RegistrationData["payment_details"]
	if !ok || raw == nil {
		return PaymentDetails{}, false
	}

	b, err := json.Marshal(raw)
	if err != nil {
		return PaymentDetails{}, false
	}
	var pd PaymentDetails
	if err := json.Unmarshal(b, &pd); err != nil {
		return PaymentDetails{}, false
	}
	return pd, true
}

func (r Registration) IsFor(eventID string) bool {
	if r.EventID.ID == eventID {
		return true
	}
	return r.Event != nil && r.Event.ID == eventID
}

// EventRef is the event a registration belongs to. The backend sends either
// the bare id or the populated event document.
type EventRef struct {
	ID string
}

func (r EventRef) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.ID)
}

func (r *EventRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*r = EventRef{}
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &r.ID)
	}

	var doc struct {
		MongoID string `json:"_id"`
		ID      string `json:"id"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return NewMalformedEventReferenceError(err)
	}
	r.ID = doc.ID
	if r.ID == "" {
		r.ID = doc.MongoID
	}
	return nil
}

// Submission is the body of a registration request: the attendee's answers
// flattened alongside the event and payment bookkeeping.
type Submission struct {
	Fields          map[string]any
	EventID         string
	PaymentVerified bool
	Payment         *PaymentClaim
}

type PaymentClaim struct {
	TransactionID string  `json:"transaction_id"`
	Amount        float64 `json:"amount"`
}

func (s Submission) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(s.Fields)+3)
	for k, v := range s.Fields {
		out[k] = v
	}
	out["event_id"] = s.EventID
	out["payment_verified"] = s.PaymentVerified
	if s.Payment != nil {
		out["payment_details"] = s.Payment
	}
	return json.Marshal(out)
}

// Request is one registration attempt; Screenshot is zero for free events.
type Request struct {
	Submission Submission
	Screenshot upload.Image
}

type Submitter interface {
	RegisterForEvent(ctx context.Context, req Request) (Registration, error)
}

type Updater interface {
	UpdateRegistration(ctx context.Context, id string, data map[string]any) (Registration, error)
}
