package events

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/Rhymond/go-money"
)

// Fees are collected by manual bank transfer in rupees.
const FeeCurrency = money.INR

const dateLayout = "2006-01-02"

type Event struct {
	ID                 string              `json:"id" validate:"required"`
	Title              string              `json:"title" validate:"required"`
	Description        string              `json:"description"`
	Date               string              `json:"date"`
	Time               string              `json:"time"`
	Location           string              `json:"location"`
	MaxAttendees       int                 `json:"max_attendees" validate:"gte=0"`
	CurrentAttendees   int                 `json:"current_attendees" validate:"gte=0"`
	RegistrationFee    float64             `json:"registration_fee" validate:"gte=0"`
	RegistrationFields []RegistrationField `json:"registration_fields" validate:"unique=Key,dive"`
	BankDetails        *BankDetails        `json:"bank_details,omitempty"`
	ImageURL           string              `json:"image_url,omitempty"`
	ShareID            string              `json:"share_id,omitempty"`
	MeetLink           string              `json:"meet_link,omitempty"`
	RequiresCheckin    *bool               `json:"requires_checkin,omitempty"`
}

type BankDetails struct {
	AccountHolder string `json:"account_holder"`
	BankName      string `json:"bank_name"`
	AccountNumber string `json:"account_number"`
	IFSCCode      string `json:"ifsc_code"`
	UPIID         string `json:"upi_id"`
	QRCodeURL     string `json:"qr_code_url,omitempty"`
	QRCodeFileID  string `json:"qr_code_file_id,omitempty"`
}

type AdminStats struct {
	TotalEvents        int `json:"totalEvents" validate:"gte=0"`
	TotalRegistrations int `json:"totalRegistrations" validate:"gte=0"`
	UpcomingEvents     int `json:"upcomingEvents" validate:"gte=0"`
	PastEvents         int `json:"pastEvents" validate:"gte=0"`
}

// SavedEvent is what the backend returns after a create, which may carry
// a ready-made public link.
type SavedEvent struct {
	Event
	ShareableURL string `json:"shareableUrl,omitempty"`
}

func (e Event) HasFee() bool {
	return e.RegistrationFee > 0
}

func (e Event) Fee() *money.Money {
	return money.NewFromFloat(e.RegistrationFee, FeeCurrency)
}

func (e Event) IsFull() bool {
	return e.CurrentAttendees >= e.MaxAttendees
}

func (e Event) SpotsLeft() int {
	return max(e.MaxAttendees-e.CurrentAttendees, 0)
}

// HasPaymentDetails reports whether the organizer enabled bank transfer
// collection for this event.
func (e Event) HasPaymentDetails() bool {
	return e.BankDetails != nil && e.BankDetails.AccountNumber != ""
}

// QRCodeURL resolves the payment QR code image. An uploaded file takes
// precedence over a literal URL.
func (e Event) QRCodeURL(apiOrigin string) string {
	if e.BankDetails == nil {
		return ""
	}
	if e.BankDetails.QRCodeFileID != "" {
		return strings.TrimRight(apiOrigin, "/") + "/api/files/" + url.PathEscape(e.BankDetails.QRCodeFileID)
	}
	return e.BankDetails.QRCodeURL
}

func (e Event) ShareURL(origin string) string {
	if e.ShareID == "" {
		return ""
	}
	return fmt.Sprintf("%s/share/%s", strings.TrimRight(origin, "/"), url.PathEscape(e.ShareID))
}

// StartsOn parses the event date. Backends send either a bare date or a full
// timestamp.
func (e Event) StartsOn() (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339, e.Date); err == nil {
		return t, true
	}
	if t, err := time.Parse(dateLayout, e.Date); err == nil {
		return t, true
	}
	return time.Time{}, false
}

func (e Event) IsUpcoming(now time.Time) bool {
	t, ok := e.StartsOn()
	return ok && t.After(now)
}
