package events

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/International-Combat-Archery-Alliance/registration-client/ptr"
	"github.com/International-Combat-Archery-Alliance/registration-client/upload"
	"github.com/International-Combat-Archery-Alliance/registration-client/validation"
)

const defaultMaxAttendees = 50

// Draft is the organizer's create/edit form for an event.
type Draft struct {
	Title              string              `json:"title" validate:"required"`
	Description        string              `json:"description" validate:"required"`
	Date               string              `json:"date" validate:"required,datetime=2006-01-02"`
	Time               string              `json:"time" validate:"required"`
	Location           string              `json:"location" validate:"required"`
	MaxAttendees       int                 `json:"max_attendees" validate:"gt=0"`
	RegistrationFee    *float64            `json:"registration_fee" validate:"omitnil,gte=0"`
	BankDetails        *BankDetails        `json:"bank_details"`
	RequiresCheckin    bool                `json:"requires_checkin"`
	RegistrationFields []RegistrationField `json:"registration_fields" validate:"unique=Key,dive"`
	MeetLink           string              `json:"meet_link" validate:"omitempty,url"`

	collectPayment bool
	qrCode         upload.Image
}

func NewDraft() *Draft {
	return &Draft{
		MaxAttendees:       defaultMaxAttendees,
		RequiresCheckin:    true,
		RegistrationFields: []RegistrationField{},
	}
}

// DraftFromEvent pre-fills the form for editing an existing event.
func DraftFromEvent(e Event) *Draft {
	d := NewDraft()
	d.Title = e.Title
	d.Description = e.Description
	d.Date = e.Date
	if start, ok := e.StartsOn(); ok {
		d.Date = start.Format(dateLayout)
	}
	d.Time = e.Time
	d.Location = e.Location
	if e.MaxAttendees > 0 {
		d.MaxAttendees = e.MaxAttendees
	}
	if e.RegistrationFee > 0 {
		d.RegistrationFee = ptr.Float64(e.RegistrationFee)
	}
	d.RequiresCheckin = e.RequiresCheckin == nil || *e.RequiresCheckin
	d.MeetLink = e.MeetLink
	d.RegistrationFields = append(d.RegistrationFields, e.RegistrationFields...)
	if e.HasPaymentDetails() {
		bd := *e.BankDetails
		d.EnablePayment(bd)
	}
	return d
}

func (d *Draft) AddField(field RegistrationField) error {
	if field.Key == "" || field.Label == "" {
		return NewInvalidFieldError("Field key and label are required")
	}
	if slices.ContainsFunc(d.RegistrationFields, func(f RegistrationField) bool { return f.Key == field.Key }) {
		return NewDuplicateFieldKeyError(field.Key)
	}
	if field.Type == "" {
		field.Type = FIELD_TEXT
	}
	if err := fieldValidator.Struct(field); err != nil {
		return NewInvalidFieldError(strings.Join(validation.Fields(err), "; "))
	}

	d.RegistrationFields = append(d.RegistrationFields, field)
	return nil
}

func (d *Draft) RemoveField(key string) {
	d.RegistrationFields = slices.DeleteFunc(d.RegistrationFields, func(f RegistrationField) bool {
		return f.Key == key
	})
}

// EnablePayment turns on bank transfer collection with the given details.
func (d *Draft) EnablePayment(details BankDetails) {
	d.collectPayment = true
	d.BankDetails = &details
}

func (d *Draft) DisablePayment() {
	d.collectPayment = false
	d.BankDetails = nil
	d.qrCode = upload.Image{}
}

func (d *Draft) SetQRCode(filename string, data []byte) error {
	img, err := upload.NewImage(filename, data)
	if err != nil {
		return NewInvalidQRCodeError("Please upload an image file", err)
	}
	d.qrCode = img
	return nil
}

// QRCode returns the image to upload alongside the event, if any.
func (d *Draft) QRCode() (upload.Image, bool) {
	return d.qrCode, d.collectPayment && !d.qrCode.IsZero()
}

func (d *Draft) Validate() error {
	if err := fieldValidator.Struct(d); err != nil {
		return NewInvalidDraftError(strings.Join(validation.Fields(err), "; "), err)
	}
	if d.collectPayment && (d.BankDetails == nil || d.BankDetails.AccountNumber == "") {
		return NewInvalidDraftError("Bank account number is required to collect payments", nil)
	}
	return nil
}

// MarshalJSON sends only server-side bank fields, and none unless payment
// collection is enabled.
func (d Draft) MarshalJSON() ([]byte, error) {
	type draftJSON Draft
	out := draftJSON(d)
	if d.collectPayment && d.BankDetails != nil {
		out.BankDetails = &BankDetails{
			AccountHolder: d.BankDetails.AccountHolder,
			AccountNumber: d.BankDetails.AccountNumber,
			IFSCCode:      d.BankDetails.IFSCCode,
			UPIID:         d.BankDetails.UPIID,
			BankName:      d.BankDetails.BankName,
		}
	} else {
		out.BankDetails = nil
	}

	b, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("failed to encode event draft: %w", err)
	}
	return b, nil
}
