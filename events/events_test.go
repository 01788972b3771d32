package events

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/International-Combat-Archery-Alliance/registration-client/ptr"
	"github.com/International-Combat-Archery-Alliance/registration-client/slices"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00\x1f\x15\xc4\x89")

var now = time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)

func TestEventHelpers(t *testing.T) {
	t.Run("capacity", func(t *testing.T) {
		e := Event{MaxAttendees: 10, CurrentAttendees: 7}
		assert.False(t, e.IsFull())
		assert.Equal(t, 3, e.SpotsLeft())

		e.CurrentAttendees = 12
		assert.True(t, e.IsFull())
		assert.Equal(t, 0, e.SpotsLeft())
	})

	t.Run("fee", func(t *testing.T) {
		assert.False(t, Event{}.HasFee())

		e := Event{RegistrationFee: 499.5}
		assert.True(t, e.HasFee())
		assert.Equal(t, int64(49950), e.Fee().Amount())
		assert.Equal(t, FeeCurrency, e.Fee().Currency().Code)
	})

	t.Run("payment details", func(t *testing.T) {
		assert.False(t, Event{}.HasPaymentDetails())
		assert.False(t, Event{BankDetails: &BankDetails{BankName: "SBI"}}.HasPaymentDetails())
		assert.True(t, Event{BankDetails: &BankDetails{AccountNumber: "123"}}.HasPaymentDetails())
	})

	t.Run("qr code url prefers uploaded file", func(t *testing.T) {
		e := Event{BankDetails: &BankDetails{QRCodeURL: "https://img.example/qr.png", QRCodeFileID: "abc 1"}}
		assert.Equal(t, "https://api.example/api/files/abc%201", e.QRCodeURL("https://api.example/"))

		e.BankDetails.QRCodeFileID = ""
		assert.Equal(t, "https://img.example/qr.png", e.QRCodeURL("https://api.example"))

		assert.Equal(t, "", Event{}.QRCodeURL("https://api.example"))
	})

	t.Run("share url", func(t *testing.T) {
		assert.Equal(t, "https://reg.example/share/s1", Event{ShareID: "s1"}.ShareURL("https://reg.example/"))
		assert.Equal(t, "", Event{}.ShareURL("https://reg.example"))
	})

	t.Run("start date", func(t *testing.T) {
		tests := []struct {
			name     string
			date     string
			ok       bool
			upcoming bool
		}{
			{name: "bare date ahead", date: "2026-12-01", ok: true, upcoming: true},
			{name: "timestamp behind", date: "2026-01-05T10:00:00Z", ok: true, upcoming: false},
			{name: "unparseable", date: "next week", ok: false, upcoming: false},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				e := Event{Date: tt.date}
				_, ok := e.StartsOn()
				assert.Equal(t, tt.ok, ok)
				assert.Equal(t, tt.upcoming, e.IsUpcoming(now))
			})
		}
	})
}

func TestFieldCheck(t *testing.T) {
	tests := []struct {
		name    string
		field   RegistrationField
		raw     string
		wantErr string
	}{
		{name: "optional blank", field: RegistrationField{Label: "Note", Type: FIELD_TEXT}, raw: "  "},
		{name: "required blank", field: RegistrationField{Label: "Name", Type: FIELD_TEXT, Required: true}, raw: " ", wantErr: "Name is required"},
		{name: "number", field: RegistrationField{Label: "Age", Type: FIELD_NUMBER}, raw: "42"},
		{name: "not a number", field: RegistrationField{Label: "Age", Type: FIELD_NUMBER}, raw: "forty", wantErr: "Age must be a number"},
		{name: "NaN", field: RegistrationField{Label: "Age", Type: FIELD_NUMBER}, raw: "NaN", wantErr: "Age must be a number"},
		{name: "infinity", field: RegistrationField{Label: "Age", Type: FIELD_NUMBER}, raw: "infinity", wantErr: "Age must be a number"},
		{name: "email", field: RegistrationField{Label: "Email", Type: FIELD_EMAIL}, raw: "robin@example.org"},
		{name: "bad email", field: RegistrationField{Label: "Email", Type: FIELD_EMAIL}, raw: "robin", wantErr: "Email must be a valid email address"},
		{name: "date", field: RegistrationField{Label: "Born", Type: FIELD_DATE}, raw: "1990-04-01"},
		{name: "bad date", field: RegistrationField{Label: "Born", Type: FIELD_DATE}, raw: "01/04/1990", wantErr: "Born must be a date (YYYY-MM-DD)"},
		{name: "select", field: RegistrationField{Label: "Bow", Type: FIELD_SELECT, Options: []string{"Recurve", "Compound"}}, raw: "Recurve"},
		{name: "select outside options", field: RegistrationField{Label: "Bow", Type: FIELD_SELECT, Options: []string{"Recurve", "Compound"}}, raw: "Sling", wantErr: "Bow must be one of: Recurve, Compound"},
		{name: "tel is free text", field: RegistrationField{Label: "Phone", Type: FIELD_TEL}, raw: "+91 98765"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.field.Check(tt.field.Parse(tt.raw))
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.EqualError(t, err, tt.wantErr)
		})
	}
}

func TestFieldParse(t *testing.T) {
	num := RegistrationField{Type: FIELD_NUMBER}
	assert.Equal(t, 3.5, num.Parse(" 3.5 "))
	assert.Equal(t, "abc", num.Parse("abc"))
	assert.Equal(t, "", num.Parse(""))
	assert.Equal(t, "NaN", num.Parse("NaN"))
	assert.Equal(t, "+Inf", num.Parse("+Inf"))
	assert.EqualError(t, RegistrationField{Label: "Age", Type: FIELD_NUMBER}.Check(math.Inf(1)), "Age must be a number")
	assert.Equal(t, "hi", RegistrationField{Type: FIELD_TEXT}.Parse(" hi "))
}

func validDraft() *Draft {
	d := NewDraft()
	d.Title = "Archery Open"
	d.Description = "Annual open"
	d.Date = "2026-12-01"
	d.Time = "10:00"
	d.Location = "Sherwood"
	return d
}

func TestDraft(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		d := NewDraft()
		assert.Equal(t, 50, d.MaxAttendees)
		assert.True(t, d.RequiresCheckin)
		assert.Empty(t, d.RegistrationFields)
	})

	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, validDraft().Validate())
	})

	t.Run("missing basics", func(t *testing.T) {
		d := validDraft()
		d.Title = ""
		d.Date = "December 1st"

		err := d.Validate()

		var eventErr *Error
		require.ErrorAs(t, err, &eventErr)
		assert.Equal(t, REASON_INVALID_DRAFT, eventErr.Reason)
		assert.Contains(t, eventErr.Message, "title")
		assert.Contains(t, eventErr.Message, "date")
	})

	t.Run("payment needs an account number", func(t *testing.T) {
		d := validDraft()
		d.RegistrationFee = ptr.Float64(500)
		d.EnablePayment(BankDetails{BankName: "SBI"})

		err := d.Validate()

		var eventErr *Error
		require.ErrorAs(t, err, &eventErr)
		assert.Equal(t, "Bank account number is required to collect payments", eventErr.Message)
	})

	t.Run("negative fee", func(t *testing.T) {
		d := validDraft()
		d.RegistrationFee = ptr.Float64(-1)
		assert.Error(t, d.Validate())
	})
}

func TestDraftFields(t *testing.T) {
	t.Run("add defaults to text", func(t *testing.T) {
		d := NewDraft()
		require.NoError(t, d.AddField(RegistrationField{Key: "club", Label: "Club"}))
		assert.Equal(t, FIELD_TEXT, d.RegistrationFields[0].Type)
	})

	t.Run("key and label required", func(t *testing.T) {
		err := NewDraft().AddField(RegistrationField{Key: "club"})

		var eventErr *Error
		require.ErrorAs(t, err, &eventErr)
		assert.Equal(t, REASON_INVALID_FIELD, eventErr.Reason)
	})

	t.Run("duplicate key", func(t *testing.T) {
		d := NewDraft()
		require.NoError(t, d.AddField(RegistrationField{Key: "club", Label: "Club"}))

		err := d.AddField(RegistrationField{Key: "club", Label: "Other club"})

		var eventErr *Error
		require.ErrorAs(t, err, &eventErr)
		assert.Equal(t, REASON_DUPLICATE_FIELD_KEY, eventErr.Reason)
		assert.Len(t, d.RegistrationFields, 1)
	})

	t.Run("select needs options", func(t *testing.T) {
		err := NewDraft().AddField(RegistrationField{Key: "bow", Label: "Bow", Type: FIELD_SELECT})

		var eventErr *Error
		require.ErrorAs(t, err, &eventErr)
		assert.Equal(t, REASON_INVALID_FIELD, eventErr.Reason)
	})

	t.Run("unknown type", func(t *testing.T) {
		err := NewDraft().AddField(RegistrationField{Key: "x", Label: "X", Type: "color"})
		assert.Error(t, err)
	})

	t.Run("remove", func(t *testing.T) {
		d := NewDraft()
		require.NoError(t, d.AddField(RegistrationField{Key: "a", Label: "A"}))
		require.NoError(t, d.AddField(RegistrationField{Key: "b", Label: "B"}))

		d.RemoveField("a")

		assert.Equal(t, []string{"b"}, slices.Map(d.RegistrationFields, func(f RegistrationField) string { return f.Key }))
	})
}

func TestDraftFromEvent(t *testing.T) {
	e := Event{
		ID:                 "e1",
		Title:              "Archery Open",
		Date:               "2026-12-01",
		MaxAttendees:       0,
		RegistrationFee:    250,
		RequiresCheckin:    ptr.Bool(false),
		RegistrationFields: []RegistrationField{{Key: "club", Label: "Club", Type: FIELD_TEXT}},
		BankDetails:        &BankDetails{AccountNumber: "123", QRCodeURL: "https://img/qr.png"},
	}

	d := DraftFromEvent(e)

	assert.Equal(t, "Archery Open", d.Title)
	assert.Equal(t, 50, d.MaxAttendees, "unset capacity falls back to the default")
	require.NotNil(t, d.RegistrationFee)
	assert.Equal(t, 250.0, *d.RegistrationFee)
	assert.False(t, d.RequiresCheckin)
	assert.Len(t, d.RegistrationFields, 1)

	d.RegistrationFields[0].Label = "Changed"
	assert.Equal(t, "Club", e.RegistrationFields[0].Label, "event fields are copied")

	assert.True(t, DraftFromEvent(Event{}).RequiresCheckin, "check-in defaults on")

	t.Run("timestamp date", func(t *testing.T) {
		d := DraftFromEvent(Event{
			Title:       "Archery Open",
			Description: "Annual open",
			Date:        "2030-05-01T00:00:00.000Z",
			Time:        "10:00",
			Location:    "Sherwood",
		})

		assert.Equal(t, "2030-05-01", d.Date)
		assert.NoError(t, d.Validate())
	})
}

func TestDraftJSON(t *testing.T) {
	t.Run("bank details only when collecting payment", func(t *testing.T) {
		d := validDraft()
		d.RegistrationFee = ptr.Float64(500)
		d.EnablePayment(BankDetails{AccountHolder: "ICAA", AccountNumber: "123", IFSCCode: "SBIN0001", QRCodeURL: "https://img/qr.png", QRCodeFileID: "f1"})

		b, err := json.Marshal(d)
		require.NoError(t, err)

		var out map[string]any
		require.NoError(t, json.Unmarshal(b, &out))
		bank, ok := out["bank_details"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "123", bank["account_number"])
		assert.NotContains(t, bank, "qr_code_url")
		assert.NotContains(t, bank, "qr_code_file_id")
		assert.Equal(t, 500.0, out["registration_fee"])

		d.DisablePayment()
		b, err = json.Marshal(d)
		require.NoError(t, err)
		out = nil
		require.NoError(t, json.Unmarshal(b, &out))
		assert.Nil(t, out["bank_details"])
	})
}

func TestDraftQRCode(t *testing.T) {
	d := validDraft()

	err := d.SetQRCode("qr.txt", []byte("not an image"))
	var eventErr *Error
	require.ErrorAs(t, err, &eventErr)
	assert.Equal(t, REASON_INVALID_QR_CODE, eventErr.Reason)

	require.NoError(t, d.SetQRCode("qr.png", pngBytes))
	_, ok := d.QRCode()
	assert.False(t, ok, "not uploaded unless payment is collected")

	d.EnablePayment(BankDetails{AccountNumber: "123"})
	img, ok := d.QRCode()
	assert.True(t, ok)
	assert.Equal(t, "qr.png", img.Filename())

	d.DisablePayment()
	_, ok = d.QRCode()
	assert.False(t, ok)
}

func TestFilter(t *testing.T) {
	list := []Event{
		{ID: "a", Title: "Archery Open", Location: "Sherwood", Date: "2026-12-01"},
		{ID: "b", Title: "Club Night", Location: "Nottingham", Date: "2026-01-10"},
		{ID: "c", Title: "Winter Shoot", Location: "sherwood hall", Date: "2027-01-10"},
	}
	ids := func(es []Event) []string {
		return slices.Map(es, func(e Event) string { return e.ID })
	}

	tests := []struct {
		name  string
		query string
		when  DateFilter
		want  []string
	}{
		{name: "everything", when: FILTER_ALL, want: []string{"a", "b", "c"}},
		{name: "title match ignores case", query: "CLUB", when: FILTER_ALL, want: []string{"b"}},
		{name: "location match", query: "sherwood", when: FILTER_ALL, want: []string{"a", "c"}},
		{name: "upcoming", when: FILTER_UPCOMING, want: []string{"a", "c"}},
		{name: "past", when: FILTER_PAST, want: []string{"b"}},
		{name: "query and date", query: "sherwood", when: FILTER_PAST, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(Filter(list, tt.query, tt.when, now)))
		})
	}
}

func TestBroadcastValidate(t *testing.T) {
	assert.NoError(t, Broadcast{Subject: "Venue change", Message: "Hall B"}.Validate())

	err := Broadcast{Subject: "Venue change", Message: "  "}.Validate()
	var eventErr *Error
	require.ErrorAs(t, err, &eventErr)
	assert.Equal(t, "Please fill in both subject and message", eventErr.Message)
}
