package dashboard

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/International-Combat-Archery-Alliance/registration-client/events"
	"github.com/International-Combat-Archery-Alliance/registration-client/notify"
	"github.com/International-Combat-Archery-Alliance/registration-client/registration"
)

const missingValue = "N/A"

type RegistrationsSource interface {
	GetEventRegistrations(ctx context.Context, eventID string) ([]registration.Registration, error)
}

// EventRegistrations is the organizer's per-event registration list.
func EventRegistrations(ctx context.Context, api RegistrationsSource, notifier notify.Notifier, eventID string) ([]registration.Registration, error) {
	regs, err := api.GetEventRegistrations(ctx, eventID)
	if err != nil {
		notifier.Error("Failed to load registrations")
		return nil, err
	}
	return regs, nil
}

// ExportHeader is the standard columns followed by the event's custom field
// labels.
func ExportHeader(e events.Event) []string {
	header := []string{"Full Name", "Email", "Status", "Registered At", "Transaction ID", "Payment Screenshot"}
	for _, f := range e.RegistrationFields {
		header = append(header, f.Label)
	}
	return header
}

// ExportRows renders one row per registration, aligned with ExportHeader.
func ExportRows(e events.Event, regs []registration.Registration) [][]string {
	rows := make([][]string, 0, len(regs))
	for _, r := range regs {
		row := []string{
			orMissing(r.FullName),
			orMissing(r.Email),
			orMissing(string(r.Status)),
			registeredAt(r.RegisteredAt),
		}

		pd, ok := r.Payment()
		if ok {
			row = append(row, orMissing(pd.TransactionID), orMissing(pd.ScreenshotURL))
		} else {
			row = append(row, missingValue, missingValue)
		}

		for _, f := range e.RegistrationFields {
			row = append(row, formatValue(r.RegistrationData[f.Key]))
		}
		rows = append(rows, row)
	}
	return rows
}

// ExportCSV writes the registrations of e as CSV.
func ExportCSV(w io.Writer, e events.Event, regs []registration.Registration) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ExportHeader(e)); err != nil {
		return NewFailedToExportError("Failed to write CSV header", err)
	}
	if err := cw.WriteAll(ExportRows(e, regs)); err != nil {
		return NewFailedToExportError("Failed to write CSV rows", err)
	}
	return nil
}

// ExportFilename is the download name for e's CSV export.
func ExportFilename(e events.Event) string {
	return fmt.Sprintf("%s-registrations.csv", e.Title)
}

func registeredAt(t time.Time) string {
	if t.IsZero() {
		return missingValue
	}
	return t.Format("2006-01-02")
}

func orMissing(s string) string {
	if s == "" {
		return missingValue
	}
	return s
}

func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return missingValue
	case string:
		return orMissing(val)
	case float64:
		if val == 0 {
			return missingValue
		}
		return fmt.Sprintf("%g", val)
	case bool:
		if !val {
			return missingValue
		}
		return "true"
	default:
		return fmt.Sprint(val)
	}
}
