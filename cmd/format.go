package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/International-Combat-Archery-Alliance/registration-client/events"
	"github.com/International-Combat-Archery-Alliance/registration-client/registration"
)

func feeText(e events.Event) string {
	if !e.HasFee() {
		return "Free"
	}
	return e.Fee().Display()
}

func spotsText(e events.Event) string {
	if e.IsFull() {
		return "Full"
	}
	return fmt.Sprintf("%d/%d left", e.SpotsLeft(), e.MaxAttendees)
}

func whenText(e events.Event) string {
	return strings.TrimSpace(e.Date + " " + e.Time)
}

// printEventTable lists events one per line. registered marks the events the
// user already signed up for and may be nil.
func printEventTable(w io.Writer, list []events.Event, registered func(string) bool) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tWHEN\tLOCATION\tSPOTS\tFEE\t")
	for _, e := range list {
		badge := ""
		if registered != nil && registered(e.ID) {
			badge = "Registered"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n", e.ID, e.Title, whenText(e), e.Location, spotsText(e), feeText(e), badge)
	}
	return tw.Flush()
}

func printEvent(w io.Writer, e events.Event, apiOrigin string, shareOrigin string) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Title\t%s\n", e.Title)
	if e.Description != "" {
		fmt.Fprintf(tw, "Description\t%s\n", e.Description)
	}
	fmt.Fprintf(tw, "When\t%s\n", whenText(e))
	fmt.Fprintf(tw, "Location\t%s\n", e.Location)
	fmt.Fprintf(tw, "Spots\t%s\n", spotsText(e))
	fmt.Fprintf(tw, "Fee\t%s\n", feeText(e))
	if e.MeetLink != "" {
		fmt.Fprintf(tw, "Meeting link\t%s\n", e.MeetLink)
	}
	if link := e.ShareURL(shareOrigin); link != "" {
		fmt.Fprintf(tw, "Share link\t%s\n", link)
	}
	for _, f := range e.RegistrationFields {
		fmt.Fprintf(tw, "Asks\t%s\n", fieldPrompt(f))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if e.HasFee() {
		return printPaymentDetails(w, e, apiOrigin)
	}
	return nil
}

func printPaymentDetails(w io.Writer, e events.Event, apiOrigin string) error {
	if !e.HasPaymentDetails() {
		fmt.Fprintf(w, "\nPay %s to the organizer before registering.\n", feeText(e))
		return nil
	}

	bd := e.BankDetails
	fmt.Fprintf(w, "\nPay %s by bank transfer:\n", feeText(e))
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "  Account holder\t%s\n", bd.AccountHolder)
	fmt.Fprintf(tw, "  Bank\t%s\n", bd.BankName)
	fmt.Fprintf(tw, "  Account number\t%s\n", bd.AccountNumber)
	fmt.Fprintf(tw, "  IFSC\t%s\n", bd.IFSCCode)
	if bd.UPIID != "" {
		fmt.Fprintf(tw, "  UPI\t%s\n", bd.UPIID)
	}
	if qr := e.QRCodeURL(apiOrigin); qr != "" {
		fmt.Fprintf(tw, "  QR code\t%s\n", qr)
	}
	return tw.Flush()
}

func fieldPrompt(f events.RegistrationField) string {
	label := f.Label
	if f.Required {
		label += " *"
	}
	if f.Type == events.FIELD_SELECT && len(f.Options) > 0 {
		label += " (" + strings.Join(f.Options, "/") + ")"
	}
	return label
}

func printRegistrationTable(w io.Writer, regs []registration.Registration) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tEVENT\tWHEN\tSTATUS\tREGISTERED\tPAYMENT")
	for _, r := range regs {
		title, when := r.EventID.ID, ""
		if r.Event != nil {
			title, when = r.Event.Title, whenText(*r.Event)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", r.ID, title, when, r.Status, r.RegisteredAt.Format("2006-01-02"), paymentText(r))
	}
	return tw.Flush()
}

func paymentText(r registration.Registration) string {
	p, ok := r.Payment()
	if !ok {
		return "-"
	}
	state := "pending"
	if r.PaymentVerified != nil && *r.PaymentVerified {
		state = "verified"
	}
	return fmt.Sprintf("%s (%s)", p.TransactionID, state)
}

func valueText(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}
