package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/International-Combat-Archery-Alliance/registration-client/dashboard"
	"github.com/International-Combat-Archery-Alliance/registration-client/events"
	"github.com/International-Combat-Archery-Alliance/registration-client/ptr"
	"github.com/International-Combat-Archery-Alliance/registration-client/registration"
	"github.com/International-Combat-Archery-Alliance/registration-client/sheets"
)

func adminCommandTable() []command {
	return []command{
		{name: "stats", usage: "show totals", route: "/admin", run: runAdminStats},
		{name: "events", usage: "[-q query] [-when all|upcoming|past]  list events with share links", route: "/admin/events", run: runAdminEvents},
		{name: "create", usage: "create an event", route: "/admin/create-event", run: runAdminCreate},
		{name: "edit", usage: "<eventId>  edit an event", route: "/admin/events", run: runAdminEdit},
		{name: "delete", usage: "[-yes] <eventId>  delete an event", route: "/admin/events", run: runAdminDelete},
		{name: "share", usage: "<eventId>  print an event's share link", route: "/admin/events", run: runAdminShare},
		{name: "registrations", usage: "[-csv] [-o file] [-sheet] [-tab name] <eventId>  list or export registrations", route: "/admin/events", run: runAdminRegistrations},
		{name: "broadcast", usage: "[-subject s] [-message m] [-details] <eventId>  email everyone registered", route: "/admin/events", run: runAdminBroadcast},
	}
}

func runAdmin(ctx context.Context, a *app, args []string) error {
	return a.dispatch(ctx, "regctl admin", adminCommandTable(), args)
}

func (a *app) manageEvents() *dashboard.ManageEvents {
	return dashboard.NewManageEvents(a.api, a.notifier, a.cfg.SharingOrigin())
}

func runAdminStats(ctx context.Context, a *app, args []string) error {
	overview, err := dashboard.LoadAdmin(ctx, a.api, a.notifier, "")
	if !overview.StatsLoaded {
		return err
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Total events\t%d\n", overview.Stats.TotalEvents)
	fmt.Fprintf(tw, "Total registrations\t%d\n", overview.Stats.TotalRegistrations)
	fmt.Fprintf(tw, "Upcoming events\t%d\n", overview.Stats.UpcomingEvents)
	fmt.Fprintf(tw, "Past events\t%d\n", overview.Stats.PastEvents)
	if flushErr := tw.Flush(); flushErr != nil {
		return flushErr
	}
	return err
}

func runAdminEvents(ctx context.Context, a *app, args []string) error {
	fs := a.flags("events")
	query := fs.String("q", "", "search text")
	when := fs.String("when", string(events.FILTER_ALL), "all, upcoming or past")
	if err := fs.Parse(args); err != nil {
		return err
	}

	m := a.manageEvents()
	list, err := m.List(ctx, *query)
	if err != nil {
		return err
	}
	list = events.Filter(list, "", events.DateFilter(*when), a.now())
	if len(list) == 0 {
		fmt.Fprintln(a.out, "No events found")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tWHEN\tREGISTERED\tFEE\tSHARE LINK")
	for _, e := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d/%d\t%s\t%s\n", e.ID, e.Title, whenText(e), e.CurrentAttendees, e.MaxAttendees, feeText(e), m.ShareURL(e))
	}
	return tw.Flush()
}

func runAdminCreate(ctx context.Context, a *app, args []string) error {
	return a.saveDraft(ctx, "", events.NewDraft())
}

func runAdminEdit(ctx context.Context, a *app, args []string) error {
	fs := a.flags("edit")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := arg(fs, "event id")
	if err != nil {
		return err
	}

	draft, err := a.manageEvents().Edit(ctx, id)
	if err != nil {
		return err
	}
	return a.saveDraft(ctx, id, draft)
}

// saveDraft fills in the event form and saves it, asking again while the
// form is rejected.
func (a *app) saveDraft(ctx context.Context, id string, draft *events.Draft) error {
	m := a.manageEvents()
	for {
		if err := a.askDraft(draft); err != nil {
			return err
		}

		saved, err := m.Save(ctx, id, draft)
		if err != nil {
			var draftErr *events.Error
			if !errors.As(err, &draftErr) {
				return err
			}
			retry, askErr := a.in.Confirm("Edit and try again?", true)
			if askErr != nil {
				return askErr
			}
			if !retry {
				return err
			}
			continue
		}

		fmt.Fprintf(a.out, "Event %s saved\n", saved.Event.ID)
		if saved.ShareURL != "" {
			fmt.Fprintf(a.out, "Share link: %s\n", saved.ShareURL)
		}
		return nil
	}
}

func (a *app) askDraft(d *events.Draft) error {
	var err error
	ask := func(dst *string, label string) {
		if err == nil {
			*dst, err = a.in.Ask(label, *dst)
		}
	}
	ask(&d.Title, "Title")
	ask(&d.Description, "Description")
	ask(&d.Date, "Date (YYYY-MM-DD)")
	ask(&d.Time, "Time")
	ask(&d.Location, "Location")
	ask(&d.MeetLink, "Meeting link")
	if err != nil {
		return err
	}

	if d.MaxAttendees, err = a.askInt("Max attendees", d.MaxAttendees); err != nil {
		return err
	}

	fee := 0.0
	if d.RegistrationFee != nil {
		fee = *d.RegistrationFee
	}
	if fee, err = a.askFloat("Registration fee", fee); err != nil {
		return err
	}
	d.RegistrationFee = ptr.Float64(fee)

	if d.RequiresCheckin, err = a.in.Confirm("Require check-in", d.RequiresCheckin); err != nil {
		return err
	}

	if err := a.askFields(d); err != nil {
		return err
	}
	if fee > 0 {
		return a.askPayment(d)
	}
	d.DisablePayment()
	return nil
}

func (a *app) askInt(label string, def int) (int, error) {
	for {
		answer, err := a.in.Ask(label, strconv.Itoa(def))
		if err != nil {
			return 0, err
		}
		n, err := strconv.Atoi(answer)
		if err == nil {
			return n, nil
		}
		fmt.Fprintf(a.out, "%s must be a whole number\n", label)
	}
}

func (a *app) askFloat(label string, def float64) (float64, error) {
	for {
		answer, err := a.in.Ask(label, strconv.FormatFloat(def, 'f', -1, 64))
		if err != nil {
			return 0, err
		}
		n, err := strconv.ParseFloat(answer, 64)
		if err == nil {
			return n, nil
		}
		fmt.Fprintf(a.out, "%s must be a number\n", label)
	}
}

func (a *app) askFields(d *events.Draft) error {
	for _, f := range d.RegistrationFields {
		fmt.Fprintf(a.out, "  field %s: %s [%s]\n", f.Key, fieldPrompt(f), f.Type)
	}

	for {
		key, err := a.in.Ask("Remove field (key, blank to keep all)", "")
		if err != nil {
			return err
		}
		if key == "" {
			break
		}
		d.RemoveField(key)
	}

	for {
		more, err := a.in.Confirm("Add a registration field?", false)
		if err != nil {
			return err
		}
		if !more {
			return nil
		}

		var f events.RegistrationField
		if f.Key, err = a.in.Require("Field key"); err != nil {
			return err
		}
		if f.Label, err = a.in.Require("Field label"); err != nil {
			return err
		}
		typ, err := a.in.Ask("Field type (text, number, email, tel, date, select, textarea)", string(events.FIELD_TEXT))
		if err != nil {
			return err
		}
		f.Type = events.FieldType(typ)
		if f.Required, err = a.in.Confirm("Required", false); err != nil {
			return err
		}
		if f.Type == events.FIELD_SELECT {
			opts, err := a.in.Require("Options (comma separated)")
			if err != nil {
				return err
			}
			for _, o := range strings.Split(opts, ",") {
				if o = strings.TrimSpace(o); o != "" {
					f.Options = append(f.Options, o)
				}
			}
		}

		if err := d.AddField(f); err != nil {
			var eventErr *events.Error
			if errors.As(err, &eventErr) {
				a.notifier.Error(eventErr.Message)
				continue
			}
			return err
		}
	}
}

func (a *app) askPayment(d *events.Draft) error {
	collect, err := a.in.Confirm("Collect payment by bank transfer?", d.BankDetails != nil)
	if err != nil {
		return err
	}
	if !collect {
		d.DisablePayment()
		return nil
	}

	var bd events.BankDetails
	if d.BankDetails != nil {
		bd = *d.BankDetails
	}
	ask := func(dst *string, label string) {
		if err == nil {
			*dst, err = a.in.Ask(label, *dst)
		}
	}
	ask(&bd.AccountHolder, "Account holder")
	ask(&bd.BankName, "Bank name")
	ask(&bd.AccountNumber, "Account number")
	ask(&bd.IFSCCode, "IFSC code")
	ask(&bd.UPIID, "UPI ID")
	if err != nil {
		return err
	}
	d.EnablePayment(bd)

	for {
		path, err := a.in.Ask("Payment QR code image (blank for none)", "")
		if err != nil {
			return err
		}
		if path == "" {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(a.out, "Could not read %s: %s\n", path, err)
			continue
		}
		if err := d.SetQRCode(filepath.Base(path), data); err != nil {
			var eventErr *events.Error
			if errors.As(err, &eventErr) {
				a.notifier.Error(eventErr.Message)
			}
			continue
		}
		return nil
	}
}

func runAdminDelete(ctx context.Context, a *app, args []string) error {
	fs := a.flags("delete")
	yes := fs.Bool("yes", false, "skip the confirmation")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := arg(fs, "event id")
	if err != nil {
		return err
	}

	if !*yes {
		ok, err := a.in.Confirm(fmt.Sprintf("Delete event %s and all its registrations?", id), false)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
	}
	return a.manageEvents().Delete(ctx, id)
}

func runAdminShare(ctx context.Context, a *app, args []string) error {
	fs := a.flags("share")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := arg(fs, "event id")
	if err != nil {
		return err
	}

	e, err := a.api.GetEvent(ctx, id)
	if err != nil {
		a.notifier.Error("Failed to load event")
		return err
	}
	link := a.manageEvents().ShareURL(e)
	if link == "" {
		return fmt.Errorf("event %s has no share link", id)
	}
	fmt.Fprintln(a.out, link)
	return nil
}

func runAdminRegistrations(ctx context.Context, a *app, args []string) error {
	fs := a.flags("registrations")
	toCSV := fs.Bool("csv", false, "write a CSV export")
	output := fs.String("o", "", "CSV file, \"-\" for stdout")
	toSheet := fs.Bool("sheet", false, "append to the configured spreadsheet")
	tab := fs.String("tab", "", "spreadsheet tab, defaults to the event title")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := arg(fs, "event id")
	if err != nil {
		return err
	}

	e, err := a.api.GetEvent(ctx, id)
	if err != nil {
		a.notifier.Error("Failed to load event")
		return err
	}
	regs, err := dashboard.EventRegistrations(ctx, a.api, a.notifier, id)
	if err != nil {
		return err
	}

	switch {
	case *toCSV || *output != "":
		if err := a.exportCSV(e, regs, *output); err != nil {
			return err
		}
	default:
		tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, strings.Join(dashboard.ExportHeader(e), "\t"))
		for _, row := range dashboard.ExportRows(e, regs) {
			fmt.Fprintln(tw, strings.Join(row, "\t"))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	if *toSheet {
		return a.exportSheet(ctx, e, regs, *tab)
	}
	return nil
}

func (a *app) exportCSV(e events.Event, regs []registration.Registration, output string) error {
	if output == "-" {
		return dashboard.ExportCSV(a.out, e, regs)
	}
	if output == "" {
		output = dashboard.ExportFilename(e)
	}

	f, err := os.Create(output)
	if err != nil {
		return dashboard.NewFailedToExportError("Failed to create export file", err)
	}
	if err := writeCSV(f, e, regs); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Wrote %d registrations to %s\n", len(regs), output)
	return nil
}

func writeCSV(f io.WriteCloser, e events.Event, regs []registration.Registration) error {
	if err := dashboard.ExportCSV(f, e, regs); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return dashboard.NewFailedToExportError("Failed to write export file", err)
	}
	return nil
}

func (a *app) exportSheet(ctx context.Context, e events.Event, regs []registration.Registration, tab string) error {
	if !a.cfg.CanExportToSheets() {
		return errors.New("no spreadsheet configured, set REGCTL_SPREADSHEET_ID")
	}
	if tab == "" {
		tab = e.Title
	}

	client, err := sheets.New(ctx, a.cfg.SheetsCredentialsFile, a.cfg.SpreadsheetID)
	if err != nil {
		return dashboard.NewFailedToExportError("Failed to connect to Google Sheets", err)
	}
	if err := client.AppendTable(ctx, tab, dashboard.ExportHeader(e), dashboard.ExportRows(e, regs)); err != nil {
		return dashboard.NewFailedToExportError("Failed to append to spreadsheet", err)
	}

	a.notifier.Success(fmt.Sprintf("Appended %d registrations to sheet %q", len(regs), tab))
	return nil
}

func runAdminBroadcast(ctx context.Context, a *app, args []string) error {
	fs := a.flags("broadcast")
	subject := fs.String("subject", "", "email subject")
	message := fs.String("message", "", "email body")
	details := fs.Bool("details", true, "include the event details")
	if err := fs.Parse(args); err != nil {
		return err
	}

	msg := events.Broadcast{
		Subject:             *subject,
		Message:             *message,
		IncludeEventDetails: *details,
	}

	var err error
	if msg.Subject, err = a.in.orAsk(msg.Subject, "Subject"); err != nil {
		return err
	}
	if msg.Message, err = a.in.orAsk(msg.Message, "Message"); err != nil {
		return err
	}

	return dashboard.SendBroadcast(ctx, a.api, a.notifier, fs.Arg(0), msg)
}
