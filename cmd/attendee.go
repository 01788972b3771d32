package main

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/International-Combat-Archery-Alliance/registration-client/dashboard"
	"github.com/International-Combat-Archery-Alliance/registration-client/events"
	"github.com/International-Combat-Archery-Alliance/registration-client/guard"
	"github.com/International-Combat-Archery-Alliance/registration-client/notify"
	"github.com/International-Combat-Archery-Alliance/registration-client/registration"
	"github.com/International-Combat-Archery-Alliance/registration-client/search"
)

const searchTimeout = 30 * time.Second

func runEvents(ctx context.Context, a *app, args []string) error {
	fs := a.flags("events")
	query := fs.String("q", "", "search text")
	when := fs.String("when", string(events.FILTER_ALL), "all, upcoming or past")
	if err := fs.Parse(args); err != nil {
		return err
	}

	results := make(chan []events.Event, 1)
	browse := dashboard.NewBrowse(ctx, a.api, a.notifier, a.logger, func(list []events.Event) {
		select {
		case results <- list:
		default:
		}
	})
	defer browse.Close()

	if err := browse.Refresh(ctx); err != nil {
		return err
	}
	list := browse.Events()

	if *query != "" {
		browse.Search(*query)
		select {
		case list = <-results:
		case <-time.After(search.DefaultDelay + searchTimeout):
			return errors.New("search did not complete")
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	list = events.Filter(list, "", events.DateFilter(*when), a.now())
	if len(list) == 0 {
		fmt.Fprintln(a.out, "No events found")
		return nil
	}
	return printEventTable(a.out, list, browse.IsRegistered)
}

func runEvent(ctx context.Context, a *app, args []string) error {
	fs := a.flags("event")
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
	return printEvent(a.out, e, a.cfg.APIOrigin(), a.cfg.SharingOrigin())
}

// runShared follows a share link. Anonymous visitors sign in on the spot and
// are then taken to the event, where they may register right away.
func runShared(ctx context.Context, a *app, args []string) error {
	fs := a.flags("shared")
	if err := fs.Parse(args); err != nil {
		return err
	}
	shareID := fs.Arg(0)

	if shareID != "" {
		if err := a.enter(ctx, "/share/"+url.PathEscape(shareID)); err != nil {
			return err
		}
	}

	res, err := dashboard.SharedEvent(ctx, a.api, shareID)
	if err != nil {
		a.notifier.Error(notify.MessageOf(err, "Invalid event link"))
		return err
	}
	if err := printEvent(a.out, res.Event, a.cfg.APIOrigin(), a.cfg.SharingOrigin()); err != nil {
		return err
	}

	next := res.Next
	if next == guard.PathAuth {
		fmt.Fprintln(a.out, "\nSign in to register for this event.")
		if next, err = a.signIn(ctx, "", ""); err != nil {
			return err
		}
		if strings.HasPrefix(next, "/share/") {
			if res, err = dashboard.SharedEvent(ctx, a.api, shareID); err != nil {
				a.notifier.Error(notify.MessageOf(err, "Invalid event link"))
				return err
			}
			next = res.Next
		}
	}

	eventID := selectedEvent(next)
	if eventID == "" {
		fmt.Fprintf(a.out, "Next: %s\n", next)
		return nil
	}
	a.notifier.Success("You're being redirected to register for this event")

	ok, err := a.in.Confirm("Register now?", true)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintf(a.out, "Next: %s\n", next)
		return nil
	}
	if err := a.enter(ctx, next); err != nil {
		return err
	}
	return a.register(ctx, eventID)
}

// selectedEvent returns the event a browse path preselects, if any.
func selectedEvent(path string) string {
	u, err := url.Parse(path)
	if err != nil || u.Path != "/dashboard/browse-events" {
		return ""
	}
	return u.Query().Get("event")
}

func runRegister(ctx context.Context, a *app, args []string) error {
	fs := a.flags("register")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := arg(fs, "event id")
	if err != nil {
		return err
	}
	return a.register(ctx, id)
}

func (a *app) register(ctx context.Context, eventID string) error {
	browse := dashboard.NewBrowse(ctx, a.api, a.notifier, a.logger, nil)
	defer browse.Close()

	if err := browse.Refresh(ctx); err != nil {
		return err
	}

	e, ok := browse.Find(eventID)
	if !ok {
		var err error
		if e, err = a.api.GetEvent(ctx, eventID); err != nil {
			a.notifier.Error("Event not found or no longer available")
			return err
		}
	}
	if browse.IsRegistered(e.ID) {
		return fmt.Errorf("already registered for %q", e.Title)
	}

	w, err := browse.OpenWizard(ctx, e)
	if err != nil {
		var regErr *registration.Error
		if errors.As(err, &regErr) {
			a.notifier.Error(regErr.Message)
		}
		return err
	}

	fmt.Fprintf(a.out, "Registering for %s (%s)\n", e.Title, feeText(e))
	return a.runWizard(ctx, w)
}

func (a *app) runWizard(ctx context.Context, w *registration.Wizard) error {
	e := w.Event()

	for w.Step() != registration.STEP_COMPLETE {
		switch w.Step() {
		case registration.STEP_DETAILS:
			if err := a.askDetails(w); err != nil {
				return err
			}
		case registration.STEP_PAYMENT:
			if err := printPaymentDetails(a.out, e, a.cfg.APIOrigin()); err != nil {
				return err
			}
		case registration.STEP_VERIFICATION:
			back, err := a.askPaymentProof(w)
			if err != nil {
				return err
			}
			if back {
				w.Back()
				continue
			}
		}

		_, reg, err := w.Next(ctx)
		if err != nil {
			var regErr *registration.Error
			if !errors.As(err, &regErr) {
				return err
			}
			switch regErr.Reason {
			case registration.REASON_INVALID_FIELDS, registration.REASON_PAYMENT_PROOF_MISSING:
				continue
			case registration.REASON_SUBMISSION_FAILED:
				retry, askErr := a.in.Confirm("Try again?", true)
				if askErr != nil {
					return askErr
				}
				if retry {
					continue
				}
			}
			return err
		}
		if reg != nil {
			fmt.Fprintf(a.out, "Registration %s confirmed\n", reg.ID)
		}
	}
	return nil
}

func (a *app) askDetails(w *registration.Wizard) error {
	for _, f := range w.Event().RegistrationFields {
		current, _ := w.Field(f.Key)
		answer, err := a.in.Ask(fieldPrompt(f), valueText(current))
		if err != nil {
			return err
		}
		if err := w.SetField(f.Key, answer); err != nil {
			return err
		}
	}
	return nil
}

// askPaymentProof collects the transaction id and screenshot. Answering
// "back" returns to the payment details.
func (a *app) askPaymentProof(w *registration.Wizard) (bool, error) {
	txn, err := a.in.Ask("Transaction ID (or \"back\")", w.TransactionID())
	if err != nil {
		return false, err
	}
	if strings.EqualFold(txn, "back") {
		return true, nil
	}
	w.SetTransactionID(txn)

	for {
		current := ""
		if img, ok := w.Screenshot(); ok {
			current = img.Filename()
		}
		path, err := a.in.Ask("Payment screenshot file", current)
		if err != nil {
			return false, err
		}
		if path == "" || path == current {
			return false, nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(a.out, "Could not read %s: %s\n", path, err)
			continue
		}
		if err := w.AttachScreenshot(filepath.Base(path), data); err != nil {
			continue
		}
		return false, nil
	}
}

func runRegistrations(ctx context.Context, a *app, args []string) error {
	regs, err := dashboard.LoadRegistrations(ctx, a.api, a.notifier)
	if err != nil {
		return err
	}
	if len(regs) == 0 {
		fmt.Fprintln(a.out, "No registrations yet")
		return nil
	}
	return printRegistrationTable(a.out, regs)
}

func runEditRegistration(ctx context.Context, a *app, args []string) error {
	fs := a.flags("edit-registration")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := arg(fs, "registration id")
	if err != nil {
		return err
	}

	regs, err := dashboard.LoadRegistrations(ctx, a.api, a.notifier)
	if err != nil {
		return err
	}
	i := slices.IndexFunc(regs, func(r registration.Registration) bool { return r.ID == id })
	if i < 0 {
		return fmt.Errorf("no registration %q", id)
	}
	reg := regs[i]

	var e events.Event
	if reg.Event != nil && len(reg.Event.RegistrationFields) > 0 {
		e = *reg.Event
	} else if e, err = a.api.GetEvent(ctx, reg.EventID.ID); err != nil {
		a.notifier.Error("Failed to load event")
		return err
	}

	editor := registration.NewEditor(e, reg, a.api, a.notifier)
	for {
		for _, f := range e.RegistrationFields {
			current, _ := editor.Value(f.Key)
			answer, err := a.in.Ask(fieldPrompt(f), valueText(current))
			if err != nil {
				return err
			}
			if err := editor.SetField(f.Key, answer); err != nil {
				return err
			}
		}

		if _, err := editor.Save(ctx); err != nil {
			var regErr *registration.Error
			if errors.As(err, &regErr) && regErr.Reason == registration.REASON_INVALID_FIELDS {
				continue
			}
			return err
		}
		return nil
	}
}
