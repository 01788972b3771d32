package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/International-Combat-Archery-Alliance/registration-client/dashboard"
	"github.com/International-Combat-Archery-Alliance/registration-client/guard"
	"github.com/International-Combat-Archery-Alliance/registration-client/users"
)

func runLogin(ctx context.Context, a *app, args []string) error {
	fs := a.flags("login")
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	if err := fs.Parse(args); err != nil {
		return err
	}

	next, err := a.signIn(ctx, *email, *password)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Next: %s\n", next)
	return nil
}

// signIn signs in, prompting for whatever was not given, and returns where
// the user should go next.
func (a *app) signIn(ctx context.Context, email string, password string) (string, error) {
	email, err := a.in.orAsk(email, "Email")
	if err != nil {
		return "", err
	}
	password, err = a.in.orAsk(password, "Password")
	if err != nil {
		return "", err
	}

	if err := a.session.SignIn(ctx, email, password); err != nil {
		return "", err
	}
	return a.afterSignIn(), nil
}

func (a *app) afterSignIn() string {
	st := a.session.State()
	if st.User == nil {
		return guard.PathAuth
	}
	return guard.AfterLogin(*st.User, a.session.TakePendingRedirect())
}

func runSignUp(ctx context.Context, a *app, args []string) error {
	fs := a.flags("signup")
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	name := fs.String("name", "", "full name")
	admin := fs.Bool("admin", false, "create an organizer account")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var err error
	if *name, err = a.in.orAsk(*name, "Full name"); err != nil {
		return err
	}
	if *email, err = a.in.orAsk(*email, "Email"); err != nil {
		return err
	}
	if *password, err = a.in.orAsk(*password, "Password"); err != nil {
		return err
	}

	role := users.ROLE_USER
	if *admin {
		role = users.ROLE_ADMIN
	}
	if err := a.session.SignUp(ctx, *email, *password, *name, role); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Next: %s\n", a.afterSignIn())
	return nil
}

func runLogout(ctx context.Context, a *app, args []string) error {
	a.session.SignOut(ctx)
	return nil
}

func runWhoAmI(ctx context.Context, a *app, args []string) error {
	u := a.session.State().User

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Server\t%s\n", a.api.BaseURL())
	fmt.Fprintf(tw, "Name\t%s\n", u.FullName)
	fmt.Fprintf(tw, "Email\t%s\n", u.Email)
	fmt.Fprintf(tw, "Role\t%s\n", u.Role)
	fmt.Fprintf(tw, "Home\t%s\n", guard.HomeFor(u.Role))
	return tw.Flush()
}

// runHome shows the overview of whichever dashboard the account lands on.
func runHome(ctx context.Context, a *app, args []string) error {
	a.session.Initialize(ctx)
	home := "/dashboard"
	if u := a.session.State().User; u != nil {
		home = guard.HomeFor(u.Role)
	}
	if err := a.enter(ctx, home); err != nil {
		return err
	}

	now := a.now()
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)

	if home == "/admin" {
		overview, err := dashboard.LoadAdmin(ctx, a.api, a.notifier, "")
		if overview.StatsLoaded {
			fmt.Fprintf(tw, "Total events\t%d\n", overview.Stats.TotalEvents)
			fmt.Fprintf(tw, "Total registrations\t%d\n", overview.Stats.TotalRegistrations)
			fmt.Fprintf(tw, "Upcoming events\t%d\n", overview.Stats.UpcomingEvents)
			fmt.Fprintf(tw, "Past events\t%d\n", overview.Stats.PastEvents)
		}
		fmt.Fprintf(tw, "Events listed\t%d\n", len(overview.Events))
		if flushErr := tw.Flush(); flushErr != nil {
			return flushErr
		}
		return err
	}

	overview, err := dashboard.LoadUser(ctx, a.api, a.notifier)
	fmt.Fprintf(tw, "Available events\t%d\n", len(overview.Events))
	fmt.Fprintf(tw, "Upcoming events\t%d\n", overview.UpcomingEvents(now))
	fmt.Fprintf(tw, "My registrations\t%d\n", len(overview.Registrations))
	fmt.Fprintf(tw, "Upcoming registrations\t%d\n", overview.UpcomingRegistrations(now))
	if flushErr := tw.Flush(); flushErr != nil {
		return flushErr
	}
	return err
}
