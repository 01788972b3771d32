package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"text/tabwriter"
	"time"

	"github.com/International-Combat-Archery-Alliance/registration-client/client"
	"github.com/International-Combat-Archery-Alliance/registration-client/config"
	"github.com/International-Combat-Archery-Alliance/registration-client/credstore"
	"github.com/International-Combat-Archery-Alliance/registration-client/guard"
	"github.com/International-Combat-Archery-Alliance/registration-client/notify"
	"github.com/International-Combat-Archery-Alliance/registration-client/session"
)

var errUsage = errors.New("no command given")

type profileLister interface {
	ListProfiles(ctx context.Context, limit int32, cursor *string) (credstore.ListProfilesResponse, error)
}

type app struct {
	cfg      config.Config
	logger   *slog.Logger
	api      *client.Client
	session  *session.Store
	notifier notify.Notifier
	// profiles is nil unless credentials are kept in dynamo.
	profiles profileLister
	in       *prompter
	out      io.Writer
	now      func() time.Time
}

type command struct {
	name  string
	usage string
	// route is the view the command opens. The session must be allowed to
	// render it; an empty route is not checked.
	route string
	run   func(ctx context.Context, a *app, args []string) error
}

func commandTable() []command {
	return []command{
		{name: "login", usage: "[-email e] [-password p]  sign in", route: guard.PathAuth, run: runLogin},
		{name: "signup", usage: "[-email e] [-password p] [-name n] [-admin]  create an account", route: guard.PathAuth, run: runSignUp},
		{name: "logout", usage: "sign out", run: runLogout},
		{name: "whoami", usage: "show the signed in account", route: "/dashboard", run: runWhoAmI},
		{name: "home", usage: "show the dashboard overview for your role", run: runHome},
		{name: "events", usage: "[-q query] [-when all|upcoming|past]  browse events", route: "/dashboard/browse-events", run: runEvents},
		{name: "event", usage: "<eventId>  show one event", route: "/dashboard/browse-events", run: runEvent},
		{name: "shared", usage: "<shareId>  open a share link", run: runShared},
		{name: "register", usage: "<eventId>  register for an event", route: "/dashboard/browse-events", run: runRegister},
		{name: "registrations", usage: "list your registrations", route: "/dashboard/registrations", run: runRegistrations},
		{name: "edit-registration", usage: "<registrationId>  change your answers", route: "/dashboard/registrations", run: runEditRegistration},
		{name: "profiles", usage: "[-limit n] [-cursor c]  list saved sign-in profiles", run: runProfiles},
		{name: "admin", usage: "<subcommand>  organizer tools", run: runAdmin},
	}
}

func (a *app) run(ctx context.Context, args []string) error {
	if a.now == nil {
		a.now = time.Now
	}
	ctx = session.CtxWithStore(ctx, a.session)
	return a.dispatch(ctx, "regctl", commandTable(), args)
}

func (a *app) dispatch(ctx context.Context, prog string, table []command, args []string) error {
	if len(args) == 0 {
		a.printUsage(prog, table)
		return errUsage
	}
	if args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		a.printUsage(prog, table)
		return nil
	}

	i := slices.IndexFunc(table, func(c command) bool { return c.name == args[0] })
	if i < 0 {
		a.printUsage(prog, table)
		return fmt.Errorf("unknown command %q", args[0])
	}
	cmd := table[i]

	if cmd.route != "" {
		if err := a.enter(ctx, cmd.route); err != nil {
			return err
		}
	}

	a.logger.DebugContext(ctx, "running command", slog.String("command", prog+" "+cmd.name))
	return cmd.run(ctx, a, args[1:])
}

// enter restores the session and applies the guard for path.
func (a *app) enter(ctx context.Context, path string) error {
	a.session.Initialize(ctx)

	d := guard.Resolve(a.session.State(), path)
	switch d.Outcome {
	case guard.OUTCOME_RENDER:
		return nil
	case guard.OUTCOME_REDIRECT:
		return &redirectError{From: path, To: d.Path}
	default:
		return errors.New("session is still loading")
	}
}

func (a *app) printUsage(prog string, table []command) {
	fmt.Fprintf(a.out, "usage: %s <command> [flags] [args]\n\n", prog)
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	for _, c := range table {
		fmt.Fprintf(tw, "  %s\t%s\n", c.name, c.usage)
	}
	tw.Flush()
}

func (a *app) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.out)
	return fs
}

// redirectError is a guard refusing to render a command's view.
type redirectError struct {
	From string
	To   string
}

func (e *redirectError) Error() string {
	switch {
	case e.To == guard.PathAuth:
		return fmt.Sprintf("%s requires signing in, run \"regctl login\" first", e.From)
	case e.From == guard.PathAuth:
		return "already signed in, run \"regctl logout\" first"
	default:
		return fmt.Sprintf("%s is not available to this account (redirected to %s)", e.From, e.To)
	}
}

// arg returns the first positional argument or fails with what is missing.
func arg(fs *flag.FlagSet, what string) (string, error) {
	if fs.NArg() < 1 || fs.Arg(0) == "" {
		return "", fmt.Errorf("missing %s", what)
	}
	return fs.Arg(0), nil
}
