package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/International-Combat-Archery-Alliance/registration-client/client"
	"github.com/International-Combat-Archery-Alliance/registration-client/config"
	"github.com/International-Combat-Archery-Alliance/registration-client/notify"
	"github.com/International-Combat-Archery-Alliance/registration-client/session"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer, stderr io.Writer) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "Error loading config\n: %s\n", err)
		return 1
	}

	logger := newLogger(cfg.Env, stderr)

	creds, profiles, err := createCredentialStore(ctx, logger, cfg)
	if err != nil {
		fmt.Fprintf(stderr, "Error creating credential store\n: %s\n", err)
		return 1
	}

	api := client.NewClient(cfg.BaseURL, client.WithLogger(logger))
	notifier := notify.NewWriter(stdout, logger)

	a := &app{
		cfg:      cfg,
		logger:   logger,
		api:      api,
		session:  session.NewStore(api, creds, notifier, logger),
		notifier: notifier,
		profiles: profiles,
		in:       newPrompter(stdin, stdout),
		out:      stdout,
	}

	if err := a.run(client.CtxWithLogger(ctx, logger), args); err != nil {
		fmt.Fprintf(stderr, "%s\n", err)
		return 1
	}
	return 0
}

// newLogger writes human readable logs locally and JSON everywhere else.
// Request logs are only shown locally.
func newLogger(env config.Environment, w io.Writer) *slog.Logger {
	if env == config.LOCAL {
		return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelWarn}))
}
