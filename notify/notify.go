// Package notify carries transient user-facing messages, the client's
// equivalent of toast notifications.
package notify

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
)

type Level string

const (
	LEVEL_SUCCESS Level = "success"
	LEVEL_ERROR   Level = "error"
)

type Notifier interface {
	Success(msg string)
	Error(msg string)
}

var _ Notifier = &Writer{}

// Writer prints notifications for a terminal user and records them in the log.
type Writer struct {
	out    io.Writer
	logger *slog.Logger
	mu     sync.Mutex
}

func NewWriter(out io.Writer, logger *slog.Logger) *Writer {
	return &Writer{out: out, logger: logger}
}

func (w *Writer) Success(msg string) {
	w.write(LEVEL_SUCCESS, msg)
}

func (w *Writer) Error(msg string) {
	w.write(LEVEL_ERROR, msg)
}

func (w *Writer) write(level Level, msg string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	prefix := "✓"
	if level == LEVEL_ERROR {
		prefix = "✗"
	}
	fmt.Fprintf(w.out, "%s %s\n", prefix, msg)

	w.logger.Debug("notification", slog.String("level", string(level)), slog.String("message", msg))
}

type Notification struct {
	Level   Level
	Message string
}

var _ Notifier = &Recorder{}

// Recorder keeps notifications in memory.
type Recorder struct {
	mu            sync.Mutex
	notifications []Notification
}

func (r *Recorder) Success(msg string) {
	r.add(LEVEL_SUCCESS, msg)
}

func (r *Recorder) Error(msg string) {
	r.add(LEVEL_ERROR, msg)
}

func (r *Recorder) add(level Level, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notifications = append(r.notifications, Notification{Level: level, Message: msg})
}

func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.notifications...)
}

func (r *Recorder) Last() (Notification, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.notifications) == 0 {
		return Notification{}, false
	}
	return r.notifications[len(r.notifications)-1], true
}

// MessageOf returns the human-readable message carried by err, or fallback
// when err carries none.
func MessageOf(err error, fallback string) string {
	var um interface{ UserMessage() string }
	if errors.As(err, &um) && um.UserMessage() != "" {
		return um.UserMessage()
	}
	return fallback
}
