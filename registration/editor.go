package registration

import (
	"context"
	"maps"
	"strings"

	"github.com/International-Combat-Archery-Alliance/registration-client/events"
	"github.com/International-Combat-Archery-Alliance/registration-client/notify"
)

// Editor changes the answers of an existing registration. The saved
// registration_data is replaced as a whole.
type Editor struct {
	event    events.Event
	existing Registration
	updater  Updater
	notifier notify.Notifier
	values   map[string]any
}

func NewEditor(event events.Event, existing Registration, updater Updater, notifier notify.Notifier) *Editor {
	values := map[string]any{}
	maps.Copy(values, existing.RegistrationData)

	return &Editor{
		event:    event,
		existing: existing,
		updater:  updater,
		notifier: notifier,
		values:   values,
	}
}

func (e *Editor) Value(key string) (any, bool) {
	v, ok := e.values[key]
	return v, ok
}

func (e *Editor) SetField(key string, raw string) error {
	for _, f := range e.event.RegistrationFields {
		if f.Key == key {
			e.values[key] = f.Parse(raw)
			return nil
		}
	}
	return NewUnknownFieldError(key)
}

func (e *Editor) Save(ctx context.Context) (Registration, error) {
	var problems []string
	for _, f := range e.event.RegistrationFields {
		if err := f.Check(e.values[f.Key]); err != nil {
			problems = append(problems, err.Error())
		}
	}
	if len(problems) > 0 {
		err := NewInvalidFieldsError(strings.Join(problems, "; "))
		e.notifier.Error(err.Message)
		return Registration{}, err
	}

	data := make(map[string]any, len(e.values))
	maps.Copy(data, e.values)

	reg, err := e.updater.UpdateRegistration(ctx, e.existing.ID, data)
	if err != nil {
		msg := notify.MessageOf(err, "Failed to save registration")
		e.notifier.Error(msg)
		return Registration{}, NewSubmissionFailedError(msg, err)
	}

	e.notifier.Success("Registration updated successfully!")
	return reg, nil
}
