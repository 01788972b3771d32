package registration

import (
	"context"
	"strings"
	"sync"

	"github.com/International-Combat-Archery-Alliance/registration-client/events"
	"github.com/International-Combat-Archery-Alliance/registration-client/notify"
	"github.com/International-Combat-Archery-Alliance/registration-client/upload"
)

type Step int

const (
	STEP_DETAILS Step = iota
	STEP_PAYMENT
	STEP_VERIFICATION
	STEP_COMPLETE
)

func (s Step) String() string {
	switch s {
	case STEP_DETAILS:
		return "details"
	case STEP_PAYMENT:
		return "payment"
	case STEP_VERIFICATION:
		return "verification"
	case STEP_COMPLETE:
		return "complete"
	default:
		return "unknown"
	}
}

// Wizard walks an attendee through registering for one event:
//
//	details -> payment -> verification -> submit   (paid events)
//	details -> submit                              (free events)
//
// At most one registration request is in flight at a time, and a failed
// submit leaves every entered value in place for a retry.
type Wizard struct {
	event      events.Event
	submitter  Submitter
	notifier   notify.Notifier
	onComplete func(Registration)

	mu            sync.Mutex
	step          Step
	values        map[string]any
	transactionID string
	screenshot    upload.Image
	inFlight      bool
}

// NewWizard opens a wizard for event. A full event cannot be opened.
func NewWizard(event events.Event, submitter Submitter, notifier notify.Notifier, onComplete func(Registration)) (*Wizard, error) {
	if event.IsFull() {
		return nil, NewEventFullError(event.Title)
	}
	if onComplete == nil {
		onComplete = func(Registration) {}
	}

	return &Wizard{
		event:      event,
		submitter:  submitter,
		notifier:   notifier,
		onComplete: onComplete,
		step:       STEP_DETAILS,
		values:     map[string]any{},
	}, nil
}

func (w *Wizard) Event() events.Event {
	return w.event
}

func (w *Wizard) Step() Step {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.step
}

func (w *Wizard) InFlight() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.inFlight
}

func (w *Wizard) SetField(key string, raw string) error {
	field, ok := w.field(key)
	if !ok {
		return NewUnknownFieldError(key)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.values[key] = field.Parse(raw)
	return nil
}

func (w *Wizard) Field(key string) (any, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	v, ok := w.values[key]
	return v, ok
}

func (w *Wizard) SetTransactionID(id string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.transactionID = id
}

func (w *Wizard) TransactionID() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.transactionID
}

// AttachScreenshot selects the payment proof. Anything that is not an image
// is rejected and the previous selection kept.
func (w *Wizard) AttachScreenshot(filename string, data []byte) error {
	img, err := upload.NewImage(filename, data)
	if err != nil {
		regErr := NewInvalidScreenshotError(err)
		w.notifier.Error(regErr.Message)
		return regErr
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.screenshot = img
	return nil
}

func (w *Wizard) Screenshot() (upload.Image, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.screenshot, !w.screenshot.IsZero()
}

// CanSubmit reports whether the submit control should be enabled.
func (w *Wizard) CanSubmit() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.canSubmitLocked()
}

func (w *Wizard) canSubmitLocked() bool {
	if w.inFlight {
		return false
	}
	switch w.step {
	case STEP_DETAILS:
		return !w.event.HasFee()
	case STEP_VERIFICATION:
		return w.hasPaymentProofLocked()
	default:
		return false
	}
}

func (w *Wizard) hasPaymentProofLocked() bool {
	return strings.TrimSpace(w.transactionID) != "" && !w.screenshot.IsZero()
}

// Next advances the wizard. From the last step of the flow it submits; the
// returned Registration is only set when a submission succeeded.
func (w *Wizard) Next(ctx context.Context) (Step, *Registration, error) {
	w.mu.Lock()
	step := w.step

	switch step {
	case STEP_DETAILS:
		if err := w.validateDetailsLocked(); err != nil {
			w.mu.Unlock()
			w.notifier.Error(err.Message)
			return step, nil, err
		}
		if w.event.HasFee() {
			w.step = STEP_PAYMENT
			w.mu.Unlock()
			return STEP_PAYMENT, nil, nil
		}
	case STEP_PAYMENT:
		w.step = STEP_VERIFICATION
		w.mu.Unlock()
		return STEP_VERIFICATION, nil, nil
	case STEP_VERIFICATION:
	case STEP_COMPLETE:
		w.mu.Unlock()
		return step, nil, NewAlreadyCompleteError()
	}
	w.mu.Unlock()

	reg, err := w.Submit(ctx)
	if err != nil {
		return w.Step(), nil, err
	}
	return STEP_COMPLETE, &reg, nil
}

// Back returns to the previous step without discarding anything entered.
func (w *Wizard) Back() Step {
	w.mu.Lock()
	defer w.mu.Unlock()

	switch w.step {
	case STEP_PAYMENT:
		w.step = STEP_DETAILS
	case STEP_VERIFICATION:
		w.step = STEP_PAYMENT
	}
	return w.step
}

// Submit issues the registration request. It is only allowed from details
// for free events and from verification for paid ones.
func (w *Wizard) Submit(ctx context.Context) (Registration, error) {
	w.mu.Lock()
	if w.inFlight {
		w.mu.Unlock()
		return Registration{}, NewSubmissionInFlightError()
	}
	if err := w.checkSubmittableLocked(); err != nil {
		w.mu.Unlock()
		w.notifier.Error(err.Message)
		return Registration{}, err
	}
	w.inFlight = true
	req := w.requestLocked()
	w.mu.Unlock()

	reg, err := w.submitter.RegisterForEvent(ctx, req)

	w.mu.Lock()
	w.inFlight = false
	if err != nil {
		w.mu.Unlock()
		msg := notify.MessageOf(err, "Failed to register for the event")
		w.notifier.Error(msg)
		return Registration{}, NewSubmissionFailedError(msg, err)
	}
	w.step = STEP_COMPLETE
	w.mu.Unlock()

	w.notifier.Success("Successfully registered for the event!")
	w.onComplete(reg)

	return reg, nil
}

func (w *Wizard) checkSubmittableLocked() *Error {
	switch w.step {
	case STEP_COMPLETE:
		return NewAlreadyCompleteError()
	case STEP_DETAILS:
		if w.event.HasFee() {
			return NewWrongStepError(w.step, "submit")
		}
		return w.validateDetailsLocked()
	case STEP_VERIFICATION:
		if !w.hasPaymentProofLocked() {
			return NewPaymentProofMissingError()
		}
		return w.validateDetailsLocked()
	default:
		return NewWrongStepError(w.step, "submit")
	}
}

func (w *Wizard) validateDetailsLocked() *Error {
	var problems []string
	for _, f := range w.event.RegistrationFields {
		if err := f.Check(w.values[f.Key]); err != nil {
			problems = append(problems, err.Error())
		}
	}
	if len(problems) > 0 {
		return NewInvalidFieldsError(strings.Join(problems, "; "))
	}
	return nil
}

func (w *Wizard) requestLocked() Request {
	fields := make(map[string]any, len(w.values))
	for k, v := range w.values {
		fields[k] = v
	}

	req := Request{
		Submission: Submission{
			Fields:          fields,
			EventID:         w.event.ID,
			PaymentVerified: !w.event.HasFee(),
		},
	}
	if w.event.HasFee() {
		req.Submission.Payment = &PaymentClaim{
			TransactionID: strings.TrimSpace(w.transactionID),
			Amount:        w.event.RegistrationFee,
		}
		req.Screenshot = w.screenshot
	}
	return req
}

func (w *Wizard) field(key string) (events.RegistrationField, bool) {
	for _, f := range w.event.RegistrationFields {
		if f.Key == key {
			return f, true
		}
	}
	return events.RegistrationField{}, false
}
