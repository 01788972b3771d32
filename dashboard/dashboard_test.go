package dashboard

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/International-Combat-Archery-Alliance/registration-client/client"
	"github.com/International-Combat-Archery-Alliance/registration-client/credstore"
	"github.com/International-Combat-Archery-Alliance/registration-client/events"
	"github.com/International-Combat-Archery-Alliance/registration-client/notify"
	"github.com/International-Combat-Archery-Alliance/registration-client/registration"
	"github.com/International-Combat-Archery-Alliance/registration-client/session"
	"github.com/International-Combat-Archery-Alliance/registration-client/users"
)

var now = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

func TestLoadAdmin(t *testing.T) {
	ctx := context.Background()

	t.Run("both load", func(t *testing.T) {
		api := &mockAPI{
			GetEventsFunc: func(ctx context.Context, query string) ([]events.Event, error) {
				assert.Equal(t, "open", query)
				return []events.Event{{ID: "e1"}}, nil
			},
			GetAdminStatsFunc: func(ctx context.Context) (events.AdminStats, error) {
				return events.AdminStats{TotalEvents: 1}, nil
			},
		}
		rec := &notify.Recorder{}

		out, err := LoadAdmin(ctx, api, rec, "open")

		require.NoError(t, err)
		assert.Len(t, out.Events, 1)
		assert.True(t, out.StatsLoaded)
		assert.Equal(t, 1, out.Stats.TotalEvents)
		assert.Empty(t, rec.All())
	})

	t.Run("stats failure keeps events", func(t *testing.T) {
		api := &mockAPI{
			GetEventsFunc: func(ctx context.Context, query string) ([]events.Event, error) {
				return []events.Event{{ID: "e1"}}, nil
			},
			GetAdminStatsFunc: func(ctx context.Context) (events.AdminStats, error) {
				return events.AdminStats{}, errors.New("boom")
			},
		}
		rec := &notify.Recorder{}

		out, err := LoadAdmin(ctx, api, rec, "")

		assert.Error(t, err)
		assert.Len(t, out.Events, 1)
		assert.False(t, out.StatsLoaded)
		assert.Equal(t, []notify.Notification{{Level: notify.LEVEL_ERROR, Message: "Failed to fetch stats"}}, rec.All())
	})

	t.Run("both failures are reported", func(t *testing.T) {
		eventsErr := errors.New("events down")
		statsErr := errors.New("stats down")
		api := &mockAPI{
			GetEventsFunc: func(ctx context.Context, query string) ([]events.Event, error) {
				return nil, eventsErr
			},
			GetAdminStatsFunc: func(ctx context.Context) (events.AdminStats, error) {
				return events.AdminStats{}, statsErr
			},
		}
		rec := &notify.Recorder{}

		out, err := LoadAdmin(ctx, api, rec, "")

		assert.ErrorIs(t, err, eventsErr)
		assert.ErrorIs(t, err, statsErr)
		assert.Empty(t, out.Events)
		assert.False(t, out.StatsLoaded)
		assert.Len(t, rec.All(), 2)
	})
}

func TestLoadUser(t *testing.T) {
	api := &mockAPI{
		GetEventsFunc: func(ctx context.Context, query string) ([]events.Event, error) {
			return []events.Event{{ID: "past", Date: "2026-01-01"}, {ID: "soon", Date: "2026-07-01"}}, nil
		},
		GetRegistrationsFunc: func(ctx context.Context) ([]registration.Registration, error) {
			return []registration.Registration{
				{ID: "r1", Event: &events.Event{Date: "2026-07-01"}},
				{ID: "r2"},
			}, nil
		},
	}

	out, err := LoadUser(context.Background(), api, &notify.Recorder{})

	require.NoError(t, err)
	assert.Equal(t, 1, out.UpcomingEvents(now))
	assert.Equal(t, 1, out.UpcomingRegistrations(now))
	assert.Len(t, out.Registrations, 2)

	t.Run("registrations failure keeps events quietly", func(t *testing.T) {
		regsErr := errors.New("registrations down")
		failRegs := func(ctx context.Context) ([]registration.Registration, error) {
			return nil, regsErr
		}
		failing := &mockAPI{GetEventsFunc: api.GetEventsFunc, GetRegistrationsFunc: failRegs}
		rec := &notify.Recorder{}

		out, err := LoadUser(context.Background(), failing, rec)

		assert.ErrorIs(t, err, regsErr)
		assert.Len(t, out.Events, 2)
		assert.Empty(t, rec.All())
	})
}

func TestBrowse(t *testing.T) {
	ctx := context.Background()
	free := events.Event{ID: "e1", Title: "Free", MaxAttendees: 10}
	full := events.Event{ID: "e2", Title: "Full", MaxAttendees: 1, CurrentAttendees: 1}
	mine := events.Event{ID: "e3", Title: "Mine", MaxAttendees: 10}

	t.Run("register gating and refetch after completion", func(t *testing.T) {
		var eventsCalls, regsCalls atomic.Int32
		registered := false
		api := &mockAPI{
			GetEventsFunc: func(ctx context.Context, query string) ([]events.Event, error) {
				eventsCalls.Add(1)
				return []events.Event{free, full, mine}, nil
			},
			GetRegistrationsFunc: func(ctx context.Context) ([]registration.Registration, error) {
				regsCalls.Add(1)
				regs := []registration.Registration{{ID: "r3", EventID: registration.EventRef{ID: "e3"}}}
				if registered {
					regs = append(regs, registration.Registration{ID: "r1", EventID: registration.EventRef{ID: "e1"}})
				}
				return regs, nil
			},
			RegisterForEventFunc: func(ctx context.Context, req registration.Request) (registration.Registration, error) {
				registered = true
				return registration.Registration{ID: "r1"}, nil
			},
		}
		b := NewBrowse(ctx, api, &notify.Recorder{}, noopLogger, nil)
		defer b.Close()

		require.NoError(t, b.Refresh(ctx))
		assert.True(t, b.CanRegister(free))
		assert.False(t, b.CanRegister(full))
		assert.False(t, b.CanRegister(mine))

		w, err := b.OpenWizard(ctx, free)
		require.NoError(t, err)
		_, _, err = w.Next(ctx)
		require.NoError(t, err)

		assert.Equal(t, int32(2), eventsCalls.Load())
		assert.Equal(t, int32(2), regsCalls.Load())
		assert.True(t, b.IsRegistered("e1"))
	})

	t.Run("debounced search keeps the latest results", func(t *testing.T) {
		results := make(chan []events.Event, 4)
		var calls atomic.Int32
		api := &mockAPI{
			GetEventsFunc: func(ctx context.Context, query string) ([]events.Event, error) {
				calls.Add(1)
				return []events.Event{{ID: query}}, nil
			},
		}
		b := NewBrowse(ctx, api, &notify.Recorder{}, noopLogger, func(list []events.Event) { results <- list })
		defer b.Close()

		b.Search("a")
		b.Search("ab")

		select {
		case got := <-results:
			assert.Equal(t, "ab", got[0].ID)
		case <-time.After(2 * time.Second):
			t.Fatal("search never ran")
		}
		assert.Equal(t, int32(1), calls.Load())
		found, ok := b.Find("ab")
		assert.True(t, ok)
		assert.Equal(t, "ab", found.ID)
	})
}

func TestManageEvents(t *testing.T) {
	ctx := context.Background()

	t.Run("create prefers the backend share link", func(t *testing.T) {
		api := &mockAPI{
			CreateEventFunc: func(ctx context.Context, draft *events.Draft) (events.SavedEvent, error) {
				return events.SavedEvent{Event: events.Event{ID: "e1", ShareID: "s1"}, ShareableURL: "https://x/share/s1"}, nil
			},
		}
		rec := &notify.Recorder{}
		m := NewManageEvents(api, rec, "https://app")

		saved, err := m.Save(ctx, "", events.NewDraft())

		require.NoError(t, err)
		assert.Equal(t, "https://x/share/s1", saved.ShareURL)
		last, _ := rec.Last()
		assert.Equal(t, "Event created successfully", last.Message)
	})

	t.Run("update builds the share link", func(t *testing.T) {
		api := &mockAPI{
			UpdateEventFunc: func(ctx context.Context, id string, draft *events.Draft) (events.SavedEvent, error) {
				return events.SavedEvent{Event: events.Event{ID: id, ShareID: "s1"}}, nil
			},
		}
		rec := &notify.Recorder{}
		m := NewManageEvents(api, rec, "https://app/")

		saved, err := m.Save(ctx, "e1", events.NewDraft())

		require.NoError(t, err)
		assert.Equal(t, "https://app/share/s1", saved.ShareURL)
		last, _ := rec.Last()
		assert.Equal(t, "Event updated successfully", last.Message)
	})

	t.Run("draft errors show their message", func(t *testing.T) {
		api := &mockAPI{
			CreateEventFunc: func(ctx context.Context, draft *events.Draft) (events.SavedEvent, error) {
				return events.SavedEvent{}, events.NewInvalidDraftError("title: required", nil)
			},
		}
		rec := &notify.Recorder{}

		_, err := NewManageEvents(api, rec, "").Save(ctx, "", events.NewDraft())

		assert.Error(t, err)
		last, _ := rec.Last()
		assert.Equal(t, "title: required", last.Message)
	})

	t.Run("backend failure", func(t *testing.T) {
		api := &mockAPI{
			DeleteEventFunc: func(ctx context.Context, id string) error {
				return client.NewBackendError(500, "db down")
			},
		}
		rec := &notify.Recorder{}

		err := NewManageEvents(api, rec, "").Delete(ctx, "e1")

		assert.Error(t, err)
		last, _ := rec.Last()
		assert.Equal(t, notify.Notification{Level: notify.LEVEL_ERROR, Message: "Failed to delete event"}, last)
	})

	t.Run("edit prefills the draft", func(t *testing.T) {
		api := &mockAPI{
			GetEventFunc: func(ctx context.Context, id string) (events.Event, error) {
				return events.Event{ID: id, Title: "Open", MaxAttendees: 20}, nil
			},
		}

		d, err := NewManageEvents(api, &notify.Recorder{}, "").Edit(ctx, "e1")

		require.NoError(t, err)
		assert.Equal(t, "Open", d.Title)
		assert.Equal(t, 20, d.MaxAttendees)
		assert.True(t, d.RequiresCheckin)
	})
}

type stubGateway struct{}

func (stubGateway) SetCredential(string) {}
func (stubGateway) ClearCredential()     {}
func (stubGateway) Login(ctx context.Context, email string, password string) (users.AuthResponse, error) {
	return users.AuthResponse{Token: "tok", User: users.User{ID: "u1", Role: users.ROLE_USER}}, nil
}
func (stubGateway) Register(ctx context.Context, req client.SignUpRequest) (users.AuthResponse, error) {
	return users.AuthResponse{}, errors.New("unused")
}
func (stubGateway) Me(ctx context.Context) (users.User, error) {
	return users.User{}, errors.New("unused")
}

func TestSharedEvent(t *testing.T) {
	ctx := context.Background()
	api := &mockAPI{
		GetEventByShareIDFunc: func(ctx context.Context, shareID string) (events.Event, error) {
			if shareID != "s1" {
				return events.Event{}, client.NewBackendError(404, "Not found")
			}
			return events.Event{ID: "e1", ShareID: "s1"}, nil
		},
	}

	t.Run("anonymous visitor is sent to sign in", func(t *testing.T) {
		store := session.NewStore(stubGateway{}, credstore.NewMemoryStore(), &notify.Recorder{}, noopLogger)
		store.Initialize(ctx)

		res, err := SharedEvent(session.CtxWithStore(ctx, store), api, "s1")

		require.NoError(t, err)
		assert.Equal(t, "/auth", res.Next)
		assert.Equal(t, session.PendingRedirect{ShareID: "s1", EventID: "e1"}, store.TakePendingRedirect())
	})

	t.Run("signed in visitor goes to browse", func(t *testing.T) {
		store := session.NewStore(stubGateway{}, credstore.NewMemoryStore(), &notify.Recorder{}, noopLogger)
		require.NoError(t, store.SignIn(ctx, "a", "b"))

		res, err := SharedEvent(session.CtxWithStore(ctx, store), api, "s1")

		require.NoError(t, err)
		assert.Equal(t, "/dashboard/browse-events?event=e1", res.Next)
		assert.True(t, store.TakePendingRedirect().IsZero())
	})

	t.Run("unknown link", func(t *testing.T) {
		store := session.NewStore(stubGateway{}, credstore.NewMemoryStore(), &notify.Recorder{}, noopLogger)

		_, err := SharedEvent(session.CtxWithStore(ctx, store), api, "nope")

		var dashErr *Error
		require.True(t, errors.As(err, &dashErr))
		assert.Equal(t, "Event not found or no longer available", notify.MessageOf(err, ""))
	})

	t.Run("no session in context", func(t *testing.T) {
		_, err := SharedEvent(ctx, api, "s1")

		var dashErr *Error
		require.True(t, errors.As(err, &dashErr))
		assert.Equal(t, REASON_SHARED_EVENT_UNAVAILABLE, dashErr.Reason)
	})
}

func TestSendBroadcast(t *testing.T) {
	ctx := context.Background()

	t.Run("blank message is refused", func(t *testing.T) {
		called := false
		api := &mockAPI{BroadcastFunc: func(ctx context.Context, eventID string, msg events.Broadcast) error {
			called = true
			return nil
		}}
		rec := &notify.Recorder{}

		err := SendBroadcast(ctx, api, rec, "e1", events.Broadcast{Subject: "Hi", Message: "  "})

		assert.Error(t, err)
		assert.False(t, called)
		last, _ := rec.Last()
		assert.Equal(t, "Please fill in both subject and message", last.Message)
	})

	t.Run("no event selected", func(t *testing.T) {
		rec := &notify.Recorder{}

		err := SendBroadcast(ctx, &mockAPI{}, rec, "", events.Broadcast{Subject: "Hi", Message: "There"})

		assert.Error(t, err)
		last, _ := rec.Last()
		assert.Equal(t, "Please select an event", last.Message)
	})

	t.Run("sent", func(t *testing.T) {
		var got events.Broadcast
		api := &mockAPI{BroadcastFunc: func(ctx context.Context, eventID string, msg events.Broadcast) error {
			got = msg
			return nil
		}}
		rec := &notify.Recorder{}
		msg := events.Broadcast{Subject: "Hi", Message: "There", IncludeEventDetails: true}

		require.NoError(t, SendBroadcast(ctx, api, rec, "e1", msg))

		assert.Equal(t, msg, got)
		last, _ := rec.Last()
		assert.Equal(t, "Broadcast email sent successfully", last.Message)
	})
}

func TestExportCSV(t *testing.T) {
	e := events.Event{
		Title: "Spring Open",
		RegistrationFields: []events.RegistrationField{
			{Key: "club", Label: "Club", Type: events.FIELD_TEXT},
			{Key: "age", Label: "Age", Type: events.FIELD_NUMBER},
		},
	}
	regs := []registration.Registration{
		{
			FullName:         "Ann",
			Email:            "ann@example.com",
			Status:           registration.STATUS_REGISTERED,
			RegisteredAt:     time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC),
			RegistrationData: map[string]any{"club": "Archers, Inc.", "age": float64(31)},
			PaymentDetails:   &registration.PaymentDetails{TransactionID: "TX1", ScreenshotURL: "https://files/1"},
		},
		{
			FullName: "Bo",
			Email:    "bo@example.com",
			Status:   registration.STATUS_CHECKED_IN,
			RegistrationData: map[string]any{
				"payment_details": map[string]any{"transaction_id": "TX2"},
			},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, ExportCSV(&buf, e, regs))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)

	expected := [][]string{
		{"Full Name", "Email", "Status", "Registered At", "Transaction ID", "Payment Screenshot", "Club", "Age"},
		{"Ann", "ann@example.com", "registered", "2026-03-04", "TX1", "https://files/1", "Archers, Inc.", "31"},
		{"Bo", "bo@example.com", "checked_in", "N/A", "TX2", "N/A", "N/A", "N/A"},
	}
	if diff := cmp.Diff(expected, records); diff != "" {
		t.Errorf("csv mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "Spring Open-registrations.csv", ExportFilename(e))
}
