package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/International-Combat-Archery-Alliance/registration-client/client"
	"github.com/International-Combat-Archery-Alliance/registration-client/credstore"
	"github.com/International-Combat-Archery-Alliance/registration-client/notify"
	"github.com/International-Combat-Archery-Alliance/registration-client/users"
)

// Gateway is the part of the backend client the session needs.
type Gateway interface {
	SetCredential(credential string)
	ClearCredential()
	Login(ctx context.Context, email string, password string) (users.AuthResponse, error)
	Register(ctx context.Context, req client.SignUpRequest) (users.AuthResponse, error)
	Me(ctx context.Context) (users.User, error)
}

var _ Gateway = (*client.Client)(nil)

// State is a snapshot of the session. User is nil when nobody is signed in.
type State struct {
	User    *users.User
	Loading bool
}

func (s State) SignedIn() bool {
	return s.User != nil
}

// PendingRedirect remembers where a share link wanted to go before the
// visitor was sent to sign in.
type PendingRedirect struct {
	ShareID string
	EventID string
}

func (p PendingRedirect) IsZero() bool {
	return p.ShareID == "" && p.EventID == ""
}

// Store is the single source of truth for who is signed in.
type Store struct {
	gateway  Gateway
	creds    credstore.Store
	notifier notify.Notifier
	logger   *slog.Logger
	now      func() time.Time

	mu          sync.Mutex
	user        *users.User
	loading     bool
	initialized bool
	pending     PendingRedirect
	listeners   map[int]func(State)
	nextID      int
}

func NewStore(gateway Gateway, creds credstore.Store, notifier notify.Notifier, logger *slog.Logger) *Store {
	return &Store{
		gateway:   gateway,
		creds:     creds,
		notifier:  notifier,
		logger:    logger,
		now:       time.Now,
		loading:   true,
		listeners: map[int]func(State){},
	}
}

func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

func (s *Store) stateLocked() State {
	st := State{Loading: s.loading}
	if s.user != nil {
		u := *s.user
		st.User = &u
	}
	return st
}

// Subscribe registers fn to be called after every state change. The returned
// func removes it.
func (s *Store) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.listeners[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

func (s *Store) publish() {
	s.mu.Lock()
	st := s.stateLocked()
	listeners := make([]func(State), 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(st)
	}
}

// Initialize restores a persisted session. It only does work the first time
// it is called; Loading is false once it returns.
func (s *Store) Initialize(ctx context.Context) {
	s.mu.Lock()
	if s.initialized {
		s.mu.Unlock()
		return
	}
	s.initialized = true
	s.mu.Unlock()

	user := s.restore(ctx)

	s.mu.Lock()
	s.user = user
	s.loading = false
	s.mu.Unlock()

	s.publish()
}

func (s *Store) restore(ctx context.Context) *users.User {
	cred, err := s.creds.Load(ctx)
	if err != nil {
		if !credstore.IsNoCredential(err) {
			s.logger.WarnContext(ctx, "failed to load saved credential", slog.String("error", err.Error()))
		}
		return nil
	}

	if expired(cred, s.now()) {
		s.logger.InfoContext(ctx, "saved credential has expired")
		s.forget(ctx)
		return nil
	}

	s.gateway.SetCredential(cred)
	user, err := s.gateway.Me(ctx)
	if err != nil {
		s.logger.InfoContext(ctx, "saved credential was rejected", slog.String("error", err.Error()))
		s.forget(ctx)
		return nil
	}
	return &user
}

// expired reports whether cred is a JWT whose exp claim is in the past.
// Anything that does not parse is left for the backend to judge.
func expired(cred string, now time.Time) bool {
	token, _, err := jwt.NewParser().ParseUnverified(cred, jwt.MapClaims{})
	if err != nil {
		return false
	}
	exp, err := token.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !exp.After(now)
}

func (s *Store) forget(ctx context.Context) {
	if err := s.creds.Clear(ctx); err != nil {
		s.logger.WarnContext(ctx, "failed to clear saved credential", slog.String("error", err.Error()))
	}
	s.gateway.ClearCredential()
}

func (s *Store) SignIn(ctx context.Context, email string, password string) error {
	resp, err := s.gateway.Login(ctx, email, password)
	if err != nil {
		s.notifier.Error(notify.MessageOf(err, "Failed to sign in"))
		return err
	}

	s.establish(ctx, resp)
	s.notifier.Success("Successfully signed in!")
	return nil
}

func (s *Store) SignUp(ctx context.Context, email string, password string, fullName string, role users.Role) error {
	if !role.Valid() {
		s.notifier.Error("Failed to create account")
		return fmt.Errorf("unknown role %q", role)
	}

	resp, err := s.gateway.Register(ctx, client.SignUpRequest{
		Email:    email,
		Password: password,
		FullName: fullName,
		Role:     role,
	})
	if err != nil {
		s.notifier.Error(notify.MessageOf(err, "Failed to create account"))
		return err
	}

	s.establish(ctx, resp)
	s.notifier.Success("Account created successfully!")
	return nil
}

func (s *Store) establish(ctx context.Context, resp users.AuthResponse) {
	if err := s.creds.Save(ctx, resp.Token); err != nil {
		s.logger.WarnContext(ctx, "failed to persist credential", slog.String("error", err.Error()))
	}
	s.gateway.SetCredential(resp.Token)

	user := resp.User
	s.mu.Lock()
	s.user = &user
	s.loading = false
	s.initialized = true
	s.mu.Unlock()

	s.publish()
}

func (s *Store) SignOut(ctx context.Context) {
	s.forget(ctx)

	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()

	s.publish()
	s.notifier.Success("Successfully signed out!")
}

func (s *Store) SetPendingRedirect(p PendingRedirect) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = p
}

// TakePendingRedirect returns the stored redirect and forgets it.
func (s *Store) TakePendingRedirect() PendingRedirect {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.pending
	s.pending = PendingRedirect{}
	return p
}

type ctxKey string

const ctxStoreKey ctxKey = "SESSION_STORE"

func CtxWithStore(ctx context.Context, store *Store) context.Context {
	return context.WithValue(ctx, ctxStoreKey, store)
}

func StoreFromCtx(ctx context.Context) (*Store, bool) {
	store, ok := ctx.Value(ctxStoreKey).(*Store)
	return store, ok
}
