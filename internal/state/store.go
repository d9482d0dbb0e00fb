// Package state holds the application state shared by the session
// lifecycle and the recipe views, and notifies subscribers on every change.
package state

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/recipebook/internal/auth"
	"github.com/wolfeidau/recipebook/internal/models"
	"golang.org/x/oauth2"
)

// ErrNotAuthenticated is returned when a token is requested without a live session.
var ErrNotAuthenticated = errors.New("not authenticated")

var (
	_ auth.Navigator       = (*Store)(nil)
	_ auth.OutcomeHandler  = (*Store)(nil)
	_ auth.TriggerObserver = (*Store)(nil)
)

// AuthState is the authentication slice of the application state.
type AuthState struct {
	User    *models.Session
	Error   string
	Loading bool
}

// AppState is an immutable snapshot of the application state.
type AppState struct {
	Auth         AuthState
	Recipes      []models.Recipe
	ShoppingList []models.Ingredient
	Route        string
}

// Store owns the current AppState. Actions are applied in the order they
// arrive; subscribers are called after each action outside the lock.
type Store struct {
	mu      sync.RWMutex
	state   AppState
	subs    map[uint64]func(AppState)
	nextSub uint64
	now     func() time.Time
}

// Option customises a Store.
type Option func(*Store)

// WithClock overrides the clock used to decide whether the session has expired.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// New creates an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		subs: make(map[uint64]func(AppState)),
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Apply reduces an action into the state and notifies subscribers.
func (s *Store) Apply(action any) {
	s.mu.Lock()
	s.state = reduce(s.state, action)
	snapshot := s.state
	subs := make([]func(AppState), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	log.Debug().Str("action", fmt.Sprintf("%T", action)).Msg("state updated")

	for _, fn := range subs {
		fn(snapshot)
	}
}

// State returns the current snapshot.
func (s *Store) State() AppState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Select reads a derived value from the current state.
func Select[T any](s *Store, fn func(AppState) T) T {
	return fn(s.State())
}

// Subscribe registers fn for every subsequent change. The returned func
// removes the subscription.
func (s *Store) Subscribe(fn func(AppState)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// Await blocks until the state satisfies pred or ctx is done.
func (s *Store) Await(ctx context.Context, pred func(AppState) bool) (AppState, error) {
	matched := make(chan AppState, 1)

	cancel := s.Subscribe(func(st AppState) {
		if !pred(st) {
			return
		}
		select {
		case matched <- st:
		default:
		}
	})
	defer cancel()

	if st := s.State(); pred(st) {
		return st, nil
	}

	select {
	case st := <-matched:
		return st, nil
	case <-ctx.Done():
		return AppState{}, ctx.Err()
	}
}

// Navigate records the route.
func (s *Store) Navigate(route string) {
	s.Apply(RouteChanged{Route: route})
}

// HandleOutcome applies an authentication outcome.
func (s *Store) HandleOutcome(o auth.Outcome) {
	s.Apply(o)
}

// ObserveTrigger applies a session trigger.
func (s *Store) ObserveTrigger(t auth.Trigger) {
	s.Apply(t)
}

// TokenSource exposes the signed in user's identity token.
func (s *Store) TokenSource() oauth2.TokenSource {
	return tokenSource{store: s}
}

type tokenSource struct {
	store *Store
}

func (t tokenSource) Token() (*oauth2.Token, error) {
	user := Select(t.store, func(st AppState) *models.Session { return st.Auth.User })
	if user == nil || !user.Valid() || user.IsExpired(t.store.now()) {
		return nil, ErrNotAuthenticated
	}

	return &oauth2.Token{
		AccessToken: user.Token,
		TokenType:   "Bearer",
		Expiry:      user.ExpiresAt,
	}, nil
}
