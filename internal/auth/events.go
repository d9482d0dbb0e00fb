// Package auth drives the client side session lifecycle: sign-up, sign-in,
// silent restore of a stored session and logout, including the automatic
// logout when the identity token expires.
package auth

import (
	"time"

	"github.com/wolfeidau/recipebook/internal/models"
)

// Routes the coordinator navigates to.
const (
	RouteAuth = "/auth"
	RouteHome = "/"
)

// Credentials are the email and password of a single sign-up or sign-in attempt.
type Credentials struct {
	Email    string
	Password string
}

// Trigger is an event handled by the Coordinator.
type Trigger interface {
	trigger()
}

// Outcome is the result of an authentication attempt.
type Outcome interface {
	outcome()
}

// SignupStart requests a new account.
type SignupStart struct {
	Credentials Credentials
}

// LoginStart requests a sign-in with existing credentials.
type LoginStart struct {
	Credentials Credentials
}

// LogoutReason records who asked for the logout. It does not change handling.
type LogoutReason string

const (
	LogoutUser    LogoutReason = "user"
	LogoutExpired LogoutReason = "expired"
)

// Logout ends the current session.
// Schedule is set by the expiry timer to the schedule that elapsed; an
// expiry for a schedule that has since been replaced is ignored.
type Logout struct {
	Reason   LogoutReason
	Schedule uint64
}

// AutoLogin restores a previously stored session.
type AutoLogin struct{}

// AuthenticateSuccess carries a usable session.
// Redirect is true for interactive sign-in and false for a silent restore.
type AuthenticateSuccess struct {
	Email     string
	UserID    string
	Token     string
	ExpiresAt time.Time
	ExpiresIn time.Duration
	Redirect  bool
}

// Session returns the session record described by the outcome.
func (a AuthenticateSuccess) Session() models.Session {
	return models.Session{
		Email:     a.Email,
		UserID:    a.UserID,
		Token:     a.Token,
		ExpiresAt: a.ExpiresAt,
	}
}

// AuthenticateFailure carries a message suitable for display.
type AuthenticateFailure struct {
	Message string
	Cause   error
}

func (SignupStart) trigger()         {}
func (LoginStart) trigger()          {}
func (Logout) trigger()              {}
func (AutoLogin) trigger()           {}
func (AuthenticateSuccess) trigger() {}

func (AuthenticateSuccess) outcome() {}
func (AuthenticateFailure) outcome() {}

// Navigator moves the user interface to a route.
type Navigator interface {
	Navigate(route string)
}

// OutcomeHandler receives every outcome emitted by the Coordinator.
type OutcomeHandler interface {
	HandleOutcome(o Outcome)
}

// TriggerObserver is notified of each trigger before the Coordinator reacts to it.
type TriggerObserver interface {
	ObserveTrigger(t Trigger)
}
