package models

import (
	"time"
)

// Session is the durable record of one authenticated identity.
// The JSON layout is the one written to local storage.
type Session struct {
	Email     string    `json:"email"`
	UserID    string    `json:"id"`
	Token     string    `json:"_token"`
	ExpiresAt time.Time `json:"_tokenExpirationDate"`
}

// NewSession builds a session that expires expiresIn after now.
func NewSession(email, userID, token string, now time.Time, expiresIn time.Duration) Session {
	return Session{
		Email:     email,
		UserID:    userID,
		Token:     token,
		ExpiresAt: now.Add(expiresIn),
	}
}

// Valid returns true if the session carries a token.
func (s Session) Valid() bool {
	return s.Token != ""
}

// IsExpired returns true if the session has expired at now.
func (s Session) IsExpired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Remaining returns how long the session has left at now, never negative.
func (s Session) Remaining(now time.Time) time.Duration {
	d := s.ExpiresAt.Sub(now)
	if d < 0 {
		return 0
	}
	return d
}
