package models

import "time"

// User is the profile returned by the auth endpoints.
type User struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Session is the authenticated identity held by the client.
type Session struct {
	Token     string
	User      User
	ExpiresAt time.Time
}

// UserID returns the id of the session's user.
func (s Session) UserID() string {
	return s.User.ID
}

// Expired reports whether the session is no longer valid at now.
func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
