package model

import "time"

// Session binds a dashboard login to the upstream API token it obtained.
type Session struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Token     string    `json:"token"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
	// User is filled on the first profile lookup and kept with the session.
	User *User `json:"user,omitempty"`
}

func (s *Session) IsExpired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}
