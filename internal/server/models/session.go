package models

import "time"

// Session is a time-bounded grant of identity tied to an opaque token.
// A session is valid while the current time is before ExpiresAt; there is
// no sliding expiry.
type Session struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
}
