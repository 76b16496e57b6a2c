package models

import (
	"encoding/json"
	"time"
)

// UserData holds the single opaque JSON document stored per user.
// The server never inspects the payload shape; it belongs to the client
// application.
type UserData struct {
	UserID    string
	Payload   json.RawMessage
	UpdatedAt time.Time
}
