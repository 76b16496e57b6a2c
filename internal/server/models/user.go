package models

import "time"

// User is an account row. PasswordHash is a bcrypt digest and must never
// be exposed through the API.
type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	CreatedAt    time.Time
}
