package domain

import "time"

// User is an account that can be issued tokens.
type User struct {
	ID           string
	Username     string
	Nicename     string
	Email        string
	PasswordHash string
	Roles        []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// DefaultRole is assigned to self-registered accounts.
const DefaultRole = "subscriber"
