package models

import (
	"time"

	"github.com/google/uuid"
)

// User is an account that owns connection profiles and query history.
// PasswordHash is a bcrypt digest and never leaves the server.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
