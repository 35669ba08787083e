package models

import (
	"time"
)

// User represents a registered account. PasswordHash holds a bcrypt
// digest; the plaintext password is never stored.
type User struct {
	ID           int64
	Email        string
	Name         string
	PasswordHash string
	CreatedAt    time.Time
}
