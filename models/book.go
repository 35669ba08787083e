package models

import (
	"time"
)

// Book represents a single entry on a user's shelf. Rating is on a
// 0 to 10 scale, fractions allowed. UserID is the owning user; books
// are never shared or reassigned.
type Book struct {
	ID        int64
	Title     string
	Author    string
	Rating    float64
	UserID    int64
	CreatedAt time.Time
	UpdatedAt time.Time
}
