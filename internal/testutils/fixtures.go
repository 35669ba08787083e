package testutils

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"shelfmark/db"
	"shelfmark/models"
)

// TestPassword is the plaintext behind every fixture user's hash
const TestPassword = "password123"

func CreateTestUser(email string) *models.User {
	hash, _ := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	return &models.User{
		Email:        email,
		Name:         "Jane Reader",
		PasswordHash: string(hash),
		CreatedAt:    time.Now(),
	}
}

func CreateTestBook(ownerID int64) *models.Book {
	now := time.Now()
	return &models.Book{
		Title:     "The Go Programming Language",
		Author:    "Alan A. A. Donovan",
		Rating:    9.5,
		UserID:    ownerID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func SeedUser(t *testing.T, repo db.UserRepository, email string) *models.User {
	t.Helper()
	user, err := repo.Create(context.Background(), CreateTestUser(email))
	require.NoError(t, err)
	return user
}

func SeedBook(t *testing.T, repo db.BookRepository, ownerID int64, title string) *models.Book {
	t.Helper()
	book := CreateTestBook(ownerID)
	book.Title = title
	saved, err := repo.Create(context.Background(), book)
	require.NoError(t, err)
	return saved
}
