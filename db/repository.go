package db

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"shelfmark/models"
)

var (
	ErrNotFound       = errors.New("record not found")
	ErrDuplicateEmail = errors.New("email already registered")
)

// Repository defines a common interface for all repositories
type Repository interface {
	Close() error
}

// UserRepository defines the interface for user account operations
type UserRepository interface {
	Repository
	Create(ctx context.Context, user *models.User) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id int64) (*models.User, error)
}

// BookRepository defines the interface for book operations. All reads and
// mutations except TitleExists are filtered by the owning user id.
type BookRepository interface {
	Repository
	Create(ctx context.Context, book *models.Book) (*models.Book, error)
	FindByIDAndOwner(ctx context.Context, id, ownerID int64) (*models.Book, error)
	FindAllByOwner(ctx context.Context, ownerID int64) ([]*models.Book, error)
	TitleExists(ctx context.Context, title string) (bool, error)
	UpdateRating(ctx context.Context, id, ownerID int64, rating float64) error
	Delete(ctx context.Context, id, ownerID int64) error
}

// RepositoryFactory creates repositories based on the database type
type RepositoryFactory struct {
	SQLiteDB   *sql.DB
	PostgresDB *sql.DB
}

// NewRepositoryFactory creates a new repository factory
func NewRepositoryFactory(sqliteDB, postgresDB *sql.DB) *RepositoryFactory {
	return &RepositoryFactory{
		SQLiteDB:   sqliteDB,
		PostgresDB: postgresDB,
	}
}

// NewUserRepository creates a new user repository
func (f *RepositoryFactory) NewUserRepository() UserRepository {
	if f.SQLiteDB != nil {
		return NewSQLiteUserRepository(f.SQLiteDB)
	}
	return NewPostgresUserRepository(f.PostgresDB)
}

// NewBookRepository creates a new book repository
func (f *RepositoryFactory) NewBookRepository() BookRepository {
	if f.SQLiteDB != nil {
		return NewSQLiteBookRepository(f.SQLiteDB)
	}
	return NewPostgresBookRepository(f.PostgresDB)
}

// isUniqueViolation reports whether err comes from the unique index on
// users.email. SQLite names the column in the message; pgx appends the
// SQLSTATE code.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed: users.email") ||
		strings.Contains(msg, "SQLSTATE 23505")
}
