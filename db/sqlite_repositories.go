package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"shelfmark/internal/util"
	"shelfmark/models"
)

// SQLiteUserRepository implements the UserRepository interface for SQLite
type SQLiteUserRepository struct {
	db *sql.DB
}

// NewSQLiteUserRepository creates a new SQLiteUserRepository
func NewSQLiteUserRepository(db *sql.DB) *SQLiteUserRepository {
	return &SQLiteUserRepository{db: db}
}

// Close closes the database connection
func (r *SQLiteUserRepository) Close() error {
	return r.db.Close()
}

// Create inserts a new user and fills in the generated id. A second
// registration with the same email fails on the unique index and is
// reported as ErrDuplicateEmail.
func (r *SQLiteUserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}

	query := `INSERT INTO users (email, name, password_hash, created_at) VALUES (?, ?, ?, ?)`
	res, err := util.RetryOnLockWithResult(func() (sql.Result, error) {
		return r.db.ExecContext(ctx, query, user.Email, user.Name, user.PasswordHash, user.CreatedAt)
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("error inserting user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("error reading inserted user id: %w", err)
	}
	user.ID = id

	return user, nil
}

// FindByEmail finds a user by email
func (r *SQLiteUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT id, email, name, password_hash, created_at FROM users WHERE email = ?`
	row := r.db.QueryRowContext(ctx, query, email)

	var user models.User
	err := row.Scan(&user.ID, &user.Email, &user.Name, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error scanning user: %w", err)
	}

	return &user, nil
}

// FindByID finds a user by ID
func (r *SQLiteUserRepository) FindByID(ctx context.Context, id int64) (*models.User, error) {
	query := `SELECT id, email, name, password_hash, created_at FROM users WHERE id = ?`
	row := r.db.QueryRowContext(ctx, query, id)

	var user models.User
	err := row.Scan(&user.ID, &user.Email, &user.Name, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error scanning user: %w", err)
	}

	return &user, nil
}

// SQLiteBookRepository implements the BookRepository interface for SQLite
type SQLiteBookRepository struct {
	db *sql.DB
}

// NewSQLiteBookRepository creates a new SQLiteBookRepository
func NewSQLiteBookRepository(db *sql.DB) *SQLiteBookRepository {
	return &SQLiteBookRepository{db: db}
}

// Close closes the database connection
func (r *SQLiteBookRepository) Close() error {
	return r.db.Close()
}

// Create inserts a new book and fills in the generated id
func (r *SQLiteBookRepository) Create(ctx context.Context, book *models.Book) (*models.Book, error) {
	now := time.Now()
	if book.CreatedAt.IsZero() {
		book.CreatedAt = now
	}
	if book.UpdatedAt.IsZero() {
		book.UpdatedAt = now
	}

	query := `INSERT INTO books (title, author, rating, user_id, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`
	res, err := util.RetryOnLockWithResult(func() (sql.Result, error) {
		return r.db.ExecContext(ctx, query, book.Title, book.Author, book.Rating, book.UserID, book.CreatedAt, book.UpdatedAt)
	})
	if err != nil {
		return nil, fmt.Errorf("error inserting book: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("error reading inserted book id: %w", err)
	}
	book.ID = id

	return book, nil
}

// FindByIDAndOwner finds a book by id, restricted to the owning user.
// A book owned by someone else scans as ErrNotFound.
func (r *SQLiteBookRepository) FindByIDAndOwner(ctx context.Context, id, ownerID int64) (*models.Book, error) {
	query := `SELECT id, title, author, rating, user_id, created_at, updated_at FROM books WHERE id = ? AND user_id = ?`
	row := r.db.QueryRowContext(ctx, query, id, ownerID)

	var book models.Book
	err := row.Scan(&book.ID, &book.Title, &book.Author, &book.Rating, &book.UserID, &book.CreatedAt, &book.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error scanning book: %w", err)
	}

	return &book, nil
}

// FindAllByOwner finds all books belonging to the given user, oldest first
func (r *SQLiteBookRepository) FindAllByOwner(ctx context.Context, ownerID int64) ([]*models.Book, error) {
	query := `SELECT id, title, author, rating, user_id, created_at, updated_at FROM books WHERE user_id = ? ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("error querying books: %w", err)
	}
	defer rows.Close()

	var books []*models.Book
	for rows.Next() {
		var book models.Book
		err := rows.Scan(&book.ID, &book.Title, &book.Author, &book.Rating, &book.UserID, &book.CreatedAt, &book.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("error scanning book: %w", err)
		}
		books = append(books, &book)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over book rows: %w", err)
	}

	return books, nil
}

// TitleExists reports whether any user already has a book with this title
func (r *SQLiteBookRepository) TitleExists(ctx context.Context, title string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM books WHERE title = ?)`
	row := r.db.QueryRowContext(ctx, query, title)

	var exists bool
	if err := row.Scan(&exists); err != nil {
		return false, fmt.Errorf("error checking book title: %w", err)
	}

	return exists, nil
}

// UpdateRating sets a new rating on the book, restricted to the owning user
func (r *SQLiteBookRepository) UpdateRating(ctx context.Context, id, ownerID int64, rating float64) error {
	query := `UPDATE books SET rating = ?, updated_at = ? WHERE id = ? AND user_id = ?`
	res, err := util.RetryOnLockWithResult(func() (sql.Result, error) {
		return r.db.ExecContext(ctx, query, rating, time.Now(), id, ownerID)
	})
	if err != nil {
		return fmt.Errorf("error updating book rating: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading affected rows: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

// Delete removes a book, restricted to the owning user
func (r *SQLiteBookRepository) Delete(ctx context.Context, id, ownerID int64) error {
	query := `DELETE FROM books WHERE id = ? AND user_id = ?`
	res, err := util.RetryOnLockWithResult(func() (sql.Result, error) {
		return r.db.ExecContext(ctx, query, id, ownerID)
	})
	if err != nil {
		return fmt.Errorf("error deleting book: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading affected rows: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	return nil
}
