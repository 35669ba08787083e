package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"shelfmark/models"
)

// PostgresUserRepository implements the UserRepository interface for PostgreSQL
type PostgresUserRepository struct {
	db *sql.DB
}

// NewPostgresUserRepository creates a new PostgresUserRepository
func NewPostgresUserRepository(db *sql.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

// Close closes the database connection
func (r *PostgresUserRepository) Close() error {
	return r.db.Close()
}

// Create inserts a new user and fills in the generated id
func (r *PostgresUserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}

	query := `INSERT INTO users (email, name, password_hash, created_at) VALUES ($1, $2, $3, $4) RETURNING id`
	err := r.db.QueryRowContext(ctx, query, user.Email, user.Name, user.PasswordHash, user.CreatedAt).Scan(&user.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("error inserting user: %w", err)
	}

	return user, nil
}

// FindByEmail finds a user by email
func (r *PostgresUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT id, email, name, password_hash, created_at FROM users WHERE email = $1`
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
func (r *PostgresUserRepository) FindByID(ctx context.Context, id int64) (*models.User, error) {
	query := `SELECT id, email, name, password_hash, created_at FROM users WHERE id = $1`
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

// PostgresBookRepository implements the BookRepository interface for PostgreSQL
type PostgresBookRepository struct {
	db *sql.DB
}

// NewPostgresBookRepository creates a new PostgresBookRepository
func NewPostgresBookRepository(db *sql.DB) *PostgresBookRepository {
	return &PostgresBookRepository{db: db}
}

// Close closes the database connection
func (r *PostgresBookRepository) Close() error {
	return r.db.Close()
}

// Create inserts a new book and fills in the generated id
func (r *PostgresBookRepository) Create(ctx context.Context, book *models.Book) (*models.Book, error) {
	now := time.Now()
	if book.CreatedAt.IsZero() {
		book.CreatedAt = now
	}
	if book.UpdatedAt.IsZero() {
		book.UpdatedAt = now
	}

	query := `INSERT INTO books (title, author, rating, user_id, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	err := r.db.QueryRowContext(ctx, query, book.Title, book.Author, book.Rating, book.UserID, book.CreatedAt, book.UpdatedAt).Scan(&book.ID)
	if err != nil {
		return nil, fmt.Errorf("error inserting book: %w", err)
	}

	return book, nil
}

// FindByIDAndOwner finds a book by id, restricted to the owning user
func (r *PostgresBookRepository) FindByIDAndOwner(ctx context.Context, id, ownerID int64) (*models.Book, error) {
	query := `SELECT id, title, author, rating, user_id, created_at, updated_at FROM books WHERE id = $1 AND user_id = $2`
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
func (r *PostgresBookRepository) FindAllByOwner(ctx context.Context, ownerID int64) ([]*models.Book, error) {
	query := `SELECT id, title, author, rating, user_id, created_at, updated_at FROM books WHERE user_id = $1 ORDER BY id`
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
func (r *PostgresBookRepository) TitleExists(ctx context.Context, title string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM books WHERE title = $1)`
	row := r.db.QueryRowContext(ctx, query, title)

	var exists bool
	if err := row.Scan(&exists); err != nil {
		return false, fmt.Errorf("error checking book title: %w", err)
	}

	return exists, nil
}

// UpdateRating sets a new rating on the book, restricted to the owning user
func (r *PostgresBookRepository) UpdateRating(ctx context.Context, id, ownerID int64, rating float64) error {
	query := `UPDATE books SET rating = $1, updated_at = $2 WHERE id = $3 AND user_id = $4`
	res, err := r.db.ExecContext(ctx, query, rating, time.Now(), id, ownerID)
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
func (r *PostgresBookRepository) Delete(ctx context.Context, id, ownerID int64) error {
	query := `DELETE FROM books WHERE id = $1 AND user_id = $2`
	res, err := r.db.ExecContext(ctx, query, id, ownerID)
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
