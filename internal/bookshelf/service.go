package bookshelf

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"shelfmark/db"
	"shelfmark/models"
)

var (
	// ErrNotFound covers both a nonexistent book and a book owned by
	// another user; callers cannot tell the two apart.
	ErrNotFound = errors.New("book not found or access denied")

	ErrInvalidRating = errors.New("rating must be between 0 and 10")
)

// Rating bounds, inclusive.
const (
	MinRating = 0.0
	MaxRating = 10.0
)

// Service handles the book list of a single user. Every method takes the
// owner's user id explicitly; nothing is read from ambient state.
type Service struct {
	books  db.BookRepository
	logger *zap.Logger
}

// NewService creates a new bookshelf service
func NewService(books db.BookRepository, logger *zap.Logger) *Service {
	return &Service{books: books, logger: logger}
}

// List returns every book owned by ownerID, oldest first
func (s *Service) List(ctx context.Context, ownerID int64) ([]*models.Book, error) {
	books, err := s.books.FindAllByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("error listing books: %w", err)
	}
	return books, nil
}

// Get loads one of ownerID's books
func (s *Service) Get(ctx context.Context, ownerID, bookID int64) (*models.Book, error) {
	book, err := s.books.FindByIDAndOwner(ctx, bookID, ownerID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error loading book: %w", err)
	}
	return book, nil
}

// Add stores a new book for ownerID. When any user's shelf already holds a
// book with the same title, the add is dropped and Add returns (nil, nil).
// The title check spans the whole store, not just the owner's shelf, and
// it is not atomic with the insert.
func (s *Service) Add(ctx context.Context, ownerID int64, title, author string, rating float64) (*models.Book, error) {
	exists, err := s.books.TitleExists(ctx, title)
	if err != nil {
		return nil, fmt.Errorf("error checking book title: %w", err)
	}
	if exists {
		s.logger.Info("skipping book with duplicate title",
			zap.String("title", title),
			zap.Int64("user_id", ownerID),
		)
		return nil, nil
	}

	book, err := s.books.Create(ctx, &models.Book{
		Title:  title,
		Author: author,
		Rating: rating,
		UserID: ownerID,
	})
	if err != nil {
		return nil, fmt.Errorf("error creating book: %w", err)
	}
	return book, nil
}

// EditRating sets a new rating on one of ownerID's books. Only the rating
// can change after a book is created.
func (s *Service) EditRating(ctx context.Context, ownerID, bookID int64, rating float64) error {
	if rating < MinRating || rating > MaxRating {
		return ErrInvalidRating
	}

	err := s.books.UpdateRating(ctx, bookID, ownerID, rating)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("error updating rating: %w", err)
	}
	return nil
}

// Delete removes one of ownerID's books
func (s *Service) Delete(ctx context.Context, ownerID, bookID int64) error {
	err := s.books.Delete(ctx, bookID, ownerID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("error deleting book: %w", err)
	}
	return nil
}
