package bookshelf

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"shelfmark/db"
	"shelfmark/models"
)

type mockBookRepository struct {
	CreateFunc           func(ctx context.Context, book *models.Book) (*models.Book, error)
	FindByIDAndOwnerFunc func(ctx context.Context, id, ownerID int64) (*models.Book, error)
	FindAllByOwnerFunc   func(ctx context.Context, ownerID int64) ([]*models.Book, error)
	TitleExistsFunc      func(ctx context.Context, title string) (bool, error)
	UpdateRatingFunc     func(ctx context.Context, id, ownerID int64, rating float64) error
	DeleteFunc           func(ctx context.Context, id, ownerID int64) error
}

func (m *mockBookRepository) Close() error { return nil }

func (m *mockBookRepository) Create(ctx context.Context, book *models.Book) (*models.Book, error) {
	return m.CreateFunc(ctx, book)
}

func (m *mockBookRepository) FindByIDAndOwner(ctx context.Context, id, ownerID int64) (*models.Book, error) {
	return m.FindByIDAndOwnerFunc(ctx, id, ownerID)
}

func (m *mockBookRepository) FindAllByOwner(ctx context.Context, ownerID int64) ([]*models.Book, error) {
	return m.FindAllByOwnerFunc(ctx, ownerID)
}

func (m *mockBookRepository) TitleExists(ctx context.Context, title string) (bool, error) {
	return m.TitleExistsFunc(ctx, title)
}

func (m *mockBookRepository) UpdateRating(ctx context.Context, id, ownerID int64, rating float64) error {
	return m.UpdateRatingFunc(ctx, id, ownerID, rating)
}

func (m *mockBookRepository) Delete(ctx context.Context, id, ownerID int64) error {
	return m.DeleteFunc(ctx, id, ownerID)
}

func TestService_Add(t *testing.T) {
	ctx := context.Background()

	t.Run("NewTitle", func(t *testing.T) {
		repo := &mockBookRepository{
			TitleExistsFunc: func(ctx context.Context, title string) (bool, error) {
				return false, nil
			},
			CreateFunc: func(ctx context.Context, book *models.Book) (*models.Book, error) {
				book.ID = 1
				return book, nil
			},
		}

		book, err := NewService(repo, zap.NewNop()).Add(ctx, 7, "Dune", "Frank Herbert", 8.5)
		require.NoError(t, err)
		require.NotNil(t, book)
		assert.Equal(t, int64(1), book.ID)
		assert.Equal(t, int64(7), book.UserID)
		assert.Equal(t, 8.5, book.Rating)
	})

	t.Run("DuplicateTitleSkipped", func(t *testing.T) {
		createCalled := false
		repo := &mockBookRepository{
			TitleExistsFunc: func(ctx context.Context, title string) (bool, error) {
				return true, nil
			},
			CreateFunc: func(ctx context.Context, book *models.Book) (*models.Book, error) {
				createCalled = true
				return book, nil
			},
		}

		// A taken title is dropped silently: no book, no error.
		book, err := NewService(repo, zap.NewNop()).Add(ctx, 7, "Dune", "Frank Herbert", 8.5)
		require.NoError(t, err)
		assert.Nil(t, book)
		assert.False(t, createCalled)
	})
}

func TestService_EditRating(t *testing.T) {
	ctx := context.Background()

	t.Run("Bounds", func(t *testing.T) {
		repoTouched := false
		repo := &mockBookRepository{
			UpdateRatingFunc: func(ctx context.Context, id, ownerID int64, rating float64) error {
				repoTouched = true
				return nil
			},
		}
		service := NewService(repo, zap.NewNop())

		assert.ErrorIs(t, service.EditRating(ctx, 7, 1, -0.5), ErrInvalidRating)
		assert.ErrorIs(t, service.EditRating(ctx, 7, 1, 10.5), ErrInvalidRating)
		assert.False(t, repoTouched)

		// The bounds are inclusive.
		assert.NoError(t, service.EditRating(ctx, 7, 1, 0))
		assert.NoError(t, service.EditRating(ctx, 7, 1, 10))
		assert.NoError(t, service.EditRating(ctx, 7, 1, 7.5))
	})

	t.Run("MissingBook", func(t *testing.T) {
		repo := &mockBookRepository{
			UpdateRatingFunc: func(ctx context.Context, id, ownerID int64, rating float64) error {
				return db.ErrNotFound
			},
		}

		err := NewService(repo, zap.NewNop()).EditRating(ctx, 7, 1, 5)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestService_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("Found", func(t *testing.T) {
		repo := &mockBookRepository{
			FindByIDAndOwnerFunc: func(ctx context.Context, id, ownerID int64) (*models.Book, error) {
				return &models.Book{ID: id, UserID: ownerID, Title: "Dune"}, nil
			},
		}

		book, err := NewService(repo, zap.NewNop()).Get(ctx, 7, 1)
		require.NoError(t, err)
		assert.Equal(t, "Dune", book.Title)
	})

	t.Run("ForeignOrMissing", func(t *testing.T) {
		repo := &mockBookRepository{
			FindByIDAndOwnerFunc: func(ctx context.Context, id, ownerID int64) (*models.Book, error) {
				return nil, db.ErrNotFound
			},
		}

		_, err := NewService(repo, zap.NewNop()).Get(ctx, 7, 1)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestService_Delete(t *testing.T) {
	ctx := context.Background()

	repo := &mockBookRepository{
		DeleteFunc: func(ctx context.Context, id, ownerID int64) error {
			if id == 1 && ownerID == 7 {
				return nil
			}
			return db.ErrNotFound
		},
	}
	service := NewService(repo, zap.NewNop())

	assert.NoError(t, service.Delete(ctx, 7, 1))
	assert.ErrorIs(t, service.Delete(ctx, 8, 1), ErrNotFound)
}
