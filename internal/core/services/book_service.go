package services

import (
	"context"
	"errors"

	"perpus-backend/internal/adapters/persistence/models"
	"perpus-backend/internal/adapters/persistence/repositories"
	"perpus-backend/internal/core/domain"

	"gorm.io/gorm"
)

// rankingLimit caps the popular/latest book listings
const rankingLimit = 10

// BookService handles book catalog reads and cover updates
type BookService struct {
	bookRepo *repositories.BookRepository
}

// NewBookService creates a new book service
func NewBookService(bookRepo *repositories.BookRepository) *BookService {
	return &BookService{bookRepo: bookRepo}
}

// List lists in-stock books with optional title/author filters
func (s *BookService) List(ctx context.Context, search, author string) ([]*models.Book, error) {
	return s.bookRepo.List(ctx, search, author)
}

// Popular lists the most-borrowed books
func (s *BookService) Popular(ctx context.Context) ([]*models.BookWithBorrowCount, error) {
	return s.bookRepo.Popular(ctx, rankingLimit)
}

// Latest lists the most recently added books
func (s *BookService) Latest(ctx context.Context) ([]*models.Book, error) {
	return s.bookRepo.Latest(ctx, rankingLimit)
}

// Search searches title, author and publisher
func (s *BookService) Search(ctx context.Context, q string) ([]*models.Book, error) {
	return s.bookRepo.Search(ctx, q)
}

// Get gets a book by ID
func (s *BookService) Get(ctx context.Context, id uint) (*models.Book, error) {
	book, err := s.bookRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrBookNotFound
		}
		return nil, err
	}
	return book, nil
}

// SetCover records an uploaded cover image filename for a book
func (s *BookService) SetCover(ctx context.Context, id uint, filename string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.bookRepo.UpdateCover(ctx, id, filename)
}
