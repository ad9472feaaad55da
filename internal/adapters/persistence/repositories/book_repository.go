package repositories

import (
	"context"

	"perpus-backend/internal/adapters/persistence/models"
	"perpus-backend/internal/core/domain"

	"gorm.io/gorm"
)

// BookRepository handles book catalog data access. Constructed over a
// plain *gorm.DB for reads, or over a transaction handle when the loan
// lifecycle needs stock updates inside its transaction.
type BookRepository struct {
	db *gorm.DB
}

// NewBookRepository creates a new book repository
func NewBookRepository(db *gorm.DB) *BookRepository {
	return &BookRepository{db: db}
}

// GetByID gets a book by ID
func (r *BookRepository) GetByID(ctx context.Context, id uint) (*models.Book, error) {
	var book models.Book
	err := r.db.WithContext(ctx).First(&book, id).Error
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// GetAvailable gets a book only if it has stock left
func (r *BookRepository) GetAvailable(ctx context.Context, id uint) (*models.Book, error) {
	var book models.Book
	err := r.db.WithContext(ctx).
		Where("id = ? AND stock > 0", id).
		First(&book).Error
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// List lists in-stock books, newest first, with optional title and
// author substring filters
func (r *BookRepository) List(ctx context.Context, search, author string) ([]*models.Book, error) {
	var books []*models.Book

	query := r.db.WithContext(ctx).Where("stock > 0")
	if search != "" {
		query = query.Where("title LIKE ?", "%"+search+"%")
	}
	if author != "" {
		query = query.Where("author LIKE ?", "%"+author+"%")
	}

	err := query.Order("created_at DESC").Find(&books).Error
	return books, err
}

// Popular lists the most-borrowed in-stock books
func (r *BookRepository) Popular(ctx context.Context, limit int) ([]*models.BookWithBorrowCount, error) {
	var books []*models.BookWithBorrowCount
	err := r.db.WithContext(ctx).
		Model(&models.Book{}).
		Select("books.*, COUNT(loans.id) AS borrow_count").
		Joins("LEFT JOIN loans ON loans.book_id = books.id").
		Where("books.stock > 0").
		Group("books.id").
		Order("borrow_count DESC").
		Limit(limit).
		Find(&books).Error
	return books, err
}

// Latest lists the most recently added in-stock books
func (r *BookRepository) Latest(ctx context.Context, limit int) ([]*models.Book, error) {
	var books []*models.Book
	err := r.db.WithContext(ctx).
		Where("stock > 0").
		Order("created_at DESC").
		Limit(limit).
		Find(&books).Error
	return books, err
}

// Search does a free-text substring search across title, author and
// publisher of in-stock books
func (r *BookRepository) Search(ctx context.Context, q string) ([]*models.Book, error) {
	var books []*models.Book
	pattern := "%" + q + "%"
	err := r.db.WithContext(ctx).
		Where("(title LIKE ? OR author LIKE ? OR publisher LIKE ?) AND stock > 0",
			pattern, pattern, pattern).
		Order("title ASC").
		Find(&books).Error
	return books, err
}

// DecrementStock takes one copy off the shelf as a single conditional
// update. The stock > 0 predicate re-verified by the affected-row count
// makes the check-then-decrement race-free regardless of isolation level;
// zero rows means the book ran out between check and update.
func (r *BookRepository) DecrementStock(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).
		Model(&models.Book{}).
		Where("id = ? AND stock > 0", id).
		UpdateColumn("stock", gorm.Expr("stock - 1"))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrStockConflict
	}
	return nil
}

// IncrementStock puts one copy back on the shelf. Unconditional: a
// lent book is always returnable, and each increment corresponds to
// exactly one earlier decrement.
func (r *BookRepository) IncrementStock(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).
		Model(&models.Book{}).
		Where("id = ?", id).
		UpdateColumn("stock", gorm.Expr("stock + 1")).Error
}

// UpdateCover stores the uploaded cover image filename
func (r *BookRepository) UpdateCover(ctx context.Context, id uint, filename string) error {
	return r.db.WithContext(ctx).
		Model(&models.Book{}).
		Where("id = ?", id).
		Update("cover_image", filename).Error
}
