package repositories

import (
	"context"
	"time"

	"perpus-backend/internal/adapters/persistence/models"
	"perpus-backend/internal/core/domain"
	"perpus-backend/internal/pkg/lending"

	"gorm.io/gorm"
)

// LoanRepository handles loan ledger data access
type LoanRepository struct {
	db *gorm.DB
}

// NewLoanRepository creates a new loan repository
func NewLoanRepository(db *gorm.DB) *LoanRepository {
	return &LoanRepository{db: db}
}

// Create inserts a new loan
func (r *LoanRepository) Create(ctx context.Context, loan *models.Loan) error {
	return r.db.WithContext(ctx).Create(loan).Error
}

// GetActiveByUserAndBook returns the loan in a non-terminal status for
// the (user, book) pair, or gorm.ErrRecordNotFound if there is none
func (r *LoanRepository) GetActiveByUserAndBook(ctx context.Context, userID, bookID uint) (*models.Loan, error) {
	var loan models.Loan
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND book_id = ?", userID, bookID).
		Where("status IN ?", lending.ActiveStatuses).
		First(&loan).Error
	if err != nil {
		return nil, err
	}
	return &loan, nil
}

// GetOwned gets a loan scoped to its borrower, with book and fine
func (r *LoanRepository) GetOwned(ctx context.Context, loanID, userID uint) (*models.Loan, error) {
	var loan models.Loan
	err := r.db.WithContext(ctx).
		Preload("Book").
		Preload("Fine").
		Where("id = ? AND user_id = ?", loanID, userID).
		First(&loan).Error
	if err != nil {
		return nil, err
	}
	return &loan, nil
}

// MarkReturned writes the terminal status and return date. The status
// predicate guards against a second terminal transition; zero affected
// rows means the loan was already returned.
func (r *LoanRepository) MarkReturned(ctx context.Context, loanID uint, returnDate time.Time, status string) error {
	result := r.db.WithContext(ctx).
		Model(&models.Loan{}).
		Where("id = ?", loanID).
		Where("status IN ?", lending.ActiveStatuses).
		Updates(map[string]interface{}{
			"return_date": returnDate,
			"status":      status,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrAlreadyReturned
	}
	return nil
}

// ListActive lists a user's non-terminal loans, newest first
func (r *LoanRepository) ListActive(ctx context.Context, userID uint) ([]*models.Loan, error) {
	var loans []*models.Loan
	err := r.db.WithContext(ctx).
		Preload("Book").
		Where("user_id = ?", userID).
		Where("status IN ?", lending.ActiveStatuses).
		Order("loan_date DESC").
		Find(&loans).Error
	return loans, err
}

// ListHistory lists a user's terminal loans with any fine, most
// recently returned first
func (r *LoanRepository) ListHistory(ctx context.Context, userID uint, offset, limit int) ([]*models.Loan, int64, error) {
	var loans []*models.Loan
	var total int64

	base := r.db.WithContext(ctx).
		Model(&models.Loan{}).
		Where("user_id = ?", userID).
		Where("status IN ?", lending.TerminalStatuses)

	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.WithContext(ctx).
		Preload("Book").
		Preload("Fine").
		Where("user_id = ?", userID).
		Where("status IN ?", lending.TerminalStatuses).
		Order("return_date DESC").
		Offset(offset).
		Limit(limit).
		Find(&loans).Error

	return loans, total, err
}

// ListOverdue lists borrowed loans past their due date across all
// users, with borrower preloaded. Used by the reminder job.
func (r *LoanRepository) ListOverdue(ctx context.Context, today time.Time) ([]*models.Loan, error) {
	var loans []*models.Loan
	err := r.db.WithContext(ctx).
		Preload("Book").
		Where("status = ?", lending.StatusBorrowed).
		Where("due_date < ?", today).
		Find(&loans).Error
	return loans, err
}

// CountByStatuses counts a user's loans in the given statuses
func (r *LoanRepository) CountByStatuses(ctx context.Context, userID uint, statuses []string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Loan{}).
		Where("user_id = ?", userID).
		Where("status IN ?", statuses).
		Count(&count).Error
	return count, err
}
