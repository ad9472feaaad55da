package repositories

import (
	"context"

	"perpus-backend/internal/adapters/persistence/models"
	"perpus-backend/internal/pkg/lending"

	"gorm.io/gorm"
)

// FineRepository handles fine data access
type FineRepository struct {
	db *gorm.DB
}

// NewFineRepository creates a new fine repository
func NewFineRepository(db *gorm.DB) *FineRepository {
	return &FineRepository{db: db}
}

// Create inserts a new fine
func (r *FineRepository) Create(ctx context.Context, fine *models.Fine) error {
	return r.db.WithContext(ctx).Create(fine).Error
}

// GetByLoanID gets the fine for a loan, if any
func (r *FineRepository) GetByLoanID(ctx context.Context, loanID uint) (*models.Fine, error) {
	var fine models.Fine
	err := r.db.WithContext(ctx).Where("loan_id = ?", loanID).First(&fine).Error
	if err != nil {
		return nil, err
	}
	return &fine, nil
}

// TotalUnpaidByUser sums a user's unpaid fines
func (r *FineRepository) TotalUnpaidByUser(ctx context.Context, userID uint) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.Fine{}).
		Select("COALESCE(SUM(fines.amount), 0)").
		Joins("JOIN loans ON loans.id = fines.loan_id").
		Where("loans.user_id = ?", userID).
		Where("fines.payment_status = ?", lending.FineUnpaid).
		Scan(&total).Error
	return total, err
}
