package services

import (
	"context"
	"errors"

	"perpus-backend/internal/adapters/persistence/models"
	"perpus-backend/internal/adapters/persistence/repositories"
	"perpus-backend/internal/core/domain"
	"perpus-backend/internal/pkg/lending"

	"gorm.io/gorm"
)

// LoanService owns the loan lifecycle. It is the only writer of
// Loan.Status and Book.Stock: both change together inside one database
// transaction or not at all, so the stock count and the loan rows can
// never be observed in an inconsistent combination.
type LoanService struct {
	db *gorm.DB
}

// NewLoanService creates a new loan service
func NewLoanService(db *gorm.DB) *LoanService {
	return &LoanService{db: db}
}

// CreateLoanInput represents a borrow request. The single field is
// checked in Create directly rather than through the validator.
type CreateLoanInput struct {
	BookID uint `json:"book_id"`
}

// ReturnResult carries the outcome of a return operation
type ReturnResult struct {
	Loan *models.Loan `json:"loan"`
	Fine *models.Fine `json:"fine"`
}

// Create reserves a book for a borrower. The new loan starts in
// awaiting_pickup and the book's stock is decremented in the same
// transaction; the gorm.Transaction closure commits on nil return and
// rolls everything back on any error.
func (s *LoanService) Create(ctx context.Context, userID uint, input *CreateLoanInput) (*models.Loan, error) {
	if input.BookID == 0 {
		return nil, domain.ErrInvalidInput
	}

	var loan *models.Loan
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		books := repositories.NewBookRepository(tx)
		loans := repositories.NewLoanRepository(tx)

		if _, err := books.GetAvailable(ctx, input.BookID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrBookUnavailable
			}
			return err
		}

		_, err := loans.GetActiveByUserAndBook(ctx, userID, input.BookID)
		if err == nil {
			return domain.ErrDuplicateActiveLoan
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		loanDate := lending.Today()
		loan = &models.Loan{
			UserID:   userID,
			BookID:   input.BookID,
			LoanDate: loanDate,
			DueDate:  lending.DueDate(loanDate),
			Status:   lending.StatusAwaitingPickup,
		}
		if err := loans.Create(ctx, loan); err != nil {
			return err
		}

		// Conditional decrement re-verified by affected rows. A
		// concurrent borrower who took the last copy after our
		// availability check surfaces here and aborts the whole
		// transaction, loan row included.
		if err := books.DecrementStock(ctx, input.BookID); err != nil {
			if errors.Is(err, domain.ErrStockConflict) {
				return domain.ErrBookUnavailable
			}
			return err
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return loan, nil
}

// Return closes a loan: terminal status, return date, stock increment
// and any fine are written in one transaction. The operation is
// rejected for loans the caller does not own and for loans already in
// a terminal status.
func (s *LoanService) Return(ctx context.Context, userID, loanID uint) (*ReturnResult, error) {
	result := &ReturnResult{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		loans := repositories.NewLoanRepository(tx)
		books := repositories.NewBookRepository(tx)
		fines := repositories.NewFineRepository(tx)

		loan, err := loans.GetOwned(ctx, loanID, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrLoanNotFound
			}
			return err
		}

		if loan.IsTerminal() {
			return domain.ErrAlreadyReturned
		}

		returnDate := lending.Today()
		daysLate := lending.DaysLate(loan.DueDate, returnDate)
		status := lending.StatusReturned
		if daysLate > 0 {
			status = lending.StatusReturnedLate
		}

		if err := loans.MarkReturned(ctx, loan.ID, returnDate, status); err != nil {
			return err
		}

		// A lent book is always returnable; each increment matches
		// exactly one decrement made when the loan was created.
		if err := books.IncrementStock(ctx, loan.BookID); err != nil {
			return err
		}

		if daysLate > 0 {
			fine := &models.Fine{
				LoanID:        loan.ID,
				DaysLate:      daysLate,
				Amount:        lending.FineAmount(daysLate),
				PaymentStatus: lending.FineUnpaid,
			}
			if err := fines.Create(ctx, fine); err != nil {
				return err
			}
			result.Fine = fine
		}

		loan.ReturnDate = &returnDate
		loan.Status = status
		result.Loan = loan
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// MyLoans lists the caller's non-terminal loans with the derived
// current status and days late computed against today's date
func (s *LoanService) MyLoans(ctx context.Context, userID uint) ([]*models.LoanResponse, error) {
	loans, err := repositories.NewLoanRepository(s.db).ListActive(ctx, userID)
	if err != nil {
		return nil, err
	}

	today := lending.Today()
	responses := make([]*models.LoanResponse, 0, len(loans))
	for _, loan := range loans {
		responses = append(responses, loan.ToResponse(today))
	}
	return responses, nil
}

// History lists the caller's terminal loans joined with any fine
func (s *LoanService) History(ctx context.Context, userID uint, offset, limit int) ([]*models.LoanResponse, int64, error) {
	loans, total, err := repositories.NewLoanRepository(s.db).ListHistory(ctx, userID, offset, limit)
	if err != nil {
		return nil, 0, err
	}

	today := lending.Today()
	responses := make([]*models.LoanResponse, 0, len(loans))
	for _, loan := range loans {
		responses = append(responses, loan.ToResponse(today))
	}
	return responses, total, nil
}

// Detail gets one of the caller's loans with book and fine
func (s *LoanService) Detail(ctx context.Context, userID, loanID uint) (*models.LoanResponse, error) {
	loan, err := repositories.NewLoanRepository(s.db).GetOwned(ctx, loanID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrLoanNotFound
		}
		return nil, err
	}

	return loan.ToResponse(lending.Today()), nil
}
