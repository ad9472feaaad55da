package services

import (
	"context"
	"testing"

	"perpus-backend/internal/adapters/persistence/models"
	"perpus-backend/internal/core/domain"
	"perpus-backend/internal/pkg/lending"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// Single connection keeps the in-memory database alive across queries
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, models.AutoMigrate(db))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()
	user := &models.User{
		Name:     "Test User",
		Email:    email,
		Password: "hashed",
		Role:     string(domain.RoleUser),
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func seedBook(t *testing.T, db *gorm.DB, title string, stock int) *models.Book {
	t.Helper()
	book := &models.Book{
		Title:  title,
		Author: "Author",
		Stock:  stock,
	}
	require.NoError(t, db.Create(book).Error)
	return book
}

func bookStock(t *testing.T, db *gorm.DB, bookID uint) int {
	t.Helper()
	var book models.Book
	require.NoError(t, db.First(&book, bookID).Error)
	return book.Stock
}

// backdateLoan shifts a loan's dates into the past so that today is
// daysLate days after the due date.
func backdateLoan(t *testing.T, db *gorm.DB, loanID uint, daysLate int) {
	t.Helper()
	due := lending.Today().AddDate(0, 0, -daysLate)
	loanDate := due.AddDate(0, 0, -lending.LoanPeriodDays)
	err := db.Model(&models.Loan{}).Where("id = ?", loanID).
		Updates(map[string]interface{}{"loan_date": loanDate, "due_date": due}).Error
	require.NoError(t, err)
}

func TestCreateLoan(t *testing.T) {
	db := newTestDB(t)
	svc := NewLoanService(db)
	user := seedUser(t, db, "borrower@example.com")
	book := seedBook(t, db, "Laskar Pelangi", 3)

	loan, err := svc.Create(context.Background(), user.ID, &CreateLoanInput{BookID: book.ID})
	require.NoError(t, err)

	assert.Equal(t, lending.StatusAwaitingPickup, loan.Status)
	assert.Equal(t, lending.Today(), lending.DateOf(loan.LoanDate))
	assert.Equal(t, lending.DueDate(loan.LoanDate), lending.DateOf(loan.DueDate))
	assert.Equal(t, 2, bookStock(t, db, book.ID))
}

func TestCreateLoanMissingBookID(t *testing.T) {
	db := newTestDB(t)
	svc := NewLoanService(db)
	user := seedUser(t, db, "borrower@example.com")

	_, err := svc.Create(context.Background(), user.ID, &CreateLoanInput{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCreateLoanUnknownBook(t *testing.T) {
	db := newTestDB(t)
	svc := NewLoanService(db)
	user := seedUser(t, db, "borrower@example.com")

	_, err := svc.Create(context.Background(), user.ID, &CreateLoanInput{BookID: 999})
	assert.ErrorIs(t, err, domain.ErrBookUnavailable)
}

func TestCreateLoanOutOfStock(t *testing.T) {
	db := newTestDB(t)
	svc := NewLoanService(db)
	user := seedUser(t, db, "borrower@example.com")
	book := seedBook(t, db, "Bumi Manusia", 0)

	_, err := svc.Create(context.Background(), user.ID, &CreateLoanInput{BookID: book.ID})
	assert.ErrorIs(t, err, domain.ErrBookUnavailable)
	assert.Equal(t, 0, bookStock(t, db, book.ID))
}

func TestCreateLoanDuplicateActive(t *testing.T) {
	db := newTestDB(t)
	svc := NewLoanService(db)
	user := seedUser(t, db, "borrower@example.com")
	book := seedBook(t, db, "Laskar Pelangi", 3)

	_, err := svc.Create(context.Background(), user.ID, &CreateLoanInput{BookID: book.ID})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), user.ID, &CreateLoanInput{BookID: book.ID})
	assert.ErrorIs(t, err, domain.ErrDuplicateActiveLoan)

	// The rejected attempt must not touch stock
	assert.Equal(t, 2, bookStock(t, db, book.ID))

	var count int64
	require.NoError(t, db.Model(&models.Loan{}).Where("user_id = ?", user.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestCreateLoanAllowedAfterReturn(t *testing.T) {
	db := newTestDB(t)
	svc := NewLoanService(db)
	user := seedUser(t, db, "borrower@example.com")
	book := seedBook(t, db, "Laskar Pelangi", 1)

	loan, err := svc.Create(context.Background(), user.ID, &CreateLoanInput{BookID: book.ID})
	require.NoError(t, err)
	_, err = svc.Return(context.Background(), user.ID, loan.ID)
	require.NoError(t, err)

	// A terminal loan no longer blocks a new one for the same book
	_, err = svc.Create(context.Background(), user.ID, &CreateLoanInput{BookID: book.ID})
	require.NoError(t, err)
	assert.Equal(t, 0, bookStock(t, db, book.ID))
}

func TestReturnOnTime(t *testing.T) {
	db := newTestDB(t)
	svc := NewLoanService(db)
	user := seedUser(t, db, "borrower@example.com")
	book := seedBook(t, db, "Laskar Pelangi", 2)

	loan, err := svc.Create(context.Background(), user.ID, &CreateLoanInput{BookID: book.ID})
	require.NoError(t, err)

	result, err := svc.Return(context.Background(), user.ID, loan.ID)
	require.NoError(t, err)

	assert.Equal(t, lending.StatusReturned, result.Loan.Status)
	require.NotNil(t, result.Loan.ReturnDate)
	assert.Equal(t, lending.Today(), lending.DateOf(*result.Loan.ReturnDate))
	assert.Nil(t, result.Fine)
	assert.Equal(t, 2, bookStock(t, db, book.ID))

	var fines int64
	require.NoError(t, db.Model(&models.Fine{}).Count(&fines).Error)
	assert.Equal(t, int64(0), fines)
}

func TestReturnLate(t *testing.T) {
	db := newTestDB(t)
	svc := NewLoanService(db)
	user := seedUser(t, db, "borrower@example.com")
	book := seedBook(t, db, "Laskar Pelangi", 2)

	loan, err := svc.Create(context.Background(), user.ID, &CreateLoanInput{BookID: book.ID})
	require.NoError(t, err)
	backdateLoan(t, db, loan.ID, 3)

	result, err := svc.Return(context.Background(), user.ID, loan.ID)
	require.NoError(t, err)

	assert.Equal(t, lending.StatusReturnedLate, result.Loan.Status)
	require.NotNil(t, result.Fine)
	assert.Equal(t, 3, result.Fine.DaysLate)
	assert.Equal(t, int64(3000), result.Fine.Amount)
	assert.Equal(t, lending.FineUnpaid, result.Fine.PaymentStatus)
	assert.Equal(t, 2, bookStock(t, db, book.ID))
}

func TestReturnTwice(t *testing.T) {
	db := newTestDB(t)
	svc := NewLoanService(db)
	user := seedUser(t, db, "borrower@example.com")
	book := seedBook(t, db, "Laskar Pelangi", 2)

	loan, err := svc.Create(context.Background(), user.ID, &CreateLoanInput{BookID: book.ID})
	require.NoError(t, err)

	_, err = svc.Return(context.Background(), user.ID, loan.ID)
	require.NoError(t, err)

	_, err = svc.Return(context.Background(), user.ID, loan.ID)
	assert.ErrorIs(t, err, domain.ErrAlreadyReturned)

	// The second attempt must not double-increment stock
	assert.Equal(t, 2, bookStock(t, db, book.ID))
}

func TestReturnNotOwned(t *testing.T) {
	db := newTestDB(t)
	svc := NewLoanService(db)
	owner := seedUser(t, db, "owner@example.com")
	other := seedUser(t, db, "other@example.com")
	book := seedBook(t, db, "Laskar Pelangi", 2)

	loan, err := svc.Create(context.Background(), owner.ID, &CreateLoanInput{BookID: book.ID})
	require.NoError(t, err)

	_, err = svc.Return(context.Background(), other.ID, loan.ID)
	assert.ErrorIs(t, err, domain.ErrLoanNotFound)
}

func TestReturnUnknownLoan(t *testing.T) {
	db := newTestDB(t)
	svc := NewLoanService(db)
	user := seedUser(t, db, "borrower@example.com")

	_, err := svc.Return(context.Background(), user.ID, 999)
	assert.ErrorIs(t, err, domain.ErrLoanNotFound)
}

func TestLastCopyScenario(t *testing.T) {
	db := newTestDB(t)
	svc := NewLoanService(db)
	userA := seedUser(t, db, "a@example.com")
	userB := seedUser(t, db, "b@example.com")
	book := seedBook(t, db, "Foo", 1)

	loan, err := svc.Create(context.Background(), userA.ID, &CreateLoanInput{BookID: book.ID})
	require.NoError(t, err)
	assert.Equal(t, lending.StatusAwaitingPickup, loan.Status)
	assert.Equal(t, 0, bookStock(t, db, book.ID))

	_, err = svc.Create(context.Background(), userB.ID, &CreateLoanInput{BookID: book.ID})
	assert.ErrorIs(t, err, domain.ErrBookUnavailable)
	assert.Equal(t, 0, bookStock(t, db, book.ID))

	backdateLoan(t, db, loan.ID, 3)
	result, err := svc.Return(context.Background(), userA.ID, loan.ID)
	require.NoError(t, err)

	assert.Equal(t, lending.StatusReturnedLate, result.Loan.Status)
	require.NotNil(t, result.Fine)
	assert.Equal(t, int64(3000), result.Fine.Amount)
	assert.Equal(t, 1, bookStock(t, db, book.ID))
}

func TestMyLoansDerivedStatus(t *testing.T) {
	db := newTestDB(t)
	svc := NewLoanService(db)
	user := seedUser(t, db, "borrower@example.com")
	book := seedBook(t, db, "Laskar Pelangi", 2)

	loan, err := svc.Create(context.Background(), user.ID, &CreateLoanInput{BookID: book.ID})
	require.NoError(t, err)

	// Picked-up loan two days past its due date
	backdateLoan(t, db, loan.ID, 2)
	err = db.Model(&models.Loan{}).Where("id = ?", loan.ID).
		Update("status", lending.StatusBorrowed).Error
	require.NoError(t, err)

	loans, err := svc.MyLoans(context.Background(), user.ID)
	require.NoError(t, err)
	require.Len(t, loans, 1)

	assert.Equal(t, lending.StatusBorrowed, loans[0].Status)
	assert.Equal(t, lending.StatusOverdue, loans[0].CurrentStatus)
	assert.Equal(t, 2, loans[0].DaysLate)
	assert.Equal(t, "Laskar Pelangi", loans[0].Title)
}

func TestMyLoansExcludesTerminal(t *testing.T) {
	db := newTestDB(t)
	svc := NewLoanService(db)
	user := seedUser(t, db, "borrower@example.com")
	book := seedBook(t, db, "Laskar Pelangi", 2)

	loan, err := svc.Create(context.Background(), user.ID, &CreateLoanInput{BookID: book.ID})
	require.NoError(t, err)
	_, err = svc.Return(context.Background(), user.ID, loan.ID)
	require.NoError(t, err)

	loans, err := svc.MyLoans(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Empty(t, loans)
}

func TestHistoryIncludesFine(t *testing.T) {
	db := newTestDB(t)
	svc := NewLoanService(db)
	user := seedUser(t, db, "borrower@example.com")
	book := seedBook(t, db, "Laskar Pelangi", 2)

	loan, err := svc.Create(context.Background(), user.ID, &CreateLoanInput{BookID: book.ID})
	require.NoError(t, err)
	backdateLoan(t, db, loan.ID, 3)
	_, err = svc.Return(context.Background(), user.ID, loan.ID)
	require.NoError(t, err)

	history, total, err := svc.History(context.Background(), user.ID, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, history, 1)

	assert.Equal(t, lending.StatusReturnedLate, history[0].Status)
	assert.Equal(t, lending.StatusReturnedLate, history[0].CurrentStatus)
	assert.Equal(t, 0, history[0].DaysLate)
	require.NotNil(t, history[0].Fine)
	assert.Equal(t, int64(3000), history[0].Fine.Amount)
}

func TestDetail(t *testing.T) {
	db := newTestDB(t)
	svc := NewLoanService(db)
	user := seedUser(t, db, "borrower@example.com")
	other := seedUser(t, db, "other@example.com")
	book := seedBook(t, db, "Laskar Pelangi", 2)

	loan, err := svc.Create(context.Background(), user.ID, &CreateLoanInput{BookID: book.ID})
	require.NoError(t, err)

	detail, err := svc.Detail(context.Background(), user.ID, loan.ID)
	require.NoError(t, err)
	assert.Equal(t, loan.ID, detail.ID)
	assert.Equal(t, "Laskar Pelangi", detail.Title)

	_, err = svc.Detail(context.Background(), other.ID, loan.ID)
	assert.ErrorIs(t, err, domain.ErrLoanNotFound)
}
