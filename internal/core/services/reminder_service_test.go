package services

import (
	"context"
	"testing"

	"perpus-backend/internal/adapters/persistence/models"
	"perpus-backend/internal/pkg/lending"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestNotifyOverdue(t *testing.T) {
	db := newTestDB(t)
	loanSvc := NewLoanService(db)
	svc := NewReminderService(db)
	user := seedUser(t, db, "budi@example.com")
	book := seedBook(t, db, "Laskar Pelangi", 1)

	loan, err := loanSvc.Create(context.Background(), user.ID, &CreateLoanInput{BookID: book.ID})
	require.NoError(t, err)
	backdateLoan(t, db, loan.ID, 2)
	require.NoError(t, db.Model(&models.Loan{}).Where("id = ?", loan.ID).
		Update("status", lending.StatusBorrowed).Error)

	require.NoError(t, svc.NotifyOverdue(context.Background()))

	notifications, total, err := svc.Notifications(context.Background(), user.ID, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, notifications, 1)

	assert.Equal(t, user.ID, notifications[0].UserID)
	require.NotNil(t, notifications[0].LoanID)
	assert.Equal(t, loan.ID, *notifications[0].LoanID)
	assert.Contains(t, notifications[0].Message, "Laskar Pelangi")
	assert.Contains(t, notifications[0].Message, "2 day(s) overdue")
	assert.False(t, notifications[0].IsRead)
}

func TestNotifyOverdueDedupsSameDay(t *testing.T) {
	db := newTestDB(t)
	loanSvc := NewLoanService(db)
	svc := NewReminderService(db)
	user := seedUser(t, db, "budi@example.com")
	book := seedBook(t, db, "Laskar Pelangi", 1)

	loan, err := loanSvc.Create(context.Background(), user.ID, &CreateLoanInput{BookID: book.ID})
	require.NoError(t, err)
	backdateLoan(t, db, loan.ID, 2)
	require.NoError(t, db.Model(&models.Loan{}).Where("id = ?", loan.ID).
		Update("status", lending.StatusBorrowed).Error)

	require.NoError(t, svc.NotifyOverdue(context.Background()))
	require.NoError(t, svc.NotifyOverdue(context.Background()))

	_, total, err := svc.Notifications(context.Background(), user.ID, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

func TestNotifyOverdueSkipsAwaitingPickup(t *testing.T) {
	db := newTestDB(t)
	loanSvc := NewLoanService(db)
	svc := NewReminderService(db)
	user := seedUser(t, db, "budi@example.com")
	book := seedBook(t, db, "Laskar Pelangi", 1)

	// Past due but never picked up
	loan, err := loanSvc.Create(context.Background(), user.ID, &CreateLoanInput{BookID: book.ID})
	require.NoError(t, err)
	backdateLoan(t, db, loan.ID, 2)

	require.NoError(t, svc.NotifyOverdue(context.Background()))

	_, total, err := svc.Notifications(context.Background(), user.ID, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
}

func TestNotifyOverdueSkipsCurrentLoans(t *testing.T) {
	db := newTestDB(t)
	loanSvc := NewLoanService(db)
	svc := NewReminderService(db)
	user := seedUser(t, db, "budi@example.com")
	book := seedBook(t, db, "Laskar Pelangi", 1)

	loan, err := loanSvc.Create(context.Background(), user.ID, &CreateLoanInput{BookID: book.ID})
	require.NoError(t, err)
	require.NoError(t, db.Model(&models.Loan{}).Where("id = ?", loan.ID).
		Update("status", lending.StatusBorrowed).Error)

	require.NoError(t, svc.NotifyOverdue(context.Background()))

	_, total, err := svc.Notifications(context.Background(), user.ID, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
}

func TestMarkRead(t *testing.T) {
	db := newTestDB(t)
	svc := NewReminderService(db)
	user := seedUser(t, db, "budi@example.com")
	other := seedUser(t, db, "siti@example.com")

	notification := &models.Notification{UserID: user.ID, Message: "test"}
	require.NoError(t, db.Create(notification).Error)

	// Another member cannot touch it
	err := svc.MarkRead(context.Background(), notification.ID, other.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	require.NoError(t, svc.MarkRead(context.Background(), notification.ID, user.ID))

	var stored models.Notification
	require.NoError(t, db.First(&stored, notification.ID).Error)
	assert.True(t, stored.IsRead)
}
