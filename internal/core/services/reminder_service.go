package services

import (
	"context"
	"fmt"
	"log"

	"perpus-backend/internal/adapters/persistence/models"
	"perpus-backend/internal/adapters/persistence/repositories"
	"perpus-backend/internal/pkg/lending"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// reminderSchedule fires the overdue scan every morning
const reminderSchedule = "0 8 * * *"

// ReminderService runs the daily overdue reminder job. It only reads
// the derived overdue view and writes notifications; loan status is
// never mutated here.
type ReminderService struct {
	loanRepo  *repositories.LoanRepository
	notifRepo *repositories.NotificationRepository
	cron      *cron.Cron
}

// NewReminderService creates a new reminder service
func NewReminderService(db *gorm.DB) *ReminderService {
	return &ReminderService{
		loanRepo:  repositories.NewLoanRepository(db),
		notifRepo: repositories.NewNotificationRepository(db),
		cron:      cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger))),
	}
}

// Start schedules the daily overdue scan
func (s *ReminderService) Start() {
	_, err := s.cron.AddFunc(reminderSchedule, func() {
		if err := s.NotifyOverdue(context.Background()); err != nil {
			log.Printf("❌ Overdue reminder run failed: %v", err)
		}
	})
	if err != nil {
		log.Printf("❌ Failed to schedule overdue reminder: %v", err)
		return
	}

	s.cron.Start()
	log.Println("🔔 Overdue reminder job scheduled (daily 08:00)")
}

// Stop stops the cron scheduler
func (s *ReminderService) Stop() {
	s.cron.Stop()
}

// NotifyOverdue creates a notification for every borrowed loan past
// its due date, at most once per loan per day. Loans still awaiting
// pickup are skipped: they hold no book yet and have no deadline a
// reminder could reference.
func (s *ReminderService) NotifyOverdue(ctx context.Context) error {
	today := lending.Today()

	loans, err := s.loanRepo.ListOverdue(ctx, today)
	if err != nil {
		return err
	}

	notified := 0
	for _, loan := range loans {
		exists, err := s.notifRepo.ExistsForLoanSince(ctx, loan.ID, today)
		if err != nil {
			return err
		}
		if exists {
			continue
		}

		daysLate := lending.DaysOverdue(loan.Status, loan.DueDate, today)
		title := "your book"
		if loan.Book != nil {
			title = fmt.Sprintf("%q", loan.Book.Title)
		}

		loanID := loan.ID
		notification := &models.Notification{
			UserID: loan.UserID,
			LoanID: &loanID,
			Message: fmt.Sprintf(
				"%s is %d day(s) overdue. Returning it now costs a fine of %d; every further day adds %d.",
				title, daysLate, lending.FineAmount(daysLate), lending.FinePerDay,
			),
		}
		if err := s.notifRepo.Create(ctx, notification); err != nil {
			return err
		}
		notified++
	}

	if notified > 0 {
		log.Printf("🔔 Overdue reminders sent: %d", notified)
	}
	return nil
}

// Notifications lists a member's notifications
func (s *ReminderService) Notifications(ctx context.Context, userID uint, offset, limit int) ([]*models.Notification, int64, error) {
	return s.notifRepo.ListByUser(ctx, userID, offset, limit)
}

// MarkRead marks one of the member's notifications as read
func (s *ReminderService) MarkRead(ctx context.Context, id, userID uint) error {
	return s.notifRepo.MarkRead(ctx, id, userID)
}
