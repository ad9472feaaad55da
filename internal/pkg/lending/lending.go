package lending

import (
	"time"
)

const (
	// LoanPeriodDays is the grace period before a loan is due
	LoanPeriodDays = 7

	// FinePerDay is the fine rate in rupiah per day late
	FinePerDay = 1000
)

// Loan statuses as persisted in the loans table
const (
	StatusAwaitingPickup = "awaiting_pickup"
	StatusBorrowed       = "borrowed"
	StatusReturned       = "returned"
	StatusReturnedLate   = "returned_late"
)

// StatusOverdue is a derived, read-time status. It is never written
// to the database; a loan stays in its persisted status until returned.
const StatusOverdue = "overdue"

// Fine payment statuses
const (
	FineUnpaid = "unpaid"
	FinePaid   = "paid"
)

// ActiveStatuses are the non-terminal loan statuses
var ActiveStatuses = []string{StatusAwaitingPickup, StatusBorrowed}

// TerminalStatuses are the loan statuses with no further transitions
var TerminalStatuses = []string{StatusReturned, StatusReturnedLate}

// IsTerminal reports whether a loan status allows no further transitions
func IsTerminal(status string) bool {
	return status == StatusReturned || status == StatusReturnedLate
}

// Today returns the current date with no time-of-day component
func Today() time.Time {
	return DateOf(time.Now())
}

// DateOf truncates t to its calendar date in local time
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DueDate returns the deadline for a loan: loan date + LoanPeriodDays
func DueDate(loanDate time.Time) time.Time {
	return DateOf(loanDate).AddDate(0, 0, LoanPeriodDays)
}

// DaysLate returns the number of calendar days the return exceeds the
// due date, clamped at zero. Returning on the due date itself is not
// late. Both dates are re-anchored to UTC midnight before subtracting
// so the count stays exact across DST transitions, where a local-time
// interval is not a whole multiple of 24 hours.
func DaysLate(dueDate, returnDate time.Time) int {
	days := int(utcMidnight(returnDate).Sub(utcMidnight(dueDate)) / (24 * time.Hour))
	if days < 0 {
		return 0
	}
	return days
}

func utcMidnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// FineAmount returns the fine in rupiah for the given days late
func FineAmount(daysLate int) int64 {
	if daysLate <= 0 {
		return 0
	}
	return int64(daysLate) * FinePerDay
}

// DeriveStatus computes the status shown to the caller for a loan that
// may be past its due date. Shared by every read path so the overdue
// logic cannot diverge between endpoints.
func DeriveStatus(status string, dueDate, today time.Time) string {
	if status == StatusBorrowed && DateOf(today).After(DateOf(dueDate)) {
		return StatusOverdue
	}
	return status
}

// DaysOverdue returns how many days a still-borrowed loan is past due
// as of today; zero for any other status or when not yet due.
func DaysOverdue(status string, dueDate, today time.Time) int {
	if status != StatusBorrowed {
		return 0
	}
	return DaysLate(dueDate, today)
}
