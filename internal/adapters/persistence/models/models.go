package models

import (
	"time"

	"gorm.io/gorm"

	"perpus-backend/internal/pkg/lending"
)

// User represents the users table
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"size:100;not null" json:"name"`
	Email     string         `gorm:"uniqueIndex;size:100;not null" json:"email"`
	Password  string         `gorm:"size:255;not null" json:"-"`
	Role      string         `gorm:"size:20;default:'USER'" json:"role"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// UserResponse DTO
type UserResponse struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

// RefreshToken represents the refresh_tokens table
type RefreshToken struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"index;not null" json:"user_id"`
	TokenHash string     `gorm:"size:255;not null;index" json:"-"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	RevokedAt *time.Time `gorm:"index" json:"revoked_at"`
	User      User       `gorm:"foreignKey:UserID" json:"-"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

func (rt *RefreshToken) IsRevoked() bool {
	return rt.RevokedAt != nil
}

func (rt *RefreshToken) IsExpired() bool {
	return time.Now().After(rt.ExpiresAt)
}

// Book represents the books table.
// Stock is the number of copies not currently on loan; it is only ever
// changed by the loan lifecycle (one decrement per loan, one increment
// per return) and never goes negative.
type Book struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Title         string    `gorm:"size:255;not null;index" json:"title"`
	Author        string    `gorm:"size:150;not null;index" json:"author"`
	Publisher     string    `gorm:"size:150" json:"publisher"`
	PublishedYear int       `json:"published_year"`
	Stock         int       `gorm:"not null;default:0" json:"stock"`
	CoverImage    string    `gorm:"size:255" json:"cover_image"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Book) TableName() string {
	return "books"
}

// BookWithBorrowCount carries the most-borrowed ranking
type BookWithBorrowCount struct {
	Book
	BorrowCount int64 `json:"borrow_count"`
}

// Loan represents the loans table.
// Status moves awaiting_pickup -> borrowed -> {returned, returned_late};
// the terminal transition happens exactly once, via the return operation.
type Loan struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	UserID     uint       `gorm:"not null;index:idx_loans_user_book" json:"user_id"`
	BookID     uint       `gorm:"not null;index:idx_loans_user_book" json:"book_id"`
	LoanDate   time.Time  `gorm:"type:date;not null" json:"loan_date"`
	DueDate    time.Time  `gorm:"type:date;not null" json:"due_date"`
	ReturnDate *time.Time `gorm:"type:date" json:"return_date"`
	Status     string     `gorm:"size:20;not null;index" json:"status"`
	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Book *Book `gorm:"foreignKey:BookID" json:"book,omitempty"`
	Fine *Fine `gorm:"foreignKey:LoanID" json:"fine,omitempty"`
}

func (Loan) TableName() string {
	return "loans"
}

func (l *Loan) IsTerminal() bool {
	return lending.IsTerminal(l.Status)
}

// LoanResponse DTO for the active-loans view. CurrentStatus and
// DaysLate are derived against today's date, never persisted.
type LoanResponse struct {
	ID            uint       `json:"id"`
	BookID        uint       `json:"book_id"`
	Title         string     `json:"title,omitempty"`
	Author        string     `json:"author,omitempty"`
	Publisher     string     `json:"publisher,omitempty"`
	LoanDate      time.Time  `json:"loan_date"`
	DueDate       time.Time  `json:"due_date"`
	ReturnDate    *time.Time `json:"return_date,omitempty"`
	Status        string     `json:"status"`
	CurrentStatus string     `json:"current_status"`
	DaysLate      int        `json:"days_late"`
	Fine          *Fine      `json:"fine,omitempty"`
}

// ToResponse builds the derived view of a loan as of today
func (l *Loan) ToResponse(today time.Time) *LoanResponse {
	resp := &LoanResponse{
		ID:            l.ID,
		BookID:        l.BookID,
		LoanDate:      l.LoanDate,
		DueDate:       l.DueDate,
		ReturnDate:    l.ReturnDate,
		Status:        l.Status,
		CurrentStatus: lending.DeriveStatus(l.Status, l.DueDate, today),
		DaysLate:      lending.DaysOverdue(l.Status, l.DueDate, today),
		Fine:          l.Fine,
	}

	if l.Book != nil {
		resp.Title = l.Book.Title
		resp.Author = l.Book.Author
		resp.Publisher = l.Book.Publisher
	}

	return resp
}

// Fine represents the fines table. One row per late return, written
// only by the return path; immutable afterwards except PaymentStatus.
type Fine struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	LoanID        uint      `gorm:"uniqueIndex;not null" json:"loan_id"`
	DaysLate      int       `gorm:"not null" json:"days_late"`
	Amount        int64     `gorm:"not null" json:"amount"`
	PaymentStatus string    `gorm:"size:20;not null;default:'unpaid'" json:"payment_status"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Fine) TableName() string {
	return "fines"
}

// Notification represents the notifications table (overdue reminders)
type Notification struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	LoanID    *uint     `gorm:"index" json:"loan_id,omitempty"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	IsRead    bool      `gorm:"not null;default:false" json:"is_read"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}

// AutoMigrate creates or updates all tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&RefreshToken{},
		&Book{},
		&Loan{},
		&Fine{},
		&Notification{},
	)
}
