package domain

import "errors"

// Common errors
var (
	ErrNotFound       = errors.New("resource not found")
	ErrInvalidInput   = errors.New("invalid input")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrInternalServer = errors.New("internal server error")
)

// Account errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidPassword    = errors.New("invalid password")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("token invalid")
	ErrTokenRevoked       = errors.New("token revoked")
)

// Catalog errors
var (
	ErrBookNotFound = errors.New("book not found")

	// ErrStockConflict means a stock update would have driven the
	// count negative. The conditional decrement makes this the same
	// observation as the book simply being unavailable.
	ErrStockConflict = errors.New("stock conflict")
)

// Loan lifecycle errors
var (
	ErrBookUnavailable     = errors.New("book unavailable or out of stock")
	ErrDuplicateActiveLoan = errors.New("active loan already exists for this book")
	ErrLoanNotFound        = errors.New("loan not found")
	ErrAlreadyReturned     = errors.New("loan already returned")
)
