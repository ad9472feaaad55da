package handlers

import (
	"errors"

	"perpus-backend/internal/core/domain"
	"perpus-backend/internal/core/services"
	"perpus-backend/internal/pkg/lending"
	"perpus-backend/internal/pkg/pagination"
	"perpus-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// LoanHandler handles loan lifecycle endpoints
type LoanHandler struct {
	loanService *services.LoanService
}

// NewLoanHandler creates a new loan handler
func NewLoanHandler(loanService *services.LoanService) *LoanHandler {
	return &LoanHandler{loanService: loanService}
}

// CreateLoanRequest represents loan creation request body
type CreateLoanRequest struct {
	BookID uint `json:"book_id"`
}

// Create handles borrowing a book
// @Summary Borrow a book
// @Description Create a new loan for the authenticated user
// @Tags Loans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateLoanRequest true "Loan data"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /loans [post]
func (h *LoanHandler) Create(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req CreateLoanRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	loan, err := h.loanService.Create(c.Context(), userID, &services.CreateLoanInput{
		BookID: req.BookID,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			return response.BadRequest(c, "Book ID is required")
		case errors.Is(err, domain.ErrBookUnavailable):
			return response.BadRequest(c, "Book is out of stock")
		case errors.Is(err, domain.ErrDuplicateActiveLoan):
			return response.BadRequest(c, "You already have an active loan for this book")
		default:
			return response.InternalServerError(c, "Failed to create loan")
		}
	}

	return response.Created(c, "Book borrowed successfully", loan.ToResponse(lending.Today()))
}

// Return handles returning a borrowed book
// @Summary Return a book
// @Description Return a borrowed book, settling any late fine
// @Tags Loans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Loan ID"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /loans/{id}/return [put]
func (h *LoanHandler) Return(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	loanID, err := c.ParamsInt("id")
	if err != nil || loanID <= 0 {
		return response.BadRequest(c, "Invalid loan ID")
	}

	result, err := h.loanService.Return(c.Context(), userID, uint(loanID))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrLoanNotFound):
			return response.NotFound(c, "Loan not found")
		case errors.Is(err, domain.ErrAlreadyReturned):
			return response.BadRequest(c, "Loan has already been returned")
		default:
			return response.InternalServerError(c, "Failed to return book")
		}
	}

	return response.Success(c, "Book returned successfully", fiber.Map{
		"loan": result.Loan.ToResponse(lending.Today()),
		"fine": result.Fine,
	})
}

// MyLoans lists the user's active loans
// @Summary List active loans
// @Description List the authenticated user's active loans with live status
// @Tags Loans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /loans [get]
func (h *LoanHandler) MyLoans(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	loans, err := h.loanService.MyLoans(c.Context(), userID)
	if err != nil {
		return response.InternalServerError(c, "Failed to fetch loans")
	}

	return response.SuccessCount(c, "Loans retrieved successfully", loans, len(loans))
}

// History lists the user's completed loans
// @Summary Loan history
// @Description List the authenticated user's returned loans, newest first
// @Tags Loans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /loans/history [get]
func (h *LoanHandler) History(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	p := pagination.FromRequest(c)
	loans, total, err := h.loanService.History(c.Context(), userID, p.Offset, p.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to fetch loan history")
	}

	return response.Success(c, "Loan history retrieved successfully", pagination.NewPaged(loans, p, total))
}

// Detail returns a single loan owned by the user
// @Summary Loan detail
// @Description Get a single loan by ID with live status and fine
// @Tags Loans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Loan ID"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /loans/{id} [get]
func (h *LoanHandler) Detail(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	loanID, err := c.ParamsInt("id")
	if err != nil || loanID <= 0 {
		return response.BadRequest(c, "Invalid loan ID")
	}

	loan, err := h.loanService.Detail(c.Context(), userID, uint(loanID))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrLoanNotFound):
			return response.NotFound(c, "Loan not found")
		default:
			return response.InternalServerError(c, "Failed to fetch loan")
		}
	}

	return response.Success(c, "Loan retrieved successfully", loan)
}
