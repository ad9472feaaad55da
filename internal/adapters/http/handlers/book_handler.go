package handlers

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"perpus-backend/internal/config"
	"perpus-backend/internal/core/domain"
	"perpus-backend/internal/core/services"
	"perpus-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// BookHandler handles catalog endpoints
type BookHandler struct {
	bookService *services.BookService
	cfg         *config.Config
}

// NewBookHandler creates a new book handler
func NewBookHandler(bookService *services.BookService, cfg *config.Config) *BookHandler {
	return &BookHandler{
		bookService: bookService,
		cfg:         cfg,
	}
}

// List lists available books
// @Summary List available books
// @Description List books with stock, optionally filtered by title or author
// @Tags Books
// @Accept json
// @Produce json
// @Param search query string false "Title filter"
// @Param author query string false "Author filter"
// @Success 200 {object} response.Envelope
// @Router /books [get]
func (h *BookHandler) List(c *fiber.Ctx) error {
	search := strings.TrimSpace(c.Query("search"))
	author := strings.TrimSpace(c.Query("author"))

	books, err := h.bookService.List(c.Context(), search, author)
	if err != nil {
		return response.InternalServerError(c, "Failed to fetch books")
	}

	return response.SuccessCount(c, "Books retrieved successfully", books, len(books))
}

// Popular lists the most borrowed books
// @Summary Popular books
// @Description List the most borrowed books of all time
// @Tags Books
// @Accept json
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /books/popular [get]
func (h *BookHandler) Popular(c *fiber.Ctx) error {
	books, err := h.bookService.Popular(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to fetch popular books")
	}

	return response.SuccessCount(c, "Popular books retrieved successfully", books, len(books))
}

// Latest lists the newest books
// @Summary Latest books
// @Description List the most recently added books
// @Tags Books
// @Accept json
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /books/latest [get]
func (h *BookHandler) Latest(c *fiber.Ctx) error {
	books, err := h.bookService.Latest(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to fetch latest books")
	}

	return response.SuccessCount(c, "Latest books retrieved successfully", books, len(books))
}

// Search searches the catalog
// @Summary Search books
// @Description Search books by title, author or publisher
// @Tags Books
// @Accept json
// @Produce json
// @Param q query string true "Search keyword"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /books/search [get]
func (h *BookHandler) Search(c *fiber.Ctx) error {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		return response.BadRequest(c, "Search keyword is required")
	}

	books, err := h.bookService.Search(c.Context(), q)
	if err != nil {
		return response.InternalServerError(c, "Failed to search books")
	}

	return response.SuccessCount(c, "Books retrieved successfully", books, len(books))
}

// Detail returns a single book
// @Summary Book detail
// @Description Get a single book by ID
// @Tags Books
// @Accept json
// @Produce json
// @Param id path int true "Book ID"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /books/{id} [get]
func (h *BookHandler) Detail(c *fiber.Ctx) error {
	bookID, err := c.ParamsInt("id")
	if err != nil || bookID <= 0 {
		return response.BadRequest(c, "Invalid book ID")
	}

	book, err := h.bookService.Get(c.Context(), uint(bookID))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrBookNotFound):
			return response.NotFound(c, "Book not found")
		default:
			return response.InternalServerError(c, "Failed to fetch book")
		}
	}

	return response.Success(c, "Book retrieved successfully", book)
}

// UploadCover handles cover image upload
// @Summary Upload book cover
// @Description Upload a cover image for a book (admin only)
// @Tags Books
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "Book ID"
// @Param cover formData file true "Cover image"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /books/{id}/cover [put]
func (h *BookHandler) UploadCover(c *fiber.Ctx) error {
	bookID, err := c.ParamsInt("id")
	if err != nil || bookID <= 0 {
		return response.BadRequest(c, "Invalid book ID")
	}

	file, err := c.FormFile("cover")
	if err != nil {
		return response.BadRequest(c, "Cover image is required")
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".webp":
	default:
		return response.BadRequest(c, "Cover must be a jpg, png or webp image")
	}

	filename := fmt.Sprintf("%s%s", uuid.New().String(), ext)
	dest := filepath.Join(h.cfg.UploadDir, "covers", filename)
	if err := c.SaveFile(file, dest); err != nil {
		return response.InternalServerError(c, "Failed to save cover image")
	}

	if err := h.bookService.SetCover(c.Context(), uint(bookID), filename); err != nil {
		switch {
		case errors.Is(err, domain.ErrBookNotFound):
			return response.NotFound(c, "Book not found")
		default:
			return response.InternalServerError(c, "Failed to update book cover")
		}
	}

	return response.Success(c, "Cover uploaded successfully", fiber.Map{
		"cover_image": filename,
	})
}
