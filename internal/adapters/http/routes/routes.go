package routes

import (
	"path/filepath"
	"time"

	"perpus-backend/internal/adapters/http/handlers"
	"perpus-backend/internal/adapters/http/middleware"
	"perpus-backend/internal/adapters/persistence/repositories"
	"perpus-backend/internal/config"
	"perpus-backend/internal/core/services"
	"perpus-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"gorm.io/gorm"
)

// Setup configures all routes for the application
func Setup(app *fiber.App, db *gorm.DB, reminderService *services.ReminderService, cfg *config.Config) {
	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	refreshTokenRepo := repositories.NewRefreshTokenRepository(db)
	bookRepo := repositories.NewBookRepository(db)
	loanRepo := repositories.NewLoanRepository(db)
	fineRepo := repositories.NewFineRepository(db)

	// Initialize services
	authService := services.NewAuthService(userRepo, refreshTokenRepo, cfg)
	bookService := services.NewBookService(bookRepo)
	loanService := services.NewLoanService(db)
	userService := services.NewUserService(userRepo, loanRepo, fineRepo)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler()
	authHandler := handlers.NewAuthHandler(authService, cfg)
	bookHandler := handlers.NewBookHandler(bookService, cfg)
	loanHandler := handlers.NewLoanHandler(loanService)
	userHandler := handlers.NewUserHandler(userService)
	notificationHandler := handlers.NewNotificationHandler(reminderService)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// Uploaded cover images
	app.Static("/uploads", filepath.Clean(cfg.UploadDir))

	api := app.Group("/api")

	// Auth routes (public, rate limited)
	authRoutes := api.Group("/auth")
	setupAuthRoutes(authRoutes, authHandler, cfg)

	// Book catalog routes (public)
	bookRoutes := api.Group("/books")
	setupBookRoutes(bookRoutes, bookHandler, cfg)

	// Loan routes (authenticated users)
	loanRoutes := api.Group("/loans")
	loanRoutes.Use(middleware.AuthMiddleware(cfg))
	setupLoanRoutes(loanRoutes, loanHandler)

	// User profile routes (authenticated users)
	userRoutes := api.Group("/users")
	userRoutes.Use(middleware.AuthMiddleware(cfg))
	setupUserRoutes(userRoutes, userHandler)

	// Notification routes (authenticated users)
	notificationRoutes := api.Group("/notifications")
	notificationRoutes.Use(middleware.AuthMiddleware(cfg))
	setupNotificationRoutes(notificationRoutes, notificationHandler)

	// 404 fallback
	app.Use(func(c *fiber.Ctx) error {
		return response.NotFound(c, "Route not found")
	})
}

// setupAuthRoutes configures authentication routes
func setupAuthRoutes(router fiber.Router, handler *handlers.AuthHandler, cfg *config.Config) {
	router.Use(middleware.NoCacheHeaders())

	// Public routes
	router.Post("/register", middleware.AuthRateLimiter(), handler.Register)
	router.Post("/login", middleware.AuthRateLimiter(), handler.Login)
	router.Post("/refresh", handler.Refresh)
	router.Post("/logout", handler.Logout)

	// Protected routes
	router.Get("/me", middleware.AuthMiddleware(cfg), handler.Me)
	router.Post("/logout-all", middleware.AuthMiddleware(cfg), handler.LogoutAll)
}

// setupBookRoutes configures catalog routes
func setupBookRoutes(router fiber.Router, handler *handlers.BookHandler, cfg *config.Config) {
	router.Get("/", handler.List)
	router.Get("/popular", middleware.CacheControl(5*time.Minute), handler.Popular)
	router.Get("/latest", middleware.CacheControl(5*time.Minute), handler.Latest)
	router.Get("/search", handler.Search)
	router.Get("/:id", handler.Detail)

	// Admin only
	router.Put("/:id/cover", middleware.AuthMiddleware(cfg), middleware.AdminOnly(), handler.UploadCover)
}

// setupLoanRoutes configures loan lifecycle routes
func setupLoanRoutes(router fiber.Router, handler *handlers.LoanHandler) {
	router.Post("/", handler.Create)
	router.Get("/", handler.MyLoans)
	router.Get("/history", handler.History)
	router.Get("/:id", handler.Detail)
	router.Put("/:id/return", handler.Return)
}

// setupUserRoutes configures profile routes
func setupUserRoutes(router fiber.Router, handler *handlers.UserHandler) {
	router.Get("/profile", handler.Profile)
	router.Put("/profile", handler.UpdateProfile)
	router.Put("/password", handler.ChangePassword)
	router.Get("/stats", handler.Stats)
}

// setupNotificationRoutes configures notification routes
func setupNotificationRoutes(router fiber.Router, handler *handlers.NotificationHandler) {
	router.Get("/", handler.List)
	router.Put("/:id/read", handler.MarkRead)
}
