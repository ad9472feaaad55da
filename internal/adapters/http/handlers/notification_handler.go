package handlers

import (
	"errors"

	"perpus-backend/internal/core/services"
	"perpus-backend/internal/pkg/pagination"
	"perpus-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// NotificationHandler handles overdue reminder endpoints
type NotificationHandler struct {
	reminderService *services.ReminderService
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(reminderService *services.ReminderService) *NotificationHandler {
	return &NotificationHandler{reminderService: reminderService}
}

// List lists the user's notifications
// @Summary List notifications
// @Description List the authenticated user's notifications, newest first
// @Tags Notifications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /notifications [get]
func (h *NotificationHandler) List(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	p := pagination.FromRequest(c)
	notifications, total, err := h.reminderService.Notifications(c.Context(), userID, p.Offset, p.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to fetch notifications")
	}

	return response.Success(c, "Notifications retrieved successfully", pagination.NewPaged(notifications, p, total))
}

// MarkRead marks a notification as read
// @Summary Mark notification read
// @Description Mark one of the user's notifications as read
// @Tags Notifications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Notification ID"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /notifications/{id}/read [put]
func (h *NotificationHandler) MarkRead(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return response.BadRequest(c, "Invalid notification ID")
	}

	if err := h.reminderService.MarkRead(c.Context(), uint(id), userID); err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return response.NotFound(c, "Notification not found")
		default:
			return response.InternalServerError(c, "Failed to mark notification as read")
		}
	}

	return response.Success(c, "Notification marked as read", nil)
}
