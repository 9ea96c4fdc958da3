package apiv1

import (
	"github.com/gofiber/fiber/v2"

	"github.com/nordwerk/teamdesk/app/models"
	"github.com/nordwerk/teamdesk/internal/pkg/usercontext"
)

// GetNotifications lists the caller's notifications, newest first.
func (s *APIServer) GetNotifications(c *fiber.Ctx) error {
	uc := usercontext.GetUserContext(c)
	var notifications []models.Notification
	err := db().Where("tenant_id = ? AND user_id = ?", uc.TenantID, uc.UserID).
		Order("created_at DESC").
		Limit(100).
		Find(&notifications).Error
	if err != nil {
		return internalError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"notifications": notifications})
}

// PostNotificationRead marks one notification as read.
func (s *APIServer) PostNotificationRead(c *fiber.Ctx) error {
	uc := usercontext.GetUserContext(c)
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return badRequest(c, "invalid notification id")
	}

	var notification models.Notification
	err = db().Where("id = ? AND tenant_id = ? AND user_id = ?", id, uc.TenantID, uc.UserID).
		First(&notification).Error
	if err != nil {
		return notFound(c, "notification not found")
	}

	if err := notification.MarkAsRead(db()); err != nil {
		return internalError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true})
}
