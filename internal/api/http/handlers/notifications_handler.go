package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/pod-tracker/internal/api/dto"
	"github.com/spec-kit/pod-tracker/internal/auth"
	"github.com/spec-kit/pod-tracker/internal/service"
	apperrors "github.com/spec-kit/pod-tracker/pkg/util/errorutil"
)

// NotificationsHandler manages the per-recipient notification feed.
type NotificationsHandler struct {
	feed *service.FeedService
}

// NewNotificationsHandler constructs handler.
func NewNotificationsHandler(feedService *service.FeedService) *NotificationsHandler {
	return &NotificationsHandler{feed: feedService}
}

// List GET /notifications.
func (h *NotificationsHandler) List(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Identity == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	unreadOnly := c.Query("unread") == "true"
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 20)
	notifications, err := h.feed.List(c.Context(), principal.Identity.ID, unreadOnly, pageSize, (page-1)*pageSize)
	if err != nil {
		return err
	}
	items := make([]dto.NotificationResponse, 0, len(notifications))
	for _, n := range notifications {
		items = append(items, dto.NotificationResponse{
			ID:        n.ID,
			Message:   n.Message,
			PodID:     n.PodID,
			IssueID:   n.IssueID,
			ActorID:   n.ActorID,
			Read:      n.Read,
			CreatedAt: n.CreatedAt,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

// MarkRead POST /notifications/:id/read.
func (h *NotificationsHandler) MarkRead(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Identity == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	if err := h.feed.MarkRead(c.Context(), principal.Identity.ID, c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"read": true}})
}

// UnreadCount GET /notifications/unread-count.
func (h *NotificationsHandler) UnreadCount(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Identity == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	count, err := h.feed.CountUnread(c.Context(), principal.Identity.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.UnreadCountResponse{Unread: count}})
}
