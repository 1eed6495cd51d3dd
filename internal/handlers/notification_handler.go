package handlers

import (
	"net/http"

	"github.com/campus-stack/testing-service/internal/services"
	"github.com/campus-stack/testing-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	BaseHandler
	notificationService services.NotificationService
}

func NewNotificationHandler(notificationService services.NotificationService, logger utils.Logger) *NotificationHandler {
	return &NotificationHandler{
		BaseHandler:         NewBaseHandler(logger),
		notificationService: notificationService,
	}
}

func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}

	notifications, err := h.notificationService.ListOwn(c.Request.Context(), *actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, notifications)
}

func (h *NotificationHandler) ClearNotifications(c *gin.Context) {
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}
	h.LogRequest(c, "Clearing notifications", "user_id", actor.UserID)

	if err := h.notificationService.ClearOwn(c.Request.Context(), *actor); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Notifications cleared"})
}
