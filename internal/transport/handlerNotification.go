package transport

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/sekolahdigital/notify-service/internal/delivery"
	"github.com/sekolahdigital/notify-service/internal/entity"
	"github.com/sekolahdigital/notify-service/internal/service"
	"github.com/sekolahdigital/notify-service/internal/transport/middleware"
)

type NotificationHandler struct {
	service service.NotificationService
	hub     *delivery.Hub
}

func NewNotificationHandler(svc service.NotificationService, hub *delivery.Hub) *NotificationHandler {
	return &NotificationHandler{service: svc, hub: hub}
}

// CreateNotification mints a notification from the request body and runs it
// through the delivery pipeline. The notification is returned even when the
// delivery filter suppressed it; only display backend failures are 502.
func (h *NotificationHandler) CreateNotification(c *gin.Context) {
	var req entity.CreateNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	notification := h.service.CreateNotification(&req)
	if err := h.service.ShowNotification(c.Request.Context(), notification); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, notification)
}

func (h *NotificationHandler) GetHistory(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
			return
		}
		limit = parsed
	}

	c.JSON(http.StatusOK, gin.H{
		"history": h.service.GetHistory(c.Request.Context(), limit),
	})
}

func (h *NotificationHandler) ClearHistory(c *gin.Context) {
	h.service.ClearHistory(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"status": "cleared"})
}

func (h *NotificationHandler) MarkAsRead(c *gin.Context) {
	id := c.Param("id")
	if !h.service.MarkAsRead(c.Request.Context(), id) {
		c.JSON(http.StatusNotFound, gin.H{"error": "notification not found in history"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "read"})
}

func (h *NotificationHandler) MarkClicked(c *gin.Context) {
	id := c.Param("id")
	if !h.service.MarkClicked(c.Request.Context(), id) {
		c.JSON(http.StatusNotFound, gin.H{"error": "notification not found in history"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "clicked"})
}

func (h *NotificationHandler) DeleteFromHistory(c *gin.Context) {
	id := c.Param("id")
	if !h.service.DeleteFromHistory(c.Request.Context(), id) {
		c.JSON(http.StatusNotFound, gin.H{"error": "notification not found in history"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"unread": h.service.UnreadCount(c.Request.Context()),
	})
}

func (h *NotificationHandler) MarkAllAsRead(c *gin.Context) {
	h.service.MarkAllAsRead(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"status": "read"})
}

func (h *NotificationHandler) GetSettings(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.GetSettings(c.Request.Context()))
}

func (h *NotificationHandler) SaveSettings(c *gin.Context) {
	var settings entity.Settings
	if err := c.ShouldBindJSON(&settings); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.service.SaveSettings(c.Request.Context(), &settings)
	c.JSON(http.StatusOK, &settings)
}

func (h *NotificationHandler) ResetSettings(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.ResetSettings(c.Request.Context()))
}

func (h *NotificationHandler) GetAnalytics(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"analytics": h.service.GetAnalytics(c.Request.Context()),
	})
}

func (h *NotificationHandler) ClearAnalytics(c *gin.Context) {
	h.service.ClearAnalytics(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"status": "cleared"})
}

func (h *NotificationHandler) SavePushSubscription(c *gin.Context) {
	var req struct {
		Endpoint string `json:"endpoint" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.service.SavePushSubscription(c.Request.Context(), req.Endpoint); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "subscribed"})
}

func (h *NotificationHandler) DeletePushSubscription(c *gin.Context) {
	if err := h.service.DeletePushSubscription(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "unsubscribed"})
}

// ServeWebSocket upgrades the authenticated request to a push/speech client
// session.
func (h *NotificationHandler) ServeWebSocket(c *gin.Context) {
	user := middleware.UserFromContext(c.Request.Context())
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	h.hub.HandleWebSocket(c, *user)
}
