package transport

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sekolahdigital/notify-service/internal/entity"
	"github.com/sekolahdigital/notify-service/internal/transport/middleware"
)

func (h *NotificationHandler) CreateTemplate(c *gin.Context) {
	var req entity.CreateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	createdBy := ""
	if user := middleware.UserFromContext(c.Request.Context()); user != nil {
		createdBy = user.ID
	}

	tpl, err := h.service.CreateTemplate(c.Request.Context(), &req, createdBy)
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, tpl)
}

func (h *NotificationHandler) ListTemplates(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"templates": h.service.ListTemplates(c.Request.Context()),
	})
}

// ResolveTemplate mints a notification from a template and delivers it.
// The template id may also be a notification type, which resolves to that
// type's default template.
func (h *NotificationHandler) ResolveTemplate(c *gin.Context) {
	var req entity.ResolveTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	notification := h.service.CreateNotificationFromTemplate(c.Request.Context(), req.TemplateID, req.Variables)
	if notification == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no active template matches the given id"})
		return
	}

	if err := h.service.ShowNotification(c.Request.Context(), notification); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, notification)
}
