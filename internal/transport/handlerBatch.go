package transport

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sekolahdigital/notify-service/internal/entity"
)

func (h *NotificationHandler) CreateBatch(c *gin.Context) {
	var req entity.CreateBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	notifications := make([]entity.Notification, 0, len(req.Notifications))
	for i := range req.Notifications {
		notifications = append(notifications, *h.service.CreateNotification(&req.Notifications[i]))
	}

	batch, err := h.service.CreateBatch(c.Request.Context(), req.Name, notifications)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, batch)
}

func (h *NotificationHandler) ListBatches(c *gin.Context) {
	batches, err := h.service.ListBatches(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"batches": batches})
}

// SendBatch delivers the batch now. A batch with partial failures returns
// 200 with success=false; the batch record carries the failure reason.
func (h *NotificationHandler) SendBatch(c *gin.Context) {
	id := c.Param("id")

	success, err := h.service.SendBatch(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": success})
}
