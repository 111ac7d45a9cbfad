package transport

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sekolahdigital/notify-service/internal/entity"
)

// AnnounceNotification queues a voice-only announcement, bypassing the
// visual pipeline. Returns whether the voice policy accepted it.
func (h *NotificationHandler) AnnounceNotification(c *gin.Context) {
	var req entity.CreateNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	notification := h.service.CreateNotification(&req)
	queued := h.service.AnnounceNotification(c.Request.Context(), notification)
	c.JSON(http.StatusOK, gin.H{"queued": queued, "notification": notification})
}

func (h *NotificationHandler) GetVoiceQueue(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"queue": h.service.GetVoiceQueue()})
}

func (h *NotificationHandler) GetVoiceHistory(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"history": h.service.GetVoiceHistory()})
}

func (h *NotificationHandler) StopVoice(c *gin.Context) {
	h.service.StopCurrentVoiceNotification()
	c.JSON(http.StatusOK, gin.H{"status": "stopped"})
}

func (h *NotificationHandler) SkipVoice(c *gin.Context) {
	h.service.SkipCurrentVoiceNotification()
	c.JSON(http.StatusOK, gin.H{"status": "skipped"})
}

func (h *NotificationHandler) ClearVoiceQueue(c *gin.Context) {
	h.service.ClearVoiceQueue()
	c.JSON(http.StatusOK, gin.H{"status": "cleared"})
}
