package transport

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sekolahdigital/notify-service/internal/delivery"
	"github.com/sekolahdigital/notify-service/internal/service"
	"github.com/sekolahdigital/notify-service/internal/transport/middleware"
)

// InitRoutes wires the HTTP surface. All API routes require a valid school
// app JWT; the websocket route authenticates via the same middleware but
// skips the request timeout because the connection is long-lived.
func InitRoutes(svc service.NotificationService, hub *delivery.Hub, jwtSecret string, requestTimeout time.Duration) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.Logger())

	handler := NewNotificationHandler(svc, hub)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":    "healthy",
			"service":   "notify-service",
			"timestamp": time.Now().Format(time.RFC3339),
		})
	})

	router.GET("/ws", middleware.Auth(jwtSecret), handler.ServeWebSocket)

	api := router.Group("/api/v1", middleware.Auth(jwtSecret), middleware.Timeout(requestTimeout))
	{
		api.POST("/notifications", handler.CreateNotification)

		templates := api.Group("/templates")
		{
			templates.GET("", handler.ListTemplates)
			templates.POST("", handler.CreateTemplate)
			templates.POST("/resolve", handler.ResolveTemplate)
		}

		batches := api.Group("/batches")
		{
			batches.GET("", handler.ListBatches)
			batches.POST("", handler.CreateBatch)
			batches.POST("/:id/send", handler.SendBatch)
		}

		history := api.Group("/history")
		{
			history.GET("", handler.GetHistory)
			history.DELETE("", handler.ClearHistory)
			history.GET("/unread-count", handler.UnreadCount)
			history.POST("/read-all", handler.MarkAllAsRead)
			history.POST("/:id/read", handler.MarkAsRead)
			history.POST("/:id/click", handler.MarkClicked)
			history.DELETE("/:id", handler.DeleteFromHistory)
		}

		settings := api.Group("/settings")
		{
			settings.GET("", handler.GetSettings)
			settings.PUT("", handler.SaveSettings)
			settings.POST("/reset", handler.ResetSettings)
		}

		analytics := api.Group("/analytics")
		{
			analytics.GET("", handler.GetAnalytics)
			analytics.DELETE("", handler.ClearAnalytics)
		}

		voice := api.Group("/voice")
		{
			voice.POST("/announce", handler.AnnounceNotification)
			voice.GET("/queue", handler.GetVoiceQueue)
			voice.DELETE("/queue", handler.ClearVoiceQueue)
			voice.GET("/history", handler.GetVoiceHistory)
			voice.POST("/stop", handler.StopVoice)
			voice.POST("/skip", handler.SkipVoice)
		}

		push := api.Group("/push")
		{
			push.POST("/subscription", handler.SavePushSubscription)
			push.DELETE("/subscription", handler.DeletePushSubscription)
		}
	}

	return router
}
