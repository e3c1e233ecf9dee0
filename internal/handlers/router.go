package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/peerwave/backend/internal/database"
	"github.com/peerwave/backend/internal/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterRoutes wires all API routes onto the router. Global middleware
// is attached by the caller; per-group rate limits are applied here.
func (h *Handlers) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		users := api.Group("/users")
		{
			users.GET("", h.ListUsers)
			users.POST("/profile", h.UpsertProfile)
			users.GET("/profile/:wallet", h.GetProfile)
			users.POST("/profile/picture", h.SetProfileImage)
		}

		posts := api.Group("/posts")
		{
			posts.POST("", h.CreatePost)
			posts.GET("", h.ListPosts)
			posts.GET("/user/:wallet", h.PostsByUser)
			posts.GET("/liked/:wallet", h.LikedPosts)
			posts.POST("/:id/like", h.ToggleLike)
			posts.POST("/:id/comment", h.AddComment)
			posts.DELETE("/:id", h.DeletePost)
		}

		api.DELETE("/comments/:id", h.DeleteComment)

		notifications := api.Group("/notifications")
		{
			notifications.GET("/:wallet", h.GetNotifications)
			notifications.POST("/:id/mark-read", h.MarkNotificationRead)
			notifications.POST("/mark-all-read", h.MarkAllNotificationsRead)
		}

		api.GET("/crypto/top", h.GetTopCrypto)

		aiGroup := api.Group("/ai", middleware.RateLimitAI())
		{
			aiGroup.POST("/chat", h.Chat)
			aiGroup.GET("/health", h.AIHealth)
		}

		upload := api.Group("/upload", middleware.RateLimitUpload())
		{
			upload.POST("", h.UploadMedia)
			upload.POST("/:type", h.UploadProfileImage)
		}
	}
}

// Health reports process and database liveness.
func (h *Handlers) Health(c *gin.Context) {
	if err := database.Health(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unhealthy",
			"error":  "database unreachable",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
