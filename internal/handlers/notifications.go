package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/peerwave/backend/internal/apperr"
)

// GetNotifications returns a wallet's notifications, newest first.
func (h *Handlers) GetNotifications(c *gin.Context) {
	limit := parseIntQuery(c, "limit", 0)

	notifications, err := h.engine.Notifications(c.Request.Context(), c.Param("wallet"), limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"notifications": notifications})
}

type markReadRequest struct {
	WalletAddress string `json:"walletAddress"`
}

// MarkNotificationRead marks one notification as read. The notification
// must belong to the requesting wallet.
func (h *Handlers) MarkNotificationRead(c *gin.Context) {
	var req markReadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.Validation("invalid request body"))
		return
	}

	if err := h.engine.MarkNotificationRead(c.Request.Context(), req.WalletAddress, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "notification marked as read"})
}

// MarkAllNotificationsRead marks every unread notification for the wallet.
func (h *Handlers) MarkAllNotificationsRead(c *gin.Context) {
	var req markReadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.Validation("invalid request body"))
		return
	}

	updated, err := h.engine.MarkAllRead(c.Request.Context(), req.WalletAddress)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "notifications marked as read",
		"updated": updated,
	})
}
