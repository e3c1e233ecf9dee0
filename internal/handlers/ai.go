package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/peerwave/backend/internal/apperr"
)

type chatRequest struct {
	Message string `json:"message"`
}

// Chat forwards the user's message to the AI provider and returns the reply.
func (h *Handlers) Chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.Validation("invalid request body"))
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		respondError(c, apperr.Validation("message is required"))
		return
	}

	reply, err := h.ai.Chat(c.Request.Context(), req.Message)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"response": reply})
}

// AIHealth reports whether the AI provider is configured.
func (h *Handlers) AIHealth(c *gin.Context) {
	status := "ok"
	if !h.ai.Configured() {
		status = "unconfigured"
	}
	c.JSON(http.StatusOK, gin.H{"status": status})
}
