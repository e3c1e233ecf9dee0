package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/peerwave/backend/internal/apperr"
)

type upsertProfileRequest struct {
	WalletAddress string `json:"walletAddress"`
	Username      string `json:"username"`
	Bio           string `json:"bio"`
	AccountType   string `json:"accountType"`
}

// UpsertProfile creates a profile for a new wallet or updates the existing
// one. Repeated calls with the same payload are idempotent.
func (h *Handlers) UpsertProfile(c *gin.Context) {
	var req upsertProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.Validation("invalid request body"))
		return
	}

	user, err := h.engine.UpsertProfile(c.Request.Context(),
		req.WalletAddress, req.Username, req.Bio, req.AccountType)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// GetProfile returns the profile for a wallet address.
func (h *Handlers) GetProfile(c *gin.Context) {
	user, err := h.engine.Profile(c.Request.Context(), c.Param("wallet"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

type profileImageRequest struct {
	WalletAddress string `json:"walletAddress"`
	Type          string `json:"type"`
	URL           string `json:"url"`
}

// SetProfileImage stores a profile or banner image URL on the user.
func (h *Handlers) SetProfileImage(c *gin.Context) {
	var req profileImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.Validation("invalid request body"))
		return
	}

	user, err := h.engine.SetProfileImage(c.Request.Context(),
		req.WalletAddress, req.Type, req.URL)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// ListUsers returns a page of users, newest first.
func (h *Handlers) ListUsers(c *gin.Context) {
	page := parseIntQuery(c, "page", 1)
	limit := parseIntQuery(c, "limit", 50)

	users, err := h.engine.ListUsers(c.Request.Context(), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": users})
}
