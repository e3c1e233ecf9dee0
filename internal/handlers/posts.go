package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/peerwave/backend/internal/apperr"
)

type createPostRequest struct {
	WalletAddress string `json:"walletAddress"`
	Content       string `json:"content"`
	MediaURL      string `json:"mediaUrl"`
	MediaType     string `json:"mediaType"`
}

// CreatePost stores a new post for the wallet's user.
func (h *Handlers) CreatePost(c *gin.Context) {
	var req createPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.Validation("invalid request body"))
		return
	}

	post, err := h.engine.CreatePost(c.Request.Context(),
		req.WalletAddress, req.Content, req.MediaURL, req.MediaType)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, post)
}

// ListPosts returns recent posts, newest first.
func (h *Handlers) ListPosts(c *gin.Context) {
	page := parseIntQuery(c, "page", 1)
	limit := parseIntQuery(c, "limit", 50)

	posts, err := h.engine.RecentPosts(c.Request.Context(), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"posts": posts})
}

// PostsByUser returns all posts by one wallet, newest first.
func (h *Handlers) PostsByUser(c *gin.Context) {
	posts, err := h.engine.PostsByUser(c.Request.Context(), c.Param("wallet"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"posts": posts})
}

// LikedPosts returns the posts a wallet has liked, most recent like first.
func (h *Handlers) LikedPosts(c *gin.Context) {
	posts, err := h.engine.LikedPosts(c.Request.Context(), c.Param("wallet"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"posts": posts})
}

type walletRequest struct {
	WalletAddress string `json:"walletAddress"`
}

// ToggleLike likes the post if the wallet has not liked it, unlikes it
// otherwise, and returns the updated post either way.
func (h *Handlers) ToggleLike(c *gin.Context) {
	var req walletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.Validation("invalid request body"))
		return
	}

	post, err := h.engine.ToggleLike(c.Request.Context(), req.WalletAddress, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, post)
}

type addCommentRequest struct {
	WalletAddress string `json:"walletAddress"`
	Content       string `json:"content"`
	MediaURL      string `json:"mediaUrl"`
}

// AddComment adds a comment to a post and returns the updated post.
func (h *Handlers) AddComment(c *gin.Context) {
	var req addCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.Validation("invalid request body"))
		return
	}

	post, err := h.engine.AddComment(c.Request.Context(),
		req.WalletAddress, c.Param("id"), req.Content, req.MediaURL)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, post)
}

// DeletePost removes a post. Only the author may delete it.
func (h *Handlers) DeletePost(c *gin.Context) {
	var req walletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.Validation("invalid request body"))
		return
	}

	if err := h.engine.DeletePost(c.Request.Context(), req.WalletAddress, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "post deleted"})
}

// DeleteComment removes a comment. Only the author may delete it.
func (h *Handlers) DeleteComment(c *gin.Context) {
	var req walletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.Validation("invalid request body"))
		return
	}

	if err := h.engine.DeleteComment(c.Request.Context(), req.WalletAddress, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "comment deleted"})
}
