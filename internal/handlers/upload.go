package handlers

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/peerwave/backend/internal/apperr"
	"github.com/peerwave/backend/internal/validation"
)

// maxUploadBytes caps a single media upload at 10MB.
const maxUploadBytes = 10 << 20

func (h *Handlers) readUpload(c *gin.Context) (data []byte, wallet, filename, contentType string, err error) {
	if h.uploader == nil {
		return nil, "", "", "", apperr.Upstream("media storage")
	}

	wallet, err = validation.WalletAddress(c.PostForm("walletAddress"))
	if err != nil {
		return nil, "", "", "", err
	}

	file, err := c.FormFile("file")
	if err != nil {
		return nil, "", "", "", apperr.Validation("file is required")
	}
	if file.Size > maxUploadBytes {
		return nil, "", "", "", apperr.Validation("file exceeds maximum upload size")
	}

	contentType = file.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") && !strings.HasPrefix(contentType, "video/") {
		return nil, "", "", "", apperr.Validation("only image and video uploads are supported")
	}

	src, err := file.Open()
	if err != nil {
		return nil, "", "", "", apperr.Internal("failed to read uploaded file")
	}
	defer src.Close()

	data, err = io.ReadAll(src)
	if err != nil {
		return nil, "", "", "", apperr.Internal("failed to read uploaded file")
	}

	return data, wallet, file.Filename, contentType, nil
}

// UploadMedia stores a media file and returns its public URL and type.
func (h *Handlers) UploadMedia(c *gin.Context) {
	data, wallet, filename, contentType, err := h.readUpload(c)
	if err != nil {
		respondError(c, err)
		return
	}

	result, err := h.uploader.UploadMedia(c.Request.Context(), data, wallet, filename, contentType)
	if err != nil {
		respondError(c, apperr.Upstream("media storage"))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"url":  result.URL,
		"type": result.MediaType,
	})
}

// UploadProfileImage stores an image and sets it as the wallet's profile or
// banner picture. The :type path parameter selects which.
func (h *Handlers) UploadProfileImage(c *gin.Context) {
	kind := c.Param("type")
	if kind != "profile" && kind != "banner" {
		respondError(c, apperr.Validation("image type must be profile or banner"))
		return
	}

	data, wallet, filename, contentType, err := h.readUpload(c)
	if err != nil {
		respondError(c, err)
		return
	}
	if !strings.HasPrefix(contentType, "image/") {
		respondError(c, apperr.Validation("profile images must be images"))
		return
	}

	result, err := h.uploader.UploadMedia(c.Request.Context(), data, wallet, filename, contentType)
	if err != nil {
		respondError(c, apperr.Upstream("media storage"))
		return
	}

	user, err := h.engine.SetProfileImage(c.Request.Context(), wallet, kind, result.URL)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"url":  result.URL,
		"user": user,
	})
}
