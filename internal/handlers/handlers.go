// Package handlers contains the HTTP layer: request parsing, response
// shaping, and routing. Business rules live in the social engine and the
// price cache; handlers stay thin.
package handlers

import (
	"github.com/peerwave/backend/internal/ai"
	"github.com/peerwave/backend/internal/prices"
	"github.com/peerwave/backend/internal/social"
	"github.com/peerwave/backend/internal/storage"
)

// Handlers contains all HTTP handlers for the API
type Handlers struct {
	engine   *social.Engine
	prices   *prices.Cache
	ai       *ai.Client
	uploader storage.MediaUploader
}

// NewHandlers creates a new handlers instance
func NewHandlers(engine *social.Engine, priceCache *prices.Cache, aiClient *ai.Client) *Handlers {
	return &Handlers{
		engine: engine,
		prices: priceCache,
		ai:     aiClient,
	}
}

// SetUploader sets the media uploader. Upload endpoints report an upstream
// error when no uploader is configured.
func (h *Handlers) SetUploader(uploader storage.MediaUploader) {
	h.uploader = uploader
}
