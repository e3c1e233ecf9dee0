package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/peerwave/backend/internal/prices"
)

// GetTopCrypto returns the top cryptocurrencies by market cap, served from
// the TTL cache.
func (h *Handlers) GetTopCrypto(c *gin.Context) {
	q := prices.Query{
		Currency: c.Query("currency"),
		Limit:    parseIntQuery(c, "limit", 0),
	}

	coins, err := h.prices.Top(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": coins})
}
