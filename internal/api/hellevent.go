package api

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/hellbot-id/hellbot/internal/domain"
)

// HellBroadcaster relays an ingested event to eligible groups.
type HellBroadcaster interface {
	Broadcast(ctx context.Context, event domain.HellEvent) (int, error)
}

// HellEventHandler is the ingest endpoint for the external event scraper.
// It authenticates with a static bearer token; an empty configured token
// disables the endpoint.
type HellEventHandler struct {
	broadcaster HellBroadcaster
	token       string
}

func NewHellEventHandler(broadcaster HellBroadcaster, token string) *HellEventHandler {
	return &HellEventHandler{broadcaster: broadcaster, token: token}
}

func (h *HellEventHandler) Handle(c *gin.Context) {
	auth := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
	if h.token == "" || subtle.ConstantTimeCompare([]byte(auth), []byte(h.token)) != 1 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var event domain.HellEvent
	if err := c.ShouldBindJSON(&event); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed body"})
		return
	}
	if event.Text == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing text"})
		return
	}

	sent, err := h.broadcaster.Broadcast(c.Request.Context(), event)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "OK", "sent": sent})
}
