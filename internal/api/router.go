package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// NewRouter assembles the HTTP surface: the payment webhook, the hell-event
// ingest, and a health probe.
func NewRouter(webhook *PaymentWebhookHandler, hellEvent *HellEventHandler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.POST("/webhook/payment", webhook.Handle)
	r.POST("/internal/hellevent", hellEvent.Handle)

	return r
}
