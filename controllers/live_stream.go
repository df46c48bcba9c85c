package controllers

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/otomono/jersey-orders-api/services"
	"github.com/otomono/jersey-orders-api/utils"
)

// KeepAliveInterval is how often an idle event stream receives a ping
var KeepAliveInterval = 25 * time.Second

// serveLive streams snapshots of a topic as server-sent events. When the
// subscription cannot be established it answers with a single read instead.
func serveLive(c *gin.Context, hub *services.Hub, topic string, load services.Loader) {
	ctx := c.Request.Context()
	sub, err := hub.Subscribe(ctx, topic, load)
	if err != nil {
		log.Printf("[live] subscribe to %s failed, falling back to a single read: %v", topic, err)
		data, loadErr := load(ctx)
		if loadErr != nil {
			respondError(c, loadErr, "Failed to load "+topic)
			return
		}
		utils.RespondWithData(c, http.StatusOK, data)
		return
	}
	defer sub.Cancel()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	c.Writer.Flush()

	ticker := time.NewTicker(KeepAliveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case snap, ok := <-sub.C():
			if !ok {
				return
			}
			c.SSEvent("snapshot", snap)
			c.Writer.Flush()
		case <-ticker.C:
			c.SSEvent("ping", gin.H{"at": time.Now().UTC()})
			c.Writer.Flush()
		}
	}
}
