package controllers

import (
	"io"
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
)

// StreamReviewEvents is the realtime subscription endpoint: an SSE
// stream of one application's review change events. The subscription
// is scoped to the application id, so events for other applications
// are never delivered here. Client disconnect cancels the request
// context, which releases the subscription; without that release a
// remount would double every delivery.
func StreamReviewEvents(c *gin.Context) {
	application, ok := requireReviewerForApplication(c)
	if !ok {
		return
	}

	sub, err := reviewBroker.Subscribe(c.Request.Context(), application.ApplicationID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to subscribe to review events"})
		return
	}
	defer sub.Close()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	c.Stream(func(w io.Writer) bool {
		select {
		case ev, open := <-sub.Events():
			if !open {
				return false
			}
			c.SSEvent("review", ev)
			return true
		case err, open := <-sub.Errors():
			if open && os.Getenv("ENVIRONMENT") != "production" {
				log.Printf("review event stream (application %d): %v", application.ApplicationID, err)
			}
			return open
		case <-c.Request.Context().Done():
			return false
		}
	})
}
