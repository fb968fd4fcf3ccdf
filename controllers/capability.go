package controllers

import (
	"net/http"

	"audition-management-api/services"

	"github.com/gin-gonic/gin"
)

// GetCapabilities returns the caller's computed permission set: the
// organizations they administer, the programs they review for, and
// the coalitions they oversee. Clients re-check this at every route
// boundary; the short server-side cache keeps that cheap.
func GetCapabilities(c *gin.Context) {
	userID := getUserID(c)

	caps, err := services.GetCapabilities(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute capabilities"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"capabilities": caps})
}
