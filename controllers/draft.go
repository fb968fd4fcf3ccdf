package controllers

import (
	"net/http"

	"audition-management-api/draftcache"

	"github.com/gin-gonic/gin"
)

// GetReviewDraft returns the caller's cached draft snapshot for an
// application, or null when none exists. The snapshot is best-effort
// client recovery state, never authoritative.
func GetReviewDraft(c *gin.Context) {
	application, ok := requireReviewerForApplication(c)
	if !ok {
		return
	}

	snap, err := reviewDrafts.Load(c.Request.Context(), application.ApplicationID, getUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load draft"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"draft": snap})
}

// SaveReviewDraft stores the caller's draft snapshot. Clients call
// this synchronously on edit so a reload before the debounced server
// save does not lose work.
func SaveReviewDraft(c *gin.Context) {
	application, ok := requireReviewerForApplication(c)
	if !ok {
		return
	}

	var snap draftcache.Snapshot
	if err := c.ShouldBindJSON(&snap); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := reviewDrafts.Save(c.Request.Context(), application.ApplicationID, getUserID(c), snap); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save draft"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Draft saved"})
}

// ClearReviewDraft removes the caller's draft snapshot. This only
// clears the cache copy; the server-side review row is untouched.
func ClearReviewDraft(c *gin.Context) {
	application, ok := requireReviewerForApplication(c)
	if !ok {
		return
	}

	if err := reviewDrafts.Clear(c.Request.Context(), application.ApplicationID, getUserID(c)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear draft"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Draft cleared"})
}
