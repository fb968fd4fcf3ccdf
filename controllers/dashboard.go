package controllers

import (
	"net/http"

	"audition-management-api/config"
	"audition-management-api/models"

	"github.com/gin-gonic/gin"
)

// GetProgramStats returns per-status application counts and review
// progress for one program (org admin only).
func GetProgramStats(c *gin.Context) {
	program := requireOrgAdminForProgram(c, c.Param("id"))
	if program == nil {
		return
	}

	type statusCount struct {
		Status string `json:"status"`
		Count  int64  `json:"count"`
	}

	var counts []statusCount
	if err := config.DB.Model(&models.Application{}).
		Select("status, COUNT(*) as count").
		Where("program_id = ? AND delete_at IS NULL", program.ProgramID).
		Group("status").
		Scan(&counts).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch stats"})
		return
	}

	var reviewerCount int64
	config.DB.Model(&models.ProgramReviewer{}).
		Where("program_id = ?", program.ProgramID).
		Count(&reviewerCount)

	var submittedReviews int64
	config.DB.Model(&models.Review{}).
		Joins("JOIN applications ON applications.application_id = reviews.application_id").
		Where("applications.program_id = ? AND reviews.status = ?", program.ProgramID, models.ReviewStatusSubmitted).
		Count(&submittedReviews)

	var draftReviews int64
	config.DB.Model(&models.Review{}).
		Joins("JOIN applications ON applications.application_id = reviews.application_id").
		Where("applications.program_id = ? AND reviews.status = ?", program.ProgramID, models.ReviewStatusDraft).
		Count(&draftReviews)

	c.JSON(http.StatusOK, gin.H{
		"program_id":        program.ProgramID,
		"applications":      counts,
		"reviewers":         reviewerCount,
		"submitted_reviews": submittedReviews,
		"draft_reviews":     draftReviews,
	})
}
