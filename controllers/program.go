package controllers

import (
	"net/http"
	"strconv"
	"time"

	"audition-management-api/config"
	"audition-management-api/models"
	"audition-management-api/services"
	"audition-management-api/utils"

	"github.com/gin-gonic/gin"
)

// GetPrograms lists programs, optionally filtered by org, kind and
// season. Applicants see open programs only.
func GetPrograms(c *gin.Context) {
	query := config.DB.Preload("Organization").Where("delete_at IS NULL")

	if org := c.Query("org"); org != "" {
		query = query.Where("org_id = ?", org)
	}
	if kind := c.Query("kind"); kind != "" {
		query = query.Where("kind = ?", kind)
	}
	if season := c.Query("season"); season != "" {
		query = query.Where("season_year = ?", season)
	}
	if getRoleID(c) == models.RoleApplicant {
		query = query.Where("status = ?", models.ProgramStatusActive)
	}

	var programs []models.Program
	if err := query.Order("season_year DESC, name").Find(&programs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch programs"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"programs": programs, "total": len(programs)})
}

// GetProgram returns one program with its organization.
func GetProgram(c *gin.Context) {
	id := c.Param("id")

	var program models.Program
	if err := config.DB.Preload("Organization").
		Where("program_id = ? AND delete_at IS NULL", id).
		First(&program).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Program not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"program": program})
}

// GetMyReviewerPrograms lists the programs the caller reviews for.
// Drives the reviewer inbox navigation.
func GetMyReviewerPrograms(c *gin.Context) {
	caps, err := services.GetCapabilities(getUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute capabilities"})
		return
	}

	if len(caps.ReviewerPrograms) == 0 {
		c.JSON(http.StatusOK, gin.H{"programs": []models.Program{}, "total": 0})
		return
	}

	var programs []models.Program
	if err := config.DB.Preload("Organization").
		Where("program_id IN ? AND delete_at IS NULL", caps.ReviewerPrograms).
		Order("season_year DESC, name").
		Find(&programs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch programs"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"programs": programs, "total": len(programs)})
}

// requireOrgAdminForProgram loads the program and verifies the caller
// administers its organization. Returns nil after writing the error
// response when the check fails.
func requireOrgAdminForProgram(c *gin.Context, programID string) *models.Program {
	var program models.Program
	if err := config.DB.Where("program_id = ? AND delete_at IS NULL", programID).
		First(&program).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Program not found"})
		return nil
	}

	caps, err := services.GetCapabilities(getUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute capabilities"})
		return nil
	}
	if !caps.IsOrgAdmin(program.OrgID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
		return nil
	}
	return &program
}

// CreateProgram creates a program under an organization the caller
// administers.
func CreateProgram(c *gin.Context) {
	type CreateProgramRequest struct {
		OrgID       int        `json:"org_id" binding:"required"`
		Name        string     `json:"name" binding:"required"`
		Kind        string     `json:"kind" binding:"required"`
		SeasonYear  int        `json:"season_year" binding:"required"`
		Description *string    `json:"description"`
		OpensAt     *time.Time `json:"opens_at"`
		ClosesAt    *time.Time `json:"closes_at"`
	}

	var req CreateProgramRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Kind != models.ProgramKindAudition && req.Kind != models.ProgramKindScholarship {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid program kind"})
		return
	}

	caps, err := services.GetCapabilities(getUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute capabilities"})
		return
	}
	if !caps.IsOrgAdmin(req.OrgID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
		return
	}

	now := time.Now()
	program := models.Program{
		OrgID:         req.OrgID,
		Name:          utils.SanitizeInput(req.Name),
		Kind:          req.Kind,
		SeasonYear:    req.SeasonYear,
		Description:   req.Description,
		OpensAt:       req.OpensAt,
		ClosesAt:      req.ClosesAt,
		Status:        models.ProgramStatusActive,
		SchemaVersion: 1,
		CreateAt:      now,
		UpdateAt:      now,
	}
	if err := config.DB.Create(&program).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create program"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"program": program})
}

// UpdateProgram edits a program the caller administers.
func UpdateProgram(c *gin.Context) {
	program := requireOrgAdminForProgram(c, c.Param("id"))
	if program == nil {
		return
	}

	type UpdateProgramRequest struct {
		Name        *string    `json:"name"`
		Description *string    `json:"description"`
		OpensAt     *time.Time `json:"opens_at"`
		ClosesAt    *time.Time `json:"closes_at"`
		Status      *string    `json:"status"`
	}

	var req UpdateProgramRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updates := map[string]interface{}{"update_at": time.Now()}
	if req.Name != nil {
		updates["name"] = utils.SanitizeInput(*req.Name)
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.OpensAt != nil {
		updates["opens_at"] = *req.OpensAt
	}
	if req.ClosesAt != nil {
		updates["closes_at"] = *req.ClosesAt
	}
	if req.Status != nil {
		if *req.Status != models.ProgramStatusActive && *req.Status != models.ProgramStatusArchived {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid program status"})
			return
		}
		updates["status"] = *req.Status
	}

	if err := config.DB.Model(program).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update program"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"program": program})
}

// DeleteProgram soft-deletes a program the caller administers.
func DeleteProgram(c *gin.Context) {
	program := requireOrgAdminForProgram(c, c.Param("id"))
	if program == nil {
		return
	}

	if err := config.DB.Model(program).Update("delete_at", time.Now()).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete program"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Program deleted"})
}

// GetProgramReviewers lists reviewer assignments for a program the
// caller administers.
func GetProgramReviewers(c *gin.Context) {
	program := requireOrgAdminForProgram(c, c.Param("id"))
	if program == nil {
		return
	}

	var reviewers []models.ProgramReviewer
	if err := config.DB.Preload("User").
		Where("program_id = ?", program.ProgramID).
		Find(&reviewers).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch reviewers"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"reviewers": reviewers, "total": len(reviewers)})
}

// AssignProgramReviewer adds a reviewer to a program the caller
// administers.
func AssignProgramReviewer(c *gin.Context) {
	program := requireOrgAdminForProgram(c, c.Param("id"))
	if program == nil {
		return
	}

	type AssignRequest struct {
		UserID int `json:"user_id" binding:"required"`
	}

	var req AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	if err := config.DB.Where("user_id = ? AND delete_at IS NULL", req.UserID).
		First(&user).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "User not found"})
		return
	}

	var count int64
	config.DB.Model(&models.ProgramReviewer{}).
		Where("program_id = ? AND user_id = ?", program.ProgramID, req.UserID).
		Count(&count)
	if count > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "User is already a reviewer for this program"})
		return
	}

	assignment := models.ProgramReviewer{
		ProgramID:  program.ProgramID,
		UserID:     req.UserID,
		AssignedBy: getUserID(c),
		CreateAt:   time.Now(),
	}
	if err := config.DB.Create(&assignment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to assign reviewer"})
		return
	}

	services.InvalidateCapabilities(req.UserID)

	c.JSON(http.StatusCreated, gin.H{"assignment": assignment})
}

// RemoveProgramReviewer removes a reviewer assignment.
func RemoveProgramReviewer(c *gin.Context) {
	program := requireOrgAdminForProgram(c, c.Param("id"))
	if program == nil {
		return
	}

	reviewerID, err := strconv.Atoi(c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user id"})
		return
	}

	result := config.DB.Where("program_id = ? AND user_id = ?", program.ProgramID, reviewerID).
		Delete(&models.ProgramReviewer{})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove reviewer"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Reviewer assignment not found"})
		return
	}

	services.InvalidateCapabilities(reviewerID)

	c.JSON(http.StatusOK, gin.H{"message": "Reviewer removed"})
}
