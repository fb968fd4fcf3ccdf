package controllers

import (
	"net/http"
	"time"

	"audition-management-api/config"
	"audition-management-api/models"
	"audition-management-api/utils"

	"github.com/gin-gonic/gin"
)

// GetProgramSchema returns the current form fields for a program,
// ordered for rendering. Available to any authenticated user; the
// review flow treats it as read-only configuration.
func GetProgramSchema(c *gin.Context) {
	id := c.Param("id")

	var program models.Program
	if err := config.DB.Where("program_id = ? AND delete_at IS NULL", id).
		First(&program).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Program not found"})
		return
	}

	var fields []models.FormField
	if err := config.DB.
		Where("program_id = ? AND schema_version = ? AND delete_at IS NULL",
			program.ProgramID, program.SchemaVersion).
		Order("field_order").
		Find(&fields).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch schema"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"program_id":     program.ProgramID,
		"schema_version": program.SchemaVersion,
		"fields":         fields,
		"total":          len(fields),
	})
}

// CreateFormField adds a field to a program's current schema version
// (org admin only).
func CreateFormField(c *gin.Context) {
	program := requireOrgAdminForProgram(c, c.Param("id"))
	if program == nil {
		return
	}

	type CreateFieldRequest struct {
		Label      string  `json:"label" binding:"required"`
		FieldType  string  `json:"field_type" binding:"required"`
		Required   bool    `json:"required"`
		Options    *string `json:"options"`
		MaxLength  *int    `json:"max_length"`
		WordLimit  *int    `json:"word_limit"`
		FieldOrder int     `json:"field_order"`
	}

	var req CreateFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !models.ValidFieldType(req.FieldType) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid field type"})
		return
	}

	now := time.Now()
	field := models.FormField{
		ProgramID:     program.ProgramID,
		SchemaVersion: program.SchemaVersion,
		Label:         utils.SanitizeInput(req.Label),
		FieldType:     req.FieldType,
		Required:      req.Required,
		Options:       req.Options,
		MaxLength:     req.MaxLength,
		WordLimit:     req.WordLimit,
		FieldOrder:    req.FieldOrder,
		CreateAt:      now,
		UpdateAt:      now,
	}
	if _, err := field.OptionValues(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Options must be a JSON array of strings"})
		return
	}
	if err := config.DB.Create(&field).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create field"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"field": field})
}

// UpdateFormField edits a schema field (org admin only).
func UpdateFormField(c *gin.Context) {
	program := requireOrgAdminForProgram(c, c.Param("id"))
	if program == nil {
		return
	}

	var field models.FormField
	if err := config.DB.
		Where("field_id = ? AND program_id = ? AND delete_at IS NULL",
			c.Param("field_id"), program.ProgramID).
		First(&field).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Field not found"})
		return
	}

	type UpdateFieldRequest struct {
		Label      *string `json:"label"`
		Required   *bool   `json:"required"`
		Options    *string `json:"options"`
		MaxLength  *int    `json:"max_length"`
		WordLimit  *int    `json:"word_limit"`
		FieldOrder *int    `json:"field_order"`
	}

	var req UpdateFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updates := map[string]interface{}{"update_at": time.Now()}
	if req.Label != nil {
		updates["label"] = utils.SanitizeInput(*req.Label)
	}
	if req.Required != nil {
		updates["required"] = *req.Required
	}
	if req.Options != nil {
		updates["options"] = *req.Options
	}
	if req.MaxLength != nil {
		updates["max_length"] = *req.MaxLength
	}
	if req.WordLimit != nil {
		updates["word_limit"] = *req.WordLimit
	}
	if req.FieldOrder != nil {
		updates["field_order"] = *req.FieldOrder
	}

	if err := config.DB.Model(&field).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update field"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"field": field})
}

// DeleteFormField soft-deletes a schema field (org admin only).
func DeleteFormField(c *gin.Context) {
	program := requireOrgAdminForProgram(c, c.Param("id"))
	if program == nil {
		return
	}

	var field models.FormField
	if err := config.DB.
		Where("field_id = ? AND program_id = ? AND delete_at IS NULL",
			c.Param("field_id"), program.ProgramID).
		First(&field).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Field not found"})
		return
	}

	if err := config.DB.Model(&field).Update("delete_at", time.Now()).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete field"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Field deleted"})
}
