package controllers

import (
	"net/http"
	"time"

	"audition-management-api/config"
	"audition-management-api/models"
	"audition-management-api/services"

	"github.com/gin-gonic/gin"
)

// GetCoalitions lists coalitions. Super admins see all; coalition
// admins see their own.
func GetCoalitions(c *gin.Context) {
	userID := getUserID(c)
	roleID := getRoleID(c)

	query := config.DB.Where("delete_at IS NULL")

	if roleID != models.RoleSuperAdmin {
		caps, err := services.GetCapabilities(userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute capabilities"})
			return
		}
		if len(caps.Coalitions) == 0 {
			c.JSON(http.StatusOK, gin.H{"coalitions": []models.Coalition{}, "total": 0})
			return
		}
		query = query.Where("coalition_id IN ?", caps.Coalitions)
	}

	var coalitions []models.Coalition
	if err := query.Find(&coalitions).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch coalitions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"coalitions": coalitions, "total": len(coalitions)})
}

// CreateCoalition creates a coalition (super admin only).
func CreateCoalition(c *gin.Context) {
	type CreateCoalitionRequest struct {
		Name        string  `json:"name" binding:"required"`
		Description *string `json:"description"`
	}

	var req CreateCoalitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	now := time.Now()
	coalition := models.Coalition{
		Name:        req.Name,
		Description: req.Description,
		CreateAt:    now,
		UpdateAt:    now,
	}
	if err := config.DB.Create(&coalition).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create coalition"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"coalition": coalition})
}

// UpdateCoalition edits a coalition (super admin only).
func UpdateCoalition(c *gin.Context) {
	id := c.Param("id")

	var coalition models.Coalition
	if err := config.DB.Where("coalition_id = ? AND delete_at IS NULL", id).
		First(&coalition).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Coalition not found"})
		return
	}

	type UpdateCoalitionRequest struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
	}

	var req UpdateCoalitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updates := map[string]interface{}{"update_at": time.Now()}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}

	if err := config.DB.Model(&coalition).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update coalition"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"coalition": coalition})
}

// DeleteCoalition soft-deletes a coalition (super admin only).
func DeleteCoalition(c *gin.Context) {
	id := c.Param("id")

	var coalition models.Coalition
	if err := config.DB.Where("coalition_id = ? AND delete_at IS NULL", id).
		First(&coalition).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Coalition not found"})
		return
	}

	now := time.Now()
	if err := config.DB.Model(&coalition).Update("delete_at", now).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete coalition"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Coalition deleted"})
}

// AssignCoalitionAdmin grants a user coalition-admin rights (super
// admin only).
func AssignCoalitionAdmin(c *gin.Context) {
	id := c.Param("id")

	var coalition models.Coalition
	if err := config.DB.Where("coalition_id = ? AND delete_at IS NULL", id).
		First(&coalition).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Coalition not found"})
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
	config.DB.Model(&models.CoalitionAdmin{}).
		Where("coalition_id = ? AND user_id = ?", coalition.CoalitionID, req.UserID).
		Count(&count)
	if count > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "User is already a coalition admin"})
		return
	}

	assignment := models.CoalitionAdmin{
		CoalitionID: coalition.CoalitionID,
		UserID:      req.UserID,
		AssignedBy:  getUserID(c),
		CreateAt:    time.Now(),
	}
	if err := config.DB.Create(&assignment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to assign coalition admin"})
		return
	}

	services.InvalidateCapabilities(req.UserID)

	c.JSON(http.StatusCreated, gin.H{"assignment": assignment})
}
