package controllers

import (
	"net/http"
	"time"

	"audition-management-api/config"
	"audition-management-api/models"
	"audition-management-api/services"
	"audition-management-api/utils"

	"github.com/gin-gonic/gin"
)

// GetUsers lists accounts, optionally filtered by role or email
// substring (super admin only).
func GetUsers(c *gin.Context) {
	query := config.DB.Preload("Role").Where("delete_at IS NULL")

	if role := c.Query("role"); role != "" {
		query = query.Where("role_id = ?", role)
	}
	if email := c.Query("email"); email != "" {
		query = query.Where("email LIKE ?", "%"+email+"%")
	}

	var users []models.User
	if err := query.Order("user_id").Limit(200).Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": users, "total": len(users)})
}

// CreateUser creates an account with an explicit role — how reviewer
// and admin accounts come into being (super admin only).
func CreateUser(c *gin.Context) {
	type CreateUserRequest struct {
		FirstName string `json:"first_name" binding:"required"`
		LastName  string `json:"last_name" binding:"required"`
		Email     string `json:"email" binding:"required,email"`
		Password  string `json:"password" binding:"required"`
		RoleID    int    `json:"role_id" binding:"required"`
	}

	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	switch req.RoleID {
	case models.RoleApplicant, models.RoleReviewer, models.RoleOrgAdmin, models.RoleSuperAdmin:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid role"})
		return
	}

	if ok, msg := utils.ValidatePassword(req.Password); !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	var count int64
	config.DB.Model(&models.User{}).
		Where("email = ? AND delete_at IS NULL", req.Email).
		Count(&count)
	if count > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
		return
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}

	now := time.Now()
	user := models.User{
		FirstName: utils.SanitizeInput(req.FirstName),
		LastName:  utils.SanitizeInput(req.LastName),
		Email:     req.Email,
		Password:  hash,
		RoleID:    req.RoleID,
		CreateAt:  &now,
		UpdateAt:  &now,
	}
	if err := config.DB.Create(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user": user})
}

// DeleteUser soft-deletes an account (super admin only).
func DeleteUser(c *gin.Context) {
	id := c.Param("id")

	var user models.User
	if err := config.DB.Where("user_id = ? AND delete_at IS NULL", id).
		First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	if err := config.DB.Model(&user).Update("delete_at", time.Now()).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete user"})
		return
	}

	services.InvalidateCapabilities(user.UserID)

	c.JSON(http.StatusOK, gin.H{"message": "User deleted"})
}
