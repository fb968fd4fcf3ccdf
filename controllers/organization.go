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

// GetOrganizations lists organizations. Super admins see all;
// coalition admins see their coalitions' orgs; org admins see their
// own.
func GetOrganizations(c *gin.Context) {
	userID := getUserID(c)
	roleID := getRoleID(c)

	query := config.DB.Preload("Coalition").Where("delete_at IS NULL")

	if roleID != models.RoleSuperAdmin {
		caps, err := services.GetCapabilities(userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute capabilities"})
			return
		}
		if len(caps.Coalitions) > 0 {
			query = query.Where("coalition_id IN ? OR org_id IN ?", caps.Coalitions, caps.AdminOrgs)
		} else if len(caps.AdminOrgs) > 0 {
			query = query.Where("org_id IN ?", caps.AdminOrgs)
		} else {
			c.JSON(http.StatusOK, gin.H{"organizations": []models.Organization{}, "total": 0})
			return
		}
	}

	var orgs []models.Organization
	if err := query.Find(&orgs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch organizations"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"organizations": orgs, "total": len(orgs)})
}

// GetOrganization returns one organization.
func GetOrganization(c *gin.Context) {
	id := c.Param("id")

	var org models.Organization
	if err := config.DB.Preload("Coalition").
		Where("org_id = ? AND delete_at IS NULL", id).
		First(&org).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Organization not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"organization": org})
}

// CreateOrganization creates an organization (super admin only).
func CreateOrganization(c *gin.Context) {
	type CreateOrgRequest struct {
		Name        string  `json:"name" binding:"required"`
		Slug        string  `json:"slug" binding:"required"`
		CoalitionID *int    `json:"coalition_id"`
		City        *string `json:"city"`
		Website     *string `json:"website"`
	}

	var req CreateOrgRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var count int64
	config.DB.Model(&models.Organization{}).
		Where("slug = ? AND delete_at IS NULL", req.Slug).
		Count(&count)
	if count > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Slug already in use"})
		return
	}

	now := time.Now()
	org := models.Organization{
		Name:        utils.SanitizeInput(req.Name),
		Slug:        utils.SanitizeInput(req.Slug),
		CoalitionID: req.CoalitionID,
		City:        req.City,
		Website:     req.Website,
		CreateAt:    now,
		UpdateAt:    now,
	}
	if err := config.DB.Create(&org).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create organization"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"organization": org})
}

// UpdateOrganization edits an organization (super admin or that org's
// admin).
func UpdateOrganization(c *gin.Context) {
	orgID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid organization id"})
		return
	}

	caps, err := services.GetCapabilities(getUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute capabilities"})
		return
	}
	if !caps.IsOrgAdmin(orgID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
		return
	}

	var org models.Organization
	if err := config.DB.Where("org_id = ? AND delete_at IS NULL", orgID).
		First(&org).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Organization not found"})
		return
	}

	type UpdateOrgRequest struct {
		Name        *string `json:"name"`
		City        *string `json:"city"`
		Website     *string `json:"website"`
		CoalitionID *int    `json:"coalition_id"`
	}

	var req UpdateOrgRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updates := map[string]interface{}{"update_at": time.Now()}
	if req.Name != nil {
		updates["name"] = utils.SanitizeInput(*req.Name)
	}
	if req.City != nil {
		updates["city"] = *req.City
	}
	if req.Website != nil {
		updates["website"] = *req.Website
	}
	if req.CoalitionID != nil {
		// Reassigning coalitions is a super-admin operation.
		if getRoleID(c) != models.RoleSuperAdmin {
			c.JSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
			return
		}
		updates["coalition_id"] = *req.CoalitionID
	}

	if err := config.DB.Model(&org).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update organization"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"organization": org})
}

// DeleteOrganization soft-deletes an organization (super admin only).
func DeleteOrganization(c *gin.Context) {
	id := c.Param("id")

	var org models.Organization
	if err := config.DB.Where("org_id = ? AND delete_at IS NULL", id).
		First(&org).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Organization not found"})
		return
	}

	if err := config.DB.Model(&org).Update("delete_at", time.Now()).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete organization"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Organization deleted"})
}

// AssignOrgAdmin grants a user admin rights over one organization
// (super admin or coalition admin of the org's coalition).
func AssignOrgAdmin(c *gin.Context) {
	orgID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid organization id"})
		return
	}

	var org models.Organization
	if err := config.DB.Where("org_id = ? AND delete_at IS NULL", orgID).
		First(&org).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Organization not found"})
		return
	}

	caps, err := services.GetCapabilities(getUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute capabilities"})
		return
	}
	allowed := getRoleID(c) == models.RoleSuperAdmin ||
		(org.CoalitionID != nil && caps.IsCoalitionAdmin(*org.CoalitionID))
	if !allowed {
		c.JSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
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
	config.DB.Model(&models.OrgAdmin{}).
		Where("org_id = ? AND user_id = ?", orgID, req.UserID).
		Count(&count)
	if count > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "User is already an organization admin"})
		return
	}

	assignment := models.OrgAdmin{
		OrgID:      orgID,
		UserID:     req.UserID,
		AssignedBy: getUserID(c),
		CreateAt:   time.Now(),
	}
	if err := config.DB.Create(&assignment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to assign organization admin"})
		return
	}

	services.InvalidateCapabilities(req.UserID)

	c.JSON(http.StatusCreated, gin.H{"assignment": assignment})
}
