package controllers

import (
	"net/http"
	"time"

	"audition-management-api/config"
	"audition-management-api/models"

	"github.com/gin-gonic/gin"
)

// GetNotifications lists the caller's notifications, newest first.
// Pass unread=1 to filter to unread only.
func GetNotifications(c *gin.Context) {
	userID := getUserID(c)

	query := config.DB.Where("user_id = ?", userID)
	if c.Query("unread") == "1" {
		query = query.Where("is_read = ?", false)
	}

	var notifications []models.Notification
	if err := query.Order("create_at DESC").Limit(100).Find(&notifications).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch notifications"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"notifications": notifications, "total": len(notifications)})
}

// MarkNotificationRead marks one of the caller's notifications read.
func MarkNotificationRead(c *gin.Context) {
	userID := getUserID(c)

	var notification models.Notification
	if err := config.DB.
		Where("notification_id = ? AND user_id = ?", c.Param("id"), userID).
		First(&notification).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
		return
	}

	now := time.Now()
	if err := config.DB.Model(&notification).Updates(map[string]interface{}{
		"is_read": true,
		"read_at": now,
	}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update notification"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"notification": notification})
}

// MarkAllNotificationsRead marks every unread notification of the
// caller as read.
func MarkAllNotificationsRead(c *gin.Context) {
	userID := getUserID(c)

	now := time.Now()
	if err := config.DB.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": now}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update notifications"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "All notifications marked read"})
}
