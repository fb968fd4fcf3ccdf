package controllers

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"audition-management-api/config"
	"audition-management-api/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const maxUploadBytes = 25 * 1024 * 1024 // 25 MB

// UploadDocument stores one file for a form answer (audition video,
// transcript, etc.) and returns the file record to attach to the
// answer.
func UploadDocument(c *gin.Context) {
	userID := getUserID(c)

	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file provided"})
		return
	}
	if file.Size > maxUploadBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File exceeds the 25MB limit"})
		return
	}

	uploadPath := os.Getenv("UPLOAD_PATH")
	if uploadPath == "" {
		uploadPath = "./uploads"
	}

	storedName := fmt.Sprintf("%s%s", uuid.New().String(), filepath.Ext(file.Filename))
	storedPath := filepath.Join(uploadPath, storedName)

	if err := c.SaveUploadedFile(file, storedPath); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store file"})
		return
	}

	now := time.Now()
	upload := models.FileUpload{
		OriginalName: file.Filename,
		StoredPath:   storedPath,
		FileSize:     file.Size,
		MimeType:     file.Header.Get("Content-Type"),
		UploadedBy:   userID,
		UploadedAt:   now,
		CreateAt:     now,
		UpdateAt:     now,
	}
	if !upload.IsValidDocumentType() {
		os.Remove(storedPath)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported file type"})
		return
	}
	if err := config.DB.Create(&upload).Error; err != nil {
		os.Remove(storedPath)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record upload"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"file": upload})
}

// DownloadDocument serves a stored file. The uploader, reviewers of
// any program the file is attached to, and that program's org admins
// may download.
func DownloadDocument(c *gin.Context) {
	userID := getUserID(c)

	var upload models.FileUpload
	if err := config.DB.Where("file_id = ? AND delete_at IS NULL", c.Param("file_id")).
		First(&upload).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "File not found"})
		return
	}

	if upload.UploadedBy != userID && !canAccessAttachedFile(c, upload.FileID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
		return
	}

	c.FileAttachment(upload.StoredPath, upload.OriginalName)
}

// canAccessAttachedFile checks whether the caller reviews or
// administers a program whose application references the file.
func canAccessAttachedFile(c *gin.Context, fileID int) bool {
	var answer models.ApplicationAnswer
	if err := config.DB.Where("file_id = ?", fileID).First(&answer).Error; err != nil {
		return false
	}

	var application models.Application
	if err := config.DB.Preload("Program").
		Where("application_id = ? AND delete_at IS NULL", answer.ApplicationID).
		First(&application).Error; err != nil {
		return false
	}

	caps, err := capsForCaller(c)
	if err != nil {
		return false
	}
	if caps.IsProgramReviewer(application.ProgramID) {
		return true
	}
	return application.Program != nil && caps.IsOrgAdmin(application.Program.OrgID)
}
