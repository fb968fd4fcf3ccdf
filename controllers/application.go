package controllers

import (
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"audition-management-api/config"
	"audition-management-api/models"
	"audition-management-api/services"
	"audition-management-api/utils"

	"github.com/gin-gonic/gin"
)

// GetApplications returns the caller's applications. Status and
// program query filters apply.
func GetApplications(c *gin.Context) {
	userID := getUserID(c)

	query := config.DB.Preload("Program").Preload("Program.Organization").
		Where("applicant_id = ? AND delete_at IS NULL", userID)

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if program := c.Query("program"); program != "" {
		query = query.Where("program_id = ?", program)
	}

	var applications []models.Application
	if err := query.Order("update_at DESC").Find(&applications).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch applications"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"applications": applications,
		"total":        len(applications),
	})
}

// GetApplication returns one application with its answers. Applicants
// see their own; org admins and program reviewers see any application
// in their scope.
func GetApplication(c *gin.Context) {
	application, ok := loadApplicationForViewer(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{"application": application})
}

// loadApplicationForViewer fetches the application with answers and
// enforces viewer scope. Writes the error response itself on failure.
func loadApplicationForViewer(c *gin.Context) (*models.Application, bool) {
	id := c.Param("id")
	userID := getUserID(c)

	var application models.Application
	if err := config.DB.Preload("Program").Preload("Applicant").
		Preload("Answers").Preload("Answers.Field").Preload("Answers.File").
		Where("application_id = ? AND delete_at IS NULL", id).
		First(&application).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Application not found"})
		return nil, false
	}

	if application.ApplicantID == userID {
		return &application, true
	}

	caps, err := services.GetCapabilities(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute capabilities"})
		return nil, false
	}
	if caps.IsProgramReviewer(application.ProgramID) {
		return &application, true
	}
	if application.Program != nil && caps.IsOrgAdmin(application.Program.OrgID) {
		return &application, true
	}

	c.JSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
	return nil, false
}

// CreateApplication starts a draft application to an open program.
func CreateApplication(c *gin.Context) {
	type CreateApplicationRequest struct {
		ProgramID int `json:"program_id" binding:"required"`
	}

	var req CreateApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := getUserID(c)

	var program models.Program
	if err := config.DB.Where("program_id = ? AND delete_at IS NULL", req.ProgramID).
		First(&program).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid program"})
		return
	}
	if !program.IsOpen(time.Now()) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Program is not accepting applications"})
		return
	}

	// One application per applicant per program.
	var count int64
	config.DB.Model(&models.Application{}).
		Where("program_id = ? AND applicant_id = ? AND delete_at IS NULL", req.ProgramID, userID).
		Count(&count)
	if count > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "You have already applied to this program"})
		return
	}

	now := time.Now()
	application := models.Application{
		ProgramID:     req.ProgramID,
		ApplicantID:   userID,
		Status:        models.ApplicationStatusDraft,
		SchemaVersion: program.SchemaVersion,
		CreateAt:      now,
		UpdateAt:      now,
	}
	if err := config.DB.Create(&application).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create application"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"application": application})
}

// SaveAnswers upserts draft answers keyed by field id. Only the owner
// may save, and only while the application is a draft.
func SaveAnswers(c *gin.Context) {
	id := c.Param("id")
	userID := getUserID(c)

	var application models.Application
	if err := config.DB.Where("application_id = ? AND applicant_id = ? AND delete_at IS NULL", id, userID).
		First(&application).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Application not found"})
		return
	}

	if application.Status != models.ApplicationStatusDraft {
		c.JSON(http.StatusConflict, gin.H{"error": "Application has been submitted and can no longer be edited"})
		return
	}

	type AnswerInput struct {
		FieldID int    `json:"field_id" binding:"required"`
		Value   string `json:"value"`
		FileID  *int   `json:"file_id"`
	}
	type SaveAnswersRequest struct {
		Answers []AnswerInput `json:"answers" binding:"required"`
	}

	var req SaveAnswersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	now := time.Now()
	for _, in := range req.Answers {
		var field models.FormField
		if err := config.DB.
			Where("field_id = ? AND program_id = ? AND delete_at IS NULL", in.FieldID, application.ProgramID).
			First(&field).Error; err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Unknown field %d", in.FieldID)})
			return
		}
		if field.MaxLength != nil && len(in.Value) > *field.MaxLength {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Answer for %q exceeds the length limit", field.Label)})
			return
		}

		var answer models.ApplicationAnswer
		err := config.DB.
			Where("application_id = ? AND field_id = ?", application.ApplicationID, in.FieldID).
			First(&answer).Error
		if err != nil {
			answer = models.ApplicationAnswer{
				ApplicationID: application.ApplicationID,
				FieldID:       in.FieldID,
				Value:         in.Value,
				FileID:        in.FileID,
				CreateAt:      now,
				UpdateAt:      now,
			}
			if err := config.DB.Create(&answer).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save answers"})
				return
			}
			continue
		}

		if err := config.DB.Model(&answer).Updates(map[string]interface{}{
			"value":     in.Value,
			"file_id":   in.FileID,
			"update_at": now,
		}).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save answers"})
			return
		}
	}

	config.DB.Model(&application).Update("update_at", now)

	c.JSON(http.StatusOK, gin.H{"message": "Answers saved"})
}

// SubmitApplication moves a draft application to submitted after
// checking required fields.
func SubmitApplication(c *gin.Context) {
	id := c.Param("id")
	userID := getUserID(c)

	var application models.Application
	if err := config.DB.Preload("Answers").
		Where("application_id = ? AND applicant_id = ? AND delete_at IS NULL", id, userID).
		First(&application).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Application not found"})
		return
	}

	var required []models.FormField
	if err := config.DB.
		Where("program_id = ? AND schema_version = ? AND required = ? AND delete_at IS NULL",
			application.ProgramID, application.SchemaVersion, true).
		Find(&required).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to validate application"})
		return
	}

	answered := map[int]bool{}
	for _, a := range application.Answers {
		if a.Value != "" || a.FileID != nil {
			answered[a.FieldID] = true
		}
	}
	for _, f := range required {
		if !answered[f.FieldID] {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Required field %q is not answered", f.Label)})
			return
		}
	}

	if err := services.TransitionApplication(config.DB, &application, models.ApplicationStatusSubmitted, userID, nil); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"application": application})
}

// GetProgramApplications lists a program's applications for org
// admins, optionally filtered by status.
func GetProgramApplications(c *gin.Context) {
	program := requireOrgAdminForProgram(c, c.Param("id"))
	if program == nil {
		return
	}

	query := config.DB.Preload("Applicant").
		Where("program_id = ? AND delete_at IS NULL", program.ProgramID)
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var applications []models.Application
	if err := query.Order("submitted_at DESC").Find(&applications).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch applications"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"applications": applications, "total": len(applications)})
}

// decideApplication applies an admin status decision plus history,
// notification and best-effort email.
func decideApplication(c *gin.Context, newStatus string) {
	id := c.Param("id")
	userID := getUserID(c)

	var application models.Application
	if err := config.DB.Preload("Program").Preload("Applicant").
		Where("application_id = ? AND delete_at IS NULL", id).
		First(&application).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Application not found"})
		return
	}

	caps, err := services.GetCapabilities(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute capabilities"})
		return
	}
	if application.Program == nil || !caps.IsOrgAdmin(application.Program.OrgID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
		return
	}

	type DecisionRequest struct {
		Reason *string `json:"reason"`
	}
	var req DecisionRequest
	_ = c.ShouldBindJSON(&req) // reason is optional; an empty body is fine

	if err := services.TransitionApplication(config.DB, &application, newStatus, userID, req.Reason); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}

	notifyApplicationDecision(&application, newStatus)

	c.JSON(http.StatusOK, gin.H{"application": application})
}

// notifyApplicationDecision records an in-app notification and sends a
// best-effort email. Failures are logged, never surfaced.
func notifyApplicationDecision(application *models.Application, newStatus string) {
	programName := ""
	if application.Program != nil {
		programName = application.Program.Name
	}

	statusLabel := newStatus
	if status, err := services.GetStatusByCode(newStatus); err == nil {
		statusLabel = status.StatusName
	}

	title := "Application status updated"
	message := fmt.Sprintf("Your application to %s is now %s.", programName, statusLabel)

	appID := application.ApplicationID
	notification := models.Notification{
		UserID:        application.ApplicantID,
		Title:         title,
		Message:       message,
		ApplicationID: &appID,
		CreateAt:      time.Now(),
	}
	if err := config.DB.Create(&notification).Error; err != nil {
		log.Printf("Warning: failed to create notification for application %d: %v", application.ApplicationID, err)
	}

	if application.Applicant != nil && utils.ValidateEmail(application.Applicant.Email) {
		html := fmt.Sprintf("<p>%s</p>", message)
		if err := config.SendMail([]string{application.Applicant.Email}, title, html); err != nil {
			log.Printf("Warning: failed to send decision email for application %d: %v", application.ApplicationID, err)
		}
	}
}

// BeginReview moves a submitted application into reviewing.
func BeginReview(c *gin.Context) {
	decideApplication(c, models.ApplicationStatusReviewing)
}

// AcceptApplication accepts an application under review.
func AcceptApplication(c *gin.Context) {
	decideApplication(c, models.ApplicationStatusAccepted)
}

// RejectApplication rejects an application under review.
func RejectApplication(c *gin.Context) {
	decideApplication(c, models.ApplicationStatusRejected)
}

// WaitlistApplication waitlists an application under review.
func WaitlistApplication(c *gin.Context) {
	decideApplication(c, models.ApplicationStatusWaitlisted)
}

// GetApplicationHistory returns the status history trail for one
// application in the caller's scope.
func GetApplicationHistory(c *gin.Context) {
	application, ok := loadApplicationForViewer(c)
	if !ok {
		return
	}

	var history []models.ApplicationStatusHistory
	if err := config.DB.Where("application_id = ?", application.ApplicationID).
		Order("created_at").
		Find(&history).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch history"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"history": history, "total": len(history)})
}

// parseApplicationID is shared by the review handlers.
func parseApplicationID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid application id"})
		return 0, false
	}
	return id, true
}

// GetApplicationStatuses returns the status catalog used to label
// applications in the UI. Served from the in-memory cache.
func GetApplicationStatuses(c *gin.Context) {
	statuses, err := services.GetStatuses()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch statuses"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"statuses": statuses, "total": len(statuses)})
}
