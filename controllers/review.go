package controllers

import (
	"errors"
	"net/http"

	"audition-management-api/config"
	"audition-management-api/models"
	"audition-management-api/services"

	"github.com/gin-gonic/gin"
)

// originHeader carries the caller's session origin tag. Saves are
// published with it so the saving session can ignore its own echo.
const originHeader = "X-Review-Origin"

// requireReviewerForApplication loads the application and verifies the
// caller reviews for its program. Writes the error response itself on
// failure.
func requireReviewerForApplication(c *gin.Context) (*models.Application, bool) {
	id, ok := parseApplicationID(c)
	if !ok {
		return nil, false
	}

	var application models.Application
	if err := config.DB.Preload("Program").
		Where("application_id = ? AND delete_at IS NULL", id).
		First(&application).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Application not found"})
		return nil, false
	}

	caps, err := services.GetCapabilities(getUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute capabilities"})
		return nil, false
	}
	if !caps.IsProgramReviewer(application.ProgramID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You are not a reviewer for this program"})
		return nil, false
	}

	return &application, true
}

// GetReviewBundle is the primary load path for the review screen:
// applicant answers, form schema, and the caller's review row (null
// when none exists yet).
func GetReviewBundle(c *gin.Context) {
	application, ok := requireReviewerForApplication(c)
	if !ok {
		return
	}
	userID := getUserID(c)

	var answers []models.ApplicationAnswer
	if err := config.DB.Preload("Field").Preload("File").
		Where("application_id = ?", application.ApplicationID).
		Find(&answers).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch answers"})
		return
	}

	var fields []models.FormField
	if err := config.DB.
		Where("program_id = ? AND schema_version = ? AND delete_at IS NULL",
			application.ProgramID, application.SchemaVersion).
		Order("field_order").
		Find(&fields).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch schema"})
		return
	}

	review, err := reviewStore.FetchReview(c.Request.Context(), application.ApplicationID, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch review"})
		return
	}

	// All reviews of the application, for the collaboration banner.
	var allReviews []models.Review
	if err := config.DB.Where("application_id = ?", application.ApplicationID).
		Order("update_at DESC").
		Find(&allReviews).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch reviews"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"application": application,
		"answers":     answers,
		"fields":      fields,
		"review":      review,
		"reviews":     allReviews,
	})
}

type reviewPayload struct {
	Score    *float64          `json:"score"`
	Comments string            `json:"comments"`
	Ratings  map[string]string `json:"ratings"`
	Decision string            `json:"decision"`
	Status   *string           `json:"status"`
}

// UpsertReview is the direct save procedure: insert-or-update the
// caller's review row with the supplied values. A null status keeps
// the row's current status; "submitted" is the explicit submit path.
func UpsertReview(c *gin.Context) {
	application, ok := requireReviewerForApplication(c)
	if !ok {
		return
	}
	userID := getUserID(c)

	var req reviewPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Status != nil &&
		*req.Status != models.ReviewStatusDraft && *req.Status != models.ReviewStatusSubmitted {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid review status"})
		return
	}

	review, err := reviewStore.UpsertReview(c.Request.Context(), application.ApplicationID, userID, services.ReviewUpsert{
		Score:    req.Score,
		Comments: req.Comments,
		Ratings:  req.Ratings,
		Decision: req.Decision,
		Status:   req.Status,
		Origin:   c.GetHeader(originHeader),
	})
	if err != nil {
		if errors.Is(err, services.ErrReviewSubmitted) {
			c.JSON(http.StatusConflict, gin.H{"error": "Review already submitted"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save review"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"review": review})
}

// EditReview feeds per-field edits into the caller's open review
// session: the draft cache is written synchronously and the server
// save fires once the debounce quiet period settles.
func EditReview(c *gin.Context) {
	application, ok := requireReviewerForApplication(c)
	if !ok {
		return
	}
	userID := getUserID(c)

	type EditRequest struct {
		Score       *float64 `json:"score"`
		Comments    *string  `json:"comments"`
		RatingKey   *string  `json:"rating_key"`
		RatingValue string   `json:"rating_value"`
		Decision    *string  `json:"decision"`
	}

	var req EditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := reviewManager.Session(c.Request.Context(), application.ApplicationID, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to open review session"})
		return
	}

	applyEdit := func(editErr error) bool {
		if editErr == nil {
			return true
		}
		if errors.Is(editErr, services.ErrReviewSubmitted) {
			c.JSON(http.StatusConflict, gin.H{"error": "Review already submitted"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to apply edit"})
		}
		return false
	}

	if req.Score != nil {
		if !applyEdit(session.SetScore(req.Score)) {
			return
		}
	}
	if req.Comments != nil {
		if !applyEdit(session.SetComments(*req.Comments)) {
			return
		}
	}
	if req.RatingKey != nil {
		if !applyEdit(session.SetRating(*req.RatingKey, req.RatingValue)) {
			return
		}
	}
	if req.Decision != nil {
		if !applyEdit(session.SetDecision(*req.Decision)) {
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"state": session.State()})
}

// SubmitReview transitions the caller's review to submitted through
// the open session, folding in any pending autosave.
func SubmitReview(c *gin.Context) {
	application, ok := requireReviewerForApplication(c)
	if !ok {
		return
	}
	userID := getUserID(c)

	session, err := reviewManager.Session(c.Request.Context(), application.ApplicationID, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to open review session"})
		return
	}

	if err := session.Submit(c.Request.Context()); err != nil {
		if errors.Is(err, services.ErrReviewSubmitted) {
			c.JSON(http.StatusConflict, gin.H{"error": "Review already submitted"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to submit review"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"state": session.State()})
}

// UnlockReview reverts the caller's submitted review to draft so it
// can be edited again. The downgrade is persisted; displayed and
// stored state never diverge.
func UnlockReview(c *gin.Context) {
	application, ok := requireReviewerForApplication(c)
	if !ok {
		return
	}
	userID := getUserID(c)

	session, err := reviewManager.Session(c.Request.Context(), application.ApplicationID, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to open review session"})
		return
	}

	if err := session.Unlock(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to unlock review"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"state": session.State()})
}

// GetReviewSessionState returns the caller's current in-memory session
// state, opening the session (and its realtime subscription) if
// needed.
func GetReviewSessionState(c *gin.Context) {
	application, ok := requireReviewerForApplication(c)
	if !ok {
		return
	}
	userID := getUserID(c)

	session, err := reviewManager.Session(c.Request.Context(), application.ApplicationID, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to open review session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"state":  session.State(),
		"origin": session.Origin(),
	})
}

// ReleaseReviewSession closes the caller's session for an application
// (navigation teardown). Pending debounced saves are flushed first so
// typed work is not lost.
func ReleaseReviewSession(c *gin.Context) {
	id, ok := parseApplicationID(c)
	if !ok {
		return
	}
	userID := getUserID(c)

	if session, open := reviewManager.Peek(id, userID); open {
		session.Flush()
	}
	reviewManager.Release(id, userID)

	c.JSON(http.StatusOK, gin.H{"message": "Session released"})
}

// GetReviewQueue lists a program's reviewable applications with the
// caller's review status alongside, for the reviewer inbox.
func GetReviewQueue(c *gin.Context) {
	programID := c.Param("id")
	userID := getUserID(c)

	var program models.Program
	if err := config.DB.Where("program_id = ? AND delete_at IS NULL", programID).
		First(&program).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Program not found"})
		return
	}

	caps, err := services.GetCapabilities(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute capabilities"})
		return
	}
	if !caps.IsProgramReviewer(program.ProgramID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You are not a reviewer for this program"})
		return
	}

	query := config.DB.Preload("Applicant").
		Where("program_id = ? AND status IN ? AND delete_at IS NULL",
			program.ProgramID,
			[]string{models.ApplicationStatusSubmitted, models.ApplicationStatusReviewing})
	if status := c.Query("status"); status != "" {
		query = config.DB.Preload("Applicant").
			Where("program_id = ? AND status = ? AND delete_at IS NULL", program.ProgramID, status)
	}

	var applications []models.Application
	if err := query.Order("submitted_at").Find(&applications).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch queue"})
		return
	}

	appIDs := make([]int, 0, len(applications))
	for _, a := range applications {
		appIDs = append(appIDs, a.ApplicationID)
	}

	myReviews := map[int]models.Review{}
	if len(appIDs) > 0 {
		var reviews []models.Review
		if err := config.DB.
			Where("application_id IN ? AND reviewer_id = ?", appIDs, userID).
			Find(&reviews).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch reviews"})
			return
		}
		for _, r := range reviews {
			myReviews[r.ApplicationID] = r
		}
	}

	type queueRow struct {
		Application models.Application `json:"application"`
		MyReview    *models.Review     `json:"my_review,omitempty"`
	}

	rows := make([]queueRow, 0, len(applications))
	for _, a := range applications {
		row := queueRow{Application: a}
		if r, ok := myReviews[a.ApplicationID]; ok {
			review := r
			row.MyReview = &review
		}
		rows = append(rows, row)
	}

	c.JSON(http.StatusOK, gin.H{"queue": rows, "total": len(rows)})
}
