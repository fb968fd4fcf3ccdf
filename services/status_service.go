package services

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"audition-management-api/config"
	"audition-management-api/models"

	"gorm.io/gorm"
)

var (
	statusCacheMu sync.RWMutex
	statusCache   *statusCacheEntry
	statusTTL     = 5 * time.Minute
)

// ErrInvalidTransition is returned when a status change would move an
// application backwards or skip the observed flow.
var ErrInvalidTransition = errors.New("invalid application status transition")

type statusCacheEntry struct {
	statuses  []models.ApplicationStatus
	byCode    map[string]models.ApplicationStatus
	fetchedAt time.Time
}

// transitionTargets enumerates the monotonic application flow:
// draft -> submitted -> reviewing -> terminal. Nothing ever downgrades.
var transitionTargets = map[string][]string{
	models.ApplicationStatusDraft:     {models.ApplicationStatusSubmitted},
	models.ApplicationStatusSubmitted: {models.ApplicationStatusReviewing},
	models.ApplicationStatusReviewing: {
		models.ApplicationStatusAccepted,
		models.ApplicationStatusRejected,
		models.ApplicationStatusWaitlisted,
	},
}

func loadStatuses(force bool) (*statusCacheEntry, error) {
	statusCacheMu.RLock()
	cached := statusCache
	statusCacheMu.RUnlock()

	if cached != nil && !force && time.Since(cached.fetchedAt) < statusTTL {
		return cached, nil
	}

	statusCacheMu.Lock()
	defer statusCacheMu.Unlock()

	if statusCache != nil && !force && time.Since(statusCache.fetchedAt) < statusTTL {
		return statusCache, nil
	}

	var rows []models.ApplicationStatus
	if err := config.DB.Where("delete_at IS NULL").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load application statuses: %w", err)
	}

	byCode := make(map[string]models.ApplicationStatus, len(rows))
	for _, status := range rows {
		if status.StatusCode == "" {
			continue
		}
		byCode[strings.TrimSpace(status.StatusCode)] = status
	}

	entry := &statusCacheEntry{
		statuses:  rows,
		byCode:    byCode,
		fetchedAt: time.Now(),
	}
	statusCache = entry
	return entry, nil
}

// ClearStatusCache invalidates the in-memory status cache.
func ClearStatusCache() {
	statusCacheMu.Lock()
	defer statusCacheMu.Unlock()
	statusCache = nil
}

// GetStatuses returns all catalog statuses with caching support.
func GetStatuses() ([]models.ApplicationStatus, error) {
	entry, err := loadStatuses(false)
	if err != nil {
		return nil, err
	}
	return entry.statuses, nil
}

// GetStatusByCode returns one catalog status by its code.
func GetStatusByCode(code string) (*models.ApplicationStatus, error) {
	entry, err := loadStatuses(false)
	if err != nil {
		return nil, err
	}
	status, ok := entry.byCode[strings.TrimSpace(code)]
	if !ok {
		return nil, fmt.Errorf("unknown application status %q", code)
	}
	return &status, nil
}

// CanTransitionApplication reports whether an application may move
// from oldStatus to newStatus.
func CanTransitionApplication(oldStatus, newStatus string) bool {
	for _, target := range transitionTargets[oldStatus] {
		if target == newStatus {
			return true
		}
	}
	return false
}

// TransitionApplication validates and applies a status change, updates
// the application row, and appends a history record in one
// transaction.
func TransitionApplication(db *gorm.DB, app *models.Application, newStatus string, changedBy int, reason *string) error {
	if !CanTransitionApplication(app.Status, newStatus) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, app.Status, newStatus)
	}

	oldStatus := app.Status
	now := time.Now()

	return db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"status":    newStatus,
			"update_at": now,
		}
		if newStatus == models.ApplicationStatusSubmitted {
			updates["submitted_at"] = now
		}

		if err := tx.Model(&models.Application{}).
			Where("application_id = ?", app.ApplicationID).
			Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update application status: %w", err)
		}

		history := models.ApplicationStatusHistory{
			ApplicationID: app.ApplicationID,
			OldStatus:     &oldStatus,
			NewStatus:     newStatus,
			ChangedBy:     changedBy,
			Reason:        reason,
			CreatedAt:     now,
		}
		if err := tx.Create(&history).Error; err != nil {
			return fmt.Errorf("failed to record status history: %w", err)
		}

		app.Status = newStatus
		app.UpdateAt = now
		if newStatus == models.ApplicationStatusSubmitted {
			app.SubmittedAt = &now
		}
		return nil
	})
}
