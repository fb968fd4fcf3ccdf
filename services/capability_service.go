package services

import (
	"fmt"
	"sync"
	"time"

	"audition-management-api/config"
	"audition-management-api/models"
)

var (
	capCacheMu sync.RWMutex
	capCache   = map[int]*capCacheEntry{}
	capTTL     = 30 * time.Second
)

type capCacheEntry struct {
	caps      *Capabilities
	fetchedAt time.Time
}

// Capabilities is the per-session computed permission set used to gate
// routes: which organizations the user administers, which programs
// they review for, and which coalitions they oversee. It is
// recomputed on demand behind a short TTL, so it is eventually
// consistent rather than push-driven.
type Capabilities struct {
	UserID           int    `json:"user_id"`
	RoleID           int    `json:"role_id"`
	Role             string `json:"role"`
	AdminOrgs        []int  `json:"admin_orgs"`
	ReviewerPrograms []int  `json:"reviewer_programs"`
	Coalitions       []int  `json:"coalitions"`
}

// IsOrgAdmin reports whether the user administers the organization.
// Super admins administer everything.
func (c *Capabilities) IsOrgAdmin(orgID int) bool {
	if c.RoleID == models.RoleSuperAdmin {
		return true
	}
	for _, id := range c.AdminOrgs {
		if id == orgID {
			return true
		}
	}
	return false
}

// IsProgramReviewer reports whether the user reviews for the program.
func (c *Capabilities) IsProgramReviewer(programID int) bool {
	for _, id := range c.ReviewerPrograms {
		if id == programID {
			return true
		}
	}
	return false
}

// IsCoalitionAdmin reports whether the user administers the coalition.
// Super admins administer everything.
func (c *Capabilities) IsCoalitionAdmin(coalitionID int) bool {
	if c.RoleID == models.RoleSuperAdmin {
		return true
	}
	for _, id := range c.Coalitions {
		if id == coalitionID {
			return true
		}
	}
	return false
}

// GetCapabilities computes (or returns the cached) capability set for
// one user.
func GetCapabilities(userID int) (*Capabilities, error) {
	capCacheMu.RLock()
	entry, ok := capCache[userID]
	capCacheMu.RUnlock()

	if ok && time.Since(entry.fetchedAt) < capTTL {
		return entry.caps, nil
	}

	caps, err := computeCapabilities(userID)
	if err != nil {
		return nil, err
	}

	capCacheMu.Lock()
	capCache[userID] = &capCacheEntry{caps: caps, fetchedAt: time.Now()}
	capCacheMu.Unlock()

	return caps, nil
}

func computeCapabilities(userID int) (*Capabilities, error) {
	var user models.User
	if err := config.DB.Preload("Role").
		Where("user_id = ? AND delete_at IS NULL", userID).
		First(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to load user %d: %w", userID, err)
	}

	caps := &Capabilities{
		UserID:           user.UserID,
		RoleID:           user.RoleID,
		Role:             user.Role.Role,
		AdminOrgs:        []int{},
		ReviewerPrograms: []int{},
		Coalitions:       []int{},
	}

	if err := config.DB.Model(&models.OrgAdmin{}).
		Where("user_id = ?", userID).
		Pluck("org_id", &caps.AdminOrgs).Error; err != nil {
		return nil, fmt.Errorf("failed to load admin orgs: %w", err)
	}

	if err := config.DB.Model(&models.ProgramReviewer{}).
		Where("user_id = ?", userID).
		Pluck("program_id", &caps.ReviewerPrograms).Error; err != nil {
		return nil, fmt.Errorf("failed to load reviewer programs: %w", err)
	}

	if err := config.DB.Model(&models.CoalitionAdmin{}).
		Where("user_id = ?", userID).
		Pluck("coalition_id", &caps.Coalitions).Error; err != nil {
		return nil, fmt.Errorf("failed to load coalitions: %w", err)
	}

	return caps, nil
}

// InvalidateCapabilities drops one user's cached capability set, e.g.
// after an assignment change.
func InvalidateCapabilities(userID int) {
	capCacheMu.Lock()
	delete(capCache, userID)
	capCacheMu.Unlock()
}

// ClearCapabilityCache drops every cached capability set.
func ClearCapabilityCache() {
	capCacheMu.Lock()
	capCache = map[int]*capCacheEntry{}
	capCacheMu.Unlock()
}
