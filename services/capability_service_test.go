package services

import (
	"testing"

	"audition-management-api/models"
)

func TestCapabilitiesMembership(t *testing.T) {
	caps := &Capabilities{
		UserID:           5,
		RoleID:           models.RoleOrgAdmin,
		AdminOrgs:        []int{10, 11},
		ReviewerPrograms: []int{20},
		Coalitions:       []int{30},
	}

	if !caps.IsOrgAdmin(10) || !caps.IsOrgAdmin(11) {
		t.Error("expected admin of orgs 10 and 11")
	}
	if caps.IsOrgAdmin(12) {
		t.Error("unexpected admin of org 12")
	}
	if !caps.IsProgramReviewer(20) {
		t.Error("expected reviewer of program 20")
	}
	if caps.IsProgramReviewer(21) {
		t.Error("unexpected reviewer of program 21")
	}
	if !caps.IsCoalitionAdmin(30) {
		t.Error("expected admin of coalition 30")
	}
	if caps.IsCoalitionAdmin(31) {
		t.Error("unexpected admin of coalition 31")
	}
}

func TestCapabilitiesSuperAdminOverride(t *testing.T) {
	caps := &Capabilities{
		UserID: 1,
		RoleID: models.RoleSuperAdmin,
	}

	if !caps.IsOrgAdmin(999) {
		t.Error("super admin should administer every organization")
	}
	if !caps.IsCoalitionAdmin(999) {
		t.Error("super admin should administer every coalition")
	}
	// Reviewer assignment stays explicit even for super admins.
	if caps.IsProgramReviewer(999) {
		t.Error("super admin should not implicitly review programs")
	}
}
