package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/campus-vault/campusvault-api/internal/models"
)

func TestAccessPolicyCanRead(t *testing.T) {
	policy := NewAccessPolicy()

	assert.True(t, policy.CanRead(studentClaims(), "NIT Warangal"))
	assert.True(t, policy.CanRead(studentClaims(), "nit warangal"), "college match is case insensitive")
	assert.False(t, policy.CanRead(studentClaims(), "IIT Bombay"))
	assert.False(t, policy.CanRead(nil, "NIT Warangal"))
}

func TestAccessPolicyCanCreateResource(t *testing.T) {
	policy := NewAccessPolicy()

	assert.True(t, policy.CanCreateResource(studentClaims(), models.ResourceKindNote))
	assert.True(t, policy.CanCreateResource(studentClaims(), models.ResourceKindPYQ))
	assert.False(t, policy.CanCreateResource(studentClaims(), models.ResourceKindTimetable))
	assert.True(t, policy.CanCreateResource(facultyClaims(), models.ResourceKindTimetable))
}

func TestAccessPolicyCanDelete(t *testing.T) {
	policy := NewAccessPolicy()

	owner := studentClaims()
	assert.True(t, policy.CanDelete(owner, owner.FullName, owner.Email, owner.College), "owner may delete")
	assert.True(t, policy.CanDelete(owner, "", owner.Email, owner.College), "email match alone suffices")
	assert.True(t, policy.CanDelete(owner, owner.FullName, "", owner.College), "name match alone suffices")
	assert.True(t, policy.CanDelete(facultyClaims(), "Asha Rao", "asha@nitw.ac.in", "NIT Warangal"), "faculty moderate their college")

	stranger := &models.JWTClaims{UserID: "u9", Role: models.RoleStudent, Email: "other@nitw.ac.in", FullName: "Someone Else", College: "NIT Warangal"}
	assert.False(t, policy.CanDelete(stranger, "Asha Rao", "asha@nitw.ac.in", "NIT Warangal"))

	otherFaculty := &models.JWTClaims{UserID: "f9", Role: models.RoleFaculty, Email: "prof@iitb.ac.in", FullName: "Prof Shah", College: "IIT Bombay"}
	assert.False(t, policy.CanDelete(otherFaculty, "Asha Rao", "asha@nitw.ac.in", "NIT Warangal"), "moderation does not cross colleges")
}

func TestAccessPolicyCanModerate(t *testing.T) {
	policy := NewAccessPolicy()

	assert.False(t, policy.CanModerate(studentClaims(), "NIT Warangal"))
	assert.True(t, policy.CanModerate(facultyClaims(), "NIT Warangal"))
	assert.False(t, policy.CanModerate(facultyClaims(), "IIT Bombay"))

	admin := &models.JWTClaims{UserID: "a1", Role: models.RoleAdmin, Email: "admin@nitw.ac.in", FullName: "Admin", College: "NIT Warangal"}
	assert.True(t, policy.CanModerate(admin, "NIT Warangal"))
}
