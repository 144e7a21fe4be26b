package service

import (
	"strings"

	"github.com/campus-vault/campusvault-api/internal/models"
)

// AccessPolicy centralises every authorisation decision for catalogued
// resources. Decisions depend only on the verified claims and the record
// under consideration, never on request payloads.
type AccessPolicy struct{}

// NewAccessPolicy constructs the policy.
func NewAccessPolicy() *AccessPolicy {
	return &AccessPolicy{}
}

// CanRead reports whether the actor may read records of the given college.
// Reads are college scoped: members only see their own college's catalog.
func (p *AccessPolicy) CanRead(actor *models.JWTClaims, college string) bool {
	if actor == nil {
		return false
	}
	return strings.EqualFold(actor.College, college)
}

// CanCreateResource reports whether the actor may upload to the given
// collection. Notes and question papers accept any signed-in member;
// timetables are restricted to faculty and admins.
func (p *AccessPolicy) CanCreateResource(actor *models.JWTClaims, kind models.ResourceKind) bool {
	if actor == nil {
		return false
	}
	if kind == models.ResourceKindTimetable {
		return actor.Role == models.RoleFaculty || actor.Role == models.RoleAdmin
	}
	return true
}

// CanCreateAnnouncement reports whether the actor may publish announcements.
func (p *AccessPolicy) CanCreateAnnouncement(actor *models.JWTClaims) bool {
	if actor == nil {
		return false
	}
	return actor.Role == models.RoleFaculty || actor.Role == models.RoleAdmin
}

// CanDelete reports whether the actor may remove a record owned by
// ownerName/ownerEmail in the given college. Owners may always delete
// their own records; faculty and admins may moderate anything within
// their own college.
func (p *AccessPolicy) CanDelete(actor *models.JWTClaims, ownerName, ownerEmail, college string) bool {
	if actor == nil {
		return false
	}
	if p.isOwner(actor, ownerName, ownerEmail) {
		return true
	}
	if actor.Role != models.RoleFaculty && actor.Role != models.RoleAdmin {
		return false
	}
	return strings.EqualFold(actor.College, college)
}

// CanModerate reports whether the actor holds a moderation role for the
// given college.
func (p *AccessPolicy) CanModerate(actor *models.JWTClaims, college string) bool {
	if actor == nil {
		return false
	}
	if actor.Role != models.RoleFaculty && actor.Role != models.RoleAdmin {
		return false
	}
	return strings.EqualFold(actor.College, college)
}

func (p *AccessPolicy) isOwner(actor *models.JWTClaims, ownerName, ownerEmail string) bool {
	if ownerEmail != "" && strings.EqualFold(actor.Email, ownerEmail) {
		return true
	}
	return ownerName != "" && strings.EqualFold(actor.FullName, ownerName)
}
