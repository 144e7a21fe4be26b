package dto

import "github.com/campus-vault/campusvault-api/internal/models"

// CreateAnnouncementRequest defines payload for publishing an announcement.
type CreateAnnouncementRequest struct {
	Title    string                      `json:"title" validate:"required,min=2"`
	Content  string                      `json:"content" validate:"required"`
	Category models.AnnouncementCategory `json:"category" validate:"omitempty,oneof=EXAM EVENT NOTICE HOLIDAY PLACEMENT"`
}

// UpdateAnnouncementStatusRequest toggles announcement visibility.
type UpdateAnnouncementStatusRequest struct {
	IsActive *bool `json:"is_active" validate:"required"`
}

// AnnouncementFilter captures announcement listing query parameters.
// College is only honoured for anonymous callers; authenticated listings
// are scoped to the claims college.
type AnnouncementFilter struct {
	College         string
	Category        models.AnnouncementCategory
	IncludeInactive bool
	Page            int
	PageSize        int
}
