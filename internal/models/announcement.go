package models

import "time"

// AnnouncementCategory groups announcements by intent.
type AnnouncementCategory string

const (
	AnnouncementCategoryExam      AnnouncementCategory = "EXAM"
	AnnouncementCategoryEvent     AnnouncementCategory = "EVENT"
	AnnouncementCategoryNotice    AnnouncementCategory = "NOTICE"
	AnnouncementCategoryHoliday   AnnouncementCategory = "HOLIDAY"
	AnnouncementCategoryPlacement AnnouncementCategory = "PLACEMENT"
)

// Announcement represents a persisted announcement row.
type Announcement struct {
	ID           string               `db:"id" json:"id"`
	Title        string               `db:"title" json:"title"`
	Content      string               `db:"content" json:"content"`
	Category     AnnouncementCategory `db:"category" json:"category"`
	College      string               `db:"college" json:"college"`
	IsActive     bool                 `db:"is_active" json:"is_active"`
	CreatedBy    string               `db:"created_by" json:"created_by"`
	CreatorEmail string               `db:"creator_email" json:"creator_email"`
	CreatedAt    time.Time            `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time            `db:"updated_at" json:"updated_at"`
}

// AnnouncementFilter narrows announcement listings. IncludeInactive is
// only honoured for faculty and admin callers.
type AnnouncementFilter struct {
	College         string
	Category        AnnouncementCategory
	IncludeInactive bool
	Page            int
	PageSize        int
}
