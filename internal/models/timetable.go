package models

import "time"

// Timetable represents a published class timetable document.
type Timetable struct {
	ID            string    `db:"id" json:"id"`
	Title         string    `db:"title" json:"title"`
	Branch        string    `db:"branch" json:"branch"`
	Semester      string    `db:"semester" json:"semester"`
	Section       string    `db:"section" json:"section,omitempty"`
	AcademicYear  string    `db:"academic_year" json:"academic_year"`
	College       string    `db:"college" json:"college"`
	FileURL       string    `db:"file_url" json:"file_url"`
	StorageKey    string    `db:"storage_key" json:"-"`
	MimeType      string    `db:"mime_type" json:"mime_type"`
	SizeBytes     int64     `db:"size_bytes" json:"size_bytes"`
	UploadedBy    string    `db:"uploaded_by" json:"uploaded_by"`
	UploaderEmail string    `db:"uploader_email" json:"uploader_email"`
	UploadedAt    time.Time `db:"uploaded_at" json:"uploaded_at"`
}

// TimetableFilter narrows timetable listings.
type TimetableFilter struct {
	College  string
	Branch   string
	Semester string
	Section  string
	Page     int
	PageSize int
}
