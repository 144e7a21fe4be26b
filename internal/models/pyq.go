package models

import "time"

// ExamType classifies previous-year question papers.
type ExamType string

const (
	ExamTypeMid     ExamType = "mid"
	ExamTypeFinal   ExamType = "final"
	ExamTypeQuiz    ExamType = "quiz"
	ExamTypeRegular ExamType = "regular"
)

// ValidExamType reports whether the value is one of the known exam types.
func ValidExamType(v ExamType) bool {
	switch v {
	case ExamTypeMid, ExamTypeFinal, ExamTypeQuiz, ExamTypeRegular:
		return true
	default:
		return false
	}
}

// PYQ represents a previous-year question paper record.
type PYQ struct {
	ID            string    `db:"id" json:"id"`
	Subject       string    `db:"subject" json:"subject"`
	Branch        string    `db:"branch" json:"branch"`
	Year          int       `db:"year" json:"year"`
	ExamType      ExamType  `db:"exam_type" json:"exam_type"`
	College       string    `db:"college" json:"college"`
	FileURL       string    `db:"file_url" json:"file_url"`
	StorageKey    string    `db:"storage_key" json:"-"`
	MimeType      string    `db:"mime_type" json:"mime_type"`
	SizeBytes     int64     `db:"size_bytes" json:"size_bytes"`
	UploadedBy    string    `db:"uploaded_by" json:"uploaded_by"`
	UploaderEmail string    `db:"uploader_email" json:"uploader_email"`
	UploadedAt    time.Time `db:"uploaded_at" json:"uploaded_at"`
}

// PYQFilter narrows question-paper listings.
type PYQFilter struct {
	College  string
	Branch   string
	Subject  string
	Year     int
	ExamType ExamType
	Page     int
	PageSize int
}
