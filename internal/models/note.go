package models

import "time"

// NoteType classifies how a note was produced.
type NoteType string

const (
	NoteTypeHandwritten NoteType = "handwritten"
	NoteTypeTyped       NoteType = "typed"
	NoteTypeSlides      NoteType = "slides"
	NoteTypeUploaded    NoteType = "uploaded"
)

// ValidNoteType reports whether the value is one of the known note types.
func ValidNoteType(v NoteType) bool {
	switch v {
	case NoteTypeHandwritten, NoteTypeTyped, NoteTypeSlides, NoteTypeUploaded:
		return true
	default:
		return false
	}
}

// Note represents persisted lecture-note metadata. The file itself lives
// in blob storage under StorageKey.
type Note struct {
	ID            string    `db:"id" json:"id"`
	Title         string    `db:"title" json:"title"`
	Subject       string    `db:"subject" json:"subject"`
	NoteType      NoteType  `db:"note_type" json:"note_type"`
	Branch        string    `db:"branch" json:"branch"`
	Semester      string    `db:"semester" json:"semester"`
	College       string    `db:"college" json:"college"`
	Description   string    `db:"description" json:"description,omitempty"`
	FileURL       string    `db:"file_url" json:"file_url"`
	StorageKey    string    `db:"storage_key" json:"-"`
	MimeType      string    `db:"mime_type" json:"mime_type"`
	SizeBytes     int64     `db:"size_bytes" json:"size_bytes"`
	UploadedBy    string    `db:"uploaded_by" json:"uploaded_by"`
	UploaderEmail string    `db:"uploader_email" json:"uploader_email"`
	UploadedAt    time.Time `db:"uploaded_at" json:"uploaded_at"`
}

// NoteFilter narrows note listings. College comes from the caller's
// verified claims, never from the request payload.
type NoteFilter struct {
	College  string
	Branch   string
	Semester string
	Subject  string
	NoteType NoteType
	Search   string
	Page     int
	PageSize int
}
