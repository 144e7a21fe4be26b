package dto

import "github.com/campus-vault/campusvault-api/internal/models"

// CreateNoteRequest contains metadata submitted alongside a note upload.
type CreateNoteRequest struct {
	Title       string          `form:"title" json:"title" validate:"required,min=2"`
	Subject     string          `form:"subject" json:"subject" validate:"required"`
	NoteType    models.NoteType `form:"note_type" json:"note_type" validate:"omitempty,oneof=handwritten typed slides uploaded"`
	Branch      string          `form:"branch" json:"branch" validate:"required"`
	Semester    string          `form:"semester" json:"semester" validate:"required,oneof=1 2 3 4 5 6 7 8"`
	Description string          `form:"description" json:"description"`
}

// CreatePYQRequest contains metadata submitted alongside a question-paper upload.
type CreatePYQRequest struct {
	Subject  string          `form:"subject" json:"subject" validate:"required"`
	Branch   string          `form:"branch" json:"branch" validate:"required"`
	Year     int             `form:"year" json:"year" validate:"required,gte=1990,lte=2100"`
	ExamType models.ExamType `form:"exam_type" json:"exam_type" validate:"required,oneof=mid final quiz regular"`
}

// CreateTimetableRequest contains metadata submitted alongside a timetable upload.
type CreateTimetableRequest struct {
	Title        string `form:"title" json:"title" validate:"required,min=2"`
	Branch       string `form:"branch" json:"branch" validate:"required"`
	Semester     string `form:"semester" json:"semester" validate:"required,oneof=1 2 3 4 5 6 7 8"`
	Section      string `form:"section" json:"section"`
	AcademicYear string `form:"academic_year" json:"academic_year"`
}

// NoteFilter captures note listing query parameters.
type NoteFilter struct {
	Branch   string
	Semester string
	Subject  string
	NoteType models.NoteType
	Search   string
	Page     int
	PageSize int
}

// PYQFilter captures question-paper listing query parameters.
type PYQFilter struct {
	Branch   string
	Subject  string
	Year     int
	ExamType models.ExamType
	Page     int
	PageSize int
}

// TimetableFilter captures timetable listing query parameters.
type TimetableFilter struct {
	Branch   string
	Semester string
	Section  string
	Page     int
	PageSize int
}
