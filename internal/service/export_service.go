package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/campus-vault/campusvault-api/internal/models"
	appErrors "github.com/campus-vault/campusvault-api/pkg/errors"
	"github.com/campus-vault/campusvault-api/pkg/export"
)

// ExportFormat selects the rendered output type.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

const exportPageSize = 100

type noteLister interface {
	List(ctx context.Context, filter models.NoteFilter) ([]models.Note, int, error)
}

type pyqLister interface {
	List(ctx context.Context, filter models.PYQFilter) ([]models.PYQ, int, error)
}

type timetableLister interface {
	List(ctx context.Context, filter models.TimetableFilter) ([]models.Timetable, int, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportFile is a rendered catalog ready to stream to the client.
type ExportFile struct {
	Filename    string
	ContentType string
	Payload     []byte
}

// ExportService renders catalog listings as CSV or PDF downloads.
type ExportService struct {
	notes      noteLister
	pyqs       pyqLister
	timetables timetableLister
	policy     *AccessPolicy
	csv        csvRenderer
	pdf        pdfRenderer
	logger     *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(notes noteLister, pyqs pyqLister, timetables timetableLister, policy *AccessPolicy, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if policy == nil {
		policy = NewAccessPolicy()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		notes:      notes,
		pyqs:       pyqs,
		timetables: timetables,
		policy:     policy,
		csv:        csv,
		pdf:        pdf,
		logger:     logger,
	}
}

// Catalog renders the full listing of a resource kind for the actor's college.
// Exports are restricted to faculty and admins.
func (s *ExportService) Catalog(ctx context.Context, kind models.ResourceKind, format ExportFormat, actor *models.JWTClaims) (*ExportFile, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if !s.policy.CanModerate(actor, actor.College) {
		return nil, appErrors.ErrForbidden
	}

	dataset, title, err := s.buildDataset(ctx, kind, actor.College)
	if err != nil {
		return nil, err
	}

	var payload []byte
	var contentType string
	switch format {
	case ExportFormatCSV:
		payload, err = s.csv.Render(dataset)
		contentType = "text/csv"
	case ExportFormatPDF:
		payload, err = s.pdf.Render(dataset, title)
		contentType = "application/pdf"
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	return &ExportFile{
		Filename:    s.buildFilename(kind, actor.College, format),
		ContentType: contentType,
		Payload:     payload,
	}, nil
}

func (s *ExportService) buildDataset(ctx context.Context, kind models.ResourceKind, college string) (export.Dataset, string, error) {
	switch kind {
	case models.ResourceKindNote:
		return s.buildNotesDataset(ctx, college)
	case models.ResourceKindPYQ:
		return s.buildPYQsDataset(ctx, college)
	case models.ResourceKindTimetable:
		return s.buildTimetablesDataset(ctx, college)
	default:
		return export.Dataset{}, "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported resource kind %q", kind))
	}
}

func (s *ExportService) buildNotesDataset(ctx context.Context, college string) (export.Dataset, string, error) {
	rows := make([]map[string]string, 0)
	for page := 1; ; page++ {
		notes, total, err := s.notes.List(ctx, models.NoteFilter{College: college, Page: page, PageSize: exportPageSize})
		if err != nil {
			return export.Dataset{}, "", appErrors.Wrap(err, appErrors.ErrCollaborator.Code, appErrors.ErrCollaborator.Status, "failed to list notes")
		}
		for _, note := range notes {
			rows = append(rows, map[string]string{
				"Title":       note.Title,
				"Subject":     note.Subject,
				"Branch":      note.Branch,
				"Semester":    note.Semester,
				"Uploaded By": note.UploadedBy,
				"Uploaded At": note.UploadedAt.UTC().Format(time.RFC3339),
			})
		}
		if len(notes) == 0 || len(rows) >= total {
			break
		}
	}
	dataset := export.Dataset{
		Headers: []string{"Title", "Subject", "Branch", "Semester", "Uploaded By", "Uploaded At"},
		Rows:    rows,
	}
	return dataset, fmt.Sprintf("Notes Catalog %s", college), nil
}

func (s *ExportService) buildPYQsDataset(ctx context.Context, college string) (export.Dataset, string, error) {
	rows := make([]map[string]string, 0)
	for page := 1; ; page++ {
		papers, total, err := s.pyqs.List(ctx, models.PYQFilter{College: college, Page: page, PageSize: exportPageSize})
		if err != nil {
			return export.Dataset{}, "", appErrors.Wrap(err, appErrors.ErrCollaborator.Code, appErrors.ErrCollaborator.Status, "failed to list question papers")
		}
		for _, paper := range papers {
			rows = append(rows, map[string]string{
				"Subject":     paper.Subject,
				"Branch":      paper.Branch,
				"Year":        fmt.Sprintf("%d", paper.Year),
				"Exam Type":   string(paper.ExamType),
				"Uploaded By": paper.UploadedBy,
				"Uploaded At": paper.UploadedAt.UTC().Format(time.RFC3339),
			})
		}
		if len(papers) == 0 || len(rows) >= total {
			break
		}
	}
	dataset := export.Dataset{
		Headers: []string{"Subject", "Branch", "Year", "Exam Type", "Uploaded By", "Uploaded At"},
		Rows:    rows,
	}
	return dataset, fmt.Sprintf("Question Paper Catalog %s", college), nil
}

func (s *ExportService) buildTimetablesDataset(ctx context.Context, college string) (export.Dataset, string, error) {
	rows := make([]map[string]string, 0)
	for page := 1; ; page++ {
		timetables, total, err := s.timetables.List(ctx, models.TimetableFilter{College: college, Page: page, PageSize: exportPageSize})
		if err != nil {
			return export.Dataset{}, "", appErrors.Wrap(err, appErrors.ErrCollaborator.Code, appErrors.ErrCollaborator.Status, "failed to list timetables")
		}
		for _, timetable := range timetables {
			rows = append(rows, map[string]string{
				"Title":       timetable.Title,
				"Branch":      timetable.Branch,
				"Semester":    timetable.Semester,
				"Section":     timetable.Section,
				"Uploaded By": timetable.UploadedBy,
				"Uploaded At": timetable.UploadedAt.UTC().Format(time.RFC3339),
			})
		}
		if len(timetables) == 0 || len(rows) >= total {
			break
		}
	}
	dataset := export.Dataset{
		Headers: []string{"Title", "Branch", "Semester", "Section", "Uploaded By", "Uploaded At"},
		Rows:    rows,
	}
	return dataset, fmt.Sprintf("Timetable Catalog %s", college), nil
}

func (s *ExportService) buildFilename(kind models.ResourceKind, college string, format ExportFormat) string {
	timestamp := time.Now().UTC().Format("20060102_150405")
	return fmt.Sprintf("%s_%s_%s.%s", strings.ToLower(string(kind)), slugify(college), timestamp, format)
}
