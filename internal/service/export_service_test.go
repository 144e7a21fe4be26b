package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campus-vault/campusvault-api/internal/models"
	appErrors "github.com/campus-vault/campusvault-api/pkg/errors"
)

func newExportFixture() (*ExportService, *mockNoteStore) {
	notes := &mockNoteStore{notes: map[string]*models.Note{
		"note-1": {
			ID:         "note-1",
			Title:      "DSA Unit 3",
			Subject:    "Data Structures",
			Branch:     "CSE",
			Semester:   "3",
			College:    "NIT Warangal",
			UploadedBy: "Asha Rao",
			UploadedAt: time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC),
		},
	}}
	pyqs := &mockPYQStore{papers: map[string]*models.PYQ{
		"pyq-1": {
			ID:         "pyq-1",
			Subject:    "Maths",
			Branch:     "CSE",
			Year:       2024,
			ExamType:   models.ExamTypeFinal,
			College:    "NIT Warangal",
			UploadedBy: "Asha Rao",
		},
	}}
	tables := &mockTimetableStore{}
	svc := NewExportService(notes, pyqs, tables, NewAccessPolicy(), nil, nil, nil)
	return svc, notes
}

func TestExportCatalogForbiddenForStudents(t *testing.T) {
	svc, _ := newExportFixture()

	_, err := svc.Catalog(context.Background(), models.ResourceKindNote, ExportFormatCSV, studentClaims())
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErr.Code)
}

func TestExportNotesCSV(t *testing.T) {
	svc, _ := newExportFixture()

	file, err := svc.Catalog(context.Background(), models.ResourceKindNote, ExportFormatCSV, facultyClaims())
	require.NoError(t, err)
	assert.Equal(t, "text/csv", file.ContentType)
	assert.True(t, strings.HasPrefix(file.Filename, "notes_nit-warangal_"))
	assert.True(t, strings.HasSuffix(file.Filename, ".csv"))

	body := string(file.Payload)
	assert.Contains(t, body, "Title")
	assert.Contains(t, body, "DSA Unit 3")
	assert.Contains(t, body, "Asha Rao")
}

func TestExportPYQsPDF(t *testing.T) {
	svc, _ := newExportFixture()

	file, err := svc.Catalog(context.Background(), models.ResourceKindPYQ, ExportFormatPDF, facultyClaims())
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.True(t, strings.HasSuffix(file.Filename, ".pdf"))
	require.NotEmpty(t, file.Payload)
	assert.True(t, strings.HasPrefix(string(file.Payload), "%PDF"))
}

func TestExportUnsupportedFormat(t *testing.T) {
	svc, _ := newExportFixture()

	_, err := svc.Catalog(context.Background(), models.ResourceKindNote, ExportFormat("xlsx"), facultyClaims())
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}
