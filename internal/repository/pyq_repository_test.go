package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/campus-vault/campusvault-api/internal/models"
)

func pyqRows(papers ...models.PYQ) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"id", "subject", "branch", "year", "exam_type", "college", "file_url", "storage_key", "mime_type", "size_bytes", "uploaded_by", "uploader_email", "uploaded_at"})
	for _, p := range papers {
		rows.AddRow(p.ID, p.Subject, p.Branch, p.Year, p.ExamType, p.College, p.FileURL, p.StorageKey, p.MimeType, p.SizeBytes, p.UploadedBy, p.UploaderEmail, p.UploadedAt)
	}
	return rows
}

func TestPYQRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewPYQRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO pyqs")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	paper := &models.PYQ{
		Subject:       "Signals",
		Branch:        "ECE",
		Year:          2023,
		ExamType:      models.ExamTypeFinal,
		College:       "NIT Trichy",
		FileURL:       "http://blob/pyqs/s.pdf",
		StorageKey:    "pyqs/nit-trichy/ece/2023/s.pdf",
		MimeType:      "application/pdf",
		SizeBytes:     4096,
		UploadedBy:    "Ravi",
		UploaderEmail: "ravi@example.edu",
	}
	require.NoError(t, repo.Create(context.Background(), paper))
	require.NotEmpty(t, paper.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPYQRepositoryListYearAndExamType(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewPYQRepository(db)
	stored := models.PYQ{ID: "pyq-1", Subject: "Signals", Branch: "ECE", Year: 2023, ExamType: models.ExamTypeFinal, College: "NIT Trichy", UploadedAt: time.Now()}
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, subject, branch, year, exam_type, college")).
		WithArgs("NIT Trichy", 2023, models.ExamTypeFinal).
		WillReturnRows(pyqRows(stored))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM pyqs")).
		WithArgs("NIT Trichy", 2023, models.ExamTypeFinal).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	papers, total, err := repo.List(context.Background(), models.PYQFilter{
		College:  "NIT Trichy",
		Year:     2023,
		ExamType: models.ExamTypeFinal,
	})
	require.NoError(t, err)
	require.Len(t, papers, 1)
	require.Equal(t, 1, total)
	require.Equal(t, models.ExamTypeFinal, papers[0].ExamType)
	require.NoError(t, mock.ExpectationsWereMet())
}
