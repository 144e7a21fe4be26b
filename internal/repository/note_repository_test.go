package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/campus-vault/campusvault-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func noteRows(notes ...models.Note) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"id", "title", "subject", "note_type", "branch", "semester", "college", "description", "file_url", "storage_key", "mime_type", "size_bytes", "uploaded_by", "uploader_email", "uploaded_at"})
	for _, n := range notes {
		rows.AddRow(n.ID, n.Title, n.Subject, n.NoteType, n.Branch, n.Semester, n.College, n.Description, n.FileURL, n.StorageKey, n.MimeType, n.SizeBytes, n.UploadedBy, n.UploaderEmail, n.UploadedAt)
	}
	return rows
}

func TestNoteRepositoryCreateAndGet(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewNoteRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO notes")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	note := &models.Note{
		Title:         "Unit 3 DBMS",
		Subject:       "DBMS",
		Branch:        "CSE",
		Semester:      "4",
		College:       "NIT Trichy",
		FileURL:       "http://blob/notes/a.pdf",
		StorageKey:    "notes/nit-trichy/cse/4/a.pdf",
		MimeType:      "application/pdf",
		SizeBytes:     2048,
		UploadedBy:    "Asha",
		UploaderEmail: "asha@example.edu",
	}
	require.NoError(t, repo.Create(context.Background(), note))
	require.NotEmpty(t, note.ID)
	require.False(t, note.UploadedAt.IsZero())

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, title, subject, note_type, branch, semester, college")).
		WithArgs(note.ID).
		WillReturnRows(noteRows(*note))

	found, err := repo.GetByID(context.Background(), note.ID)
	require.NoError(t, err)
	require.Equal(t, note.ID, found.ID)
	require.Equal(t, "DBMS", found.Subject)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNoteRepositoryListFilters(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewNoteRepository(db)
	stored := models.Note{ID: "note-1", Title: "OS Notes", Subject: "OS", Branch: "CSE", Semester: "4", College: "NIT Trichy", UploadedAt: time.Now()}
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, title, subject, note_type, branch, semester, college")).
		WithArgs("NIT Trichy", "CSE", "4").
		WillReturnRows(noteRows(stored))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM notes")).
		WithArgs("NIT Trichy", "CSE", "4").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	notes, total, err := repo.List(context.Background(), models.NoteFilter{
		College:  "NIT Trichy",
		Branch:   "CSE",
		Semester: "4",
	})
	require.NoError(t, err)
	require.Len(t, notes, 1)
	require.Equal(t, 1, total)
	require.Equal(t, "note-1", notes[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

type recordingQueryObserver struct {
	labels []string
}

func (o *recordingQueryObserver) ObserveDBQuery(label string, duration time.Duration) {
	o.labels = append(o.labels, label)
}

func TestNoteRepositoryReportsQueryTimings(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewNoteRepository(db)
	obs := &recordingQueryObserver{}
	repo.SetObserver(obs)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM notes WHERE college = $1")).
		WithArgs("NIT Trichy").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	total, err := repo.CountByCollege(context.Background(), "NIT Trichy")
	require.NoError(t, err)
	require.Equal(t, 3, total)
	require.Equal(t, []string{"notes_count_by_college"}, obs.labels)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNoteRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewNoteRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM notes WHERE id = $1")).
		WithArgs("note-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Delete(context.Background(), "note-1"))

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM notes WHERE id = $1")).
		WithArgs("note-missing").
		WillReturnResult(sqlmock.NewResult(0, 0))
	err := repo.Delete(context.Background(), "note-missing")
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}
