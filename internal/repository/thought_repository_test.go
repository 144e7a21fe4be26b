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

func TestThoughtRepositoryListPassesExpiryCutoff(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewThoughtRepository(db)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "content", "college", "author_name", "author_email", "created_at", "expires_at"}).
		AddRow("th-1", "exam week survival tips?", "NIT Trichy", "Asha", "asha@example.edu", now.Add(-time.Hour), now.Add(23*time.Hour))

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, content, college, author_name, author_email, created_at, expires_at FROM thoughts WHERE college = $1 AND expires_at > $2")).
		WithArgs("NIT Trichy", now).
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM thoughts WHERE college = $1 AND expires_at > $2")).
		WithArgs("NIT Trichy", now).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	thoughts, total, err := repo.List(context.Background(), models.ThoughtFilter{College: "NIT Trichy"}, now)
	require.NoError(t, err)
	require.Len(t, thoughts, 1)
	require.Equal(t, 1, total)
	require.Equal(t, "th-1", thoughts[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestThoughtRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewThoughtRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO thoughts")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	now := time.Now().UTC()
	thought := &models.Thought{
		Content:     "anyone has the ML lab manual?",
		College:     "NIT Trichy",
		AuthorName:  "Ravi",
		AuthorEmail: "ravi@example.edu",
		CreatedAt:   now,
		ExpiresAt:   now.Add(24 * time.Hour),
	}
	require.NoError(t, repo.Create(context.Background(), thought))
	require.NotEmpty(t, thought.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}
