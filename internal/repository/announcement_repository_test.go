package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/campus-vault/campusvault-api/internal/models"
)

func announcementRows(items ...models.Announcement) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"id", "title", "content", "category", "college", "is_active", "created_by", "creator_email", "created_at", "updated_at"})
	for _, a := range items {
		rows.AddRow(a.ID, a.Title, a.Content, a.Category, a.College, a.IsActive, a.CreatedBy, a.CreatorEmail, a.CreatedAt, a.UpdatedAt)
	}
	return rows
}

func TestAnnouncementRepositoryListExcludesInactiveByDefault(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewAnnouncementRepository(db)
	stored := models.Announcement{ID: "ann-1", Title: "Mid exams", Content: "Schedule out", Category: models.AnnouncementCategoryExam, College: "NIT Trichy", IsActive: true, CreatedBy: "Dr. Rao", CreatedAt: time.Now(), UpdatedAt: time.Now()}

	mock.ExpectQuery("SELECT id, title, content, category, college, is_active, .+ WHERE TRUE AND college = \\$1 AND is_active = TRUE").
		WithArgs("NIT Trichy").
		WillReturnRows(announcementRows(stored))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM announcements")).
		WithArgs("NIT Trichy").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	items, total, err := repo.List(context.Background(), models.AnnouncementFilter{College: "NIT Trichy"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, 1, total)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAnnouncementRepositorySetActive(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewAnnouncementRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE announcements SET is_active = $2")).
		WithArgs("ann-1", false, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.SetActive(context.Background(), "ann-1", false))

	mock.ExpectExec(regexp.QuoteMeta("UPDATE announcements SET is_active = $2")).
		WithArgs("ann-missing", true, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))
	require.ErrorIs(t, repo.SetActive(context.Background(), "ann-missing", true), sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}
