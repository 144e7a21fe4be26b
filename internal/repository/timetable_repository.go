package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campus-vault/campusvault-api/internal/models"
)

// TimetableRepository provides persistence for timetable documents.
type TimetableRepository struct {
	queryTimer

	db *sqlx.DB
}

// NewTimetableRepository creates the repository.
func NewTimetableRepository(db *sqlx.DB) *TimetableRepository {
	return &TimetableRepository{db: db}
}

const timetableColumns = `id, title, branch, semester, section, academic_year, college, file_url, storage_key, mime_type, size_bytes, uploaded_by, uploader_email, uploaded_at`

// List returns timetables for one college, newest first, with total count.
func (r *TimetableRepository) List(ctx context.Context, filter models.TimetableFilter) ([]models.Timetable, int, error) {
	defer r.observe("timetables_list", time.Now())
	base := "FROM timetables"
	where := []string{"college = $1"}
	args := []interface{}{filter.College}

	if filter.Branch != "" {
		where = append(where, fmt.Sprintf("branch = $%d", len(args)+1))
		args = append(args, filter.Branch)
	}
	if filter.Semester != "" {
		where = append(where, fmt.Sprintf("semester = $%d", len(args)+1))
		args = append(args, filter.Semester)
	}
	if filter.Section != "" {
		where = append(where, fmt.Sprintf("section = $%d", len(args)+1))
		args = append(args, filter.Section)
	}
	whereClause := strings.Join(where, " AND ")

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s WHERE %s ORDER BY uploaded_at DESC LIMIT %d OFFSET %d", timetableColumns, base, whereClause, size, offset)
	var timetables []models.Timetable
	if err := r.db.SelectContext(ctx, &timetables, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list timetables: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s WHERE %s", base, whereClause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count timetables: %w", err)
	}
	return timetables, total, nil
}

// GetByID returns a timetable by identifier.
func (r *TimetableRepository) GetByID(ctx context.Context, id string) (*models.Timetable, error) {
	defer r.observe("timetables_get_by_id", time.Now())
	query := fmt.Sprintf("SELECT %s FROM timetables WHERE id = $1", timetableColumns)
	var timetable models.Timetable
	if err := r.db.GetContext(ctx, &timetable, query, id); err != nil {
		return nil, err
	}
	return &timetable, nil
}

// Create inserts a new timetable record.
func (r *TimetableRepository) Create(ctx context.Context, timetable *models.Timetable) error {
	defer r.observe("timetables_create", time.Now())
	if timetable.ID == "" {
		timetable.ID = uuid.NewString()
	}
	if timetable.UploadedAt.IsZero() {
		timetable.UploadedAt = time.Now().UTC()
	}
	const query = `INSERT INTO timetables (id, title, branch, semester, section, academic_year, college, file_url, storage_key, mime_type, size_bytes, uploaded_by, uploader_email, uploaded_at)
VALUES (:id, :title, :branch, :semester, :section, :academic_year, :college, :file_url, :storage_key, :mime_type, :size_bytes, :uploaded_by, :uploader_email, :uploaded_at)`
	if _, err := r.db.NamedExecContext(ctx, query, timetable); err != nil {
		return fmt.Errorf("create timetable: %w", err)
	}
	return nil
}

// Delete removes a timetable record.
func (r *TimetableRepository) Delete(ctx context.Context, id string) error {
	defer r.observe("timetables_delete", time.Now())
	res, err := r.db.ExecContext(ctx, "DELETE FROM timetables WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete timetable: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// CountByCollege returns the number of timetables stored for a college.
func (r *TimetableRepository) CountByCollege(ctx context.Context, college string) (int, error) {
	defer r.observe("timetables_count_by_college", time.Now())
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM timetables WHERE college = $1", college); err != nil {
		return 0, fmt.Errorf("count timetables by college: %w", err)
	}
	return total, nil
}
