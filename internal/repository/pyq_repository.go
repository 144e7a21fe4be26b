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

// PYQRepository provides persistence for previous-year question papers.
type PYQRepository struct {
	queryTimer

	db *sqlx.DB
}

// NewPYQRepository creates the repository.
func NewPYQRepository(db *sqlx.DB) *PYQRepository {
	return &PYQRepository{db: db}
}

const pyqColumns = `id, subject, branch, year, exam_type, college, file_url, storage_key, mime_type, size_bytes, uploaded_by, uploader_email, uploaded_at`

// List returns question papers for one college ordered by year descending,
// then upload time descending, with total count.
func (r *PYQRepository) List(ctx context.Context, filter models.PYQFilter) ([]models.PYQ, int, error) {
	defer r.observe("pyqs_list", time.Now())
	base := "FROM pyqs"
	where := []string{"college = $1"}
	args := []interface{}{filter.College}

	if filter.Branch != "" {
		where = append(where, fmt.Sprintf("branch = $%d", len(args)+1))
		args = append(args, filter.Branch)
	}
	if filter.Subject != "" {
		where = append(where, fmt.Sprintf("subject = $%d", len(args)+1))
		args = append(args, filter.Subject)
	}
	if filter.Year > 0 {
		where = append(where, fmt.Sprintf("year = $%d", len(args)+1))
		args = append(args, filter.Year)
	}
	if filter.ExamType != "" {
		where = append(where, fmt.Sprintf("exam_type = $%d", len(args)+1))
		args = append(args, filter.ExamType)
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

	query := fmt.Sprintf("SELECT %s %s WHERE %s ORDER BY year DESC, uploaded_at DESC LIMIT %d OFFSET %d", pyqColumns, base, whereClause, size, offset)
	var papers []models.PYQ
	if err := r.db.SelectContext(ctx, &papers, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list pyqs: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s WHERE %s", base, whereClause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count pyqs: %w", err)
	}
	return papers, total, nil
}

// GetByID returns a question paper by identifier.
func (r *PYQRepository) GetByID(ctx context.Context, id string) (*models.PYQ, error) {
	defer r.observe("pyqs_get_by_id", time.Now())
	query := fmt.Sprintf("SELECT %s FROM pyqs WHERE id = $1", pyqColumns)
	var paper models.PYQ
	if err := r.db.GetContext(ctx, &paper, query, id); err != nil {
		return nil, err
	}
	return &paper, nil
}

// Create inserts a new question paper record.
func (r *PYQRepository) Create(ctx context.Context, paper *models.PYQ) error {
	defer r.observe("pyqs_create", time.Now())
	if paper.ID == "" {
		paper.ID = uuid.NewString()
	}
	if paper.UploadedAt.IsZero() {
		paper.UploadedAt = time.Now().UTC()
	}
	const query = `INSERT INTO pyqs (id, subject, branch, year, exam_type, college, file_url, storage_key, mime_type, size_bytes, uploaded_by, uploader_email, uploaded_at)
VALUES (:id, :subject, :branch, :year, :exam_type, :college, :file_url, :storage_key, :mime_type, :size_bytes, :uploaded_by, :uploader_email, :uploaded_at)`
	if _, err := r.db.NamedExecContext(ctx, query, paper); err != nil {
		return fmt.Errorf("create pyq: %w", err)
	}
	return nil
}

// Delete removes a question paper record.
func (r *PYQRepository) Delete(ctx context.Context, id string) error {
	defer r.observe("pyqs_delete", time.Now())
	res, err := r.db.ExecContext(ctx, "DELETE FROM pyqs WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete pyq: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// CountByCollege returns the number of question papers stored for a college.
func (r *PYQRepository) CountByCollege(ctx context.Context, college string) (int, error) {
	defer r.observe("pyqs_count_by_college", time.Now())
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM pyqs WHERE college = $1", college); err != nil {
		return 0, fmt.Errorf("count pyqs by college: %w", err)
	}
	return total, nil
}
