package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campus-vault/campusvault-api/internal/models"
)

// ThoughtRepository provides persistence for the ephemeral thoughts board.
type ThoughtRepository struct {
	queryTimer

	db *sqlx.DB
}

// NewThoughtRepository creates the repository.
func NewThoughtRepository(db *sqlx.DB) *ThoughtRepository {
	return &ThoughtRepository{db: db}
}

const thoughtColumns = `id, content, college, author_name, author_email, created_at, expires_at`

// List returns unexpired thoughts for one college, newest first. The
// expiry cut is applied in the query so stale rows never surface.
func (r *ThoughtRepository) List(ctx context.Context, filter models.ThoughtFilter, now time.Time) ([]models.Thought, int, error) {
	defer r.observe("thoughts_list", time.Now())
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 50
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s FROM thoughts WHERE college = $1 AND expires_at > $2 ORDER BY created_at DESC LIMIT %d OFFSET %d", thoughtColumns, size, offset)
	var thoughts []models.Thought
	if err := r.db.SelectContext(ctx, &thoughts, query, filter.College, now); err != nil {
		return nil, 0, fmt.Errorf("list thoughts: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM thoughts WHERE college = $1 AND expires_at > $2", filter.College, now); err != nil {
		return nil, 0, fmt.Errorf("count thoughts: %w", err)
	}
	return thoughts, total, nil
}

// GetByID returns a thought by identifier regardless of expiry. Callers
// decide how to treat expired rows.
func (r *ThoughtRepository) GetByID(ctx context.Context, id string) (*models.Thought, error) {
	defer r.observe("thoughts_get_by_id", time.Now())
	query := fmt.Sprintf("SELECT %s FROM thoughts WHERE id = $1", thoughtColumns)
	var thought models.Thought
	if err := r.db.GetContext(ctx, &thought, query, id); err != nil {
		return nil, err
	}
	return &thought, nil
}

// Create inserts a new thought.
func (r *ThoughtRepository) Create(ctx context.Context, thought *models.Thought) error {
	defer r.observe("thoughts_create", time.Now())
	if thought.ID == "" {
		thought.ID = uuid.NewString()
	}
	const query = `INSERT INTO thoughts (id, content, college, author_name, author_email, created_at, expires_at)
VALUES (:id, :content, :college, :author_name, :author_email, :created_at, :expires_at)`
	if _, err := r.db.NamedExecContext(ctx, query, thought); err != nil {
		return fmt.Errorf("create thought: %w", err)
	}
	return nil
}

// Delete removes a thought.
func (r *ThoughtRepository) Delete(ctx context.Context, id string) error {
	defer r.observe("thoughts_delete", time.Now())
	res, err := r.db.ExecContext(ctx, "DELETE FROM thoughts WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete thought: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// CountByCollege returns the number of unexpired thoughts for a college.
func (r *ThoughtRepository) CountByCollege(ctx context.Context, college string, now time.Time) (int, error) {
	defer r.observe("thoughts_count_by_college", time.Now())
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM thoughts WHERE college = $1 AND expires_at > $2", college, now); err != nil {
		return 0, fmt.Errorf("count thoughts by college: %w", err)
	}
	return total, nil
}
