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

// AnnouncementRepository provides persistence for announcements.
type AnnouncementRepository struct {
	queryTimer

	db *sqlx.DB
}

// NewAnnouncementRepository creates the repository.
func NewAnnouncementRepository(db *sqlx.DB) *AnnouncementRepository {
	return &AnnouncementRepository{db: db}
}

const announcementColumns = `id, title, content, category, college, is_active, created_by, creator_email, created_at, updated_at`

// List returns announcements for one college, newest first, with total count.
// Inactive rows are excluded unless IncludeInactive is set.
func (r *AnnouncementRepository) List(ctx context.Context, filter models.AnnouncementFilter) ([]models.Announcement, int, error) {
	defer r.observe("announcements_list", time.Now())
	base := "FROM announcements"
	where := []string{"TRUE"}
	args := []interface{}{}

	if filter.College != "" {
		where = append(where, fmt.Sprintf("college = $%d", len(args)+1))
		args = append(args, filter.College)
	}
	if !filter.IncludeInactive {
		where = append(where, "is_active = TRUE")
	}
	if filter.Category != "" {
		where = append(where, fmt.Sprintf("category = $%d", len(args)+1))
		args = append(args, filter.Category)
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

	query := fmt.Sprintf("SELECT %s %s WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d", announcementColumns, base, whereClause, size, offset)
	var announcements []models.Announcement
	if err := r.db.SelectContext(ctx, &announcements, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list announcements: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s WHERE %s", base, whereClause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count announcements: %w", err)
	}
	return announcements, total, nil
}

// GetByID returns an announcement by identifier.
func (r *AnnouncementRepository) GetByID(ctx context.Context, id string) (*models.Announcement, error) {
	defer r.observe("announcements_get_by_id", time.Now())
	query := fmt.Sprintf("SELECT %s FROM announcements WHERE id = $1", announcementColumns)
	var announcement models.Announcement
	if err := r.db.GetContext(ctx, &announcement, query, id); err != nil {
		return nil, err
	}
	return &announcement, nil
}

// Create inserts a new announcement.
func (r *AnnouncementRepository) Create(ctx context.Context, announcement *models.Announcement) error {
	defer r.observe("announcements_create", time.Now())
	if announcement.ID == "" {
		announcement.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if announcement.CreatedAt.IsZero() {
		announcement.CreatedAt = now
	}
	announcement.UpdatedAt = now
	const query = `INSERT INTO announcements (id, title, content, category, college, is_active, created_by, creator_email, created_at, updated_at)
VALUES (:id, :title, :content, :category, :college, :is_active, :created_by, :creator_email, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, announcement); err != nil {
		return fmt.Errorf("create announcement: %w", err)
	}
	return nil
}

// SetActive toggles announcement visibility.
func (r *AnnouncementRepository) SetActive(ctx context.Context, id string, active bool) error {
	defer r.observe("announcements_set_active", time.Now())
	res, err := r.db.ExecContext(ctx, "UPDATE announcements SET is_active = $2, updated_at = $3 WHERE id = $1", id, active, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("set announcement active: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes an announcement.
func (r *AnnouncementRepository) Delete(ctx context.Context, id string) error {
	defer r.observe("announcements_delete", time.Now())
	res, err := r.db.ExecContext(ctx, "DELETE FROM announcements WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete announcement: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// CountByCollege returns the number of active announcements for a college.
func (r *AnnouncementRepository) CountByCollege(ctx context.Context, college string) (int, error) {
	defer r.observe("announcements_count_by_college", time.Now())
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM announcements WHERE college = $1 AND is_active = TRUE", college); err != nil {
		return 0, fmt.Errorf("count announcements by college: %w", err)
	}
	return total, nil
}
