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

// RequestRepository provides persistence for resource requests.
type RequestRepository struct {
	queryTimer

	db *sqlx.DB
}

// NewRequestRepository creates the repository.
func NewRequestRepository(db *sqlx.DB) *RequestRepository {
	return &RequestRepository{db: db}
}

const requestColumns = `id, title, subject, branch, semester, description, college, status, requested_by, requester_email, resolved_by, created_at, updated_at`

// List returns requests for one college, pending first then newest, with total count.
func (r *RequestRepository) List(ctx context.Context, filter models.RequestFilter) ([]models.ResourceRequest, int, error) {
	defer r.observe("requests_list", time.Now())
	base := "FROM resource_requests"
	where := []string{"college = $1"}
	args := []interface{}{filter.College}

	if filter.Status != "" {
		where = append(where, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if filter.Branch != "" {
		where = append(where, fmt.Sprintf("branch = $%d", len(args)+1))
		args = append(args, filter.Branch)
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

	query := fmt.Sprintf("SELECT %s %s WHERE %s ORDER BY (status = 'PENDING') DESC, created_at DESC LIMIT %d OFFSET %d", requestColumns, base, whereClause, size, offset)
	var requests []models.ResourceRequest
	if err := r.db.SelectContext(ctx, &requests, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list requests: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s WHERE %s", base, whereClause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count requests: %w", err)
	}
	return requests, total, nil
}

// GetByID returns a request by identifier.
func (r *RequestRepository) GetByID(ctx context.Context, id string) (*models.ResourceRequest, error) {
	defer r.observe("requests_get_by_id", time.Now())
	query := fmt.Sprintf("SELECT %s FROM resource_requests WHERE id = $1", requestColumns)
	var request models.ResourceRequest
	if err := r.db.GetContext(ctx, &request, query, id); err != nil {
		return nil, err
	}
	return &request, nil
}

// Create inserts a new request.
func (r *RequestRepository) Create(ctx context.Context, request *models.ResourceRequest) error {
	defer r.observe("requests_create", time.Now())
	if request.ID == "" {
		request.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if request.CreatedAt.IsZero() {
		request.CreatedAt = now
	}
	request.UpdatedAt = now
	const query = `INSERT INTO resource_requests (id, title, subject, branch, semester, description, college, status, requested_by, requester_email, resolved_by, created_at, updated_at)
VALUES (:id, :title, :subject, :branch, :semester, :description, :college, :status, :requested_by, :requester_email, :resolved_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, request); err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	return nil
}

// UpdateStatus moves a request to a new status and records who resolved it.
func (r *RequestRepository) UpdateStatus(ctx context.Context, id string, status models.RequestStatus, resolvedBy string) error {
	defer r.observe("requests_update_status", time.Now())
	res, err := r.db.ExecContext(ctx, "UPDATE resource_requests SET status = $2, resolved_by = $3, updated_at = $4 WHERE id = $1", id, status, resolvedBy, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update request status: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a request.
func (r *RequestRepository) Delete(ctx context.Context, id string) error {
	defer r.observe("requests_delete", time.Now())
	res, err := r.db.ExecContext(ctx, "DELETE FROM resource_requests WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete request: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
