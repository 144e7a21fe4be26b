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

// NoteRepository provides persistence for lecture notes metadata.
type NoteRepository struct {
	queryTimer

	db *sqlx.DB
}

// NewNoteRepository creates the repository.
func NewNoteRepository(db *sqlx.DB) *NoteRepository {
	return &NoteRepository{db: db}
}

const noteColumns = `id, title, subject, note_type, branch, semester, college, description, file_url, storage_key, mime_type, size_bytes, uploaded_by, uploader_email, uploaded_at`

// List returns notes for one college, newest first, with total count.
func (r *NoteRepository) List(ctx context.Context, filter models.NoteFilter) ([]models.Note, int, error) {
	defer r.observe("notes_list", time.Now())
	base := "FROM notes"
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
	if filter.Subject != "" {
		where = append(where, fmt.Sprintf("subject = $%d", len(args)+1))
		args = append(args, filter.Subject)
	}
	if filter.NoteType != "" {
		where = append(where, fmt.Sprintf("note_type = $%d", len(args)+1))
		args = append(args, filter.NoteType)
	}
	if filter.Search != "" {
		where = append(where, fmt.Sprintf("(LOWER(title) LIKE $%d OR LOWER(subject) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
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

	query := fmt.Sprintf("SELECT %s %s WHERE %s ORDER BY uploaded_at DESC LIMIT %d OFFSET %d", noteColumns, base, whereClause, size, offset)
	var notes []models.Note
	if err := r.db.SelectContext(ctx, &notes, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list notes: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s WHERE %s", base, whereClause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count notes: %w", err)
	}
	return notes, total, nil
}

// GetByID returns a note by identifier.
func (r *NoteRepository) GetByID(ctx context.Context, id string) (*models.Note, error) {
	defer r.observe("notes_get_by_id", time.Now())
	query := fmt.Sprintf("SELECT %s FROM notes WHERE id = $1", noteColumns)
	var note models.Note
	if err := r.db.GetContext(ctx, &note, query, id); err != nil {
		return nil, err
	}
	return &note, nil
}

// Create inserts a new note record.
func (r *NoteRepository) Create(ctx context.Context, note *models.Note) error {
	defer r.observe("notes_create", time.Now())
	if note.ID == "" {
		note.ID = uuid.NewString()
	}
	if note.UploadedAt.IsZero() {
		note.UploadedAt = time.Now().UTC()
	}
	const query = `INSERT INTO notes (id, title, subject, note_type, branch, semester, college, description, file_url, storage_key, mime_type, size_bytes, uploaded_by, uploader_email, uploaded_at)
VALUES (:id, :title, :subject, :note_type, :branch, :semester, :college, :description, :file_url, :storage_key, :mime_type, :size_bytes, :uploaded_by, :uploader_email, :uploaded_at)`
	if _, err := r.db.NamedExecContext(ctx, query, note); err != nil {
		return fmt.Errorf("create note: %w", err)
	}
	return nil
}

// Delete removes a note record.
func (r *NoteRepository) Delete(ctx context.Context, id string) error {
	defer r.observe("notes_delete", time.Now())
	res, err := r.db.ExecContext(ctx, "DELETE FROM notes WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// CountByCollege returns the number of notes stored for a college.
func (r *NoteRepository) CountByCollege(ctx context.Context, college string) (int, error) {
	defer r.observe("notes_count_by_college", time.Now())
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM notes WHERE college = $1", college); err != nil {
		return 0, fmt.Errorf("count notes by college: %w", err)
	}
	return total, nil
}
