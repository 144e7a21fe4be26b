package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campus-vault/campusvault-api/internal/dto"
	"github.com/campus-vault/campusvault-api/internal/models"
	appErrors "github.com/campus-vault/campusvault-api/pkg/errors"
	"github.com/campus-vault/campusvault-api/pkg/storage"
)

type noteStore interface {
	Create(ctx context.Context, note *models.Note) error
	GetByID(ctx context.Context, id string) (*models.Note, error)
	List(ctx context.Context, filter models.NoteFilter) ([]models.Note, int, error)
	Delete(ctx context.Context, id string) error
}

type pyqStore interface {
	Create(ctx context.Context, paper *models.PYQ) error
	GetByID(ctx context.Context, id string) (*models.PYQ, error)
	List(ctx context.Context, filter models.PYQFilter) ([]models.PYQ, int, error)
	Delete(ctx context.Context, id string) error
}

type timetableStore interface {
	Create(ctx context.Context, timetable *models.Timetable) error
	GetByID(ctx context.Context, id string) (*models.Timetable, error)
	List(ctx context.Context, filter models.TimetableFilter) ([]models.Timetable, int, error)
	Delete(ctx context.Context, id string) error
}

type auditLogger interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

type uploadObserver interface {
	ObserveUpload(kind models.ResourceKind, sizeBytes int64)
}

type statsInvalidator interface {
	Invalidate(ctx context.Context, college string)
}

// ResourceUpload carries upload metadata and stream reader.
type ResourceUpload struct {
	Filename string
	Size     int64
	MimeType string
	Content  io.ReadSeeker
}

// CatalogServiceConfig holds validation parameters for uploads.
type CatalogServiceConfig struct {
	MaxFileSize     int64
	AllowedMIMEs    []string
	PYQAllowedMIMEs []string
}

// CatalogService manages resource metadata and the blob flow behind it.
// Every write validates before the blob goes out, and a failed metadata
// insert compensates by removing the just-uploaded blob.
type CatalogService struct {
	notes      noteStore
	pyqs       pyqStore
	timetables timetableStore
	blobs      storage.BlobStore
	policy     *AccessPolicy
	audit      auditLogger
	validator  *validator.Validate
	logger     *zap.Logger
	cfg        CatalogServiceConfig
	mimeSet    map[string]struct{}
	pyqMimeSet map[string]struct{}
	metrics    uploadObserver
	stats      statsInvalidator
}

// NewCatalogService constructs the service with defaults.
func NewCatalogService(notes noteStore, pyqs pyqStore, timetables timetableStore, blobs storage.BlobStore, policy *AccessPolicy, audit auditLogger, validate *validator.Validate, logger *zap.Logger, cfg CatalogServiceConfig) *CatalogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if policy == nil {
		policy = NewAccessPolicy()
	}
	if cfg.MaxFileSize <= 0 {
		cfg.MaxFileSize = 10 * 1024 * 1024
	}
	if len(cfg.AllowedMIMEs) == 0 {
		cfg.AllowedMIMEs = []string{"application/pdf", "image/jpeg", "image/png"}
	}
	if len(cfg.PYQAllowedMIMEs) == 0 {
		cfg.PYQAllowedMIMEs = []string{"application/pdf"}
	}
	return &CatalogService{
		notes:      notes,
		pyqs:       pyqs,
		timetables: timetables,
		blobs:      blobs,
		policy:     policy,
		audit:      audit,
		validator:  validate,
		logger:     logger,
		cfg:        cfg,
		mimeSet:    mimeSet(cfg.AllowedMIMEs),
		pyqMimeSet: mimeSet(cfg.PYQAllowedMIMEs),
	}
}

// WithUploadObserver registers a metrics sink for successful uploads.
func (s *CatalogService) WithUploadObserver(observer uploadObserver) *CatalogService {
	s.metrics = observer
	return s
}

func (s *CatalogService) observeUpload(kind models.ResourceKind, size int64) {
	if s.metrics != nil {
		s.metrics.ObserveUpload(kind, size)
	}
}

// WithStatsInvalidator registers a sink that drops cached college stats
// after every successful write.
func (s *CatalogService) WithStatsInvalidator(stats statsInvalidator) *CatalogService {
	s.stats = stats
	return s
}

func (s *CatalogService) invalidateStats(ctx context.Context, college string) {
	if s.stats != nil {
		s.stats.Invalidate(ctx, college)
	}
}

// CreateNote validates and stores a note upload for the actor's college.
func (s *CatalogService) CreateNote(ctx context.Context, meta dto.CreateNoteRequest, upload ResourceUpload, actor *models.JWTClaims) (*models.Note, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if !s.policy.CanCreateResource(actor, models.ResourceKindNote) {
		return nil, appErrors.ErrForbidden
	}
	if err := s.validator.Struct(meta); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid note payload")
	}
	mimeType, err := s.validateUpload(upload, s.mimeSet)
	if err != nil {
		return nil, err
	}

	key := s.buildKey(models.ResourceKindNote, actor.College, meta.Branch, meta.Semester, meta.Subject, upload.Filename)
	result, err := s.storeBlob(ctx, key, upload, mimeType)
	if err != nil {
		return nil, err
	}

	noteType := meta.NoteType
	if noteType == "" {
		noteType = models.NoteTypeUploaded
	}
	note := &models.Note{
		Title:         meta.Title,
		Subject:       meta.Subject,
		NoteType:      noteType,
		Branch:        meta.Branch,
		Semester:      meta.Semester,
		College:       actor.College,
		Description:   meta.Description,
		FileURL:       result.URL,
		StorageKey:    result.Key,
		MimeType:      mimeType,
		SizeBytes:     upload.Size,
		UploadedBy:    actor.FullName,
		UploaderEmail: actor.Email,
	}
	if err := s.notes.Create(ctx, note); err != nil {
		s.compensate(ctx, result.Key)
		return nil, appErrors.Wrap(err, appErrors.ErrCollaborator.Code, appErrors.ErrCollaborator.Status, "failed to create note metadata")
	}
	s.emitAudit(ctx, actor, models.AuditActionResourceUpload, string(models.ResourceKindNote), note.ID, fmt.Sprintf(`{"title":%q,"subject":%q}`, note.Title, note.Subject))
	s.observeUpload(models.ResourceKindNote, note.SizeBytes)
	s.invalidateStats(ctx, note.College)
	return note, nil
}

// ListNotes returns notes scoped to the actor's college.
func (s *CatalogService) ListNotes(ctx context.Context, filter dto.NoteFilter, actor *models.JWTClaims) ([]models.Note, int, error) {
	if actor == nil {
		return nil, 0, appErrors.ErrUnauthorized
	}
	notes, total, err := s.notes.List(ctx, models.NoteFilter{
		College:  actor.College,
		Branch:   filter.Branch,
		Semester: filter.Semester,
		Subject:  filter.Subject,
		NoteType: filter.NoteType,
		Search:   filter.Search,
		Page:     filter.Page,
		PageSize: filter.PageSize,
	})
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrCollaborator.Code, appErrors.ErrCollaborator.Status, "failed to list notes")
	}
	return notes, total, nil
}

// GetNote returns one note enforcing college scope.
func (s *CatalogService) GetNote(ctx context.Context, id string, actor *models.JWTClaims) (*models.Note, error) {
	note, err := s.notes.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrCollaborator.Code, appErrors.ErrCollaborator.Status, "failed to load note")
	}
	if !s.policy.CanRead(actor, note.College) {
		return nil, appErrors.ErrNotFound
	}
	return note, nil
}

// DeleteNote removes a note record. The blob delete is best effort; a
// stale blob is an accepted cost, never a blocking condition.
func (s *CatalogService) DeleteNote(ctx context.Context, id string, actor *models.JWTClaims) error {
	note, err := s.GetNote(ctx, id, actor)
	if err != nil {
		return err
	}
	if !s.policy.CanDelete(actor, note.UploadedBy, note.UploaderEmail, note.College) {
		return appErrors.ErrForbidden
	}
	s.deleteBlobBestEffort(ctx, note.StorageKey)
	if err := s.notes.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.ErrNotFound
		}
		return appErrors.Wrap(err, appErrors.ErrCollaborator.Code, appErrors.ErrCollaborator.Status, "failed to delete note metadata")
	}
	s.emitAudit(ctx, actor, models.AuditActionResourceDelete, string(models.ResourceKindNote), id, "")
	s.invalidateStats(ctx, note.College)
	return nil
}

// CreatePYQ validates and stores a question-paper upload.
func (s *CatalogService) CreatePYQ(ctx context.Context, meta dto.CreatePYQRequest, upload ResourceUpload, actor *models.JWTClaims) (*models.PYQ, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if !s.policy.CanCreateResource(actor, models.ResourceKindPYQ) {
		return nil, appErrors.ErrForbidden
	}
	if err := s.validator.Struct(meta); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid question paper payload")
	}
	if !models.ValidExamType(meta.ExamType) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "exam type must be one of mid, final, quiz, regular")
	}
	mimeType, err := s.validateUpload(upload, s.pyqMimeSet)
	if err != nil {
		return nil, err
	}

	key := s.buildKey(models.ResourceKindPYQ, actor.College, meta.Branch, fmt.Sprintf("%d", meta.Year), meta.Subject, upload.Filename)
	result, err := s.storeBlob(ctx, key, upload, mimeType)
	if err != nil {
		return nil, err
	}

	paper := &models.PYQ{
		Subject:       meta.Subject,
		Branch:        meta.Branch,
		Year:          meta.Year,
		ExamType:      meta.ExamType,
		College:       actor.College,
		FileURL:       result.URL,
		StorageKey:    result.Key,
		MimeType:      mimeType,
		SizeBytes:     upload.Size,
		UploadedBy:    actor.FullName,
		UploaderEmail: actor.Email,
	}
	if err := s.pyqs.Create(ctx, paper); err != nil {
		s.compensate(ctx, result.Key)
		return nil, appErrors.Wrap(err, appErrors.ErrCollaborator.Code, appErrors.ErrCollaborator.Status, "failed to create question paper metadata")
	}
	s.emitAudit(ctx, actor, models.AuditActionResourceUpload, string(models.ResourceKindPYQ), paper.ID, fmt.Sprintf(`{"subject":%q,"year":%d}`, paper.Subject, paper.Year))
	s.observeUpload(models.ResourceKindPYQ, paper.SizeBytes)
	s.invalidateStats(ctx, paper.College)
	return paper, nil
}

// ListPYQs returns question papers scoped to the actor's college.
func (s *CatalogService) ListPYQs(ctx context.Context, filter dto.PYQFilter, actor *models.JWTClaims) ([]models.PYQ, int, error) {
	if actor == nil {
		return nil, 0, appErrors.ErrUnauthorized
	}
	if filter.ExamType != "" && !models.ValidExamType(filter.ExamType) {
		return nil, 0, appErrors.Clone(appErrors.ErrValidation, "exam type must be one of mid, final, quiz, regular")
	}
	papers, total, err := s.pyqs.List(ctx, models.PYQFilter{
		College:  actor.College,
		Branch:   filter.Branch,
		Subject:  filter.Subject,
		Year:     filter.Year,
		ExamType: filter.ExamType,
		Page:     filter.Page,
		PageSize: filter.PageSize,
	})
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrCollaborator.Code, appErrors.ErrCollaborator.Status, "failed to list question papers")
	}
	return papers, total, nil
}

// GetPYQ returns one question paper enforcing college scope.
func (s *CatalogService) GetPYQ(ctx context.Context, id string, actor *models.JWTClaims) (*models.PYQ, error) {
	paper, err := s.pyqs.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrCollaborator.Code, appErrors.ErrCollaborator.Status, "failed to load question paper")
	}
	if !s.policy.CanRead(actor, paper.College) {
		return nil, appErrors.ErrNotFound
	}
	return paper, nil
}

// DeletePYQ removes a question paper and its blob.
func (s *CatalogService) DeletePYQ(ctx context.Context, id string, actor *models.JWTClaims) error {
	paper, err := s.GetPYQ(ctx, id, actor)
	if err != nil {
		return err
	}
	if !s.policy.CanDelete(actor, paper.UploadedBy, paper.UploaderEmail, paper.College) {
		return appErrors.ErrForbidden
	}
	s.deleteBlobBestEffort(ctx, paper.StorageKey)
	if err := s.pyqs.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.ErrNotFound
		}
		return appErrors.Wrap(err, appErrors.ErrCollaborator.Code, appErrors.ErrCollaborator.Status, "failed to delete question paper metadata")
	}
	s.emitAudit(ctx, actor, models.AuditActionResourceDelete, string(models.ResourceKindPYQ), id, "")
	s.invalidateStats(ctx, paper.College)
	return nil
}

// CreateTimetable validates and stores a timetable upload. Publishing
// timetables is restricted to faculty and admins.
func (s *CatalogService) CreateTimetable(ctx context.Context, meta dto.CreateTimetableRequest, upload ResourceUpload, actor *models.JWTClaims) (*models.Timetable, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if !s.policy.CanCreateResource(actor, models.ResourceKindTimetable) {
		return nil, appErrors.ErrForbidden
	}
	if err := s.validator.Struct(meta); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid timetable payload")
	}
	mimeType, err := s.validateUpload(upload, s.mimeSet)
	if err != nil {
		return nil, err
	}

	key := s.buildKey(models.ResourceKindTimetable, actor.College, meta.Branch, meta.Semester, meta.Title, upload.Filename)
	result, err := s.storeBlob(ctx, key, upload, mimeType)
	if err != nil {
		return nil, err
	}

	academicYear := meta.AcademicYear
	if academicYear == "" {
		academicYear = strconv.Itoa(time.Now().UTC().Year())
	}
	timetable := &models.Timetable{
		Title:         meta.Title,
		Branch:        meta.Branch,
		Semester:      meta.Semester,
		Section:       meta.Section,
		AcademicYear:  academicYear,
		College:       actor.College,
		FileURL:       result.URL,
		StorageKey:    result.Key,
		MimeType:      mimeType,
		SizeBytes:     upload.Size,
		UploadedBy:    actor.FullName,
		UploaderEmail: actor.Email,
	}
	if err := s.timetables.Create(ctx, timetable); err != nil {
		s.compensate(ctx, result.Key)
		return nil, appErrors.Wrap(err, appErrors.ErrCollaborator.Code, appErrors.ErrCollaborator.Status, "failed to create timetable metadata")
	}
	s.emitAudit(ctx, actor, models.AuditActionResourceUpload, string(models.ResourceKindTimetable), timetable.ID, fmt.Sprintf(`{"title":%q,"branch":%q}`, timetable.Title, timetable.Branch))
	s.observeUpload(models.ResourceKindTimetable, timetable.SizeBytes)
	s.invalidateStats(ctx, timetable.College)
	return timetable, nil
}

// ListTimetables returns timetables scoped to the actor's college.
func (s *CatalogService) ListTimetables(ctx context.Context, filter dto.TimetableFilter, actor *models.JWTClaims) ([]models.Timetable, int, error) {
	if actor == nil {
		return nil, 0, appErrors.ErrUnauthorized
	}
	timetables, total, err := s.timetables.List(ctx, models.TimetableFilter{
		College:  actor.College,
		Branch:   filter.Branch,
		Semester: filter.Semester,
		Section:  filter.Section,
		Page:     filter.Page,
		PageSize: filter.PageSize,
	})
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrCollaborator.Code, appErrors.ErrCollaborator.Status, "failed to list timetables")
	}
	return timetables, total, nil
}

// GetTimetable returns one timetable enforcing college scope.
func (s *CatalogService) GetTimetable(ctx context.Context, id string, actor *models.JWTClaims) (*models.Timetable, error) {
	timetable, err := s.timetables.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrCollaborator.Code, appErrors.ErrCollaborator.Status, "failed to load timetable")
	}
	if !s.policy.CanRead(actor, timetable.College) {
		return nil, appErrors.ErrNotFound
	}
	return timetable, nil
}

// DeleteTimetable removes a timetable and its blob.
func (s *CatalogService) DeleteTimetable(ctx context.Context, id string, actor *models.JWTClaims) error {
	timetable, err := s.GetTimetable(ctx, id, actor)
	if err != nil {
		return err
	}
	if !s.policy.CanDelete(actor, timetable.UploadedBy, timetable.UploaderEmail, timetable.College) {
		return appErrors.ErrForbidden
	}
	s.deleteBlobBestEffort(ctx, timetable.StorageKey)
	if err := s.timetables.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.ErrNotFound
		}
		return appErrors.Wrap(err, appErrors.ErrCollaborator.Code, appErrors.ErrCollaborator.Status, "failed to delete timetable metadata")
	}
	s.emitAudit(ctx, actor, models.AuditActionResourceDelete, string(models.ResourceKindTimetable), id, "")
	s.invalidateStats(ctx, timetable.College)
	return nil
}

func (s *CatalogService) validateUpload(upload ResourceUpload, allowed map[string]struct{}) (string, error) {
	if upload.Content == nil || upload.Size <= 0 {
		return "", appErrors.Clone(appErrors.ErrValidation, "file is required")
	}
	if upload.Size > s.cfg.MaxFileSize {
		return "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("file exceeds %d bytes limit", s.cfg.MaxFileSize))
	}
	mimeType, err := s.detectMime(upload)
	if err != nil {
		return "", err
	}
	if _, ok := allowed[strings.ToLower(mimeType)]; !ok {
		return "", appErrors.Clone(appErrors.ErrValidation, "mime type not allowed")
	}
	return mimeType, nil
}

func (s *CatalogService) detectMime(upload ResourceUpload) (string, error) {
	if upload.MimeType != "" {
		return upload.MimeType, nil
	}
	head := make([]byte, 512)
	n, err := upload.Content.Read(head)
	if err != nil && err != io.EOF {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sniff upload")
	}
	if _, err := upload.Content.Seek(0, io.SeekStart); err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reset upload stream")
	}
	mimeType := http.DetectContentType(head[:n])
	if idx := strings.Index(mimeType, ";"); idx >= 0 {
		mimeType = mimeType[:idx]
	}
	return strings.TrimSpace(mimeType), nil
}

func (s *CatalogService) storeBlob(ctx context.Context, key string, upload ResourceUpload, mimeType string) (*storage.UploadResult, error) {
	if _, err := upload.Content.Seek(0, io.SeekStart); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reset upload stream")
	}
	result, err := s.blobs.Upload(ctx, key, upload.Content, upload.Size, mimeType)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCollaborator.Code, appErrors.ErrCollaborator.Status, "failed to store file")
	}
	return result, nil
}

func (s *CatalogService) deleteBlobBestEffort(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.blobs.Delete(ctx, key); err != nil {
		s.logger.Warn("failed to remove stored file, keeping record delete", zap.String("key", key), zap.Error(err))
	}
}

func (s *CatalogService) compensate(ctx context.Context, key string) {
	if err := s.blobs.Delete(ctx, key); err != nil {
		s.logger.Warn("failed to clean up orphaned blob", zap.String("key", key), zap.Error(err))
	}
}

func (s *CatalogService) buildKey(kind models.ResourceKind, college string, parts ...string) string {
	segments := []string{string(kind), slugify(college)}
	for _, part := range parts[:len(parts)-1] {
		segments = append(segments, slugify(part))
	}
	filename := parts[len(parts)-1]
	ext := strings.ToLower(filepath.Ext(filename))
	segments = append(segments, uuid.NewString()+ext)
	return strings.Join(segments, "/")
}

func (s *CatalogService) emitAudit(ctx context.Context, actor *models.JWTClaims, action, resource, resourceID, payload string) {
	if s.audit == nil {
		return
	}
	log := &models.AuditLog{
		UserID:     &actor.UserID,
		Action:     action,
		Resource:   resource,
		ResourceID: &resourceID,
	}
	if payload != "" {
		log.NewValues = []byte(payload)
	}
	if err := s.audit.CreateAuditLog(ctx, log); err != nil {
		s.logger.Warn("failed to record audit log", zap.String("action", action), zap.Error(err))
	}
}

func mimeSet(mimes []string) map[string]struct{} {
	set := make(map[string]struct{}, len(mimes))
	for _, mt := range mimes {
		set[strings.ToLower(mt)] = struct{}{}
	}
	return set
}

func slugify(raw string) string {
	var b strings.Builder
	lastDash := false
	for _, r := range strings.ToLower(strings.TrimSpace(raw)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash && b.Len() > 0 {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
