package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campus-vault/campusvault-api/internal/dto"
	"github.com/campus-vault/campusvault-api/internal/models"
	appErrors "github.com/campus-vault/campusvault-api/pkg/errors"
)

type announcementStore interface {
	Create(ctx context.Context, announcement *models.Announcement) error
	GetByID(ctx context.Context, id string) (*models.Announcement, error)
	List(ctx context.Context, filter models.AnnouncementFilter) ([]models.Announcement, int, error)
	SetActive(ctx context.Context, id string, active bool) error
	Delete(ctx context.Context, id string) error
}

// AnnouncementService manages college announcements. Publishing is a
// faculty and admin privilege; everyone in the college reads active ones.
type AnnouncementService struct {
	repo      announcementStore
	policy    *AccessPolicy
	audit     auditLogger
	validator *validator.Validate
	logger    *zap.Logger
	stats     statsInvalidator
}

// WithStatsInvalidator registers a sink that drops cached college stats
// after every successful write.
func (s *AnnouncementService) WithStatsInvalidator(stats statsInvalidator) *AnnouncementService {
	s.stats = stats
	return s
}

func (s *AnnouncementService) invalidateStats(ctx context.Context, college string) {
	if s.stats != nil {
		s.stats.Invalidate(ctx, college)
	}
}

// NewAnnouncementService constructs the service.
func NewAnnouncementService(repo announcementStore, policy *AccessPolicy, audit auditLogger, validate *validator.Validate, logger *zap.Logger) *AnnouncementService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if policy == nil {
		policy = NewAccessPolicy()
	}
	return &AnnouncementService{repo: repo, policy: policy, audit: audit, validator: validate, logger: logger}
}

// Create publishes an announcement for the actor's college.
func (s *AnnouncementService) Create(ctx context.Context, req dto.CreateAnnouncementRequest, actor *models.JWTClaims) (*models.Announcement, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if !s.policy.CanCreateAnnouncement(actor) {
		return nil, appErrors.ErrForbidden
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid announcement payload")
	}
	category := req.Category
	if category == "" {
		category = models.AnnouncementCategoryNotice
	}

	announcement := &models.Announcement{
		Title:        req.Title,
		Content:      req.Content,
		Category:     category,
		College:      actor.College,
		IsActive:     true,
		CreatedBy:    actor.FullName,
		CreatorEmail: actor.Email,
	}
	if err := s.repo.Create(ctx, announcement); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCollaborator.Code, appErrors.ErrCollaborator.Status, "failed to create announcement")
	}
	s.emitAudit(ctx, actor, models.AuditActionAnnounceCreate, announcement.ID, fmt.Sprintf(`{"title":%q}`, announcement.Title))
	s.invalidateStats(ctx, announcement.College)
	return announcement, nil
}

// List returns announcements for the actor's college. Inactive rows show
// up only when requested by faculty or admins. Anonymous callers see
// active announcements platform-wide, optionally narrowed by college.
func (s *AnnouncementService) List(ctx context.Context, filter dto.AnnouncementFilter, actor *models.JWTClaims) ([]models.Announcement, int, error) {
	college := filter.College
	includeInactive := false
	if actor != nil {
		college = actor.College
		includeInactive = filter.IncludeInactive && s.policy.CanModerate(actor, actor.College)
	}
	announcements, total, err := s.repo.List(ctx, models.AnnouncementFilter{
		College:         college,
		Category:        filter.Category,
		IncludeInactive: includeInactive,
		Page:            filter.Page,
		PageSize:        filter.PageSize,
	})
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrCollaborator.Code, appErrors.ErrCollaborator.Status, "failed to list announcements")
	}
	return announcements, total, nil
}

// Get returns one announcement. Active announcements are readable
// platform-wide, anonymous callers included. Inactive rows are visible to
// same-college moderators only.
func (s *AnnouncementService) Get(ctx context.Context, id string, actor *models.JWTClaims) (*models.Announcement, error) {
	announcement, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrCollaborator.Code, appErrors.ErrCollaborator.Status, "failed to load announcement")
	}
	if announcement.IsActive {
		return announcement, nil
	}
	if !s.policy.CanModerate(actor, announcement.College) {
		return nil, appErrors.ErrNotFound
	}
	return announcement, nil
}

// SetActive toggles announcement visibility.
func (s *AnnouncementService) SetActive(ctx context.Context, id string, active bool, actor *models.JWTClaims) (*models.Announcement, error) {
	announcement, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrCollaborator.Code, appErrors.ErrCollaborator.Status, "failed to load announcement")
	}
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if !s.policy.CanModerate(actor, announcement.College) {
		return nil, appErrors.ErrForbidden
	}
	if err := s.repo.SetActive(ctx, id, active); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrCollaborator.Code, appErrors.ErrCollaborator.Status, "failed to update announcement")
	}
	announcement.IsActive = active
	s.emitAudit(ctx, actor, models.AuditActionAnnounceUpdate, id, fmt.Sprintf(`{"is_active":%t}`, active))
	s.invalidateStats(ctx, announcement.College)
	return announcement, nil
}

// Delete removes an announcement. Creators delete their own; faculty and
// admins moderate within their college.
func (s *AnnouncementService) Delete(ctx context.Context, id string, actor *models.JWTClaims) error {
	announcement, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.ErrNotFound
		}
		return appErrors.Wrap(err, appErrors.ErrCollaborator.Code, appErrors.ErrCollaborator.Status, "failed to load announcement")
	}
	if actor == nil {
		return appErrors.ErrUnauthorized
	}
	if !s.policy.CanRead(actor, announcement.College) {
		return appErrors.ErrNotFound
	}
	if !s.policy.CanDelete(actor, announcement.CreatedBy, announcement.CreatorEmail, announcement.College) {
		return appErrors.ErrForbidden
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.ErrNotFound
		}
		return appErrors.Wrap(err, appErrors.ErrCollaborator.Code, appErrors.ErrCollaborator.Status, "failed to delete announcement")
	}
	s.emitAudit(ctx, actor, models.AuditActionAnnounceDelete, id, "")
	s.invalidateStats(ctx, announcement.College)
	return nil
}

func (s *AnnouncementService) emitAudit(ctx context.Context, actor *models.JWTClaims, action, resourceID, payload string) {
	if s.audit == nil {
		return
	}
	log := &models.AuditLog{
		UserID:     &actor.UserID,
		Action:     action,
		Resource:   "announcements",
		ResourceID: &resourceID,
	}
	if payload != "" {
		log.NewValues = []byte(payload)
	}
	if err := s.audit.CreateAuditLog(ctx, log); err != nil {
		s.logger.Warn("failed to record audit log", zap.String("action", action), zap.Error(err))
	}
}
