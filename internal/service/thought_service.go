package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campus-vault/campusvault-api/internal/dto"
	"github.com/campus-vault/campusvault-api/internal/models"
	appErrors "github.com/campus-vault/campusvault-api/pkg/errors"
)

type thoughtStore interface {
	Create(ctx context.Context, thought *models.Thought) error
	GetByID(ctx context.Context, id string) (*models.Thought, error)
	List(ctx context.Context, filter models.ThoughtFilter, now time.Time) ([]models.Thought, int, error)
	Delete(ctx context.Context, id string) error
}

// ThoughtServiceConfig tunes the ephemeral board.
type ThoughtServiceConfig struct {
	TTL           time.Duration
	MaxContentLen int
}

// ThoughtService manages the ephemeral thoughts board. Expiry is applied
// when reading; nothing sweeps rows in the background.
type ThoughtService struct {
	repo      thoughtStore
	policy    *AccessPolicy
	audit     auditLogger
	validator *validator.Validate
	logger    *zap.Logger
	cfg       ThoughtServiceConfig
	now       func() time.Time
	stats     statsInvalidator
}

// NewThoughtService constructs the service with defaults.
func NewThoughtService(repo thoughtStore, policy *AccessPolicy, audit auditLogger, validate *validator.Validate, logger *zap.Logger, cfg ThoughtServiceConfig) *ThoughtService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if policy == nil {
		policy = NewAccessPolicy()
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}
	if cfg.MaxContentLen <= 0 {
		cfg.MaxContentLen = 500
	}
	return &ThoughtService{
		repo:      repo,
		policy:    policy,
		audit:     audit,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the time source. Intended for tests.
func (s *ThoughtService) WithClock(now func() time.Time) *ThoughtService {
	if now != nil {
		s.now = now
	}
	return s
}

// WithStatsInvalidator registers a sink that drops cached college stats
// after every successful write.
func (s *ThoughtService) WithStatsInvalidator(stats statsInvalidator) *ThoughtService {
	s.stats = stats
	return s
}

func (s *ThoughtService) invalidateStats(ctx context.Context, college string) {
	if s.stats != nil {
		s.stats.Invalidate(ctx, college)
	}
}

// Create posts a thought that expires after the configured TTL.
func (s *ThoughtService) Create(ctx context.Context, req dto.CreateThoughtRequest, actor *models.JWTClaims) (*models.Thought, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid thought payload")
	}
	if len([]rune(req.Content)) > s.cfg.MaxContentLen {
		return nil, appErrors.Clone(appErrors.ErrValidation, "thought content too long")
	}

	now := s.now()
	thought := &models.Thought{
		Content:     req.Content,
		College:     actor.College,
		AuthorName:  actor.FullName,
		AuthorEmail: actor.Email,
		CreatedAt:   now,
		ExpiresAt:   now.Add(s.cfg.TTL),
	}
	if err := s.repo.Create(ctx, thought); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCollaborator.Code, appErrors.ErrCollaborator.Status, "failed to create thought")
	}
	s.emitAudit(ctx, actor, models.AuditActionThoughtCreate, thought.ID)
	s.invalidateStats(ctx, thought.College)
	return thought, nil
}

// List returns unexpired thoughts for the actor's college, newest first.
func (s *ThoughtService) List(ctx context.Context, page, pageSize int, actor *models.JWTClaims) ([]models.Thought, int, error) {
	if actor == nil {
		return nil, 0, appErrors.ErrUnauthorized
	}
	thoughts, total, err := s.repo.List(ctx, models.ThoughtFilter{
		College:  actor.College,
		Page:     page,
		PageSize: pageSize,
	}, s.now())
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrCollaborator.Code, appErrors.ErrCollaborator.Status, "failed to list thoughts")
	}
	return thoughts, total, nil
}

// Delete removes a thought. Authors delete their own; faculty and admins
// moderate within their college. Expired thoughts read as missing.
func (s *ThoughtService) Delete(ctx context.Context, id string, actor *models.JWTClaims) error {
	if actor == nil {
		return appErrors.ErrUnauthorized
	}
	thought, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.ErrNotFound
		}
		return appErrors.Wrap(err, appErrors.ErrCollaborator.Code, appErrors.ErrCollaborator.Status, "failed to load thought")
	}
	if !s.policy.CanRead(actor, thought.College) || !thought.ExpiresAt.After(s.now()) {
		return appErrors.ErrNotFound
	}
	if !s.policy.CanDelete(actor, thought.AuthorName, thought.AuthorEmail, thought.College) {
		return appErrors.ErrForbidden
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.ErrNotFound
		}
		return appErrors.Wrap(err, appErrors.ErrCollaborator.Code, appErrors.ErrCollaborator.Status, "failed to delete thought")
	}
	s.emitAudit(ctx, actor, models.AuditActionThoughtDelete, id)
	s.invalidateStats(ctx, thought.College)
	return nil
}

func (s *ThoughtService) emitAudit(ctx context.Context, actor *models.JWTClaims, action, resourceID string) {
	if s.audit == nil {
		return
	}
	if err := s.audit.CreateAuditLog(ctx, &models.AuditLog{
		UserID:     &actor.UserID,
		Action:     action,
		Resource:   "thoughts",
		ResourceID: &resourceID,
	}); err != nil {
		s.logger.Warn("failed to record audit log", zap.String("action", action), zap.Error(err))
	}
}
