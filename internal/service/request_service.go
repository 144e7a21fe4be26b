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

type requestStore interface {
	Create(ctx context.Context, request *models.ResourceRequest) error
	GetByID(ctx context.Context, id string) (*models.ResourceRequest, error)
	List(ctx context.Context, filter models.RequestFilter) ([]models.ResourceRequest, int, error)
	UpdateStatus(ctx context.Context, id string, status models.RequestStatus, resolvedBy string) error
	Delete(ctx context.Context, id string) error
}

// RequestService manages resource requests. Any authenticated user may
// file one; resolving them is a faculty and admin privilege.
type RequestService struct {
	repo      requestStore
	policy    *AccessPolicy
	audit     auditLogger
	validator *validator.Validate
	logger    *zap.Logger
}

// NewRequestService constructs the service.
func NewRequestService(repo requestStore, policy *AccessPolicy, audit auditLogger, validate *validator.Validate, logger *zap.Logger) *RequestService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if policy == nil {
		policy = NewAccessPolicy()
	}
	return &RequestService{repo: repo, policy: policy, audit: audit, validator: validate, logger: logger}
}

// Create files a request in the actor's college.
func (s *RequestService) Create(ctx context.Context, req dto.CreateResourceRequest, actor *models.JWTClaims) (*models.ResourceRequest, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request payload")
	}

	request := &models.ResourceRequest{
		Title:          req.Title,
		Subject:        req.Subject,
		Branch:         req.Branch,
		Semester:       req.Semester,
		Description:    req.Description,
		College:        actor.College,
		Status:         models.RequestStatusPending,
		RequestedBy:    actor.FullName,
		RequesterEmail: actor.Email,
	}
	if err := s.repo.Create(ctx, request); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCollaborator.Code, appErrors.ErrCollaborator.Status, "failed to create request")
	}

	s.emitAudit(ctx, actor, models.AuditActionRequestCreate, request.ID, fmt.Sprintf(`{"title":%q}`, request.Title))
	return request, nil
}

// List returns requests in the actor's college, pending ones first.
func (s *RequestService) List(ctx context.Context, filter dto.RequestFilter, actor *models.JWTClaims) ([]models.ResourceRequest, int, error) {
	if actor == nil {
		return nil, 0, appErrors.ErrUnauthorized
	}
	requests, total, err := s.repo.List(ctx, models.RequestFilter{
		College:  actor.College,
		Status:   filter.Status,
		Branch:   filter.Branch,
		Page:     filter.Page,
		PageSize: filter.PageSize,
	})
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrCollaborator.Code, appErrors.ErrCollaborator.Status, "failed to list requests")
	}
	return requests, total, nil
}

// Get returns a single request if it belongs to the actor's college.
func (s *RequestService) Get(ctx context.Context, id string, actor *models.JWTClaims) (*models.ResourceRequest, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	request, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrCollaborator.Code, appErrors.ErrCollaborator.Status, "failed to fetch request")
	}
	if !s.policy.CanRead(actor, request.College) {
		return nil, appErrors.ErrNotFound
	}
	return request, nil
}

// UpdateStatus resolves a pending request as fulfilled or rejected.
func (s *RequestService) UpdateStatus(ctx context.Context, id string, req dto.UpdateRequestStatusRequest, actor *models.JWTClaims) (*models.ResourceRequest, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if !s.policy.CanModerate(actor, actor.College) {
		return nil, appErrors.ErrForbidden
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid status payload")
	}

	request, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrCollaborator.Code, appErrors.ErrCollaborator.Status, "failed to fetch request")
	}
	if !s.policy.CanRead(actor, request.College) {
		return nil, appErrors.ErrNotFound
	}
	if request.Status != models.RequestStatusPending {
		return nil, appErrors.Clone(appErrors.ErrConflict, "request is already resolved")
	}

	if err := s.repo.UpdateStatus(ctx, id, req.Status, actor.FullName); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrCollaborator.Code, appErrors.ErrCollaborator.Status, "failed to update request status")
	}

	request.Status = req.Status
	request.ResolvedBy = &actor.FullName

	s.emitAudit(ctx, actor, models.AuditActionRequestUpdate, id, fmt.Sprintf(`{"status":%q}`, req.Status))
	return request, nil
}

// Delete removes a request. The requester may withdraw their own;
// faculty and admins may clear any in their college.
func (s *RequestService) Delete(ctx context.Context, id string, actor *models.JWTClaims) error {
	if actor == nil {
		return appErrors.ErrUnauthorized
	}
	request, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.ErrNotFound
		}
		return appErrors.Wrap(err, appErrors.ErrCollaborator.Code, appErrors.ErrCollaborator.Status, "failed to fetch request")
	}
	if !s.policy.CanRead(actor, request.College) {
		return appErrors.ErrNotFound
	}
	if !s.policy.CanDelete(actor, request.RequestedBy, request.RequesterEmail, request.College) {
		return appErrors.ErrForbidden
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.ErrNotFound
		}
		return appErrors.Wrap(err, appErrors.ErrCollaborator.Code, appErrors.ErrCollaborator.Status, "failed to delete request")
	}
	return nil
}

func (s *RequestService) emitAudit(ctx context.Context, actor *models.JWTClaims, action, resourceID, payload string) {
	if s.audit == nil {
		return
	}
	log := &models.AuditLog{
		UserID:     &actor.UserID,
		Action:     action,
		Resource:   "requests",
		ResourceID: &resourceID,
	}
	if payload != "" {
		log.NewValues = []byte(payload)
	}
	if err := s.audit.CreateAuditLog(ctx, log); err != nil {
		s.logger.Warn("failed to record audit log", zap.String("action", action), zap.Error(err))
	}
}
