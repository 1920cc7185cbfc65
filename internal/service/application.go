package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"club-commerce-backend/internal/apperr"
	"club-commerce-backend/internal/dto"
	"club-commerce-backend/internal/model"
	"club-commerce-backend/internal/repository"
)

// ApplicationService handles membership and scholarship applications.
//
// Uniqueness of active applications per (email, targetRef) is enforced by a
// read-then-create; the store offers no cross-document uniqueness
// constraint, so two truly simultaneous submissions can both pass the
// check. The window is narrow and a duplicate is an admin inconvenience,
// not a correctness failure, so this is an accepted limitation.
type ApplicationService struct {
	apps   repository.ApplicationRepository
	logger *slog.Logger
	now    func() time.Time
}

func NewApplicationService(apps repository.ApplicationRepository, logger *slog.Logger) *ApplicationService {
	return &ApplicationService{
		apps:   apps,
		logger: logger,
		now:    time.Now,
	}
}

func (s *ApplicationService) Submit(ctx context.Context, req *dto.ApplicationRequest) (*model.Application, error) {
	if !validEmail(req.Email) {
		return nil, apperr.Validation("a valid email is required")
	}
	if req.TargetRef == "" {
		return nil, apperr.Validation("target_ref is required")
	}

	existing, err := s.apps.FindActive(ctx, req.Email, req.TargetRef)
	if err != nil {
		return nil, fmt.Errorf("check existing applications: %w", err)
	}
	if existing != nil {
		switch existing.Status {
		case model.ApplicationApproved:
			return nil, apperr.Conflict("an application for this email was already approved")
		default:
			return nil, apperr.Conflict("an application for this email is already pending review")
		}
	}

	app := &model.Application{
		ID:          "application." + uuid.NewString(),
		Type:        model.ApplicationDocType,
		Email:       req.Email,
		Name:        req.Name,
		TargetRef:   req.TargetRef,
		Message:     req.Message,
		Status:      model.ApplicationPending,
		SubmittedAt: s.now().UTC(),
	}
	if err := s.apps.Create(ctx, app); err != nil {
		return nil, fmt.Errorf("store application: %w", err)
	}

	s.logger.Info("application submitted",
		"application_id", app.ID, "target_ref", app.TargetRef)
	return app, nil
}

// Decide transitions a pending application to approved or rejected.
func (s *ApplicationService) Decide(ctx context.Context, id string, status model.ApplicationStatus) (*model.Application, error) {
	if status != model.ApplicationApproved && status != model.ApplicationRejected {
		return nil, apperr.Validation("status must be %q or %q",
			model.ApplicationApproved, model.ApplicationRejected)
	}

	app, err := s.apps.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if app.Status != model.ApplicationPending {
		return nil, apperr.Conflict("application is already %s", app.Status)
	}

	decidedAt := s.now().UTC()
	if err := s.apps.SetStatus(ctx, id, status, decidedAt); err != nil {
		return nil, err
	}

	app.Status = status
	app.DecidedAt = &decidedAt
	s.logger.Info("application decided", "application_id", id, "status", status)
	return app, nil
}

func (s *ApplicationService) List(ctx context.Context, status model.ApplicationStatus) ([]*model.Application, error) {
	if status != "" {
		switch status {
		case model.ApplicationPending, model.ApplicationApproved, model.ApplicationRejected:
		default:
			return nil, apperr.Validation("unknown application status %q", status)
		}
	}
	return s.apps.List(ctx, status)
}
