package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/cursohub/cursohub-api/internal/models"
	appErrors "github.com/cursohub/cursohub-api/pkg/errors"
)

type applicationRepository interface {
	HasPending(ctx context.Context, accountID string) (bool, error)
	Create(ctx context.Context, app *models.InstructorApplication) error
	FindByID(ctx context.Context, id string) (*models.InstructorApplication, error)
	List(ctx context.Context, filter models.ApplicationFilter) ([]models.InstructorApplication, int, error)
	SetStatus(ctx context.Context, id, status, reviewedBy string, reviewedAt time.Time) error
}

// roleGranter applies the instructor role on approval through the same
// atomic toggle the admin user screen uses.
type roleGranter interface {
	SetRole(ctx context.Context, accountID, role string, granted bool, grantedBy string) error
}

// ApplicationService handles instructor applications and their review.
type ApplicationService struct {
	repo      applicationRepository
	roles     roleGranter
	validator *validator.Validate
	logger    *zap.Logger
}

// NewApplicationService constructs an ApplicationService instance.
func NewApplicationService(repo applicationRepository, roles roleGranter, validate *validator.Validate, logger *zap.Logger) *ApplicationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ApplicationService{repo: repo, roles: roles, validator: validate, logger: logger}
}

// Apply submits an instructor application. One pending application per
// account.
func (s *ApplicationService) Apply(ctx context.Context, accountID string, req models.ApplyInstructorRequest) (*models.InstructorApplication, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid application payload")
	}

	pending, err := s.repo.HasPending(ctx, accountID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check existing applications")
	}
	if pending {
		return nil, appErrors.Clone(appErrors.ErrConflict, "an application is already pending review")
	}

	app := &models.InstructorApplication{
		AccountID:       accountID,
		ExpertiseArea:   req.ExpertiseArea,
		ExperienceYears: req.ExperienceYears,
		CourseIdea:      req.CourseIdea,
		Motivation:      req.Motivation,
		Status:          models.ApplicationPending,
	}
	if err := s.repo.Create(ctx, app); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create application")
	}

	return app, nil
}

// List returns applications for the admin review queue.
func (s *ApplicationService) List(ctx context.Context, filter models.ApplicationFilter) ([]models.InstructorApplication, *models.Pagination, error) {
	apps, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list applications")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}

	return apps, &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}, nil
}

// Review approves or rejects a pending application. Approval grants the
// instructor role atomically.
func (s *ApplicationService) Review(ctx context.Context, adminID, applicationID string, req models.ReviewApplicationRequest) (*models.InstructorApplication, error) {
	app, err := s.repo.FindByID(ctx, applicationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "application not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load application")
	}

	if app.Status != models.ApplicationPending {
		return nil, appErrors.Clone(appErrors.ErrConflict, "application has already been reviewed")
	}

	status := models.ApplicationRejected
	if req.Approve {
		status = models.ApplicationApproved
	}

	now := time.Now().UTC()
	if err := s.repo.SetStatus(ctx, applicationID, status, adminID, now); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "application has already been reviewed")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record review")
	}

	if req.Approve {
		if err := s.roles.SetRole(ctx, app.AccountID, models.RoleInstructor, true, adminID); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to grant instructor role")
		}
	}

	app.Status = status
	app.ReviewedBy = &adminID
	app.ReviewedAt = &now

	s.logger.Info("application reviewed",
		zap.String("application_id", applicationID),
		zap.String("status", status),
		zap.String("reviewed_by", adminID))
	return app, nil
}
