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

type enrollmentRepository interface {
	Exists(ctx context.Context, accountID, courseID string) (bool, error)
	Create(ctx context.Context, enrollment *models.Enrollment) error
	FindByID(ctx context.Context, id string) (*models.Enrollment, error)
	ListByAccount(ctx context.Context, accountID string) ([]models.EnrollmentWithCourse, error)
	UpdateProgress(ctx context.Context, id string, progress int, completedAt *time.Time) error
}

type enrollmentCourseReader interface {
	FindByID(ctx context.Context, id string) (*models.CourseDetails, error)
}

// certificateScheduler queues certificate generation after completion.
type certificateScheduler interface {
	Schedule(enrollmentID string) error
}

// EnrollmentService provides enrollment and progress use cases.
type EnrollmentService struct {
	repo         enrollmentRepository
	courses      enrollmentCourseReader
	certificates certificateScheduler
	validator    *validator.Validate
	logger       *zap.Logger
}

// NewEnrollmentService constructs an EnrollmentService instance.
func NewEnrollmentService(repo enrollmentRepository, courses enrollmentCourseReader, certificates certificateScheduler, validate *validator.Validate, logger *zap.Logger) *EnrollmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &EnrollmentService{repo: repo, courses: courses, certificates: certificates, validator: validate, logger: logger}
}

// Enroll creates an enrollment in a published course. A second attempt
// for the same (account, course) pair is a conflict, never a second row.
func (s *EnrollmentService) Enroll(ctx context.Context, accountID string, req models.EnrollRequest) (*models.Enrollment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid enrollment payload")
	}

	course, err := s.courses.FindByID(ctx, req.CourseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	if !course.Published {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
	}

	exists, err := s.repo.Exists(ctx, accountID, req.CourseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check enrollment")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "already enrolled in this course")
	}

	enrollment := &models.Enrollment{
		AccountID: accountID,
		CourseID:  req.CourseID,
		Progress:  0,
	}
	if err := s.repo.Create(ctx, enrollment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create enrollment")
	}

	return enrollment, nil
}

// ListOwn returns the caller's enrollments with course details.
func (s *EnrollmentService) ListOwn(ctx context.Context, accountID string) ([]models.EnrollmentWithCourse, error) {
	enrollments, err := s.repo.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrollments")
	}
	return enrollments, nil
}

// UpdateProgress moves the caller's progress on an enrollment. Reaching
// 100 stamps the completion time once and queues certificate generation.
func (s *EnrollmentService) UpdateProgress(ctx context.Context, accountID, enrollmentID string, req models.UpdateProgressRequest) (*models.Enrollment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "progress must be between 0 and 100")
	}

	enrollment, err := s.repo.FindByID(ctx, enrollmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
	}

	if enrollment.AccountID != accountID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "enrollment belongs to another account")
	}

	var completedAt *time.Time
	justCompleted := req.Progress == 100 && enrollment.CompletedAt == nil
	if justCompleted {
		now := time.Now().UTC()
		completedAt = &now
	}

	if err := s.repo.UpdateProgress(ctx, enrollmentID, req.Progress, completedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update progress")
	}

	enrollment.Progress = req.Progress
	if completedAt != nil {
		enrollment.CompletedAt = completedAt
	}

	if justCompleted && s.certificates != nil {
		if err := s.certificates.Schedule(enrollmentID); err != nil {
			s.logger.Warn("failed to queue certificate generation",
				zap.String("enrollment_id", enrollmentID),
				zap.Error(err))
		}
	}

	return enrollment, nil
}
