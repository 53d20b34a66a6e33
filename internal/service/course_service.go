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

type courseRepository interface {
	FindByID(ctx context.Context, id string) (*models.CourseDetails, error)
	List(ctx context.Context, filter models.CourseFilter) ([]models.CourseDetails, int, error)
	Create(ctx context.Context, course *models.Course) error
	Update(ctx context.Context, course *models.Course) error
	SetPublication(ctx context.Context, id string, published bool, at time.Time) error
	ListCategories(ctx context.Context) ([]models.Category, error)
}

// CourseService provides catalog browsing, instructor authoring and the
// admin publication review.
type CourseService struct {
	repo      courseRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCourseService constructs a CourseService instance.
func NewCourseService(repo courseRepository, validate *validator.Validate, logger *zap.Logger) *CourseService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &CourseService{repo: repo, validator: validate, logger: logger}
}

// ListPublished returns published courses for the public catalog.
func (s *CourseService) ListPublished(ctx context.Context, filter models.CourseFilter) ([]models.CourseDetails, *models.Pagination, error) {
	published := true
	filter.Published = &published
	return s.list(ctx, filter)
}

// ListForReview returns unpublished courses awaiting admin review.
func (s *CourseService) ListForReview(ctx context.Context, filter models.CourseFilter) ([]models.CourseDetails, *models.Pagination, error) {
	published := false
	filter.Published = &published
	return s.list(ctx, filter)
}

// ListOwn returns every course owned by the instructor, drafts included.
func (s *CourseService) ListOwn(ctx context.Context, instructorID string, filter models.CourseFilter) ([]models.CourseDetails, *models.Pagination, error) {
	filter.InstructorID = instructorID
	filter.Published = nil
	return s.list(ctx, filter)
}

func (s *CourseService) list(ctx context.Context, filter models.CourseFilter) ([]models.CourseDetails, *models.Pagination, error) {
	courses, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}

	return courses, &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}, nil
}

// GetPublic returns a course for the public detail page. Unpublished
// courses are hidden unless the caller owns them or is an admin.
func (s *CourseService) GetPublic(ctx context.Context, id, viewerID string, viewerIsAdmin bool) (*models.CourseDetails, error) {
	course, err := s.findByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !course.Published && course.InstructorID != viewerID && !viewerIsAdmin {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
	}

	return course, nil
}

// Create registers a new draft course owned by the instructor.
func (s *CourseService) Create(ctx context.Context, instructorID string, req models.CreateCourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}

	course := &models.Course{
		Title:        req.Title,
		Description:  req.Description,
		Level:        models.CourseLevel(req.Level),
		Price:        req.Price,
		ThumbnailURL: req.ThumbnailURL,
		CategoryID:   req.CategoryID,
		InstructorID: instructorID,
		Published:    false,
	}

	if err := s.repo.Create(ctx, course); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create course")
	}

	return course, nil
}

// Update applies a partial edit to a course the instructor owns. Admins
// may edit any course.
func (s *CourseService) Update(ctx context.Context, editorID string, editorIsAdmin bool, courseID string, req models.UpdateCourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}

	details, err := s.findByID(ctx, courseID)
	if err != nil {
		return nil, err
	}

	if details.InstructorID != editorID && !editorIsAdmin {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "course belongs to another instructor")
	}

	course := details.Course
	if req.Title != nil {
		course.Title = *req.Title
	}
	if req.Description != nil {
		course.Description = *req.Description
	}
	if req.Level != nil {
		course.Level = models.CourseLevel(*req.Level)
	}
	if req.Price != nil {
		course.Price = *req.Price
	}
	if req.ThumbnailURL != nil {
		course.ThumbnailURL = req.ThumbnailURL
	}
	if req.CategoryID != nil {
		course.CategoryID = req.CategoryID
	}

	if err := s.repo.Update(ctx, &course); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update course")
	}

	return &course, nil
}

// SetPublication toggles the publication state (admin only, enforced at
// the route).
func (s *CourseService) SetPublication(ctx context.Context, courseID string, req models.SetPublicationRequest) error {
	if err := s.repo.SetPublication(ctx, courseID, req.Published, time.Now().UTC()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to change publication state")
	}

	s.logger.Info("course publication changed",
		zap.String("course_id", courseID),
		zap.Bool("published", req.Published))
	return nil
}

// ListCategories returns the catalog categories.
func (s *CourseService) ListCategories(ctx context.Context) ([]models.Category, error) {
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list categories")
	}
	return categories, nil
}

func (s *CourseService) findByID(ctx context.Context, id string) (*models.CourseDetails, error) {
	course, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	return course, nil
}
