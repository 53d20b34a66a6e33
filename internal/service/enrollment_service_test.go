package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cursohub/cursohub-api/internal/models"
	appErrors "github.com/cursohub/cursohub-api/pkg/errors"
)

const courseID = "6f1f7d8e-9b36-4f1a-8a4e-0f6a5a2c9d11"

type enrollmentRepoStub struct {
	enrollments map[string]*models.Enrollment
	existing    map[string]bool

	progressCalls int
}

func newEnrollmentRepoStub() *enrollmentRepoStub {
	return &enrollmentRepoStub{
		enrollments: map[string]*models.Enrollment{},
		existing:    map[string]bool{},
	}
}

func (s *enrollmentRepoStub) Exists(ctx context.Context, accountID, courseID string) (bool, error) {
	return s.existing[accountID+"/"+courseID], nil
}

func (s *enrollmentRepoStub) Create(ctx context.Context, enrollment *models.Enrollment) error {
	if enrollment.ID == "" {
		enrollment.ID = "enr-1"
	}
	s.enrollments[enrollment.ID] = enrollment
	s.existing[enrollment.AccountID+"/"+enrollment.CourseID] = true
	return nil
}

func (s *enrollmentRepoStub) FindByID(ctx context.Context, id string) (*models.Enrollment, error) {
	if enrollment, ok := s.enrollments[id]; ok {
		return enrollment, nil
	}
	return nil, sql.ErrNoRows
}

func (s *enrollmentRepoStub) ListByAccount(ctx context.Context, accountID string) ([]models.EnrollmentWithCourse, error) {
	return nil, nil
}

func (s *enrollmentRepoStub) UpdateProgress(ctx context.Context, id string, progress int, completedAt *time.Time) error {
	s.progressCalls++
	enrollment, ok := s.enrollments[id]
	if !ok {
		return sql.ErrNoRows
	}
	enrollment.Progress = progress
	if completedAt != nil && enrollment.CompletedAt == nil {
		enrollment.CompletedAt = completedAt
	}
	return nil
}

type courseReaderStub struct {
	courses map[string]*models.CourseDetails
}

func (s *courseReaderStub) FindByID(ctx context.Context, id string) (*models.CourseDetails, error) {
	if course, ok := s.courses[id]; ok {
		return course, nil
	}
	return nil, sql.ErrNoRows
}

type schedulerStub struct {
	scheduled []string
	err       error
}

func (s *schedulerStub) Schedule(enrollmentID string) error {
	if s.err != nil {
		return s.err
	}
	s.scheduled = append(s.scheduled, enrollmentID)
	return nil
}

func publishedCourse(id string) *models.CourseDetails {
	course := &models.CourseDetails{}
	course.ID = id
	course.Title = "Intro to Go"
	course.Published = true
	return course
}

func TestEnrollmentServiceEnrollCreatesEnrollment(t *testing.T) {
	repo := newEnrollmentRepoStub()
	courses := &courseReaderStub{courses: map[string]*models.CourseDetails{courseID: publishedCourse(courseID)}}
	svc := NewEnrollmentService(repo, courses, nil, nil, nil)

	enrollment, err := svc.Enroll(context.Background(), "acc-1", models.EnrollRequest{CourseID: courseID})

	require.NoError(t, err)
	assert.Equal(t, "acc-1", enrollment.AccountID)
	assert.Equal(t, 0, enrollment.Progress)
}

func TestEnrollmentServiceEnrollDuplicateConflict(t *testing.T) {
	repo := newEnrollmentRepoStub()
	repo.existing["acc-1/"+courseID] = true
	courses := &courseReaderStub{courses: map[string]*models.CourseDetails{courseID: publishedCourse(courseID)}}
	svc := NewEnrollmentService(repo, courses, nil, nil, nil)

	_, err := svc.Enroll(context.Background(), "acc-1", models.EnrollRequest{CourseID: courseID})

	var typed *appErrors.Error
	require.ErrorAs(t, err, &typed)
	assert.Equal(t, appErrors.ErrConflict.Code, typed.Code)
}

func TestEnrollmentServiceEnrollUnpublishedCourseHidden(t *testing.T) {
	draft := publishedCourse(courseID)
	draft.Published = false
	repo := newEnrollmentRepoStub()
	courses := &courseReaderStub{courses: map[string]*models.CourseDetails{courseID: draft}}
	svc := NewEnrollmentService(repo, courses, nil, nil, nil)

	_, err := svc.Enroll(context.Background(), "acc-1", models.EnrollRequest{CourseID: courseID})

	var typed *appErrors.Error
	require.ErrorAs(t, err, &typed)
	assert.Equal(t, appErrors.ErrNotFound.Code, typed.Code)
}

func TestEnrollmentServiceCompletionSchedulesCertificate(t *testing.T) {
	repo := newEnrollmentRepoStub()
	repo.enrollments["enr-1"] = &models.Enrollment{ID: "enr-1", AccountID: "acc-1", CourseID: courseID, Progress: 80}
	scheduler := &schedulerStub{}
	svc := NewEnrollmentService(repo, nil, scheduler, nil, nil)

	enrollment, err := svc.UpdateProgress(context.Background(), "acc-1", "enr-1", models.UpdateProgressRequest{Progress: 100})

	require.NoError(t, err)
	assert.Equal(t, 100, enrollment.Progress)
	require.NotNil(t, enrollment.CompletedAt)
	assert.Equal(t, []string{"enr-1"}, scheduler.scheduled)
}

func TestEnrollmentServiceCompletionTimestampIsStable(t *testing.T) {
	completed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	repo := newEnrollmentRepoStub()
	repo.enrollments["enr-1"] = &models.Enrollment{
		ID: "enr-1", AccountID: "acc-1", CourseID: courseID,
		Progress: 100, CompletedAt: &completed,
	}
	scheduler := &schedulerStub{}
	svc := NewEnrollmentService(repo, nil, scheduler, nil, nil)

	enrollment, err := svc.UpdateProgress(context.Background(), "acc-1", "enr-1", models.UpdateProgressRequest{Progress: 100})

	require.NoError(t, err)
	assert.Equal(t, completed, *enrollment.CompletedAt)
	assert.Empty(t, scheduler.scheduled)
}

func TestEnrollmentServiceProgressOnForeignEnrollmentForbidden(t *testing.T) {
	repo := newEnrollmentRepoStub()
	repo.enrollments["enr-1"] = &models.Enrollment{ID: "enr-1", AccountID: "acc-2", CourseID: courseID}
	svc := NewEnrollmentService(repo, nil, nil, nil, nil)

	_, err := svc.UpdateProgress(context.Background(), "acc-1", "enr-1", models.UpdateProgressRequest{Progress: 50})

	var typed *appErrors.Error
	require.ErrorAs(t, err, &typed)
	assert.Equal(t, appErrors.ErrForbidden.Code, typed.Code)
	assert.Zero(t, repo.progressCalls)
}

func TestEnrollmentServiceScheduleFailureDoesNotFailProgress(t *testing.T) {
	repo := newEnrollmentRepoStub()
	repo.enrollments["enr-1"] = &models.Enrollment{ID: "enr-1", AccountID: "acc-1", CourseID: courseID, Progress: 90}
	scheduler := &schedulerStub{err: assert.AnError}
	svc := NewEnrollmentService(repo, nil, scheduler, nil, nil)

	enrollment, err := svc.UpdateProgress(context.Background(), "acc-1", "enr-1", models.UpdateProgressRequest{Progress: 100})

	require.NoError(t, err)
	assert.NotNil(t, enrollment.CompletedAt)
}
