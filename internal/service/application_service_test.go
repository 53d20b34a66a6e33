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

type applicationRepoStub struct {
	applications map[string]*models.InstructorApplication
	pending      map[string]bool
}

func newApplicationRepoStub() *applicationRepoStub {
	return &applicationRepoStub{
		applications: map[string]*models.InstructorApplication{},
		pending:      map[string]bool{},
	}
}

func (s *applicationRepoStub) HasPending(ctx context.Context, accountID string) (bool, error) {
	return s.pending[accountID], nil
}

func (s *applicationRepoStub) Create(ctx context.Context, app *models.InstructorApplication) error {
	if app.ID == "" {
		app.ID = "app-1"
	}
	s.applications[app.ID] = app
	s.pending[app.AccountID] = true
	return nil
}

func (s *applicationRepoStub) FindByID(ctx context.Context, id string) (*models.InstructorApplication, error) {
	if app, ok := s.applications[id]; ok {
		return app, nil
	}
	return nil, sql.ErrNoRows
}

func (s *applicationRepoStub) List(ctx context.Context, filter models.ApplicationFilter) ([]models.InstructorApplication, int, error) {
	var out []models.InstructorApplication
	for _, app := range s.applications {
		if filter.Status != "" && app.Status != filter.Status {
			continue
		}
		out = append(out, *app)
	}
	return out, len(out), nil
}

func (s *applicationRepoStub) SetStatus(ctx context.Context, id, status, reviewedBy string, reviewedAt time.Time) error {
	app, ok := s.applications[id]
	if !ok || app.Status != models.ApplicationPending {
		return sql.ErrNoRows
	}
	app.Status = status
	app.ReviewedBy = &reviewedBy
	app.ReviewedAt = &reviewedAt
	s.pending[app.AccountID] = false
	return nil
}

type roleGranterStub struct {
	grants []string
	err    error
}

func (s *roleGranterStub) SetRole(ctx context.Context, accountID, role string, granted bool, grantedBy string) error {
	if s.err != nil {
		return s.err
	}
	s.grants = append(s.grants, accountID+"/"+role)
	return nil
}

func validApplication() models.ApplyInstructorRequest {
	return models.ApplyInstructorRequest{
		ExpertiseArea:   "Distributed systems",
		ExperienceYears: 6,
		CourseIdea:      "Building resilient message pipelines",
		Motivation:      "I have mentored engineers for years and want a wider audience.",
	}
}

func TestApplicationServiceApplyCreatesPending(t *testing.T) {
	repo := newApplicationRepoStub()
	svc := NewApplicationService(repo, &roleGranterStub{}, nil, nil)

	app, err := svc.Apply(context.Background(), "acc-1", validApplication())

	require.NoError(t, err)
	assert.Equal(t, models.ApplicationPending, app.Status)
	assert.Equal(t, "acc-1", app.AccountID)
}

func TestApplicationServiceApplySecondPendingConflict(t *testing.T) {
	repo := newApplicationRepoStub()
	repo.pending["acc-1"] = true
	svc := NewApplicationService(repo, &roleGranterStub{}, nil, nil)

	_, err := svc.Apply(context.Background(), "acc-1", validApplication())

	var typed *appErrors.Error
	require.ErrorAs(t, err, &typed)
	assert.Equal(t, appErrors.ErrConflict.Code, typed.Code)
}

func TestApplicationServiceApproveGrantsInstructorRole(t *testing.T) {
	repo := newApplicationRepoStub()
	repo.applications["app-1"] = &models.InstructorApplication{
		ID: "app-1", AccountID: "acc-1", Status: models.ApplicationPending,
	}
	granter := &roleGranterStub{}
	svc := NewApplicationService(repo, granter, nil, nil)

	app, err := svc.Review(context.Background(), "admin-1", "app-1", models.ReviewApplicationRequest{Approve: true})

	require.NoError(t, err)
	assert.Equal(t, models.ApplicationApproved, app.Status)
	require.NotNil(t, app.ReviewedBy)
	assert.Equal(t, "admin-1", *app.ReviewedBy)
	assert.Equal(t, []string{"acc-1/instructor"}, granter.grants)
}

func TestApplicationServiceRejectSkipsRoleGrant(t *testing.T) {
	repo := newApplicationRepoStub()
	repo.applications["app-1"] = &models.InstructorApplication{
		ID: "app-1", AccountID: "acc-1", Status: models.ApplicationPending,
	}
	granter := &roleGranterStub{}
	svc := NewApplicationService(repo, granter, nil, nil)

	app, err := svc.Review(context.Background(), "admin-1", "app-1", models.ReviewApplicationRequest{Approve: false})

	require.NoError(t, err)
	assert.Equal(t, models.ApplicationRejected, app.Status)
	assert.Empty(t, granter.grants)
}

func TestApplicationServiceReviewTwiceConflict(t *testing.T) {
	repo := newApplicationRepoStub()
	repo.applications["app-1"] = &models.InstructorApplication{
		ID: "app-1", AccountID: "acc-1", Status: models.ApplicationApproved,
	}
	svc := NewApplicationService(repo, &roleGranterStub{}, nil, nil)

	_, err := svc.Review(context.Background(), "admin-1", "app-1", models.ReviewApplicationRequest{Approve: true})

	var typed *appErrors.Error
	require.ErrorAs(t, err, &typed)
	assert.Equal(t, appErrors.ErrConflict.Code, typed.Code)
}

func TestApplicationServiceReviewUnknownApplication(t *testing.T) {
	repo := newApplicationRepoStub()
	svc := NewApplicationService(repo, &roleGranterStub{}, nil, nil)

	_, err := svc.Review(context.Background(), "admin-1", "ghost", models.ReviewApplicationRequest{Approve: true})

	var typed *appErrors.Error
	require.ErrorAs(t, err, &typed)
	assert.Equal(t, appErrors.ErrNotFound.Code, typed.Code)
}
