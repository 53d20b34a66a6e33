package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cursohub/cursohub-api/internal/models"
	appErrors "github.com/cursohub/cursohub-api/pkg/errors"
)

type profileRepoStub struct {
	profiles map[string]*models.Profile

	roleCalls   []string
	setRoleErr  error
	createCalls int
}

func newProfileRepoStub() *profileRepoStub {
	return &profileRepoStub{profiles: map[string]*models.Profile{}}
}

func (s *profileRepoStub) FindByAccountID(ctx context.Context, accountID string) (*models.Profile, error) {
	if profile, ok := s.profiles[accountID]; ok {
		return profile, nil
	}
	return nil, sql.ErrNoRows
}

func (s *profileRepoStub) Create(ctx context.Context, profile *models.Profile) error {
	s.createCalls++
	if profile.ID == "" {
		profile.ID = "prof-1"
	}
	s.profiles[profile.AccountID] = profile
	return nil
}

func (s *profileRepoStub) Update(ctx context.Context, profile *models.Profile) error {
	if _, ok := s.profiles[profile.AccountID]; !ok {
		return sql.ErrNoRows
	}
	s.profiles[profile.AccountID] = profile
	return nil
}

func (s *profileRepoStub) SetRole(ctx context.Context, accountID, role string, granted bool, grantedBy string) error {
	if s.setRoleErr != nil {
		return s.setRoleErr
	}
	s.roleCalls = append(s.roleCalls, accountID+"/"+role)
	profile, ok := s.profiles[accountID]
	if !ok {
		return sql.ErrNoRows
	}
	switch role {
	case models.RoleAdmin:
		profile.IsAdmin = granted
	case models.RoleInstructor:
		profile.IsInstructor = granted
	}
	return nil
}

func (s *profileRepoStub) List(ctx context.Context, filter models.ProfileFilter) ([]models.ProfileWithEmail, int, error) {
	var out []models.ProfileWithEmail
	for _, profile := range s.profiles {
		out = append(out, models.ProfileWithEmail{Profile: *profile})
	}
	return out, len(out), nil
}

type accountReaderStub struct {
	accounts map[string]*models.Account
}

func (s *accountReaderStub) FindByID(ctx context.Context, id string) (*models.Account, error) {
	if account, ok := s.accounts[id]; ok {
		return account, nil
	}
	return nil, sql.ErrNoRows
}

func TestProfileServiceGetOwnCreatesLazily(t *testing.T) {
	repo := newProfileRepoStub()
	accounts := &accountReaderStub{accounts: map[string]*models.Account{
		"acc-1": {ID: "acc-1", Email: "ada@example.com", FullName: "Ada Lovelace"},
	}}
	svc := NewProfileService(repo, accounts, nil, nil)

	profile, err := svc.GetOwn(context.Background(), "acc-1")

	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", profile.FullName)
	assert.Equal(t, 1, repo.createCalls)

	// A second read returns the stored row without another create.
	_, err = svc.GetOwn(context.Background(), "acc-1")
	require.NoError(t, err)
	assert.Equal(t, 1, repo.createCalls)
}

func TestProfileServiceGetOwnUnknownAccount(t *testing.T) {
	repo := newProfileRepoStub()
	accounts := &accountReaderStub{accounts: map[string]*models.Account{}}
	svc := NewProfileService(repo, accounts, nil, nil)

	_, err := svc.GetOwn(context.Background(), "ghost")

	var typed *appErrors.Error
	require.ErrorAs(t, err, &typed)
	assert.Equal(t, appErrors.ErrNotFound.Code, typed.Code)
}

func TestProfileServiceUpdateOwnPartial(t *testing.T) {
	repo := newProfileRepoStub()
	repo.profiles["acc-1"] = &models.Profile{ID: "prof-1", AccountID: "acc-1", FullName: "Ada Lovelace"}
	svc := NewProfileService(repo, nil, nil, nil)

	bio := "Mathematician and writer."
	profile, err := svc.UpdateOwn(context.Background(), "acc-1", models.UpdateProfileRequest{Bio: &bio})

	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", profile.FullName)
	require.NotNil(t, profile.Bio)
	assert.Equal(t, bio, *profile.Bio)
}

func TestProfileServiceSetRoleToggleRoundTrip(t *testing.T) {
	repo := newProfileRepoStub()
	repo.profiles["acc-1"] = &models.Profile{ID: "prof-1", AccountID: "acc-1"}
	svc := NewProfileService(repo, nil, nil, nil)

	err := svc.SetRole(context.Background(), "admin-1", "acc-1", models.SetRoleRequest{Role: models.RoleInstructor, Granted: true})
	require.NoError(t, err)
	assert.True(t, repo.profiles["acc-1"].IsInstructor)

	err = svc.SetRole(context.Background(), "admin-1", "acc-1", models.SetRoleRequest{Role: models.RoleInstructor, Granted: false})
	require.NoError(t, err)
	assert.False(t, repo.profiles["acc-1"].IsInstructor)
}

func TestProfileServiceSetRoleMissingProfile(t *testing.T) {
	repo := newProfileRepoStub()
	svc := NewProfileService(repo, nil, nil, nil)

	err := svc.SetRole(context.Background(), "admin-1", "ghost", models.SetRoleRequest{Role: models.RoleAdmin, Granted: true})

	var typed *appErrors.Error
	require.ErrorAs(t, err, &typed)
	assert.Equal(t, appErrors.ErrNotFound.Code, typed.Code)
}

func TestProfileServiceSetRoleRejectsUnknownRole(t *testing.T) {
	repo := newProfileRepoStub()
	svc := NewProfileService(repo, nil, nil, nil)

	err := svc.SetRole(context.Background(), "admin-1", "acc-1", models.SetRoleRequest{Role: "superuser", Granted: true})

	var typed *appErrors.Error
	require.ErrorAs(t, err, &typed)
	assert.Equal(t, appErrors.ErrValidation.Code, typed.Code)
	assert.Empty(t, repo.roleCalls)
}

func TestProfileServiceListUsersClampsPagination(t *testing.T) {
	repo := newProfileRepoStub()
	repo.profiles["acc-1"] = &models.Profile{ID: "prof-1", AccountID: "acc-1"}
	svc := NewProfileService(repo, nil, nil, nil)

	_, pagination, err := svc.ListUsers(context.Background(), models.ProfileFilter{Page: 0, PageSize: 500})

	require.NoError(t, err)
	assert.Equal(t, 1, pagination.Page)
	assert.Equal(t, 20, pagination.PageSize)
	assert.Equal(t, 1, pagination.TotalCount)
}
