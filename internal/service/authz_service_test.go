package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cursohub/cursohub-api/internal/models"
)

type roleFlagsRepoStub struct {
	flags map[string]models.RoleFlags
	err   error
	calls int
}

func (s *roleFlagsRepoStub) GetRoleFlags(ctx context.Context, accountID string) (*models.RoleFlags, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	flags, ok := s.flags[accountID]
	if !ok {
		return nil, errors.New("no rows")
	}
	return &flags, nil
}

func TestAuthzServiceResolveRolesEmptyIdentitySkipsLookup(t *testing.T) {
	repo := &roleFlagsRepoStub{}
	svc := NewAuthzService(repo, nil)

	flags := svc.ResolveRoles(context.Background(), "")

	assert.False(t, flags.IsAdmin)
	assert.False(t, flags.IsInstructor)
	assert.Zero(t, repo.calls)
}

func TestAuthzServiceResolveRolesLookupFailureDeniesAll(t *testing.T) {
	repo := &roleFlagsRepoStub{err: errors.New("connection refused")}
	svc := NewAuthzService(repo, nil)

	flags := svc.ResolveRoles(context.Background(), "acc-1")

	assert.False(t, flags.IsAdmin)
	assert.False(t, flags.IsInstructor)
	assert.Equal(t, 1, repo.calls)
}

func TestAuthzServiceResolveRolesReturnsStoredFlags(t *testing.T) {
	repo := &roleFlagsRepoStub{flags: map[string]models.RoleFlags{
		"acc-1": {IsAdmin: true, IsInstructor: false},
	}}
	svc := NewAuthzService(repo, nil)

	flags := svc.ResolveRoles(context.Background(), "acc-1")

	assert.True(t, flags.IsAdmin)
	assert.False(t, flags.IsInstructor)
}

func TestAuthzServiceResolveRolesMissingProfileDeniesAll(t *testing.T) {
	repo := &roleFlagsRepoStub{flags: map[string]models.RoleFlags{}}
	svc := NewAuthzService(repo, nil)

	flags := svc.ResolveRoles(context.Background(), "ghost")

	assert.False(t, flags.IsAdmin)
	assert.False(t, flags.IsInstructor)
}
