package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/cursohub/cursohub-api/internal/models"
)

type roleFlagsRepository interface {
	GetRoleFlags(ctx context.Context, accountID string) (*models.RoleFlags, error)
}

// AuthzService resolves role flags for an identity. Resolution is done per
// request so role toggles apply immediately and flags are never carried
// over from a previous identity.
type AuthzService struct {
	repo   roleFlagsRepository
	logger *zap.Logger
}

// NewAuthzService constructs an AuthzService instance.
func NewAuthzService(repo roleFlagsRepository, logger *zap.Logger) *AuthzService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthzService{repo: repo, logger: logger}
}

// ResolveRoles returns the role flags for the account. An empty identity
// resolves to no roles without touching the store, and any lookup failure
// or missing profile degrades to no roles rather than an error: absence of
// role data means absence of privilege, never a crash.
func (s *AuthzService) ResolveRoles(ctx context.Context, accountID string) models.RoleFlags {
	if accountID == "" {
		return models.RoleFlags{}
	}

	flags, err := s.repo.GetRoleFlags(ctx, accountID)
	if err != nil {
		s.logger.Warn("role resolution failed, denying roles",
			zap.String("account_id", accountID),
			zap.Error(err))
		return models.RoleFlags{}
	}

	return *flags
}
