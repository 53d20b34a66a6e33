package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/cursohub/cursohub-api/internal/models"
	appErrors "github.com/cursohub/cursohub-api/pkg/errors"
)

type profileRepository interface {
	FindByAccountID(ctx context.Context, accountID string) (*models.Profile, error)
	Create(ctx context.Context, profile *models.Profile) error
	Update(ctx context.Context, profile *models.Profile) error
	SetRole(ctx context.Context, accountID, role string, granted bool, grantedBy string) error
	List(ctx context.Context, filter models.ProfileFilter) ([]models.ProfileWithEmail, int, error)
}

type profileAccountReader interface {
	FindByID(ctx context.Context, id string) (*models.Account, error)
}

// ProfileService provides profile and role-management use cases.
type ProfileService struct {
	repo      profileRepository
	accounts  profileAccountReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewProfileService constructs a ProfileService instance.
func NewProfileService(repo profileRepository, accounts profileAccountReader, validate *validator.Validate, logger *zap.Logger) *ProfileService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ProfileService{repo: repo, accounts: accounts, validator: validate, logger: logger}
}

// GetOwn returns the caller's profile, creating it on first access. The
// lazy create mirrors sign-up flows that never wrote a profile row.
func (s *ProfileService) GetOwn(ctx context.Context, accountID string) (*models.Profile, error) {
	profile, err := s.repo.FindByAccountID(ctx, accountID)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load profile")
	}

	account, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "account not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load account")
	}

	created := &models.Profile{
		AccountID: account.ID,
		FullName:  account.FullName,
	}
	if err := s.repo.Create(ctx, created); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create profile")
	}

	s.logger.Info("profile created lazily", zap.String("account_id", account.ID))
	return created, nil
}

// UpdateOwn applies a partial self-edit to the caller's profile.
func (s *ProfileService) UpdateOwn(ctx context.Context, accountID string, req models.UpdateProfileRequest) (*models.Profile, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid profile payload")
	}

	profile, err := s.GetOwn(ctx, accountID)
	if err != nil {
		return nil, err
	}

	if req.FullName != nil {
		profile.FullName = *req.FullName
	}
	if req.Bio != nil {
		profile.Bio = req.Bio
	}
	if req.AvatarURL != nil {
		profile.AvatarURL = req.AvatarURL
	}

	if err := s.repo.Update(ctx, profile); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update profile")
	}

	return profile, nil
}

// SetRole grants or revokes a role for the target account. Both writes
// happen in one transaction at the repository level.
func (s *ProfileService) SetRole(ctx context.Context, adminID, accountID string, req models.SetRoleRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid role payload")
	}

	if err := s.repo.SetRole(ctx, accountID, req.Role, req.Granted, adminID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "profile not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to change role")
	}

	s.logger.Info("role changed",
		zap.String("account_id", accountID),
		zap.String("role", req.Role),
		zap.Bool("granted", req.Granted),
		zap.String("changed_by", adminID))
	return nil
}

// ListUsers returns profiles with emails for the admin user listing.
func (s *ProfileService) ListUsers(ctx context.Context, filter models.ProfileFilter) ([]models.ProfileWithEmail, *models.Pagination, error) {
	profiles, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list users")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}

	return profiles, &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}, nil
}
