package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/cursohub/cursohub-api/internal/models"
)

// ProfileRepository provides database access for profiles and role
// assignments.
type ProfileRepository struct {
	db *sqlx.DB
}

// NewProfileRepository creates a new instance of ProfileRepository.
func NewProfileRepository(db *sqlx.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// FindByAccountID returns the profile attached to an account.
func (r *ProfileRepository) FindByAccountID(ctx context.Context, accountID string) (*models.Profile, error) {
	const query = `SELECT id, account_id, full_name, bio, avatar_url, is_admin, is_instructor, created_at, updated_at FROM profiles WHERE account_id = $1 LIMIT 1`
	var profile models.Profile
	if err := r.db.GetContext(ctx, &profile, query, accountID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find profile by account id: %w", err)
	}
	return &profile, nil
}

// Create inserts a new profile.
func (r *ProfileRepository) Create(ctx context.Context, profile *models.Profile) error {
	if profile.ID == "" {
		profile.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = now
	}
	profile.UpdatedAt = now

	const query = `INSERT INTO profiles (id, account_id, full_name, bio, avatar_url, is_admin, is_instructor, created_at, updated_at) VALUES (:id, :account_id, :full_name, :bio, :avatar_url, :is_admin, :is_instructor, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, profile); err != nil {
		return fmt.Errorf("create profile: %w", err)
	}
	return nil
}

// Update updates the self-editable profile fields.
func (r *ProfileRepository) Update(ctx context.Context, profile *models.Profile) error {
	profile.UpdatedAt = time.Now().UTC()
	const query = `UPDATE profiles SET full_name = :full_name, bio = :bio, avatar_url = :avatar_url, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, profile); err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	return nil
}

// GetRoleFlags returns the role flags stored on the profile row.
func (r *ProfileRepository) GetRoleFlags(ctx context.Context, accountID string) (*models.RoleFlags, error) {
	const query = `SELECT is_admin, is_instructor FROM profiles WHERE account_id = $1 LIMIT 1`
	var flags models.RoleFlags
	if err := r.db.GetContext(ctx, &flags, query, accountID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("get role flags: %w", err)
	}
	return &flags, nil
}

// SetRole grants or revokes a role. The user_roles row and the profile
// flag change in one transaction so they can never diverge.
func (r *ProfileRepository) SetRole(ctx context.Context, accountID, role string, granted bool, grantedBy string) error {
	column, ok := map[string]string{
		models.RoleAdmin:      "is_admin",
		models.RoleInstructor: "is_instructor",
	}[role]
	if !ok {
		return fmt.Errorf("set role: unknown role %q", role)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("set role: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	now := time.Now().UTC()
	if granted {
		const upsert = `INSERT INTO user_roles (id, account_id, role, granted_by, created_at) VALUES ($1, $2, $3, $4, $5) ON CONFLICT (account_id, role) DO NOTHING`
		if _, err := tx.ExecContext(ctx, upsert, uuid.NewString(), accountID, role, grantedBy, now); err != nil {
			return fmt.Errorf("set role: insert user role: %w", err)
		}
	} else {
		const del = `DELETE FROM user_roles WHERE account_id = $1 AND role = $2`
		if _, err := tx.ExecContext(ctx, del, accountID, role); err != nil {
			return fmt.Errorf("set role: delete user role: %w", err)
		}
	}

	flagQuery := fmt.Sprintf("UPDATE profiles SET %s = $2, updated_at = $3 WHERE account_id = $1", column)
	res, err := tx.ExecContext(ctx, flagQuery, accountID, granted, now)
	if err != nil {
		return fmt.Errorf("set role: update profile flag: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("set role: commit: %w", err)
	}
	return nil
}

// List returns profiles joined with account emails for the admin user
// listing, with total count.
func (r *ProfileRepository) List(ctx context.Context, filter models.ProfileFilter) ([]models.ProfileWithEmail, int, error) {
	baseQuery := `FROM profiles p JOIN accounts a ON a.id = p.account_id WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(a.email) LIKE $%d OR LOWER(p.full_name) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}
	switch filter.Role {
	case models.RoleAdmin:
		conditions = append(conditions, "p.is_admin = TRUE")
	case models.RoleInstructor:
		conditions = append(conditions, "p.is_instructor = TRUE")
	}

	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]string{
		"full_name":  "p.full_name",
		"email":      "a.email",
		"created_at": "p.created_at",
	}
	sortColumn, ok := allowedSorts[sortBy]
	if !ok {
		sortColumn = "p.created_at"
	}

	sortOrder := strings.ToUpper(filter.SortOrder)
	if sortOrder != "ASC" && sortOrder != "DESC" {
		sortOrder = "DESC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	listQuery := fmt.Sprintf("SELECT p.id, p.account_id, p.full_name, p.bio, p.avatar_url, p.is_admin, p.is_instructor, p.created_at, p.updated_at, a.email %s ORDER BY %s %s LIMIT %d OFFSET %d", baseQuery, sortColumn, sortOrder, pageSize, offset)

	var profiles []models.ProfileWithEmail
	if err := r.db.SelectContext(ctx, &profiles, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list profiles: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", baseQuery)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count profiles: %w", err)
	}

	return profiles, total, nil
}
