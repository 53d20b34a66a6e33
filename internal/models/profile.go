package models

import "time"

// Role names stored in the user_roles table.
const (
	RoleAdmin      = "admin"
	RoleInstructor = "instructor"
)

// Profile is the public-facing record attached to an account. It is
// created lazily on first access and carries the authorization flags.
type Profile struct {
	ID           string    `db:"id" json:"id"`
	AccountID    string    `db:"account_id" json:"account_id"`
	FullName     string    `db:"full_name" json:"full_name"`
	Bio          *string   `db:"bio" json:"bio,omitempty"`
	AvatarURL    *string   `db:"avatar_url" json:"avatar_url,omitempty"`
	IsAdmin      bool      `db:"is_admin" json:"is_admin"`
	IsInstructor bool      `db:"is_instructor" json:"is_instructor"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// RoleFlags is the result of resolving an account's roles.
type RoleFlags struct {
	IsAdmin      bool `db:"is_admin" json:"is_admin"`
	IsInstructor bool `db:"is_instructor" json:"is_instructor"`
}

// UpdateProfileRequest is the self-service profile edit payload.
type UpdateProfileRequest struct {
	FullName  *string `json:"full_name" validate:"omitempty,min=2,max=120"`
	Bio       *string `json:"bio" validate:"omitempty,max=2000"`
	AvatarURL *string `json:"avatar_url" validate:"omitempty,url"`
}

// SetRoleRequest toggles a role for an account (admin only).
type SetRoleRequest struct {
	Role    string `json:"role" validate:"required,oneof=admin instructor"`
	Granted bool   `json:"granted"`
}

// ProfileFilter captures criteria for the admin user listing.
type ProfileFilter struct {
	Search    string
	Role      string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// ProfileWithEmail joins the profile with its account email for the
// admin user listing.
type ProfileWithEmail struct {
	Profile
	Email string `db:"email" json:"email"`
}
