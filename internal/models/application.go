package models

import "time"

// Instructor application statuses.
const (
	ApplicationPending  = "pending"
	ApplicationApproved = "approved"
	ApplicationRejected = "rejected"
)

// InstructorApplication is a request to gain the instructor role.
// One pending application per account.
type InstructorApplication struct {
	ID              string     `db:"id" json:"id"`
	AccountID       string     `db:"account_id" json:"account_id"`
	ExpertiseArea   string     `db:"expertise_area" json:"expertise_area"`
	ExperienceYears int        `db:"experience_years" json:"experience_years"`
	CourseIdea      string     `db:"course_idea" json:"course_idea"`
	Motivation      string     `db:"motivation" json:"motivation"`
	Status          string     `db:"status" json:"status"`
	ReviewedBy      *string    `db:"reviewed_by" json:"reviewed_by,omitempty"`
	ReviewedAt      *time.Time `db:"reviewed_at" json:"reviewed_at,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
}

// ApplyInstructorRequest is the application payload.
type ApplyInstructorRequest struct {
	ExpertiseArea   string `json:"expertise_area" validate:"required,min=2,max=120"`
	ExperienceYears int    `json:"experience_years" validate:"gte=0,lte=80"`
	CourseIdea      string `json:"course_idea" validate:"required,min=10"`
	Motivation      string `json:"motivation" validate:"required,min=10"`
}

// ReviewApplicationRequest approves or rejects a pending application.
type ReviewApplicationRequest struct {
	Approve bool `json:"approve"`
}

// ApplicationFilter captures admin listing criteria.
type ApplicationFilter struct {
	Status   string
	Page     int
	PageSize int
}
