package models

import "time"

// CourseLevel enumerates difficulty levels shown in the catalog.
type CourseLevel string

const (
	LevelBeginner     CourseLevel = "beginner"
	LevelIntermediate CourseLevel = "intermediate"
	LevelAdvanced     CourseLevel = "advanced"
)

// Category groups courses in the catalog.
type Category struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Slug      string    `db:"slug" json:"slug"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Course is a catalog entry. Unpublished courses are visible only to
// their instructor and to admins.
type Course struct {
	ID           string      `db:"id" json:"id"`
	Title        string      `db:"title" json:"title"`
	Description  string      `db:"description" json:"description"`
	Level        CourseLevel `db:"level" json:"level"`
	Price        float64     `db:"price" json:"price"`
	ThumbnailURL *string     `db:"thumbnail_url" json:"thumbnail_url,omitempty"`
	CategoryID   *string     `db:"category_id" json:"category_id,omitempty"`
	InstructorID string      `db:"instructor_id" json:"instructor_id"`
	Published    bool        `db:"published" json:"published"`
	PublishedAt  *time.Time  `db:"published_at" json:"published_at,omitempty"`
	CreatedAt    time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time   `db:"updated_at" json:"updated_at"`
}

// CourseDetails joins the course with category and instructor data for
// catalog views.
type CourseDetails struct {
	Course
	CategoryName    *string `db:"category_name" json:"category_name,omitempty"`
	InstructorName  string  `db:"instructor_name" json:"instructor_name"`
	InstructorBio   *string `db:"instructor_bio" json:"instructor_bio,omitempty"`
	EnrollmentCount int     `db:"enrollment_count" json:"enrollment_count"`
}

// CourseFilter captures catalog listing criteria.
type CourseFilter struct {
	Search       string
	CategoryID   string
	Level        string
	InstructorID string
	// Published filters by publication state. Nil means no filter and is
	// reserved for admin and instructor views.
	Published *bool
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// CreateCourseRequest is the instructor authoring payload.
type CreateCourseRequest struct {
	Title        string  `json:"title" validate:"required,min=3,max=200"`
	Description  string  `json:"description" validate:"required,min=10"`
	Level        string  `json:"level" validate:"required,oneof=beginner intermediate advanced"`
	Price        float64 `json:"price" validate:"gte=0"`
	ThumbnailURL *string `json:"thumbnail_url" validate:"omitempty,url"`
	CategoryID   *string `json:"category_id" validate:"omitempty,uuid"`
}

// UpdateCourseRequest is a partial update of an owned course.
type UpdateCourseRequest struct {
	Title        *string  `json:"title" validate:"omitempty,min=3,max=200"`
	Description  *string  `json:"description" validate:"omitempty,min=10"`
	Level        *string  `json:"level" validate:"omitempty,oneof=beginner intermediate advanced"`
	Price        *float64 `json:"price" validate:"omitempty,gte=0"`
	ThumbnailURL *string  `json:"thumbnail_url" validate:"omitempty,url"`
	CategoryID   *string  `json:"category_id" validate:"omitempty,uuid"`
}

// SetPublicationRequest toggles a course's publication state (admin only).
type SetPublicationRequest struct {
	Published bool `json:"published"`
}
