package models

import "time"

// Enrollment links an account to a course. At most one row exists per
// (account, course) pair; enrollments are never deleted.
type Enrollment struct {
	ID              string     `db:"id" json:"id"`
	AccountID       string     `db:"account_id" json:"account_id"`
	CourseID        string     `db:"course_id" json:"course_id"`
	Progress        int        `db:"progress" json:"progress"`
	EnrolledAt      time.Time  `db:"enrolled_at" json:"enrolled_at"`
	CompletedAt     *time.Time `db:"completed_at" json:"completed_at,omitempty"`
	CertificatePath *string    `db:"certificate_path" json:"-"`
}

// EnrollmentWithCourse joins the enrollment with course details for the
// learner dashboard.
type EnrollmentWithCourse struct {
	Enrollment
	CourseTitle        string      `db:"course_title" json:"course_title"`
	CourseLevel        CourseLevel `db:"course_level" json:"course_level"`
	CourseThumbnailURL *string     `db:"course_thumbnail_url" json:"course_thumbnail_url,omitempty"`
	InstructorName     string      `db:"instructor_name" json:"instructor_name"`
}

// EnrollRequest starts an enrollment in a published course.
type EnrollRequest struct {
	CourseID string `json:"course_id" validate:"required,uuid"`
}

// UpdateProgressRequest moves the progress percentage. Reaching 100
// stamps the completion time and queues certificate generation.
type UpdateProgressRequest struct {
	Progress int `json:"progress" validate:"gte=0,lte=100"`
}

// CertificateLink is the signed download handle for a completion
// certificate.
type CertificateLink struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}
