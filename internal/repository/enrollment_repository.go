package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/cursohub/cursohub-api/internal/models"
)

// EnrollmentRepository handles persistence of enrollments.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// Exists reports whether an enrollment already links the account to the
// course.
func (r *EnrollmentRepository) Exists(ctx context.Context, accountID, courseID string) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM enrollments WHERE account_id = $1 AND course_id = $2)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, accountID, courseID); err != nil {
		return false, fmt.Errorf("check enrollment exists: %w", err)
	}
	return exists, nil
}

// Create inserts a new enrollment.
func (r *EnrollmentRepository) Create(ctx context.Context, enrollment *models.Enrollment) error {
	if enrollment.ID == "" {
		enrollment.ID = uuid.NewString()
	}
	if enrollment.EnrolledAt.IsZero() {
		enrollment.EnrolledAt = time.Now().UTC()
	}
	const query = `INSERT INTO enrollments (id, account_id, course_id, progress, enrolled_at, completed_at, certificate_path) VALUES (:id, :account_id, :course_id, :progress, :enrolled_at, :completed_at, :certificate_path)`
	if _, err := r.db.NamedExecContext(ctx, query, enrollment); err != nil {
		return fmt.Errorf("create enrollment: %w", err)
	}
	return nil
}

// FindByID returns an enrollment by identifier.
func (r *EnrollmentRepository) FindByID(ctx context.Context, id string) (*models.Enrollment, error) {
	const query = `SELECT id, account_id, course_id, progress, enrolled_at, completed_at, certificate_path FROM enrollments WHERE id = $1 LIMIT 1`
	var enrollment models.Enrollment
	if err := r.db.GetContext(ctx, &enrollment, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find enrollment by id: %w", err)
	}
	return &enrollment, nil
}

// ListByAccount returns the account's enrollments joined with course
// details, newest first.
func (r *EnrollmentRepository) ListByAccount(ctx context.Context, accountID string) ([]models.EnrollmentWithCourse, error) {
	const query = `SELECT e.id, e.account_id, e.course_id, e.progress, e.enrolled_at, e.completed_at, e.certificate_path,
	c.title AS course_title,
	c.level AS course_level,
	c.thumbnail_url AS course_thumbnail_url,
	p.full_name AS instructor_name
FROM enrollments e
JOIN courses c ON c.id = e.course_id
JOIN profiles p ON p.account_id = c.instructor_id
WHERE e.account_id = $1
ORDER BY e.enrolled_at DESC`
	var enrollments []models.EnrollmentWithCourse
	if err := r.db.SelectContext(ctx, &enrollments, query, accountID); err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}
	return enrollments, nil
}

// UpdateProgress moves the progress percentage and optionally stamps the
// completion time.
func (r *EnrollmentRepository) UpdateProgress(ctx context.Context, id string, progress int, completedAt *time.Time) error {
	const query = `UPDATE enrollments SET progress = $2, completed_at = COALESCE(completed_at, $3) WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, progress, completedAt)
	if err != nil {
		return fmt.Errorf("update enrollment progress: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// SetCertificatePath records where the generated certificate is stored.
func (r *EnrollmentRepository) SetCertificatePath(ctx context.Context, id, path string) error {
	const query = `UPDATE enrollments SET certificate_path = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, path); err != nil {
		return fmt.Errorf("set certificate path: %w", err)
	}
	return nil
}
