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

// ApplicationRepository handles persistence of instructor applications.
type ApplicationRepository struct {
	db *sqlx.DB
}

// NewApplicationRepository constructs the repository.
func NewApplicationRepository(db *sqlx.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

// HasPending reports whether the account already has a pending application.
func (r *ApplicationRepository) HasPending(ctx context.Context, accountID string) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM instructor_applications WHERE account_id = $1 AND status = $2)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, accountID, models.ApplicationPending); err != nil {
		return false, fmt.Errorf("check pending application: %w", err)
	}
	return exists, nil
}

// Create inserts a new application with pending status.
func (r *ApplicationRepository) Create(ctx context.Context, app *models.InstructorApplication) error {
	if app.ID == "" {
		app.ID = uuid.NewString()
	}
	if app.Status == "" {
		app.Status = models.ApplicationPending
	}
	if app.CreatedAt.IsZero() {
		app.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO instructor_applications (id, account_id, expertise_area, experience_years, course_idea, motivation, status, reviewed_by, reviewed_at, created_at) VALUES (:id, :account_id, :expertise_area, :experience_years, :course_idea, :motivation, :status, :reviewed_by, :reviewed_at, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, app); err != nil {
		return fmt.Errorf("create application: %w", err)
	}
	return nil
}

// FindByID returns an application by identifier.
func (r *ApplicationRepository) FindByID(ctx context.Context, id string) (*models.InstructorApplication, error) {
	const query = `SELECT id, account_id, expertise_area, experience_years, course_idea, motivation, status, reviewed_by, reviewed_at, created_at FROM instructor_applications WHERE id = $1 LIMIT 1`
	var app models.InstructorApplication
	if err := r.db.GetContext(ctx, &app, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find application by id: %w", err)
	}
	return &app, nil
}

// List returns applications filtered by status with total count, newest
// first.
func (r *ApplicationRepository) List(ctx context.Context, filter models.ApplicationFilter) ([]models.InstructorApplication, int, error) {
	baseQuery := `FROM instructor_applications WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}

	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
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

	listQuery := fmt.Sprintf("SELECT id, account_id, expertise_area, experience_years, course_idea, motivation, status, reviewed_by, reviewed_at, created_at %s ORDER BY created_at DESC LIMIT %d OFFSET %d", baseQuery, pageSize, offset)

	var apps []models.InstructorApplication
	if err := r.db.SelectContext(ctx, &apps, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list applications: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", baseQuery)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count applications: %w", err)
	}

	return apps, total, nil
}

// SetStatus records the review decision for a pending application.
func (r *ApplicationRepository) SetStatus(ctx context.Context, id, status, reviewedBy string, reviewedAt time.Time) error {
	const query = `UPDATE instructor_applications SET status = $2, reviewed_by = $3, reviewed_at = $4 WHERE id = $1 AND status = $5`
	res, err := r.db.ExecContext(ctx, query, id, status, reviewedBy, reviewedAt, models.ApplicationPending)
	if err != nil {
		return fmt.Errorf("set application status: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
