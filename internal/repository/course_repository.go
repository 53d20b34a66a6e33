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

const courseDetailsColumns = `c.id, c.title, c.description, c.level, c.price, c.thumbnail_url, c.category_id, c.instructor_id, c.published, c.published_at, c.created_at, c.updated_at,
	cat.name AS category_name,
	p.full_name AS instructor_name,
	p.bio AS instructor_bio,
	(SELECT COUNT(*) FROM enrollments e WHERE e.course_id = c.id) AS enrollment_count`

const courseDetailsJoins = `FROM courses c
	LEFT JOIN categories cat ON cat.id = c.category_id
	JOIN profiles p ON p.account_id = c.instructor_id`

// CourseRepository provides database access for courses and categories.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository creates a new instance of CourseRepository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// FindByID returns a course with category and instructor details.
func (r *CourseRepository) FindByID(ctx context.Context, id string) (*models.CourseDetails, error) {
	query := fmt.Sprintf("SELECT %s %s WHERE c.id = $1 LIMIT 1", courseDetailsColumns, courseDetailsJoins)
	var course models.CourseDetails
	if err := r.db.GetContext(ctx, &course, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find course by id: %w", err)
	}
	return &course, nil
}

// List returns courses based on filters with total count.
func (r *CourseRepository) List(ctx context.Context, filter models.CourseFilter) ([]models.CourseDetails, int, error) {
	baseQuery := courseDetailsJoins + " WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.Published != nil {
		conditions = append(conditions, fmt.Sprintf("c.published = $%d", len(args)+1))
		args = append(args, *filter.Published)
	}
	if filter.CategoryID != "" {
		conditions = append(conditions, fmt.Sprintf("c.category_id = $%d", len(args)+1))
		args = append(args, filter.CategoryID)
	}
	if filter.Level != "" {
		conditions = append(conditions, fmt.Sprintf("c.level = $%d", len(args)+1))
		args = append(args, filter.Level)
	}
	if filter.InstructorID != "" {
		conditions = append(conditions, fmt.Sprintf("c.instructor_id = $%d", len(args)+1))
		args = append(args, filter.InstructorID)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(c.title) LIKE $%d OR LOWER(c.description) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]string{
		"title":      "c.title",
		"price":      "c.price",
		"created_at": "c.created_at",
	}
	sortColumn, ok := allowedSorts[sortBy]
	if !ok {
		sortColumn = "c.created_at"
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

	listQuery := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", courseDetailsColumns, baseQuery, sortColumn, sortOrder, pageSize, offset)

	var courses []models.CourseDetails
	if err := r.db.SelectContext(ctx, &courses, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list courses: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", baseQuery)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count courses: %w", err)
	}

	return courses, total, nil
}

// Create inserts a new course draft.
func (r *CourseRepository) Create(ctx context.Context, course *models.Course) error {
	if course.ID == "" {
		course.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if course.CreatedAt.IsZero() {
		course.CreatedAt = now
	}
	course.UpdatedAt = now

	const query = `INSERT INTO courses (id, title, description, level, price, thumbnail_url, category_id, instructor_id, published, published_at, created_at, updated_at) VALUES (:id, :title, :description, :level, :price, :thumbnail_url, :category_id, :instructor_id, :published, :published_at, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, course); err != nil {
		return fmt.Errorf("create course: %w", err)
	}
	return nil
}

// Update updates mutable fields of a course.
func (r *CourseRepository) Update(ctx context.Context, course *models.Course) error {
	course.UpdatedAt = time.Now().UTC()
	const query = `UPDATE courses SET title = :title, description = :description, level = :level, price = :price, thumbnail_url = :thumbnail_url, category_id = :category_id, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, course); err != nil {
		return fmt.Errorf("update course: %w", err)
	}
	return nil
}

// SetPublication toggles the publication state of a course.
func (r *CourseRepository) SetPublication(ctx context.Context, id string, published bool, at time.Time) error {
	var publishedAt *time.Time
	if published {
		publishedAt = &at
	}
	const query = `UPDATE courses SET published = $2, published_at = $3, updated_at = $4 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, published, publishedAt, at)
	if err != nil {
		return fmt.Errorf("set course publication: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListCategories returns all categories ordered by name.
func (r *CourseRepository) ListCategories(ctx context.Context) ([]models.Category, error) {
	const query = `SELECT id, name, slug, created_at FROM categories ORDER BY name ASC`
	var categories []models.Category
	if err := r.db.SelectContext(ctx, &categories, query); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}
