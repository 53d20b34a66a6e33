package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/cursohub/cursohub-api/internal/models"
)

func courseDetailRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "title", "description", "level", "price", "thumbnail_url", "category_id", "instructor_id",
		"published", "published_at", "created_at", "updated_at",
		"category_name", "instructor_name", "instructor_bio", "enrollment_count",
	})
}

func TestCourseRepositoryListPublishedOnly(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	now := time.Now()
	rows := courseDetailRows().
		AddRow("course-1", "Go Basics", "Learn Go", "beginner", 49.9, nil, nil, "acc-2", true, &now, now, now, nil, "Ada Teacher", nil, 12)

	published := true
	mock.ExpectQuery("SELECT c.id, c.title").
		WithArgs(true).
		WillReturnRows(rows)
	mock.ExpectQuery(`SELECT COUNT\(\*\)`).
		WithArgs(true).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	courses, total, err := repo.List(context.Background(), models.CourseFilter{Published: &published})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Len(t, courses, 1)
	require.Equal(t, "Ada Teacher", courses[0].InstructorName)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositorySetPublicationMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectExec("UPDATE courses SET published").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SetPublication(context.Background(), "missing", true, time.Now())
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryListCategories(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	rows := sqlmock.NewRows([]string{"id", "name", "slug", "created_at"}).
		AddRow("cat-1", "Programming", "programming", time.Now()).
		AddRow("cat-2", "Design", "design", time.Now())

	mock.ExpectQuery("SELECT id, name, slug, created_at FROM categories").
		WillReturnRows(rows)

	categories, err := repo.ListCategories(context.Background())
	require.NoError(t, err)
	require.Len(t, categories, 2)
	require.NoError(t, mock.ExpectationsWereMet())
}
