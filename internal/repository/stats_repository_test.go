package repository

import (
	"context"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func TestStatsRepositoryPlatformStats(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStatsRepository(db)

	rows := sqlmock.NewRows([]string{
		"total_users", "total_courses", "total_enrollments", "total_categories", "published_courses", "pending_courses",
	}).AddRow(120, 30, 450, 8, 25, 5)

	mock.ExpectQuery("SELECT").WillReturnRows(rows)

	stats, err := repo.PlatformStats(context.Background())
	require.NoError(t, err)
	require.Equal(t, 120, stats.TotalUsers)
	require.Equal(t, 25, stats.PublishedCourses)
	require.Equal(t, 5, stats.PendingCourses)
	require.NoError(t, mock.ExpectationsWereMet())
}
