package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/cursohub/cursohub-api/internal/models"
)

// StatsRepository computes the exact platform counts for the admin
// dashboard.
type StatsRepository struct {
	db *sqlx.DB
}

// NewStatsRepository constructs the repository.
func NewStatsRepository(db *sqlx.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

// PlatformStats returns all dashboard counts in a single round trip.
func (r *StatsRepository) PlatformStats(ctx context.Context) (*models.PlatformStats, error) {
	const query = `SELECT
	(SELECT COUNT(*) FROM accounts) AS total_users,
	(SELECT COUNT(*) FROM courses) AS total_courses,
	(SELECT COUNT(*) FROM enrollments) AS total_enrollments,
	(SELECT COUNT(*) FROM categories) AS total_categories,
	(SELECT COUNT(*) FROM courses WHERE published = TRUE) AS published_courses,
	(SELECT COUNT(*) FROM courses WHERE published = FALSE) AS pending_courses`

	var stats models.PlatformStats
	if err := r.db.GetContext(ctx, &stats, query); err != nil {
		return nil, fmt.Errorf("load platform stats: %w", err)
	}
	return &stats, nil
}
