package models

import "time"

// PlatformStats holds the exact counts shown on the admin dashboard.
type PlatformStats struct {
	TotalUsers       int `db:"total_users" json:"total_users"`
	TotalCourses     int `db:"total_courses" json:"total_courses"`
	TotalEnrollments int `db:"total_enrollments" json:"total_enrollments"`
	TotalCategories  int `db:"total_categories" json:"total_categories"`
	PublishedCourses int `db:"published_courses" json:"published_courses"`
	PendingCourses   int `db:"pending_courses" json:"pending_courses"`
}

// SystemMetrics is a lightweight runtime snapshot for the admin surface.
type SystemMetrics struct {
	CacheHitRatio            float64   `json:"cache_hit_ratio"`
	CacheHits                uint64    `json:"cache_hits"`
	CacheMisses              uint64    `json:"cache_misses"`
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	DBQueryCount             uint64    `json:"db_query_count"`
	AverageDBQueryDurationMs float64   `json:"average_db_query_duration_ms"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}
