package visitor

import (
	"fmt"
	"time"

	domain "github.com/iknowag/engage-go/internal/domain/visitor"
	"github.com/iknowag/engage-go/internal/infrastructure/observability/logging"
	"github.com/iknowag/engage-go/internal/infrastructure/persistence/database"
	"github.com/iknowag/engage-go/pkg/config"
)

// SQLSessionRepository handles append-only page-view persistence.
type SQLSessionRepository struct {
	db     *database.DB
	logger *logging.ChanneledLogger
}

// NewSQLSessionRepository creates a new instance of the repository.
func NewSQLSessionRepository(db *database.DB, logger *logging.ChanneledLogger) *SQLSessionRepository {
	return &SQLSessionRepository{
		db:     db,
		logger: logger,
	}
}

// Create appends a PageView row.
func (r *SQLSessionRepository) Create(pv *domain.PageView) error {
	const query = `
		INSERT INTO visitor_sessions (id, visitor_id, session_id, page_path, page_title, referrer, user_agent, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	start := time.Now()
	r.logger.Database().Debug("Executing page view insert",
		"id", pv.ID,
		"visitorId", pv.VisitorID,
		"pagePath", pv.PagePath)

	_, err := r.db.Exec(
		query,
		pv.ID,
		pv.VisitorID,
		pv.SessionID,
		pv.PagePath,
		pv.PageTitle,
		pv.Referrer,
		pv.UserAgent,
		formatTime(pv.CreatedAt),
	)
	if err != nil {
		r.logger.Database().Error("Page view insert failed",
			"error", err.Error(),
			"visitorId", pv.VisitorID,
			"pagePath", pv.PagePath)
		return fmt.Errorf("failed to store page view: %w", err)
	}

	duration := time.Since(start)
	if duration > config.SlowQueryThreshold {
		r.logger.LogSlowQuery(query, duration)
	}
	return nil
}

// FindByVisitorID retrieves the full page-view history for one visitor,
// oldest first.
func (r *SQLSessionRepository) FindByVisitorID(visitorID string) ([]*domain.PageView, error) {
	const query = `
		SELECT id, visitor_id, session_id, page_path, page_title, referrer, user_agent, created_at
		FROM visitor_sessions
		WHERE visitor_id = ?
		ORDER BY created_at ASC`

	start := time.Now()
	r.logger.Database().Debug("Loading page views for visitor", "visitorId", visitorID)

	rows, err := r.db.Query(query, visitorID)
	if err != nil {
		r.logger.Database().Error("Failed to query page views", "error", err.Error(), "visitorId", visitorID)
		return nil, fmt.Errorf("failed to query page views: %w", err)
	}
	defer rows.Close()

	var pageViews []*domain.PageView
	for rows.Next() {
		var pv domain.PageView
		var createdAtStr string

		err := rows.Scan(
			&pv.ID,
			&pv.VisitorID,
			&pv.SessionID,
			&pv.PagePath,
			&pv.PageTitle,
			&pv.Referrer,
			&pv.UserAgent,
			&createdAtStr,
		)
		if err != nil {
			r.logger.Database().Error("Failed to scan page view row", "error", err.Error())
			continue
		}

		pv.CreatedAt, err = parseTimestamp(createdAtStr)
		if err != nil {
			r.logger.Database().Error("Failed to parse page view timestamp", "error", err.Error(), "timestamp", createdAtStr)
			continue
		}

		pageViews = append(pageViews, &pv)
	}

	if err := rows.Err(); err != nil {
		r.logger.Database().Error("Row iteration error for page views", "error", err.Error(), "visitorId", visitorID)
		return nil, err
	}

	duration := time.Since(start)
	if duration > config.SlowQueryThreshold {
		r.logger.LogSlowQuery(query, duration)
	}
	return pageViews, nil
}

// TopPaths returns the most-viewed page paths with their view counts.
func (r *SQLSessionRepository) TopPaths(limit int) (map[string]int, error) {
	const query = `
		SELECT page_path, COUNT(*) as views
		FROM visitor_sessions
		GROUP BY page_path
		ORDER BY views DESC
		LIMIT ?`

	rows, err := r.db.Query(query, limit)
	if err != nil {
		r.logger.Database().Error("Failed to query top paths", "error", err.Error())
		return nil, fmt.Errorf("failed to query top paths: %w", err)
	}
	defer rows.Close()

	paths := make(map[string]int)
	for rows.Next() {
		var path string
		var views int
		if err := rows.Scan(&path, &views); err != nil {
			r.logger.Database().Error("Failed to scan top path row", "error", err.Error())
			continue
		}
		paths[path] = views
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return paths, nil
}
