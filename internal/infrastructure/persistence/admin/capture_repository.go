package admin

import (
	"fmt"
	"time"

	domain "github.com/iknowag/engage-go/internal/domain/admin"
	"github.com/iknowag/engage-go/internal/infrastructure/observability/logging"
	"github.com/iknowag/engage-go/internal/infrastructure/persistence/database"
	"github.com/iknowag/engage-go/pkg/config"
)

// SQLCaptureRepository handles email capture persistence.
type SQLCaptureRepository struct {
	db     *database.DB
	logger *logging.ChanneledLogger
}

// NewSQLCaptureRepository creates a new instance of the repository.
func NewSQLCaptureRepository(db *database.DB, logger *logging.ChanneledLogger) *SQLCaptureRepository {
	return &SQLCaptureRepository{
		db:     db,
		logger: logger,
	}
}

// Create stores a captured email address.
func (r *SQLCaptureRepository) Create(ec *domain.EmailCapture) error {
	const query = `
		INSERT INTO email_captures (id, email, name, source, created_at)
		VALUES (?, ?, ?, ?, ?)`

	start := time.Now()
	r.logger.Database().Debug("Executing email capture insert",
		"id", ec.ID,
		"source", ec.Source)

	_, err := r.db.Exec(query, ec.ID, ec.Email, ec.Name, ec.Source, formatTime(ec.CreatedAt))
	if err != nil {
		r.logger.Database().Error("Email capture insert failed",
			"error", err.Error(),
			"id", ec.ID)
		return fmt.Errorf("failed to store email capture: %w", err)
	}

	duration := time.Since(start)
	if duration > config.SlowQueryThreshold {
		r.logger.LogSlowQuery(query, duration)
	}
	return nil
}

// FindAll returns every captured email, newest first.
func (r *SQLCaptureRepository) FindAll() ([]*domain.EmailCapture, error) {
	const query = `
		SELECT id, email, name, source, created_at
		FROM email_captures
		ORDER BY created_at DESC`

	start := time.Now()
	rows, err := r.db.Query(query)
	if err != nil {
		r.logger.Database().Error("Failed to query email captures", "error", err.Error())
		return nil, fmt.Errorf("failed to query email captures: %w", err)
	}
	defer rows.Close()

	var captures []*domain.EmailCapture
	for rows.Next() {
		var ec domain.EmailCapture
		var createdAtStr string

		err := rows.Scan(&ec.ID, &ec.Email, &ec.Name, &ec.Source, &createdAtStr)
		if err != nil {
			r.logger.Database().Error("Failed to scan email capture row", "error", err.Error())
			continue
		}

		ec.CreatedAt, err = parseTimestamp(createdAtStr)
		if err != nil {
			r.logger.Database().Error("Failed to parse created_at", "error", err.Error(), "id", ec.ID)
			continue
		}

		captures = append(captures, &ec)
	}

	if err := rows.Err(); err != nil {
		r.logger.Database().Error("Row iteration error for email captures", "error", err.Error())
		return nil, err
	}

	duration := time.Since(start)
	if duration > config.SlowQueryThreshold {
		r.logger.LogSlowQuery(query, duration)
	}
	return captures, nil
}

// Count returns the total number of captured emails.
func (r *SQLCaptureRepository) Count() (int, error) {
	const query = `SELECT COUNT(*) FROM email_captures`

	var count int
	if err := r.db.QueryRow(query).Scan(&count); err != nil {
		r.logger.Database().Error("Failed to count email captures", "error", err.Error())
		return 0, fmt.Errorf("failed to count email captures: %w", err)
	}
	return count, nil
}
