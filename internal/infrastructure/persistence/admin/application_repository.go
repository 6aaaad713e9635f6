package admin

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	domain "github.com/iknowag/engage-go/internal/domain/admin"
	"github.com/iknowag/engage-go/internal/infrastructure/observability/logging"
	"github.com/iknowag/engage-go/internal/infrastructure/persistence/database"
	"github.com/iknowag/engage-go/pkg/config"
)

const applicationColumns = `id, company_name, media_type, contact_name, contact_title,
	contact_email, contact_phone, location, company_size, partnership_type, status,
	challenge, competitors, timeline, interested_tools, comments, created_at,
	reviewed_at, reviewed_by`

// SQLApplicationRepository handles partnership application persistence.
type SQLApplicationRepository struct {
	db     *database.DB
	logger *logging.ChanneledLogger
}

// NewSQLApplicationRepository creates a new instance of the repository.
func NewSQLApplicationRepository(db *database.DB, logger *logging.ChanneledLogger) *SQLApplicationRepository {
	return &SQLApplicationRepository{
		db:     db,
		logger: logger,
	}
}

// Create stores a newly submitted application.
func (r *SQLApplicationRepository) Create(app *domain.Application) error {
	const query = `
		INSERT INTO applications (` + applicationColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	tools, err := json.Marshal(app.InterestedTools)
	if err != nil {
		return fmt.Errorf("failed to marshal interested tools: %w", err)
	}

	start := time.Now()
	r.logger.Database().Debug("Executing application insert",
		"id", app.ID,
		"companyName", app.CompanyName)

	_, err = r.db.Exec(
		query,
		app.ID,
		app.CompanyName,
		app.MediaType,
		app.ContactName,
		app.ContactTitle,
		app.ContactEmail,
		app.ContactPhone,
		app.Location,
		app.CompanySize,
		app.PartnershipType,
		app.Status,
		app.Challenge,
		app.Competitors,
		app.Timeline,
		string(tools),
		app.Comments,
		formatTime(app.CreatedAt),
		nullableTime(app.ReviewedAt),
		app.ReviewedBy,
	)
	if err != nil {
		r.logger.Database().Error("Application insert failed",
			"error", err.Error(),
			"id", app.ID)
		return fmt.Errorf("failed to store application: %w", err)
	}

	duration := time.Since(start)
	if duration > config.SlowQueryThreshold {
		r.logger.LogSlowQuery(query, duration)
	}
	return nil
}

// FindByID retrieves one application, or nil when it does not exist.
func (r *SQLApplicationRepository) FindByID(id string) (*domain.Application, error) {
	const query = `
		SELECT ` + applicationColumns + `
		FROM applications
		WHERE id = ?`

	start := time.Now()
	r.logger.Database().Debug("Loading application", "id", id)

	row := r.db.QueryRow(query, id)
	app, err := scanApplication(row, r.logger)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Database().Error("Failed to scan application", "error", err.Error(), "id", id)
		return nil, fmt.Errorf("failed to load application: %w", err)
	}

	duration := time.Since(start)
	if duration > config.SlowQueryThreshold {
		r.logger.LogSlowQuery(query, duration)
	}
	return app, nil
}

// FindAll returns every application, newest first.
func (r *SQLApplicationRepository) FindAll() ([]*domain.Application, error) {
	const query = `
		SELECT ` + applicationColumns + `
		FROM applications
		ORDER BY created_at DESC`

	start := time.Now()
	rows, err := r.db.Query(query)
	if err != nil {
		r.logger.Database().Error("Failed to query applications", "error", err.Error())
		return nil, fmt.Errorf("failed to query applications: %w", err)
	}
	defer rows.Close()

	var apps []*domain.Application
	for rows.Next() {
		app, err := scanApplication(rows, r.logger)
		if err != nil {
			r.logger.Database().Error("Failed to scan application row", "error", err.Error())
			continue
		}
		apps = append(apps, app)
	}

	if err := rows.Err(); err != nil {
		r.logger.Database().Error("Row iteration error for applications", "error", err.Error())
		return nil, err
	}

	duration := time.Since(start)
	if duration > config.SlowQueryThreshold {
		r.logger.LogSlowQuery(query, duration)
	}
	return apps, nil
}

// UpdateStatus records an admin review decision on an application.
func (r *SQLApplicationRepository) UpdateStatus(id, status, reviewedBy string, reviewedAt time.Time) error {
	const query = `
		UPDATE applications
		SET status = ?, reviewed_by = ?, reviewed_at = ?
		WHERE id = ?`

	start := time.Now()
	r.logger.Database().Debug("Updating application status",
		"id", id,
		"status", status,
		"reviewedBy", reviewedBy)

	result, err := r.db.Exec(query, status, reviewedBy, formatTime(reviewedAt), id)
	if err != nil {
		r.logger.Database().Error("Application status update failed",
			"error", err.Error(),
			"id", id)
		return fmt.Errorf("failed to update application status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err == nil && affected == 0 {
		return fmt.Errorf("application not found: %s", id)
	}

	duration := time.Since(start)
	if duration > config.SlowQueryThreshold {
		r.logger.LogSlowQuery(query, duration)
	}
	return nil
}

// CountByStatus returns application counts grouped by review status.
func (r *SQLApplicationRepository) CountByStatus() (map[string]int, error) {
	const query = `
		SELECT status, COUNT(*)
		FROM applications
		GROUP BY status`

	rows, err := r.db.Query(query)
	if err != nil {
		r.logger.Database().Error("Failed to count applications", "error", err.Error())
		return nil, fmt.Errorf("failed to count applications: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			r.logger.Database().Error("Failed to scan status count", "error", err.Error())
			continue
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanApplication(row rowScanner, logger *logging.ChanneledLogger) (*domain.Application, error) {
	var app domain.Application
	var tools, createdAtStr string
	var reviewedAtStr, reviewedBy *string

	err := row.Scan(
		&app.ID,
		&app.CompanyName,
		&app.MediaType,
		&app.ContactName,
		&app.ContactTitle,
		&app.ContactEmail,
		&app.ContactPhone,
		&app.Location,
		&app.CompanySize,
		&app.PartnershipType,
		&app.Status,
		&app.Challenge,
		&app.Competitors,
		&app.Timeline,
		&tools,
		&app.Comments,
		&createdAtStr,
		&reviewedAtStr,
		&reviewedBy,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(tools), &app.InterestedTools); err != nil {
		logger.Database().Error("Failed to parse interested tools", "error", err.Error(), "id", app.ID)
		app.InterestedTools = nil
	}

	app.CreatedAt, err = parseTimestamp(createdAtStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}
	app.ReviewedAt = parseNullableTimestamp(reviewedAtStr)
	app.ReviewedBy = reviewedBy

	return &app, nil
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}
