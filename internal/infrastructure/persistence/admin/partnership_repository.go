package admin

import (
	"fmt"
	"time"

	domain "github.com/iknowag/engage-go/internal/domain/admin"
	"github.com/iknowag/engage-go/internal/infrastructure/observability/logging"
	"github.com/iknowag/engage-go/internal/infrastructure/persistence/database"
	"github.com/iknowag/engage-go/pkg/config"
)

// SQLPartnershipRepository handles active partnership persistence.
type SQLPartnershipRepository struct {
	db     *database.DB
	logger *logging.ChanneledLogger
}

// NewSQLPartnershipRepository creates a new instance of the repository.
func NewSQLPartnershipRepository(db *database.DB, logger *logging.ChanneledLogger) *SQLPartnershipRepository {
	return &SQLPartnershipRepository{
		db:     db,
		logger: logger,
	}
}

// Create stores a new partnership.
func (r *SQLPartnershipRepository) Create(p *domain.Partnership) error {
	const query = `
		INSERT INTO partnerships (id, company_name, contact_name, contact_email, status, started_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	start := time.Now()
	r.logger.Database().Debug("Executing partnership insert",
		"id", p.ID,
		"companyName", p.CompanyName)

	_, err := r.db.Exec(
		query,
		p.ID,
		p.CompanyName,
		p.ContactName,
		p.ContactEmail,
		p.Status,
		formatTime(p.StartedAt),
		formatTime(p.CreatedAt),
	)
	if err != nil {
		r.logger.Database().Error("Partnership insert failed",
			"error", err.Error(),
			"id", p.ID)
		return fmt.Errorf("failed to store partnership: %w", err)
	}

	duration := time.Since(start)
	if duration > config.SlowQueryThreshold {
		r.logger.LogSlowQuery(query, duration)
	}
	return nil
}

// FindAll returns every partnership, newest first.
func (r *SQLPartnershipRepository) FindAll() ([]*domain.Partnership, error) {
	const query = `
		SELECT id, company_name, contact_name, contact_email, status, started_at, created_at
		FROM partnerships
		ORDER BY created_at DESC`

	start := time.Now()
	rows, err := r.db.Query(query)
	if err != nil {
		r.logger.Database().Error("Failed to query partnerships", "error", err.Error())
		return nil, fmt.Errorf("failed to query partnerships: %w", err)
	}
	defer rows.Close()

	var partnerships []*domain.Partnership
	for rows.Next() {
		var p domain.Partnership
		var startedAtStr, createdAtStr string

		err := rows.Scan(
			&p.ID,
			&p.CompanyName,
			&p.ContactName,
			&p.ContactEmail,
			&p.Status,
			&startedAtStr,
			&createdAtStr,
		)
		if err != nil {
			r.logger.Database().Error("Failed to scan partnership row", "error", err.Error())
			continue
		}

		p.StartedAt, err = parseTimestamp(startedAtStr)
		if err != nil {
			r.logger.Database().Error("Failed to parse started_at", "error", err.Error(), "id", p.ID)
			continue
		}
		p.CreatedAt, err = parseTimestamp(createdAtStr)
		if err != nil {
			r.logger.Database().Error("Failed to parse created_at", "error", err.Error(), "id", p.ID)
			continue
		}

		partnerships = append(partnerships, &p)
	}

	if err := rows.Err(); err != nil {
		r.logger.Database().Error("Row iteration error for partnerships", "error", err.Error())
		return nil, err
	}

	duration := time.Since(start)
	if duration > config.SlowQueryThreshold {
		r.logger.LogSlowQuery(query, duration)
	}
	return partnerships, nil
}

// Count returns the total number of partnerships.
func (r *SQLPartnershipRepository) Count() (int, error) {
	const query = `SELECT COUNT(*) FROM partnerships`

	var count int
	if err := r.db.QueryRow(query).Scan(&count); err != nil {
		r.logger.Database().Error("Failed to count partnerships", "error", err.Error())
		return 0, fmt.Errorf("failed to count partnerships: %w", err)
	}
	return count, nil
}
