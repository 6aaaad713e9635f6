package visitor

import (
	"database/sql"
	"fmt"
	"time"

	domain "github.com/iknowag/engage-go/internal/domain/visitor"
	"github.com/iknowag/engage-go/internal/infrastructure/observability/logging"
	"github.com/iknowag/engage-go/internal/infrastructure/persistence/database"
	"github.com/iknowag/engage-go/pkg/config"
)

// SQLVisitorRepository is the SQL-based implementation of the visitor Repository.
type SQLVisitorRepository struct {
	db     *database.DB
	logger *logging.ChanneledLogger
}

// NewSQLVisitorRepository creates a new instance of the repository.
func NewSQLVisitorRepository(db *database.DB, logger *logging.ChanneledLogger) *SQLVisitorRepository {
	return &SQLVisitorRepository{
		db:     db,
		logger: logger,
	}
}

const visitorColumns = `visitor_id, email, name, designation, original_source, ip_address,
	       location, timezone, user_agent, lead_score, lead_score_updated,
	       visit_count, first_seen, last_activity, identified_at, created_at, updated_at`

// FindByID retrieves a Visitor by its durable identifier. Returns nil when
// the visitor has not been seen yet.
func (r *SQLVisitorRepository) FindByID(visitorID string) (*domain.Visitor, error) {
	query := fmt.Sprintf(`SELECT %s FROM visitors WHERE visitor_id = ?`, visitorColumns)

	start := time.Now()
	r.logger.Database().Debug("Loading visitor by ID", "visitorId", visitorID)

	row := r.db.QueryRow(query, visitorID)
	v, err := r.scanVisitor(row)
	if err != nil {
		if err == sql.ErrNoRows {
			r.logger.Database().Debug("Visitor not found by ID", "visitorId", visitorID)
			return nil, nil
		}
		r.logger.Database().Error("Failed to load visitor by ID", "error", err.Error(), "visitorId", visitorID)
		return nil, err
	}

	duration := time.Since(start)
	if duration > config.SlowQueryThreshold {
		r.logger.LogSlowQuery(query, duration)
	}
	return v, nil
}

// FindAll retrieves visitors ordered by most recent activity.
func (r *SQLVisitorRepository) FindAll(limit, offset int) ([]*domain.Visitor, error) {
	query := fmt.Sprintf(`SELECT %s FROM visitors ORDER BY last_activity DESC LIMIT ? OFFSET ?`, visitorColumns)

	start := time.Now()
	r.logger.Database().Debug("Loading visitors", "limit", limit, "offset", offset)

	rows, err := r.db.Query(query, limit, offset)
	if err != nil {
		r.logger.Database().Error("Failed to query visitors", "error", err.Error())
		return nil, fmt.Errorf("failed to query visitors: %w", err)
	}
	defer rows.Close()

	var visitors []*domain.Visitor
	for rows.Next() {
		v, err := r.scanVisitor(rows)
		if err != nil {
			r.logger.Database().Error("Failed to scan visitor row", "error", err.Error())
			continue
		}
		visitors = append(visitors, v)
	}

	if err := rows.Err(); err != nil {
		r.logger.Database().Error("Row iteration error for visitors", "error", err.Error())
		return nil, err
	}

	r.logger.Database().Info("Visitors loaded", "count", len(visitors), "duration", time.Since(start))
	duration := time.Since(start)
	if duration > config.SlowQueryThreshold {
		r.logger.LogSlowQuery(query, duration)
	}
	return visitors, nil
}

// Create saves a new Visitor record.
func (r *SQLVisitorRepository) Create(v *domain.Visitor) error {
	query := fmt.Sprintf(`INSERT INTO visitors (%s) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, visitorColumns)

	start := time.Now()
	r.logger.Database().Debug("Executing visitor insert", "visitorId", v.VisitorID, "designation", v.Designation)

	_, err := r.db.Exec(
		query,
		v.VisitorID,
		v.Email,
		v.Name,
		string(v.Designation),
		v.OriginalSource,
		v.IPAddress,
		v.Location,
		v.Timezone,
		v.UserAgent,
		v.LeadScore,
		nullableTime(v.LeadScoreUpdated),
		v.VisitCount,
		formatTime(v.FirstSeen),
		formatTime(v.LastActivity),
		nullableTime(v.IdentifiedAt),
		formatTime(v.CreatedAt),
		formatTime(v.UpdatedAt),
	)
	if err != nil {
		r.logger.Database().Error("Visitor insert failed", "error", err.Error(), "visitorId", v.VisitorID)
		return fmt.Errorf("failed to store visitor: %w", err)
	}

	r.logger.Database().Info("Visitor insert completed", "visitorId", v.VisitorID, "duration", time.Since(start))
	return nil
}

// Update replaces the mutable identity fields of an existing Visitor.
func (r *SQLVisitorRepository) Update(v *domain.Visitor) error {
	const query = `
		UPDATE visitors
		SET email = ?, name = ?, designation = ?, ip_address = ?, location = ?,
		    timezone = ?, user_agent = ?, identified_at = ?, updated_at = ?
		WHERE visitor_id = ?`

	start := time.Now()
	r.logger.Database().Debug("Executing visitor update", "visitorId", v.VisitorID, "designation", v.Designation)

	_, err := r.db.Exec(
		query,
		v.Email,
		v.Name,
		string(v.Designation),
		v.IPAddress,
		v.Location,
		v.Timezone,
		v.UserAgent,
		nullableTime(v.IdentifiedAt),
		formatTime(time.Now()),
		v.VisitorID,
	)
	if err != nil {
		r.logger.Database().Error("Visitor update failed", "error", err.Error(), "visitorId", v.VisitorID)
		return fmt.Errorf("failed to update visitor: %w", err)
	}

	r.logger.Database().Info("Visitor update completed", "visitorId", v.VisitorID, "duration", time.Since(start))
	return nil
}

// Touch bumps last_activity and visit_count for a page view. The increment
// runs as a single row update, which the storage engine applies atomically.
func (r *SQLVisitorRepository) Touch(visitorID string, at time.Time) error {
	const query = `
		UPDATE visitors
		SET last_activity = ?, visit_count = visit_count + 1, updated_at = ?
		WHERE visitor_id = ?`

	start := time.Now()
	_, err := r.db.Exec(query, formatTime(at), formatTime(at), visitorID)
	if err != nil {
		r.logger.Database().Error("Visitor touch failed", "error", err.Error(), "visitorId", visitorID)
		return fmt.Errorf("failed to touch visitor: %w", err)
	}

	duration := time.Since(start)
	if duration > config.SlowQueryThreshold {
		r.logger.LogSlowQuery(query, duration)
	}
	return nil
}

// UpdateLeadScore persists a recomputed lead score and its timestamp.
func (r *SQLVisitorRepository) UpdateLeadScore(visitorID string, score int, at time.Time) error {
	const query = `
		UPDATE visitors
		SET lead_score = ?, lead_score_updated = ?, updated_at = ?
		WHERE visitor_id = ?`

	start := time.Now()
	r.logger.Database().Debug("Executing lead score update", "visitorId", visitorID, "score", score)

	_, err := r.db.Exec(query, score, formatTime(at), formatTime(at), visitorID)
	if err != nil {
		r.logger.Database().Error("Lead score update failed", "error", err.Error(), "visitorId", visitorID)
		return fmt.Errorf("failed to update lead score: %w", err)
	}

	r.logger.Database().Info("Lead score update completed", "visitorId", visitorID, "score", score, "duration", time.Since(start))
	return nil
}

// CountByDesignation returns visitor totals grouped by identification tier.
func (r *SQLVisitorRepository) CountByDesignation() (map[domain.Designation]int, error) {
	const query = `SELECT designation, COUNT(*) FROM visitors GROUP BY designation`

	rows, err := r.db.Query(query)
	if err != nil {
		r.logger.Database().Error("Failed to count visitors by designation", "error", err.Error())
		return nil, fmt.Errorf("failed to count visitors: %w", err)
	}
	defer rows.Close()

	counts := make(map[domain.Designation]int)
	for rows.Next() {
		var designation string
		var count int
		if err := rows.Scan(&designation, &count); err != nil {
			r.logger.Database().Error("Failed to scan designation count row", "error", err.Error())
			continue
		}
		counts[domain.Designation(designation)] = count
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return counts, nil
}

// CountBySource returns visitor totals grouped by acquisition source.
func (r *SQLVisitorRepository) CountBySource() (map[string]int, error) {
	const query = `SELECT original_source, COUNT(*) FROM visitors GROUP BY original_source`

	rows, err := r.db.Query(query)
	if err != nil {
		r.logger.Database().Error("Failed to count visitors by source", "error", err.Error())
		return nil, fmt.Errorf("failed to count visitors by source: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var source string
		var count int
		if err := rows.Scan(&source, &count); err != nil {
			r.logger.Database().Error("Failed to scan source count row", "error", err.Error())
			continue
		}
		counts[source] = count
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return counts, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *SQLVisitorRepository) scanVisitor(row rowScanner) (*domain.Visitor, error) {
	var v domain.Visitor
	var designation string
	var leadScoreUpdated, identifiedAt *string
	var firstSeen, lastActivity, createdAt, updatedAt string

	err := row.Scan(
		&v.VisitorID,
		&v.Email,
		&v.Name,
		&designation,
		&v.OriginalSource,
		&v.IPAddress,
		&v.Location,
		&v.Timezone,
		&v.UserAgent,
		&v.LeadScore,
		&leadScoreUpdated,
		&v.VisitCount,
		&firstSeen,
		&lastActivity,
		&identifiedAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	v.Designation = domain.Designation(designation)
	v.LeadScoreUpdated = parseNullableTimestamp(leadScoreUpdated)
	v.IdentifiedAt = parseNullableTimestamp(identifiedAt)

	if v.FirstSeen, err = parseTimestamp(firstSeen); err != nil {
		return nil, err
	}
	if v.LastActivity, err = parseTimestamp(lastActivity); err != nil {
		return nil, err
	}
	if v.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return nil, err
	}
	if v.UpdatedAt, err = parseTimestamp(updatedAt); err != nil {
		return nil, err
	}

	return &v, nil
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}
