package visitor

import (
	"encoding/json"
	"fmt"
	"time"

	domain "github.com/iknowag/engage-go/internal/domain/visitor"
	"github.com/iknowag/engage-go/internal/infrastructure/observability/logging"
	"github.com/iknowag/engage-go/internal/infrastructure/persistence/database"
	"github.com/iknowag/engage-go/pkg/config"
)

// SQLEventRepository handles append-only interaction event persistence.
type SQLEventRepository struct {
	db     *database.DB
	logger *logging.ChanneledLogger
}

// NewSQLEventRepository creates a new instance of the repository.
func NewSQLEventRepository(db *database.DB, logger *logging.ChanneledLogger) *SQLEventRepository {
	return &SQLEventRepository{
		db:     db,
		logger: logger,
	}
}

// Create appends an Event row. The payload is serialized to JSON.
func (r *SQLEventRepository) Create(ev *domain.Event) error {
	const query = `
		INSERT INTO visitor_events (id, visitor_id, session_id, event_type, event_data, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`

	payload, err := json.Marshal(ev.EventData)
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}

	start := time.Now()
	r.logger.Database().Debug("Executing event insert",
		"id", ev.ID,
		"visitorId", ev.VisitorID,
		"eventType", ev.EventType)

	_, err = r.db.Exec(
		query,
		ev.ID,
		ev.VisitorID,
		ev.SessionID,
		string(ev.EventType),
		string(payload),
		formatTime(ev.CreatedAt),
	)
	if err != nil {
		r.logger.Database().Error("Event insert failed",
			"error", err.Error(),
			"visitorId", ev.VisitorID,
			"eventType", ev.EventType)
		return fmt.Errorf("failed to store event: %w", err)
	}

	duration := time.Since(start)
	if duration > config.SlowQueryThreshold {
		r.logger.LogSlowQuery(query, duration)
	}
	return nil
}

// FindByVisitorID retrieves the full event history for one visitor, oldest first.
func (r *SQLEventRepository) FindByVisitorID(visitorID string) ([]*domain.Event, error) {
	const query = `
		SELECT id, visitor_id, session_id, event_type, event_data, created_at
		FROM visitor_events
		WHERE visitor_id = ?
		ORDER BY created_at ASC`

	start := time.Now()
	r.logger.Database().Debug("Loading events for visitor", "visitorId", visitorID)

	rows, err := r.db.Query(query, visitorID)
	if err != nil {
		r.logger.Database().Error("Failed to query events", "error", err.Error(), "visitorId", visitorID)
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []*domain.Event
	for rows.Next() {
		var ev domain.Event
		var eventType, payload, createdAtStr string

		err := rows.Scan(
			&ev.ID,
			&ev.VisitorID,
			&ev.SessionID,
			&eventType,
			&payload,
			&createdAtStr,
		)
		if err != nil {
			r.logger.Database().Error("Failed to scan event row", "error", err.Error())
			continue
		}

		ev.EventType = domain.EventType(eventType)

		if err := json.Unmarshal([]byte(payload), &ev.EventData); err != nil {
			r.logger.Database().Error("Failed to parse event payload", "error", err.Error(), "id", ev.ID)
			continue
		}

		ev.CreatedAt, err = parseTimestamp(createdAtStr)
		if err != nil {
			r.logger.Database().Error("Failed to parse event timestamp", "error", err.Error(), "timestamp", createdAtStr)
			continue
		}

		events = append(events, &ev)
	}

	if err := rows.Err(); err != nil {
		r.logger.Database().Error("Row iteration error for events", "error", err.Error(), "visitorId", visitorID)
		return nil, err
	}

	duration := time.Since(start)
	if duration > config.SlowQueryThreshold {
		r.logger.LogSlowQuery(query, duration)
	}
	return events, nil
}
