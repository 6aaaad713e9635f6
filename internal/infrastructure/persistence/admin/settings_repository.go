package admin

import (
	"fmt"
	"time"

	"github.com/iknowag/engage-go/internal/infrastructure/observability/logging"
	"github.com/iknowag/engage-go/internal/infrastructure/persistence/database"
	"github.com/iknowag/engage-go/pkg/config"
)

// SQLSettingsRepository stores keyed settings rows. Site settings, email
// settings, and content blocks all live in the same table under their
// own scope.
type SQLSettingsRepository struct {
	db     *database.DB
	logger *logging.ChanneledLogger
}

// NewSQLSettingsRepository creates a new instance of the repository.
func NewSQLSettingsRepository(db *database.DB, logger *logging.ChanneledLogger) *SQLSettingsRepository {
	return &SQLSettingsRepository{
		db:     db,
		logger: logger,
	}
}

// Get returns every key/value pair under a scope.
func (r *SQLSettingsRepository) Get(scope string) (map[string]string, error) {
	const query = `
		SELECT key, value
		FROM settings
		WHERE scope = ?`

	start := time.Now()
	r.logger.Database().Debug("Loading settings", "scope", scope)

	rows, err := r.db.Query(query, scope)
	if err != nil {
		r.logger.Database().Error("Failed to query settings", "error", err.Error(), "scope", scope)
		return nil, fmt.Errorf("failed to query settings: %w", err)
	}
	defer rows.Close()

	values := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			r.logger.Database().Error("Failed to scan setting row", "error", err.Error(), "scope", scope)
			continue
		}
		values[key] = value
	}

	if err := rows.Err(); err != nil {
		r.logger.Database().Error("Row iteration error for settings", "error", err.Error(), "scope", scope)
		return nil, err
	}

	duration := time.Since(start)
	if duration > config.SlowQueryThreshold {
		r.logger.LogSlowQuery(query, duration)
	}
	return values, nil
}

// Set upserts a batch of key/value pairs under a scope inside one
// transaction so a partial save never lands.
func (r *SQLSettingsRepository) Set(scope string, values map[string]string, at time.Time) error {
	const query = `
		INSERT INTO settings (scope, key, value, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(scope, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`

	start := time.Now()
	r.logger.Database().Debug("Saving settings", "scope", scope, "count", len(values))

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin settings transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(query)
	if err != nil {
		return fmt.Errorf("failed to prepare settings upsert: %w", err)
	}
	defer stmt.Close()

	updatedAt := formatTime(at)
	for key, value := range values {
		if _, err := stmt.Exec(scope, key, value, updatedAt); err != nil {
			r.logger.Database().Error("Setting upsert failed",
				"error", err.Error(),
				"scope", scope,
				"key", key)
			return fmt.Errorf("failed to save setting %s/%s: %w", scope, key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit settings: %w", err)
	}

	duration := time.Since(start)
	if duration > config.SlowQueryThreshold {
		r.logger.LogSlowQuery(query, duration)
	}
	return nil
}
