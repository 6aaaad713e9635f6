package visitor

import (
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/iknowag/engage-go/internal/domain/visitor"
	"github.com/iknowag/engage-go/internal/infrastructure/observability/logging"
	"github.com/iknowag/engage-go/internal/infrastructure/persistence/database"
)

func newMockRepo(t *testing.T) (*SQLVisitorRepository, sqlmock.Sqlmock, func()) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	logger, err := logging.NewChanneledLogger(&logging.LoggerConfig{
		OutputToFile:    false,
		OutputToConsole: false,
	})
	require.NoError(t, err)

	repo := NewSQLVisitorRepository(&database.DB{DB: mockDB}, logger)
	cleanup := func() {
		mockDB.Close()
		logger.Close()
	}
	return repo, mock, cleanup
}

func visitorRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"visitor_id", "email", "name", "designation", "original_source", "ip_address",
		"location", "timezone", "user_agent", "lead_score", "lead_score_updated",
		"visit_count", "first_seen", "last_activity", "identified_at", "created_at", "updated_at",
	})
}

func TestFindByIDReturnsVisitor(t *testing.T) {
	repo, mock, cleanup := newMockRepo(t)
	defer cleanup()

	rows := visitorRows().AddRow(
		"11111111-2222-3333-4444-555555555555", "jane@example.com", "Jane", "email", "direct", "203.0.113.9",
		"Des Moines, United States", "America/Chicago", "Mozilla/5.0", 37, "2026-02-01 10:00:00",
		4, "2026-01-01 09:00:00", "2026-02-01 10:00:00", "2026-01-15 08:30:00", "2026-01-01 09:00:00", "2026-02-01 10:00:00",
	)
	mock.ExpectQuery(`SELECT (.+) FROM visitors WHERE visitor_id = \?`).
		WithArgs("11111111-2222-3333-4444-555555555555").
		WillReturnRows(rows)

	v, err := repo.FindByID("11111111-2222-3333-4444-555555555555")
	require.NoError(t, err)
	require.NotNil(t, v)

	assert.Equal(t, "jane@example.com", v.Email)
	assert.Equal(t, domain.DesignationEmail, v.Designation)
	assert.Equal(t, 37, v.LeadScore)
	assert.Equal(t, 4, v.VisitCount)
	require.NotNil(t, v.LeadScoreUpdated)
	assert.Equal(t, time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC), v.LeadScoreUpdated.UTC())
	require.NotNil(t, v.IdentifiedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByIDUnknownVisitorIsNotAnError(t *testing.T) {
	repo, mock, cleanup := newMockRepo(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT (.+) FROM visitors WHERE visitor_id = \?`).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	v, err := repo.FindByID("missing")
	assert.NoError(t, err)
	assert.Nil(t, v)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTouchIncrementsVisitCountInPlace(t *testing.T) {
	repo, mock, cleanup := newMockRepo(t)
	defer cleanup()

	at := time.Date(2026, 3, 10, 14, 5, 0, 0, time.UTC)
	const query = `
		UPDATE visitors
		SET last_activity = ?, visit_count = visit_count + 1, updated_at = ?
		WHERE visitor_id = ?`

	mock.ExpectExec(regexp.QuoteMeta(query)).
		WithArgs("v-1", "2026-03-10 14:05:00", "v-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Touch("v-1", at)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateLeadScorePersistsScoreAndTimestamp(t *testing.T) {
	repo, mock, cleanup := newMockRepo(t)
	defer cleanup()

	at := time.Date(2026, 3, 10, 14, 5, 0, 0, time.UTC)
	const query = `
		UPDATE visitors
		SET lead_score = ?, lead_score_updated = ?, updated_at = ?
		WHERE visitor_id = ?`

	mock.ExpectExec(regexp.QuoteMeta(query)).
		WithArgs(42, "2026-03-10 14:05:00", "2026-03-10 14:05:00", "v-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateLeadScore("v-1", 42, at)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCountByDesignation(t *testing.T) {
	repo, mock, cleanup := newMockRepo(t)
	defer cleanup()

	rows := sqlmock.NewRows([]string{"designation", "count"}).
		AddRow("visitor", 120).
		AddRow("email", 14).
		AddRow("registered", 6).
		AddRow("subscriber", 2)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT designation, COUNT(*) FROM visitors GROUP BY designation`)).
		WillReturnRows(rows)

	counts, err := repo.CountByDesignation()
	require.NoError(t, err)
	assert.Equal(t, map[domain.Designation]int{
		domain.DesignationVisitor:    120,
		domain.DesignationEmail:      14,
		domain.DesignationRegistered: 6,
		domain.DesignationSubscriber: 2,
	}, counts)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCountBySource(t *testing.T) {
	repo, mock, cleanup := newMockRepo(t)
	defer cleanup()

	rows := sqlmock.NewRows([]string{"original_source", "count"}).
		AddRow("direct", 80).
		AddRow("google", 31).
		AddRow("newsletter", 9)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT original_source, COUNT(*) FROM visitors GROUP BY original_source`)).
		WillReturnRows(rows)

	counts, err := repo.CountBySource()
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"direct": 80, "google": 31, "newsletter": 9}, counts)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindAllSkipsRowsThatFailToScan(t *testing.T) {
	repo, mock, cleanup := newMockRepo(t)
	defer cleanup()

	rows := visitorRows().
		AddRow(
			"good-visitor", "", "", "visitor", "direct", "unknown",
			"unknown", "unknown", "", 0, nil,
			1, "2026-01-01 09:00:00", "2026-01-01 09:00:00", nil, "2026-01-01 09:00:00", "2026-01-01 09:00:00",
		).
		AddRow(
			"bad-visitor", "", "", "visitor", "direct", "unknown",
			"unknown", "unknown", "", 0, nil,
			1, "not-a-timestamp", "2026-01-01 09:00:00", nil, "2026-01-01 09:00:00", "2026-01-01 09:00:00",
		)
	mock.ExpectQuery(`SELECT (.+) FROM visitors ORDER BY last_activity DESC LIMIT \? OFFSET \?`).
		WithArgs(50, 0).
		WillReturnRows(rows)

	visitors, err := repo.FindAll(50, 0)
	require.NoError(t, err)
	require.Len(t, visitors, 1)
	assert.Equal(t, "good-visitor", visitors[0].VisitorID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
