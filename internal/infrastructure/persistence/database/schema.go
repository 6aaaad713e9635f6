// Package database provides schema instantiation
package database

import (
	"database/sql"
	"fmt"
)

// TableCreator handles the creation of the database schema on first start.
type TableCreator struct{}

// NewTableCreator creates a new TableCreator.
func NewTableCreator() *TableCreator {
	return &TableCreator{}
}

// CreateSchema executes all necessary queries to build the tables and indexes.
// Every statement is idempotent so the creator runs on every startup.
func (tc *TableCreator) CreateSchema(db *sql.DB) error {
	for _, tableSQL := range tables {
		if _, err := db.Exec(tableSQL); err != nil {
			return fmt.Errorf("failed to create table for query [%s]: %w", tableSQL, err)
		}
	}

	for _, indexSQL := range indexes {
		if _, err := db.Exec(indexSQL); err != nil {
			return fmt.Errorf("failed to create index for query [%s]: %w", indexSQL, err)
		}
	}
	return nil
}

// Sessions and events deliberately carry no foreign key on visitor_id:
// writes may race and a child row is allowed to land before its visitor
// row is upserted.
var tables = []string{
	`CREATE TABLE IF NOT EXISTS visitors (
		visitor_id TEXT PRIMARY KEY,
		email TEXT,
		name TEXT,
		designation TEXT NOT NULL DEFAULT 'visitor',
		original_source TEXT NOT NULL DEFAULT 'unknown',
		ip_address TEXT NOT NULL DEFAULT 'unknown',
		location TEXT NOT NULL DEFAULT 'unknown',
		timezone TEXT NOT NULL DEFAULT 'unknown',
		user_agent TEXT NOT NULL DEFAULT '',
		lead_score INTEGER NOT NULL DEFAULT 0,
		lead_score_updated TEXT,
		visit_count INTEGER NOT NULL DEFAULT 0,
		first_seen TEXT NOT NULL,
		last_activity TEXT NOT NULL,
		identified_at TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL)`,
	`CREATE TABLE IF NOT EXISTS visitor_sessions (
		id TEXT PRIMARY KEY,
		visitor_id TEXT NOT NULL,
		session_id TEXT NOT NULL,
		page_path TEXT NOT NULL,
		page_title TEXT NOT NULL DEFAULT '',
		referrer TEXT NOT NULL DEFAULT '',
		user_agent TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL)`,
	`CREATE TABLE IF NOT EXISTS visitor_events (
		id TEXT PRIMARY KEY,
		visitor_id TEXT NOT NULL,
		session_id TEXT NOT NULL,
		event_type TEXT NOT NULL,
		event_data TEXT NOT NULL DEFAULT '{}',
		created_at TEXT NOT NULL)`,
	`CREATE TABLE IF NOT EXISTS applications (
		id TEXT PRIMARY KEY,
		company_name TEXT NOT NULL,
		media_type TEXT NOT NULL DEFAULT '',
		contact_name TEXT NOT NULL DEFAULT '',
		contact_title TEXT NOT NULL DEFAULT '',
		contact_email TEXT NOT NULL,
		contact_phone TEXT NOT NULL DEFAULT '',
		location TEXT NOT NULL DEFAULT '',
		company_size TEXT NOT NULL DEFAULT '',
		partnership_type TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'pending',
		challenge TEXT NOT NULL DEFAULT '',
		competitors TEXT NOT NULL DEFAULT '',
		timeline TEXT NOT NULL DEFAULT '',
		interested_tools TEXT NOT NULL DEFAULT '[]',
		comments TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		reviewed_at TEXT,
		reviewed_by TEXT)`,
	`CREATE TABLE IF NOT EXISTS partnerships (
		id TEXT PRIMARY KEY,
		company_name TEXT NOT NULL,
		contact_name TEXT NOT NULL DEFAULT '',
		contact_email TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'active',
		started_at TEXT NOT NULL,
		created_at TEXT NOT NULL)`,
	`CREATE TABLE IF NOT EXISTS email_captures (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL,
		name TEXT NOT NULL DEFAULT '',
		source TEXT NOT NULL DEFAULT 'unknown',
		created_at TEXT NOT NULL)`,
	`CREATE TABLE IF NOT EXISTS settings (
		scope TEXT NOT NULL,
		key TEXT NOT NULL,
		value TEXT NOT NULL DEFAULT '',
		updated_at TEXT NOT NULL,
		PRIMARY KEY (scope, key))`,
}

var indexes = []string{
	`CREATE INDEX IF NOT EXISTS idx_visitor_sessions_visitor ON visitor_sessions(visitor_id, created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_visitor_events_visitor ON visitor_events(visitor_id, created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_visitors_last_activity ON visitors(last_activity)`,
	`CREATE INDEX IF NOT EXISTS idx_applications_status ON applications(status)`,
	`CREATE INDEX IF NOT EXISTS idx_email_captures_email ON email_captures(email)`,
}
