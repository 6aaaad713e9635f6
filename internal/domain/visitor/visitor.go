// Package visitor defines the entities and repository interfaces for the
// visitor tracking core: visitors, page-view sessions, and interaction events.
// These repositories abstract the data persistence details, ensuring the core
// application is clean and decoupled from the database.
package visitor

import "time"

// Designation is the identification tier of a visitor. It only ever moves
// forward in the order visitor < email < registered < subscriber.
type Designation string

const (
	DesignationVisitor    Designation = "visitor"
	DesignationEmail      Designation = "email"
	DesignationRegistered Designation = "registered"
	DesignationSubscriber Designation = "subscriber"
)

// Rank returns the position of a designation in the escalation order.
// Unknown values rank below "visitor" so they can never displace a real tier.
func (d Designation) Rank() int {
	switch d {
	case DesignationVisitor:
		return 1
	case DesignationEmail:
		return 2
	case DesignationRegistered:
		return 3
	case DesignationSubscriber:
		return 4
	}
	return 0
}

// Escalate returns the higher of the current and proposed designations.
// A downgrade is a no-op.
func (d Designation) Escalate(next Designation) Designation {
	if next.Rank() > d.Rank() {
		return next
	}
	return d
}

// Valid reports whether d is one of the four known tiers.
func (d Designation) Valid() bool {
	return d.Rank() > 0
}

// EventType enumerates the tracked interaction kinds.
type EventType string

const (
	EventExternalClick  EventType = "external_click"
	EventFormSubmission EventType = "form_submission"
)

// Visitor represents one browser/device identity tracked across repeat visits.
// VisitorID is minted client-side once and never changes; everything else is
// filled in as the visitor becomes known.
type Visitor struct {
	VisitorID        string      `json:"visitorId"`
	Email            *string     `json:"email,omitempty"`
	Name             *string     `json:"name,omitempty"`
	Designation      Designation `json:"designation"`
	OriginalSource   string      `json:"originalSource"`
	IPAddress        string      `json:"ipAddress"`
	Location         string      `json:"location"`
	Timezone         string      `json:"timezone"`
	UserAgent        string      `json:"userAgent"`
	LeadScore        int         `json:"leadScore"`
	LeadScoreUpdated *time.Time  `json:"leadScoreUpdated,omitempty"`
	VisitCount       int         `json:"visitCount"`
	FirstSeen        time.Time   `json:"firstSeen"`
	LastActivity     time.Time   `json:"lastActivity"`
	IdentifiedAt     *time.Time  `json:"identifiedAt,omitempty"`
	CreatedAt        time.Time   `json:"createdAt"`
	UpdatedAt        time.Time   `json:"updatedAt"`
}

// PageView is a single page-view record (a "tracking session" row), distinct
// from a login session. Append-only.
type PageView struct {
	ID        string    `json:"id"`
	VisitorID string    `json:"visitorId"`
	SessionID string    `json:"sessionId"`
	PagePath  string    `json:"pagePath"`
	PageTitle string    `json:"pageTitle"`
	Referrer  string    `json:"referrer"`
	UserAgent string    `json:"userAgent"`
	CreatedAt time.Time `json:"createdAt"`
}

// Event is a single tracked interaction (external click or form submission).
// Append-only. EventData carries a type-specific payload; for form
// submissions it holds field names only, never values.
type Event struct {
	ID        string         `json:"id"`
	VisitorID string         `json:"visitorId"`
	SessionID string         `json:"sessionId"`
	EventType EventType      `json:"eventType"`
	EventData map[string]any `json:"eventData"`
	CreatedAt time.Time      `json:"createdAt"`
}

// Repository defines the operations for persisting Visitor entities.
// Visitor rows are keyed by visitor_id; Touch bumps last_activity and
// visit_count as one atomic row update.
type Repository interface {
	FindByID(visitorID string) (*Visitor, error)
	FindAll(limit, offset int) ([]*Visitor, error)
	Create(v *Visitor) error
	Update(v *Visitor) error
	Touch(visitorID string, at time.Time) error
	UpdateLeadScore(visitorID string, score int, at time.Time) error
	CountByDesignation() (map[Designation]int, error)
	CountBySource() (map[string]int, error)
}

// SessionRepository defines the append-only store for PageView rows.
type SessionRepository interface {
	Create(pv *PageView) error
	FindByVisitorID(visitorID string) ([]*PageView, error)
	TopPaths(limit int) (map[string]int, error)
}

// EventRepository defines the append-only store for Event rows.
type EventRepository interface {
	Create(ev *Event) error
	FindByVisitorID(visitorID string) ([]*Event, error)
}
