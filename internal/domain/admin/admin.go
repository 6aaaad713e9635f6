// Package admin defines the entities and repository interfaces backing the
// back-office screens: partnership applications, partnerships, email
// captures, settings, and content blocks.
package admin

import "time"

// Application statuses as reviewed by an admin.
const (
	ApplicationPending  = "pending"
	ApplicationApproved = "approved"
	ApplicationRejected = "rejected"
)

// Application is a partnership application submitted from the public form.
type Application struct {
	ID              string     `json:"id"`
	CompanyName     string     `json:"companyName"`
	MediaType       string     `json:"mediaType"`
	ContactName     string     `json:"contactName"`
	ContactTitle    string     `json:"contactTitle"`
	ContactEmail    string     `json:"contactEmail"`
	ContactPhone    string     `json:"contactPhone"`
	Location        string     `json:"location"`
	CompanySize     string     `json:"companySize"`
	PartnershipType string     `json:"partnershipType"`
	Status          string     `json:"status"`
	Challenge       string     `json:"challenge"`
	Competitors     string     `json:"competitors"`
	Timeline        string     `json:"timeline"`
	InterestedTools []string   `json:"interestedTools"`
	Comments        string     `json:"comments"`
	CreatedAt       time.Time  `json:"createdAt"`
	ReviewedAt      *time.Time `json:"reviewedAt,omitempty"`
	ReviewedBy      *string    `json:"reviewedBy,omitempty"`
}

// Partnership is an accepted, ongoing partner engagement.
type Partnership struct {
	ID           string    `json:"id"`
	CompanyName  string    `json:"companyName"`
	ContactName  string    `json:"contactName"`
	ContactEmail string    `json:"contactEmail"`
	Status       string    `json:"status"`
	StartedAt    time.Time `json:"startedAt"`
	CreatedAt    time.Time `json:"createdAt"`
}

// EmailCapture is one email captured by a popup or inline form,
// tagged with the capture source.
type EmailCapture struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"createdAt"`
}

// Setting is one keyed settings row. Site settings, email provider settings,
// and content blocks all share this shape under different scopes.
type Setting struct {
	Scope     string    `json:"scope"`
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Setting scopes.
const (
	ScopeSite    = "site"
	ScopeEmail   = "email"
	ScopeContent = "content"
)

// ApplicationRepository defines the operations for persisting Applications.
type ApplicationRepository interface {
	Create(app *Application) error
	FindByID(id string) (*Application, error)
	FindAll() ([]*Application, error)
	UpdateStatus(id, status, reviewedBy string, reviewedAt time.Time) error
	CountByStatus() (map[string]int, error)
}

// PartnershipRepository defines the operations for persisting Partnerships.
type PartnershipRepository interface {
	Create(p *Partnership) error
	FindAll() ([]*Partnership, error)
	Count() (int, error)
}

// CaptureRepository defines the operations for persisting EmailCaptures.
type CaptureRepository interface {
	Create(ec *EmailCapture) error
	FindAll() ([]*EmailCapture, error)
	Count() (int, error)
}

// SettingsRepository defines the keyed settings store shared by the site,
// email, and content scopes.
type SettingsRepository interface {
	Get(scope string) (map[string]string, error)
	Set(scope string, values map[string]string, at time.Time) error
}
