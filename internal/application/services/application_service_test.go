package services

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	admindomain "github.com/iknowag/engage-go/internal/domain/admin"
	"github.com/iknowag/engage-go/internal/domain/visitor"
)

type memApplicationRepo struct {
	mu   sync.Mutex
	apps []*admindomain.Application
}

func (r *memApplicationRepo) Create(app *admindomain.Application) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *app
	r.apps = append(r.apps, &stored)
	return nil
}

func (r *memApplicationRepo) FindByID(id string) (*admindomain.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, app := range r.apps {
		if app.ID == id {
			return app, nil
		}
	}
	return nil, nil
}

func (r *memApplicationRepo) FindAll() ([]*admindomain.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*admindomain.Application(nil), r.apps...), nil
}

func (r *memApplicationRepo) UpdateStatus(id, status, reviewedBy string, reviewedAt time.Time) error {
	return fmt.Errorf("not used")
}

func (r *memApplicationRepo) CountByStatus() (map[string]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[string]int)
	for _, app := range r.apps {
		counts[app.Status]++
	}
	return counts, nil
}

func TestSubmitTracksFormSubmissionForVisitor(t *testing.T) {
	visitorRepo := newMemVisitorRepo()
	sessions := &memSessionRepo{}
	events := &memEventRepo{}
	tracking, dispatcher := newTestTracking(t, visitorRepo, sessions, events)

	appRepo := &memApplicationRepo{}
	svc := NewApplicationService(appRepo, tracking, nil, testLogger(t))

	const id = "67676767-6767-4767-8767-676767676767"
	app, err := svc.Submit(&admindomain.Application{
		CompanyName:  "Prairie Media",
		ContactEmail: "owner@prairiemedia.example",
	}, id)
	require.NoError(t, err)
	require.Equal(t, admindomain.ApplicationPending, app.Status)
	require.NotEmpty(t, app.ID)

	dispatcher.Close()

	recorded, err := events.FindByVisitorID(id)
	require.NoError(t, err)
	require.Len(t, recorded, 1)
	require.Equal(t, visitor.EventFormSubmission, recorded[0].EventType)
	require.Equal(t, "partnership_application", recorded[0].EventData["formId"])

	v := visitorRepo.get(id)
	require.NotNil(t, v, "submission must create the visitor")
	require.Equal(t, 25, v.LeadScore)
}

func TestSubmitWithoutVisitorStillSucceeds(t *testing.T) {
	visitorRepo := newMemVisitorRepo()
	sessions := &memSessionRepo{}
	events := &memEventRepo{}
	tracking, dispatcher := newTestTracking(t, visitorRepo, sessions, events)
	defer dispatcher.Close()

	appRepo := &memApplicationRepo{}
	svc := NewApplicationService(appRepo, tracking, nil, testLogger(t))

	app, err := svc.Submit(&admindomain.Application{
		CompanyName:  "Prairie Media",
		ContactEmail: "owner@prairiemedia.example",
	}, "")
	require.NoError(t, err)
	require.NotNil(t, app)
	require.Len(t, visitorRepo.visitors, 0)
}

func TestSubmitRejectsMissingRequiredFields(t *testing.T) {
	visitorRepo := newMemVisitorRepo()
	sessions := &memSessionRepo{}
	events := &memEventRepo{}
	tracking, dispatcher := newTestTracking(t, visitorRepo, sessions, events)
	defer dispatcher.Close()

	svc := NewApplicationService(&memApplicationRepo{}, tracking, nil, testLogger(t))

	_, err := svc.Submit(&admindomain.Application{ContactEmail: "x@example.com"}, "")
	require.Error(t, err)

	_, err = svc.Submit(&admindomain.Application{CompanyName: "Prairie Media"}, "")
	require.Error(t, err)
}
