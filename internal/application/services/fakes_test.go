package services

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iknowag/engage-go/internal/domain/visitor"
	"github.com/iknowag/engage-go/internal/infrastructure/observability/logging"
	"github.com/iknowag/engage-go/internal/infrastructure/observability/performance"
)

var errFakeDown = errors.New("store unavailable")

func testLogger(t *testing.T) *logging.ChanneledLogger {
	t.Helper()
	logger, err := logging.NewChanneledLogger(&logging.LoggerConfig{
		OutputToFile:    false,
		OutputToConsole: false,
	})
	require.NoError(t, err)
	return logger
}

type memVisitorRepo struct {
	mu       sync.Mutex
	visitors map[string]*visitor.Visitor

	failFind   bool
	failCreate bool
	failScore  bool

	scoreWrites int
}

func newMemVisitorRepo() *memVisitorRepo {
	return &memVisitorRepo{visitors: make(map[string]*visitor.Visitor)}
}

func (r *memVisitorRepo) FindByID(visitorID string) (*visitor.Visitor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failFind {
		return nil, errFakeDown
	}
	if v, ok := r.visitors[visitorID]; ok {
		copied := *v
		return &copied, nil
	}
	return nil, nil
}

func (r *memVisitorRepo) FindAll(limit, offset int) ([]*visitor.Visitor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []*visitor.Visitor
	for _, v := range r.visitors {
		copied := *v
		all = append(all, &copied)
	}
	return all, nil
}

func (r *memVisitorRepo) Create(v *visitor.Visitor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failCreate {
		return errFakeDown
	}
	copied := *v
	r.visitors[v.VisitorID] = &copied
	return nil
}

func (r *memVisitorRepo) Update(v *visitor.Visitor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *v
	r.visitors[v.VisitorID] = &copied
	return nil
}

func (r *memVisitorRepo) Touch(visitorID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.visitors[visitorID]
	if !ok {
		return errFakeDown
	}
	v.LastActivity = at
	v.VisitCount++
	return nil
}

func (r *memVisitorRepo) UpdateLeadScore(visitorID string, score int, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failScore {
		return errFakeDown
	}
	v, ok := r.visitors[visitorID]
	if !ok {
		return errFakeDown
	}
	v.LeadScore = score
	v.LeadScoreUpdated = &at
	r.scoreWrites++
	return nil
}

func (r *memVisitorRepo) CountByDesignation() (map[visitor.Designation]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[visitor.Designation]int)
	for _, v := range r.visitors {
		counts[v.Designation]++
	}
	return counts, nil
}

func (r *memVisitorRepo) CountBySource() (map[string]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[string]int)
	for _, v := range r.visitors {
		counts[v.OriginalSource]++
	}
	return counts, nil
}

func (r *memVisitorRepo) get(visitorID string) *visitor.Visitor {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.visitors[visitorID]
}

type memSessionRepo struct {
	mu       sync.Mutex
	views    []*visitor.PageView
	failRead bool
}

func (r *memSessionRepo) Create(pv *visitor.PageView) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.views = append(r.views, pv)
	return nil
}

func (r *memSessionRepo) FindByVisitorID(visitorID string) ([]*visitor.PageView, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failRead {
		return nil, errFakeDown
	}
	var out []*visitor.PageView
	for _, pv := range r.views {
		if pv.VisitorID == visitorID {
			out = append(out, pv)
		}
	}
	return out, nil
}

func (r *memSessionRepo) TopPaths(limit int) (map[string]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[string]int)
	for _, pv := range r.views {
		counts[pv.PagePath]++
	}
	return counts, nil
}

type memEventRepo struct {
	mu       sync.Mutex
	events   []*visitor.Event
	failRead bool
}

func (r *memEventRepo) Create(ev *visitor.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *memEventRepo) FindByVisitorID(visitorID string) ([]*visitor.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failRead {
		return nil, errFakeDown
	}
	var out []*visitor.Event
	for _, ev := range r.events {
		if ev.VisitorID == visitorID {
			out = append(out, ev)
		}
	}
	return out, nil
}

func newTestIdentity(t *testing.T, repo *memVisitorRepo) *IdentityService {
	t.Helper()
	return NewIdentityService(repo, nil, testLogger(t), performance.NewTracker())
}

func newTestScorer(t *testing.T, repo *memVisitorRepo, sessions *memSessionRepo, events *memEventRepo) *LeadScoreService {
	t.Helper()
	weights := visitor.DefaultScoreWeights([]string{"/partnership", "/about", "/admin"})
	return NewLeadScoreService(repo, sessions, events, weights, testLogger(t), performance.NewTracker())
}
