// Package container provides dependency injection for all singleton services
package container

import (
	"fmt"

	"github.com/iknowag/engage-go/internal/application/services"
	"github.com/iknowag/engage-go/internal/domain/visitor"
	"github.com/iknowag/engage-go/internal/infrastructure/email"
	"github.com/iknowag/engage-go/internal/infrastructure/enrichment"
	"github.com/iknowag/engage-go/internal/infrastructure/messaging"
	"github.com/iknowag/engage-go/internal/infrastructure/observability/logging"
	"github.com/iknowag/engage-go/internal/infrastructure/observability/performance"
	adminpersist "github.com/iknowag/engage-go/internal/infrastructure/persistence/admin"
	"github.com/iknowag/engage-go/internal/infrastructure/persistence/database"
	visitorpersist "github.com/iknowag/engage-go/internal/infrastructure/persistence/visitor"
	"github.com/iknowag/engage-go/internal/infrastructure/tasks"
	"github.com/iknowag/engage-go/pkg/config"
)

// Container holds all singleton services and infrastructure dependencies
type Container struct {
	// Tracking services
	IdentityService  *services.IdentityService
	LeadScoreService *services.LeadScoreService
	TrackingService  *services.TrackingService

	// Admin services
	VisitorAnalyticsService *services.VisitorAnalyticsService
	ApplicationService      *services.ApplicationService
	PartnershipService      *services.PartnershipService
	EmailCaptureService     *services.EmailCaptureService
	SettingsService         *services.SettingsService
	AuthService             *services.AuthService
	DashboardService        *services.DashboardService

	// Infrastructure
	DB                  *database.DB
	Logger              *logging.ChanneledLogger
	LogBroadcaster      *logging.LogBroadcaster
	PerfTracker         *performance.Tracker
	Dispatcher          *tasks.Dispatcher
	ActivityBroadcaster *messaging.ActivityBroadcaster
	BoardBroadcaster    *messaging.LiveBoardBroadcaster
}

// NewContainer creates and wires all singleton services.
func NewContainer(db *database.DB, logger *logging.ChanneledLogger) (*Container, error) {
	perfTracker := performance.NewTracker()
	dispatcher := tasks.NewDispatcher(config.TrackingQueueShards, config.TrackingQueueDepth, logger)
	activity := messaging.NewActivityBroadcaster(logger)

	visitorRepo := visitorpersist.NewSQLVisitorRepository(db, logger)
	sessionRepo := visitorpersist.NewSQLSessionRepository(db, logger)
	eventRepo := visitorpersist.NewSQLEventRepository(db, logger)
	appRepo := adminpersist.NewSQLApplicationRepository(db, logger)
	partnershipRepo := adminpersist.NewSQLPartnershipRepository(db, logger)
	captureRepo := adminpersist.NewSQLCaptureRepository(db, logger)
	settingsRepo := adminpersist.NewSQLSettingsRepository(db, logger)

	// The notification sender is optional; without an API key the
	// services simply skip email.
	emailSvc, err := email.NewService()
	if err != nil {
		logger.Email().Warn("Email service disabled", "reason", err.Error())
		emailSvc = nil
	}

	enricher := enrichment.NewClient(logger)
	weights := visitor.DefaultScoreWeights(config.HighValuePages)

	identity := services.NewIdentityService(visitorRepo, enricher, logger, perfTracker)
	scorer := services.NewLeadScoreService(visitorRepo, sessionRepo, eventRepo, weights, logger, perfTracker)
	tracking := services.NewTrackingService(identity, scorer, visitorRepo, sessionRepo, eventRepo, dispatcher, activity, logger)

	analytics := services.NewVisitorAnalyticsService(visitorRepo, sessionRepo, eventRepo, scorer, logger, perfTracker)
	applications := services.NewApplicationService(appRepo, tracking, emailSvc, logger)
	partnerships := services.NewPartnershipService(partnershipRepo, logger)
	captures := services.NewEmailCaptureService(captureRepo, tracking, emailSvc, logger)
	settings := services.NewSettingsService(settingsRepo, logger)
	auth := services.NewAuthService(logger)
	dashboard := services.NewDashboardService(visitorRepo, analytics, applications, partnerships, captures, logger, perfTracker)

	board := messaging.NewLiveBoardBroadcaster(dashboard, logger)

	if config.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET must be configured")
	}

	return &Container{
		IdentityService:  identity,
		LeadScoreService: scorer,
		TrackingService:  tracking,

		VisitorAnalyticsService: analytics,
		ApplicationService:      applications,
		PartnershipService:      partnerships,
		EmailCaptureService:     captures,
		SettingsService:         settings,
		AuthService:             auth,
		DashboardService:        dashboard,

		DB:                  db,
		Logger:              logger,
		LogBroadcaster:      logging.GetBroadcaster(),
		PerfTracker:         perfTracker,
		Dispatcher:          dispatcher,
		ActivityBroadcaster: activity,
		BoardBroadcaster:    board,
	}, nil
}

// Close stops the container's background infrastructure in dependency
// order: no new tasks, drain the queues, then stop the feeds.
func (c *Container) Close() {
	c.Dispatcher.Close()
	c.BoardBroadcaster.Stop()
	c.LogBroadcaster.Shutdown()
	c.Logger.Close()
}
