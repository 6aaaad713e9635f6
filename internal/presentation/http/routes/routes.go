// Package routes provides HTTP route configuration for the presentation layer.
package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/iknowag/engage-go/internal/application/container"
	"github.com/iknowag/engage-go/internal/presentation/http/handlers"
	"github.com/iknowag/engage-go/internal/presentation/http/middleware"
)

// SetupRoutes configures all HTTP routes and middleware with dependency injection.
func SetupRoutes(container *container.Container) *gin.Engine {
	r := gin.Default()

	r.Use(middleware.CORSMiddleware())

	// Initialize handlers
	trackHandlers := handlers.NewTrackHandlers(container.TrackingService, container.Logger, container.PerfTracker)
	authHandlers := handlers.NewAuthHandlers(container.AuthService, container.Logger, container.PerfTracker)
	visitorHandlers := handlers.NewVisitorHandlers(container.VisitorAnalyticsService, container.Logger, container.PerfTracker)
	applicationHandlers := handlers.NewApplicationHandlers(container.ApplicationService, container.Logger, container.PerfTracker)
	partnershipHandlers := handlers.NewPartnershipHandlers(container.PartnershipService, container.Logger, container.PerfTracker)
	captureHandlers := handlers.NewCaptureHandlers(container.EmailCaptureService, container.Logger, container.PerfTracker)
	settingsHandlers := handlers.NewSettingsHandlers(container.SettingsService, container.Logger, container.PerfTracker)
	dashboardHandlers := handlers.NewDashboardHandlers(container.DashboardService, container.Logger, container.PerfTracker)
	liveHandlers := handlers.NewLiveHandlers(container.ActivityBroadcaster, container.BoardBroadcaster, container.Logger, container.PerfTracker)
	logHandlers := handlers.NewLogHandlers(container.Logger, container.LogBroadcaster)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api/v1")
	{
		// Public tracking endpoints: every request carries (or mints)
		// a visitor ID.
		track := api.Group("/track")
		track.Use(middleware.EnsureVisitorID())
		{
			track.POST("/pageview", trackHandlers.PostPageView)
			track.POST("/event", trackHandlers.PostEvent)
			track.POST("/signup", trackHandlers.PostSignup)
			track.POST("/registration", trackHandlers.PostRegistration)
			track.POST("/subscription", trackHandlers.PostSubscription)
		}

		// Public forms
		api.POST("/applications", middleware.EnsureVisitorID(), applicationHandlers.PostApplication)
		api.POST("/captures", middleware.EnsureVisitorID(), captureHandlers.PostCapture)
		api.GET("/content", settingsHandlers.GetContent)

		// Admin API
		admin := api.Group("/admin")
		{
			admin.POST("/login", authHandlers.PostLogin)

			admin.Use(authHandlers.AuthMiddleware())
			{
				admin.GET("/status", authHandlers.GetStatus)

				admin.GET("/dashboard", dashboardHandlers.GetStats)
				admin.GET("/metrics", dashboardHandlers.GetMetrics)

				admin.GET("/visitors", visitorHandlers.GetVisitors)
				admin.GET("/visitors/funnel", visitorHandlers.GetFunnel)
				admin.GET("/visitors/top-pages", visitorHandlers.GetTopPages)
				admin.GET("/visitors/:id", visitorHandlers.GetVisitor)
				admin.POST("/visitors/:id/rescore", visitorHandlers.PostRescore)

				admin.GET("/applications", applicationHandlers.GetApplications)
				admin.GET("/applications/:id", applicationHandlers.GetApplication)
				admin.PUT("/applications/:id/status", applicationHandlers.PutApplicationStatus)

				admin.GET("/partnerships", partnershipHandlers.GetPartnerships)
				admin.POST("/partnerships", partnershipHandlers.PostPartnership)

				admin.GET("/captures", captureHandlers.GetCaptures)

				admin.GET("/settings/:scope", settingsHandlers.GetSettings)
				admin.PUT("/settings/:scope", settingsHandlers.PutSettings)

				admin.GET("/live/activity", liveHandlers.GetActivityStream)
				admin.GET("/live/board", liveHandlers.GetBoard)

				admin.GET("/logs/levels", logHandlers.GetLogLevels)
				admin.POST("/logs/levels", logHandlers.SetLogLevel)
			}
		}
	}

	// Log streaming is a special case and can remain at top level.
	r.GET("/admin-logs/stream", logHandlers.StreamLogs)

	return r
}
