package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/iknowag/engage-go/internal/infrastructure/security"
	"github.com/iknowag/engage-go/pkg/config"
)

const visitorIDKey = "visitorID"

// EnsureVisitorID resolves the caller's visitor ID from the tracking
// cookie or the X-Visitor-ID header, minting a fresh one on first
// contact. The ID is a plain UUID; a malformed value is replaced rather
// than trusted. Repeat requests from the same browser always carry the
// same ID.
func EnsureVisitorID() gin.HandlerFunc {
	return func(c *gin.Context) {
		visitorID := ""

		if cookie, err := c.Cookie(config.VisitorCookieName); err == nil {
			visitorID = cookie
		}
		if visitorID == "" {
			visitorID = c.GetHeader("X-Visitor-ID")
		}

		if _, err := uuid.Parse(visitorID); err != nil {
			visitorID = security.GenerateVisitorID()
		}

		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(
			config.VisitorCookieName,
			visitorID,
			int(config.VisitorCookieMaxAge.Seconds()),
			"/",
			"",
			false,
			false,
		)

		c.Set(visitorIDKey, visitorID)
		c.Next()
	}
}

// GetVisitorID returns the visitor ID resolved by EnsureVisitorID.
func GetVisitorID(c *gin.Context) string {
	return c.GetString(visitorIDKey)
}
