package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iknowag/engage-go/pkg/config"
)

func performTrackedRequest(t *testing.T, prepare func(*http.Request)) (string, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	var resolved string
	router := gin.New()
	router.Use(EnsureVisitorID())
	router.GET("/ping", func(c *gin.Context) {
		resolved = GetVisitorID(c)
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	if prepare != nil {
		prepare(req)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return resolved, w
}

func setCookieValue(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == config.VisitorCookieName {
			return cookie.Value
		}
	}
	t.Fatalf("response did not set the %s cookie", config.VisitorCookieName)
	return ""
}

func TestEnsureVisitorIDMintsIDOnFirstContact(t *testing.T) {
	resolved, w := performTrackedRequest(t, nil)

	_, err := uuid.Parse(resolved)
	require.NoError(t, err, "minted visitor ID should be a valid UUID")
	assert.Equal(t, resolved, setCookieValue(t, w))
}

func TestEnsureVisitorIDKeepsExistingCookie(t *testing.T) {
	existing := uuid.NewString()
	resolved, w := performTrackedRequest(t, func(req *http.Request) {
		req.AddCookie(&http.Cookie{Name: config.VisitorCookieName, Value: existing})
	})

	assert.Equal(t, existing, resolved)
	assert.Equal(t, existing, setCookieValue(t, w))
}

func TestEnsureVisitorIDFallsBackToHeader(t *testing.T) {
	existing := uuid.NewString()
	resolved, _ := performTrackedRequest(t, func(req *http.Request) {
		req.Header.Set("X-Visitor-ID", existing)
	})

	assert.Equal(t, existing, resolved)
}

func TestEnsureVisitorIDReplacesMalformedCookie(t *testing.T) {
	resolved, w := performTrackedRequest(t, func(req *http.Request) {
		req.AddCookie(&http.Cookie{Name: config.VisitorCookieName, Value: "not-a-uuid"})
	})

	assert.NotEqual(t, "not-a-uuid", resolved)
	_, err := uuid.Parse(resolved)
	require.NoError(t, err)
	assert.Equal(t, resolved, setCookieValue(t, w))
}
