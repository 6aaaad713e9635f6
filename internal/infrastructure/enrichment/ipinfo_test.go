package enrichment

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iknowag/engage-go/internal/infrastructure/observability/logging"
)

func testLogger(t *testing.T) *logging.ChanneledLogger {
	t.Helper()
	logger, err := logging.NewChanneledLogger(&logging.LoggerConfig{
		OutputToFile:    false,
		OutputToConsole: false,
	})
	require.NoError(t, err)
	return logger
}

func TestLookupSuccess(t *testing.T) {
	ipServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ip":"203.0.113.7"}`))
	}))
	defer ipServer.Close()

	geoServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"city":"Lincoln","region":"Nebraska","country_name":"United States","timezone":"America/Chicago"}`))
	}))
	defer geoServer.Close()

	client := NewClientWithEndpoints(ipServer.URL, geoServer.URL, time.Second, testLogger(t))
	profile := client.Lookup(context.Background())

	require.Equal(t, "203.0.113.7", profile.IPAddress)
	require.Equal(t, "Lincoln, United States", profile.Location)
	require.Equal(t, "America/Chicago", profile.Timezone)
}

func TestLookupFailuresDegradeToUnknown(t *testing.T) {
	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer failing.Close()

	client := NewClientWithEndpoints(failing.URL, failing.URL, time.Second, testLogger(t))
	profile := client.Lookup(context.Background())

	require.Equal(t, Unknown, profile.IPAddress)
	require.Equal(t, Unknown, profile.Location)
	require.Equal(t, Unknown, profile.Timezone)
}

func TestLookupFailuresAreIndependent(t *testing.T) {
	ipServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ip":"203.0.113.7"}`))
	}))
	defer ipServer.Close()

	geoServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer geoServer.Close()

	client := NewClientWithEndpoints(ipServer.URL, geoServer.URL, time.Second, testLogger(t))
	profile := client.Lookup(context.Background())

	require.Equal(t, "203.0.113.7", profile.IPAddress)
	require.Equal(t, Unknown, profile.Location)
	require.Equal(t, Unknown, profile.Timezone)
}

func TestFormatLocationFallbacks(t *testing.T) {
	tests := []struct {
		name     string
		resp     geoResponse
		expected string
	}{
		{"city and country", geoResponse{City: "Omaha", Country: "United States"}, "Omaha, United States"},
		{"region fallback", geoResponse{Region: "Nebraska", Country: "United States"}, "Nebraska, United States"},
		{"country only", geoResponse{Country: "Canada"}, "Canada"},
		{"nothing", geoResponse{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, formatLocation(tt.resp))
		})
	}
}
