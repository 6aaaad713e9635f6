// Package enrichment resolves the public IP address and coarse
// geolocation of a new visitor from external lookup services. Failures
// degrade to "unknown" values and never block visitor creation.
package enrichment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/iknowag/engage-go/internal/infrastructure/observability/logging"
	"github.com/iknowag/engage-go/pkg/config"
)

// Unknown is the sentinel stored when a lookup fails or times out.
const Unknown = "unknown"

// Profile is the enrichment result for one visitor.
type Profile struct {
	IPAddress string
	Location  string
	Timezone  string
}

// Client queries the IP and geolocation lookup services.
type Client struct {
	httpClient *http.Client
	ipURL      string
	geoURL     string
	logger     *logging.ChanneledLogger
}

// NewClient builds a Client using the configured lookup endpoints.
func NewClient(logger *logging.ChanneledLogger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: config.EnrichmentTimeout},
		ipURL:      config.IPLookupURL,
		geoURL:     config.GeoLookupURL,
		logger:     logger,
	}
}

// NewClientWithEndpoints builds a Client against explicit endpoints.
func NewClientWithEndpoints(ipURL, geoURL string, timeout time.Duration, logger *logging.ChanneledLogger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		ipURL:      ipURL,
		geoURL:     geoURL,
		logger:     logger,
	}
}

type ipResponse struct {
	IP string `json:"ip"`
}

type geoResponse struct {
	City     string `json:"city"`
	Region   string `json:"region"`
	Country  string `json:"country_name"`
	Timezone string `json:"timezone"`
}

// Lookup fetches the IP address and geolocation concurrently. Each
// lookup fails independently; the returned profile always has every
// field populated, with "unknown" standing in for failed lookups.
func (c *Client) Lookup(ctx context.Context) Profile {
	profile := Profile{
		IPAddress: Unknown,
		Location:  Unknown,
		Timezone:  Unknown,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var resp ipResponse
		if err := c.fetchJSON(ctx, c.ipURL, &resp); err != nil {
			c.logger.Tracking().Debug("IP lookup failed", "error", err.Error())
			return nil
		}
		if resp.IP != "" {
			profile.IPAddress = resp.IP
		}
		return nil
	})

	g.Go(func() error {
		var resp geoResponse
		if err := c.fetchJSON(ctx, c.geoURL, &resp); err != nil {
			c.logger.Tracking().Debug("Geo lookup failed", "error", err.Error())
			return nil
		}
		if loc := formatLocation(resp); loc != "" {
			profile.Location = loc
		}
		if resp.Timezone != "" {
			profile.Timezone = resp.Timezone
		}
		return nil
	})

	// Lookups swallow their own errors, so Wait only synchronizes.
	_ = g.Wait()
	return profile
}

func (c *Client) fetchJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build lookup request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("lookup request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("lookup returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode lookup response: %w", err)
	}
	return nil
}

func formatLocation(resp geoResponse) string {
	switch {
	case resp.City != "" && resp.Country != "":
		return resp.City + ", " + resp.Country
	case resp.Region != "" && resp.Country != "":
		return resp.Region + ", " + resp.Country
	case resp.Country != "":
		return resp.Country
	default:
		return ""
	}
}
