// Package routing estimates walking times to the house using an OSRM server.
package routing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Coordinate is a WGS84 position.
type Coordinate struct {
	Latitude  float64
	Longitude float64
}

// OSRMClient queries an OSRM routing server for foot travel durations.
type OSRMClient struct {
	baseURL string
	house   Coordinate
	client  *http.Client
}

// NewOSRMClient creates a client against the given OSRM base URL. house is the fixed
// destination of every estimate.
func NewOSRMClient(baseURL string, house Coordinate, client *http.Client) *OSRMClient {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &OSRMClient{baseURL: baseURL, house: house, client: client}
}

type osrmResponse struct {
	Code   string `json:"code"`
	Routes []struct {
		Duration float64 `json:"duration"`
	} `json:"routes"`
}

// EstimateTravelSeconds returns the foot travel time from the given position to the
// house.
func (c *OSRMClient) EstimateTravelSeconds(ctx context.Context, lat, lon float64) (float64, error) {
	// OSRM wants lon,lat pairs.
	url := fmt.Sprintf("%s/route/v1/foot/%f,%f;%f,%f?overview=false",
		c.baseURL, lon, lat, c.house.Longitude, c.house.Latitude)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("building route request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("querying route: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("route request failed with status %d", resp.StatusCode)
	}

	var parsed osrmResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return 0, fmt.Errorf("decoding route response: %w", err)
	}
	if parsed.Code != "Ok" || len(parsed.Routes) == 0 {
		return 0, fmt.Errorf("no route found (code %q)", parsed.Code)
	}
	return parsed.Routes[0].Duration, nil
}
