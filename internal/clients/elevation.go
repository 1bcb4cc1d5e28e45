package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mhtran-dev/go-flood-risk/internal/models"
)

// ElevationClient talks to an open-elevation-compatible lookup service.
type ElevationClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewElevationClient(baseURL string, timeout time.Duration) *ElevationClient {
	return &ElevationClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type elevationResponse struct {
	Results []struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
		Elevation float64 `json:"elevation"`
	} `json:"results"`
}

// Elevation looks up the elevation of a single point in meters.
func (c *ElevationClient) Elevation(ctx context.Context, lat, lng float64) (float64, error) {
	pts, err := c.Elevations(ctx, []models.Coordinates{{Latitude: lat, Longitude: lng}})
	if err != nil {
		return 0, err
	}
	if len(pts) == 0 {
		return 0, fmt.Errorf("no elevation result for %.4f,%.4f", lat, lng)
	}
	return pts[0].Elevation, nil
}

// Elevations looks up a batch of points in a single request. Results come
// back in the order the points were given.
func (c *ElevationClient) Elevations(ctx context.Context, points []models.Coordinates) ([]models.ElevationPoint, error) {
	if len(points) == 0 {
		return nil, nil
	}

	locs := make([]string, 0, len(points))
	for _, p := range points {
		locs = append(locs, fmt.Sprintf("%.6f,%.6f", p.Latitude, p.Longitude))
	}
	params := url.Values{"locations": {strings.Join(locs, "|")}}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v1/lookup?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("elevation request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("elevation provider status %d: %s", resp.StatusCode, resp.Status)
	}

	var data elevationResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("error decoding elevation response: %w", err)
	}

	out := make([]models.ElevationPoint, 0, len(data.Results))
	for _, r := range data.Results {
		out = append(out, models.ElevationPoint{
			Latitude:  r.Latitude,
			Longitude: r.Longitude,
			Elevation: r.Elevation,
		})
	}
	return out, nil
}
