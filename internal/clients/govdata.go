package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/mhtran-dev/go-flood-risk/internal/models"
)

// GovDataClient talks to the national open-data portal for disaster
// history, hydrological station readings, and census figures.
type GovDataClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewGovDataClient(baseURL, apiKey string, timeout time.Duration) *GovDataClient {
	return &GovDataClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type disasterHistoryResponse struct {
	Records []models.DisasterRecord `json:"records"`
}

type hydroStationsResponse struct {
	Stations []models.HydroStation `json:"stations"`
}

// DisasterHistory lists recorded flood events for a province between two
// years, inclusive.
func (c *GovDataClient) DisasterHistory(ctx context.Context, province string, fromYear, toYear int) ([]models.DisasterRecord, error) {
	params := url.Values{
		"province":  {province},
		"type":      {"flood"},
		"from_year": {strconv.Itoa(fromYear)},
		"to_year":   {strconv.Itoa(toYear)},
	}
	var data disasterHistoryResponse
	if err := c.doGet(ctx, "/api/v1/disasters", params, &data); err != nil {
		return nil, err
	}
	return data.Records, nil
}

// HydroStations lists river gauging stations for a province with their
// latest water level readings.
func (c *GovDataClient) HydroStations(ctx context.Context, province string) ([]models.HydroStation, error) {
	params := url.Values{"province": {province}}
	var data hydroStationsResponse
	if err := c.doGet(ctx, "/api/v1/hydro-stations", params, &data); err != nil {
		return nil, err
	}
	return data.Stations, nil
}

// PopulationDensity fetches census density and urbanization figures for a
// province.
func (c *GovDataClient) PopulationDensity(ctx context.Context, province string) (*models.DensityRecord, error) {
	params := url.Values{"province": {province}}
	var data models.DensityRecord
	if err := c.doGet(ctx, "/api/v1/population", params, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

func (c *GovDataClient) doGet(ctx context.Context, path string, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("gov data request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("gov data status %d: %s", resp.StatusCode, resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("error decoding gov data response: %w", err)
	}
	return nil
}
