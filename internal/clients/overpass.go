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

// MapClient queries an Overpass-compatible API for water and built
// infrastructure inside a bounding box.
type MapClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewMapClient(baseURL string, timeout time.Duration) *MapClient {
	return &MapClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type overpassResponse struct {
	Elements []struct {
		Type string            `json:"type"`
		ID   int64             `json:"id"`
		Tags map[string]string `json:"tags"`
	} `json:"elements"`
}

// Infrastructure counts mapped features inside the (south, west, north, east)
// bounding box, grouped into the categories the risk scorers consume.
func (c *MapClient) Infrastructure(ctx context.Context, minLat, minLng, maxLat, maxLng float64) (*models.InfrastructureBundle, error) {
	query := buildOverpassQuery(minLat, minLng, maxLat, maxLng)

	body := url.Values{"data": {query}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/interpreter", strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("overpass request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("overpass status %d: %s", resp.StatusCode, resp.Status)
	}

	var data overpassResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("error decoding overpass response: %w", err)
	}

	bundle := &models.InfrastructureBundle{}
	for _, el := range data.Elements {
		classify(el.Tags, bundle)
	}
	return bundle, nil
}

func buildOverpassQuery(minLat, minLng, maxLat, maxLng float64) string {
	bbox := fmt.Sprintf("%.6f,%.6f,%.6f,%.6f", minLat, minLng, maxLat, maxLng)
	var b strings.Builder
	b.WriteString("[out:json][timeout:25];(")
	for _, sel := range []string{
		`way["waterway"~"^(river|stream|canal)$"]`,
		`way["natural"="water"]`,
		`way["waterway"~"^(drain|ditch)$"]`,
		`way["man_made"~"^(dyke|embankment)$"]`,
		`way["waterway"="dam"]`,
		`way["highway"]`,
		`way["building"]`,
	} {
		b.WriteString(sel)
		b.WriteString("(" + bbox + ");")
	}
	b.WriteString(");out tags;")
	return b.String()
}

func classify(tags map[string]string, bundle *models.InfrastructureBundle) {
	switch tags["waterway"] {
	case "river", "stream", "canal":
		bundle.Rivers++
		return
	case "drain", "ditch":
		bundle.DrainageChannels++
		return
	case "dam":
		bundle.FloodDefenses++
		return
	}
	switch tags["man_made"] {
	case "dyke", "embankment":
		bundle.FloodDefenses++
		return
	}
	if tags["natural"] == "water" {
		bundle.WaterBodies++
		return
	}
	if _, ok := tags["highway"]; ok {
		bundle.Roads++
		return
	}
	if _, ok := tags["building"]; ok {
		bundle.Buildings++
	}
}
