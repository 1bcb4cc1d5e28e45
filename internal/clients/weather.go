// Package clients holds the HTTP adapters for the external data providers the
// risk engine consumes: weather, elevation, map infrastructure, and government
// open data. Each client is a narrow contract; failures are returned as plain
// errors for the scorers to degrade on, never retried here.
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

// WeatherClient talks to a weatherapi.com-compatible forecast provider.
type WeatherClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewWeatherClient(baseURL, apiKey string, timeout time.Duration) *WeatherClient {
	return &WeatherClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type weatherCurrent struct {
	LastUpdatedEpoch int64   `json:"last_updated_epoch"`
	TempC            float64 `json:"temp_c"`
	PrecipMM         float64 `json:"precip_mm"`
	Humidity         float64 `json:"humidity"`
	WindKPH          float64 `json:"wind_kph"`
	Condition        struct {
		Text string `json:"text"`
	} `json:"condition"`
}

type weatherForecastDay struct {
	Date string `json:"date"`
	Day  struct {
		TotalPrecipMM   float64 `json:"totalprecip_mm"`
		DailyChanceRain float64 `json:"daily_chance_of_rain"`
		AvgHumidity     float64 `json:"avghumidity"`
		MaxWindKPH      float64 `json:"maxwind_kph"`
	} `json:"day"`
}

type weatherResponse struct {
	Current  weatherCurrent `json:"current"`
	Forecast struct {
		ForecastDay []weatherForecastDay `json:"forecastday"`
	} `json:"forecast"`
	Alerts struct {
		Alert []struct {
			Event    string `json:"event"`
			Headline string `json:"headline"`
			Severity string `json:"severity"`
		} `json:"alert"`
	} `json:"alerts"`
}

// CurrentWeather fetches current conditions for q ("lat,lng" or a place name).
func (c *WeatherClient) CurrentWeather(ctx context.Context, q string) (*models.WeatherSnapshot, error) {
	params := url.Values{"key": {c.apiKey}, "q": {q}}
	var data weatherResponse
	if err := c.doGet(ctx, "/v1/current.json", params, &data); err != nil {
		return nil, err
	}
	snap := toSnapshot(data.Current)
	return &snap, nil
}

// Forecast fetches current conditions plus a days-long daily outlook.
func (c *WeatherClient) Forecast(ctx context.Context, q string, days int) (*models.Forecast, error) {
	params := url.Values{
		"key":  {c.apiKey},
		"q":    {q},
		"days": {strconv.Itoa(days)},
	}
	var data weatherResponse
	if err := c.doGet(ctx, "/v1/forecast.json", params, &data); err != nil {
		return nil, err
	}

	fc := &models.Forecast{
		Current: toSnapshot(data.Current),
		Days:    make([]models.ForecastDay, 0, len(data.Forecast.ForecastDay)),
	}
	for _, d := range data.Forecast.ForecastDay {
		fc.Days = append(fc.Days, models.ForecastDay{
			Date:         d.Date,
			PrecipMM:     d.Day.TotalPrecipMM,
			ChanceOfRain: d.Day.DailyChanceRain,
			AvgHumidity:  d.Day.AvgHumidity,
			MaxWindKPH:   d.Day.MaxWindKPH,
		})
	}
	return fc, nil
}

// Alerts fetches the provider's active warnings for q.
func (c *WeatherClient) Alerts(ctx context.Context, q string) (*models.AlertBundle, error) {
	params := url.Values{
		"key":    {c.apiKey},
		"q":      {q},
		"days":   {"1"},
		"alerts": {"yes"},
	}
	var data weatherResponse
	if err := c.doGet(ctx, "/v1/forecast.json", params, &data); err != nil {
		return nil, err
	}

	bundle := &models.AlertBundle{}
	for _, a := range data.Alerts.Alert {
		bundle.Warnings = append(bundle.Warnings, models.WeatherWarning{
			Event:    a.Event,
			Headline: a.Headline,
			Severity: a.Severity,
		})
	}
	return bundle, nil
}

func (c *WeatherClient) doGet(ctx context.Context, path string, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("weather request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("weather provider status %d: %s", resp.StatusCode, resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("error decoding weather response: %w", err)
	}
	return nil
}

func toSnapshot(cur weatherCurrent) models.WeatherSnapshot {
	return models.WeatherSnapshot{
		TempC:      cur.TempC,
		PrecipMM:   cur.PrecipMM,
		Humidity:   cur.Humidity,
		WindKPH:    cur.WindKPH,
		Condition:  cur.Condition.Text,
		ObservedAt: time.Unix(cur.LastUpdatedEpoch, 0).UTC(),
	}
}
