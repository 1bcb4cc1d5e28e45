package risk

import (
	"context"
	"fmt"

	"github.com/mhtran-dev/go-flood-risk/internal/cache"
	"github.com/mhtran-dev/go-flood-risk/internal/models"
	"github.com/mhtran-dev/go-flood-risk/internal/observability"
)

// forecastDays is the short-range outlook length scored and alerted on.
const forecastDays = 3

// WeatherScorer scores flood risk from current conditions and the
// short-range forecast.
type WeatherScorer struct {
	provider WeatherProvider
	cache    *cache.Cache[*models.Forecast]
	metrics  *observability.Metrics
}

func NewWeatherScorer(provider WeatherProvider, c *cache.Cache[*models.Forecast], metrics *observability.Metrics) *WeatherScorer {
	return &WeatherScorer{provider: provider, cache: c, metrics: metrics}
}

func (s *WeatherScorer) Source() string { return SourceWeather }

func (s *WeatherScorer) Score(ctx context.Context, loc models.Location) SourceResult {
	fc, err := s.forecast(ctx, loc)
	if err != nil {
		return degraded(SourceWeather, 50, models.SourceLevelMedium, "no weather data available", err.Error())
	}
	return genuine(SourceWeather, scoreWeather(fc))
}

func (s *WeatherScorer) forecast(ctx context.Context, loc models.Location) (*models.Forecast, error) {
	key := loc.Query()
	if fc, ok := s.cache.Get(key); ok {
		s.metrics.CacheLookups.WithLabelValues(SourceWeather, "hit").Inc()
		return fc, nil
	}
	s.metrics.CacheLookups.WithLabelValues(SourceWeather, "miss").Inc()

	fc, err := s.provider.Forecast(ctx, key, forecastDays)
	if err != nil {
		return nil, fmt.Errorf("fetching forecast: %w", err)
	}
	s.cache.Set(key, fc)
	return fc, nil
}

func scoreWeather(fc *models.Forecast) models.SourceAssessment {
	score := 0
	var factors []string

	cur := fc.Current
	switch {
	case cur.PrecipMM >= 50:
		score += 40
		factors = append(factors, fmt.Sprintf("heavy rainfall: %.1fmm", cur.PrecipMM))
	case cur.PrecipMM >= 20:
		score += 25
		factors = append(factors, fmt.Sprintf("moderate rainfall: %.1fmm", cur.PrecipMM))
	}
	switch {
	case cur.Humidity >= 90:
		score += 30
		factors = append(factors, fmt.Sprintf("very high humidity: %.0f%%", cur.Humidity))
	case cur.Humidity >= 80:
		score += 15
		factors = append(factors, fmt.Sprintf("high humidity: %.0f%%", cur.Humidity))
	}
	if cur.WindKPH >= 60 {
		score += 10
		factors = append(factors, fmt.Sprintf("strong wind: %.1fkm/h", cur.WindKPH))
	}

	days := fc.Days
	if len(days) > forecastDays {
		days = days[:forecastDays]
	}
	for _, d := range days {
		switch {
		case d.PrecipMM >= 30:
			score += 10
			factors = append(factors, fmt.Sprintf("heavy rain expected %s: %.1fmm", d.Date, d.PrecipMM))
		case d.PrecipMM >= 15:
			score += 5
			factors = append(factors, fmt.Sprintf("rain expected %s: %.1fmm", d.Date, d.PrecipMM))
		}
		switch {
		case d.ChanceOfRain >= 80:
			score += 5
			factors = append(factors, fmt.Sprintf("%.0f%% chance of rain %s", d.ChanceOfRain, d.Date))
		case d.ChanceOfRain >= 60:
			score += 3
			factors = append(factors, fmt.Sprintf("%.0f%% chance of rain %s", d.ChanceOfRain, d.Date))
		}
	}

	score = capScore(score)
	return models.SourceAssessment{
		Score:   score,
		Level:   levelFor(score),
		Factors: factors,
		Raw: map[string]any{
			"precip_mm": cur.PrecipMM,
			"humidity":  cur.Humidity,
			"wind_kph":  cur.WindKPH,
			"condition": cur.Condition,
		},
	}
}
