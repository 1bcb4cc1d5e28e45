// Package risk implements the flood risk engine: five independent source
// scorers feeding a weighted aggregator, rule-based recommendations, a
// paced batch orchestrator, and the province alert compiler.
package risk

import (
	"context"

	"github.com/mhtran-dev/go-flood-risk/internal/models"
)

// Canonical source names. The engine requires exactly this set; the
// aggregate lists the genuine ones in DataSources.
const (
	SourceWeather        = "weather"
	SourceTerrain        = "terrain"
	SourceInfrastructure = "infrastructure"
	SourceHistorical     = "historical"
	SourcePopulation     = "population"
)

// sourceOrder is the canonical reporting order for factors and DataSources.
var sourceOrder = []string{
	SourceWeather,
	SourceTerrain,
	SourceInfrastructure,
	SourceHistorical,
	SourcePopulation,
}

// SourceResult is one scorer's contribution, tagged with whether it came
// from live provider data or the scorer's degraded fallback.
type SourceResult struct {
	Source     string
	Assessment models.SourceAssessment
	Degraded   bool
	Reason     string // provider error text when degraded
}

// Scorer produces one source's assessment for a location. Implementations
// never return an error: when the backing provider fails they return their
// documented degraded result instead, so one failing source cannot abort
// an assessment.
type Scorer interface {
	Source() string
	Score(ctx context.Context, loc models.Location) SourceResult
}

// Provider contracts consumed by the scorers, satisfied by the clients
// package and by test fakes.
type WeatherProvider interface {
	Forecast(ctx context.Context, q string, days int) (*models.Forecast, error)
}

type ElevationProvider interface {
	Elevations(ctx context.Context, points []models.Coordinates) ([]models.ElevationPoint, error)
}

type MapProvider interface {
	Infrastructure(ctx context.Context, minLat, minLng, maxLat, maxLng float64) (*models.InfrastructureBundle, error)
}

type HistoryProvider interface {
	DisasterHistory(ctx context.Context, province string, fromYear, toYear int) ([]models.DisasterRecord, error)
}

type CensusProvider interface {
	PopulationDensity(ctx context.Context, province string) (*models.DensityRecord, error)
}

func genuine(source string, a models.SourceAssessment) SourceResult {
	return SourceResult{Source: source, Assessment: a}
}

func degraded(source string, score int, level models.SourceLevel, factor, reason string) SourceResult {
	return SourceResult{
		Source: source,
		Assessment: models.SourceAssessment{
			Score:   score,
			Level:   level,
			Factors: []string{factor},
		},
		Degraded: true,
		Reason:   reason,
	}
}

// levelFor buckets a single source score into the three-tier source scale.
func levelFor(score int) models.SourceLevel {
	switch {
	case score >= 70:
		return models.SourceLevelHigh
	case score >= 40:
		return models.SourceLevelMedium
	default:
		return models.SourceLevelLow
	}
}

func capScore(score int) int {
	if score > 100 {
		return 100
	}
	return score
}
