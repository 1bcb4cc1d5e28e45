package risk

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/mhtran-dev/go-flood-risk/internal/cache"
	"github.com/mhtran-dev/go-flood-risk/internal/models"
	"github.com/mhtran-dev/go-flood-risk/internal/observability"
)

const (
	// slopeOffsetDeg is the sampling offset around the target point,
	// about 111m of ground distance per step.
	slopeOffsetDeg = 0.001
	slopeRunMeters = 111.0
)

// TerrainScorer scores flood risk from elevation, approximate local slope,
// and an elevation-derived water proximity heuristic.
type TerrainScorer struct {
	provider ElevationProvider
	cache    *cache.Cache[[]models.ElevationPoint]
	metrics  *observability.Metrics
}

func NewTerrainScorer(provider ElevationProvider, c *cache.Cache[[]models.ElevationPoint], metrics *observability.Metrics) *TerrainScorer {
	return &TerrainScorer{provider: provider, cache: c, metrics: metrics}
}

func (s *TerrainScorer) Source() string { return SourceTerrain }

func (s *TerrainScorer) Score(ctx context.Context, loc models.Location) SourceResult {
	pts, err := s.elevations(ctx, loc)
	if err != nil {
		return degraded(SourceTerrain, 50, models.SourceLevelMedium, "no elevation data available", err.Error())
	}
	return genuine(SourceTerrain, scoreTerrain(pts))
}

func (s *TerrainScorer) elevations(ctx context.Context, loc models.Location) ([]models.ElevationPoint, error) {
	key := loc.Query()
	if pts, ok := s.cache.Get(key); ok {
		s.metrics.CacheLookups.WithLabelValues(SourceTerrain, "hit").Inc()
		return pts, nil
	}
	s.metrics.CacheLookups.WithLabelValues(SourceTerrain, "miss").Inc()

	pts, err := s.provider.Elevations(ctx, samplePoints(loc))
	if err != nil {
		return nil, fmt.Errorf("fetching elevations: %w", err)
	}
	if len(pts) == 0 {
		return nil, errors.New("empty elevation response")
	}
	s.cache.Set(key, pts)
	return pts, nil
}

// samplePoints returns the target point first, then four offsets north,
// south, east, and west used for the slope approximation.
func samplePoints(loc models.Location) []models.Coordinates {
	return []models.Coordinates{
		{Latitude: loc.Latitude, Longitude: loc.Longitude},
		{Latitude: loc.Latitude + slopeOffsetDeg, Longitude: loc.Longitude},
		{Latitude: loc.Latitude - slopeOffsetDeg, Longitude: loc.Longitude},
		{Latitude: loc.Latitude, Longitude: loc.Longitude + slopeOffsetDeg},
		{Latitude: loc.Latitude, Longitude: loc.Longitude - slopeOffsetDeg},
	}
}

func scoreTerrain(pts []models.ElevationPoint) models.SourceAssessment {
	elev := pts[0].Elevation
	score := 0
	var factors []string

	switch {
	case elev < 5:
		score += 40
		factors = append(factors, fmt.Sprintf("very low elevation: %.1fm above sea level", elev))
	case elev < 10:
		score += 25
		factors = append(factors, fmt.Sprintf("low elevation: %.1fm above sea level", elev))
	case elev < 20:
		score += 10
		factors = append(factors, fmt.Sprintf("moderate elevation: %.1fm above sea level", elev))
	}

	slope := slopePct(pts)
	switch {
	case slope >= 5:
		score += 15
		factors = append(factors, fmt.Sprintf("steep local slope: %.1f%%", slope))
	case slope >= 2:
		score += 8
		factors = append(factors, fmt.Sprintf("moderate local slope: %.1f%%", slope))
	}

	prox := waterProximity(elev)
	switch {
	case prox >= 0.8:
		score += 20
		factors = append(factors, "very close to water level")
	case prox >= 0.6:
		score += 12
		factors = append(factors, "close to water level")
	case prox >= 0.3:
		score += 5
		factors = append(factors, "moderate proximity to water level")
	}

	score = capScore(score)
	return models.SourceAssessment{
		Score:   score,
		Level:   levelFor(score),
		Factors: factors,
		Raw: map[string]any{
			"elevation_m":     elev,
			"slope_pct":       slope,
			"water_proximity": prox,
		},
	}
}

// slopePct approximates local slope as mean elevation change over the
// sampling run, as a percentage.
func slopePct(pts []models.ElevationPoint) float64 {
	if len(pts) < 2 {
		return 0
	}
	center := pts[0].Elevation
	var sum float64
	for _, p := range pts[1:] {
		sum += math.Abs(p.Elevation - center)
	}
	rise := sum / float64(len(pts)-1)
	return rise / slopeRunMeters * 100
}

// waterProximity approximates closeness to surface water from elevation
// when no direct water-distance signal exists.
func waterProximity(elev float64) float64 {
	switch {
	case elev < 10:
		return 0.8
	case elev < 50:
		return 0.6
	case elev < 100:
		return 0.3
	default:
		return 0.1
	}
}
