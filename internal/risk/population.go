package risk

import (
	"context"
	"errors"
	"fmt"

	"github.com/mhtran-dev/go-flood-risk/internal/cache"
	"github.com/mhtran-dev/go-flood-risk/internal/models"
	"github.com/mhtran-dev/go-flood-risk/internal/observability"
)

// PopulationScorer scores exposure from the province's population density
// and urbanization share.
type PopulationScorer struct {
	provider CensusProvider
	cache    *cache.Cache[*models.DensityRecord]
	metrics  *observability.Metrics
}

func NewPopulationScorer(provider CensusProvider, c *cache.Cache[*models.DensityRecord], metrics *observability.Metrics) *PopulationScorer {
	return &PopulationScorer{provider: provider, cache: c, metrics: metrics}
}

func (s *PopulationScorer) Source() string { return SourcePopulation }

func (s *PopulationScorer) Score(ctx context.Context, loc models.Location) SourceResult {
	rec, err := s.density(ctx, loc.Province)
	if err != nil {
		return degraded(SourcePopulation, 30, models.SourceLevelLow, "no population data available", err.Error())
	}
	return genuine(SourcePopulation, scorePopulation(rec))
}

func (s *PopulationScorer) density(ctx context.Context, province string) (*models.DensityRecord, error) {
	if province == "" {
		return nil, errors.New("location has no province")
	}
	if rec, ok := s.cache.Get(province); ok {
		s.metrics.CacheLookups.WithLabelValues(SourcePopulation, "hit").Inc()
		return rec, nil
	}
	s.metrics.CacheLookups.WithLabelValues(SourcePopulation, "miss").Inc()

	rec, err := s.provider.PopulationDensity(ctx, province)
	if err != nil {
		return nil, fmt.Errorf("fetching population density: %w", err)
	}
	s.cache.Set(province, rec)
	return rec, nil
}

func scorePopulation(rec *models.DensityRecord) models.SourceAssessment {
	score := 0
	var factors []string

	switch {
	case rec.DensityPerKM2 > 1000:
		score += 40
		factors = append(factors, fmt.Sprintf("very high population density: %.0f/km2", rec.DensityPerKM2))
	case rec.DensityPerKM2 > 500:
		score += 25
		factors = append(factors, fmt.Sprintf("high population density: %.0f/km2", rec.DensityPerKM2))
	case rec.DensityPerKM2 > 200:
		score += 10
		factors = append(factors, fmt.Sprintf("moderate population density: %.0f/km2", rec.DensityPerKM2))
	}

	switch {
	case rec.UrbanizationPct > 50:
		score += 20
		factors = append(factors, fmt.Sprintf("highly urbanized: %.0f%%", rec.UrbanizationPct))
	case rec.UrbanizationPct > 30:
		score += 10
		factors = append(factors, fmt.Sprintf("moderately urbanized: %.0f%%", rec.UrbanizationPct))
	}

	score = capScore(score)
	return models.SourceAssessment{
		Score:   score,
		Level:   levelFor(score),
		Factors: factors,
		Raw: map[string]any{
			"density_per_km2":  rec.DensityPerKM2,
			"urbanization_pct": rec.UrbanizationPct,
		},
	}
}
