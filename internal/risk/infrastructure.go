package risk

import (
	"context"
	"fmt"

	"github.com/mhtran-dev/go-flood-risk/internal/cache"
	"github.com/mhtran-dev/go-flood-risk/internal/models"
	"github.com/mhtran-dev/go-flood-risk/internal/observability"
)

// bboxOffsetDeg spans roughly 5km in each direction around the point.
const bboxOffsetDeg = 0.045

// InfrastructureScorer scores flood risk from mapped water features and
// built density around the point, offset by drainage and flood defenses.
type InfrastructureScorer struct {
	provider MapProvider
	cache    *cache.Cache[*models.InfrastructureBundle]
	metrics  *observability.Metrics
}

func NewInfrastructureScorer(provider MapProvider, c *cache.Cache[*models.InfrastructureBundle], metrics *observability.Metrics) *InfrastructureScorer {
	return &InfrastructureScorer{provider: provider, cache: c, metrics: metrics}
}

func (s *InfrastructureScorer) Source() string { return SourceInfrastructure }

func (s *InfrastructureScorer) Score(ctx context.Context, loc models.Location) SourceResult {
	bundle, err := s.infrastructure(ctx, loc)
	if err != nil {
		return degraded(SourceInfrastructure, 50, models.SourceLevelMedium, "unable to assess infrastructure", err.Error())
	}
	return genuine(SourceInfrastructure, scoreInfrastructure(bundle))
}

func (s *InfrastructureScorer) infrastructure(ctx context.Context, loc models.Location) (*models.InfrastructureBundle, error) {
	key := loc.Query()
	if b, ok := s.cache.Get(key); ok {
		s.metrics.CacheLookups.WithLabelValues(SourceInfrastructure, "hit").Inc()
		return b, nil
	}
	s.metrics.CacheLookups.WithLabelValues(SourceInfrastructure, "miss").Inc()

	b, err := s.provider.Infrastructure(ctx,
		loc.Latitude-bboxOffsetDeg, loc.Longitude-bboxOffsetDeg,
		loc.Latitude+bboxOffsetDeg, loc.Longitude+bboxOffsetDeg)
	if err != nil {
		return nil, fmt.Errorf("fetching infrastructure: %w", err)
	}
	s.cache.Set(key, b)
	return b, nil
}

func scoreInfrastructure(b *models.InfrastructureBundle) models.SourceAssessment {
	score := 0
	var factors []string

	switch wf := b.WaterFeatures(); {
	case wf >= 6:
		score += 30
		factors = append(factors, fmt.Sprintf("many water features nearby: %d", wf))
	case wf >= 3:
		score += 20
		factors = append(factors, fmt.Sprintf("several water features nearby: %d", wf))
	case wf >= 1:
		score += 10
		factors = append(factors, fmt.Sprintf("water features nearby: %d", wf))
	}

	switch {
	case b.DrainageChannels == 0:
		score += 15
		factors = append(factors, "no drainage channels mapped")
	case b.DrainageChannels < 3:
		score += 8
		factors = append(factors, fmt.Sprintf("limited drainage: %d channels", b.DrainageChannels))
	}

	switch {
	case b.FloodDefenses == 0:
		score += 10
		factors = append(factors, "no flood defenses mapped")
	case b.FloodDefenses < 2:
		score += 5
		factors = append(factors, fmt.Sprintf("limited flood defenses: %d", b.FloodDefenses))
	}

	switch {
	case b.Buildings >= 500:
		score += 15
		factors = append(factors, fmt.Sprintf("dense development: %d buildings", b.Buildings))
	case b.Buildings >= 100:
		score += 10
		factors = append(factors, fmt.Sprintf("moderate development: %d buildings", b.Buildings))
	case b.Buildings >= 20:
		score += 5
		factors = append(factors, fmt.Sprintf("some development: %d buildings", b.Buildings))
	}

	switch {
	case b.Roads >= 200:
		score += 10
		factors = append(factors, fmt.Sprintf("dense road network: %d roads", b.Roads))
	case b.Roads >= 50:
		score += 5
		factors = append(factors, fmt.Sprintf("moderate road network: %d roads", b.Roads))
	}

	score = capScore(score)
	return models.SourceAssessment{
		Score:   score,
		Level:   levelFor(score),
		Factors: factors,
		Raw: map[string]any{
			"water_features":    b.WaterFeatures(),
			"drainage_channels": b.DrainageChannels,
			"flood_defenses":    b.FloodDefenses,
			"buildings":         b.Buildings,
			"roads":             b.Roads,
		},
	}
}
