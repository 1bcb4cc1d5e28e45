package risk

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/mhtran-dev/go-flood-risk/internal/models"
	"github.com/mhtran-dev/go-flood-risk/internal/observability"
)

// DefaultScorerTimeout bounds a single source's provider calls before the
// scorer is forced down its degraded path.
const DefaultScorerTimeout = 10 * time.Second

// Engine fans one location out to the five source scorers, joins their
// results, and assembles the final assessment. It holds no state beyond
// its scorers; identical source scores always combine to the same result.
type Engine struct {
	scorers map[string]Scorer
	timeout time.Duration
	clock   clockwork.Clock
	metrics *observability.Metrics
}

// NewEngine requires exactly one scorer per canonical source.
func NewEngine(scorers []Scorer, timeout time.Duration, clock clockwork.Clock, metrics *observability.Metrics) (*Engine, error) {
	byName := make(map[string]Scorer, len(scorers))
	for _, s := range scorers {
		if _, dup := byName[s.Source()]; dup {
			return nil, fmt.Errorf("duplicate scorer %q", s.Source())
		}
		byName[s.Source()] = s
	}
	for _, name := range sourceOrder {
		if _, ok := byName[name]; !ok {
			return nil, fmt.Errorf("missing scorer %q", name)
		}
	}
	if len(byName) != len(sourceOrder) {
		return nil, fmt.Errorf("expected %d scorers, got %d", len(sourceOrder), len(byName))
	}
	if timeout <= 0 {
		timeout = DefaultScorerTimeout
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Engine{scorers: byName, timeout: timeout, clock: clock, metrics: metrics}, nil
}

// Assess runs all five scorers concurrently and combines their results.
// The only error paths are an invalid location and caller cancellation; a
// failing source degrades instead of erroring.
func (e *Engine) Assess(ctx context.Context, loc models.Location) (*models.FloodRiskAssessment, error) {
	if err := loc.Validate(); err != nil {
		return nil, fmt.Errorf("invalid location: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := e.clock.Now()
	results := make(map[string]SourceResult, len(e.scorers))
	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for _, s := range e.scorers {
		wg.Add(1)
		go func(s Scorer) {
			defer wg.Done()
			sctx, cancel := context.WithTimeout(ctx, e.timeout)
			defer cancel()
			res := e.score(sctx, s, loc)
			mu.Lock()
			results[res.Source] = res
			mu.Unlock()
		}(s)
	}
	wg.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	factors := models.RiskFactors{
		Weather:        results[SourceWeather].Assessment,
		Terrain:        results[SourceTerrain].Assessment,
		Infrastructure: results[SourceInfrastructure].Assessment,
		Historical:     results[SourceHistorical].Assessment,
		Population:     results[SourcePopulation].Assessment,
	}
	overall := Combine(
		factors.Weather.Score,
		factors.Terrain.Score,
		factors.Infrastructure.Score,
		factors.Historical.Score,
		factors.Population.Score,
	)

	genuineSources := make([]string, 0, len(sourceOrder))
	for _, name := range sourceOrder {
		if !results[name].Degraded {
			genuineSources = append(genuineSources, name)
		}
	}

	assessment := &models.FloodRiskAssessment{
		Location:         loc,
		OverallRiskScore: overall,
		RiskLevel:        LevelFor(overall),
		AssessmentDate:   e.clock.Now().UTC(),
		Factors:          factors,
		Recommendations:  Recommend(factors, overall),
		DataSources:      genuineSources,
		ConfidenceLevel:  ConfidenceFor(len(genuineSources), len(sourceOrder)),
	}

	e.metrics.AssessmentsTotal.Inc()
	e.metrics.AssessmentDuration.Observe(e.clock.Since(start).Seconds())
	slog.Info("assessment complete",
		"location", loc.Query(),
		"score", overall,
		"level", assessment.RiskLevel,
		"confidence", assessment.ConfidenceLevel)

	return assessment, nil
}

func (e *Engine) score(ctx context.Context, s Scorer, loc models.Location) SourceResult {
	start := e.clock.Now()
	res := s.Score(ctx, loc)
	e.metrics.SourceDuration.WithLabelValues(res.Source).Observe(e.clock.Since(start).Seconds())

	if res.Degraded {
		e.metrics.SourceResults.WithLabelValues(res.Source, "degraded").Inc()
		slog.Warn("source degraded", "source", res.Source, "location", loc.Query(), "reason", res.Reason)
	} else {
		e.metrics.SourceResults.WithLabelValues(res.Source, "genuine").Inc()
	}
	return res
}
