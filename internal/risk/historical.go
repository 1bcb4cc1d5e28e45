package risk

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonboulle/clockwork"

	"github.com/mhtran-dev/go-flood-risk/internal/cache"
	"github.com/mhtran-dev/go-flood-risk/internal/models"
	"github.com/mhtran-dev/go-flood-risk/internal/observability"
)

// historyYears is the lookback window for flood records.
const historyYears = 30

// HistoricalScorer scores flood risk from the province's recorded flood
// events: how many, how damaging, and whether they are becoming more
// frequent.
type HistoricalScorer struct {
	provider HistoryProvider
	cache    *cache.Cache[[]models.DisasterRecord]
	clock    clockwork.Clock
	metrics  *observability.Metrics
}

func NewHistoricalScorer(provider HistoryProvider, c *cache.Cache[[]models.DisasterRecord], clock clockwork.Clock, metrics *observability.Metrics) *HistoricalScorer {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &HistoricalScorer{provider: provider, cache: c, clock: clock, metrics: metrics}
}

func (s *HistoricalScorer) Source() string { return SourceHistorical }

func (s *HistoricalScorer) Score(ctx context.Context, loc models.Location) SourceResult {
	records, err := s.history(ctx, loc.Province)
	if err != nil {
		return degraded(SourceHistorical, 30, models.SourceLevelLow, "no historical flood data available", err.Error())
	}
	return genuine(SourceHistorical, scoreHistory(records, s.clock.Now().Year()))
}

func (s *HistoricalScorer) history(ctx context.Context, province string) ([]models.DisasterRecord, error) {
	if province == "" {
		return nil, errors.New("location has no province")
	}
	if records, ok := s.cache.Get(province); ok {
		s.metrics.CacheLookups.WithLabelValues(SourceHistorical, "hit").Inc()
		return records, nil
	}
	s.metrics.CacheLookups.WithLabelValues(SourceHistorical, "miss").Inc()

	year := s.clock.Now().Year()
	records, err := s.provider.DisasterHistory(ctx, province, year-historyYears, year)
	if err != nil {
		return nil, fmt.Errorf("fetching disaster history: %w", err)
	}
	s.cache.Set(province, records)
	return records, nil
}

func scoreHistory(records []models.DisasterRecord, nowYear int) models.SourceAssessment {
	score := 0
	var factors []string

	n := len(records)
	switch {
	case n >= 10:
		score += 40
		factors = append(factors, fmt.Sprintf("%d flood events on record", n))
	case n >= 5:
		score += 30
		factors = append(factors, fmt.Sprintf("%d flood events on record", n))
	case n >= 2:
		score += 20
		factors = append(factors, fmt.Sprintf("%d flood events on record", n))
	case n >= 1:
		score += 10
		factors = append(factors, "one flood event on record")
	default:
		factors = append(factors, "no flood events on record")
	}

	if n > 0 {
		var total float64
		for _, r := range records {
			total += r.DamageUSD
		}
		avg := total / float64(n)
		switch {
		case avg >= 10_000_000:
			score += 20
			factors = append(factors, fmt.Sprintf("average damage $%.1fM per event", avg/1e6))
		case avg >= 1_000_000:
			score += 10
			factors = append(factors, fmt.Sprintf("average damage $%.1fM per event", avg/1e6))
		}

		switch eventTrend(records, nowYear) {
		case "increasing":
			score += 20
			factors = append(factors, "flood frequency increasing")
		case "stable":
			score += 10
			factors = append(factors, "flood frequency stable")
		default:
			factors = append(factors, "flood frequency decreasing")
		}
	}

	score = capScore(score)
	return models.SourceAssessment{
		Score:   score,
		Level:   levelFor(score),
		Factors: factors,
		Raw: map[string]any{
			"event_count": n,
		},
	}
}

// eventTrend compares event counts in the recent half of the lookback
// window against the older half.
func eventTrend(records []models.DisasterRecord, nowYear int) string {
	mid := nowYear - historyYears/2
	var recent, older int
	for _, r := range records {
		if r.Year >= mid {
			recent++
		} else {
			older++
		}
	}
	switch {
	case recent > older:
		return "increasing"
	case recent == older:
		return "stable"
	default:
		return "decreasing"
	}
}
