package risk

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/mhtran-dev/go-flood-risk/internal/models"
	"github.com/mhtran-dev/go-flood-risk/internal/observability"
)

// DefaultGroupSize is how many assessments run concurrently per group.
const DefaultGroupSize = 5

// Assessor is the single-location pipeline the orchestrator drives.
type Assessor interface {
	Assess(ctx context.Context, loc models.Location) (*models.FloodRiskAssessment, error)
}

// Pacer gates the start of each assessment group, providing backpressure
// against external provider rate limits.
type Pacer interface {
	Wait(ctx context.Context) error
}

// NewPacer returns a token-bucket pacer releasing one group per interval.
// The bucket starts full, so the first group is not delayed.
func NewPacer(interval time.Duration) Pacer {
	return rate.NewLimiter(rate.Every(interval), 1)
}

// BatchResult carries the successful assessments in input order plus the
// success-rate summary.
type BatchResult struct {
	Assessments []*models.FloodRiskAssessment `json:"assessments"`
	Requested   int                           `json:"requested"`
	Succeeded   int                           `json:"succeeded"`
}

// Orchestrator runs the assessment pipeline over many locations in
// fixed-size concurrent groups, pacing between groups.
type Orchestrator struct {
	assessor  Assessor
	pacer     Pacer
	groupSize int
	metrics   *observability.Metrics
}

func NewOrchestrator(assessor Assessor, pacer Pacer, groupSize int, metrics *observability.Metrics) *Orchestrator {
	if groupSize <= 0 {
		groupSize = DefaultGroupSize
	}
	return &Orchestrator{assessor: assessor, pacer: pacer, groupSize: groupSize, metrics: metrics}
}

// AssessBatch splits locations into groups and runs each group's
// assessments concurrently. Group N+1 does not start until group N has
// fully settled and the pacer has released a token. Individual failures
// are logged and dropped rather than aborting the batch.
func (o *Orchestrator) AssessBatch(ctx context.Context, locations []models.Location) (*BatchResult, error) {
	out := make([]*models.FloodRiskAssessment, len(locations))

	for start := 0; start < len(locations); start += o.groupSize {
		if err := o.pacer.Wait(ctx); err != nil {
			return nil, fmt.Errorf("pacing interrupted: %w", err)
		}
		end := min(start+o.groupSize, len(locations))
		o.metrics.BatchGroups.Inc()

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				a, err := o.assessor.Assess(ctx, locations[i])
				if err != nil {
					o.metrics.BatchAssessments.WithLabelValues("failed").Inc()
					slog.Warn("batch assessment failed", "location", locations[i].Query(), "error", err)
					return
				}
				o.metrics.BatchAssessments.WithLabelValues("succeeded").Inc()
				out[i] = a
			}(i)
		}
		wg.Wait()
	}

	result := &BatchResult{Requested: len(locations)}
	for _, a := range out {
		if a != nil {
			result.Assessments = append(result.Assessments, a)
		}
	}
	result.Succeeded = len(result.Assessments)

	slog.Info("batch complete", "requested", result.Requested, "succeeded", result.Succeeded)
	return result, nil
}
