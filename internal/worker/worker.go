// Package worker provides the bounded pool the monitor pushes fresh alerts
// through, decoupling polling from delivery.
package worker

import (
	"context"
	"log/slog"
	"sync"

	"github.com/mhtran-dev/go-flood-risk/internal/models"
)

// ProcessFunc handles one alert. Errors are logged, not retried.
type ProcessFunc func(ctx context.Context, alert models.Alert) error

type Pool struct {
	numWorkers int
	jobs       chan models.Alert
	processor  ProcessFunc
	wg         sync.WaitGroup
}

func NewPool(numWorkers int, bufferSize int, processor ProcessFunc) *Pool {
	return &Pool{
		numWorkers: numWorkers,
		jobs:       make(chan models.Alert, bufferSize),
		processor:  processor,
	}
}

func (p *Pool) Start(ctx context.Context) {
	for i := 1; i <= p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker(ctx, i)
	}
}

func (p *Pool) worker(ctx context.Context, id int) {
	defer p.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case alert, ok := <-p.jobs:
			if !ok {
				return
			}
			if err := p.processor(ctx, alert); err != nil {
				slog.Error("alert processing failed", "worker", id, "type", alert.Type, "error", err)
			}
		}
	}
}

func (p *Pool) Submit(alert models.Alert) {
	p.jobs <- alert
}

func (p *Pool) Stop() {
	close(p.jobs)
	p.wg.Wait()
}
