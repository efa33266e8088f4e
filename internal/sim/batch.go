package sim

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/san-kum/drivenpend/internal/dynamo"
	"github.com/san-kum/drivenpend/internal/forcing"
)

// Job is one independent run of a Batch.
type Job struct {
	Name   string
	Terms  []forcing.Term
	Config dynamo.Config
}

// Batch runs independent jobs concurrently. Each job gets its own
// Simulator and metric instances, so no state crosses runs.
type Batch struct {
	logger      *zap.Logger
	concurrency int
	newMetrics  func() []dynamo.Metric
}

func NewBatch(logger *zap.Logger, concurrency int) *Batch {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Batch{logger: logger, concurrency: concurrency}
}

// WithMetrics sets a factory called once per job.
func (b *Batch) WithMetrics(fn func() []dynamo.Metric) *Batch {
	b.newMetrics = fn
	return b
}

// Run returns results in job order. The first failing job cancels the rest.
func (b *Batch) Run(ctx context.Context, jobs []Job) ([]*Result, error) {
	results := make([]*Result, len(jobs))

	g, ctx := errgroup.WithContext(ctx)
	if b.concurrency > 0 {
		g.SetLimit(b.concurrency)
	}

	for i, job := range jobs {
		i, job := i, job
		g.Go(func() error {
			s := New(b.logger.With(zap.String("job", job.Name)))
			if b.newMetrics != nil {
				for _, m := range b.newMetrics() {
					s.AddMetric(m)
				}
			}

			res, err := s.Run(ctx, job.Terms, job.Config)
			if err != nil {
				return fmt.Errorf("job %q: %w", job.Name, err)
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
