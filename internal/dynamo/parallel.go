package dynamo

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Job is one independent run in an ensemble.
type Job struct {
	System  System
	X0      State
	Config  Config
	Metrics func() []Metric
}

// Ensemble runs independent jobs concurrently. Runs share no state, so the
// only coordination is collecting results in job order.
type Ensemble struct {
	newIntegrator func() Integrator
	workers       int
}

func NewEnsemble(newIntegrator func() Integrator, workers int) *Ensemble {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Ensemble{newIntegrator: newIntegrator, workers: workers}
}

// Run executes every job and returns results indexed like jobs. The first
// failing job cancels the remaining ones.
func (e *Ensemble) Run(ctx context.Context, jobs []Job) ([]*Result, error) {
	results := make([]*Result, len(jobs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for i, job := range jobs {
		g.Go(func() error {
			s := New(job.System, e.newIntegrator())
			if job.Metrics != nil {
				for _, m := range job.Metrics() {
					s.AddMetric(m)
				}
			}

			res, err := s.Run(ctx, job.X0, job.Config)
			if err != nil {
				return err
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
