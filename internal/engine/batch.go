package engine

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/r2ready/internal/scoring"
)

// RecomputeAll runs passes for many assessments concurrently. Passes share
// no mutable state, so the only bound is the concurrency limit. The first
// failure cancels the remaining passes.
func (o *Orchestrator) RecomputeAll(ctx context.Context, assessmentIDs []string, strategy scoring.Strategy, concurrency int) error {
	if concurrency <= 0 {
		concurrency = 4
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for _, id := range assessmentIDs {
		g.Go(func() error {
			_, err := o.Recompute(gCtx, id, strategy)
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	zap.L().Info("engine: batch recompute complete",
		zap.Int("assessments", len(assessmentIDs)),
		zap.String("strategy", strategy.Name()),
	)
	return nil
}
