package engine

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/r2ready/internal/model"
	"github.com/sells-group/r2ready/internal/scoring"
)

// Scheduler coalesces recompute requests. Rapid successive answer edits on
// the same assessment collapse into one pass after the debounce interval;
// readers of the cached result tolerate a staleness window equal to that
// interval and never block on a recompute. A shared rate limiter bounds
// total recompute throughput under sustained edit storms.
type Scheduler struct {
	orch     *Orchestrator
	strategy scoring.Strategy
	interval time.Duration
	limiter  *rate.Limiter

	mu      sync.Mutex
	pending map[string]*time.Timer
	closed  bool
	wg      sync.WaitGroup
}

// NewScheduler creates a scheduler running passes under the given strategy.
// maxPerSecond bounds recompute throughput across all assessments; zero
// means unlimited.
func NewScheduler(orch *Orchestrator, strategy scoring.Strategy, interval time.Duration, maxPerSecond float64) *Scheduler {
	limiter := rate.NewLimiter(rate.Inf, 1)
	if maxPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(maxPerSecond), 1)
	}
	return &Scheduler{
		orch:     orch,
		strategy: strategy,
		interval: interval,
		limiter:  limiter,
		pending:  make(map[string]*time.Timer),
	}
}

// Request schedules a recompute for the assessment. Requests arriving
// while one is already pending are absorbed into it.
func (s *Scheduler) Request(ctx context.Context, assessmentID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if _, exists := s.pending[assessmentID]; exists {
		return
	}

	s.wg.Add(1)
	s.pending[assessmentID] = time.AfterFunc(s.interval, func() {
		defer s.wg.Done()

		s.mu.Lock()
		delete(s.pending, assessmentID)
		s.mu.Unlock()

		if err := s.limiter.Wait(ctx); err != nil {
			return
		}
		if _, err := s.orch.Recompute(ctx, assessmentID, s.strategy); err != nil {
			zap.L().Error("engine: scheduled recompute failed",
				zap.String("assessment_id", assessmentID),
				zap.Error(err),
			)
		}
	})
}

// Flush cancels any pending debounce for the assessment and recomputes it
// immediately.
func (s *Scheduler) Flush(ctx context.Context, assessmentID string) (*model.AssessmentScoreResult, error) {
	s.mu.Lock()
	if t, ok := s.pending[assessmentID]; ok {
		if t.Stop() {
			s.wg.Done()
		}
		delete(s.pending, assessmentID)
	}
	s.mu.Unlock()

	return s.orch.Recompute(ctx, assessmentID, s.strategy)
}

// Close cancels pending timers and waits for in-flight passes.
func (s *Scheduler) Close() {
	s.mu.Lock()
	s.closed = true
	for id, t := range s.pending {
		if t.Stop() {
			s.wg.Done()
		}
		delete(s.pending, id)
	}
	s.mu.Unlock()
	s.wg.Wait()
}
