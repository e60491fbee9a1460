// Package engine orchestrates one coherent recompute pass: profile →
// applicable set → {critical gates, weighted score, maturity} → readiness →
// persisted result.
package engine

import (
	"context"
	"errors"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/r2ready/internal/catalog"
	"github.com/sells-group/r2ready/internal/gate"
	"github.com/sells-group/r2ready/internal/model"
	"github.com/sells-group/r2ready/internal/rec"
	"github.com/sells-group/r2ready/internal/scoring"
	"github.com/sells-group/r2ready/internal/store"
)

// SnapshotFunc returns the current validated catalog snapshot. It is
// called exactly once per pass; the returned snapshot is treated as
// immutable for the pass's duration, so catalog updates only affect passes
// started after them.
type SnapshotFunc func() (*catalog.Snapshot, error)

// Orchestrator runs recompute passes. Passes for different assessments
// share no mutable state and may run fully in parallel.
type Orchestrator struct {
	store    store.Store
	snapshot SnapshotFunc
	now      func() time.Time
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithClock overrides the time source (tests).
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// New creates an Orchestrator over the given store and catalog source.
func New(st store.Store, snapshot SnapshotFunc, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		store:    st,
		snapshot: snapshot,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// EvaluateApplicableQuestions computes the ordered applicable question set
// for a profile against the current catalog snapshot.
func (o *Orchestrator) EvaluateApplicableQuestions(profile model.FacilityProfile) ([]string, error) {
	snap, err := o.snapshot()
	if err != nil {
		return nil, eris.Wrap(err, "engine: catalog snapshot")
	}
	return rec.Evaluate(profile, snap.Questions, snap.Rules), nil
}

// Recompute runs one full pass for an assessment under the given strategy
// and persists the combined result. It is idempotent: identical inputs
// always produce an identical persisted result, timestamps aside.
//
// Sub-engine failures are isolated. A maturity failure is recorded as a
// warning on the result; the compliance score and readiness classification
// are still computed and persisted.
func (o *Orchestrator) Recompute(ctx context.Context, assessmentID string, strategy scoring.Strategy) (*model.AssessmentScoreResult, error) {
	start := o.now()

	assessment, err := o.store.GetAssessment(ctx, assessmentID)
	if err != nil {
		return nil, err
	}

	// All catalog reads happen here, once, as an immutable snapshot.
	snap, err := o.snapshot()
	if err != nil {
		return nil, eris.Wrap(err, "engine: catalog snapshot")
	}

	profile, err := o.store.GetProfile(ctx, assessment.FacilityID, assessment.ProfileVersion)
	if err != nil {
		return nil, err
	}

	applicable := rec.Evaluate(*profile, snap.Questions, snap.Rules)

	answers, err := o.store.ListAnswers(ctx, assessmentID)
	if err != nil {
		return nil, err
	}

	var warnings []model.ComputationWarning

	// Reconcile answer activity with the fresh applicable set: answers to
	// questions that dropped out stay on record, marked inactive.
	if err := o.reconcileActivity(ctx, assessmentID, applicable, answers); err != nil {
		warnings = append(warnings, model.ComputationWarning{
			Engine: "activity",
			Reason: err.Error(),
		})
	}

	applicableSet := make(map[string]bool, len(applicable))
	for _, qid := range applicable {
		applicableSet[qid] = true
	}
	answerMap := make(map[string]model.AnswerValue)
	for _, a := range answers {
		if applicableSet[a.QuestionID] {
			answerMap[a.QuestionID] = a.Value
		}
	}

	gateRes := gate.Evaluate(snap.MustPassRules, applicable, answerMap)

	outcome, err := strategy.Score(scoring.Inputs{
		Questions:  snap.Questions,
		Applicable: applicable,
		Answers:    answerMap,
		Config:     snap.Scoring,
	})
	if err != nil {
		return nil, eris.Wrapf(err, "engine: %s strategy", strategy.Name())
	}

	readiness := scoring.Classify(outcome.Overall, gateRes.BlockersCount(), outcome.Thresholds)

	if w := o.recordMaturity(ctx, assessmentID, snap, applicable, answerMap); w != nil {
		warnings = append(warnings, *w)
	}

	result := &model.AssessmentScoreResult{
		AssessmentID:           assessmentID,
		CategoryScores:         outcome.CategoryScores,
		OverallScorePercentage: outcome.Overall,
		Readiness:              readiness,
		CriticalBlockers:       gateRes.Blockers,
		CriticalBlockersCount:  gateRes.BlockersCount(),
		UnresolvedRuleIDs:      gateRes.Unresolved,
		Warnings:               warnings,
		ConfigVersion:          outcome.ConfigVersion,
		Strategy:               strategy.Name(),
		InputHash:              InputHash(*profile, applicable, answerMap, outcome.ConfigVersion, strategy.Name()),
		ComputedAt:             start,
	}
	if result.CriticalBlockers == nil {
		result.CriticalBlockers = []model.RuleFailure{}
	}

	if err := o.store.SaveScoreResult(ctx, result); err != nil {
		return nil, err
	}

	zap.L().Info("engine: recompute complete",
		zap.String("assessment_id", assessmentID),
		zap.String("strategy", strategy.Name()),
		zap.Float64("overall", result.OverallScorePercentage),
		zap.String("readiness", string(result.Readiness)),
		zap.Int("blockers", result.CriticalBlockersCount),
		zap.Int("warnings", len(result.Warnings)),
		zap.Duration("took", o.now().Sub(start)),
	)
	return result, nil
}

// GetCriticalBlockers evaluates only the must-pass gates for an
// assessment, without touching the score cache.
func (o *Orchestrator) GetCriticalBlockers(ctx context.Context, assessmentID string) ([]model.RuleFailure, error) {
	assessment, err := o.store.GetAssessment(ctx, assessmentID)
	if err != nil {
		return nil, err
	}
	snap, err := o.snapshot()
	if err != nil {
		return nil, eris.Wrap(err, "engine: catalog snapshot")
	}
	profile, err := o.store.GetProfile(ctx, assessment.FacilityID, assessment.ProfileVersion)
	if err != nil {
		return nil, err
	}

	applicable := rec.Evaluate(*profile, snap.Questions, snap.Rules)

	answers, err := o.store.ListAnswers(ctx, assessmentID)
	if err != nil {
		return nil, err
	}
	applicableSet := make(map[string]bool, len(applicable))
	for _, qid := range applicable {
		applicableSet[qid] = true
	}
	answerMap := make(map[string]model.AnswerValue)
	for _, a := range answers {
		if applicableSet[a.QuestionID] {
			answerMap[a.QuestionID] = a.Value
		}
	}

	res := gate.Evaluate(snap.MustPassRules, applicable, answerMap)
	if res.Blockers == nil {
		return []model.RuleFailure{}, nil
	}
	return res.Blockers, nil
}

// reconcileActivity marks answers inactive when their question left the
// applicable set, and reactivates them when it returned.
func (o *Orchestrator) reconcileActivity(ctx context.Context, assessmentID string, applicable []string, answers []model.Answer) error {
	applicableSet := make(map[string]bool, len(applicable))
	for _, qid := range applicable {
		applicableSet[qid] = true
	}

	var deactivate, reactivate []string
	for _, a := range answers {
		switch {
		case a.Active && !applicableSet[a.QuestionID]:
			deactivate = append(deactivate, a.QuestionID)
		case !a.Active && applicableSet[a.QuestionID]:
			reactivate = append(reactivate, a.QuestionID)
		}
	}

	if err := o.store.SetAnswersActive(ctx, assessmentID, deactivate, false); err != nil {
		return err
	}
	if err := o.store.SetAnswersActive(ctx, assessmentID, reactivate, true); err != nil {
		return err
	}
	if len(deactivate) > 0 || len(reactivate) > 0 {
		zap.L().Debug("engine: answer activity reconciled",
			zap.String("assessment_id", assessmentID),
			zap.Int("deactivated", len(deactivate)),
			zap.Int("reactivated", len(reactivate)),
		)
	}
	return nil
}

// recordMaturity computes and appends a maturity record, degrading any
// failure to a warning instead of aborting the pass.
func (o *Orchestrator) recordMaturity(ctx context.Context, assessmentID string, snap *catalog.Snapshot, applicable []string, answers map[string]model.AnswerValue) *model.ComputationWarning {
	dims, overall, err := scoring.ComputeMaturity(snap.Questions, applicable, answers, snap.Scoring.NAHandling)
	if err != nil {
		zap.L().Warn("engine: maturity engine degraded",
			zap.String("assessment_id", assessmentID),
			zap.Error(err),
		)
		return &model.ComputationWarning{Engine: "maturity", Reason: err.Error()}
	}

	var prevID string
	prev, err := o.store.LatestMaturityScore(ctx, assessmentID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return &model.ComputationWarning{Engine: "maturity", Reason: err.Error()}
	}
	if prev != nil {
		prevID = prev.ID
	}

	record := &model.MaturityScore{
		AssessmentID:    assessmentID,
		DimensionScores: dims,
		Overall:         overall,
		PrevID:          prevID,
		ComputedAt:      o.now(),
	}
	if err := o.store.AppendMaturityScore(ctx, record); err != nil {
		return &model.ComputationWarning{Engine: "maturity", Reason: err.Error()}
	}
	return nil
}
