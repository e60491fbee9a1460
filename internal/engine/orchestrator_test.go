package engine

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/r2ready/internal/catalog"
	"github.com/sells-group/r2ready/internal/model"
	"github.com/sells-group/r2ready/internal/scoring"
	"github.com/sells-group/r2ready/internal/store"
)

func engineSnapshot() *catalog.Snapshot {
	return &catalog.Snapshot{
		Questions: []model.Question{
			{ID: "q1", Text: "management system", Category: "A", OrderIndex: 1},
			{ID: "q2", Text: "legal compliance", Category: "A", OrderIndex: 2, IsMustPass: true, MustPassRuleID: "MP1"},
			{ID: "q3", Text: "hazardous handling", Category: "B", OrderIndex: 1},
			{ID: "mat-1", Text: "documented procedures", Category: "A", OrderIndex: 3,
				IsMaturityQuestion: true, MaturityCategory: "Documentation"},
		},
		Rules: []model.ConditionalRule{
			{
				ID:          "r-hazardous",
				Kind:        model.RuleInclude,
				When:        model.Predicate{Flag: "hazardous", Equals: model.FlagTrue},
				QuestionIDs: []string{"q3"},
			},
		},
		MustPassRules: []model.MustPassRule{
			{ID: "MP1", Name: "Legal gate", QuestionIDs: []string{"q2"}},
		},
		Scoring: model.ScoringConfig{
			Version:         2,
			CategoryWeights: map[string]float64{"A": 60, "B": 40},
			Thresholds:      model.Thresholds{High: 80, Mid: 60, Low: 40},
			NAHandling:      model.NAExclude,
		},
	}
}

// newFixture seeds a SQLite-backed store with one facility on a hazardous
// profile and returns an orchestrator over a fixed snapshot.
func newFixture(t *testing.T, snap *catalog.Snapshot) (*store.SQLiteStore, *Orchestrator, string) {
	t.Helper()
	ctx := context.Background()

	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "engine.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.Migrate(ctx))

	require.NoError(t, st.PutProfile(ctx, model.FacilityProfile{
		FacilityID: "fac-1",
		Version:    1,
		Flags:      map[string]model.FlagValue{"hazardous": model.FlagTrue},
	}))
	a, err := st.CreateAssessment(ctx, "fac-1", 1)
	require.NoError(t, err)

	orch := New(st, func() (*catalog.Snapshot, error) { return snap, nil })
	return st, orch, a.ID
}

func answer(ctx context.Context, t *testing.T, st store.Store, assessmentID, questionID string, v model.AnswerValue) {
	t.Helper()
	require.NoError(t, st.UpsertAnswer(ctx, model.Answer{
		AssessmentID: assessmentID,
		QuestionID:   questionID,
		Value:        v,
		Active:       true,
		UpdatedAt:    time.Now().UTC(),
	}))
}

func TestRecomputeFullPass(t *testing.T) {
	ctx := context.Background()
	st, orch, id := newFixture(t, engineSnapshot())

	answer(ctx, t, st, id, "q1", model.AnswerYes)
	answer(ctx, t, st, id, "q2", model.AnswerNo)
	answer(ctx, t, st, id, "q3", model.AnswerYes)
	answer(ctx, t, st, id, "mat-1", model.AnswerPartial)

	result, err := orch.Recompute(ctx, id, scoring.ConfigurableStrategy{})
	require.NoError(t, err)

	// A: Yes + No over unit weights = 50. B: Yes = 100. Overall 0.6*50+0.4*100.
	assert.InDelta(t, 50.0, result.CategoryScores["A"], 1e-9)
	assert.InDelta(t, 100.0, result.CategoryScores["B"], 1e-9)
	assert.InDelta(t, 70.0, result.OverallScorePercentage, 1e-9)

	// The failed gate caps readiness below the score tier.
	require.Len(t, result.CriticalBlockers, 1)
	assert.Equal(t, "MP1", result.CriticalBlockers[0].RuleID)
	assert.Equal(t, []string{"q2"}, result.CriticalBlockers[0].FailingQuestionIDs)
	assert.Equal(t, model.SignificantGaps, result.Readiness)

	assert.Equal(t, 2, result.ConfigVersion)
	assert.Equal(t, "configurable", result.Strategy)
	assert.Len(t, result.InputHash, 32)
	assert.Empty(t, result.Warnings)

	// Persisted in the score cache.
	cached, err := st.GetScoreResult(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, result.InputHash, cached.InputHash)

	// Maturity recorded alongside.
	mat, err := st.LatestMaturityScore(ctx, id)
	require.NoError(t, err)
	assert.InDelta(t, 50.0, mat.DimensionScores["Documentation"], 1e-9)
	assert.Empty(t, mat.PrevID)
}

func TestRecomputeIdempotent(t *testing.T) {
	ctx := context.Background()
	st, orch, id := newFixture(t, engineSnapshot())
	answer(ctx, t, st, id, "q1", model.AnswerYes)
	answer(ctx, t, st, id, "mat-1", model.AnswerYes)

	first, err := orch.Recompute(ctx, id, scoring.ConfigurableStrategy{})
	require.NoError(t, err)
	second, err := orch.Recompute(ctx, id, scoring.ConfigurableStrategy{})
	require.NoError(t, err)

	assert.Equal(t, first.InputHash, second.InputHash)
	assert.Equal(t, first.OverallScorePercentage, second.OverallScorePercentage)
	assert.Equal(t, first.Readiness, second.Readiness)

	// An answer change changes the fingerprint.
	answer(ctx, t, st, id, "q2", model.AnswerYes)
	third, err := orch.Recompute(ctx, id, scoring.ConfigurableStrategy{})
	require.NoError(t, err)
	assert.NotEqual(t, first.InputHash, third.InputHash)

	// Maturity history chains through PrevID.
	history, err := st.ListMaturityScores(ctx, id)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Empty(t, history[0].PrevID)
	assert.Equal(t, history[0].ID, history[1].PrevID)
	assert.Equal(t, history[1].ID, history[2].PrevID)
}

func TestRecomputeReconcilesAnswerActivity(t *testing.T) {
	ctx := context.Background()
	st, orch, id := newFixture(t, engineSnapshot())

	answer(ctx, t, st, id, "q1", model.AnswerYes)
	answer(ctx, t, st, id, "q2", model.AnswerYes)
	answer(ctx, t, st, id, "q3", model.AnswerNo)
	answer(ctx, t, st, id, "mat-1", model.AnswerYes)

	_, err := orch.Recompute(ctx, id, scoring.ConfigurableStrategy{})
	require.NoError(t, err)

	// The facility stops handling hazardous material: q3 leaves the set.
	require.NoError(t, st.PutProfile(ctx, model.FacilityProfile{
		FacilityID: "fac-1",
		Version:    2,
		Flags:      map[string]model.FlagValue{"hazardous": model.FlagFalse},
	}))
	require.NoError(t, st.SetAssessmentProfileVersion(ctx, id, 2))

	result, err := orch.Recompute(ctx, id, scoring.ConfigurableStrategy{})
	require.NoError(t, err)

	// The q3 answer survives on record, inactive, and no longer drags the
	// score. Category B has nothing applicable, so the overall renormalizes
	// to category A alone.
	answers, err := st.ListAnswers(ctx, id)
	require.NoError(t, err)
	for _, a := range answers {
		if a.QuestionID == "q3" {
			assert.False(t, a.Active)
		} else {
			assert.True(t, a.Active)
		}
	}
	assert.NotContains(t, result.CategoryScores, "B")
	assert.InDelta(t, 100.0, result.OverallScorePercentage, 1e-9)
	assert.Equal(t, model.CertificationReady, result.Readiness)

	// Flipping the flag back reactivates the answer.
	require.NoError(t, st.SetAssessmentProfileVersion(ctx, id, 1))
	_, err = orch.Recompute(ctx, id, scoring.ConfigurableStrategy{})
	require.NoError(t, err)

	answers, err = st.ListAnswers(ctx, id)
	require.NoError(t, err)
	for _, a := range answers {
		assert.True(t, a.Active, a.QuestionID)
	}
}

func TestRecomputeMaturityFailureDegradesToWarning(t *testing.T) {
	ctx := context.Background()
	snap := engineSnapshot()
	// No maturity questions at all: the maturity engine cannot produce a
	// record, but the compliance pass must still land.
	snap.Questions = snap.Questions[:3]

	st, orch, id := newFixture(t, snap)
	answer(ctx, t, st, id, "q1", model.AnswerYes)
	answer(ctx, t, st, id, "q2", model.AnswerYes)
	answer(ctx, t, st, id, "q3", model.AnswerYes)

	result, err := orch.Recompute(ctx, id, scoring.ConfigurableStrategy{})
	require.NoError(t, err)

	require.Len(t, result.Warnings, 1)
	assert.Equal(t, "maturity", result.Warnings[0].Engine)
	assert.InDelta(t, 100.0, result.OverallScorePercentage, 1e-9)

	cached, err := st.GetScoreResult(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.CertificationReady, cached.Readiness)

	_, err = st.LatestMaturityScore(ctx, id)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestRecomputeUnknownAssessment(t *testing.T) {
	_, orch, _ := newFixture(t, engineSnapshot())
	_, err := orch.Recompute(context.Background(), "missing", scoring.ConfigurableStrategy{})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestRecomputeStrategiesShareResultShape(t *testing.T) {
	ctx := context.Background()
	st, orch, id := newFixture(t, engineSnapshot())
	answer(ctx, t, st, id, "q1", model.AnswerYes)
	answer(ctx, t, st, id, "q3", model.AnswerYes)
	answer(ctx, t, st, id, "mat-1", model.AnswerYes)

	configurable, err := orch.Recompute(ctx, id, scoring.ConfigurableStrategy{})
	require.NoError(t, err)
	legacy, err := orch.Recompute(ctx, id, scoring.LegacyStrategy{})
	require.NoError(t, err)

	assert.Equal(t, "legacy", legacy.Strategy)
	assert.Equal(t, 0, legacy.ConfigVersion)
	assert.NotEqual(t, configurable.InputHash, legacy.InputHash)

	// Both carry the full shape: category scores, blockers, readiness.
	assert.NotEmpty(t, legacy.CategoryScores)
	assert.NotNil(t, legacy.CriticalBlockers)
	assert.NotEmpty(t, legacy.Readiness)
}

func TestGetCriticalBlockers(t *testing.T) {
	ctx := context.Background()
	st, orch, id := newFixture(t, engineSnapshot())

	// Unanswered gate question: unresolved, not a blocker.
	blockers, err := orch.GetCriticalBlockers(ctx, id)
	require.NoError(t, err)
	assert.NotNil(t, blockers)
	assert.Empty(t, blockers)

	answer(ctx, t, st, id, "q2", model.AnswerNo)
	blockers, err = orch.GetCriticalBlockers(ctx, id)
	require.NoError(t, err)
	require.Len(t, blockers, 1)
	assert.Equal(t, "MP1", blockers[0].RuleID)

	// Gates alone never touch the score cache.
	_, err = st.GetScoreResult(ctx, id)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestEvaluateApplicableQuestions(t *testing.T) {
	_, orch, _ := newFixture(t, engineSnapshot())

	got, err := orch.EvaluateApplicableQuestions(model.FacilityProfile{
		Flags: map[string]model.FlagValue{"hazardous": model.FlagFalse},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"q1", "q2", "mat-1"}, got)

	got, err = orch.EvaluateApplicableQuestions(model.FacilityProfile{
		Flags: map[string]model.FlagValue{"hazardous": model.FlagTrue},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"q1", "q2", "mat-1", "q3"}, got)
}

func TestRecomputeAll(t *testing.T) {
	ctx := context.Background()
	st, orch, first := newFixture(t, engineSnapshot())

	second, err := st.CreateAssessment(ctx, "fac-1", 1)
	require.NoError(t, err)
	answer(ctx, t, st, first, "q1", model.AnswerYes)
	answer(ctx, t, st, first, "mat-1", model.AnswerYes)
	answer(ctx, t, st, second.ID, "q1", model.AnswerNo)
	answer(ctx, t, st, second.ID, "mat-1", model.AnswerNo)

	err = orch.RecomputeAll(ctx, []string{first, second.ID}, scoring.ConfigurableStrategy{}, 2)
	require.NoError(t, err)

	for _, id := range []string{first, second.ID} {
		_, err := st.GetScoreResult(ctx, id)
		assert.NoError(t, err, id)
	}

	err = orch.RecomputeAll(ctx, []string{first, "missing"}, scoring.ConfigurableStrategy{}, 2)
	assert.ErrorIs(t, err, store.ErrNotFound)
}
