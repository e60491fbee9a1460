package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/r2ready/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func TestSQLiteAssessmentLifecycle(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	a, err := s.CreateAssessment(ctx, "fac-1", 1)
	require.NoError(t, err)
	assert.NotEmpty(t, a.ID)

	got, err := s.GetAssessment(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "fac-1", got.FacilityID)
	assert.Equal(t, 1, got.ProfileVersion)

	require.NoError(t, s.SetAssessmentProfileVersion(ctx, a.ID, 2))
	got, err = s.GetAssessment(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.ProfileVersion)

	_, err = s.GetAssessment(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	err = s.SetAssessmentProfileVersion(ctx, "missing", 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteProfiles(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	p := model.FacilityProfile{
		FacilityID: "fac-1",
		Version:    1,
		Flags: map[string]model.FlagValue{
			"hazardous":     model.FlagTrue,
			"facility_role": "processor",
			"brokering":     model.FlagUnknown,
		},
	}
	require.NoError(t, s.PutProfile(ctx, p))

	got, err := s.GetProfile(ctx, "fac-1", 1)
	require.NoError(t, err)
	assert.Equal(t, p.Flags, got.Flags)

	// Versions are immutable: same (facility, version) cannot be rewritten.
	assert.Error(t, s.PutProfile(ctx, p))

	// A new version coexists with the old one.
	p2 := p
	p2.Version = 2
	p2.Flags = map[string]model.FlagValue{"hazardous": model.FlagFalse}
	require.NoError(t, s.PutProfile(ctx, p2))

	got, err = s.GetProfile(ctx, "fac-1", 1)
	require.NoError(t, err)
	assert.Equal(t, model.FlagTrue, got.Flags["hazardous"])

	_, err = s.GetProfile(ctx, "fac-1", 9)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteAnswers(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	a, err := s.CreateAssessment(ctx, "fac-1", 1)
	require.NoError(t, err)

	now := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, s.UpsertAnswer(ctx, model.Answer{
		AssessmentID: a.ID, QuestionID: "q1", Value: model.AnswerYes, Active: true, UpdatedAt: now,
	}))
	require.NoError(t, s.UpsertAnswer(ctx, model.Answer{
		AssessmentID: a.ID, QuestionID: "q2", Value: model.AnswerNo, Active: true, UpdatedAt: now,
	}))

	// Upsert replaces, never duplicates.
	require.NoError(t, s.UpsertAnswer(ctx, model.Answer{
		AssessmentID: a.ID, QuestionID: "q1", Value: model.AnswerPartial, Active: true, UpdatedAt: now,
	}))

	answers, err := s.ListAnswers(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, answers, 2)
	assert.Equal(t, model.AnswerPartial, answers[0].Value)

	// Deactivate one, reactivate it later; the row survives throughout.
	require.NoError(t, s.SetAnswersActive(ctx, a.ID, []string{"q2"}, false))
	answers, err = s.ListAnswers(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, answers[0].Active)
	assert.False(t, answers[1].Active)

	require.NoError(t, s.SetAnswersActive(ctx, a.ID, []string{"q2"}, true))
	answers, err = s.ListAnswers(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, answers[1].Active)

	// Empty id list is a no-op.
	require.NoError(t, s.SetAnswersActive(ctx, a.ID, nil, false))
}

func TestSQLiteScoreResultCache(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	a, err := s.CreateAssessment(ctx, "fac-1", 1)
	require.NoError(t, err)

	_, err = s.GetScoreResult(ctx, a.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	r := &model.AssessmentScoreResult{
		AssessmentID:           a.ID,
		CategoryScores:         map[string]float64{"A": 75.5},
		OverallScorePercentage: 75.5,
		Readiness:              model.MinorGaps,
		CriticalBlockers:       []model.RuleFailure{},
		ConfigVersion:          2,
		Strategy:               "configurable",
		InputHash:              "abc123",
		ComputedAt:             time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, s.SaveScoreResult(ctx, r))

	got, err := s.GetScoreResult(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, r.OverallScorePercentage, got.OverallScorePercentage)
	assert.Equal(t, r.Readiness, got.Readiness)

	// The cache is overwritten, one row per assessment.
	r.OverallScorePercentage = 80
	r.InputHash = "def456"
	require.NoError(t, s.SaveScoreResult(ctx, r))

	got, err = s.GetScoreResult(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 80.0, got.OverallScorePercentage)
	assert.Equal(t, "def456", got.InputHash)
}

func TestSQLiteMaturityHistory(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	a, err := s.CreateAssessment(ctx, "fac-1", 1)
	require.NoError(t, err)

	_, err = s.LatestMaturityScore(ctx, a.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	base := time.Now().UTC().Truncate(time.Second)
	first := &model.MaturityScore{
		AssessmentID:    a.ID,
		DimensionScores: map[string]float64{"Documentation": 40},
		Overall:         40,
		ComputedAt:      base,
	}
	require.NoError(t, s.AppendMaturityScore(ctx, first))
	require.NotEmpty(t, first.ID)

	second := &model.MaturityScore{
		AssessmentID:    a.ID,
		DimensionScores: map[string]float64{"Documentation": 60},
		Overall:         60,
		PrevID:          first.ID,
		ComputedAt:      base.Add(time.Hour),
	}
	require.NoError(t, s.AppendMaturityScore(ctx, second))

	latest, err := s.LatestMaturityScore(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, second.ID, latest.ID)
	assert.Equal(t, first.ID, latest.PrevID)

	history, err := s.ListMaturityScores(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, first.ID, history[0].ID)
	assert.Equal(t, second.ID, history[1].ID)
}
