package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/r2ready/internal/model"
)

func strategyInputs() Inputs {
	w3 := 3.0
	return Inputs{
		Questions: []model.Question{
			{ID: "a-1", Category: "A", OrderIndex: 1},
			{ID: "a-2", Category: "A", OrderIndex: 2, WeightOverride: &w3},
			{ID: "b-1", Category: "B", OrderIndex: 1},
		},
		Applicable: []string{"a-1", "a-2", "b-1"},
		Answers: map[string]model.AnswerValue{
			"a-1": model.AnswerYes,
			"a-2": model.AnswerNo,
			"b-1": model.AnswerPartial,
		},
		Config: model.ScoringConfig{
			Version:         4,
			CategoryWeights: map[string]float64{"A": 80, "B": 20},
			Thresholds:      model.Thresholds{High: 85, Mid: 65, Low: 45},
			NAHandling:      model.NAExclude,
		},
	}
}

func TestConfigurableStrategy(t *testing.T) {
	out, err := ConfigurableStrategy{}.Score(strategyInputs())
	require.NoError(t, err)

	// A: (1*1 + 3*0)/4 = 25. B: 50.
	assert.InDelta(t, 25.0, out.CategoryScores["A"], 0.01)
	assert.InDelta(t, 50.0, out.CategoryScores["B"], 0.01)
	// Overall: (80*25 + 20*50)/100 = 30.
	assert.InDelta(t, 30.0, out.Overall, 0.01)
	assert.Equal(t, 4, out.ConfigVersion)
	assert.Equal(t, model.Thresholds{High: 85, Mid: 65, Low: 45}, out.Thresholds)
}

func TestConfigurableStrategyRejectsInvalidConfig(t *testing.T) {
	in := strategyInputs()
	in.Config.CategoryWeights = map[string]float64{"A": 10}
	_, err := ConfigurableStrategy{}.Score(in)
	assert.Error(t, err)
}

func TestLegacyStrategy(t *testing.T) {
	out, err := LegacyStrategy{}.Score(strategyInputs())
	require.NoError(t, err)

	// Unit weights: A = (1+0)/2 = 50. B = 50.
	assert.InDelta(t, 50.0, out.CategoryScores["A"], 0.01)
	assert.InDelta(t, 50.0, out.CategoryScores["B"], 0.01)
	// Equal category weights.
	assert.InDelta(t, 50.0, out.Overall, 0.01)
	// Frozen legacy markers.
	assert.Equal(t, 0, out.ConfigVersion)
	assert.Equal(t, model.Thresholds{High: 80, Mid: 60, Low: 40}, out.Thresholds)
}

func TestStrategiesShareResultShape(t *testing.T) {
	in := strategyInputs()

	for _, s := range []Strategy{ConfigurableStrategy{}, LegacyStrategy{}} {
		out, err := s.Score(in)
		require.NoError(t, err, s.Name())
		assert.NotEmpty(t, out.CategoryScores, s.Name())
		assert.GreaterOrEqual(t, out.Overall, 0.0, s.Name())
		assert.LessOrEqual(t, out.Overall, 100.0, s.Name())
	}
}

func TestStrategyByName(t *testing.T) {
	s, err := StrategyByName("")
	require.NoError(t, err)
	assert.Equal(t, "configurable", s.Name())

	s, err = StrategyByName("configurable")
	require.NoError(t, err)
	assert.Equal(t, "configurable", s.Name())

	s, err = StrategyByName("legacy")
	require.NoError(t, err)
	assert.Equal(t, "legacy", s.Name())

	_, err = StrategyByName("experimental")
	assert.Error(t, err)
}
