package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() ScoringConfig {
	return ScoringConfig{
		Version:         1,
		CategoryWeights: map[string]float64{"A": 60, "B": 40},
		Thresholds:      Thresholds{High: 80, Mid: 60, Low: 40},
		NAHandling:      NAExclude,
	}
}

func TestScoringConfigValidate(t *testing.T) {
	assert.NoError(t, validConfig().Validate())

	t.Run("weights must sum to 100", func(t *testing.T) {
		c := validConfig()
		c.CategoryWeights["B"] = 50
		err := c.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sum to 100")
	})

	t.Run("float noise within tolerance", func(t *testing.T) {
		c := validConfig()
		c.CategoryWeights = map[string]float64{"A": 33.333333, "B": 33.333333, "C": 33.333334}
		assert.NoError(t, c.Validate())
	})

	t.Run("negative weight", func(t *testing.T) {
		c := validConfig()
		c.CategoryWeights = map[string]float64{"A": 150, "B": -50}
		err := c.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "negative weight")
	})

	t.Run("no weights", func(t *testing.T) {
		c := validConfig()
		c.CategoryWeights = nil
		assert.Error(t, c.Validate())
	})

	t.Run("unordered thresholds", func(t *testing.T) {
		c := validConfig()
		c.Thresholds = Thresholds{High: 60, Mid: 80, Low: 40}
		err := c.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "thresholds")
	})

	t.Run("unknown na handling", func(t *testing.T) {
		c := validConfig()
		c.NAHandling = "DROP"
		err := c.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "na_handling")
	})
}

func TestMaturityScoreDelta(t *testing.T) {
	prev := &MaturityScore{DimensionScores: map[string]float64{"Documentation": 50, "Training": 70}}
	cur := MaturityScore{DimensionScores: map[string]float64{"Documentation": 60, "Training": 65, "Auditing": 40}}

	delta := cur.Delta(prev)
	assert.InDelta(t, 10, delta["Documentation"], 1e-9)
	assert.InDelta(t, -5, delta["Training"], 1e-9)
	assert.InDelta(t, 40, delta["Auditing"], 1e-9)

	first := cur.Delta(nil)
	assert.InDelta(t, 60, first["Documentation"], 1e-9)
}
