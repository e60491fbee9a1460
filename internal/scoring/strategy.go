package scoring

import (
	"github.com/rotisserie/eris"

	"github.com/sells-group/r2ready/internal/model"
)

// Inputs is everything a strategy needs for one scoring pass: an immutable
// snapshot taken at pass start.
type Inputs struct {
	Questions  []model.Question
	Applicable []string
	Answers    map[string]model.AnswerValue
	Config     model.ScoringConfig
}

// Outcome is the strategy-independent result shape. Legacy and
// configurable strategies must both produce it so callers never care which
// path ran.
type Outcome struct {
	CategoryScores map[string]float64
	Overall        float64
	Thresholds     model.Thresholds
	ConfigVersion  int
}

// Strategy computes category and overall scores from a pass snapshot. The
// active strategy is an explicit argument to the orchestrator per call,
// never ambient global state toggled by a feature flag.
type Strategy interface {
	Name() string
	Score(in Inputs) (Outcome, error)
}

// ConfigurableStrategy scores with the versioned scoring config: authored
// category weights, per-question weight overrides, configured thresholds
// and N/A policy.
type ConfigurableStrategy struct{}

func (ConfigurableStrategy) Name() string { return "configurable" }

func (ConfigurableStrategy) Score(in Inputs) (Outcome, error) {
	if err := in.Config.Validate(); err != nil {
		return Outcome{}, eris.Wrap(err, "scoring: configurable strategy")
	}
	cat, overall := ComputeCompliance(in.Questions, in.Applicable, in.Answers, in.Config)
	return Outcome{
		CategoryScores: cat,
		Overall:        overall,
		Thresholds:     in.Config.Thresholds,
		ConfigVersion:  in.Config.Version,
	}, nil
}

// Legacy scoring constants, frozen for assessments still on the old path.
var legacyThresholds = model.Thresholds{High: 80, Mid: 60, Low: 40}

// LegacyStrategy reproduces the original fixed scoring behavior: every
// category weighted equally, every question at unit weight (overrides
// ignored), N/A excluded, thresholds 80/60/40. It reads the same question
// and answer data as the configurable path.
type LegacyStrategy struct{}

func (LegacyStrategy) Name() string { return "legacy" }

func (LegacyStrategy) Score(in Inputs) (Outcome, error) {
	// Equal weight per category actually present in the catalog.
	cats := make(map[string]bool)
	for _, q := range in.Questions {
		if !q.IsMaturityQuestion {
			cats[q.Category] = true
		}
	}
	if len(cats) == 0 {
		return Outcome{}, eris.New("scoring: legacy strategy: catalog has no scorable questions")
	}
	weights := make(map[string]float64, len(cats))
	for c := range cats {
		weights[c] = 100.0 / float64(len(cats))
	}

	cat, overall := compute(in.Questions, in.Applicable, in.Answers, weights, model.NAExclude,
		func(model.Question) float64 { return 1.0 },
		func(q model.Question) (string, bool) {
			if q.IsMaturityQuestion {
				return "", false
			}
			return q.Category, true
		})

	return Outcome{
		CategoryScores: cat,
		Overall:        overall,
		Thresholds:     legacyThresholds,
		ConfigVersion:  0,
	}, nil
}

// StrategyByName resolves a strategy from its config/flag name.
func StrategyByName(name string) (Strategy, error) {
	switch name {
	case "", "configurable":
		return ConfigurableStrategy{}, nil
	case "legacy":
		return LegacyStrategy{}, nil
	}
	return nil, eris.Errorf("scoring: unknown strategy %q", name)
}
