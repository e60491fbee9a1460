package model

import (
	"fmt"
	"math"
	"strings"

	"github.com/rotisserie/eris"
)

// NAHandling controls how an "N/A" answer affects a category denominator.
type NAHandling string

const (
	// NAExclude removes the question's weight from the denominator, so an
	// N/A answer and a rule-excluded question are indistinguishable to the
	// score.
	NAExclude NAHandling = "EXCLUDE"
	// NAIncludeAsZero keeps the weight in the denominator with a zero
	// numerator contribution.
	NAIncludeAsZero NAHandling = "INCLUDE_AS_ZERO"
)

// Thresholds are the readiness classification cutoffs, as percentages.
type Thresholds struct {
	High float64 `json:"high" yaml:"high"`
	Mid  float64 `json:"mid" yaml:"mid"`
	Low  float64 `json:"low" yaml:"low"`
}

// ScoringConfig is one versioned scoring configuration. Configs are never
// mutated in place: a new version is authored and activated, and passes
// already persisted against a prior version are never retroactively
// altered.
type ScoringConfig struct {
	Version         int                `json:"version" yaml:"version"`
	CategoryWeights map[string]float64 `json:"category_weights" yaml:"category_weights"`
	Thresholds      Thresholds         `json:"thresholds" yaml:"thresholds"`
	NAHandling      NAHandling         `json:"na_handling" yaml:"na_handling"`
}

// weightSumTolerance absorbs float noise when checking the sum-to-100
// invariant.
const weightSumTolerance = 1e-6

// Validate checks the config invariants: category weights sum to exactly
// 100, thresholds are ordered within [0,100], and the N/A policy is one of
// the two known values.
func (c ScoringConfig) Validate() error {
	var errs []string

	sum := 0.0
	for cat, w := range c.CategoryWeights {
		if w < 0 {
			errs = append(errs, fmt.Sprintf("category %q has negative weight", cat))
		}
		sum += w
	}
	if len(c.CategoryWeights) == 0 {
		errs = append(errs, "no category weights defined")
	} else if math.Abs(sum-100) > weightSumTolerance {
		errs = append(errs, fmt.Sprintf("category weights must sum to 100, got %.4f", sum))
	}

	t := c.Thresholds
	if t.Low < 0 || t.High > 100 || !(t.Low <= t.Mid && t.Mid <= t.High) {
		errs = append(errs, fmt.Sprintf("thresholds must satisfy 0 <= low <= mid <= high <= 100, got %+v", t))
	}

	switch c.NAHandling {
	case NAExclude, NAIncludeAsZero:
	default:
		errs = append(errs, fmt.Sprintf("unknown na_handling %q", c.NAHandling))
	}

	if len(errs) > 0 {
		return eris.Errorf("model: scoring config v%d invalid: %s", c.Version, strings.Join(errs, "; "))
	}
	return nil
}
