// Package scoring implements the weighted compliance score, the
// operational-maturity score, and the readiness classifier.
package scoring

import (
	"math"

	"github.com/sells-group/r2ready/internal/model"
)

// ComputeCompliance aggregates per-category and overall percentage scores
// over the applicable, non-maturity questions.
//
// Per category: numerator is Σ weight·scoreValue over answered questions,
// denominator is Σ weight over applicable questions. An N/A answer is
// dropped from both sides under NAExclude, making it indistinguishable
// from a rule-excluded question, or kept in the denominator at zero under
// NAIncludeAsZero. A category whose denominator is zero is omitted from
// the result entirely, never reported as 0 or 100.
//
// The overall percentage is the config-weighted average of the category
// scores, renormalized over the categories actually scored.
func ComputeCompliance(questions []model.Question, applicable []string, answers map[string]model.AnswerValue, cfg model.ScoringConfig) (map[string]float64, float64) {
	return compute(questions, applicable, answers, cfg.CategoryWeights, cfg.NAHandling,
		func(q model.Question) float64 { return q.Weight() },
		func(q model.Question) (string, bool) {
			if q.IsMaturityQuestion {
				return "", false
			}
			return q.Category, true
		})
}

// compute is the shared weighted-average core used by both the compliance
// and maturity engines. group selects the aggregation bucket for a
// question, or excludes it.
func compute(
	questions []model.Question,
	applicable []string,
	answers map[string]model.AnswerValue,
	groupWeights map[string]float64,
	na model.NAHandling,
	weight func(model.Question) float64,
	group func(model.Question) (string, bool),
) (map[string]float64, float64) {
	idx := model.NewQuestionIndex(questions)

	type acc struct{ num, den float64 }
	buckets := make(map[string]*acc)

	for _, qid := range applicable {
		q, ok := idx.Get(qid)
		if !ok {
			continue
		}
		g, ok := group(q)
		if !ok {
			continue
		}

		w := weight(q)
		b := buckets[g]
		if b == nil {
			b = &acc{}
			buckets[g] = b
		}

		v, answered := answers[qid]
		if answered {
			if sv, numeric := v.ScoreValue(); numeric {
				b.num += w * sv
				b.den += w
				continue
			}
			// N/A answer.
			if na == model.NAIncludeAsZero {
				b.den += w
			}
			continue
		}
		// Unanswered applicable questions count against the denominator.
		b.den += w
	}

	scores := make(map[string]float64, len(buckets))
	var weightedSum, weightTotal float64
	for g, b := range buckets {
		if b.den == 0 {
			// Zero applicable weight: the category is omitted, never
			// forced to an artificial 0 or 100.
			continue
		}
		score := clampPct(100 * b.num / b.den)
		scores[g] = score

		gw, ok := groupWeights[g]
		if !ok {
			// Unweighted group (validation prevents this for live configs;
			// legacy strategy supplies equal weights explicitly).
			continue
		}
		weightedSum += gw * score
		weightTotal += gw
	}

	overall := 0.0
	if weightTotal > 0 {
		overall = clampPct(weightedSum / weightTotal)
	}
	return scores, overall
}

func clampPct(v float64) float64 {
	return math.Min(100, math.Max(0, v))
}
