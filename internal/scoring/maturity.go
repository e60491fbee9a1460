package scoring

import (
	"github.com/rotisserie/eris"

	"github.com/sells-group/r2ready/internal/model"
)

// ComputeMaturity scores the operational-maturity dimensions: the same
// weighted-average mechanics as the compliance score, restricted to
// questions flagged as maturity questions and grouped by maturity
// category. The result is tracked entirely apart from the compliance
// score and never merged into it.
//
// Returns an error when the applicable set contains no maturity questions;
// the orchestrator degrades that to a warning on the result rather than
// failing the pass.
func ComputeMaturity(questions []model.Question, applicable []string, answers map[string]model.AnswerValue, na model.NAHandling) (map[string]float64, float64, error) {
	// Dimensions are equally weighted against each other; discover them
	// from the applicable maturity questions.
	idx := model.NewQuestionIndex(questions)
	dimWeights := make(map[string]float64)
	for _, qid := range applicable {
		if q, ok := idx.Get(qid); ok && q.IsMaturityQuestion {
			dimWeights[q.MaturityCategory] = 1
		}
	}
	if len(dimWeights) == 0 {
		return nil, 0, eris.New("scoring: no applicable maturity questions")
	}

	scores, overall := compute(questions, applicable, answers, dimWeights, na,
		func(q model.Question) float64 { return q.Weight() },
		func(q model.Question) (string, bool) {
			if !q.IsMaturityQuestion {
				return "", false
			}
			return q.MaturityCategory, true
		})
	return scores, overall, nil
}
