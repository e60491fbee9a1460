// Package gate evaluates must-pass rules. Gates run as a separate pass
// from the weighted score on purpose: a failed gate caps readiness no
// matter how high the numeric score is, so folding gates into the score
// would lose exactly the signal they exist to carry.
package gate

import (
	"sort"

	"go.uber.org/zap"

	"github.com/sells-group/r2ready/internal/model"
)

// Result is the outcome of one gate evaluation pass.
type Result struct {
	// Blockers lists every failed rule with the specific failing answers.
	Blockers []model.RuleFailure `json:"blockers"`
	// Unresolved lists rules with at least one unanswered governing
	// question and no failing answer: neither passed nor failed yet.
	Unresolved []string `json:"unresolved,omitempty"`
	// Passed lists rules whose governing questions are all answered with
	// non-failing values.
	Passed []string `json:"passed,omitempty"`
}

// BlockersCount returns the number of failed rules.
func (r Result) BlockersCount() int {
	return len(r.Blockers)
}

// Evaluate checks every must-pass rule against the current answers.
//
// A rule considers only its governing questions that are in the applicable
// set. It fails iff any such answer equals the rule's failing value, or is
// Partial when the rule's tolerance says Partial fails. With no failing
// answer and at least one governing question unanswered, the rule is
// unresolved. A rule with no applicable governing questions is skipped
// entirely.
//
// Gate state is recomputed from scratch on every relevant answer change,
// never cached across passes.
func Evaluate(rules []model.MustPassRule, applicable []string, answers map[string]model.AnswerValue) Result {
	applicableSet := make(map[string]bool, len(applicable))
	for _, qid := range applicable {
		applicableSet[qid] = true
	}

	var res Result
	for _, rule := range rules {
		var (
			failing    []string
			unanswered int
			governed   int
		)
		for _, qid := range rule.QuestionIDs {
			if !applicableSet[qid] {
				continue
			}
			governed++

			v, ok := answers[qid]
			if !ok {
				unanswered++
				continue
			}
			if failsRule(rule, v) {
				failing = append(failing, qid)
			}
		}

		switch {
		case governed == 0:
			// Nothing applicable governs this rule for this facility.
		case len(failing) > 0:
			sort.Strings(failing)
			res.Blockers = append(res.Blockers, model.RuleFailure{
				RuleID:             rule.ID,
				RuleName:           rule.Name,
				FailingQuestionIDs: failing,
			})
		case unanswered > 0:
			res.Unresolved = append(res.Unresolved, rule.ID)
		default:
			res.Passed = append(res.Passed, rule.ID)
		}
	}

	if len(res.Blockers) > 0 {
		ids := make([]string, len(res.Blockers))
		for i, b := range res.Blockers {
			ids[i] = b.RuleID
		}
		zap.L().Debug("gate: critical blockers present", zap.Strings("rules", ids))
	}
	return res
}

func failsRule(rule model.MustPassRule, v model.AnswerValue) bool {
	if v == rule.Failing() {
		return true
	}
	return v == model.AnswerPartial && rule.PartialFails
}
