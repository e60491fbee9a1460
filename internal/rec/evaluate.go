// Package rec implements the Relevance/Exclusion/Conditional mapping that
// determines which catalog questions apply to a given facility profile.
package rec

import (
	"go.uber.org/zap"

	"github.com/sells-group/r2ready/internal/model"
)

// Evaluate computes the ordered, deduplicated applicable question set for a
// profile:
//
//  1. Baseline: every question not targeted by an include rule.
//  2. Include rules whose predicate holds add their targets; exclude rules
//     whose predicate holds remove theirs. Exclusion always wins when both
//     target the same question.
//  3. A child question is applicable only if its parent chain is applicable
//     and each parent's display condition holds against the profile.
//  4. Output is ordered by category, then declared order.
//
// Evaluation is deterministic: the same profile and catalog always produce
// the same set. Catalog-level validation (unknown flags, unknown question
// ids, parent cycles) happens at load time in the catalog package; Evaluate
// assumes a validated catalog.
func Evaluate(profile model.FacilityProfile, questions []model.Question, rules []model.ConditionalRule) []string {
	idx := model.NewQuestionIndex(questions)

	// Questions pulled in only by include rules are conditional; everything
	// else is core and applies unconditionally.
	conditional := make(map[string]bool)
	for _, r := range rules {
		if r.Kind == model.RuleInclude {
			for _, qid := range r.QuestionIDs {
				conditional[qid] = true
			}
		}
	}

	applicable := make(map[string]bool, len(questions))
	for _, q := range questions {
		if !conditional[q.ID] {
			applicable[q.ID] = true
		}
	}

	excluded := make(map[string]bool)
	for _, r := range rules {
		if !r.When.Eval(profile) {
			continue
		}
		switch r.Kind {
		case model.RuleInclude:
			for _, qid := range r.QuestionIDs {
				applicable[qid] = true
			}
		case model.RuleExclude:
			for _, qid := range r.QuestionIDs {
				excluded[qid] = true
			}
		}
	}

	// Deny-wins: exclusion beats inclusion for the same question.
	for qid := range excluded {
		delete(applicable, qid)
	}

	// Parent/child resolution. A child stands only on an applicable parent
	// whose display condition (evaluated against the profile, not a live
	// answer) holds. Applied repeatedly so grandchildren collapse when an
	// ancestor drops out.
	for changed := true; changed; {
		changed = false
		for qid := range applicable {
			q, ok := idx.Get(qid)
			if !ok || q.ParentQuestionID == "" {
				continue
			}
			if !parentHolds(q, idx, applicable, profile) {
				delete(applicable, qid)
				changed = true
			}
		}
	}

	out := make([]string, 0, len(applicable))
	for qid := range applicable {
		if _, ok := idx.Get(qid); ok {
			out = append(out, qid)
		}
	}
	model.SortQuestionIDs(out, idx)

	zap.L().Debug("rec: evaluated applicable set",
		zap.String("facility_id", profile.FacilityID),
		zap.Int("profile_version", profile.Version),
		zap.Int("applicable", len(out)),
		zap.Int("excluded", len(excluded)),
	)
	return out
}

func parentHolds(q model.Question, idx *model.QuestionIndex, applicable map[string]bool, profile model.FacilityProfile) bool {
	parent, ok := idx.Get(q.ParentQuestionID)
	if !ok {
		return false
	}
	if !applicable[parent.ID] {
		return false
	}
	if parent.DisplayCondition != nil && !parent.DisplayCondition.Eval(profile) {
		return false
	}
	return true
}

// Diff reports which previously applicable questions dropped out of the new
// set and which are newly applicable. The orchestrator uses the dropped set
// to mark answers inactive; answers are retained, never deleted.
func Diff(prev, next []string) (dropped, added []string) {
	prevSet := make(map[string]bool, len(prev))
	for _, id := range prev {
		prevSet[id] = true
	}
	nextSet := make(map[string]bool, len(next))
	for _, id := range next {
		nextSet[id] = true
	}
	for _, id := range prev {
		if !nextSet[id] {
			dropped = append(dropped, id)
		}
	}
	for _, id := range next {
		if !prevSet[id] {
			added = append(added, id)
		}
	}
	return dropped, added
}
