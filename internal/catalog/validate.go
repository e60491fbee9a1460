package catalog

import (
	"fmt"
	"strings"

	"github.com/sells-group/r2ready/internal/model"
)

// ConfigurationError reports every problem found in a catalog at load or
// activation time. Loading fails closed: a broken catalog blocks assessment
// creation instead of silently ignoring the broken rule.
type ConfigurationError struct {
	Issues []string
}

func (e *ConfigurationError) Error() string {
	return "catalog: invalid configuration: " + strings.Join(e.Issues, "; ")
}

// Validate checks cross-entity catalog invariants:
//
//   - question ids are unique; rule and must-pass targets reference known
//     questions
//   - rule and display-condition predicates are well-formed and reference
//     only flags declared in the intake schema
//   - parent links reference known questions and form no cycle
//   - the active scoring config is internally valid and its category
//     weights cover every question category
func Validate(snap *Snapshot) error {
	var issues []string

	flagSet := make(map[string]bool, len(snap.Flags))
	for _, f := range snap.Flags {
		flagSet[f.Name] = true
	}

	qids := make(map[string]bool, len(snap.Questions))
	for _, q := range snap.Questions {
		if qids[q.ID] {
			issues = append(issues, fmt.Sprintf("duplicate question id %q", q.ID))
		}
		qids[q.ID] = true
	}

	for _, q := range snap.Questions {
		if q.ParentQuestionID != "" && !qids[q.ParentQuestionID] {
			issues = append(issues, fmt.Sprintf("question %q parent %q does not exist", q.ID, q.ParentQuestionID))
		}
		if q.DisplayCondition != nil {
			issues = append(issues, predicateIssues(fmt.Sprintf("question %q display condition", q.ID), *q.DisplayCondition, flagSet)...)
		}
		if q.IsMaturityQuestion && q.MaturityCategory == "" {
			issues = append(issues, fmt.Sprintf("maturity question %q has no maturity category", q.ID))
		}
		if q.WeightOverride != nil && *q.WeightOverride < 0 {
			issues = append(issues, fmt.Sprintf("question %q has negative weight override", q.ID))
		}
	}

	issues = append(issues, parentCycleIssues(snap.Questions)...)

	ruleIDs := make(map[string]bool, len(snap.Rules))
	for _, r := range snap.Rules {
		if ruleIDs[r.ID] {
			issues = append(issues, fmt.Sprintf("duplicate rule id %q", r.ID))
		}
		ruleIDs[r.ID] = true

		if r.Kind != model.RuleInclude && r.Kind != model.RuleExclude {
			issues = append(issues, fmt.Sprintf("rule %q has unknown kind %q", r.ID, r.Kind))
		}
		if len(r.QuestionIDs) == 0 {
			issues = append(issues, fmt.Sprintf("rule %q targets no questions", r.ID))
		}
		for _, qid := range r.QuestionIDs {
			if !qids[qid] {
				issues = append(issues, fmt.Sprintf("rule %q targets unknown question %q", r.ID, qid))
			}
		}
		issues = append(issues, predicateIssues(fmt.Sprintf("rule %q", r.ID), r.When, flagSet)...)
	}

	mpIDs := make(map[string]bool, len(snap.MustPassRules))
	for _, r := range snap.MustPassRules {
		if mpIDs[r.ID] {
			issues = append(issues, fmt.Sprintf("duplicate must-pass rule id %q", r.ID))
		}
		mpIDs[r.ID] = true

		if len(r.QuestionIDs) == 0 {
			issues = append(issues, fmt.Sprintf("must-pass rule %q governs no questions", r.ID))
		}
		for _, qid := range r.QuestionIDs {
			if !qids[qid] {
				issues = append(issues, fmt.Sprintf("must-pass rule %q governs unknown question %q", r.ID, qid))
			}
		}
	}
	for _, q := range snap.Questions {
		if q.MustPassRuleID != "" && !mpIDs[q.MustPassRuleID] {
			issues = append(issues, fmt.Sprintf("question %q references unknown must-pass rule %q", q.ID, q.MustPassRuleID))
		}
	}

	if err := snap.Scoring.Validate(); err != nil {
		issues = append(issues, err.Error())
	} else {
		for _, q := range snap.Questions {
			if q.IsMaturityQuestion {
				continue
			}
			if _, ok := snap.Scoring.CategoryWeights[q.Category]; !ok {
				issues = append(issues, fmt.Sprintf("category %q (question %q) has no weight in scoring config v%d", q.Category, q.ID, snap.Scoring.Version))
			}
		}
	}

	if len(issues) > 0 {
		return &ConfigurationError{Issues: dedupe(issues)}
	}
	return nil
}

func predicateIssues(where string, p model.Predicate, flags map[string]bool) []string {
	var issues []string
	if err := p.Validate(); err != nil {
		issues = append(issues, fmt.Sprintf("%s: %v", where, err))
	}
	for _, name := range p.Flags() {
		if !flags[name] {
			issues = append(issues, fmt.Sprintf("%s references unknown flag %q", where, name))
		}
	}
	return issues
}

// parentCycleIssues walks parent links and reports any cycle. Links into
// unknown questions are reported separately by Validate.
func parentCycleIssues(questions []model.Question) []string {
	parent := make(map[string]string, len(questions))
	for _, q := range questions {
		if q.ParentQuestionID != "" {
			parent[q.ID] = q.ParentQuestionID
		}
	}

	var issues []string
	const (
		visiting = 1
		done     = 2
	)
	state := make(map[string]int, len(parent))

	var visit func(id string) bool
	visit = func(id string) bool {
		switch state[id] {
		case visiting:
			return true
		case done:
			return false
		}
		state[id] = visiting
		cyclic := false
		if p, ok := parent[id]; ok {
			cyclic = visit(p)
		}
		state[id] = done
		return cyclic
	}

	for id := range parent {
		if state[id] == 0 && visit(id) {
			issues = append(issues, fmt.Sprintf("parent chain through question %q forms a cycle", id))
		}
	}
	return issues
}

func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	var out []string
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
