package model

// RuleKind distinguishes relevance rules from exclusion rules. When both
// kinds target the same question, exclusion wins.
type RuleKind string

const (
	RuleInclude RuleKind = "include"
	RuleExclude RuleKind = "exclude"
)

// ConditionalRule maps a facility-profile condition to a set of questions
// it pulls into, or pushes out of, the applicable set.
type ConditionalRule struct {
	ID          string    `json:"id" yaml:"id"`
	Name        string    `json:"name,omitempty" yaml:"name,omitempty"`
	Kind        RuleKind  `json:"kind" yaml:"kind"`
	When        Predicate `json:"when" yaml:"when"`
	QuestionIDs []string  `json:"question_ids" yaml:"question_ids"`
}

// MustPassRule is a requirement whose failure blocks top-tier readiness
// regardless of the numeric score. The rule fails iff any governing answer
// equals FailingValue; a "Partial" answer fails only when PartialFails is
// set on the rule.
type MustPassRule struct {
	ID           string      `json:"id" yaml:"id"`
	Name         string      `json:"name" yaml:"name"`
	QuestionIDs  []string    `json:"question_ids" yaml:"question_ids"`
	FailingValue AnswerValue `json:"failing_value,omitempty" yaml:"failing_value,omitempty"`
	PartialFails bool        `json:"partial_fails,omitempty" yaml:"partial_fails,omitempty"`
}

// Failing returns the configured failing answer value, defaulting to No.
func (r MustPassRule) Failing() AnswerValue {
	if r.FailingValue == "" {
		return AnswerNo
	}
	return r.FailingValue
}
