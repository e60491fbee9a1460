package model

import "sort"

// Question is one requirement question from the certification catalog.
// Catalog data is effectively immutable per catalog version.
type Question struct {
	ID                 string     `json:"id" yaml:"id"`
	Text               string     `json:"text" yaml:"text"`
	Category           string     `json:"category" yaml:"category"`
	Appendix           string     `json:"appendix,omitempty" yaml:"appendix,omitempty"`
	OrderIndex         int        `json:"order_index" yaml:"order_index"`
	Tags               []string   `json:"tags,omitempty" yaml:"tags,omitempty"`
	EvidenceRequired   bool       `json:"evidence_required,omitempty" yaml:"evidence_required,omitempty"`
	EvidenceRef        string     `json:"evidence_ref,omitempty" yaml:"evidence_ref,omitempty"`
	IsMustPass         bool       `json:"is_must_pass,omitempty" yaml:"is_must_pass,omitempty"`
	MustPassRuleID     string     `json:"must_pass_rule_id,omitempty" yaml:"must_pass_rule_id,omitempty"`
	ParentQuestionID   string     `json:"parent_question_id,omitempty" yaml:"parent_question_id,omitempty"`
	DisplayCondition   *Predicate `json:"display_condition,omitempty" yaml:"display_condition,omitempty"`
	IsMaturityQuestion bool       `json:"is_maturity_question,omitempty" yaml:"is_maturity_question,omitempty"`
	MaturityCategory   string     `json:"maturity_category,omitempty" yaml:"maturity_category,omitempty"`
	WeightOverride     *float64   `json:"weight_override,omitempty" yaml:"weight_override,omitempty"`
}

// Weight returns the question's weight within its category: the override
// when present, else 1.0.
func (q Question) Weight() float64 {
	if q.WeightOverride != nil {
		return *q.WeightOverride
	}
	return 1.0
}

// QuestionIndex provides id-based lookups over a question catalog.
type QuestionIndex struct {
	byID map[string]Question
}

// NewQuestionIndex builds an index over the given questions. Catalog
// validation rejects duplicate ids before an index is built from live
// config.
func NewQuestionIndex(questions []Question) *QuestionIndex {
	idx := &QuestionIndex{byID: make(map[string]Question, len(questions))}
	for _, q := range questions {
		idx.byID[q.ID] = q
	}
	return idx
}

// Get returns the question with the given id.
func (idx *QuestionIndex) Get(id string) (Question, bool) {
	q, ok := idx.byID[id]
	return q, ok
}

// SortQuestionIDs orders ids by (category, order index, id) using the given
// index. The ordering is total, so evaluation output is stable across runs.
func SortQuestionIDs(ids []string, idx *QuestionIndex) {
	sort.SliceStable(ids, func(i, j int) bool {
		a, _ := idx.Get(ids[i])
		b, _ := idx.Get(ids[j])
		if a.Category != b.Category {
			return a.Category < b.Category
		}
		if a.OrderIndex != b.OrderIndex {
			return a.OrderIndex < b.OrderIndex
		}
		return ids[i] < ids[j]
	})
}
