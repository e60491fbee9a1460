package model

import "time"

// ReadinessLevel is the coarse certification-preparedness tier.
type ReadinessLevel string

const (
	CertificationReady ReadinessLevel = "CERTIFICATION_READY"
	MinorGaps          ReadinessLevel = "MINOR_GAPS"
	SignificantGaps    ReadinessLevel = "SIGNIFICANT_GAPS"
	MajorWorkRequired  ReadinessLevel = "MAJOR_WORK_REQUIRED"
)

// RuleFailure names one failed must-pass rule with the specific answers
// that failed it. Failures are always reported individually so remediation
// is actionable, never collapsed into a generic low-score message.
type RuleFailure struct {
	RuleID             string   `json:"rule_id"`
	RuleName           string   `json:"rule_name"`
	FailingQuestionIDs []string `json:"failing_question_ids"`
}

// ComputationWarning records a sub-engine that degraded during a recompute
// pass. Warnings ride on the result; they never abort the pass.
type ComputationWarning struct {
	Engine string `json:"engine"`
	Reason string `json:"reason"`
}

// Assessment is one self-assessment in progress for a facility.
type Assessment struct {
	ID             string    `json:"id"`
	FacilityID     string    `json:"facility_id"`
	ProfileVersion int       `json:"profile_version"`
	CreatedAt      time.Time `json:"created_at"`
}

// AssessmentScoreResult is the combined output of one recompute pass. It is
// an overwritten cache keyed by assessment, never the source of truth: the
// answers and catalogs it was computed from are.
type AssessmentScoreResult struct {
	AssessmentID           string               `json:"assessment_id"`
	CategoryScores         map[string]float64   `json:"category_scores"`
	OverallScorePercentage float64              `json:"overall_score_percentage"`
	Readiness              ReadinessLevel       `json:"readiness"`
	CriticalBlockers       []RuleFailure        `json:"critical_blockers"`
	CriticalBlockersCount  int                  `json:"critical_blockers_count"`
	UnresolvedRuleIDs      []string             `json:"unresolved_rule_ids,omitempty"`
	Warnings               []ComputationWarning `json:"warnings,omitempty"`
	ConfigVersion          int                  `json:"config_version"`
	Strategy               string               `json:"strategy"`
	InputHash              string               `json:"input_hash"`
	ComputedAt             time.Time            `json:"computed_at"`
}

// MaturityScore is one append-only operational-maturity record. Each
// record references its predecessor so trend and delta reporting can walk
// the history without timestamps.
type MaturityScore struct {
	ID              string             `json:"id"`
	AssessmentID    string             `json:"assessment_id"`
	DimensionScores map[string]float64 `json:"dimension_scores"`
	Overall         float64            `json:"overall"`
	PrevID          string             `json:"prev_id,omitempty"`
	ComputedAt      time.Time          `json:"computed_at"`
}

// Delta returns the per-dimension change from an earlier record. Dimensions
// absent from prev count their full value as the change.
func (m MaturityScore) Delta(prev *MaturityScore) map[string]float64 {
	out := make(map[string]float64, len(m.DimensionScores))
	for dim, v := range m.DimensionScores {
		if prev != nil {
			out[dim] = v - prev.DimensionScores[dim]
		} else {
			out[dim] = v
		}
	}
	return out
}
