package scoring

import "github.com/sells-group/r2ready/internal/model"

// Classify maps an overall score and critical-blocker count to a readiness
// tier. Pure function of its inputs.
//
// Any nonzero blocker count caps the result at SIGNIFICANT_GAPS no matter
// how high the numeric score is; this is why the gate engine runs as a
// separate pass instead of being folded into the weighted score. A score
// under the low threshold is MAJOR_WORK_REQUIRED regardless of blockers.
func Classify(overallPct float64, blockers int, t model.Thresholds) model.ReadinessLevel {
	switch {
	case overallPct < t.Low:
		return model.MajorWorkRequired
	case blockers > 0:
		return model.SignificantGaps
	case overallPct >= t.High:
		return model.CertificationReady
	case overallPct >= t.Mid:
		return model.MinorGaps
	default:
		return model.SignificantGaps
	}
}
