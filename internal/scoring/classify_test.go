package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/r2ready/internal/model"
)

func TestClassify(t *testing.T) {
	th := model.Thresholds{High: 80, Mid: 60, Low: 40}

	tests := []struct {
		name     string
		score    float64
		blockers int
		want     model.ReadinessLevel
	}{
		{"ready at high", 80, 0, model.CertificationReady},
		{"ready above high", 95, 0, model.CertificationReady},
		{"minor gaps at mid", 60, 0, model.MinorGaps},
		{"minor gaps below high", 79.9, 0, model.MinorGaps},
		{"significant gaps below mid", 59.9, 0, model.SignificantGaps},
		{"significant gaps at low", 40, 0, model.SignificantGaps},
		{"major work below low", 39.9, 0, model.MajorWorkRequired},
		{"major work at zero", 0, 0, model.MajorWorkRequired},
		{"blocker caps high score", 92, 1, model.SignificantGaps},
		{"blocker caps perfect score", 100, 3, model.SignificantGaps},
		{"blocker on mid score", 70, 1, model.SignificantGaps},
		{"low score stays major work despite blockers", 20, 2, model.MajorWorkRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.score, tt.blockers, th))
		})
	}
}

func TestClassifyCustomThresholds(t *testing.T) {
	th := model.Thresholds{High: 85, Mid: 65, Low: 50}

	assert.Equal(t, model.MinorGaps, Classify(80, 0, th))
	assert.Equal(t, model.CertificationReady, Classify(85, 0, th))
	assert.Equal(t, model.MajorWorkRequired, Classify(49.9, 0, th))
}
