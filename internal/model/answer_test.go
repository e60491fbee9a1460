package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAnswerValue(t *testing.T) {
	tests := []struct {
		in   string
		want AnswerValue
	}{
		{"yes", AnswerYes},
		{"YES", AnswerYes},
		{"y", AnswerYes},
		{"Partial", AnswerPartial},
		{"no", AnswerNo},
		{"N", AnswerNo},
		{"n/a", AnswerNA},
		{"NA", AnswerNA},
		{"not applicable", AnswerNA},
		{"  yes  ", AnswerYes},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAnswerValue(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseAnswerValue("maybe")
	assert.Error(t, err)
}

func TestScoreValue(t *testing.T) {
	v, ok := AnswerYes.ScoreValue()
	assert.True(t, ok)
	assert.Equal(t, 1.0, v)

	v, ok = AnswerPartial.ScoreValue()
	assert.True(t, ok)
	assert.Equal(t, 0.5, v)

	v, ok = AnswerNo.ScoreValue()
	assert.True(t, ok)
	assert.Equal(t, 0.0, v)

	_, ok = AnswerNA.ScoreValue()
	assert.False(t, ok)
}

func TestQuestionWeight(t *testing.T) {
	assert.Equal(t, 1.0, Question{ID: "q1"}.Weight())

	w := 2.5
	assert.Equal(t, 2.5, Question{ID: "q1", WeightOverride: &w}.Weight())
}

func TestSortQuestionIDs(t *testing.T) {
	questions := []Question{
		{ID: "b-2", Category: "B", OrderIndex: 2},
		{ID: "a-2", Category: "A", OrderIndex: 2},
		{ID: "b-1", Category: "B", OrderIndex: 1},
		{ID: "a-1", Category: "A", OrderIndex: 1},
		{ID: "a-1b", Category: "A", OrderIndex: 1},
	}
	idx := NewQuestionIndex(questions)

	ids := []string{"b-2", "a-2", "b-1", "a-1b", "a-1"}
	SortQuestionIDs(ids, idx)
	assert.Equal(t, []string{"a-1", "a-1b", "a-2", "b-1", "b-2"}, ids)
}
