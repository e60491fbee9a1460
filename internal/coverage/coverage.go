// Package coverage reports how well the question catalog covers the
// certification requirements: the ten core requirements (CR1..CR10) and
// process appendices A through G. Auditors use the report to spot
// requirements no question maps to, and questions that demand evidence but
// reference none.
package coverage

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/sells-group/r2ready/internal/model"
)

// Requirements is the fixed requirement universe, in report order.
var Requirements = func() []string {
	out := make([]string, 0, 17)
	for i := 1; i <= 10; i++ {
		out = append(out, fmt.Sprintf("CR%d", i))
	}
	for r := 'A'; r <= 'G'; r++ {
		out = append(out, string(r))
	}
	return out
}()

// Entry is the coverage state of one requirement.
type Entry struct {
	Requirement string   `json:"requirement"`
	Covered     bool     `json:"covered"`
	Count       int      `json:"count"`
	QuestionIDs []string `json:"question_ids,omitempty"`
	// ProposedAdd marks an uncovered requirement with the suggested
	// catalog addition placeholder.
	ProposedAdd string `json:"proposed_add,omitempty"`
}

// MissingEvidence is a question tagged evidence-required with no evidence
// reference attached.
type MissingEvidence struct {
	QuestionID string   `json:"question_id"`
	Tags       []string `json:"tags"`
}

// Report is a full catalog coverage report.
type Report struct {
	TotalQuestions  int               `json:"total_questions"`
	Entries         []Entry           `json:"entries"`
	MissingEvidence []MissingEvidence `json:"missing_evidence"`
	Gaps            []string          `json:"gaps,omitempty"`
}

var crPattern = regexp.MustCompile(`(?i)\bCR[-_ ]?0?([1-9]|10)\b`)

// Build maps every requirement to the questions covering it. A question
// covers a requirement through its tags, its category/appendix fields, or
// a CR reference in its text as a fallback.
func Build(questions []model.Question) *Report {
	covered := make(map[string][]string, len(Requirements))

	for _, q := range questions {
		reqs := make(map[string]bool)

		for _, tag := range q.Tags {
			if r, ok := normalizeRequirement(tag); ok {
				reqs[r] = true
			}
		}
		if r, ok := normalizeRequirement(q.Category); ok {
			reqs[r] = true
		}
		if r, ok := normalizeRequirement(q.Appendix); ok {
			reqs[r] = true
		}
		// Text fallback for CR references only; single letters in prose
		// would be rampant false positives.
		for _, m := range crPattern.FindAllStringSubmatch(q.Text, -1) {
			reqs["CR"+m[1]] = true
		}

		for r := range reqs {
			covered[r] = append(covered[r], q.ID)
		}
	}

	report := &Report{TotalQuestions: len(questions)}
	for _, r := range Requirements {
		ids := covered[r]
		sort.Strings(ids)
		e := Entry{
			Requirement: r,
			Covered:     len(ids) > 0,
			Count:       len(ids),
			QuestionIDs: ids,
		}
		if !e.Covered {
			e.ProposedAdd = "ADD_" + r + "_QUESTION"
			report.Gaps = append(report.Gaps, r)
		}
		report.Entries = append(report.Entries, e)
	}

	for _, q := range questions {
		if q.EvidenceRequired && strings.TrimSpace(q.EvidenceRef) == "" {
			tags := append([]string(nil), q.Tags...)
			sort.Strings(tags)
			report.MissingEvidence = append(report.MissingEvidence, MissingEvidence{
				QuestionID: q.ID,
				Tags:       tags,
			})
		}
	}
	sort.Slice(report.MissingEvidence, func(i, j int) bool {
		return report.MissingEvidence[i].QuestionID < report.MissingEvidence[j].QuestionID
	})

	return report
}

// normalizeRequirement canonicalizes a tag into a requirement id:
// "cr-3"/"CR03" → "CR3", "e"/"E" → "E". Anything else is not a
// requirement tag.
func normalizeRequirement(tok string) (string, bool) {
	t := strings.ToUpper(strings.TrimSpace(tok))
	t = strings.NewReplacer("-", "", "_", "", " ", "").Replace(t)
	if t == "" {
		return "", false
	}
	if strings.HasPrefix(t, "CR") {
		n := strings.TrimLeft(t[2:], "0")
		for _, r := range Requirements[:10] {
			if "CR"+n == r {
				return r, true
			}
		}
		return "", false
	}
	if len(t) == 1 && t[0] >= 'A' && t[0] <= 'G' {
		return t, true
	}
	return "", false
}
