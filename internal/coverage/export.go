package coverage

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// WriteJSON writes the report as indented JSON.
func WriteJSON(w io.Writer, r *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return eris.Wrap(err, "coverage: write json")
	}
	return nil
}

// WriteCSV writes the per-requirement rows as CSV.
func WriteCSV(w io.Writer, r *Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"requirement", "covered", "question_count", "question_ids", "proposed_add"}); err != nil {
		return eris.Wrap(err, "coverage: write csv header")
	}
	for _, e := range r.Entries {
		row := []string{
			e.Requirement,
			strconv.FormatBool(e.Covered),
			strconv.Itoa(e.Count),
			strings.Join(e.QuestionIDs, ";"),
			e.ProposedAdd,
		}
		if err := cw.Write(row); err != nil {
			return eris.Wrapf(err, "coverage: write csv row %s", e.Requirement)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return eris.Wrap(err, "coverage: flush csv")
	}
	return nil
}

// WriteXLSX writes the report as a workbook with a Coverage sheet and a
// MissingEvidence sheet.
func WriteXLSX(path string, r *Report) error {
	f := xlsx.NewFile()

	cov, err := f.AddSheet("Coverage")
	if err != nil {
		return eris.Wrap(err, "coverage: add sheet")
	}
	header := cov.AddRow()
	for _, h := range []string{"Requirement", "Covered", "Question Count", "Question IDs", "Proposed Add"} {
		header.AddCell().SetString(h)
	}
	for _, e := range r.Entries {
		row := cov.AddRow()
		row.AddCell().SetString(e.Requirement)
		row.AddCell().SetBool(e.Covered)
		row.AddCell().SetInt(e.Count)
		row.AddCell().SetString(strings.Join(e.QuestionIDs, ";"))
		row.AddCell().SetString(e.ProposedAdd)
	}

	ev, err := f.AddSheet("MissingEvidence")
	if err != nil {
		return eris.Wrap(err, "coverage: add sheet")
	}
	header = ev.AddRow()
	for _, h := range []string{"Question ID", "Tags"} {
		header.AddCell().SetString(h)
	}
	for _, m := range r.MissingEvidence {
		row := ev.AddRow()
		row.AddCell().SetString(m.QuestionID)
		row.AddCell().SetString(strings.Join(m.Tags, ";"))
	}

	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "coverage: save %s", path)
	}
	return nil
}
