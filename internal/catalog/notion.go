package catalog

import (
	"context"

	"github.com/jomei/notionapi"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/r2ready/internal/model"
	"github.com/sells-group/r2ready/pkg/notion"
)

// LoadQuestionsFromNotion queries the Notion question catalog database for
// all active questions. The compliance team authors the catalog in Notion;
// this is an alternate catalog source to the YAML files and feeds the same
// validation in Validate before anything downstream sees it.
func LoadQuestionsFromNotion(ctx context.Context, client notion.Client, dbID string) ([]model.Question, error) {
	filter := &notionapi.DatabaseQueryRequest{
		Filter: notionapi.PropertyFilter{
			Property: "Status",
			Status: &notionapi.StatusFilterCondition{
				Equals: "Active",
			},
		},
	}

	pages, err := notion.QueryAll(ctx, client, dbID, filter)
	if err != nil {
		return nil, eris.Wrap(err, "catalog: load notion question catalog")
	}

	var questions []model.Question
	for _, p := range pages {
		q, err := parseQuestionPage(p)
		if err != nil {
			zap.L().Warn("catalog: skipping malformed question page",
				zap.String("page_id", string(p.ID)),
				zap.Error(err),
			)
			continue
		}
		questions = append(questions, q)
	}

	zap.L().Info("catalog: loaded questions from notion",
		zap.String("db_id", dbID),
		zap.Int("questions", len(questions)),
	)
	return questions, nil
}

func parseQuestionPage(p notionapi.Page) (model.Question, error) {
	var q model.Question

	if prop, ok := p.Properties["Text"]; ok {
		if tp, ok := prop.(*notionapi.TitleProperty); ok {
			q.Text = plainText(tp.Title)
		}
	}
	if prop, ok := p.Properties["QuestionID"]; ok {
		if rtp, ok := prop.(*notionapi.RichTextProperty); ok {
			q.ID = plainText(rtp.RichText)
		}
	}
	if prop, ok := p.Properties["Category"]; ok {
		if sp, ok := prop.(*notionapi.SelectProperty); ok {
			q.Category = sp.Select.Name
		}
	}
	if prop, ok := p.Properties["Appendix"]; ok {
		if sp, ok := prop.(*notionapi.SelectProperty); ok {
			q.Appendix = sp.Select.Name
		}
	}
	if prop, ok := p.Properties["Order"]; ok {
		if np, ok := prop.(*notionapi.NumberProperty); ok {
			q.OrderIndex = int(np.Number)
		}
	}
	if prop, ok := p.Properties["Tags"]; ok {
		if msp, ok := prop.(*notionapi.MultiSelectProperty); ok {
			for _, opt := range msp.MultiSelect {
				q.Tags = append(q.Tags, opt.Name)
			}
		}
	}
	if prop, ok := p.Properties["MustPass"]; ok {
		if cp, ok := prop.(*notionapi.CheckboxProperty); ok {
			q.IsMustPass = cp.Checkbox
		}
	}
	if prop, ok := p.Properties["MustPassRule"]; ok {
		if rtp, ok := prop.(*notionapi.RichTextProperty); ok {
			q.MustPassRuleID = plainText(rtp.RichText)
		}
	}
	if prop, ok := p.Properties["Parent"]; ok {
		if rtp, ok := prop.(*notionapi.RichTextProperty); ok {
			q.ParentQuestionID = plainText(rtp.RichText)
		}
	}
	if prop, ok := p.Properties["EvidenceRequired"]; ok {
		if cp, ok := prop.(*notionapi.CheckboxProperty); ok {
			q.EvidenceRequired = cp.Checkbox
		}
	}
	if prop, ok := p.Properties["EvidenceRef"]; ok {
		if rtp, ok := prop.(*notionapi.RichTextProperty); ok {
			q.EvidenceRef = plainText(rtp.RichText)
		}
	}
	if prop, ok := p.Properties["Maturity"]; ok {
		if cp, ok := prop.(*notionapi.CheckboxProperty); ok {
			q.IsMaturityQuestion = cp.Checkbox
		}
	}
	if prop, ok := p.Properties["MaturityCategory"]; ok {
		if sp, ok := prop.(*notionapi.SelectProperty); ok {
			q.MaturityCategory = sp.Select.Name
		}
	}
	if prop, ok := p.Properties["Weight"]; ok {
		if np, ok := prop.(*notionapi.NumberProperty); ok && np.Number != 0 {
			w := np.Number
			q.WeightOverride = &w
		}
	}

	// Display conditions are authored as a YAML snippet in a rich_text
	// property, same grammar as the file catalog.
	if prop, ok := p.Properties["DisplayCondition"]; ok {
		if rtp, ok := prop.(*notionapi.RichTextProperty); ok {
			if raw := plainText(rtp.RichText); raw != "" {
				var pred model.Predicate
				if err := yaml.Unmarshal([]byte(raw), &pred); err != nil {
					return q, eris.Wrapf(err, "catalog: parse display condition for %s", q.ID)
				}
				q.DisplayCondition = &pred
			}
		}
	}

	if q.ID == "" {
		return q, eris.New("missing QuestionID property")
	}
	if q.Text == "" {
		return q, eris.New("missing Text property")
	}
	return q, nil
}

// plainText concatenates the plain_text values from a slice of RichText.
func plainText(rts []notionapi.RichText) string {
	var s string
	for _, rt := range rts {
		s += rt.PlainText
	}
	return s
}
