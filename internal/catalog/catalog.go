// Package catalog loads and validates the externally-authored configuration
// catalogs: the intake flag schema, the question catalog, conditional and
// must-pass rules, and versioned scoring configs. A catalog is validated in
// full at load time and rejected before any assessment pass can reference
// it, so configuration problems never surface mid-computation.
package catalog

import (
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/r2ready/internal/intake"
	"github.com/sells-group/r2ready/internal/model"
)

// Snapshot is one immutable, validated view of every catalog an assessment
// pass needs. Passes read a snapshot once at start; later catalog updates
// only affect passes started after the update.
type Snapshot struct {
	Flags         []intake.FlagSpec
	Questions     []model.Question
	Rules         []model.ConditionalRule
	MustPassRules []model.MustPassRule
	Scoring       model.ScoringConfig
}

// Index returns a question index over the snapshot's catalog.
func (s *Snapshot) Index() *model.QuestionIndex {
	return model.NewQuestionIndex(s.Questions)
}

type flagsFile struct {
	Flags []intake.FlagSpec `yaml:"flags"`
}

type questionsFile struct {
	Questions []model.Question `yaml:"questions"`
}

type rulesFile struct {
	Rules []model.ConditionalRule `yaml:"rules"`
}

type mustPassFile struct {
	MustPassRules []model.MustPassRule `yaml:"must_pass_rules"`
}

type scoringFile struct {
	ActiveVersion int                   `yaml:"active_version"`
	Configs       []model.ScoringConfig `yaml:"configs"`
}

// Load reads a catalog directory (flags.yaml, questions.yaml, rules.yaml,
// must_pass.yaml, scoring.yaml), validates everything, and returns a
// snapshot with the active scoring config resolved. Any validation issue
// fails the load with a *ConfigurationError.
func Load(dir string) (*Snapshot, *Resolver, error) {
	var (
		ff flagsFile
		qf questionsFile
		rf rulesFile
		mf mustPassFile
		sf scoringFile
	)
	if err := readYAML(filepath.Join(dir, "flags.yaml"), &ff); err != nil {
		return nil, nil, err
	}
	if err := readYAML(filepath.Join(dir, "questions.yaml"), &qf); err != nil {
		return nil, nil, err
	}
	if err := readYAML(filepath.Join(dir, "rules.yaml"), &rf); err != nil {
		return nil, nil, err
	}
	if err := readYAML(filepath.Join(dir, "must_pass.yaml"), &mf); err != nil {
		return nil, nil, err
	}
	if err := readYAML(filepath.Join(dir, "scoring.yaml"), &sf); err != nil {
		return nil, nil, err
	}

	resolver := NewResolver()
	for _, cfg := range sf.Configs {
		if err := resolver.Register(cfg); err != nil {
			return nil, nil, err
		}
	}
	if err := resolver.Activate(sf.ActiveVersion); err != nil {
		return nil, nil, err
	}

	active, err := resolver.Active()
	if err != nil {
		return nil, nil, err
	}

	snap := &Snapshot{
		Flags:         ff.Flags,
		Questions:     qf.Questions,
		Rules:         rf.Rules,
		MustPassRules: mf.MustPassRules,
		Scoring:       active,
	}
	if err := Validate(snap); err != nil {
		return nil, nil, err
	}

	zap.L().Info("catalog: loaded",
		zap.String("dir", dir),
		zap.Int("questions", len(snap.Questions)),
		zap.Int("rules", len(snap.Rules)),
		zap.Int("must_pass_rules", len(snap.MustPassRules)),
		zap.Int("scoring_version", snap.Scoring.Version),
	)
	return snap, resolver, nil
}

func readYAML(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return eris.Wrapf(err, "catalog: read %s", path)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return eris.Wrapf(err, "catalog: parse %s", path)
	}
	return nil
}
