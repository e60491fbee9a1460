package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/r2ready/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS assessments (
	id              TEXT PRIMARY KEY,
	facility_id     TEXT NOT NULL,
	profile_version INTEGER NOT NULL,
	created_at      DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS facility_profiles (
	facility_id TEXT NOT NULL,
	version     INTEGER NOT NULL,
	flags       TEXT NOT NULL,
	created_at  DATETIME NOT NULL DEFAULT (datetime('now')),
	PRIMARY KEY (facility_id, version)
);

CREATE TABLE IF NOT EXISTS answers (
	assessment_id TEXT NOT NULL REFERENCES assessments(id),
	question_id   TEXT NOT NULL,
	value         TEXT NOT NULL,
	active        INTEGER NOT NULL DEFAULT 1,
	updated_at    DATETIME NOT NULL,
	PRIMARY KEY (assessment_id, question_id)
);

CREATE TABLE IF NOT EXISTS score_results (
	assessment_id TEXT PRIMARY KEY REFERENCES assessments(id),
	payload       TEXT NOT NULL,
	input_hash    TEXT NOT NULL,
	computed_at   DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS maturity_scores (
	id            TEXT PRIMARY KEY,
	assessment_id TEXT NOT NULL REFERENCES assessments(id),
	payload       TEXT NOT NULL,
	prev_id       TEXT,
	computed_at   DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_answers_assessment ON answers(assessment_id);
CREATE INDEX IF NOT EXISTS idx_maturity_assessment ON maturity_scores(assessment_id, computed_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateAssessment(ctx context.Context, facilityID string, profileVersion int) (*model.Assessment, error) {
	a := &model.Assessment{
		ID:             uuid.NewString(),
		FacilityID:     facilityID,
		ProfileVersion: profileVersion,
		CreatedAt:      time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO assessments (id, facility_id, profile_version, created_at)
		VALUES (?, ?, ?, ?)`,
		a.ID, a.FacilityID, a.ProfileVersion, a.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: create assessment")
	}
	return a, nil
}

func (s *SQLiteStore) GetAssessment(ctx context.Context, id string) (*model.Assessment, error) {
	var a model.Assessment
	err := s.db.QueryRowContext(ctx, `
		SELECT id, facility_id, profile_version, created_at
		FROM assessments WHERE id = ?`, id,
	).Scan(&a.ID, &a.FacilityID, &a.ProfileVersion, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "sqlite: assessment %s", id)
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get assessment")
	}
	return &a, nil
}

func (s *SQLiteStore) SetAssessmentProfileVersion(ctx context.Context, id string, profileVersion int) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE assessments SET profile_version = ? WHERE id = ?`,
		profileVersion, id,
	)
	if err != nil {
		return eris.Wrap(err, "sqlite: set profile version")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return eris.Wrapf(ErrNotFound, "sqlite: assessment %s", id)
	}
	return nil
}

func (s *SQLiteStore) PutProfile(ctx context.Context, p model.FacilityProfile) error {
	flags, err := json.Marshal(p.Flags)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal profile flags")
	}
	// Profiles are immutable per version: an INSERT, never an upsert.
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO facility_profiles (facility_id, version, flags)
		VALUES (?, ?, ?)`,
		p.FacilityID, p.Version, string(flags),
	)
	return eris.Wrap(err, "sqlite: put profile")
}

func (s *SQLiteStore) GetProfile(ctx context.Context, facilityID string, version int) (*model.FacilityProfile, error) {
	var flagsJSON string
	err := s.db.QueryRowContext(ctx, `
		SELECT flags FROM facility_profiles
		WHERE facility_id = ? AND version = ?`,
		facilityID, version,
	).Scan(&flagsJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "sqlite: profile %s v%d", facilityID, version)
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get profile")
	}

	p := &model.FacilityProfile{FacilityID: facilityID, Version: version}
	if err := json.Unmarshal([]byte(flagsJSON), &p.Flags); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal profile flags")
	}
	return p, nil
}

func (s *SQLiteStore) UpsertAnswer(ctx context.Context, a model.Answer) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO answers (assessment_id, question_id, value, active, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (assessment_id, question_id)
		DO UPDATE SET value = excluded.value, active = excluded.active, updated_at = excluded.updated_at`,
		a.AssessmentID, a.QuestionID, string(a.Value), boolInt(a.Active), a.UpdatedAt,
	)
	return eris.Wrap(err, "sqlite: upsert answer")
}

func (s *SQLiteStore) ListAnswers(ctx context.Context, assessmentID string) ([]model.Answer, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT assessment_id, question_id, value, active, updated_at
		FROM answers WHERE assessment_id = ?
		ORDER BY question_id`, assessmentID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list answers")
	}
	defer rows.Close()

	var out []model.Answer
	for rows.Next() {
		var (
			a      model.Answer
			value  string
			active int
		)
		if err := rows.Scan(&a.AssessmentID, &a.QuestionID, &value, &active, &a.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan answer")
		}
		a.Value = model.AnswerValue(value)
		a.Active = active != 0
		out = append(out, a)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate answers")
}

func (s *SQLiteStore) SetAnswersActive(ctx context.Context, assessmentID string, questionIDs []string, active bool) error {
	if len(questionIDs) == 0 {
		return nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(questionIDs)), ",")
	args := make([]any, 0, len(questionIDs)+2)
	args = append(args, boolInt(active), assessmentID)
	for _, qid := range questionIDs {
		args = append(args, qid)
	}
	_, err := s.db.ExecContext(ctx, `
		UPDATE answers SET active = ?
		WHERE assessment_id = ? AND question_id IN (`+placeholders+`)`,
		args...,
	)
	return eris.Wrap(err, "sqlite: set answers active")
}

func (s *SQLiteStore) SaveScoreResult(ctx context.Context, r *model.AssessmentScoreResult) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal score result")
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO score_results (assessment_id, payload, input_hash, computed_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (assessment_id)
		DO UPDATE SET payload = excluded.payload, input_hash = excluded.input_hash, computed_at = excluded.computed_at`,
		r.AssessmentID, string(payload), r.InputHash, r.ComputedAt,
	)
	return eris.Wrap(err, "sqlite: save score result")
}

func (s *SQLiteStore) GetScoreResult(ctx context.Context, assessmentID string) (*model.AssessmentScoreResult, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `
		SELECT payload FROM score_results WHERE assessment_id = ?`, assessmentID,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "sqlite: score result for %s", assessmentID)
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get score result")
	}

	var r model.AssessmentScoreResult
	if err := json.Unmarshal([]byte(payload), &r); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal score result")
	}
	return &r, nil
}

func (s *SQLiteStore) AppendMaturityScore(ctx context.Context, m *model.MaturityScore) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	payload, err := json.Marshal(m)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal maturity score")
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO maturity_scores (id, assessment_id, payload, prev_id, computed_at)
		VALUES (?, ?, ?, ?, ?)`,
		m.ID, m.AssessmentID, string(payload), nullIfEmpty(m.PrevID), m.ComputedAt,
	)
	return eris.Wrap(err, "sqlite: append maturity score")
}

func (s *SQLiteStore) LatestMaturityScore(ctx context.Context, assessmentID string) (*model.MaturityScore, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `
		SELECT payload FROM maturity_scores
		WHERE assessment_id = ?
		ORDER BY computed_at DESC, id DESC LIMIT 1`, assessmentID,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "sqlite: maturity score for %s", assessmentID)
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: latest maturity score")
	}

	var m model.MaturityScore
	if err := json.Unmarshal([]byte(payload), &m); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal maturity score")
	}
	return &m, nil
}

func (s *SQLiteStore) ListMaturityScores(ctx context.Context, assessmentID string) ([]model.MaturityScore, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT payload FROM maturity_scores
		WHERE assessment_id = ?
		ORDER BY computed_at ASC, id ASC`, assessmentID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list maturity scores")
	}
	defer rows.Close()

	var out []model.MaturityScore
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan maturity score")
		}
		var m model.MaturityScore
		if err := json.Unmarshal([]byte(payload), &m); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal maturity score")
		}
		out = append(out, m)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate maturity scores")
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
