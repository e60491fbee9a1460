package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/r2ready/internal/model"
)

// Pool is the subset of pgxpool.Pool the store uses. pgxmock satisfies it,
// so the Postgres store is testable without a live database.
type Pool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore implements Store backed by Postgres via pgx.
type PostgresStore struct {
	pool  Pool
	close func()
}

// NewPostgres connects a pgx pool to the given database URL.
func NewPostgres(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: connect")
	}
	return &PostgresStore{pool: pool, close: pool.Close}, nil
}

// NewPostgresFromPool wraps an existing pool (or a pgxmock pool in tests).
func NewPostgresFromPool(pool Pool) *PostgresStore {
	return &PostgresStore{pool: pool, close: func() {}}
}

const postgresMigration = `
CREATE SCHEMA IF NOT EXISTS r2ready;

CREATE TABLE IF NOT EXISTS r2ready.assessments (
	id              TEXT PRIMARY KEY,
	facility_id     TEXT NOT NULL,
	profile_version INTEGER NOT NULL,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS r2ready.facility_profiles (
	facility_id TEXT NOT NULL,
	version     INTEGER NOT NULL,
	flags       JSONB NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (facility_id, version)
);

CREATE TABLE IF NOT EXISTS r2ready.answers (
	assessment_id TEXT NOT NULL REFERENCES r2ready.assessments(id),
	question_id   TEXT NOT NULL,
	value         TEXT NOT NULL,
	active        BOOLEAN NOT NULL DEFAULT true,
	updated_at    TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (assessment_id, question_id)
);

CREATE TABLE IF NOT EXISTS r2ready.score_results (
	assessment_id TEXT PRIMARY KEY REFERENCES r2ready.assessments(id),
	payload       JSONB NOT NULL,
	input_hash    TEXT NOT NULL,
	computed_at   TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS r2ready.maturity_scores (
	id            TEXT PRIMARY KEY,
	assessment_id TEXT NOT NULL REFERENCES r2ready.assessments(id),
	payload       JSONB NOT NULL,
	prev_id       TEXT,
	computed_at   TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_answers_assessment ON r2ready.answers(assessment_id);
CREATE INDEX IF NOT EXISTS idx_maturity_assessment ON r2ready.maturity_scores(assessment_id, computed_at);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.close()
	return nil
}

func (s *PostgresStore) CreateAssessment(ctx context.Context, facilityID string, profileVersion int) (*model.Assessment, error) {
	a := &model.Assessment{
		ID:             uuid.NewString(),
		FacilityID:     facilityID,
		ProfileVersion: profileVersion,
		CreatedAt:      time.Now().UTC(),
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO r2ready.assessments (id, facility_id, profile_version, created_at)
		VALUES ($1, $2, $3, $4)`,
		a.ID, a.FacilityID, a.ProfileVersion, a.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create assessment")
	}
	return a, nil
}

func (s *PostgresStore) GetAssessment(ctx context.Context, id string) (*model.Assessment, error) {
	var a model.Assessment
	err := s.pool.QueryRow(ctx, `
		SELECT id, facility_id, profile_version, created_at
		FROM r2ready.assessments WHERE id = $1`, id,
	).Scan(&a.ID, &a.FacilityID, &a.ProfileVersion, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "postgres: assessment %s", id)
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: get assessment")
	}
	return &a, nil
}

func (s *PostgresStore) SetAssessmentProfileVersion(ctx context.Context, id string, profileVersion int) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE r2ready.assessments SET profile_version = $1 WHERE id = $2`,
		profileVersion, id,
	)
	if err != nil {
		return eris.Wrap(err, "postgres: set profile version")
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "postgres: assessment %s", id)
	}
	return nil
}

func (s *PostgresStore) PutProfile(ctx context.Context, p model.FacilityProfile) error {
	flags, err := json.Marshal(p.Flags)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal profile flags")
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO r2ready.facility_profiles (facility_id, version, flags)
		VALUES ($1, $2, $3)`,
		p.FacilityID, p.Version, flags,
	)
	return eris.Wrap(err, "postgres: put profile")
}

func (s *PostgresStore) GetProfile(ctx context.Context, facilityID string, version int) (*model.FacilityProfile, error) {
	var flags []byte
	err := s.pool.QueryRow(ctx, `
		SELECT flags FROM r2ready.facility_profiles
		WHERE facility_id = $1 AND version = $2`,
		facilityID, version,
	).Scan(&flags)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "postgres: profile %s v%d", facilityID, version)
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: get profile")
	}

	p := &model.FacilityProfile{FacilityID: facilityID, Version: version}
	if err := json.Unmarshal(flags, &p.Flags); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal profile flags")
	}
	return p, nil
}

func (s *PostgresStore) UpsertAnswer(ctx context.Context, a model.Answer) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO r2ready.answers (assessment_id, question_id, value, active, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (assessment_id, question_id)
		DO UPDATE SET value = EXCLUDED.value, active = EXCLUDED.active, updated_at = EXCLUDED.updated_at`,
		a.AssessmentID, a.QuestionID, string(a.Value), a.Active, a.UpdatedAt,
	)
	return eris.Wrap(err, "postgres: upsert answer")
}

func (s *PostgresStore) ListAnswers(ctx context.Context, assessmentID string) ([]model.Answer, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT assessment_id, question_id, value, active, updated_at
		FROM r2ready.answers WHERE assessment_id = $1
		ORDER BY question_id`, assessmentID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list answers")
	}
	defer rows.Close()

	var out []model.Answer
	for rows.Next() {
		var (
			a     model.Answer
			value string
		)
		if err := rows.Scan(&a.AssessmentID, &a.QuestionID, &value, &a.Active, &a.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan answer")
		}
		a.Value = model.AnswerValue(value)
		out = append(out, a)
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate answers")
}

func (s *PostgresStore) SetAnswersActive(ctx context.Context, assessmentID string, questionIDs []string, active bool) error {
	if len(questionIDs) == 0 {
		return nil
	}
	_, err := s.pool.Exec(ctx, `
		UPDATE r2ready.answers SET active = $1
		WHERE assessment_id = $2 AND question_id = ANY($3)`,
		active, assessmentID, questionIDs,
	)
	return eris.Wrap(err, "postgres: set answers active")
}

func (s *PostgresStore) SaveScoreResult(ctx context.Context, r *model.AssessmentScoreResult) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal score result")
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO r2ready.score_results (assessment_id, payload, input_hash, computed_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (assessment_id)
		DO UPDATE SET payload = EXCLUDED.payload, input_hash = EXCLUDED.input_hash, computed_at = EXCLUDED.computed_at`,
		r.AssessmentID, payload, r.InputHash, r.ComputedAt,
	)
	return eris.Wrap(err, "postgres: save score result")
}

func (s *PostgresStore) GetScoreResult(ctx context.Context, assessmentID string) (*model.AssessmentScoreResult, error) {
	var payload []byte
	err := s.pool.QueryRow(ctx, `
		SELECT payload FROM r2ready.score_results WHERE assessment_id = $1`, assessmentID,
	).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "postgres: score result for %s", assessmentID)
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: get score result")
	}

	var r model.AssessmentScoreResult
	if err := json.Unmarshal(payload, &r); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal score result")
	}
	return &r, nil
}

func (s *PostgresStore) AppendMaturityScore(ctx context.Context, m *model.MaturityScore) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	payload, err := json.Marshal(m)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal maturity score")
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO r2ready.maturity_scores (id, assessment_id, payload, prev_id, computed_at)
		VALUES ($1, $2, $3, $4, $5)`,
		m.ID, m.AssessmentID, payload, nullIfEmpty(m.PrevID), m.ComputedAt,
	)
	return eris.Wrap(err, "postgres: append maturity score")
}

func (s *PostgresStore) LatestMaturityScore(ctx context.Context, assessmentID string) (*model.MaturityScore, error) {
	var payload []byte
	err := s.pool.QueryRow(ctx, `
		SELECT payload FROM r2ready.maturity_scores
		WHERE assessment_id = $1
		ORDER BY computed_at DESC, id DESC LIMIT 1`, assessmentID,
	).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "postgres: maturity score for %s", assessmentID)
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: latest maturity score")
	}

	var m model.MaturityScore
	if err := json.Unmarshal(payload, &m); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal maturity score")
	}
	return &m, nil
}

func (s *PostgresStore) ListMaturityScores(ctx context.Context, assessmentID string) ([]model.MaturityScore, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT payload FROM r2ready.maturity_scores
		WHERE assessment_id = $1
		ORDER BY computed_at ASC, id ASC`, assessmentID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list maturity scores")
	}
	defer rows.Close()

	var out []model.MaturityScore
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, eris.Wrap(err, "postgres: scan maturity score")
		}
		var m model.MaturityScore
		if err := json.Unmarshal(payload, &m); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal maturity score")
		}
		out = append(out, m)
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate maturity scores")
}
