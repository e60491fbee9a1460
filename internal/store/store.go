// Package store is the persistence boundary owned by the surrounding
// application. The scoring core computes over snapshots read from here;
// answers are append/update only and never deleted by the core.
package store

import (
	"context"

	"github.com/sells-group/r2ready/internal/model"
)

// ErrNotFound is returned when a requested entity does not exist.
// Implementations wrap it with context via eris.
var ErrNotFound = notFoundError{}

type notFoundError struct{}

func (notFoundError) Error() string { return "store: not found" }

// Store defines persistence for assessments, profiles, answers, cached
// score results, and the append-only maturity history.
type Store interface {
	// Assessments
	CreateAssessment(ctx context.Context, facilityID string, profileVersion int) (*model.Assessment, error)
	GetAssessment(ctx context.Context, id string) (*model.Assessment, error)
	// SetAssessmentProfileVersion repoints an assessment at a new intake
	// version after an intake edit.
	SetAssessmentProfileVersion(ctx context.Context, id string, profileVersion int) error

	// Facility profiles, immutable per version.
	PutProfile(ctx context.Context, p model.FacilityProfile) error
	GetProfile(ctx context.Context, facilityID string, version int) (*model.FacilityProfile, error)

	// Answers
	UpsertAnswer(ctx context.Context, a model.Answer) error
	ListAnswers(ctx context.Context, assessmentID string) ([]model.Answer, error)
	// SetAnswersActive flips the active flag for the given questions'
	// answers. Used when a profile change moves questions in or out of the
	// applicable set; answers themselves are retained for audit history.
	SetAnswersActive(ctx context.Context, assessmentID string, questionIDs []string, active bool) error

	// Score results: an overwritten cache, one row per assessment.
	SaveScoreResult(ctx context.Context, r *model.AssessmentScoreResult) error
	GetScoreResult(ctx context.Context, assessmentID string) (*model.AssessmentScoreResult, error)

	// Maturity history: append-only, never overwritten.
	AppendMaturityScore(ctx context.Context, m *model.MaturityScore) error
	LatestMaturityScore(ctx context.Context, assessmentID string) (*model.MaturityScore, error)
	ListMaturityScores(ctx context.Context, assessmentID string) ([]model.MaturityScore, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
