package repositories

import (
	"context"
	"time"

	"github.com/campus-stack/testing-service/internal/models"
)

// AttemptRepository owns attempts, their immutable snapshots and the
// per-question answer slots.
type AttemptRepository interface {
	// CreateWithSnapshot persists the attempt, its snapshot rows and the
	// initialized answer slots in one transaction. A concurrent create
	// for the same (test, user) pair surfaces as ErrDuplicateKey with
	// nothing persisted. The transaction holds a share lock on the test
	// row and re-reads the committed composition; if it no longer matches
	// the snapshot, nothing is persisted and ErrStaleSnapshot is returned.
	CreateWithSnapshot(ctx context.Context, attempt *models.Attempt, snapshot []models.AttemptQuestion, answers []models.Answer) error

	GetByID(ctx context.Context, id uint) (*models.Attempt, error)
	GetByTestAndUser(ctx context.Context, testID, userID uint) (*models.Attempt, error)
	ListByTest(ctx context.Context, testID uint) ([]*models.Attempt, error)

	Questions(ctx context.Context, attemptID uint) ([]models.AttemptQuestion, error)
	Answers(ctx context.Context, attemptID uint) ([]models.Answer, error)
	GetAnswer(ctx context.Context, answerID uint) (*models.Answer, error)
	UpdateAnswerIndex(ctx context.Context, answerID uint, index int) error

	// AnswersWithVersions joins the ledger against the pinned question
	// versions; grading never reads current question content.
	AnswersWithVersions(ctx context.Context, attemptID uint) ([]AnswerWithVersion, error)

	// Finish flips in_progress to finished. The bool reports whether this
	// call performed the transition; false with a nil error means the
	// attempt was already finished.
	Finish(ctx context.Context, id uint, finishedAt time.Time) (bool, error)
}
