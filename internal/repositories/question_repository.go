package repositories

import (
	"context"

	"github.com/campus-stack/testing-service/internal/models"
)

// QuestionRepository owns the append-only version store.
type QuestionRepository interface {
	// Create inserts the question identity together with version 1 in
	// one transaction.
	Create(ctx context.Context, question *models.Question, first *models.QuestionVersion) error
	GetByID(ctx context.Context, id uint) (*models.Question, error)
	ListWithLatest(ctx context.Context, filters QuestionFilters) ([]QuestionListRow, error)

	// CreateVersion appends the next version (latest+1) and bumps the
	// denormalized pointer in the same transaction; the assigned number
	// is returned. Version numbers are never reused or decremented.
	CreateVersion(ctx context.Context, questionID uint, version *models.QuestionVersion) (int, error)

	// GetVersion resolves a specific version. It intentionally ignores
	// the question's soft-delete state so historical attempts keep
	// resolving their pins.
	GetVersion(ctx context.Context, questionID uint, version int) (*models.QuestionVersion, error)
	GetLatestVersion(ctx context.Context, questionID uint) (*models.QuestionVersion, error)

	SoftDelete(ctx context.Context, id uint) error

	// HasPinnedAttempt reports whether the user has an attempt whose
	// snapshot pins this exact (question, version) pair.
	HasPinnedAttempt(ctx context.Context, userID, questionID uint, version int) (bool, error)
}
