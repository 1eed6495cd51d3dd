package repositories

import (
	"context"

	"github.com/campus-stack/testing-service/internal/models"
)

// TestRepository owns tests and their ordered question membership.
// Every membership mutation re-checks the zero-attempts precondition
// inside its transaction so a test can never change under a student.
type TestRepository interface {
	Create(ctx context.Context, test *models.Test) error
	GetByID(ctx context.Context, id uint) (*models.Test, error)
	// GetWithCourse loads the test together with its (non-deleted)
	// course; missing either yields not-found.
	GetWithCourse(ctx context.Context, id uint) (*models.Test, *models.Course, error)
	ListByCourse(ctx context.Context, courseID uint) ([]*models.Test, error)
	SetActive(ctx context.Context, id uint, active bool) error
	SoftDelete(ctx context.Context, id uint) error

	Questions(ctx context.Context, testID uint) ([]models.TestQuestion, error)
	// AddQuestion appends at position max+1 (0 when empty). Duplicate
	// membership or a concurrent position clash returns ErrDuplicateKey;
	// existing attempts return ErrTestLocked.
	AddQuestion(ctx context.Context, testID, questionID uint) (int, error)
	RemoveQuestion(ctx context.Context, testID, questionID uint) error
	// Reorder rewrites positions 0..n-1 to match order, which must be an
	// exact permutation of the current membership; any mismatch fails
	// without partial application.
	Reorder(ctx context.Context, testID uint, order []uint) error

	HasAttempts(ctx context.Context, testID uint) (bool, error)
}
