package repositories

import (
	"context"

	"github.com/campus-stack/testing-service/internal/models"
)

type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	UpdateFullName(ctx context.Context, id uint, fullName string) error
	SetBlocked(ctx context.Context, id uint, blocked bool) error

	Roles(ctx context.Context, userID uint) ([]models.Role, error)
	// SetRoles replaces the user's role set atomically.
	SetRoles(ctx context.Context, userID uint, roles []models.Role) error

	// TestsForUser lists the tests a user has an attempt on, with status.
	TestsForUser(ctx context.Context, userID uint) ([]UserTestRow, error)
}
