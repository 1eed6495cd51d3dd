package repositories

import (
	"context"

	"github.com/campus-stack/testing-service/internal/models"
)

type CourseRepository interface {
	Create(ctx context.Context, course *models.Course) error
	GetByID(ctx context.Context, id uint) (*models.Course, error)
	List(ctx context.Context) ([]*models.Course, error)
	Update(ctx context.Context, course *models.Course) error
	SoftDelete(ctx context.Context, id uint) error

	Enroll(ctx context.Context, courseID, userID uint) error
	Unenroll(ctx context.Context, courseID, userID uint) error
	IsEnrolled(ctx context.Context, courseID, userID uint) (bool, error)
	Students(ctx context.Context, courseID uint) ([]uint, error)
	CoursesForUser(ctx context.Context, userID uint) ([]*models.Course, error)
}
