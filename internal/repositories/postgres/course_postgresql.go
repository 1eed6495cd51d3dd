package postgres

import (
	"context"

	"github.com/campus-stack/testing-service/internal/models"
	"github.com/campus-stack/testing-service/internal/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CoursePostgreSQL struct {
	db *gorm.DB
}

func NewCoursePostgreSQL(db *gorm.DB) *CoursePostgreSQL {
	return &CoursePostgreSQL{db: db}
}

func (c *CoursePostgreSQL) Create(ctx context.Context, course *models.Course) error {
	return translate(c.db.WithContext(ctx).Create(course).Error)
}

func (c *CoursePostgreSQL) GetByID(ctx context.Context, id uint) (*models.Course, error) {
	var course models.Course
	if err := c.db.WithContext(ctx).First(&course, id).Error; err != nil {
		return nil, translate(err)
	}
	return &course, nil
}

func (c *CoursePostgreSQL) List(ctx context.Context) ([]*models.Course, error) {
	var courses []*models.Course
	if err := c.db.WithContext(ctx).Order("id").Find(&courses).Error; err != nil {
		return nil, translate(err)
	}
	return courses, nil
}

func (c *CoursePostgreSQL) Update(ctx context.Context, course *models.Course) error {
	result := c.db.WithContext(ctx).
		Model(&models.Course{}).
		Where("id = ?", course.ID).
		Updates(map[string]interface{}{
			"name":        course.Name,
			"description": course.Description,
		})
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return repositories.ErrRecordNotFound
	}
	return nil
}

func (c *CoursePostgreSQL) SoftDelete(ctx context.Context, id uint) error {
	result := c.db.WithContext(ctx).Delete(&models.Course{}, id)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return repositories.ErrRecordNotFound
	}
	return nil
}

// Enroll is idempotent; re-enrolling an already enrolled user is a no-op.
func (c *CoursePostgreSQL) Enroll(ctx context.Context, courseID, userID uint) error {
	err := c.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.CourseEnrollment{CourseID: courseID, UserID: userID}).Error
	return translate(err)
}

func (c *CoursePostgreSQL) Unenroll(ctx context.Context, courseID, userID uint) error {
	err := c.db.WithContext(ctx).
		Where("course_id = ? AND user_id = ?", courseID, userID).
		Delete(&models.CourseEnrollment{}).Error
	return translate(err)
}

func (c *CoursePostgreSQL) IsEnrolled(ctx context.Context, courseID, userID uint) (bool, error) {
	var count int64
	err := c.db.WithContext(ctx).
		Model(&models.CourseEnrollment{}).
		Where("course_id = ? AND user_id = ?", courseID, userID).
		Count(&count).Error
	if err != nil {
		return false, translate(err)
	}
	return count > 0, nil
}

func (c *CoursePostgreSQL) Students(ctx context.Context, courseID uint) ([]uint, error) {
	var ids []uint
	err := c.db.WithContext(ctx).
		Model(&models.CourseEnrollment{}).
		Where("course_id = ?", courseID).
		Order("user_id").
		Pluck("user_id", &ids).Error
	if err != nil {
		return nil, translate(err)
	}
	return ids, nil
}

func (c *CoursePostgreSQL) CoursesForUser(ctx context.Context, userID uint) ([]*models.Course, error) {
	var courses []*models.Course
	err := c.db.WithContext(ctx).
		Joins("JOIN course_enrollments ON course_enrollments.course_id = courses.id").
		Where("course_enrollments.user_id = ?", userID).
		Order("courses.id").
		Find(&courses).Error
	if err != nil {
		return nil, translate(err)
	}
	return courses, nil
}
