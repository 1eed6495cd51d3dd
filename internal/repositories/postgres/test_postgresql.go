package postgres

import (
	"context"
	"fmt"

	"github.com/campus-stack/testing-service/internal/models"
	"github.com/campus-stack/testing-service/internal/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TestPostgreSQL struct {
	db *gorm.DB
}

func NewTestPostgreSQL(db *gorm.DB) *TestPostgreSQL {
	return &TestPostgreSQL{db: db}
}

func (t *TestPostgreSQL) Create(ctx context.Context, test *models.Test) error {
	return translate(t.db.WithContext(ctx).Create(test).Error)
}

func (t *TestPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Test, error) {
	var test models.Test
	if err := t.db.WithContext(ctx).First(&test, id).Error; err != nil {
		return nil, translate(err)
	}
	return &test, nil
}

func (t *TestPostgreSQL) GetWithCourse(ctx context.Context, id uint) (*models.Test, *models.Course, error) {
	var test models.Test
	if err := t.db.WithContext(ctx).First(&test, id).Error; err != nil {
		return nil, nil, translate(err)
	}

	var course models.Course
	if err := t.db.WithContext(ctx).First(&course, test.CourseID).Error; err != nil {
		return nil, nil, translate(err)
	}
	return &test, &course, nil
}

func (t *TestPostgreSQL) ListByCourse(ctx context.Context, courseID uint) ([]*models.Test, error) {
	var tests []*models.Test
	err := t.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("id").
		Find(&tests).Error
	if err != nil {
		return nil, translate(err)
	}
	return tests, nil
}

func (t *TestPostgreSQL) SetActive(ctx context.Context, id uint, active bool) error {
	result := t.db.WithContext(ctx).
		Model(&models.Test{}).
		Where("id = ?", id).
		Update("is_active", active)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return repositories.ErrRecordNotFound
	}
	return nil
}

func (t *TestPostgreSQL) SoftDelete(ctx context.Context, id uint) error {
	result := t.db.WithContext(ctx).Delete(&models.Test{}, id)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return repositories.ErrRecordNotFound
	}
	return nil
}

func (t *TestPostgreSQL) Questions(ctx context.Context, testID uint) ([]models.TestQuestion, error) {
	var rows []models.TestQuestion
	err := t.db.WithContext(ctx).
		Where("test_id = ?", testID).
		Order("position").
		Find(&rows).Error
	if err != nil {
		return nil, translate(err)
	}
	return rows, nil
}

// lockComposition guards a membership write: it takes a row lock on the
// test and verifies no attempt exists yet. Both run inside the caller's
// transaction so the check holds until commit.
func lockComposition(tx *gorm.DB, testID uint) error {
	var test models.Test
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&test, testID).Error; err != nil {
		return err
	}

	var attempts int64
	if err := tx.Model(&models.Attempt{}).
		Where("test_id = ?", testID).
		Count(&attempts).Error; err != nil {
		return err
	}
	if attempts > 0 {
		return repositories.ErrTestLocked
	}
	return nil
}

func (t *TestPostgreSQL) AddQuestion(ctx context.Context, testID, questionID uint) (int, error) {
	var position int
	err := t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockComposition(tx, testID); err != nil {
			return err
		}

		var next *int
		if err := tx.Model(&models.TestQuestion{}).
			Where("test_id = ?", testID).
			Select("MAX(position) + 1").
			Scan(&next).Error; err != nil {
			return err
		}
		if next != nil {
			position = *next
		}

		return tx.Create(&models.TestQuestion{
			TestID:     testID,
			QuestionID: questionID,
			Position:   position,
		}).Error
	})
	if err != nil {
		return 0, translate(err)
	}
	return position, nil
}

func (t *TestPostgreSQL) RemoveQuestion(ctx context.Context, testID, questionID uint) error {
	err := t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockComposition(tx, testID); err != nil {
			return err
		}

		var row models.TestQuestion
		if err := tx.Where("test_id = ? AND question_id = ?", testID, questionID).
			First(&row).Error; err != nil {
			return err
		}

		if err := tx.Where("test_id = ? AND question_id = ?", testID, questionID).
			Delete(&models.TestQuestion{}).Error; err != nil {
			return err
		}

		// Close the gap so positions stay contiguous from zero.
		return tx.Model(&models.TestQuestion{}).
			Where("test_id = ? AND position > ?", testID, row.Position).
			Update("position", gorm.Expr("position - 1")).Error
	})
	return translate(err)
}

func (t *TestPostgreSQL) Reorder(ctx context.Context, testID uint, order []uint) error {
	err := t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockComposition(tx, testID); err != nil {
			return err
		}

		var current []models.TestQuestion
		if err := tx.Where("test_id = ?", testID).Find(&current).Error; err != nil {
			return err
		}

		if len(order) != len(current) {
			return fmt.Errorf("%w: reorder lists %d questions, test has %d",
				repositories.ErrReorderMismatch, len(order), len(current))
		}
		members := make(map[uint]bool, len(current))
		for _, row := range current {
			members[row.QuestionID] = true
		}
		seen := make(map[uint]bool, len(order))
		for _, id := range order {
			if !members[id] {
				return fmt.Errorf("%w: question %d is not in the test",
					repositories.ErrReorderMismatch, id)
			}
			if seen[id] {
				return fmt.Errorf("%w: question %d listed twice",
					repositories.ErrReorderMismatch, id)
			}
			seen[id] = true
		}

		// Two phases to dodge the unique (test, position) index mid-flight:
		// park everything at distinct negatives, then assign final slots.
		for i, id := range order {
			if err := tx.Model(&models.TestQuestion{}).
				Where("test_id = ? AND question_id = ?", testID, id).
				Update("position", -(i + 1)).Error; err != nil {
				return err
			}
		}
		for i, id := range order {
			if err := tx.Model(&models.TestQuestion{}).
				Where("test_id = ? AND question_id = ?", testID, id).
				Update("position", i).Error; err != nil {
				return err
			}
		}
		return nil
	})
	return translate(err)
}

func (t *TestPostgreSQL) HasAttempts(ctx context.Context, testID uint) (bool, error) {
	var count int64
	err := t.db.WithContext(ctx).
		Model(&models.Attempt{}).
		Where("test_id = ?", testID).
		Count(&count).Error
	if err != nil {
		return false, translate(err)
	}
	return count > 0, nil
}
