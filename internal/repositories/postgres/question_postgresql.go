package postgres

import (
	"context"

	"github.com/campus-stack/testing-service/internal/models"
	"github.com/campus-stack/testing-service/internal/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type QuestionPostgreSQL struct {
	db *gorm.DB
}

func NewQuestionPostgreSQL(db *gorm.DB) *QuestionPostgreSQL {
	return &QuestionPostgreSQL{db: db}
}

func (q *QuestionPostgreSQL) Create(ctx context.Context, question *models.Question, first *models.QuestionVersion) error {
	err := q.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		question.LatestVersion = 1
		if err := tx.Create(question).Error; err != nil {
			return err
		}

		first.QuestionID = question.ID
		first.Version = 1
		return tx.Create(first).Error
	})
	return translate(err)
}

func (q *QuestionPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Question, error) {
	var question models.Question
	if err := q.db.WithContext(ctx).First(&question, id).Error; err != nil {
		return nil, translate(err)
	}
	return &question, nil
}

func (q *QuestionPostgreSQL) ListWithLatest(ctx context.Context, filters repositories.QuestionFilters) ([]repositories.QuestionListRow, error) {
	var rows []repositories.QuestionListRow

	query := q.db.WithContext(ctx).
		Table("questions").
		Select("questions.id, questions.author_id, question_versions.version, question_versions.title").
		Joins("JOIN question_versions ON question_versions.question_id = questions.id AND question_versions.version = questions.latest_version").
		Where("questions.deleted_at IS NULL").
		Order("questions.id")

	if filters.AuthorID != nil {
		query = query.Where("questions.author_id = ?", *filters.AuthorID)
	}
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit).Offset(filters.Offset)
	}

	if err := query.Scan(&rows).Error; err != nil {
		return nil, translate(err)
	}
	return rows, nil
}

// CreateVersion appends latest+1 under a row lock on the question so two
// concurrent revisions cannot both claim the same number.
func (q *QuestionPostgreSQL) CreateVersion(ctx context.Context, questionID uint, version *models.QuestionVersion) (int, error) {
	var assigned int
	err := q.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var question models.Question
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&question, questionID).Error; err != nil {
			return err
		}

		assigned = question.LatestVersion + 1
		version.QuestionID = questionID
		version.Version = assigned
		if err := tx.Create(version).Error; err != nil {
			return err
		}

		return tx.Model(&models.Question{}).
			Where("id = ?", questionID).
			Update("latest_version", assigned).Error
	})
	if err != nil {
		return 0, translate(err)
	}
	return assigned, nil
}

// GetVersion reads straight from the version history, which has no
// soft-delete: pins of deleted questions must keep resolving.
func (q *QuestionPostgreSQL) GetVersion(ctx context.Context, questionID uint, version int) (*models.QuestionVersion, error) {
	var v models.QuestionVersion
	err := q.db.WithContext(ctx).
		Where("question_id = ? AND version = ?", questionID, version).
		First(&v).Error
	if err != nil {
		return nil, translate(err)
	}
	return &v, nil
}

func (q *QuestionPostgreSQL) GetLatestVersion(ctx context.Context, questionID uint) (*models.QuestionVersion, error) {
	var question models.Question
	if err := q.db.WithContext(ctx).Unscoped().First(&question, questionID).Error; err != nil {
		return nil, translate(err)
	}
	if question.LatestVersion == 0 {
		return nil, repositories.ErrRecordNotFound
	}
	return q.GetVersion(ctx, questionID, question.LatestVersion)
}

func (q *QuestionPostgreSQL) SoftDelete(ctx context.Context, id uint) error {
	result := q.db.WithContext(ctx).Delete(&models.Question{}, id)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return repositories.ErrRecordNotFound
	}
	return nil
}

func (q *QuestionPostgreSQL) HasPinnedAttempt(ctx context.Context, userID, questionID uint, version int) (bool, error) {
	var count int64
	err := q.db.WithContext(ctx).
		Table("attempt_questions").
		Joins("JOIN attempts ON attempts.id = attempt_questions.attempt_id").
		Where("attempts.user_id = ? AND attempt_questions.question_id = ? AND attempt_questions.question_version = ?",
			userID, questionID, version).
		Count(&count).Error
	if err != nil {
		return false, translate(err)
	}
	return count > 0, nil
}
