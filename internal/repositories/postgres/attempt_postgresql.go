package postgres

import (
	"context"
	"sort"
	"time"

	"github.com/campus-stack/testing-service/internal/models"
	"github.com/campus-stack/testing-service/internal/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AttemptPostgreSQL struct {
	db *gorm.DB
}

func NewAttemptPostgreSQL(db *gorm.DB) *AttemptPostgreSQL {
	return &AttemptPostgreSQL{db: db}
}

func (a *AttemptPostgreSQL) CreateWithSnapshot(ctx context.Context, attempt *models.Attempt, snapshot []models.AttemptQuestion, answers []models.Answer) error {
	err := a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Composition writers take the test row FOR UPDATE, so a share
		// lock here serializes against them while letting attempts for
		// other users of the same test proceed. The re-read below catches
		// a composition commit that slipped in after the caller pinned.
		var test models.Test
		if err := tx.Clauses(clause.Locking{Strength: "SHARE"}).
			First(&test, attempt.TestID).Error; err != nil {
			return err
		}
		var current []models.TestQuestion
		if err := tx.Where("test_id = ?", attempt.TestID).
			Order("position").
			Find(&current).Error; err != nil {
			return err
		}
		if !snapshotMatches(current, snapshot) {
			return repositories.ErrStaleSnapshot
		}

		if err := tx.Create(attempt).Error; err != nil {
			return err
		}

		for i := range snapshot {
			snapshot[i].AttemptID = attempt.ID
		}
		if err := tx.Create(&snapshot).Error; err != nil {
			return err
		}

		for i := range answers {
			answers[i].AttemptID = attempt.ID
		}
		return tx.Create(&answers).Error
	})
	return translate(err)
}

// snapshotMatches reports whether the pinned snapshot still mirrors the
// committed composition, question for question and position for position.
func snapshotMatches(current []models.TestQuestion, snapshot []models.AttemptQuestion) bool {
	if len(current) != len(snapshot) {
		return false
	}
	pinned := make(map[uint]int, len(snapshot))
	for _, sq := range snapshot {
		pinned[sq.QuestionID] = sq.Position
	}
	for _, tq := range current {
		pos, ok := pinned[tq.QuestionID]
		if !ok || pos != tq.Position {
			return false
		}
	}
	return true
}

func (a *AttemptPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Attempt, error) {
	var attempt models.Attempt
	if err := a.db.WithContext(ctx).First(&attempt, id).Error; err != nil {
		return nil, translate(err)
	}
	return &attempt, nil
}

func (a *AttemptPostgreSQL) GetByTestAndUser(ctx context.Context, testID, userID uint) (*models.Attempt, error) {
	var attempt models.Attempt
	err := a.db.WithContext(ctx).
		Where("test_id = ? AND user_id = ?", testID, userID).
		First(&attempt).Error
	if err != nil {
		return nil, translate(err)
	}
	return &attempt, nil
}

func (a *AttemptPostgreSQL) ListByTest(ctx context.Context, testID uint) ([]*models.Attempt, error) {
	var attempts []*models.Attempt
	err := a.db.WithContext(ctx).
		Where("test_id = ?", testID).
		Order("id").
		Find(&attempts).Error
	if err != nil {
		return nil, translate(err)
	}
	return attempts, nil
}

func (a *AttemptPostgreSQL) Questions(ctx context.Context, attemptID uint) ([]models.AttemptQuestion, error) {
	var rows []models.AttemptQuestion
	err := a.db.WithContext(ctx).
		Where("attempt_id = ?", attemptID).
		Order("position").
		Find(&rows).Error
	if err != nil {
		return nil, translate(err)
	}
	return rows, nil
}

func (a *AttemptPostgreSQL) Answers(ctx context.Context, attemptID uint) ([]models.Answer, error) {
	var answers []models.Answer
	err := a.db.WithContext(ctx).
		Where("attempt_id = ?", attemptID).
		Order("question_id").
		Find(&answers).Error
	if err != nil {
		return nil, translate(err)
	}
	return answers, nil
}

func (a *AttemptPostgreSQL) GetAnswer(ctx context.Context, answerID uint) (*models.Answer, error) {
	var answer models.Answer
	if err := a.db.WithContext(ctx).First(&answer, answerID).Error; err != nil {
		return nil, translate(err)
	}
	return &answer, nil
}

func (a *AttemptPostgreSQL) UpdateAnswerIndex(ctx context.Context, answerID uint, index int) error {
	result := a.db.WithContext(ctx).
		Model(&models.Answer{}).
		Where("id = ?", answerID).
		Update("answer_index", index)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return repositories.ErrRecordNotFound
	}
	return nil
}

func (a *AttemptPostgreSQL) AnswersWithVersions(ctx context.Context, attemptID uint) ([]repositories.AnswerWithVersion, error) {
	answers, err := a.Answers(ctx, attemptID)
	if err != nil {
		return nil, err
	}
	if len(answers) == 0 {
		return nil, nil
	}

	snapshot, err := a.Questions(ctx, attemptID)
	if err != nil {
		return nil, err
	}
	positions := make(map[uint]int, len(snapshot))
	for _, sq := range snapshot {
		positions[sq.QuestionID] = sq.Position
	}

	ids := make([]uint, 0, len(answers))
	for _, ans := range answers {
		ids = append(ids, ans.QuestionID)
	}
	var versions []models.QuestionVersion
	if err := a.db.WithContext(ctx).
		Where("question_id IN ?", ids).
		Find(&versions).Error; err != nil {
		return nil, translate(err)
	}

	type key struct {
		questionID uint
		version    int
	}
	byPin := make(map[key]models.QuestionVersion, len(versions))
	for _, v := range versions {
		byPin[key{v.QuestionID, v.Version}] = v
	}

	rows := make([]repositories.AnswerWithVersion, 0, len(answers))
	for _, ans := range answers {
		pinned, ok := byPin[key{ans.QuestionID, ans.QuestionVersion}]
		if !ok {
			return nil, repositories.ErrRecordNotFound
		}
		rows = append(rows, repositories.AnswerWithVersion{
			AnswerID:        ans.ID,
			QuestionID:      ans.QuestionID,
			QuestionVersion: ans.QuestionVersion,
			AnswerIndex:     ans.AnswerIndex,
			Position:        positions[ans.QuestionID],
			Title:           pinned.Title,
			Body:            pinned.Body,
			Options:         pinned.Options,
			CorrectIndex:    pinned.CorrectIndex,
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Position < rows[j].Position })
	return rows, nil
}

// Finish is conditional on status so a lost race still converges: zero
// rows affected with an existing attempt means someone else already
// finished it, which is not an error.
func (a *AttemptPostgreSQL) Finish(ctx context.Context, id uint, finishedAt time.Time) (bool, error) {
	result := a.db.WithContext(ctx).
		Model(&models.Attempt{}).
		Where("id = ? AND status = ?", id, models.AttemptStatusInProgress).
		Updates(map[string]interface{}{
			"status":      models.AttemptStatusFinished,
			"finished_at": finishedAt,
		})
	if result.Error != nil {
		return false, translate(result.Error)
	}
	if result.RowsAffected == 0 {
		var attempt models.Attempt
		if err := a.db.WithContext(ctx).First(&attempt, id).Error; err != nil {
			return false, translate(err)
		}
		return false, nil
	}
	return true, nil
}
