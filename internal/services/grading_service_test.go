package services

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/campus-stack/testing-service/internal/authz"
	"github.com/campus-stack/testing-service/internal/models"
	"github.com/campus-stack/testing-service/internal/repositories"
	"github.com/stretchr/testify/assert"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func gradedRow(questionID uint, answer, correct int) repositories.AnswerWithVersion {
	return repositories.AnswerWithVersion{
		QuestionID:      questionID,
		QuestionVersion: 1,
		AnswerIndex:     answer,
		CorrectIndex:    correct,
		Options:         []string{"a", "b", "c", "d"},
	}
}

func TestComputeGrade(t *testing.T) {
	tests := []struct {
		name    string
		rows    []repositories.AnswerWithVersion
		correct int
		percent int
	}{
		{
			name:    "empty attempt grades to zero",
			rows:    nil,
			correct: 0,
			percent: 0,
		},
		{
			name: "all correct",
			rows: []repositories.AnswerWithVersion{
				gradedRow(1, 2, 2),
				gradedRow(2, 0, 0),
			},
			correct: 2,
			percent: 100,
		},
		{
			name: "mixed answers grade to fifty",
			rows: []repositories.AnswerWithVersion{
				gradedRow(1, 1, 1),
				gradedRow(2, models.AnswerUnanswered, 0),
				gradedRow(3, 2, 2),
				gradedRow(4, 0, 1),
			},
			correct: 2,
			percent: 50,
		},
		{
			name: "one of three rounds to thirty three",
			rows: []repositories.AnswerWithVersion{
				gradedRow(1, 1, 1),
				gradedRow(2, 0, 1),
				gradedRow(3, 0, 1),
			},
			correct: 1,
			percent: 33,
		},
		{
			name: "two of three rounds to sixty seven",
			rows: []repositories.AnswerWithVersion{
				gradedRow(1, 1, 1),
				gradedRow(2, 1, 1),
				gradedRow(3, 0, 1),
			},
			correct: 2,
			percent: 67,
		},
		{
			name: "unanswered slot is never correct",
			rows: []repositories.AnswerWithVersion{
				gradedRow(1, models.AnswerUnanswered, 0),
				gradedRow(2, 1, 1),
			},
			correct: 1,
			percent: 50,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ComputeGrade(tt.rows)

			assert.Equal(t, tt.correct, result.Correct)
			assert.Equal(t, len(tt.rows), result.Total)
			assert.Equal(t, tt.percent, result.Percent)
		})
	}
}

// The unanswered sentinel must not match a hostile correct index of -1.
func TestComputeGrade_UnansweredNeverMatchesNegativeCorrectIndex(t *testing.T) {
	rows := []repositories.AnswerWithVersion{
		{QuestionID: 1, AnswerIndex: models.AnswerUnanswered, CorrectIndex: -1},
	}

	result := ComputeGrade(rows)

	assert.Equal(t, 0, result.Correct)
	assert.Equal(t, 0, result.Percent)
}

func TestGradingService_Grade_OwnerReadsOwnAttempt(t *testing.T) {
	repo := NewMockRepository()
	svc := NewGradingService(repo, authz.NewEngine(), testLogger())
	ctx := context.Background()

	attempt := &models.Attempt{ID: 10, TestID: 5, UserID: 42, Status: models.AttemptStatusFinished}
	repo.attempt.On("GetByID", ctx, uint(10)).Return(attempt, nil)
	repo.test.On("GetWithCourse", ctx, uint(5)).Return(
		&models.Test{ID: 5, CourseID: 3, AuthorID: 7},
		&models.Course{ID: 3, TeacherID: 7},
		nil)
	repo.attempt.On("AnswersWithVersions", ctx, uint(10)).Return([]repositories.AnswerWithVersion{
		gradedRow(1, 2, 2),
		gradedRow(2, 0, 1),
	}, nil)

	actor := authz.Actor{UserID: 42, Permissions: authz.NewPermissionSet(nil)}
	grade, err := svc.Grade(ctx, actor, 10)

	assert.NoError(t, err)
	assert.Equal(t, uint(10), grade.AttemptID)
	assert.Equal(t, 1, grade.Correct)
	assert.Equal(t, 2, grade.Total)
	assert.Equal(t, 50, grade.Percent)
}

func TestGradingService_Grade_StrangerDenied(t *testing.T) {
	repo := NewMockRepository()
	svc := NewGradingService(repo, authz.NewEngine(), testLogger())
	ctx := context.Background()

	attempt := &models.Attempt{ID: 10, TestID: 5, UserID: 42}
	repo.attempt.On("GetByID", ctx, uint(10)).Return(attempt, nil)
	repo.test.On("GetWithCourse", ctx, uint(5)).Return(
		&models.Test{ID: 5, CourseID: 3, AuthorID: 7},
		&models.Course{ID: 3, TeacherID: 7},
		nil)

	actor := authz.Actor{UserID: 99, Permissions: authz.NewPermissionSet(nil)}
	_, err := svc.Grade(ctx, actor, 10)

	assert.Error(t, err)
	assert.True(t, IsForbidden(err))

	var pe *PermissionError
	assert.ErrorAs(t, err, &pe)
	assert.Equal(t, authz.PermTestAnswerRead, pe.RequiredPermission)
}

func TestGradingService_Grade_TeacherReadsStudentAttempt(t *testing.T) {
	repo := NewMockRepository()
	svc := NewGradingService(repo, authz.NewEngine(), testLogger())
	ctx := context.Background()

	attempt := &models.Attempt{ID: 10, TestID: 5, UserID: 42, Status: models.AttemptStatusInProgress}
	repo.attempt.On("GetByID", ctx, uint(10)).Return(attempt, nil)
	repo.test.On("GetWithCourse", ctx, uint(5)).Return(
		&models.Test{ID: 5, CourseID: 3, AuthorID: 7},
		&models.Course{ID: 3, TeacherID: 7},
		nil)
	repo.attempt.On("AnswersWithVersions", ctx, uint(10)).Return([]repositories.AnswerWithVersion{}, nil)

	actor := authz.Actor{UserID: 7, Permissions: authz.NewPermissionSet(nil)}
	grade, err := svc.Grade(ctx, actor, 10)

	assert.NoError(t, err)
	assert.Equal(t, 0, grade.Percent)
}

func TestGradingService_Review_ResolvesPinnedOptions(t *testing.T) {
	repo := NewMockRepository()
	svc := NewGradingService(repo, authz.NewEngine(), testLogger())
	ctx := context.Background()

	attempt := &models.Attempt{ID: 10, TestID: 5, UserID: 42, Status: models.AttemptStatusFinished}
	repo.attempt.On("GetByID", ctx, uint(10)).Return(attempt, nil)
	repo.test.On("GetWithCourse", ctx, uint(5)).Return(
		&models.Test{ID: 5, CourseID: 3},
		&models.Course{ID: 3, TeacherID: 7},
		nil)
	repo.attempt.On("AnswersWithVersions", ctx, uint(10)).Return([]repositories.AnswerWithVersion{
		{
			QuestionID:      1,
			QuestionVersion: 2,
			Position:        0,
			Title:           "Capitals",
			Options:         []string{"Oslo", "Bergen"},
			AnswerIndex:     0,
			CorrectIndex:    0,
		},
		{
			QuestionID:      2,
			QuestionVersion: 1,
			Position:        1,
			Title:           "Rivers",
			Options:         []string{"Rhine", "Danube", "Volga"},
			AnswerIndex:     models.AnswerUnanswered,
			CorrectIndex:    2,
		},
	}, nil)

	actor := authz.Actor{UserID: 42, Permissions: authz.NewPermissionSet(nil)}
	review, err := svc.Review(ctx, actor, 10)

	assert.NoError(t, err)
	assert.Len(t, review.Items, 2)
	assert.Equal(t, 50, review.Grade.Percent)

	first := review.Items[0]
	assert.True(t, first.IsCorrect)
	assert.NotNil(t, first.ChosenOption)
	assert.Equal(t, "Oslo", *first.ChosenOption)
	assert.Equal(t, "Oslo", first.CorrectOption)

	second := review.Items[1]
	assert.False(t, second.IsCorrect)
	assert.Nil(t, second.ChosenOption)
	assert.Equal(t, "Volga", second.CorrectOption)
	assert.Equal(t, 2, second.Version, "review must keep the pinned version, not the latest")
}

func TestGradingService_TestStats_AveragesFinishedOnly(t *testing.T) {
	repo := NewMockRepository()
	svc := NewGradingService(repo, authz.NewEngine(), testLogger())
	ctx := context.Background()

	repo.test.On("GetWithCourse", ctx, uint(5)).Return(
		&models.Test{ID: 5, CourseID: 3},
		&models.Course{ID: 3, TeacherID: 7},
		nil)
	repo.attempt.On("ListByTest", ctx, uint(5)).Return([]*models.Attempt{
		{ID: 1, TestID: 5, UserID: 41, Status: models.AttemptStatusFinished},
		{ID: 2, TestID: 5, UserID: 42, Status: models.AttemptStatusInProgress},
		{ID: 3, TestID: 5, UserID: 43, Status: models.AttemptStatusFinished},
	}, nil)
	repo.attempt.On("AnswersWithVersions", ctx, uint(1)).Return([]repositories.AnswerWithVersion{
		gradedRow(1, 0, 0),
		gradedRow(2, 0, 0),
	}, nil)
	repo.attempt.On("AnswersWithVersions", ctx, uint(3)).Return([]repositories.AnswerWithVersion{
		gradedRow(1, 1, 0),
		gradedRow(2, 0, 0),
	}, nil)

	actor := authz.Actor{UserID: 7, Permissions: authz.NewPermissionSet(nil)}
	stats, err := svc.TestStats(ctx, actor, 5)

	assert.NoError(t, err)
	assert.Equal(t, 3, stats.AttemptCount)
	assert.Equal(t, 2, stats.FinishedCount)
	assert.InDelta(t, 75.0, stats.AveragePercent, 0.001)

	repo.attempt.AssertNotCalled(t, "AnswersWithVersions", ctx, uint(2))
}
