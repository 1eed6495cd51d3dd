package services

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/campus-stack/testing-service/internal/authz"
	"github.com/campus-stack/testing-service/internal/models"
	"github.com/campus-stack/testing-service/internal/repositories"
	"github.com/xuri/excelize/v2"
)

// GradingService recomputes grades from the answer ledger against the
// pinned question versions. Nothing is ever stored; a grade is always a
// pure function of the attempt's rows.
type GradingService interface {
	Grade(ctx context.Context, actor authz.Actor, attemptID uint) (*GradeResponse, error)
	Review(ctx context.Context, actor authz.Actor, attemptID uint) (*ReviewResponse, error)
	TestStats(ctx context.Context, actor authz.Actor, testID uint) (*TestStatsResponse, error)
	// ExportGrades renders every attempt of a test as an .xlsx workbook.
	ExportGrades(ctx context.Context, actor authz.Actor, testID uint) ([]byte, error)
}

// GradeResult is the outcome of grading one attempt.
type GradeResult struct {
	Correct int `json:"correct"`
	Total   int `json:"total"`
	Percent int `json:"percent"`
}

// ComputeGrade counts answers matching the correct index of their pinned
// version. An empty attempt grades to zero percent; unanswered slots
// never count as correct even if a correct index of -1 could be forged.
func ComputeGrade(rows []repositories.AnswerWithVersion) GradeResult {
	result := GradeResult{Total: len(rows)}
	for _, row := range rows {
		if row.AnswerIndex != models.AnswerUnanswered && row.AnswerIndex == row.CorrectIndex {
			result.Correct++
		}
	}
	if result.Total > 0 {
		result.Percent = int(math.Round(100 * float64(result.Correct) / float64(result.Total)))
	}
	return result
}

type GradeResponse struct {
	AttemptID uint                 `json:"attempt_id"`
	Status    models.AttemptStatus `json:"status"`
	GradeResult
}

// ReviewItem pairs one question of the attempt with the chosen and
// correct options, resolved against the pinned version.
type ReviewItem struct {
	QuestionID    uint     `json:"question_id"`
	Version       int      `json:"version"`
	Position      int      `json:"position"`
	Title         string   `json:"title"`
	Body          string   `json:"body"`
	Options       []string `json:"options"`
	AnswerIndex   int      `json:"answer_index"`
	ChosenOption  *string  `json:"chosen_option"`
	CorrectIndex  int      `json:"correct_index"`
	CorrectOption string   `json:"correct_option"`
	IsCorrect     bool     `json:"is_correct"`
}

type ReviewResponse struct {
	AttemptID uint         `json:"attempt_id"`
	Grade     GradeResult  `json:"grade"`
	Items     []ReviewItem `json:"items"`
}

type TestStatsResponse struct {
	TestID         uint    `json:"test_id"`
	AttemptCount   int     `json:"attempt_count"`
	FinishedCount  int     `json:"finished_count"`
	AveragePercent float64 `json:"average_percent"`
}

type gradingService struct {
	repo   repositories.Repository
	engine *authz.Engine
	logger *slog.Logger
}

func NewGradingService(repo repositories.Repository, engine *authz.Engine, logger *slog.Logger) GradingService {
	return &gradingService{
		repo:   repo,
		engine: engine,
		logger: logger,
	}
}

func (s *gradingService) Grade(ctx context.Context, actor authz.Actor, attemptID uint) (*GradeResponse, error) {
	attempt, rows, err := s.gradableAttempt(ctx, actor, attemptID, "grade")
	if err != nil {
		return nil, err
	}
	return &GradeResponse{
		AttemptID:   attempt.ID,
		Status:      attempt.Status,
		GradeResult: ComputeGrade(rows),
	}, nil
}

func (s *gradingService) Review(ctx context.Context, actor authz.Actor, attemptID uint) (*ReviewResponse, error) {
	attempt, rows, err := s.gradableAttempt(ctx, actor, attemptID, "review")
	if err != nil {
		return nil, err
	}

	items := make([]ReviewItem, 0, len(rows))
	for _, row := range rows {
		item := ReviewItem{
			QuestionID:    row.QuestionID,
			Version:       row.QuestionVersion,
			Position:      row.Position,
			Title:         row.Title,
			Body:          row.Body,
			Options:       row.Options,
			AnswerIndex:   row.AnswerIndex,
			CorrectIndex:  row.CorrectIndex,
			CorrectOption: row.Options[row.CorrectIndex],
			IsCorrect:     row.AnswerIndex != models.AnswerUnanswered && row.AnswerIndex == row.CorrectIndex,
		}
		if row.AnswerIndex != models.AnswerUnanswered {
			chosen := row.Options[row.AnswerIndex]
			item.ChosenOption = &chosen
		}
		items = append(items, item)
	}

	return &ReviewResponse{
		AttemptID: attempt.ID,
		Grade:     ComputeGrade(rows),
		Items:     items,
	}, nil
}

func (s *gradingService) TestStats(ctx context.Context, actor authz.Actor, testID uint) (*TestStatsResponse, error) {
	attempts, err := s.teacherAttempts(ctx, actor, testID, "stats")
	if err != nil {
		return nil, err
	}

	stats := &TestStatsResponse{TestID: testID, AttemptCount: len(attempts)}
	var sum int
	for _, attempt := range attempts {
		if attempt.Status != models.AttemptStatusFinished {
			continue
		}
		rows, err := s.repo.Attempt().AnswersWithVersions(ctx, attempt.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to grade attempt %d: %w", attempt.ID, err)
		}
		stats.FinishedCount++
		sum += ComputeGrade(rows).Percent
	}
	if stats.FinishedCount > 0 {
		stats.AveragePercent = float64(sum) / float64(stats.FinishedCount)
	}
	return stats, nil
}

func (s *gradingService) ExportGrades(ctx context.Context, actor authz.Actor, testID uint) ([]byte, error) {
	attempts, err := s.teacherAttempts(ctx, actor, testID, "export")
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	sheetName := "Grades"

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headers := []string{
		"Student ID", "Student Name", "Status", "Started At", "Finished At",
		"Correct", "Total", "Percent",
	}
	for i, header := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
	}

	for rowIndex, attempt := range attempts {
		rows, err := s.repo.Attempt().AnswersWithVersions(ctx, attempt.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to grade attempt %d: %w", attempt.ID, err)
		}
		grade := ComputeGrade(rows)

		name := ""
		if student, err := s.repo.User().GetByID(ctx, attempt.UserID); err == nil {
			name = student.FullName
		}

		row := []interface{}{
			attempt.UserID,
			name,
			string(attempt.Status),
			attempt.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		if attempt.FinishedAt != nil {
			row = append(row, attempt.FinishedAt.Format("2006-01-02 15:04:05"))
		} else {
			row = append(row, "")
		}
		row = append(row, grade.Correct, grade.Total, grade.Percent)

		for colIndex, value := range row {
			cell := fmt.Sprintf("%c%d", 'A'+colIndex, rowIndex+2)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}

	s.logger.Info("Grades exported",
		"test_id", testID,
		"attempts", len(attempts),
		"user_id", actor.UserID)
	return buf.Bytes(), nil
}

// ===== HELPERS =====

func (s *gradingService) gradableAttempt(ctx context.Context, actor authz.Actor, attemptID uint, action string) (*models.Attempt, []repositories.AnswerWithVersion, error) {
	attempt, err := s.repo.Attempt().GetByID(ctx, attemptID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, nil, ErrAttemptNotFound
		}
		return nil, nil, fmt.Errorf("failed to get attempt: %w", err)
	}

	_, course, err := s.repo.Test().GetWithCourse(ctx, attempt.TestID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, nil, ErrTestNotFound
		}
		return nil, nil, fmt.Errorf("failed to get test: %w", err)
	}

	own := authz.Ownership{SubjectID: attempt.UserID, OwnerID: course.TeacherID}
	if decision := s.engine.Authorize(actor, authz.ActionTestAnswersRead, own); !decision.Allowed {
		return nil, nil, NewPermissionError(actor.UserID, attemptID, "attempt", action, decision.RequiredPermission, decision.Reason)
	}

	rows, err := s.repo.Attempt().AnswersWithVersions(ctx, attemptID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load graded answers: %w", err)
	}
	return attempt, rows, nil
}

// teacherAttempts authorizes a cross-student read and lists the test's
// attempts.
func (s *gradingService) teacherAttempts(ctx context.Context, actor authz.Actor, testID uint, action string) ([]*models.Attempt, error) {
	_, course, err := s.repo.Test().GetWithCourse(ctx, testID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTestNotFound
		}
		return nil, fmt.Errorf("failed to get test: %w", err)
	}

	own := authz.Ownership{OwnerID: course.TeacherID}
	if decision := s.engine.Authorize(actor, authz.ActionTestAnswersRead, own); !decision.Allowed {
		return nil, NewPermissionError(actor.UserID, testID, "test", action, decision.RequiredPermission, decision.Reason)
	}

	attempts, err := s.repo.Attempt().ListByTest(ctx, testID)
	if err != nil {
		return nil, fmt.Errorf("failed to list attempts: %w", err)
	}
	return attempts, nil
}
