package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/campus-stack/testing-service/internal/authz"
	"github.com/campus-stack/testing-service/internal/cache"
	"github.com/campus-stack/testing-service/internal/events"
	"github.com/campus-stack/testing-service/internal/models"
	"github.com/campus-stack/testing-service/internal/repositories"
)

// AttemptService manages the attempt lifecycle and the answer ledger.
// Starting an attempt pins the test's question versions; everything
// afterwards (answers, grading, review) resolves against those pins.
type AttemptService interface {
	// Start creates the attempt for (test, actor) or returns the existing
	// one; at most one attempt per pair ever exists.
	Start(ctx context.Context, actor authz.Actor, testID uint) (*AttemptResponse, error)
	Get(ctx context.Context, actor authz.Actor, attemptID uint) (*AttemptResponse, error)
	ListByTest(ctx context.Context, actor authz.Actor, testID uint) ([]*AttemptSummary, error)
	Finish(ctx context.Context, actor authz.Actor, attemptID uint) (*AttemptSummary, error)

	SetAnswer(ctx context.Context, actor authz.Actor, attemptID, questionID uint, answerIndex int) error
	ClearAnswer(ctx context.Context, actor authz.Actor, attemptID, questionID uint) error
	ListAnswers(ctx context.Context, actor authz.Actor, attemptID uint) ([]AnswerView, error)
}

type AttemptResponse struct {
	ID         uint                  `json:"id"`
	TestID     uint                  `json:"test_id"`
	UserID     uint                  `json:"user_id"`
	Status     models.AttemptStatus  `json:"status"`
	CreatedAt  time.Time             `json:"created_at"`
	FinishedAt *time.Time            `json:"finished_at,omitempty"`
	Questions  []AttemptQuestionView `json:"questions"`
	Answers    []AnswerView          `json:"answers"`
}

type AttemptSummary struct {
	ID         uint                 `json:"id"`
	TestID     uint                 `json:"test_id"`
	UserID     uint                 `json:"user_id"`
	Status     models.AttemptStatus `json:"status"`
	CreatedAt  time.Time            `json:"created_at"`
	FinishedAt *time.Time           `json:"finished_at,omitempty"`
}

// AttemptQuestionView is pinned question content as shown to the test
// taker; the answer key never appears here.
type AttemptQuestionView struct {
	QuestionID uint     `json:"question_id"`
	Version    int      `json:"version"`
	Position   int      `json:"position"`
	Title      string   `json:"title"`
	Body       string   `json:"body"`
	Options    []string `json:"options"`
}

type AnswerView struct {
	QuestionID  uint `json:"question_id"`
	AnswerIndex int  `json:"answer_index"`
}

type attemptService struct {
	repo      repositories.Repository
	engine    *authz.Engine
	versions  *cache.VersionCache
	publisher events.EventPublisher
	logger    *slog.Logger
}

func NewAttemptService(repo repositories.Repository, engine *authz.Engine, versions *cache.VersionCache, publisher events.EventPublisher, logger *slog.Logger) AttemptService {
	return &attemptService{
		repo:      repo,
		engine:    engine,
		versions:  versions,
		publisher: publisher,
		logger:    logger,
	}
}

// ===== LIFECYCLE =====

func (s *attemptService) Start(ctx context.Context, actor authz.Actor, testID uint) (*AttemptResponse, error) {
	test, course, err := s.getTestWithCourse(ctx, testID)
	if err != nil {
		return nil, err
	}

	enrolled, err := s.repo.Course().IsEnrolled(ctx, test.CourseID, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to check enrollment: %w", err)
	}
	own := authz.Ownership{OwnerID: course.TeacherID, Enrolled: enrolled && test.IsActive}
	if decision := s.engine.Authorize(actor, authz.ActionCourseTestGet, own); !decision.Allowed {
		return nil, NewPermissionError(actor.UserID, testID, "test", "start_attempt", decision.RequiredPermission, decision.Reason)
	}

	// Re-take is a no-op: the one attempt per (test, user) wins forever.
	if existing, err := s.repo.Attempt().GetByTestAndUser(ctx, testID, actor.UserID); err == nil {
		return s.buildResponse(ctx, existing)
	} else if !repositories.IsNotFoundError(err) {
		return nil, fmt.Errorf("failed to check existing attempt: %w", err)
	}

	if !test.IsActive {
		return nil, ErrTestNotActive
	}

	// The store rejects the insert with ErrStaleSnapshot when the
	// composition changed between the read here and the commit, so a
	// bounded retry re-pins against the fresh membership.
	var attempt *models.Attempt
	for tries := 0; ; tries++ {
		composition, err := s.repo.Test().Questions(ctx, testID)
		if err != nil {
			return nil, fmt.Errorf("failed to load test questions: %w", err)
		}
		if len(composition) == 0 {
			return nil, ErrTestEmpty
		}

		attempt = &models.Attempt{
			TestID: testID,
			UserID: actor.UserID,
			Status: models.AttemptStatusInProgress,
		}
		snapshot := make([]models.AttemptQuestion, 0, len(composition))
		answers := make([]models.Answer, 0, len(composition))
		for _, tq := range composition {
			latest, err := s.repo.Question().GetLatestVersion(ctx, tq.QuestionID)
			if err != nil {
				return nil, fmt.Errorf("failed to resolve latest version of question %d: %w", tq.QuestionID, err)
			}
			snapshot = append(snapshot, models.AttemptQuestion{
				QuestionID:      tq.QuestionID,
				QuestionVersion: latest.Version,
				Position:        tq.Position,
			})
			answers = append(answers, models.Answer{
				QuestionID:      tq.QuestionID,
				QuestionVersion: latest.Version,
				AnswerIndex:     models.AnswerUnanswered,
			})
		}

		err = s.repo.Attempt().CreateWithSnapshot(ctx, attempt, snapshot, answers)
		if err == nil {
			break
		}
		if repositories.IsDuplicateError(err) {
			// Lost the race against another start for the same pair; the
			// winner's attempt is the canonical one.
			existing, err := s.repo.Attempt().GetByTestAndUser(ctx, testID, actor.UserID)
			if err != nil {
				return nil, fmt.Errorf("failed to load racing attempt: %w", err)
			}
			return s.buildResponse(ctx, existing)
		}
		if errors.Is(err, repositories.ErrStaleSnapshot) && tries < 2 {
			continue
		}
		return nil, fmt.Errorf("failed to create attempt: %w", err)
	}

	s.logger.Info("Attempt started",
		"attempt_id", attempt.ID,
		"test_id", testID,
		"student_id", actor.UserID)

	s.notifyStarted(ctx, attempt, test)
	return s.buildResponse(ctx, attempt)
}

func (s *attemptService) Get(ctx context.Context, actor authz.Actor, attemptID uint) (*AttemptResponse, error) {
	attempt, err := s.authorizeAttemptRead(ctx, actor, attemptID, "get")
	if err != nil {
		return nil, err
	}
	return s.buildResponse(ctx, attempt)
}

func (s *attemptService) ListByTest(ctx context.Context, actor authz.Actor, testID uint) ([]*AttemptSummary, error) {
	_, course, err := s.getTestWithCourse(ctx, testID)
	if err != nil {
		return nil, err
	}
	own := authz.Ownership{OwnerID: course.TeacherID}
	if decision := s.engine.Authorize(actor, authz.ActionTestAnswersRead, own); !decision.Allowed {
		return nil, NewPermissionError(actor.UserID, testID, "attempt", "list", decision.RequiredPermission, decision.Reason)
	}

	attempts, err := s.repo.Attempt().ListByTest(ctx, testID)
	if err != nil {
		return nil, fmt.Errorf("failed to list attempts: %w", err)
	}
	out := make([]*AttemptSummary, 0, len(attempts))
	for _, a := range attempts {
		out = append(out, attemptSummary(a))
	}
	return out, nil
}

func (s *attemptService) Finish(ctx context.Context, actor authz.Actor, attemptID uint) (*AttemptSummary, error) {
	attempt, err := s.getAttempt(ctx, attemptID)
	if err != nil {
		return nil, err
	}
	if attempt.UserID != actor.UserID {
		return nil, NewPermissionError(actor.UserID, attemptID, "attempt", "finish", "", "not the attempt owner")
	}

	// Finishing twice is a no-op, never an error.
	if attempt.Status == models.AttemptStatusFinished {
		return attemptSummary(attempt), nil
	}

	finishedAt := time.Now()
	transitioned, err := s.repo.Attempt().Finish(ctx, attemptID, finishedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to finish attempt: %w", err)
	}

	attempt, err = s.getAttempt(ctx, attemptID)
	if err != nil {
		return nil, err
	}

	if transitioned {
		s.logger.Info("Attempt finished",
			"attempt_id", attemptID,
			"test_id", attempt.TestID,
			"student_id", actor.UserID)
		s.notifyFinished(ctx, attempt)
	}
	return attemptSummary(attempt), nil
}

// ===== ANSWER LEDGER =====

func (s *attemptService) SetAnswer(ctx context.Context, actor authz.Actor, attemptID, questionID uint, answerIndex int) error {
	answer, err := s.writableAnswer(ctx, actor, attemptID, questionID)
	if err != nil {
		return err
	}

	pinned, err := s.loadVersion(ctx, questionID, answer.QuestionVersion)
	if err != nil {
		return err
	}
	if answerIndex < 0 || answerIndex >= len(pinned.Options) {
		return ValidationErrors{*NewValidationError(
			"answer_index",
			fmt.Sprintf("must be between 0 and %d", len(pinned.Options)-1),
			answerIndex)}
	}

	if err := s.repo.Attempt().UpdateAnswerIndex(ctx, answer.ID, answerIndex); err != nil {
		return fmt.Errorf("failed to update answer: %w", err)
	}
	return nil
}

func (s *attemptService) ClearAnswer(ctx context.Context, actor authz.Actor, attemptID, questionID uint) error {
	answer, err := s.writableAnswer(ctx, actor, attemptID, questionID)
	if err != nil {
		return err
	}
	if err := s.repo.Attempt().UpdateAnswerIndex(ctx, answer.ID, models.AnswerUnanswered); err != nil {
		return fmt.Errorf("failed to clear answer: %w", err)
	}
	return nil
}

func (s *attemptService) ListAnswers(ctx context.Context, actor authz.Actor, attemptID uint) ([]AnswerView, error) {
	if _, err := s.authorizeAttemptRead(ctx, actor, attemptID, "list_answers"); err != nil {
		return nil, err
	}

	answers, err := s.repo.Attempt().Answers(ctx, attemptID)
	if err != nil {
		return nil, fmt.Errorf("failed to list answers: %w", err)
	}
	out := make([]AnswerView, 0, len(answers))
	for _, a := range answers {
		out = append(out, AnswerView{QuestionID: a.QuestionID, AnswerIndex: a.AnswerIndex})
	}
	return out, nil
}

// ===== HELPERS =====

func (s *attemptService) getAttempt(ctx context.Context, attemptID uint) (*models.Attempt, error) {
	attempt, err := s.repo.Attempt().GetByID(ctx, attemptID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAttemptNotFound
		}
		return nil, fmt.Errorf("failed to get attempt: %w", err)
	}
	return attempt, nil
}

func (s *attemptService) getTestWithCourse(ctx context.Context, testID uint) (*models.Test, *models.Course, error) {
	test, course, err := s.repo.Test().GetWithCourse(ctx, testID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, nil, ErrTestNotFound
		}
		return nil, nil, fmt.Errorf("failed to get test: %w", err)
	}
	return test, course, nil
}

// authorizeAttemptRead lets the attempt owner, the course teacher and
// holders of the answers-read permission see an attempt.
func (s *attemptService) authorizeAttemptRead(ctx context.Context, actor authz.Actor, attemptID uint, action string) (*models.Attempt, error) {
	attempt, err := s.getAttempt(ctx, attemptID)
	if err != nil {
		return nil, err
	}
	_, course, err := s.getTestWithCourse(ctx, attempt.TestID)
	if err != nil {
		return nil, err
	}

	own := authz.Ownership{SubjectID: attempt.UserID, OwnerID: course.TeacherID}
	if decision := s.engine.Authorize(actor, authz.ActionTestAnswersRead, own); !decision.Allowed {
		return nil, NewPermissionError(actor.UserID, attemptID, "attempt", action, decision.RequiredPermission, decision.Reason)
	}
	return attempt, nil
}

// writableAnswer authorizes a ledger write and resolves the answer row.
func (s *attemptService) writableAnswer(ctx context.Context, actor authz.Actor, attemptID, questionID uint) (*models.Answer, error) {
	attempt, err := s.getAttempt(ctx, attemptID)
	if err != nil {
		return nil, err
	}
	if attempt.UserID != actor.UserID {
		return nil, NewPermissionError(actor.UserID, attemptID, "attempt", "answer", "", "not the attempt owner")
	}
	if attempt.Status != models.AttemptStatusInProgress {
		return nil, ErrAttemptFinished
	}

	answers, err := s.repo.Attempt().Answers(ctx, attemptID)
	if err != nil {
		return nil, fmt.Errorf("failed to load answers: %w", err)
	}
	for i := range answers {
		if answers[i].QuestionID == questionID {
			return &answers[i], nil
		}
	}
	return nil, ErrAnswerNotFound
}

func (s *attemptService) loadVersion(ctx context.Context, questionID uint, version int) (*models.QuestionVersion, error) {
	if v, ok := s.versions.Get(ctx, questionID, version); ok {
		return v, nil
	}
	v, err := s.repo.Question().GetVersion(ctx, questionID, version)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuestionVersionMissing
		}
		return nil, fmt.Errorf("failed to get question version: %w", err)
	}
	s.versions.Put(ctx, v)
	return v, nil
}

func (s *attemptService) buildResponse(ctx context.Context, attempt *models.Attempt) (*AttemptResponse, error) {
	snapshot, err := s.repo.Attempt().Questions(ctx, attempt.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load attempt questions: %w", err)
	}

	questions := make([]AttemptQuestionView, 0, len(snapshot))
	for _, sq := range snapshot {
		pinned, err := s.loadVersion(ctx, sq.QuestionID, sq.QuestionVersion)
		if err != nil {
			return nil, err
		}
		questions = append(questions, AttemptQuestionView{
			QuestionID: sq.QuestionID,
			Version:    sq.QuestionVersion,
			Position:   sq.Position,
			Title:      pinned.Title,
			Body:       pinned.Body,
			Options:    pinned.Options,
		})
	}

	answers, err := s.ListAnswersInternal(ctx, attempt.ID)
	if err != nil {
		return nil, err
	}

	return &AttemptResponse{
		ID:         attempt.ID,
		TestID:     attempt.TestID,
		UserID:     attempt.UserID,
		Status:     attempt.Status,
		CreatedAt:  attempt.CreatedAt,
		FinishedAt: attempt.FinishedAt,
		Questions:  questions,
		Answers:    answers,
	}, nil
}

func attemptSummary(attempt *models.Attempt) *AttemptSummary {
	return &AttemptSummary{
		ID:         attempt.ID,
		TestID:     attempt.TestID,
		UserID:     attempt.UserID,
		Status:     attempt.Status,
		CreatedAt:  attempt.CreatedAt,
		FinishedAt: attempt.FinishedAt,
	}
}

func (s *attemptService) ListAnswersInternal(ctx context.Context, attemptID uint) ([]AnswerView, error) {
	answers, err := s.repo.Attempt().Answers(ctx, attemptID)
	if err != nil {
		return nil, fmt.Errorf("failed to list answers: %w", err)
	}
	out := make([]AnswerView, 0, len(answers))
	for _, a := range answers {
		out = append(out, AnswerView{QuestionID: a.QuestionID, AnswerIndex: a.AnswerIndex})
	}
	return out, nil
}

func (s *attemptService) notifyStarted(ctx context.Context, attempt *models.Attempt, test *models.Test) {
	event := events.NewAttemptStartedEvent(attempt.ID, test.ID, test.Name, attempt.UserID, attempt.CreatedAt)
	if err := s.publisher.PublishNotificationEvent(ctx, event); err != nil {
		s.logger.Error("Failed to publish attempt started event",
			"attempt_id", attempt.ID, "error", err)
	}
	s.persistNotification(ctx, test.AuthorID, models.NotificationAttemptStarted, event.Data)
}

func (s *attemptService) notifyFinished(ctx context.Context, attempt *models.Attempt) {
	test, _, err := s.getTestWithCourse(ctx, attempt.TestID)
	if err != nil {
		s.logger.Error("Failed to load test for finish event",
			"attempt_id", attempt.ID, "error", err)
		return
	}

	rows, err := s.repo.Attempt().AnswersWithVersions(ctx, attempt.ID)
	if err != nil {
		s.logger.Error("Failed to grade finished attempt for event",
			"attempt_id", attempt.ID, "error", err)
		return
	}
	grade := ComputeGrade(rows)

	finishedAt := time.Now()
	if attempt.FinishedAt != nil {
		finishedAt = *attempt.FinishedAt
	}
	event := events.NewAttemptFinishedEvent(attempt.ID, test.ID, test.Name, attempt.UserID, finishedAt, grade.Percent)
	if err := s.publisher.PublishNotificationEvent(ctx, event); err != nil {
		s.logger.Error("Failed to publish attempt finished event",
			"attempt_id", attempt.ID, "error", err)
	}
	s.persistNotification(ctx, test.AuthorID, models.NotificationAttemptFinished, event.Data)
}

func (s *attemptService) persistNotification(ctx context.Context, userID uint, kind models.NotificationType, data interface{}) {
	payload, err := json.Marshal(map[string]interface{}{
		"type": kind,
		"data": data,
	})
	if err != nil {
		s.logger.Error("Failed to marshal notification payload", "error", err)
		return
	}
	n := &models.Notification{UserID: userID, Payload: payload}
	if err := s.repo.Notification().Create(ctx, n); err != nil {
		s.logger.Error("Failed to persist notification",
			"user_id", userID, "error", err)
	}
}
