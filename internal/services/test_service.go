package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/campus-stack/testing-service/internal/authz"
	"github.com/campus-stack/testing-service/internal/events"
	"github.com/campus-stack/testing-service/internal/models"
	"github.com/campus-stack/testing-service/internal/repositories"
	"github.com/campus-stack/testing-service/internal/validator"
)

// TestService manages tests and their ordered question composition.
// Composition is frozen the moment the first attempt exists.
type TestService interface {
	Create(ctx context.Context, actor authz.Actor, courseID uint, req *CreateTestRequest) (*TestResponse, error)
	Get(ctx context.Context, actor authz.Actor, testID uint) (*TestResponse, error)
	ListByCourse(ctx context.Context, actor authz.Actor, courseID uint) ([]*TestResponse, error)
	SetActive(ctx context.Context, actor authz.Actor, testID uint, active bool) error
	Delete(ctx context.Context, actor authz.Actor, testID uint) error

	Questions(ctx context.Context, actor authz.Actor, testID uint) ([]TestQuestionResponse, error)
	AddQuestion(ctx context.Context, actor authz.Actor, testID, questionID uint) (int, error)
	RemoveQuestion(ctx context.Context, actor authz.Actor, testID, questionID uint) error
	Reorder(ctx context.Context, actor authz.Actor, testID uint, order []uint) error
}

type CreateTestRequest struct {
	Name string `json:"name" validate:"required,min=1,max=200"`
}

type TestResponse struct {
	ID       uint   `json:"id"`
	CourseID uint   `json:"course_id"`
	Name     string `json:"name"`
	AuthorID uint   `json:"author_id"`
	IsActive bool   `json:"is_active"`
}

type TestQuestionResponse struct {
	QuestionID uint `json:"question_id"`
	Position   int  `json:"position"`
}

type testService struct {
	repo      repositories.Repository
	engine    *authz.Engine
	validator *validator.Validator
	publisher events.EventPublisher
	logger    *slog.Logger
}

func NewTestService(repo repositories.Repository, engine *authz.Engine, v *validator.Validator, publisher events.EventPublisher, logger *slog.Logger) TestService {
	return &testService{
		repo:      repo,
		engine:    engine,
		validator: v,
		publisher: publisher,
		logger:    logger,
	}
}

func (s *testService) Create(ctx context.Context, actor authz.Actor, courseID uint, req *CreateTestRequest) (*TestResponse, error) {
	course, err := s.getCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if decision := s.engine.Authorize(actor, authz.ActionCourseTestCreate, authz.Ownership{OwnerID: course.TeacherID}); !decision.Allowed {
		return nil, NewPermissionError(actor.UserID, courseID, "test", "create", decision.RequiredPermission, decision.Reason)
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	test := &models.Test{
		CourseID: courseID,
		Name:     req.Name,
		AuthorID: actor.UserID,
	}
	if err := s.repo.Test().Create(ctx, test); err != nil {
		return nil, fmt.Errorf("failed to create test: %w", err)
	}

	s.logger.Info("Test created",
		"test_id", test.ID,
		"course_id", courseID,
		"author_id", actor.UserID)

	return testResponse(test), nil
}

func (s *testService) Get(ctx context.Context, actor authz.Actor, testID uint) (*TestResponse, error) {
	test, course, err := s.getTestWithCourse(ctx, testID)
	if err != nil {
		return nil, err
	}
	own, err := s.readOwnership(ctx, actor, test, course)
	if err != nil {
		return nil, err
	}
	if decision := s.engine.Authorize(actor, authz.ActionCourseTestGet, own); !decision.Allowed {
		return nil, NewPermissionError(actor.UserID, testID, "test", "get", decision.RequiredPermission, decision.Reason)
	}
	return testResponse(test), nil
}

func (s *testService) ListByCourse(ctx context.Context, actor authz.Actor, courseID uint) ([]*TestResponse, error) {
	course, err := s.getCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	enrolled, err := s.repo.Course().IsEnrolled(ctx, courseID, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to check enrollment: %w", err)
	}
	own := authz.Ownership{OwnerID: course.TeacherID, Enrolled: enrolled}
	decision := s.engine.Authorize(actor, authz.ActionCourseTestList, own)
	if !decision.Allowed {
		return nil, NewPermissionError(actor.UserID, courseID, "test", "list", decision.RequiredPermission, decision.Reason)
	}

	tests, err := s.repo.Test().ListByCourse(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tests: %w", err)
	}

	// Students only see tests that are open for taking.
	teacherView := actor.UserID == course.TeacherID || actor.Permissions.Has(authz.PermCourseTestList)
	out := make([]*TestResponse, 0, len(tests))
	for _, t := range tests {
		if !teacherView && !t.IsActive {
			continue
		}
		out = append(out, testResponse(t))
	}
	return out, nil
}

func (s *testService) SetActive(ctx context.Context, actor authz.Actor, testID uint, active bool) error {
	test, course, err := s.getTestWithCourse(ctx, testID)
	if err != nil {
		return err
	}
	if decision := s.engine.Authorize(actor, authz.ActionCourseTestWrite, s.writeOwnership(actor, test, course)); !decision.Allowed {
		return NewPermissionError(actor.UserID, testID, "test", "set_active", decision.RequiredPermission, decision.Reason)
	}

	if test.IsActive == active {
		return nil
	}
	if err := s.repo.Test().SetActive(ctx, testID, active); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrTestNotFound
		}
		return fmt.Errorf("failed to update test: %w", err)
	}

	s.logger.Info("Test activity changed",
		"test_id", testID,
		"active", active,
		"user_id", actor.UserID)

	if active {
		s.announceActivation(ctx, test, course)
	}
	return nil
}

func (s *testService) Delete(ctx context.Context, actor authz.Actor, testID uint) error {
	test, course, err := s.getTestWithCourse(ctx, testID)
	if err != nil {
		return err
	}
	if decision := s.engine.Authorize(actor, authz.ActionCourseTestDelete, s.writeOwnership(actor, test, course)); !decision.Allowed {
		return NewPermissionError(actor.UserID, testID, "test", "delete", decision.RequiredPermission, decision.Reason)
	}

	if err := s.repo.Test().SoftDelete(ctx, testID); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrTestNotFound
		}
		return fmt.Errorf("failed to delete test: %w", err)
	}

	s.logger.Info("Test deleted", "test_id", testID, "user_id", actor.UserID)
	return nil
}

func (s *testService) Questions(ctx context.Context, actor authz.Actor, testID uint) ([]TestQuestionResponse, error) {
	test, course, err := s.getTestWithCourse(ctx, testID)
	if err != nil {
		return nil, err
	}
	own, err := s.readOwnership(ctx, actor, test, course)
	if err != nil {
		return nil, err
	}
	if decision := s.engine.Authorize(actor, authz.ActionCourseTestGet, own); !decision.Allowed {
		return nil, NewPermissionError(actor.UserID, testID, "test", "questions", decision.RequiredPermission, decision.Reason)
	}

	rows, err := s.repo.Test().Questions(ctx, testID)
	if err != nil {
		return nil, fmt.Errorf("failed to list test questions: %w", err)
	}
	out := make([]TestQuestionResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, TestQuestionResponse{QuestionID: row.QuestionID, Position: row.Position})
	}
	return out, nil
}

func (s *testService) AddQuestion(ctx context.Context, actor authz.Actor, testID, questionID uint) (int, error) {
	test, course, err := s.getTestWithCourse(ctx, testID)
	if err != nil {
		return 0, err
	}
	if decision := s.engine.Authorize(actor, authz.ActionTestQuestionAdd, s.writeOwnership(actor, test, course)); !decision.Allowed {
		return 0, NewPermissionError(actor.UserID, testID, "test", "add_question", decision.RequiredPermission, decision.Reason)
	}

	if _, err := s.repo.Question().GetByID(ctx, questionID); err != nil {
		if repositories.IsNotFoundError(err) {
			return 0, ErrQuestionNotFound
		}
		return 0, fmt.Errorf("failed to get question: %w", err)
	}

	position, err := s.repo.Test().AddQuestion(ctx, testID, questionID)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrTestLocked):
			return 0, ErrTestLocked
		case repositories.IsDuplicateError(err):
			return 0, ErrQuestionAlreadyInTest
		case repositories.IsNotFoundError(err):
			return 0, ErrTestNotFound
		}
		return 0, fmt.Errorf("failed to add question to test: %w", err)
	}

	s.logger.Info("Question added to test",
		"test_id", testID,
		"question_id", questionID,
		"position", position,
		"user_id", actor.UserID)
	return position, nil
}

func (s *testService) RemoveQuestion(ctx context.Context, actor authz.Actor, testID, questionID uint) error {
	test, course, err := s.getTestWithCourse(ctx, testID)
	if err != nil {
		return err
	}
	if decision := s.engine.Authorize(actor, authz.ActionTestQuestionDel, s.writeOwnership(actor, test, course)); !decision.Allowed {
		return NewPermissionError(actor.UserID, testID, "test", "remove_question", decision.RequiredPermission, decision.Reason)
	}

	if err := s.repo.Test().RemoveQuestion(ctx, testID, questionID); err != nil {
		switch {
		case errors.Is(err, repositories.ErrTestLocked):
			return ErrTestLocked
		case repositories.IsNotFoundError(err):
			return ErrQuestionNotInTest
		}
		return fmt.Errorf("failed to remove question from test: %w", err)
	}

	s.logger.Info("Question removed from test",
		"test_id", testID,
		"question_id", questionID,
		"user_id", actor.UserID)
	return nil
}

func (s *testService) Reorder(ctx context.Context, actor authz.Actor, testID uint, order []uint) error {
	test, course, err := s.getTestWithCourse(ctx, testID)
	if err != nil {
		return err
	}
	if decision := s.engine.Authorize(actor, authz.ActionTestQuestionOrder, s.writeOwnership(actor, test, course)); !decision.Allowed {
		return NewPermissionError(actor.UserID, testID, "test", "reorder", decision.RequiredPermission, decision.Reason)
	}

	if err := s.repo.Test().Reorder(ctx, testID, order); err != nil {
		switch {
		case errors.Is(err, repositories.ErrTestLocked):
			return ErrTestLocked
		case errors.Is(err, repositories.ErrReorderMismatch):
			return ValidationErrors{*NewValidationError("order", err.Error(), order)}
		}
		return fmt.Errorf("failed to reorder test questions: %w", err)
	}

	s.logger.Info("Test questions reordered", "test_id", testID, "user_id", actor.UserID)
	return nil
}

// ===== HELPERS =====

func (s *testService) getCourse(ctx context.Context, courseID uint) (*models.Course, error) {
	course, err := s.repo.Course().GetByID(ctx, courseID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}
	return course, nil
}

func (s *testService) getTestWithCourse(ctx context.Context, testID uint) (*models.Test, *models.Course, error) {
	test, course, err := s.repo.Test().GetWithCourse(ctx, testID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, nil, ErrTestNotFound
		}
		return nil, nil, fmt.Errorf("failed to get test: %w", err)
	}
	return test, course, nil
}

// writeOwnership treats the test author and the course teacher both as
// owners for write-side decisions.
func (s *testService) writeOwnership(actor authz.Actor, test *models.Test, course *models.Course) authz.Ownership {
	owner := test.AuthorID
	if actor.UserID == course.TeacherID {
		owner = course.TeacherID
	}
	return authz.Ownership{OwnerID: owner}
}

func (s *testService) readOwnership(ctx context.Context, actor authz.Actor, test *models.Test, course *models.Course) (authz.Ownership, error) {
	own := s.writeOwnership(actor, test, course)
	enrolled, err := s.repo.Course().IsEnrolled(ctx, test.CourseID, actor.UserID)
	if err != nil {
		return own, fmt.Errorf("failed to check enrollment: %w", err)
	}
	// An enrolled student only sees the test once it is open.
	own.Enrolled = enrolled && test.IsActive
	return own, nil
}

func (s *testService) announceActivation(ctx context.Context, test *models.Test, course *models.Course) {
	students, err := s.repo.Course().Students(ctx, test.CourseID)
	if err != nil {
		s.logger.Error("Failed to load course students for activation event",
			"test_id", test.ID, "error", err)
		return
	}

	event := events.NewTestActivatedEvent(test.ID, test.Name, test.CourseID, students, course.TeacherID)
	if err := s.publisher.PublishNotificationEvent(ctx, event); err != nil {
		// Activation already committed; the event is best effort.
		s.logger.Error("Failed to publish test activation event",
			"test_id", test.ID, "error", err)
	}
}

func testResponse(t *models.Test) *TestResponse {
	return &TestResponse{
		ID:       t.ID,
		CourseID: t.CourseID,
		Name:     t.Name,
		AuthorID: t.AuthorID,
		IsActive: t.IsActive,
	}
}
