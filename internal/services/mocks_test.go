package services

import (
	"context"
	"time"

	"github.com/campus-stack/testing-service/internal/models"
	"github.com/campus-stack/testing-service/internal/repositories"
	"github.com/stretchr/testify/mock"
)

// ===== REPOSITORY MOCKS =====

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context) ([]*models.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}

func (m *MockUserRepository) UpdateFullName(ctx context.Context, id uint, fullName string) error {
	args := m.Called(ctx, id, fullName)
	return args.Error(0)
}

func (m *MockUserRepository) SetBlocked(ctx context.Context, id uint, blocked bool) error {
	args := m.Called(ctx, id, blocked)
	return args.Error(0)
}

func (m *MockUserRepository) Roles(ctx context.Context, userID uint) ([]models.Role, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Role), args.Error(1)
}

func (m *MockUserRepository) SetRoles(ctx context.Context, userID uint, roles []models.Role) error {
	args := m.Called(ctx, userID, roles)
	return args.Error(0)
}

func (m *MockUserRepository) TestsForUser(ctx context.Context, userID uint) ([]repositories.UserTestRow, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repositories.UserTestRow), args.Error(1)
}

type MockCourseRepository struct {
	mock.Mock
}

func (m *MockCourseRepository) Create(ctx context.Context, course *models.Course) error {
	args := m.Called(ctx, course)
	return args.Error(0)
}

func (m *MockCourseRepository) GetByID(ctx context.Context, id uint) (*models.Course, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Course), args.Error(1)
}

func (m *MockCourseRepository) List(ctx context.Context) ([]*models.Course, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Course), args.Error(1)
}

func (m *MockCourseRepository) Update(ctx context.Context, course *models.Course) error {
	args := m.Called(ctx, course)
	return args.Error(0)
}

func (m *MockCourseRepository) SoftDelete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCourseRepository) Enroll(ctx context.Context, courseID, userID uint) error {
	args := m.Called(ctx, courseID, userID)
	return args.Error(0)
}

func (m *MockCourseRepository) Unenroll(ctx context.Context, courseID, userID uint) error {
	args := m.Called(ctx, courseID, userID)
	return args.Error(0)
}

func (m *MockCourseRepository) IsEnrolled(ctx context.Context, courseID, userID uint) (bool, error) {
	args := m.Called(ctx, courseID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockCourseRepository) Students(ctx context.Context, courseID uint) ([]uint, error) {
	args := m.Called(ctx, courseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uint), args.Error(1)
}

func (m *MockCourseRepository) CoursesForUser(ctx context.Context, userID uint) ([]*models.Course, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Course), args.Error(1)
}

type MockQuestionRepository struct {
	mock.Mock
}

func (m *MockQuestionRepository) Create(ctx context.Context, question *models.Question, first *models.QuestionVersion) error {
	args := m.Called(ctx, question, first)
	return args.Error(0)
}

func (m *MockQuestionRepository) GetByID(ctx context.Context, id uint) (*models.Question, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Question), args.Error(1)
}

func (m *MockQuestionRepository) ListWithLatest(ctx context.Context, filters repositories.QuestionFilters) ([]repositories.QuestionListRow, error) {
	args := m.Called(ctx, filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repositories.QuestionListRow), args.Error(1)
}

func (m *MockQuestionRepository) CreateVersion(ctx context.Context, questionID uint, version *models.QuestionVersion) (int, error) {
	args := m.Called(ctx, questionID, version)
	return args.Int(0), args.Error(1)
}

func (m *MockQuestionRepository) GetVersion(ctx context.Context, questionID uint, version int) (*models.QuestionVersion, error) {
	args := m.Called(ctx, questionID, version)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.QuestionVersion), args.Error(1)
}

func (m *MockQuestionRepository) GetLatestVersion(ctx context.Context, questionID uint) (*models.QuestionVersion, error) {
	args := m.Called(ctx, questionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.QuestionVersion), args.Error(1)
}

func (m *MockQuestionRepository) SoftDelete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockQuestionRepository) HasPinnedAttempt(ctx context.Context, userID, questionID uint, version int) (bool, error) {
	args := m.Called(ctx, userID, questionID, version)
	return args.Bool(0), args.Error(1)
}

type MockTestRepository struct {
	mock.Mock
}

func (m *MockTestRepository) Create(ctx context.Context, test *models.Test) error {
	args := m.Called(ctx, test)
	return args.Error(0)
}

func (m *MockTestRepository) GetByID(ctx context.Context, id uint) (*models.Test, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Test), args.Error(1)
}

func (m *MockTestRepository) GetWithCourse(ctx context.Context, id uint) (*models.Test, *models.Course, error) {
	args := m.Called(ctx, id)
	var test *models.Test
	var course *models.Course
	if args.Get(0) != nil {
		test = args.Get(0).(*models.Test)
	}
	if args.Get(1) != nil {
		course = args.Get(1).(*models.Course)
	}
	return test, course, args.Error(2)
}

func (m *MockTestRepository) ListByCourse(ctx context.Context, courseID uint) ([]*models.Test, error) {
	args := m.Called(ctx, courseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Test), args.Error(1)
}

func (m *MockTestRepository) SetActive(ctx context.Context, id uint, active bool) error {
	args := m.Called(ctx, id, active)
	return args.Error(0)
}

func (m *MockTestRepository) SoftDelete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTestRepository) Questions(ctx context.Context, testID uint) ([]models.TestQuestion, error) {
	args := m.Called(ctx, testID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.TestQuestion), args.Error(1)
}

func (m *MockTestRepository) AddQuestion(ctx context.Context, testID, questionID uint) (int, error) {
	args := m.Called(ctx, testID, questionID)
	return args.Int(0), args.Error(1)
}

func (m *MockTestRepository) RemoveQuestion(ctx context.Context, testID, questionID uint) error {
	args := m.Called(ctx, testID, questionID)
	return args.Error(0)
}

func (m *MockTestRepository) Reorder(ctx context.Context, testID uint, order []uint) error {
	args := m.Called(ctx, testID, order)
	return args.Error(0)
}

func (m *MockTestRepository) HasAttempts(ctx context.Context, testID uint) (bool, error) {
	args := m.Called(ctx, testID)
	return args.Bool(0), args.Error(1)
}

type MockAttemptRepository struct {
	mock.Mock
}

func (m *MockAttemptRepository) CreateWithSnapshot(ctx context.Context, attempt *models.Attempt, snapshot []models.AttemptQuestion, answers []models.Answer) error {
	args := m.Called(ctx, attempt, snapshot, answers)
	return args.Error(0)
}

func (m *MockAttemptRepository) GetByID(ctx context.Context, id uint) (*models.Attempt, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Attempt), args.Error(1)
}

func (m *MockAttemptRepository) GetByTestAndUser(ctx context.Context, testID, userID uint) (*models.Attempt, error) {
	args := m.Called(ctx, testID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Attempt), args.Error(1)
}

func (m *MockAttemptRepository) ListByTest(ctx context.Context, testID uint) ([]*models.Attempt, error) {
	args := m.Called(ctx, testID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Attempt), args.Error(1)
}

func (m *MockAttemptRepository) Questions(ctx context.Context, attemptID uint) ([]models.AttemptQuestion, error) {
	args := m.Called(ctx, attemptID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.AttemptQuestion), args.Error(1)
}

func (m *MockAttemptRepository) Answers(ctx context.Context, attemptID uint) ([]models.Answer, error) {
	args := m.Called(ctx, attemptID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Answer), args.Error(1)
}

func (m *MockAttemptRepository) GetAnswer(ctx context.Context, answerID uint) (*models.Answer, error) {
	args := m.Called(ctx, answerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Answer), args.Error(1)
}

func (m *MockAttemptRepository) UpdateAnswerIndex(ctx context.Context, answerID uint, index int) error {
	args := m.Called(ctx, answerID, index)
	return args.Error(0)
}

func (m *MockAttemptRepository) AnswersWithVersions(ctx context.Context, attemptID uint) ([]repositories.AnswerWithVersion, error) {
	args := m.Called(ctx, attemptID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repositories.AnswerWithVersion), args.Error(1)
}

func (m *MockAttemptRepository) Finish(ctx context.Context, id uint, finishedAt time.Time) (bool, error) {
	args := m.Called(ctx, id, finishedAt)
	return args.Bool(0), args.Error(1)
}

type MockNotificationRepository struct {
	mock.Mock
}

func (m *MockNotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func (m *MockNotificationRepository) ListByUser(ctx context.Context, userID uint) ([]*models.Notification, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Notification), args.Error(1)
}

func (m *MockNotificationRepository) DeleteByUser(ctx context.Context, userID uint) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// MockRepository aggregates the entity mocks behind the Repository
// interface, mirroring how the postgres implementation is wired.
type MockRepository struct {
	user         *MockUserRepository
	course       *MockCourseRepository
	question     *MockQuestionRepository
	test         *MockTestRepository
	attempt      *MockAttemptRepository
	notification *MockNotificationRepository
}

func NewMockRepository() *MockRepository {
	return &MockRepository{
		user:         &MockUserRepository{},
		course:       &MockCourseRepository{},
		question:     &MockQuestionRepository{},
		test:         &MockTestRepository{},
		attempt:      &MockAttemptRepository{},
		notification: &MockNotificationRepository{},
	}
}

func (m *MockRepository) User() repositories.UserRepository                 { return m.user }
func (m *MockRepository) Course() repositories.CourseRepository             { return m.course }
func (m *MockRepository) Question() repositories.QuestionRepository         { return m.question }
func (m *MockRepository) Test() repositories.TestRepository                 { return m.test }
func (m *MockRepository) Attempt() repositories.AttemptRepository           { return m.attempt }
func (m *MockRepository) Notification() repositories.NotificationRepository { return m.notification }
