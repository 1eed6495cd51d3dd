package services

import (
	"log/slog"

	"github.com/campus-stack/testing-service/internal/authz"
	"github.com/campus-stack/testing-service/internal/cache"
	"github.com/campus-stack/testing-service/internal/events"
	"github.com/campus-stack/testing-service/internal/repositories"
	"github.com/campus-stack/testing-service/internal/validator"
)

// ServiceManager bundles the business services behind one constructor so
// wiring stays in a single place.
type ServiceManager struct {
	User         UserService
	Course       CourseService
	Question     QuestionService
	Test         TestService
	Attempt      AttemptService
	Grading      GradingService
	Notification NotificationService
}

func NewServiceManager(
	repo repositories.Repository,
	engine *authz.Engine,
	v *validator.Validator,
	versions *cache.VersionCache,
	publisher events.EventPublisher,
	logger *slog.Logger,
) *ServiceManager {
	return &ServiceManager{
		User:         NewUserService(repo, engine, v, logger),
		Course:       NewCourseService(repo, engine, v, logger),
		Question:     NewQuestionService(repo, engine, v, versions, logger),
		Test:         NewTestService(repo, engine, v, publisher, logger),
		Attempt:      NewAttemptService(repo, engine, versions, publisher, logger),
		Grading:      NewGradingService(repo, engine, logger),
		Notification: NewNotificationService(repo, logger),
	}
}
