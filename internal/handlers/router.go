package handlers

import (
	"github.com/campus-stack/testing-service/internal/auth"
	"github.com/campus-stack/testing-service/internal/services"
	"github.com/campus-stack/testing-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type HandlerManager struct {
	userHandler         *UserHandler
	courseHandler       *CourseHandler
	questionHandler     *QuestionHandler
	testHandler         *TestHandler
	attemptHandler      *AttemptHandler
	notificationHandler *NotificationHandler
	authenticator       *auth.Authenticator
}

func NewHandlerManager(
	sm *services.ServiceManager,
	authenticator *auth.Authenticator,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		userHandler:         NewUserHandler(sm.User, logger),
		courseHandler:       NewCourseHandler(sm.Course, sm.Test, logger),
		questionHandler:     NewQuestionHandler(sm.Question, logger),
		testHandler:         NewTestHandler(sm.Test, sm.Attempt, sm.Grading, logger),
		attemptHandler:      NewAttemptHandler(sm.Attempt, sm.Grading, logger),
		notificationHandler: NewNotificationHandler(sm.Notification, logger),
		authenticator:       authenticator,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "testing-service",
		})
	})

	v1 := router.Group("/api/v1")
	v1.Use(auth.Middleware(hm.authenticator))
	{
		users := v1.Group("/users")
		{
			users.GET("", hm.userHandler.ListUsers)
			users.GET("/:id", hm.userHandler.GetUser)
			users.PUT("/:id/full-name", hm.userHandler.SetFullName)
			users.GET("/:id/roles", hm.userHandler.GetRoles)
			users.PUT("/:id/roles", hm.userHandler.SetRoles)
			users.GET("/:id/blocked", hm.userHandler.GetBlocked)
			users.PUT("/:id/blocked", hm.userHandler.SetBlocked)
			users.GET("/:id/data", hm.userHandler.GetUserData)
		}

		courses := v1.Group("/courses")
		{
			courses.POST("", hm.courseHandler.CreateCourse)
			courses.GET("", hm.courseHandler.ListCourses)
			courses.GET("/:id", hm.courseHandler.GetCourse)
			courses.PUT("/:id", hm.courseHandler.UpdateCourse)
			courses.DELETE("/:id", hm.courseHandler.DeleteCourse)

			courses.GET("/:id/students", hm.courseHandler.ListStudents)
			courses.POST("/:id/students/:user_id", hm.courseHandler.EnrollUser)
			courses.DELETE("/:id/students/:user_id", hm.courseHandler.UnenrollUser)

			courses.POST("/:id/tests", hm.courseHandler.CreateTest)
			courses.GET("/:id/tests", hm.courseHandler.ListTests)
		}

		questions := v1.Group("/questions")
		{
			questions.POST("", hm.questionHandler.CreateQuestion)
			questions.GET("", hm.questionHandler.ListQuestions)
			questions.GET("/:id", hm.questionHandler.GetQuestion)
			questions.POST("/:id/versions", hm.questionHandler.ReviseQuestion)
			questions.DELETE("/:id", hm.questionHandler.DeleteQuestion)
		}

		tests := v1.Group("/tests")
		{
			tests.GET("/:id", hm.testHandler.GetTest)
			tests.PUT("/:id/active", hm.testHandler.SetActive)
			tests.DELETE("/:id", hm.testHandler.DeleteTest)

			tests.GET("/:id/questions", hm.testHandler.ListQuestions)
			tests.POST("/:id/questions/:question_id", hm.testHandler.AddQuestion)
			tests.DELETE("/:id/questions/:question_id", hm.testHandler.RemoveQuestion)
			tests.PUT("/:id/questions/reorder", hm.testHandler.ReorderQuestions)

			tests.POST("/:id/attempts", hm.attemptHandler.StartAttempt)
			tests.GET("/:id/attempts", hm.testHandler.ListAttempts)
			tests.GET("/:id/stats", hm.testHandler.GetStats)
			tests.GET("/:id/grades/export", hm.testHandler.ExportGrades)
		}

		attempts := v1.Group("/attempts")
		{
			attempts.GET("/:id", hm.attemptHandler.GetAttempt)
			attempts.POST("/:id/finish", hm.attemptHandler.FinishAttempt)

			attempts.GET("/:id/answers", hm.attemptHandler.ListAnswers)
			attempts.PUT("/:id/answers/:question_id", hm.attemptHandler.SetAnswer)
			attempts.DELETE("/:id/answers/:question_id", hm.attemptHandler.ClearAnswer)

			attempts.GET("/:id/grade", hm.attemptHandler.GetGrade)
			attempts.GET("/:id/review", hm.attemptHandler.GetReview)
		}

		notifications := v1.Group("/notifications")
		{
			notifications.GET("", hm.notificationHandler.ListNotifications)
			notifications.DELETE("", hm.notificationHandler.ClearNotifications)
		}
	}
}
