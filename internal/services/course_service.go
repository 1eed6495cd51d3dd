package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/campus-stack/testing-service/internal/authz"
	"github.com/campus-stack/testing-service/internal/models"
	"github.com/campus-stack/testing-service/internal/repositories"
	"github.com/campus-stack/testing-service/internal/validator"
)

type CourseService interface {
	Create(ctx context.Context, actor authz.Actor, req *CourseRequest) (*CourseResponse, error)
	Get(ctx context.Context, actor authz.Actor, courseID uint) (*CourseResponse, error)
	List(ctx context.Context, actor authz.Actor) ([]*CourseResponse, error)
	Update(ctx context.Context, actor authz.Actor, courseID uint, req *CourseRequest) (*CourseResponse, error)
	Delete(ctx context.Context, actor authz.Actor, courseID uint) error

	Enroll(ctx context.Context, actor authz.Actor, courseID, userID uint) error
	Unenroll(ctx context.Context, actor authz.Actor, courseID, userID uint) error
	Students(ctx context.Context, actor authz.Actor, courseID uint) ([]uint, error)
}

type CourseRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=200"`
	Description string `json:"description" validate:"max=2000"`
}

type CourseResponse struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	TeacherID   uint   `json:"teacher_id"`
}

type courseService struct {
	repo      repositories.Repository
	engine    *authz.Engine
	validator *validator.Validator
	logger    *slog.Logger
}

func NewCourseService(repo repositories.Repository, engine *authz.Engine, v *validator.Validator, logger *slog.Logger) CourseService {
	return &courseService{
		repo:      repo,
		engine:    engine,
		validator: v,
		logger:    logger,
	}
}

func (s *courseService) Create(ctx context.Context, actor authz.Actor, req *CourseRequest) (*CourseResponse, error) {
	if decision := s.engine.Authorize(actor, authz.ActionCourseCreate, authz.Ownership{}); !decision.Allowed {
		return nil, NewPermissionError(actor.UserID, 0, "course", "create", decision.RequiredPermission, decision.Reason)
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	course := &models.Course{
		Name:        req.Name,
		Description: req.Description,
		TeacherID:   actor.UserID,
	}
	if err := s.repo.Course().Create(ctx, course); err != nil {
		return nil, fmt.Errorf("failed to create course: %w", err)
	}

	s.logger.Info("Course created", "course_id", course.ID, "teacher_id", actor.UserID)
	return courseResponse(course), nil
}

func (s *courseService) Get(ctx context.Context, actor authz.Actor, courseID uint) (*CourseResponse, error) {
	course, err := s.getCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if decision := s.engine.Authorize(actor, authz.ActionCourseGet, authz.Ownership{}); !decision.Allowed {
		return nil, NewPermissionError(actor.UserID, courseID, "course", "get", decision.RequiredPermission, decision.Reason)
	}
	return courseResponse(course), nil
}

func (s *courseService) List(ctx context.Context, actor authz.Actor) ([]*CourseResponse, error) {
	if decision := s.engine.Authorize(actor, authz.ActionCourseList, authz.Ownership{}); !decision.Allowed {
		return nil, NewPermissionError(actor.UserID, 0, "course", "list", decision.RequiredPermission, decision.Reason)
	}

	courses, err := s.repo.Course().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}
	out := make([]*CourseResponse, 0, len(courses))
	for _, c := range courses {
		out = append(out, courseResponse(c))
	}
	return out, nil
}

func (s *courseService) Update(ctx context.Context, actor authz.Actor, courseID uint, req *CourseRequest) (*CourseResponse, error) {
	course, err := s.getCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if decision := s.engine.Authorize(actor, authz.ActionCourseUpdate, authz.Ownership{OwnerID: course.TeacherID}); !decision.Allowed {
		return nil, NewPermissionError(actor.UserID, courseID, "course", "update", decision.RequiredPermission, decision.Reason)
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	course.Name = req.Name
	course.Description = req.Description
	if err := s.repo.Course().Update(ctx, course); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to update course: %w", err)
	}

	s.logger.Info("Course updated", "course_id", courseID, "user_id", actor.UserID)
	return courseResponse(course), nil
}

func (s *courseService) Delete(ctx context.Context, actor authz.Actor, courseID uint) error {
	course, err := s.getCourse(ctx, courseID)
	if err != nil {
		return err
	}
	if decision := s.engine.Authorize(actor, authz.ActionCourseDelete, authz.Ownership{OwnerID: course.TeacherID}); !decision.Allowed {
		return NewPermissionError(actor.UserID, courseID, "course", "delete", decision.RequiredPermission, decision.Reason)
	}

	if err := s.repo.Course().SoftDelete(ctx, courseID); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrCourseNotFound
		}
		return fmt.Errorf("failed to delete course: %w", err)
	}

	s.logger.Info("Course deleted", "course_id", courseID, "user_id", actor.UserID)
	return nil
}

func (s *courseService) Enroll(ctx context.Context, actor authz.Actor, courseID, userID uint) error {
	if _, err := s.getCourse(ctx, courseID); err != nil {
		return err
	}
	if decision := s.engine.Authorize(actor, authz.ActionCourseEnroll, authz.Ownership{SubjectID: userID}); !decision.Allowed {
		return NewPermissionError(actor.UserID, courseID, "course", "enroll", decision.RequiredPermission, decision.Reason)
	}
	if _, err := s.repo.User().GetByID(ctx, userID); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to get user: %w", err)
	}

	if err := s.repo.Course().Enroll(ctx, courseID, userID); err != nil {
		return fmt.Errorf("failed to enroll user: %w", err)
	}

	s.logger.Info("User enrolled",
		"course_id", courseID,
		"user_id", userID,
		"actor_id", actor.UserID)
	return nil
}

func (s *courseService) Unenroll(ctx context.Context, actor authz.Actor, courseID, userID uint) error {
	if _, err := s.getCourse(ctx, courseID); err != nil {
		return err
	}
	if decision := s.engine.Authorize(actor, authz.ActionCourseUnenroll, authz.Ownership{SubjectID: userID}); !decision.Allowed {
		return NewPermissionError(actor.UserID, courseID, "course", "unenroll", decision.RequiredPermission, decision.Reason)
	}

	if err := s.repo.Course().Unenroll(ctx, courseID, userID); err != nil {
		return fmt.Errorf("failed to unenroll user: %w", err)
	}

	s.logger.Info("User unenrolled",
		"course_id", courseID,
		"user_id", userID,
		"actor_id", actor.UserID)
	return nil
}

func (s *courseService) Students(ctx context.Context, actor authz.Actor, courseID uint) ([]uint, error) {
	course, err := s.getCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if decision := s.engine.Authorize(actor, authz.ActionCourseStudents, authz.Ownership{OwnerID: course.TeacherID}); !decision.Allowed {
		return nil, NewPermissionError(actor.UserID, courseID, "course", "students", decision.RequiredPermission, decision.Reason)
	}

	students, err := s.repo.Course().Students(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}
	return students, nil
}

func (s *courseService) getCourse(ctx context.Context, courseID uint) (*models.Course, error) {
	course, err := s.repo.Course().GetByID(ctx, courseID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}
	return course, nil
}

func courseResponse(c *models.Course) *CourseResponse {
	return &CourseResponse{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		TeacherID:   c.TeacherID,
	}
}
