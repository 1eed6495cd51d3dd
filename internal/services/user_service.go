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

type UserService interface {
	List(ctx context.Context, actor authz.Actor) ([]*UserResponse, error)
	Get(ctx context.Context, actor authz.Actor, userID uint) (*UserResponse, error)
	SetFullName(ctx context.Context, actor authz.Actor, userID uint, fullName string) error

	Roles(ctx context.Context, actor authz.Actor, userID uint) ([]models.Role, error)
	SetRoles(ctx context.Context, actor authz.Actor, userID uint, roles []models.Role) error

	GetBlocked(ctx context.Context, actor authz.Actor, userID uint) (bool, error)
	SetBlocked(ctx context.Context, actor authz.Actor, userID uint, blocked bool) error

	// UserData aggregates the user's courses and attempted tests.
	UserData(ctx context.Context, actor authz.Actor, userID uint) (*UserDataResponse, error)
}

type UserResponse struct {
	ID       uint    `json:"id"`
	FullName string  `json:"full_name"`
	Email    *string `json:"email,omitempty"`
}

type SetFullNameRequest struct {
	FullName string `json:"full_name" validate:"required,min=1,max=200"`
}

type UserDataResponse struct {
	User    *UserResponse              `json:"user"`
	Courses []*CourseResponse          `json:"courses"`
	Tests   []repositories.UserTestRow `json:"tests"`
}

type userService struct {
	repo      repositories.Repository
	engine    *authz.Engine
	validator *validator.Validator
	logger    *slog.Logger
}

func NewUserService(repo repositories.Repository, engine *authz.Engine, v *validator.Validator, logger *slog.Logger) UserService {
	return &userService{
		repo:      repo,
		engine:    engine,
		validator: v,
		logger:    logger,
	}
}

func (s *userService) List(ctx context.Context, actor authz.Actor) ([]*UserResponse, error) {
	if decision := s.engine.Authorize(actor, authz.ActionUserList, authz.Ownership{}); !decision.Allowed {
		return nil, NewPermissionError(actor.UserID, 0, "user", "list", decision.RequiredPermission, decision.Reason)
	}

	users, err := s.repo.User().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	out := make([]*UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, userResponse(u))
	}
	return out, nil
}

func (s *userService) Get(ctx context.Context, actor authz.Actor, userID uint) (*UserResponse, error) {
	if decision := s.engine.Authorize(actor, authz.ActionUserGet, authz.Ownership{}); !decision.Allowed {
		return nil, NewPermissionError(actor.UserID, userID, "user", "get", decision.RequiredPermission, decision.Reason)
	}
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := userResponse(user)
	// Email stays private unless the profile is the actor's own.
	if actor.UserID != userID && !actor.Permissions.Has(authz.PermUserDataRead) {
		resp.Email = nil
	}
	return resp, nil
}

func (s *userService) SetFullName(ctx context.Context, actor authz.Actor, userID uint, fullName string) error {
	if decision := s.engine.Authorize(actor, authz.ActionUserSetFullName, authz.Ownership{SubjectID: userID}); !decision.Allowed {
		return NewPermissionError(actor.UserID, userID, "user", "set_full_name", decision.RequiredPermission, decision.Reason)
	}
	if err := s.validator.Validate(&SetFullNameRequest{FullName: fullName}); err != nil {
		return err
	}

	if err := s.repo.User().UpdateFullName(ctx, userID, fullName); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to update full name: %w", err)
	}

	s.logger.Info("User full name updated", "user_id", userID, "actor_id", actor.UserID)
	return nil
}

func (s *userService) Roles(ctx context.Context, actor authz.Actor, userID uint) ([]models.Role, error) {
	if decision := s.engine.Authorize(actor, authz.ActionUserRolesRead, authz.Ownership{SubjectID: userID}); !decision.Allowed {
		return nil, NewPermissionError(actor.UserID, userID, "user", "roles_read", decision.RequiredPermission, decision.Reason)
	}
	if _, err := s.getUser(ctx, userID); err != nil {
		return nil, err
	}

	roles, err := s.repo.User().Roles(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get roles: %w", err)
	}
	return roles, nil
}

func (s *userService) SetRoles(ctx context.Context, actor authz.Actor, userID uint, roles []models.Role) error {
	if decision := s.engine.Authorize(actor, authz.ActionUserRolesWrite, authz.Ownership{}); !decision.Allowed {
		return NewPermissionError(actor.UserID, userID, "user", "roles_write", decision.RequiredPermission, decision.Reason)
	}
	for _, role := range roles {
		if !models.IsValidRole(role) {
			return ValidationErrors{*NewValidationError("roles", "unknown role", string(role))}
		}
	}
	if _, err := s.getUser(ctx, userID); err != nil {
		return err
	}

	if err := s.repo.User().SetRoles(ctx, userID, roles); err != nil {
		return fmt.Errorf("failed to set roles: %w", err)
	}

	s.logger.Info("User roles updated",
		"user_id", userID,
		"roles", roles,
		"actor_id", actor.UserID)
	return nil
}

func (s *userService) GetBlocked(ctx context.Context, actor authz.Actor, userID uint) (bool, error) {
	if decision := s.engine.Authorize(actor, authz.ActionUserBlockRead, authz.Ownership{}); !decision.Allowed {
		return false, NewPermissionError(actor.UserID, userID, "user", "block_read", decision.RequiredPermission, decision.Reason)
	}
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return false, err
	}
	return user.IsBlocked, nil
}

func (s *userService) SetBlocked(ctx context.Context, actor authz.Actor, userID uint, blocked bool) error {
	if decision := s.engine.Authorize(actor, authz.ActionUserBlockWrite, authz.Ownership{}); !decision.Allowed {
		return NewPermissionError(actor.UserID, userID, "user", "block_write", decision.RequiredPermission, decision.Reason)
	}
	// Blocking yourself would lock the account that holds the permission.
	if actor.UserID == userID {
		return ErrSelfBlock
	}

	if err := s.repo.User().SetBlocked(ctx, userID, blocked); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to set blocked flag: %w", err)
	}

	s.logger.Info("User blocked flag changed",
		"user_id", userID,
		"blocked", blocked,
		"actor_id", actor.UserID)
	return nil
}

func (s *userService) UserData(ctx context.Context, actor authz.Actor, userID uint) (*UserDataResponse, error) {
	if decision := s.engine.Authorize(actor, authz.ActionUserDataRead, authz.Ownership{SubjectID: userID}); !decision.Allowed {
		return nil, NewPermissionError(actor.UserID, userID, "user", "data_read", decision.RequiredPermission, decision.Reason)
	}
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	courses, err := s.repo.Course().CoursesForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user courses: %w", err)
	}
	courseViews := make([]*CourseResponse, 0, len(courses))
	for _, c := range courses {
		courseViews = append(courseViews, courseResponse(c))
	}

	tests, err := s.repo.User().TestsForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user tests: %w", err)
	}

	return &UserDataResponse{
		User:    userResponse(user),
		Courses: courseViews,
		Tests:   tests,
	}, nil
}

func (s *userService) getUser(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.repo.User().GetByID(ctx, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func userResponse(u *models.User) *UserResponse {
	return &UserResponse{
		ID:       u.ID,
		FullName: u.FullName,
		Email:    u.Email,
	}
}
