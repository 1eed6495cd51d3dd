package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/campus-stack/testing-service/internal/authz"
	"github.com/campus-stack/testing-service/internal/models"
	"github.com/campus-stack/testing-service/internal/repositories"
)

// NotificationService exposes the per-user notification inbox. Writing
// happens inside the domain services when lifecycle events fire.
type NotificationService interface {
	ListOwn(ctx context.Context, actor authz.Actor) ([]*models.Notification, error)
	ClearOwn(ctx context.Context, actor authz.Actor) error
}

type notificationService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewNotificationService(repo repositories.Repository, logger *slog.Logger) NotificationService {
	return &notificationService{
		repo:   repo,
		logger: logger,
	}
}

func (s *notificationService) ListOwn(ctx context.Context, actor authz.Actor) ([]*models.Notification, error) {
	notifications, err := s.repo.Notification().ListByUser(ctx, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, nil
}

func (s *notificationService) ClearOwn(ctx context.Context, actor authz.Actor) error {
	if err := s.repo.Notification().DeleteByUser(ctx, actor.UserID); err != nil {
		return fmt.Errorf("failed to clear notifications: %w", err)
	}
	s.logger.Info("Notifications cleared", "user_id", actor.UserID)
	return nil
}
