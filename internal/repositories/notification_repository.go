package repositories

import (
	"context"

	"github.com/campus-stack/testing-service/internal/models"
)

type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	ListByUser(ctx context.Context, userID uint) ([]*models.Notification, error)
	DeleteByUser(ctx context.Context, userID uint) error
}
