package postgres

import (
	"context"

	"github.com/campus-stack/testing-service/internal/models"
	"gorm.io/gorm"
)

type NotificationPostgreSQL struct {
	db *gorm.DB
}

func NewNotificationPostgreSQL(db *gorm.DB) *NotificationPostgreSQL {
	return &NotificationPostgreSQL{db: db}
}

func (n *NotificationPostgreSQL) Create(ctx context.Context, notification *models.Notification) error {
	return translate(n.db.WithContext(ctx).Create(notification).Error)
}

func (n *NotificationPostgreSQL) ListByUser(ctx context.Context, userID uint) ([]*models.Notification, error) {
	var notifications []*models.Notification
	err := n.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id DESC").
		Find(&notifications).Error
	if err != nil {
		return nil, translate(err)
	}
	return notifications, nil
}

func (n *NotificationPostgreSQL) DeleteByUser(ctx context.Context, userID uint) error {
	err := n.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.Notification{}).Error
	return translate(err)
}
