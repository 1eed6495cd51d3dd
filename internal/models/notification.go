package models

import (
	"time"

	"gorm.io/datatypes"
)

type NotificationType string

const (
	NotificationAttemptStarted  NotificationType = "attempt_started"
	NotificationAttemptFinished NotificationType = "attempt_finished"
	NotificationTestActivated   NotificationType = "test_activated"
)

type Notification struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	UserID    uint           `json:"user_id" gorm:"not null;index"`
	Payload   datatypes.JSON `json:"payload" gorm:"type:jsonb;not null"`
	CreatedAt time.Time      `json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}
