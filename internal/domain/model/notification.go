package model

import "time"

type NotificationLevel string

const (
	NotificationSuccess  NotificationLevel = "success"
	NotificationError    NotificationLevel = "error"
	NotificationInfo     NotificationLevel = "info"
	NotificationProgress NotificationLevel = "progress"
)

// Notificationは画面に出すトースト1件
type Notification struct {
	ID          string            `json:"id"`
	Level       NotificationLevel `json:"level"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Progress    *int              `json:"progress,omitempty"`
	CreatedAt   time.Time         `json:"createdAt"`
}
