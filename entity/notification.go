package entity

import "time"

const (
	NotificationTypeDeadline      = "deadline"
	NotificationTypeReminder      = "reminder"
	NotificationTypeTaskAssigned  = "task_assigned"
	NotificationTypeTaskCompleted = "task_completed"
)

// Notification is created by system actions and never updated afterwards
// except for the read flag.
type Notification struct {
	ID        int64
	UserID    int64
	Type      string
	Title     string
	Message   string
	TaskID    *int64
	Read      bool
	CreatedAt time.Time
}
