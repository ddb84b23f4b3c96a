package entity

import "time"

const (
	TaskStatusPending    = "pending"
	TaskStatusInProgress = "in_progress"
	TaskStatusCompleted  = "completed"
)

const (
	TaskPriorityLow    = "low"
	TaskPriorityMedium = "medium"
	TaskPriorityHigh   = "high"
)

type Task struct {
	ID             int64
	Title          string
	Description    string
	CountyID       int64
	Status         string
	Priority       string
	Deadline       time.Time
	AssignedBy     int64
	Reminders      []Reminder
	FormFile       *TaskFile
	FilledFormFile *TaskFile
	CreatedAt      time.Time
	UpdatedAt      *time.Time
}

// TaskFile is the metadata of an object held in external storage. A task
// carries at most one form and one filled form at a time.
type TaskFile struct {
	OriginalName string
	StorageKey   string
	UploadedAt   time.Time
	UploadedBy   *int64
}

// Reminder is an append-only record of a reminder attempt. Entries are never
// removed once written.
type Reminder struct {
	SentAt time.Time
	Origin ReminderOrigin
}

// ReminderOrigin distinguishes scheduler-generated reminders from ones
// triggered by an admin.
type ReminderOrigin struct {
	userID int64
	system bool
}

func SystemOrigin() ReminderOrigin {
	return ReminderOrigin{system: true}
}

func UserOrigin(userID int64) ReminderOrigin {
	return ReminderOrigin{userID: userID}
}

func (o ReminderOrigin) IsSystem() bool {
	return o.system
}

// UserID returns the triggering user and false when the reminder was
// system-generated.
func (o ReminderOrigin) UserID() (int64, bool) {
	if o.system {
		return 0, false
	}
	return o.userID, true
}

func ValidTaskStatus(s string) bool {
	return s == TaskStatusPending || s == TaskStatusInProgress || s == TaskStatusCompleted
}

func ValidTaskPriority(p string) bool {
	return p == TaskPriorityLow || p == TaskPriorityMedium || p == TaskPriorityHigh
}
