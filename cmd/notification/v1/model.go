package notification

import "time"

type NotificationResponse struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	TaskID    *int64    `json:"taskId,omitempty"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}

// UpcomingTaskResponse is the deadline digest entry: tasks closing within the
// next week, newest deadline last.
type UpcomingTaskResponse struct {
	ID         int64     `json:"id"`
	Title      string    `json:"title"`
	CountyID   int64     `json:"countyId"`
	CountyName string    `json:"countyName,omitempty"`
	Status     string    `json:"status"`
	Priority   string    `json:"priority"`
	Deadline   time.Time `json:"deadline"`
}
