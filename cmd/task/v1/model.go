package task

import (
	"io"
	"time"
)

type TaskRequest struct {
	Title       string    `json:"title" validate:"required"`
	Description string    `json:"description" validate:"-"`
	CountyID    int64     `json:"countyId" validate:"required"`
	Status      string    `json:"status" validate:"-"`
	Priority    string    `json:"priority" validate:"-"`
	Deadline    time.Time `json:"deadline" validate:"required"`
}

type BulkTaskRequest struct {
	Title       string    `json:"title" validate:"required"`
	Description string    `json:"description" validate:"-"`
	CountyIDs   []int64   `json:"countyIds" validate:"required,min=1"`
	Status      string    `json:"status" validate:"-"`
	Priority    string    `json:"priority" validate:"-"`
	Deadline    time.Time `json:"deadline" validate:"required"`
}

type UpdateTaskRequest struct {
	Title       *string    `json:"title" validate:"-"`
	Description *string    `json:"description" validate:"-"`
	Status      *string    `json:"status" validate:"-"`
	Priority    *string    `json:"priority" validate:"-"`
	Deadline    *time.Time `json:"deadline" validate:"-"`
}

type TaskFilter struct {
	CountyID     *int64
	Status       *string
	Priority     *string
	Search       *string
	DeadlineFrom *time.Time
	DeadlineTo   *time.Time
	AssignedFrom *time.Time
	AssignedTo   *time.Time
}

type ReminderResponse struct {
	SentAt time.Time `json:"sentAt"`
	SentBy *int64    `json:"sentBy"`
}

type TaskFileResponse struct {
	OriginalName string    `json:"originalName"`
	UploadedAt   time.Time `json:"uploadedAt"`
	UploadedBy   *int64    `json:"uploadedBy,omitempty"`
}

type TaskResponse struct {
	ID             int64              `json:"id"`
	Title          string             `json:"title"`
	Description    string             `json:"description"`
	CountyID       int64              `json:"countyId"`
	Status         string             `json:"status"`
	Priority       string             `json:"priority"`
	Deadline       time.Time          `json:"deadline"`
	AssignedBy     int64              `json:"assignedBy"`
	Reminders      []ReminderResponse `json:"reminders"`
	FormFile       *TaskFileResponse  `json:"formFile,omitempty"`
	FilledFormFile *TaskFileResponse  `json:"filledFormFile,omitempty"`
	CreatedAt      time.Time          `json:"createdAt"`
	UpdatedAt      *time.Time         `json:"updatedAt,omitempty"`
}

type BulkCreateResponse struct {
	Created int `json:"created"`
}

type DownloadResponse struct {
	DownloadURL string `json:"downloadUrl"`
	FileName    string `json:"fileName"`
}

type UploadRequest struct {
	File         io.Reader
	OriginalName string
	Size         int64
	Extension    string
	ContentType  string
}

// SideEffect is the outcome of one best-effort action taken after a primary
// operation succeeded. A non-nil Err is logged, never surfaced to the caller.
type SideEffect struct {
	Name string
	Err  error
}
