package entity

import "time"

type County struct {
	ID          int64
	Name        string
	Code        string
	Description string
	Email       string
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}
