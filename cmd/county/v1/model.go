package county

import "time"

type CountyRequest struct {
	Name        string `json:"name" validate:"required"`
	Code        string `json:"code" validate:"required"`
	Description string `json:"description" validate:"-"`
	Email       string `json:"email" validate:"omitempty,email"`
}

type TaskStats struct {
	Total      int `json:"total"`
	Pending    int `json:"pending"`
	InProgress int `json:"inProgress"`
	Completed  int `json:"completed"`
}

type CountyResponse struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Code        string     `json:"code"`
	Description string     `json:"description"`
	Email       string     `json:"email,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	TaskStats   *TaskStats `json:"taskStats,omitempty"`
}

// ProvisionedUser carries the one-time credentials of the county account
// created alongside a county. The password is random and is returned only
// here; it is never retrievable again.
type ProvisionedUser struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type CreateCountyResponse struct {
	County          CountyResponse   `json:"county"`
	ProvisionedUser *ProvisionedUser `json:"provisionedUser,omitempty"`
}
