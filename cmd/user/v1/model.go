package user

import "time"

type UserResponse struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CountyID  *int64    `json:"countyId"`
	CreatedAt time.Time `json:"createdAt"`
}
