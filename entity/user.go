package entity

import "time"

const (
	RoleAdmin      = "admin"
	RoleCountyUser = "county_user"
)

type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	Role         string
	CountyID     *int64
	CreatedAt    time.Time
}

func ValidRole(r string) bool {
	return r == RoleAdmin || r == RoleCountyUser
}
