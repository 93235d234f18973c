package models

import "strings"

// User is an account stored in the users table.
type User struct {
	ID         int64  `db:"user_id" json:"id"`
	Username   string `db:"username" json:"username"`
	Password   string `db:"password" json:"-"`
	FirstName  string `db:"first_name" json:"first_name"`
	LastName   string `db:"last_name" json:"last_name"`
	Email      string `db:"email" json:"email"`
	Role       Role   `db:"role" json:"role"`
	Status     Status `db:"status" json:"status"`
	CreateDate int64  `db:"create_date" json:"create_date"`
}

// DisplayName joins first and last name, falling back to the username.
func (u *User) DisplayName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}

// CoordinatorInfo projects the user into the coordinator section of subject payloads.
func (u *User) CoordinatorInfo() *CoordinatorInfo {
	return &CoordinatorInfo{
		ID:       u.ID,
		Name:     u.DisplayName(),
		Email:    u.Email,
		JoinDate: u.CreateDate,
		Status:   u.Status,
	}
}
