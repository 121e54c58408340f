package models

import "time"

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User is a reviewer or admin account.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	Email     string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Role      string    `gorm:"size:20;default:user;not null" json:"role"` // admin, user
	Password  string    `gorm:"size:255;not null" json:"-"`                // bcrypt hash
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (User) TableName() string { return "users" }

// IsValidRole reports whether role is one of the account roles.
func IsValidRole(role string) bool {
	return role == RoleAdmin || role == RoleUser
}
