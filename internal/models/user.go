package models

import (
	"time"
)

type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
	RoleAdmin   Role = "admin"
)

// ValidRoles is the closed set accepted by the role management endpoints.
var ValidRoles = []Role{RoleStudent, RoleTeacher, RoleAdmin}

func IsValidRole(r Role) bool {
	for _, v := range ValidRoles {
		if v == r {
			return true
		}
	}
	return false
}

type User struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	FullName  string    `json:"full_name" gorm:"not null;size:200" validate:"required,min=1,max=200"`
	Email     *string   `json:"email" gorm:"uniqueIndex;size:255" validate:"omitempty,email"`
	IsBlocked bool      `json:"is_blocked" gorm:"not null;default:false"`
	CreatedAt time.Time `json:"created_at"`

	Roles []UserRole `json:"roles,omitempty" gorm:"foreignKey:UserID"`
}

// UserRole assigns one coarse role to a user. The fine-grained permission
// set lives in the access token, not here.
type UserRole struct {
	UserID uint `json:"user_id" gorm:"primaryKey"`
	Role   Role `json:"role" gorm:"primaryKey;size:20" validate:"required,role"`
}

func (User) TableName() string {
	return "users"
}

func (UserRole) TableName() string {
	return "user_roles"
}
