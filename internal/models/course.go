package models

import (
	"time"

	"gorm.io/gorm"
)

type Course struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	Name        string `json:"name" gorm:"not null;size:200" validate:"required,min=1,max=200"`
	Description string `json:"description" gorm:"type:text;not null;default:''" validate:"max=2000"`
	TeacherID   uint   `json:"teacher_id" gorm:"not null;index" validate:"required"`

	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	Teacher     User               `json:"-" gorm:"foreignKey:TeacherID"`
	Enrollments []CourseEnrollment `json:"-" gorm:"foreignKey:CourseID"`
}

// CourseEnrollment grants a non-owner read visibility into a course's tests.
type CourseEnrollment struct {
	CourseID  uint      `json:"course_id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
}

func (Course) TableName() string {
	return "courses"
}

func (CourseEnrollment) TableName() string {
	return "course_enrollments"
}
