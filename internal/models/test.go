package models

import (
	"time"

	"gorm.io/gorm"
)

type Test struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	CourseID uint   `json:"course_id" gorm:"not null;index"`
	Name     string `json:"name" gorm:"not null;size:200" validate:"required,min=1,max=200"`
	AuthorID uint   `json:"author_id" gorm:"not null"`
	IsActive bool   `json:"is_active" gorm:"not null;default:false"`

	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	Course    Course         `json:"-" gorm:"foreignKey:CourseID"`
	Questions []TestQuestion `json:"-" gorm:"foreignKey:TestID"`
}

// TestQuestion is the ordered membership of a question within a test.
// Positions are gapless from zero and unique per test. Membership becomes
// immutable the moment the first attempt against the test exists.
type TestQuestion struct {
	TestID     uint `json:"test_id" gorm:"primaryKey;uniqueIndex:uq_test_questions_position,priority:1"`
	QuestionID uint `json:"question_id" gorm:"primaryKey"`
	Position   int  `json:"position" gorm:"not null;uniqueIndex:uq_test_questions_position,priority:2"`
}

func (Test) TableName() string {
	return "tests"
}

func (TestQuestion) TableName() string {
	return "test_questions"
}
