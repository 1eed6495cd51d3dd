package models

import (
	"time"
)

type AttemptStatus string

const (
	AttemptStatusInProgress AttemptStatus = "in_progress"
	AttemptStatusFinished   AttemptStatus = "finished"
)

// Attempt is one user's single run through one test; the (test, user)
// pair is unique, which is what makes attempt creation idempotent under
// concurrent requests.
type Attempt struct {
	ID     uint          `json:"id" gorm:"primaryKey"`
	TestID uint          `json:"test_id" gorm:"not null;uniqueIndex:uq_attempts_test_user,priority:1"`
	UserID uint          `json:"user_id" gorm:"not null;uniqueIndex:uq_attempts_test_user,priority:2"`
	Status AttemptStatus `json:"status" gorm:"not null;default:in_progress;index"`

	CreatedAt  time.Time  `json:"created_at"`
	FinishedAt *time.Time `json:"finished_at"`

	Test      Test              `json:"-" gorm:"foreignKey:TestID"`
	Questions []AttemptQuestion `json:"-" gorm:"foreignKey:AttemptID"`
	Answers   []Answer          `json:"-" gorm:"foreignKey:AttemptID"`
}

// AttemptQuestion is one row of the immutable snapshot captured at
// attempt creation: which question, which version was current at that
// moment, and where it sat in the test's ordering. Grading reads these
// pins, never the question's current version.
type AttemptQuestion struct {
	AttemptID       uint `json:"attempt_id" gorm:"primaryKey;uniqueIndex:uq_attempt_questions_position,priority:1"`
	QuestionID      uint `json:"question_id" gorm:"primaryKey"`
	QuestionVersion int  `json:"question_version" gorm:"not null"`
	Position        int  `json:"position" gorm:"not null;uniqueIndex:uq_attempt_questions_position,priority:2"`
}

// Answer holds the single answer slot per snapshot question.
// AnswerIndex -1 means unanswered; it is initialized to -1 together with
// the snapshot and is the only value ClearAnswer can restore.
type Answer struct {
	ID              uint `json:"id" gorm:"primaryKey"`
	AttemptID       uint `json:"attempt_id" gorm:"not null;uniqueIndex:uq_answers_attempt_question,priority:1"`
	QuestionID      uint `json:"question_id" gorm:"not null;uniqueIndex:uq_answers_attempt_question,priority:2"`
	QuestionVersion int  `json:"question_version" gorm:"not null"`
	AnswerIndex     int  `json:"answer_index" gorm:"not null;default:-1"`

	UpdatedAt time.Time `json:"updated_at"`
}

const AnswerUnanswered = -1

func (Attempt) TableName() string {
	return "attempts"
}

func (AttemptQuestion) TableName() string {
	return "attempt_questions"
}

func (Answer) TableName() string {
	return "answers"
}
