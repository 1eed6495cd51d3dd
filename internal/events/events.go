package events

import (
	"time"

	"github.com/ThreeDotsLabs/watermill"
)

// EventType represents different types of notification events
type EventType string

const (
	EventAttemptStarted  EventType = "attempt.started"
	EventAttemptFinished EventType = "attempt.finished"
	EventTestActivated   EventType = "test.activated"
)

// NotificationEvent is the envelope for all notification events
type NotificationEvent struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

const eventSource = "testing-service"

// Attempt notification event payloads

type AttemptStartedEvent struct {
	AttemptID uint      `json:"attempt_id"`
	TestID    uint      `json:"test_id"`
	TestName  string    `json:"test_name"`
	StudentID uint      `json:"student_id"`
	StartedAt time.Time `json:"started_at"`
}

type AttemptFinishedEvent struct {
	AttemptID    uint      `json:"attempt_id"`
	TestID       uint      `json:"test_id"`
	TestName     string    `json:"test_name"`
	StudentID    uint      `json:"student_id"`
	FinishedAt   time.Time `json:"finished_at"`
	GradePercent int       `json:"grade_percent"`
}

// Test notification event payload

type TestActivatedEvent struct {
	TestID     uint   `json:"test_id"`
	TestName   string `json:"test_name"`
	CourseID   uint   `json:"course_id"`
	StudentIDs []uint `json:"student_ids"`
	TeacherID  uint   `json:"teacher_id"`
}

// Event factory functions

func NewAttemptStartedEvent(attemptID, testID uint, testName string, studentID uint, startedAt time.Time) *NotificationEvent {
	return &NotificationEvent{
		ID:        generateEventID(),
		Type:      EventAttemptStarted,
		Timestamp: time.Now(),
		Source:    eventSource,
		Version:   "1.0",
		Data: AttemptStartedEvent{
			AttemptID: attemptID,
			TestID:    testID,
			TestName:  testName,
			StudentID: studentID,
			StartedAt: startedAt,
		},
	}
}

func NewAttemptFinishedEvent(attemptID, testID uint, testName string, studentID uint, finishedAt time.Time, gradePercent int) *NotificationEvent {
	return &NotificationEvent{
		ID:        generateEventID(),
		Type:      EventAttemptFinished,
		Timestamp: time.Now(),
		Source:    eventSource,
		Version:   "1.0",
		Data: AttemptFinishedEvent{
			AttemptID:    attemptID,
			TestID:       testID,
			TestName:     testName,
			StudentID:    studentID,
			FinishedAt:   finishedAt,
			GradePercent: gradePercent,
		},
	}
}

func NewTestActivatedEvent(testID uint, testName string, courseID uint, studentIDs []uint, teacherID uint) *NotificationEvent {
	return &NotificationEvent{
		ID:        generateEventID(),
		Type:      EventTestActivated,
		Timestamp: time.Now(),
		Source:    eventSource,
		Version:   "1.0",
		Data: TestActivatedEvent{
			TestID:     testID,
			TestName:   testName,
			CourseID:   courseID,
			StudentIDs: studentIDs,
			TeacherID:  teacherID,
		},
	}
}

func generateEventID() string {
	return watermill.NewUUID()
}
