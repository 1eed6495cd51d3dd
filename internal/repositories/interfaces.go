package repositories

import (
	"errors"

	"gorm.io/gorm"
)

// Repository aggregates the per-entity repositories. Multi-row
// invariants (attempt snapshots, version bumps, reorders) are enforced
// inside the implementations as single all-or-nothing transactions.
type Repository interface {
	User() UserRepository
	Course() CourseRepository
	Question() QuestionRepository
	Test() TestRepository
	Attempt() AttemptRepository
	Notification() NotificationRepository
}

// Sentinel errors the store implementations translate gorm errors into,
// so services never match on driver-level errors.
var (
	ErrRecordNotFound = errors.New("record not found")
	ErrDuplicateKey   = errors.New("duplicate key")
	// ErrTestLocked means a composition write hit a test that already has
	// attempts; the membership is frozen.
	ErrTestLocked = errors.New("test has attempts")
	// ErrReorderMismatch means a reorder request was not an exact
	// permutation of the current membership.
	ErrReorderMismatch = errors.New("reorder is not a permutation of the test questions")
	// ErrStaleSnapshot means an attempt insert saw a composition that
	// changed after the caller pinned it; rebuild the snapshot and retry.
	ErrStaleSnapshot = errors.New("test composition changed while starting the attempt")
)

// IsNotFoundError reports whether err is a missing-row condition.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrRecordNotFound) || errors.Is(err, gorm.ErrRecordNotFound)
}

// IsDuplicateError reports whether err is a unique-constraint violation.
// These are expected during racy writes and must surface as request
// errors, never as crashes.
func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicateKey) || errors.Is(err, gorm.ErrDuplicatedKey)
}

// ===== SHARED FILTER STRUCTS =====

type QuestionFilters struct {
	AuthorID *uint `json:"author_id"`
	Limit    int   `json:"limit"`
	Offset   int   `json:"offset"`
}

// ===== SHARED ROW STRUCTS =====

// QuestionListRow is one row of the question catalogue: identity plus
// the title of its latest version.
type QuestionListRow struct {
	ID       uint   `json:"id"`
	AuthorID uint   `json:"author_id"`
	Version  int    `json:"version"`
	Title    string `json:"title"`
}

// AnswerWithVersion joins an attempt's answer with the question version
// it was pinned against; this is the grading engine's entire input.
type AnswerWithVersion struct {
	AnswerID        uint     `json:"answer_id"`
	QuestionID      uint     `json:"question_id"`
	QuestionVersion int      `json:"question_version"`
	AnswerIndex     int      `json:"answer_index"`
	Position        int      `json:"position"`
	Title           string   `json:"title"`
	Body            string   `json:"body"`
	Options         []string `json:"options"`
	CorrectIndex    int      `json:"correct_index"`
}

// UserTestRow is one test a user has attempted, with attempt status.
type UserTestRow struct {
	TestID uint   `json:"test_id"`
	Name   string `json:"name"`
	Status string `json:"attempt_status"`
}
