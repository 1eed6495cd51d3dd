package services

import (
	"errors"
	"fmt"

	apperrors "github.com/campus-stack/testing-service/internal/errors"
)

// ===== COMMON SERVICE ERRORS =====

var (
	// Generic errors
	ErrNotFound         = errors.New("resource not found")
	ErrUnauthorized     = errors.New("unauthorized access")
	ErrForbidden        = errors.New("forbidden - insufficient permissions")
	ErrValidationFailed = errors.New("validation failed")
	ErrInternalError    = errors.New("internal server error")
	ErrConflict         = errors.New("resource conflict")
	ErrAccountBlocked   = errors.New("account is blocked")

	// Course specific errors
	ErrCourseNotFound = errors.New("course not found")
	ErrUserNotFound   = errors.New("user not found")
	ErrInvalidRole    = errors.New("invalid user role")
	ErrSelfBlock      = errors.New("cannot change the blocked flag on own account")

	// Question specific errors
	ErrQuestionNotFound       = errors.New("question not found")
	ErrQuestionVersionMissing = errors.New("question version not found")

	// Test specific errors
	ErrTestNotFound          = errors.New("test not found")
	ErrTestNotActive         = errors.New("test is not active")
	ErrTestLocked            = errors.New("test composition is locked - attempts exist")
	ErrTestEmpty             = errors.New("test has no questions")
	ErrQuestionAlreadyInTest = errors.New("question is already part of the test")
	ErrQuestionNotInTest     = errors.New("question is not part of the test")

	// Attempt specific errors
	ErrAttemptNotFound = errors.New("attempt not found")
	ErrAttemptFinished = errors.New("attempt is already finished")
	ErrAnswerNotFound  = errors.New("answer not found")
)

// ===== CUSTOM ERROR TYPES =====

// Use shared validation errors from errors package
type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

// PermissionError carries the authorization engine's verdict so handlers
// can tell the caller which permission would have granted access.
type PermissionError struct {
	UserID             uint   `json:"user_id"`
	ResourceID         uint   `json:"resource_id"`
	Resource           string `json:"resource"`
	Action             string `json:"action"`
	RequiredPermission string `json:"required_permission,omitempty"`
	Reason             string `json:"reason"`
}

func (pe *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: user %d cannot %s %s %d - %s",
		pe.UserID, pe.Action, pe.Resource, pe.ResourceID, pe.Reason)
}

// ===== ERROR HELPERS =====

// NewValidationError creates a new validation error using the shared type
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return apperrors.NewValidationError(field, message, value)
}

func NewPermissionError(userID, resourceID uint, resource, action, requiredPermission, reason string) *PermissionError {
	return &PermissionError{
		UserID:             userID,
		ResourceID:         resourceID,
		Resource:           resource,
		Action:             action,
		RequiredPermission: requiredPermission,
		Reason:             reason,
	}
}

// IsNotFound checks if error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrCourseNotFound) ||
		errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrQuestionNotFound) ||
		errors.Is(err, ErrQuestionVersionMissing) ||
		errors.Is(err, ErrTestNotFound) ||
		errors.Is(err, ErrQuestionNotInTest) ||
		errors.Is(err, ErrAttemptNotFound) ||
		errors.Is(err, ErrAnswerNotFound)
}

// IsForbidden checks if error represents a denied authorization decision
func IsForbidden(err error) bool {
	if errors.Is(err, ErrForbidden) {
		return true
	}
	var pe *PermissionError
	return errors.As(err, &pe)
}

// IsUnauthorized checks if error represents a failed authentication
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// IsBlocked checks if error represents a blocked account
func IsBlocked(err error) bool {
	return errors.Is(err, ErrAccountBlocked)
}

// IsValidation checks if error represents a validation failure.
// Duplicate membership is a request-level mistake, not a storage fault.
func IsValidation(err error) bool {
	if errors.Is(err, ErrValidationFailed) ||
		errors.Is(err, ErrTestEmpty) ||
		errors.Is(err, ErrQuestionAlreadyInTest) {
		return true
	}
	var ve apperrors.ValidationErrors
	return errors.As(err, &ve)
}

// IsStateConflict checks if error represents a lifecycle state conflict
func IsStateConflict(err error) bool {
	return errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrTestNotActive) ||
		errors.Is(err, ErrTestLocked) ||
		errors.Is(err, ErrAttemptFinished)
}
