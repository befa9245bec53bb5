package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound               = errors.New("not found")
	ErrUnauthorized           = errors.New("unauthorized")
	ErrForbidden              = errors.New("forbidden")
	ErrConflict               = errors.New("conflict")
	ErrValidation             = errors.New("validation failed")
	ErrInvalidTransition      = errors.New("invalid status transition")
	ErrUnmetDependencies      = errors.New("unmet dependencies")
	ErrSelfDependency         = errors.New("task cannot depend on itself")
	ErrCrossProjectDependency = errors.New("dependency must belong to the same project")
	ErrCircularDependency     = errors.New("circular dependency")
	ErrLimitExceeded          = errors.New("limit exceeded")
)

// TransitionError reports a status change that is absent from the transition table.
type TransitionError struct {
	From TaskStatus
	To   TaskStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot transition from %s to %s", e.From, e.To)
}

func (e *TransitionError) Is(target error) bool { return target == ErrInvalidTransition }

// UnmetDependenciesError lists the prerequisites that block completion.
type UnmetDependenciesError struct {
	TaskIDs []string
}

func (e *UnmetDependenciesError) Error() string {
	return fmt.Sprintf("cannot complete task: %d incomplete dependencies (%s)", len(e.TaskIDs), strings.Join(e.TaskIDs, ", "))
}

func (e *UnmetDependenciesError) Is(target error) bool { return target == ErrUnmetDependencies }

// LimitExceededError carries the first plan limit a user has hit.
type LimitExceededError struct {
	Resource string
	Reason   string
}

func (e *LimitExceededError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("%s limit reached", e.Resource)
	}
	return e.Reason
}

func (e *LimitExceededError) Is(target error) bool { return target == ErrLimitExceeded }

// ValidationError describes a rejected input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// Invalid is shorthand for building a ValidationError.
func Invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}
