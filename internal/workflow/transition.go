// Package workflow implements the task status state machine.
package workflow

import (
	"context"
	"fmt"

	"taskflow/internal/access"
	"taskflow/internal/domain"
)

// transitions lists the permitted targets per source status. Review may fall
// back to todo while todo may not jump to review.
var transitions = map[domain.TaskStatus][]domain.TaskStatus{
	domain.TaskStatusTodo:       {domain.TaskStatusInProgress, domain.TaskStatusCompleted},
	domain.TaskStatusInProgress: {domain.TaskStatusReview, domain.TaskStatusTodo, domain.TaskStatusCompleted},
	domain.TaskStatusReview:     {domain.TaskStatusInProgress, domain.TaskStatusCompleted, domain.TaskStatusTodo},
	domain.TaskStatusCompleted:  {domain.TaskStatusInProgress, domain.TaskStatusTodo},
}

// CanTransition reports whether from -> to is in the transition table.
func CanTransition(from, to domain.TaskStatus) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// AllowedTargets returns the statuses reachable from the given one.
func AllowedTargets(from domain.TaskStatus) []domain.TaskStatus {
	out := make([]domain.TaskStatus, len(transitions[from]))
	copy(out, transitions[from])
	return out
}

// PrerequisiteReader loads the direct dependencies of a task.
type PrerequisiteReader interface {
	ListPrerequisites(ctx context.Context, taskID string) ([]domain.Task, error)
}

// StatusWriter persists a new task status.
type StatusWriter interface {
	UpdateStatus(ctx context.Context, id string, status domain.TaskStatus) error
}

// Machine applies transitions against a store.
type Machine struct {
	deps  PrerequisiteReader
	tasks StatusWriter
}

// NewMachine builds a Machine over the given readers and writers.
func NewMachine(deps PrerequisiteReader, tasks StatusWriter) *Machine {
	return &Machine{deps: deps, tasks: tasks}
}

// Apply moves task to target and returns its previous status. Checks run in
// order: modify rights, table lookup, then (for completion) prerequisites.
// Nothing is written when a check fails. Dependents are never touched.
func (m *Machine) Apply(ctx context.Context, actor *domain.Actor, task *domain.Task, parent *domain.Project, target domain.TaskStatus) (domain.TaskStatus, error) {
	if task == nil {
		return "", domain.ErrNotFound
	}
	if !access.CanModifyTask(actor, task, parent) {
		return "", domain.ErrForbidden
	}
	if !CanTransition(task.Status, target) {
		return "", &domain.TransitionError{From: task.Status, To: target}
	}
	if target == domain.TaskStatusCompleted {
		if err := m.checkPrerequisites(ctx, task.ID); err != nil {
			return "", err
		}
	}

	previous := task.Status
	if err := m.tasks.UpdateStatus(ctx, task.ID, target); err != nil {
		return "", fmt.Errorf("update task status: %w", err)
	}
	task.Status = target
	return previous, nil
}

func (m *Machine) checkPrerequisites(ctx context.Context, taskID string) error {
	prereqs, err := m.deps.ListPrerequisites(ctx, taskID)
	if err != nil {
		return fmt.Errorf("load dependencies: %w", err)
	}
	var open []string
	for _, p := range prereqs {
		if p.Status != domain.TaskStatusCompleted {
			open = append(open, p.ID)
		}
	}
	if len(open) > 0 {
		return &domain.UnmetDependenciesError{TaskIDs: open}
	}
	return nil
}
