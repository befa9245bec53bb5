// Package fanout turns domain events into per-recipient notification drafts.
package fanout

import (
	"time"

	"taskflow/internal/domain"
)

// Event is a domain occurrence that may notify users.
type Event interface {
	event()
}

// Assignment fires when a task gets a new assignee.
type Assignment struct {
	Task       domain.Task
	Project    domain.Project
	AssigneeID string
	AssignedBy string
}

// StatusChange fires after a successful status transition.
type StatusChange struct {
	Task      domain.Task
	Project   domain.Project
	Old       domain.TaskStatus
	New       domain.TaskStatus
	ChangedBy string

	// ChangedByName is shown in the message; ChangedBy is used when empty.
	ChangedByName string
}

// TaskDeadline fires when a task deadline is approaching.
type TaskDeadline struct {
	Task    domain.Task
	Project domain.Project
}

// ProjectDeadline fires when a project deadline is approaching.
type ProjectDeadline struct {
	Project domain.Project
}

// ProjectInvite fires when a user is added to a project.
type ProjectInvite struct {
	Project       domain.Project
	InvitedUserID string
	InvitedBy     string
}

// WeeklyReport fires once per week for projects with task activity.
type WeeklyReport struct {
	Project           domain.Project
	Stats             domain.ProjectStats
	CompletedThisWeek int
}

// SubscriptionExpiring fires shortly before an active subscription ends.
type SubscriptionExpiring struct {
	Subscription domain.Subscription
	PlanName     string
	Now          time.Time
}

func (Assignment) event()           {}
func (StatusChange) event()         {}
func (TaskDeadline) event()         {}
func (ProjectDeadline) event()      {}
func (ProjectInvite) event()        {}
func (WeeklyReport) event()         {}
func (SubscriptionExpiring) event() {}
