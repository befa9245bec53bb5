package domain

import "time"

// NotificationType enumerates notification categories.
type NotificationType string

const (
	NotificationTaskAssigned        NotificationType = "task_assigned"
	NotificationTaskStatusChanged   NotificationType = "task_status_changed"
	NotificationProjectInvite       NotificationType = "project_invite"
	NotificationDeadlineReminder    NotificationType = "deadline_reminder"
	NotificationSubscriptionExpired NotificationType = "subscription_expired"
	NotificationSystemMessage       NotificationType = "system_message"
)

// TargetKind names the entity a notification or activity entry points at.
type TargetKind string

const (
	TargetProject      TargetKind = "project"
	TargetTask         TargetKind = "task"
	TargetSubscription TargetKind = "subscription"
	TargetUser         TargetKind = "user"
)

// Target is a tagged reference to another entity.
type Target struct {
	Kind TargetKind
	ID   string
}

// IsZero reports whether the target is unset.
func (t Target) IsZero() bool { return t.Kind == "" || t.ID == "" }

// ProjectTarget references a project.
func ProjectTarget(id string) Target { return Target{Kind: TargetProject, ID: id} }

// TaskTarget references a task.
func TaskTarget(id string) Target { return Target{Kind: TargetTask, ID: id} }

// SubscriptionTarget references a subscription.
func SubscriptionTarget(id string) Target { return Target{Kind: TargetSubscription, ID: id} }

// UserTarget references a user.
func UserTarget(id string) Target { return Target{Kind: TargetUser, ID: id} }

// Notification is a message addressed to one recipient.
type Notification struct {
	ID          string
	RecipientID string
	Type        NotificationType
	Title       string
	Message     string
	Target      Target
	IsRead      bool
	CreatedAt   time.Time
}
