package domain

import (
	"context"
	"time"
)

// UserRepository defines access methods for users.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
}

// ProjectRepository persists projects and their member rows.
type ProjectRepository interface {
	Create(ctx context.Context, project *Project) error
	GetByID(ctx context.Context, id string) (*Project, error)
	Update(ctx context.Context, project *Project) error
	Delete(ctx context.Context, id string) error
	ListForUser(ctx context.Context, userID string) ([]Project, error)
	AddMember(ctx context.Context, projectID, userID string) error
	RemoveMember(ctx context.Context, projectID, userID string) error
	ListDueBetween(ctx context.Context, from, to time.Time) ([]Project, error)
	ListWithTaskActivitySince(ctx context.Context, since time.Time) ([]Project, error)
	CountOwned(ctx context.Context, userID string) (int, error)
	CountMembersOfOwned(ctx context.Context, userID string) (int, error)
}

// TaskRepository persists tasks.
type TaskRepository interface {
	Create(ctx context.Context, task *Task) error
	GetByID(ctx context.Context, id string) (*Task, error)
	Update(ctx context.Context, task *Task) error
	UpdateStatus(ctx context.Context, id string, status TaskStatus) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter TaskFilter) ([]Task, error)
	ListDueBetween(ctx context.Context, from, to time.Time) ([]Task, error)
	CountInOwnedProjects(ctx context.Context, userID string) (int, error)
}

// DependencyRepository persists dependency edges between tasks.
type DependencyRepository interface {
	Add(ctx context.Context, dep Dependency) error
	Remove(ctx context.Context, taskID, dependsOnID string) error
	ListByProject(ctx context.Context, projectID string) ([]Dependency, error)
	ListPrerequisites(ctx context.Context, taskID string) ([]Task, error)
}

// PlanRepository persists the plan catalog.
type PlanRepository interface {
	Upsert(ctx context.Context, plan *Plan) error
	GetByID(ctx context.Context, id string) (*Plan, error)
	GetByName(ctx context.Context, name string) (*Plan, error)
	ListActive(ctx context.Context) ([]Plan, error)
}

// SubscriptionRepository persists one subscription per user.
type SubscriptionRepository interface {
	GetByUserID(ctx context.Context, userID string) (*Subscription, error)
	Upsert(ctx context.Context, sub *Subscription) error
	ListActiveEndingBetween(ctx context.Context, from, to time.Time) ([]Subscription, error)
}

// NotificationRepository persists notifications. Mutations are scoped to the recipient.
type NotificationRepository interface {
	Create(ctx context.Context, n *Notification) error
	ListByRecipient(ctx context.Context, recipientID string, unreadOnly bool) ([]Notification, error)
	SetRead(ctx context.Context, id, recipientID string, read bool) error
	MarkAllRead(ctx context.Context, recipientID string) (int, error)
	Delete(ctx context.Context, id, recipientID string) error
	CountUnread(ctx context.Context, recipientID string) (int, error)
}

// ActivityRepository appends and lists audit entries.
type ActivityRepository interface {
	Append(ctx context.Context, a *Activity) error
	ListByActor(ctx context.Context, actorID string, limit int) ([]Activity, error)
	ListByTarget(ctx context.Context, target Target, limit int) ([]Activity, error)
}

// SweepRepository records which background sweep periods already ran.
type SweepRepository interface {
	// Claim returns true the first time a (job, period) pair is claimed.
	Claim(ctx context.Context, job, period string) (bool, error)
}

// Store bundles the repositories behind one backend.
type Store interface {
	Users() UserRepository
	Projects() ProjectRepository
	Tasks() TaskRepository
	Dependencies() DependencyRepository
	Plans() PlanRepository
	Subscriptions() SubscriptionRepository
	Notifications() NotificationRepository
	Activity() ActivityRepository
	Sweeps() SweepRepository

	// WithinProject runs fn while holding the project's write lock. Dependency
	// edges and task statuses of that project change only inside fn.
	WithinProject(ctx context.Context, projectID string, fn func(ctx context.Context, tx Store) error) error
}
