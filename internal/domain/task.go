package domain

import "time"

// TaskStatus enumerates task workflow states.
type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusReview     TaskStatus = "review"
	TaskStatusCompleted  TaskStatus = "completed"
)

// Valid reports whether the status is known.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusReview, TaskStatusCompleted:
		return true
	}
	return false
}

// TaskPriority enumerates task priorities.
type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
	TaskPriorityUrgent TaskPriority = "urgent"
)

// Valid reports whether the priority is known.
func (p TaskPriority) Valid() bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh, TaskPriorityUrgent:
		return true
	}
	return false
}

// Task is a unit of work inside a project. AssigneeID is empty when unassigned.
type Task struct {
	ID          string
	Title       string
	Description string
	Status      TaskStatus
	Priority    TaskPriority
	Deadline    *time.Time
	ProjectID   string
	AssigneeID  string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsOverdue reports whether the deadline has passed on an unfinished task.
func (t *Task) IsOverdue(now time.Time) bool {
	return t != nil && t.Deadline != nil && now.After(*t.Deadline) && t.Status != TaskStatusCompleted
}

// CompletedSince counts tasks completed at or after since. The last update
// time stands in for the completion time.
func CompletedSince(tasks []Task, since time.Time) int {
	n := 0
	for i := range tasks {
		if tasks[i].Status == TaskStatusCompleted && !tasks[i].UpdatedAt.Before(since) {
			n++
		}
	}
	return n
}

// Dependency is a directed edge: TaskID cannot complete before DependsOnID.
type Dependency struct {
	TaskID      string
	DependsOnID string
	CreatedAt   time.Time
}

// TaskFilter narrows task listings. Zero values are ignored.
type TaskFilter struct {
	ProjectID  string
	AssigneeID string
	Status     TaskStatus
	Priority   TaskPriority
	// MemberID restricts results to projects the user owns or belongs to.
	MemberID string
}
