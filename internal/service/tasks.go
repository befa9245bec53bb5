package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"taskflow/internal/access"
	"taskflow/internal/depgraph"
	"taskflow/internal/domain"
	"taskflow/internal/fanout"
	"taskflow/internal/limits"
	"taskflow/internal/workflow"
)

// TaskInput holds the fields of a new task.
type TaskInput struct {
	Title       string
	Description string
	Priority    domain.TaskPriority
	Deadline    *time.Time
	AssigneeID  string
	// DependsOn lists prerequisite task ids in the same project.
	DependsOn []string
}

// TaskUpdate holds optional task changes. Status and assignee have their own
// operations.
type TaskUpdate struct {
	Title         *string
	Description   *string
	Priority      *domain.TaskPriority
	Deadline      *time.Time
	ClearDeadline bool
}

// CreateTask adds a task to a project the actor can access. The project
// owner's plan limits apply.
func (s *Service) CreateTask(ctx context.Context, actor *domain.Actor, projectID string, in TaskInput) (*domain.Task, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	p, err := s.loadProject(ctx, s.store, projectID)
	if err != nil {
		return nil, err
	}
	if !access.CanAccessProject(actor, p) {
		return nil, domain.ErrForbidden
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, domain.Invalid("title", "is required")
	}
	priority := in.Priority
	if priority == "" {
		priority = domain.TaskPriorityMedium
	}
	if !priority.Valid() {
		return nil, domain.Invalid("priority", "must be low, medium, high or urgent")
	}
	if err := s.validateDeadline("deadline", in.Deadline); err != nil {
		return nil, err
	}

	t := &domain.Task{
		ID:          uuid.NewString(),
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		Status:      domain.TaskStatusTodo,
		Priority:    priority,
		Deadline:    in.Deadline,
		ProjectID:   p.ID,
		AssigneeID:  in.AssigneeID,
	}
	err = s.store.WithinProject(ctx, p.ID, func(ctx context.Context, tx domain.Store) error {
		// Membership and quota are checked under the project lock.
		locked, err := s.loadProject(ctx, tx, p.ID)
		if err != nil {
			return err
		}
		if t.AssigneeID != "" && !locked.HasMember(t.AssigneeID) {
			return domain.Invalid("assignee_id", "must be a member of the project")
		}
		if err := s.limits.In(tx).Enforce(ctx, locked.OwnerID, limits.ResourceTasks); err != nil {
			return err
		}
		p = locked

		// A new task has no dependents, so only the project check can fail;
		// run it before the insert.
		prereqs := make([]*domain.Task, 0, len(in.DependsOn))
		seen := make(map[string]struct{}, len(in.DependsOn))
		for _, id := range in.DependsOn {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			dep, err := tx.Tasks().GetByID(ctx, id)
			if err != nil {
				return fmt.Errorf("load dependency %s: %w", id, err)
			}
			if dep.ProjectID != p.ID {
				return domain.ErrCrossProjectDependency
			}
			prereqs = append(prereqs, dep)
		}
		if err := tx.Tasks().Create(ctx, t); err != nil {
			return fmt.Errorf("create task: %w", err)
		}
		graph := depgraph.NewManager(tx.Dependencies())
		for _, dep := range prereqs {
			if err := graph.AddDependency(ctx, t, dep); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.record(ctx, actor.UserID, domain.ActionCreated, domain.TaskTarget(t.ID), fmt.Sprintf("Created task '%s'", t.Title))
	if t.AssigneeID != "" && t.AssigneeID != actor.UserID {
		s.publish(ctx, fanout.Assignment{
			Task:       *t,
			Project:    *p,
			AssigneeID: t.AssigneeID,
			AssignedBy: s.displayName(ctx, actor.UserID),
		})
	}
	return t, nil
}

// GetTask returns a task the actor may read.
func (s *Service) GetTask(ctx context.Context, actor *domain.Actor, id string) (*domain.Task, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	t, p, err := s.loadTask(ctx, s.store, id)
	if err != nil {
		return nil, err
	}
	if !access.CanAccessTask(actor, t, p) {
		return nil, domain.ErrForbidden
	}
	return t, nil
}

// ListTasks returns tasks matching filter across projects visible to actor.
func (s *Service) ListTasks(ctx context.Context, actor *domain.Actor, filter domain.TaskFilter) ([]domain.Task, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, domain.Invalid("status", "unknown status")
	}
	if filter.Priority != "" && !filter.Priority.Valid() {
		return nil, domain.Invalid("priority", "unknown priority")
	}
	filter.MemberID = actor.UserID
	return s.store.Tasks().List(ctx, filter)
}

// UpdateTask edits a task the actor may modify.
func (s *Service) UpdateTask(ctx context.Context, actor *domain.Actor, id string, in TaskUpdate) (*domain.Task, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	t, p, err := s.loadTask(ctx, s.store, id)
	if err != nil {
		return nil, err
	}
	if !access.CanModifyTask(actor, t, p) {
		return nil, domain.ErrForbidden
	}
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, domain.Invalid("title", "is required")
		}
		t.Title = title
	}
	if in.Description != nil {
		t.Description = strings.TrimSpace(*in.Description)
	}
	if in.Priority != nil {
		if !in.Priority.Valid() {
			return nil, domain.Invalid("priority", "must be low, medium, high or urgent")
		}
		t.Priority = *in.Priority
	}
	switch {
	case in.ClearDeadline:
		t.Deadline = nil
	case in.Deadline != nil:
		if err := s.validateDeadline("deadline", in.Deadline); err != nil {
			return nil, err
		}
		t.Deadline = in.Deadline
	}
	if err := s.store.Tasks().Update(ctx, t); err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	s.record(ctx, actor.UserID, domain.ActionUpdated, domain.TaskTarget(t.ID), fmt.Sprintf("Updated task '%s'", t.Title))
	return t, nil
}

// DeleteTask removes a task and every edge touching it.
func (s *Service) DeleteTask(ctx context.Context, actor *domain.Actor, id string) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	t, p, err := s.loadTask(ctx, s.store, id)
	if err != nil {
		return err
	}
	if !access.CanDeleteTask(actor, t, p) {
		return domain.ErrForbidden
	}
	err = s.store.WithinProject(ctx, p.ID, func(ctx context.Context, tx domain.Store) error {
		if err := tx.Tasks().Delete(ctx, t.ID); err != nil {
			return fmt.Errorf("delete task: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.record(ctx, actor.UserID, domain.ActionDeleted, domain.TaskTarget(t.ID), fmt.Sprintf("Deleted task '%s'", t.Title))
	return nil
}

// AssignTask sets or clears (empty assigneeID) the task's assignee. The new
// assignee must belong to the project and is notified.
func (s *Service) AssignTask(ctx context.Context, actor *domain.Actor, taskID, assigneeID string) (*domain.Task, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	current, err := s.store.Tasks().GetByID(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("load task: %w", err)
	}

	var (
		t        *domain.Task
		p        *domain.Project
		previous string
	)
	err = s.store.WithinProject(ctx, current.ProjectID, func(ctx context.Context, tx domain.Store) error {
		var err error
		t, p, err = s.loadTask(ctx, tx, taskID)
		if err != nil {
			return err
		}
		if !access.CanAssignTask(actor, t, p) {
			return domain.ErrForbidden
		}
		if assigneeID != "" && !p.HasMember(assigneeID) {
			return domain.Invalid("assignee_id", "must be a member of the project")
		}
		previous = t.AssigneeID
		t.AssigneeID = assigneeID
		if err := tx.Tasks().Update(ctx, t); err != nil {
			return fmt.Errorf("assign task: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	desc := fmt.Sprintf("Unassigned task '%s'", t.Title)
	if assigneeID != "" {
		desc = fmt.Sprintf("Assigned task '%s' to %s", t.Title, s.displayName(ctx, assigneeID))
	}
	s.record(ctx, actor.UserID, domain.ActionAssigned, domain.TaskTarget(t.ID), desc)
	if assigneeID != "" && assigneeID != previous {
		s.publish(ctx, fanout.Assignment{
			Task:       *t,
			Project:    *p,
			AssigneeID: assigneeID,
			AssignedBy: s.displayName(ctx, actor.UserID),
		})
	}
	return t, nil
}

// TransitionTaskStatus moves a task to target and returns its previous
// status. The check and the write run under the project lock so a
// prerequisite cannot be reopened between them.
func (s *Service) TransitionTaskStatus(ctx context.Context, actor *domain.Actor, taskID string, target domain.TaskStatus) (domain.TaskStatus, error) {
	if err := requireActor(actor); err != nil {
		return "", err
	}
	if !target.Valid() {
		return "", domain.Invalid("status", "unknown status")
	}
	current, err := s.store.Tasks().GetByID(ctx, taskID)
	if err != nil {
		return "", fmt.Errorf("load task: %w", err)
	}

	var (
		previous domain.TaskStatus
		task     *domain.Task
		project  *domain.Project
	)
	err = s.store.WithinProject(ctx, current.ProjectID, func(ctx context.Context, tx domain.Store) error {
		var err error
		task, project, err = s.loadTask(ctx, tx, taskID)
		if err != nil {
			return err
		}
		machine := workflow.NewMachine(tx.Dependencies(), tx.Tasks())
		previous, err = machine.Apply(ctx, actor, task, project, target)
		return err
	})
	if err != nil {
		return "", err
	}

	s.record(ctx, actor.UserID, domain.ActionStatusChanged, domain.TaskTarget(task.ID),
		fmt.Sprintf("Changed status of '%s' from %s to %s", task.Title, fanout.StatusLabel(previous), fanout.StatusLabel(target)))
	s.publish(ctx, fanout.StatusChange{
		Task:          *task,
		Project:       *project,
		Old:           previous,
		New:           target,
		ChangedBy:     actor.UserID,
		ChangedByName: s.displayName(ctx, actor.UserID),
	})
	return previous, nil
}

// AllowedTransitions lists the statuses the task may move to next.
func (s *Service) AllowedTransitions(ctx context.Context, actor *domain.Actor, taskID string) ([]domain.TaskStatus, error) {
	t, err := s.GetTask(ctx, actor, taskID)
	if err != nil {
		return nil, err
	}
	return workflow.AllowedTargets(t.Status), nil
}
