package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"taskflow/internal/access"
	"taskflow/internal/domain"
	"taskflow/internal/fanout"
	"taskflow/internal/limits"
)

// ProjectInput holds the fields of a new project.
type ProjectInput struct {
	Name        string
	Description string
	Deadline    *time.Time
}

// ProjectUpdate holds optional project changes. ClearDeadline removes the deadline.
type ProjectUpdate struct {
	Name          *string
	Description   *string
	Deadline      *time.Time
	ClearDeadline bool
}

// CreateProject creates a project owned by actor. The owner is added as the
// first member.
func (s *Service) CreateProject(ctx context.Context, actor *domain.Actor, in ProjectInput) (*domain.Project, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.Invalid("name", "is required")
	}
	if err := s.validateDeadline("deadline", in.Deadline); err != nil {
		return nil, err
	}
	if err := s.limits.Enforce(ctx, actor.UserID, limits.ResourceProjects); err != nil {
		return nil, err
	}

	p := &domain.Project{
		ID:          uuid.NewString(),
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		Deadline:    in.Deadline,
		OwnerID:     actor.UserID,
		MemberIDs:   []string{actor.UserID},
	}
	if err := s.store.Projects().Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	s.record(ctx, actor.UserID, domain.ActionCreated, domain.ProjectTarget(p.ID), fmt.Sprintf("Created project '%s'", p.Name))
	return p, nil
}

// GetProject returns a project the actor may read.
func (s *Service) GetProject(ctx context.Context, actor *domain.Actor, id string) (*domain.Project, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	p, err := s.loadProject(ctx, s.store, id)
	if err != nil {
		return nil, err
	}
	if !access.CanAccessProject(actor, p) {
		return nil, domain.ErrForbidden
	}
	return p, nil
}

// ListProjects returns the projects actor owns or belongs to.
func (s *Service) ListProjects(ctx context.Context, actor *domain.Actor) ([]domain.Project, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	return s.store.Projects().ListForUser(ctx, actor.UserID)
}

// UpdateProject applies changes to a project the actor owns.
func (s *Service) UpdateProject(ctx context.Context, actor *domain.Actor, id string, in ProjectUpdate) (*domain.Project, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	p, err := s.loadProject(ctx, s.store, id)
	if err != nil {
		return nil, err
	}
	if !access.CanModifyProject(actor, p) {
		return nil, domain.ErrForbidden
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, domain.Invalid("name", "is required")
		}
		p.Name = name
	}
	if in.Description != nil {
		p.Description = strings.TrimSpace(*in.Description)
	}
	switch {
	case in.ClearDeadline:
		p.Deadline = nil
	case in.Deadline != nil:
		if err := s.validateDeadline("deadline", in.Deadline); err != nil {
			return nil, err
		}
		p.Deadline = in.Deadline
	}
	if err := s.store.Projects().Update(ctx, p); err != nil {
		return nil, fmt.Errorf("update project: %w", err)
	}
	s.record(ctx, actor.UserID, domain.ActionUpdated, domain.ProjectTarget(p.ID), fmt.Sprintf("Updated project '%s'", p.Name))
	return p, nil
}

// DeleteProject removes a project with its tasks and dependency edges.
func (s *Service) DeleteProject(ctx context.Context, actor *domain.Actor, id string) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	p, err := s.loadProject(ctx, s.store, id)
	if err != nil {
		return err
	}
	if !access.CanDeleteProject(actor, p) {
		return domain.ErrForbidden
	}
	if err := s.store.Projects().Delete(ctx, id); err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	s.record(ctx, actor.UserID, domain.ActionDeleted, domain.ProjectTarget(id), fmt.Sprintf("Deleted project '%s'", p.Name))
	return nil
}

// AddMember adds userID to the project and sends them an invite notification.
// Only the owner may add members, and only within the owner's plan limits.
func (s *Service) AddMember(ctx context.Context, actor *domain.Actor, projectID, userID string) (*domain.Project, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	p, err := s.loadProject(ctx, s.store, projectID)
	if err != nil {
		return nil, err
	}
	if !access.CanModifyProject(actor, p) {
		return nil, domain.ErrForbidden
	}
	if _, err := s.store.Users().GetByID(ctx, userID); err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	err = s.store.WithinProject(ctx, p.ID, func(ctx context.Context, tx domain.Store) error {
		locked, err := s.loadProject(ctx, tx, p.ID)
		if err != nil {
			return err
		}
		if locked.HasMember(userID) {
			return fmt.Errorf("%w: user is already a member", domain.ErrConflict)
		}
		if err := s.limits.In(tx).Enforce(ctx, locked.OwnerID, limits.ResourceMembers); err != nil {
			return err
		}
		if err := tx.Projects().AddMember(ctx, locked.ID, userID); err != nil {
			return fmt.Errorf("add member: %w", err)
		}
		locked.MemberIDs = append(locked.MemberIDs, userID)
		p = locked
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.record(ctx, userID, domain.ActionJoinedProject, domain.ProjectTarget(p.ID), fmt.Sprintf("Joined project '%s'", p.Name))
	s.publish(ctx, fanout.ProjectInvite{
		Project:       *p,
		InvitedUserID: userID,
		InvitedBy:     s.displayName(ctx, actor.UserID),
	})
	return p, nil
}

// RemoveMember removes userID from the project. The owner cannot be removed.
// Tasks assigned to the removed member are unassigned.
func (s *Service) RemoveMember(ctx context.Context, actor *domain.Actor, projectID, userID string) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	p, err := s.loadProject(ctx, s.store, projectID)
	if err != nil {
		return err
	}
	if !access.CanModifyProject(actor, p) {
		return domain.ErrForbidden
	}
	if p.IsOwner(userID) {
		return domain.Invalid("user_id", "the project owner cannot be removed")
	}
	err = s.store.WithinProject(ctx, p.ID, func(ctx context.Context, tx domain.Store) error {
		if err := tx.Projects().RemoveMember(ctx, p.ID, userID); err != nil {
			return fmt.Errorf("remove member: %w", err)
		}
		assigned, err := tx.Tasks().List(ctx, domain.TaskFilter{ProjectID: p.ID, AssigneeID: userID})
		if err != nil {
			return fmt.Errorf("list assigned tasks: %w", err)
		}
		for i := range assigned {
			assigned[i].AssigneeID = ""
			if err := tx.Tasks().Update(ctx, &assigned[i]); err != nil {
				return fmt.Errorf("unassign task: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.record(ctx, userID, domain.ActionLeftProject, domain.ProjectTarget(p.ID), fmt.Sprintf("Left project '%s'", p.Name))
	return nil
}

// EvaluateAccess reports whether actor may perform op on a project, or on a
// task when taskID is set.
func (s *Service) EvaluateAccess(ctx context.Context, actor *domain.Actor, projectID, taskID string, op access.Operation) (bool, error) {
	project, task, err := s.loadEntity(ctx, projectID, taskID)
	if err != nil {
		return false, err
	}
	return access.Evaluate(actor, op, project, task), nil
}

// Permissions evaluates every operation against one loaded snapshot.
func (s *Service) Permissions(ctx context.Context, actor *domain.Actor, projectID, taskID string) (map[access.Operation]bool, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	project, task, err := s.loadEntity(ctx, projectID, taskID)
	if err != nil {
		return nil, err
	}
	out := make(map[access.Operation]bool, 4)
	for _, op := range []access.Operation{access.OpRead, access.OpModify, access.OpDelete, access.OpAssign} {
		out[op] = access.Evaluate(actor, op, project, task)
	}
	return out, nil
}

func (s *Service) loadEntity(ctx context.Context, projectID, taskID string) (*domain.Project, *domain.Task, error) {
	if taskID != "" {
		task, project, err := s.loadTask(ctx, s.store, taskID)
		return project, task, err
	}
	project, err := s.loadProject(ctx, s.store, projectID)
	return project, nil, err
}
