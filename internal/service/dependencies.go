package service

import (
	"context"
	"fmt"

	"taskflow/internal/access"
	"taskflow/internal/depgraph"
	"taskflow/internal/domain"
)

// AddTaskDependency records that taskID cannot complete before candidateID.
// The cycle check and the insert run under the project lock.
func (s *Service) AddTaskDependency(ctx context.Context, actor *domain.Actor, taskID, candidateID string) error {
	return s.changeDependency(ctx, actor, taskID, candidateID, true)
}

// RemoveTaskDependency deletes the edge taskID -> candidateID.
func (s *Service) RemoveTaskDependency(ctx context.Context, actor *domain.Actor, taskID, candidateID string) error {
	return s.changeDependency(ctx, actor, taskID, candidateID, false)
}

func (s *Service) changeDependency(ctx context.Context, actor *domain.Actor, taskID, candidateID string, add bool) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	if taskID == candidateID {
		return domain.ErrSelfDependency
	}
	current, err := s.store.Tasks().GetByID(ctx, taskID)
	if err != nil {
		return fmt.Errorf("load task: %w", err)
	}
	var task *domain.Task
	err = s.store.WithinProject(ctx, current.ProjectID, func(ctx context.Context, tx domain.Store) error {
		t, p, err := s.loadTask(ctx, tx, taskID)
		if err != nil {
			return err
		}
		if !access.CanModifyTask(actor, t, p) {
			return domain.ErrForbidden
		}
		candidate, err := tx.Tasks().GetByID(ctx, candidateID)
		if err != nil {
			return fmt.Errorf("load dependency: %w", err)
		}
		task = t
		graph := depgraph.NewManager(tx.Dependencies())
		if add {
			return graph.AddDependency(ctx, t, candidate)
		}
		return graph.RemoveDependency(ctx, t, candidate)
	})
	if err != nil {
		return err
	}
	verb := "Added"
	if !add {
		verb = "Removed"
	}
	s.record(ctx, actor.UserID, domain.ActionUpdated, domain.TaskTarget(task.ID),
		fmt.Sprintf("%s dependency of '%s' on %s", verb, task.Title, candidateID))
	return nil
}

// DependencyView describes the dependency neighbourhood of one task.
type DependencyView struct {
	TaskID                 string
	DirectDependencies     []string
	DirectDependents       []string
	TransitiveDependencies []string
	TransitiveDependents   []string
	// Blocked is true while any direct dependency is not completed.
	Blocked bool
}

// TransitiveDependencies returns every task taskID depends on, directly or not.
func (s *Service) TransitiveDependencies(ctx context.Context, actor *domain.Actor, taskID string) ([]string, error) {
	g, _, err := s.readableGraph(ctx, actor, taskID)
	if err != nil {
		return nil, err
	}
	return g.TransitiveDependencies(taskID), nil
}

// TransitiveDependents returns every task that depends on taskID, directly or not.
func (s *Service) TransitiveDependents(ctx context.Context, actor *domain.Actor, taskID string) ([]string, error) {
	g, _, err := s.readableGraph(ctx, actor, taskID)
	if err != nil {
		return nil, err
	}
	return g.TransitiveDependents(taskID), nil
}

// DependencyView returns direct and transitive neighbours of taskID.
func (s *Service) DependencyView(ctx context.Context, actor *domain.Actor, taskID string) (*DependencyView, error) {
	g, _, err := s.readableGraph(ctx, actor, taskID)
	if err != nil {
		return nil, err
	}
	blocked, err := s.isBlocked(ctx, taskID)
	if err != nil {
		return nil, err
	}
	return &DependencyView{
		TaskID:                 taskID,
		DirectDependencies:     g.DirectDependencies(taskID),
		DirectDependents:       g.DirectDependents(taskID),
		TransitiveDependencies: g.TransitiveDependencies(taskID),
		TransitiveDependents:   g.TransitiveDependents(taskID),
		Blocked:                blocked,
	}, nil
}

// IsBlocked reports whether some direct dependency of taskID is unfinished.
func (s *Service) IsBlocked(ctx context.Context, actor *domain.Actor, taskID string) (bool, error) {
	if _, err := s.GetTask(ctx, actor, taskID); err != nil {
		return false, err
	}
	return s.isBlocked(ctx, taskID)
}

func (s *Service) isBlocked(ctx context.Context, taskID string) (bool, error) {
	prereqs, err := s.store.Dependencies().ListPrerequisites(ctx, taskID)
	if err != nil {
		return false, fmt.Errorf("load dependencies: %w", err)
	}
	for _, p := range prereqs {
		if p.Status != domain.TaskStatusCompleted {
			return true, nil
		}
	}
	return false, nil
}

func (s *Service) readableGraph(ctx context.Context, actor *domain.Actor, taskID string) (*depgraph.Graph, *domain.Task, error) {
	t, err := s.GetTask(ctx, actor, taskID)
	if err != nil {
		return nil, nil, err
	}
	g, err := depgraph.NewManager(s.store.Dependencies()).Load(ctx, t.ProjectID)
	if err != nil {
		return nil, nil, err
	}
	return g, t, nil
}
