package depgraph

import (
	"context"
	"fmt"

	"taskflow/internal/domain"
)

// EdgeStore is the persistence the manager needs.
type EdgeStore interface {
	ListByProject(ctx context.Context, projectID string) ([]domain.Dependency, error)
	Add(ctx context.Context, dep domain.Dependency) error
	Remove(ctx context.Context, taskID, dependsOnID string) error
}

// Manager validates and applies edge changes. The graph is rebuilt from
// storage on every call; callers serialize writes per project.
type Manager struct {
	edges EdgeStore
}

// NewManager returns a Manager backed by edges.
func NewManager(edges EdgeStore) *Manager {
	return &Manager{edges: edges}
}

// Load builds the current graph of a project.
func (m *Manager) Load(ctx context.Context, projectID string) (*Graph, error) {
	edges, err := m.edges.ListByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("load dependency edges: %w", err)
	}
	return New(edges), nil
}

// Validate checks whether task may depend on candidate without writing anything.
func Validate(g *Graph, task, candidate *domain.Task) error {
	if task == nil || candidate == nil {
		return domain.ErrNotFound
	}
	if task.ID == candidate.ID {
		return domain.ErrSelfDependency
	}
	if task.ProjectID != candidate.ProjectID {
		return domain.ErrCrossProjectDependency
	}
	if g.Reaches(candidate.ID, task.ID) {
		return domain.ErrCircularDependency
	}
	if g.HasEdge(task.ID, candidate.ID) {
		return fmt.Errorf("%w: dependency already exists", domain.ErrConflict)
	}
	return nil
}

// AddDependency records that task depends on candidate. On any error the
// stored graph is left unchanged.
func (m *Manager) AddDependency(ctx context.Context, task, candidate *domain.Task) error {
	if task == nil || candidate == nil {
		return domain.ErrNotFound
	}
	if task.ID == candidate.ID {
		return domain.ErrSelfDependency
	}
	if task.ProjectID != candidate.ProjectID {
		return domain.ErrCrossProjectDependency
	}
	g, err := m.Load(ctx, task.ProjectID)
	if err != nil {
		return err
	}
	if err := Validate(g, task, candidate); err != nil {
		return err
	}
	if err := m.edges.Add(ctx, domain.Dependency{TaskID: task.ID, DependsOnID: candidate.ID}); err != nil {
		return fmt.Errorf("add dependency: %w", err)
	}
	return nil
}

// RemoveDependency deletes the edge task -> candidate.
func (m *Manager) RemoveDependency(ctx context.Context, task, candidate *domain.Task) error {
	if task == nil || candidate == nil {
		return domain.ErrNotFound
	}
	if err := m.edges.Remove(ctx, task.ID, candidate.ID); err != nil {
		return fmt.Errorf("remove dependency: %w", err)
	}
	return nil
}
