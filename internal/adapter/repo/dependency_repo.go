package repo

import (
	"context"
	"fmt"

	"taskflow/internal/domain"
	"taskflow/internal/infra"
	"taskflow/internal/sqlinline"
)

// DependencyRepositoryPG implements domain.DependencyRepository.
type DependencyRepositoryPG struct {
	sql infra.SQLExecutor
}

// NewDependencyRepository creates a dependency repository backed by PostgreSQL.
func NewDependencyRepository(sql infra.SQLExecutor) *DependencyRepositoryPG {
	return &DependencyRepositoryPG{sql: sql}
}

// Add inserts an edge. Duplicates and self loops are rejected by constraints.
func (r *DependencyRepositoryPG) Add(ctx context.Context, dep domain.Dependency) error {
	if _, err := r.sql.Exec(ctx, sqlinline.QInsertDependency, dep.TaskID, dep.DependsOnID); err != nil {
		return mapErr(err)
	}
	return nil
}

// Remove deletes an edge.
func (r *DependencyRepositoryPG) Remove(ctx context.Context, taskID, dependsOnID string) error {
	tag, err := r.sql.Exec(ctx, sqlinline.QDeleteDependency, taskID, dependsOnID)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListByProject returns every edge whose dependent task lives in the project.
func (r *DependencyRepositoryPG) ListByProject(ctx context.Context, projectID string) ([]domain.Dependency, error) {
	rows, err := r.sql.Query(ctx, sqlinline.QListDependenciesByProject, projectID)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()
	var out []domain.Dependency
	for rows.Next() {
		var d domain.Dependency
		if err := rows.Scan(&d.TaskID, &d.DependsOnID, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan dependency: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// ListPrerequisites returns the tasks taskID directly depends on.
func (r *DependencyRepositoryPG) ListPrerequisites(ctx context.Context, taskID string) ([]domain.Task, error) {
	return listTasks(ctx, r.sql, sqlinline.QListPrerequisites, taskID)
}
