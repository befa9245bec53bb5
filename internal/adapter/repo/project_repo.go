package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"taskflow/internal/domain"
	"taskflow/internal/infra"
	"taskflow/internal/sqlinline"
)

// ProjectRepositoryPG implements domain.ProjectRepository.
type ProjectRepositoryPG struct {
	sql infra.SQLExecutor
}

// NewProjectRepository creates a project repository backed by PostgreSQL.
func NewProjectRepository(sql infra.SQLExecutor) *ProjectRepositoryPG {
	return &ProjectRepositoryPG{sql: sql}
}

// Create inserts the project and one member row per MemberIDs entry.
func (r *ProjectRepositoryPG) Create(ctx context.Context, p *domain.Project) error {
	row := r.sql.QueryRow(ctx, sqlinline.QInsertProject, p.ID, p.Name, p.Description, p.Deadline, p.OwnerID)
	if err := row.Scan(&p.CreatedAt, &p.UpdatedAt); err != nil {
		return mapErr(err)
	}
	for _, memberID := range p.MemberIDs {
		if _, err := r.sql.Exec(ctx, sqlinline.QInsertProjectMember, p.ID, memberID); err != nil {
			return fmt.Errorf("insert member %s: %w", memberID, mapErr(err))
		}
	}
	return nil
}

// GetByID fetches a project with its member ids.
func (r *ProjectRepositoryPG) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	return scanProject(r.sql.QueryRow(ctx, sqlinline.QSelectProjectByID, id))
}

// Update writes name, description and deadline.
func (r *ProjectRepositoryPG) Update(ctx context.Context, p *domain.Project) error {
	row := r.sql.QueryRow(ctx, sqlinline.QUpdateProject, p.ID, p.Name, p.Description, p.Deadline)
	return mapErr(row.Scan(&p.UpdatedAt))
}

// Delete removes the project; tasks, edges and member rows cascade.
func (r *ProjectRepositoryPG) Delete(ctx context.Context, id string) error {
	tag, err := r.sql.Exec(ctx, sqlinline.QDeleteProject, id)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListForUser returns projects the user owns or belongs to.
func (r *ProjectRepositoryPG) ListForUser(ctx context.Context, userID string) ([]domain.Project, error) {
	return r.list(ctx, sqlinline.QListProjectsForUser, userID)
}

// AddMember inserts a member row; an existing row maps to domain.ErrConflict.
func (r *ProjectRepositoryPG) AddMember(ctx context.Context, projectID, userID string) error {
	tag, err := r.sql.Exec(ctx, sqlinline.QInsertProjectMember, projectID, userID)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: user is already a member", domain.ErrConflict)
	}
	return nil
}

// RemoveMember deletes a member row.
func (r *ProjectRepositoryPG) RemoveMember(ctx context.Context, projectID, userID string) error {
	tag, err := r.sql.Exec(ctx, sqlinline.QDeleteProjectMember, projectID, userID)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListDueBetween returns projects with a deadline in [from, to) and unfinished tasks.
func (r *ProjectRepositoryPG) ListDueBetween(ctx context.Context, from, to time.Time) ([]domain.Project, error) {
	return r.list(ctx, sqlinline.QListProjectsDueBetween, from, to)
}

// ListWithTaskActivitySince returns projects whose tasks changed since the given time.
func (r *ProjectRepositoryPG) ListWithTaskActivitySince(ctx context.Context, since time.Time) ([]domain.Project, error) {
	return r.list(ctx, sqlinline.QListProjectsWithTaskActivitySince, since)
}

// CountOwned counts projects owned by the user.
func (r *ProjectRepositoryPG) CountOwned(ctx context.Context, userID string) (int, error) {
	return count(ctx, r.sql, sqlinline.QCountOwnedProjects, userID)
}

// CountMembersOfOwned counts member rows across the user's projects.
func (r *ProjectRepositoryPG) CountMembersOfOwned(ctx context.Context, userID string) (int, error) {
	return count(ctx, r.sql, sqlinline.QCountMembersOfOwnedProjects, userID)
}

func (r *ProjectRepositoryPG) list(ctx context.Context, query string, args ...any) ([]domain.Project, error) {
	rows, err := r.sql.Query(ctx, query, args...)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()
	var out []domain.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func scanProject(row pgx.Row) (*domain.Project, error) {
	var p domain.Project
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Deadline, &p.OwnerID, &p.CreatedAt, &p.UpdatedAt, &p.MemberIDs); err != nil {
		return nil, mapErr(err)
	}
	return &p, nil
}

func count(ctx context.Context, sql infra.SQLExecutor, query string, args ...any) (int, error) {
	var n int
	if err := sql.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, mapErr(err)
	}
	return n, nil
}
