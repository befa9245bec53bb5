package repo

import (
	"context"
	"fmt"

	"taskflow/internal/domain"
	"taskflow/internal/infra"
	"taskflow/internal/sqlinline"
)

const defaultActivityLimit = 50

// ActivityRepositoryPG implements domain.ActivityRepository.
type ActivityRepositoryPG struct {
	sql infra.SQLExecutor
}

// NewActivityRepository creates an activity repository backed by PostgreSQL.
func NewActivityRepository(sql infra.SQLExecutor) *ActivityRepositoryPG {
	return &ActivityRepositoryPG{sql: sql}
}

// Append inserts an audit entry.
func (r *ActivityRepositoryPG) Append(ctx context.Context, a *domain.Activity) error {
	row := r.sql.QueryRow(ctx, sqlinline.QInsertActivity,
		a.ID,
		a.ActorID,
		string(a.Action),
		string(a.Target.Kind),
		a.Target.ID,
		a.Description,
		a.IPAddress,
		a.UserAgent,
		a.Country,
	)
	return mapErr(row.Scan(&a.CreatedAt))
}

// ListByActor returns the actor's latest entries.
func (r *ActivityRepositoryPG) ListByActor(ctx context.Context, actorID string, limit int) ([]domain.Activity, error) {
	return r.list(ctx, sqlinline.QListActivityByActor, actorID, clampLimit(limit))
}

// ListByTarget returns the latest entries about one entity.
func (r *ActivityRepositoryPG) ListByTarget(ctx context.Context, target domain.Target, limit int) ([]domain.Activity, error) {
	return r.list(ctx, sqlinline.QListActivityByTarget, string(target.Kind), target.ID, clampLimit(limit))
}

func (r *ActivityRepositoryPG) list(ctx context.Context, query string, args ...any) ([]domain.Activity, error) {
	rows, err := r.sql.Query(ctx, query, args...)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()
	var out []domain.Activity
	for rows.Next() {
		var a domain.Activity
		var kind string
		if err := rows.Scan(&a.ID, &a.ActorID, &a.Action, &kind, &a.Target.ID, &a.Description, &a.IPAddress, &a.UserAgent, &a.Country, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		a.Target.Kind = domain.TargetKind(kind)
		out = append(out, a)
	}
	return out, rows.Err()
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > 500 {
		return defaultActivityLimit
	}
	return limit
}
