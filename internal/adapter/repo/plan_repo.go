package repo

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"taskflow/internal/domain"
	"taskflow/internal/infra"
	"taskflow/internal/sqlinline"
)

// PlanRepositoryPG implements domain.PlanRepository.
type PlanRepositoryPG struct {
	sql infra.SQLExecutor
}

// NewPlanRepository creates a plan repository backed by PostgreSQL.
func NewPlanRepository(sql infra.SQLExecutor) *PlanRepositoryPG {
	return &PlanRepositoryPG{sql: sql}
}

// Upsert inserts or updates a plan keyed by name.
func (r *PlanRepositoryPG) Upsert(ctx context.Context, p *domain.Plan) error {
	features := p.Features
	if features == nil {
		features = []string{}
	}
	raw, err := json.Marshal(features)
	if err != nil {
		return fmt.Errorf("encode features: %w", err)
	}
	row := r.sql.QueryRow(ctx, sqlinline.QUpsertPlan,
		p.Name,
		p.Description,
		p.PriceCents,
		p.ProjectsLimit,
		p.TeamMembersLimit,
		p.TasksLimit,
		raw,
		p.IsActive,
	)
	return mapErr(row.Scan(&p.ID, &p.CreatedAt))
}

// GetByID fetches a plan.
func (r *PlanRepositoryPG) GetByID(ctx context.Context, id string) (*domain.Plan, error) {
	return scanPlan(r.sql.QueryRow(ctx, sqlinline.QSelectPlanByID, id))
}

// GetByName fetches a plan by its unique name.
func (r *PlanRepositoryPG) GetByName(ctx context.Context, name string) (*domain.Plan, error) {
	return scanPlan(r.sql.QueryRow(ctx, sqlinline.QSelectPlanByName, name))
}

// ListActive returns purchasable plans, cheapest first.
func (r *PlanRepositoryPG) ListActive(ctx context.Context) ([]domain.Plan, error) {
	rows, err := r.sql.Query(ctx, sqlinline.QListActivePlans)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()
	var out []domain.Plan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func scanPlan(row pgx.Row) (*domain.Plan, error) {
	var p domain.Plan
	var features []byte
	if err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.PriceCents,
		&p.ProjectsLimit,
		&p.TeamMembersLimit,
		&p.TasksLimit,
		&features,
		&p.IsActive,
		&p.CreatedAt,
	); err != nil {
		return nil, mapErr(err)
	}
	if len(features) > 0 {
		if err := json.Unmarshal(features, &p.Features); err != nil {
			return nil, fmt.Errorf("decode plan features: %w", err)
		}
	}
	return &p, nil
}
