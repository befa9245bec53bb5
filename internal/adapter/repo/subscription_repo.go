package repo

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"taskflow/internal/domain"
	"taskflow/internal/infra"
	"taskflow/internal/sqlinline"
)

// SubscriptionRepositoryPG implements domain.SubscriptionRepository.
type SubscriptionRepositoryPG struct {
	sql infra.SQLExecutor
}

// NewSubscriptionRepository creates a subscription repository backed by PostgreSQL.
func NewSubscriptionRepository(sql infra.SQLExecutor) *SubscriptionRepositoryPG {
	return &SubscriptionRepositoryPG{sql: sql}
}

// GetByUserID fetches the user's subscription.
func (r *SubscriptionRepositoryPG) GetByUserID(ctx context.Context, userID string) (*domain.Subscription, error) {
	return scanSubscription(r.sql.QueryRow(ctx, sqlinline.QSelectSubscriptionByUser, userID))
}

// Upsert writes the user's only subscription row.
func (r *SubscriptionRepositoryPG) Upsert(ctx context.Context, s *domain.Subscription) error {
	row := r.sql.QueryRow(ctx, sqlinline.QUpsertSubscription,
		s.UserID,
		s.PlanID,
		string(s.Status),
		s.StartDate,
		s.EndDate,
		s.TrialEndDate,
		s.AutoRenew,
	)
	return mapErr(row.Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt))
}

// ListActiveEndingBetween returns active subscriptions ending in [from, to).
func (r *SubscriptionRepositoryPG) ListActiveEndingBetween(ctx context.Context, from, to time.Time) ([]domain.Subscription, error) {
	rows, err := r.sql.Query(ctx, sqlinline.QListActiveSubscriptionsEndingBetween, from, to)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()
	var out []domain.Subscription
	for rows.Next() {
		s, err := scanSubscription(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

func scanSubscription(row pgx.Row) (*domain.Subscription, error) {
	var s domain.Subscription
	if err := row.Scan(
		&s.ID,
		&s.UserID,
		&s.PlanID,
		&s.Status,
		&s.StartDate,
		&s.EndDate,
		&s.TrialEndDate,
		&s.AutoRenew,
		&s.CreatedAt,
		&s.UpdatedAt,
	); err != nil {
		return nil, mapErr(err)
	}
	return &s, nil
}
