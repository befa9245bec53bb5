package repo

import (
	"context"
	"fmt"

	"taskflow/internal/domain"
	"taskflow/internal/infra"
	"taskflow/internal/sqlinline"
)

// Store implements domain.Store on PostgreSQL through marker-tagged SQL.
type Store struct {
	sql    infra.SQLExecutor
	runner infra.TxRunner
}

// NewStore builds a Store over runner.
func NewStore(runner infra.TxRunner) *Store {
	return &Store{sql: runner, runner: runner}
}

func (s *Store) Users() domain.UserRepository { return &UserRepositoryPG{sql: s.sql} }

func (s *Store) Projects() domain.ProjectRepository { return &ProjectRepositoryPG{sql: s.sql} }

func (s *Store) Tasks() domain.TaskRepository { return &TaskRepositoryPG{sql: s.sql} }

func (s *Store) Dependencies() domain.DependencyRepository {
	return &DependencyRepositoryPG{sql: s.sql}
}

func (s *Store) Plans() domain.PlanRepository { return &PlanRepositoryPG{sql: s.sql} }

func (s *Store) Subscriptions() domain.SubscriptionRepository {
	return &SubscriptionRepositoryPG{sql: s.sql}
}

func (s *Store) Notifications() domain.NotificationRepository {
	return &NotificationRepositoryPG{sql: s.sql}
}

func (s *Store) Activity() domain.ActivityRepository { return &ActivityRepositoryPG{sql: s.sql} }

func (s *Store) Sweeps() domain.SweepRepository { return &SweepRepositoryPG{sql: s.sql} }

// WithinProject opens a transaction and locks the project row with
// SELECT ... FOR UPDATE before running fn, so concurrent graph and status
// writes on the same project are serialized.
func (s *Store) WithinProject(ctx context.Context, projectID string, fn func(ctx context.Context, tx domain.Store) error) error {
	if s.runner == nil {
		return fmt.Errorf("store has no transaction runner")
	}
	return s.runner.InTx(ctx, func(tx infra.SQLExecutor) error {
		var id string
		if err := tx.QueryRow(ctx, sqlinline.QLockProject, projectID).Scan(&id); err != nil {
			return mapErr(err)
		}
		inner := &Store{sql: tx}
		if r, ok := tx.(infra.TxRunner); ok {
			inner.runner = r
		}
		return fn(ctx, inner)
	})
}

// mapErr translates driver errors into domain sentinels.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if infra.IsNoRows(err) {
		return domain.ErrNotFound
	}
	switch infra.PgErrorCode(err) {
	case infra.PgUniqueViolation, infra.PgCheckViolation:
		return fmt.Errorf("%w: %v", domain.ErrConflict, err)
	case infra.PgForeignKeyViolation:
		return fmt.Errorf("%w: %v", domain.ErrNotFound, err)
	case infra.PgInvalidTextRepresentation:
		// A malformed id cannot name an existing row.
		return fmt.Errorf("%w: %v", domain.ErrNotFound, err)
	}
	return err
}

var _ domain.Store = (*Store)(nil)
