package repo

import (
	"context"

	"taskflow/internal/infra"
	"taskflow/internal/sqlinline"
)

// SweepRepositoryPG implements domain.SweepRepository.
type SweepRepositoryPG struct {
	sql infra.SQLExecutor
}

// Claim inserts the (job, period) row and reports whether this call created it.
func (r *SweepRepositoryPG) Claim(ctx context.Context, job, period string) (bool, error) {
	tag, err := r.sql.Exec(ctx, sqlinline.QClaimSweepRun, job, period)
	if err != nil {
		return false, mapErr(err)
	}
	return tag.RowsAffected() == 1, nil
}
