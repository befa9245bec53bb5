package delivery

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"taskflow/internal/domain"
	"taskflow/internal/fanout"
)

// Dispatcher stores drafts as notifications and forwards them to a sink.
// Failures are logged and never returned: notifying is best effort and must
// not fail the operation that triggered it.
type Dispatcher struct {
	repo   domain.NotificationRepository
	sink   Sink
	logger zerolog.Logger
}

// NewDispatcher wires a dispatcher. sink may be nil.
func NewDispatcher(repo domain.NotificationRepository, sink Sink, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{repo: repo, sink: sink, logger: logger}
}

// Publish computes the drafts for e and dispatches them. It returns the
// number of notifications stored.
func (d *Dispatcher) Publish(ctx context.Context, e fanout.Event) int {
	return d.Dispatch(ctx, fanout.FanOut(e))
}

// Dispatch persists then delivers each draft.
func (d *Dispatcher) Dispatch(ctx context.Context, drafts []fanout.Draft) int {
	if d == nil {
		return 0
	}
	stored := 0
	for _, draft := range drafts {
		n := draft.Notification()
		n.ID = uuid.NewString()
		if err := d.repo.Create(ctx, n); err != nil {
			d.logger.Error().Err(err).
				Str("recipient_id", draft.RecipientID).
				Str("type", string(draft.Type)).
				Msg("store notification failed")
			continue
		}
		stored++
		if d.sink == nil {
			continue
		}
		if err := d.sink.Deliver(ctx, *n); err != nil {
			d.logger.Warn().Err(err).
				Str("notification_id", n.ID).
				Msg("deliver notification failed")
		}
	}
	return stored
}
