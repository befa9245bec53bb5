// Package delivery persists notification drafts and hands them to outbound
// sinks.
package delivery

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"taskflow/internal/domain"
)

// Sink delivers a persisted notification outside the process.
type Sink interface {
	Deliver(ctx context.Context, n domain.Notification) error
}

// LogSink writes each notification to the logger.
type LogSink struct {
	Logger zerolog.Logger
}

func (s LogSink) Deliver(_ context.Context, n domain.Notification) error {
	s.Logger.Info().
		Str("notification_id", n.ID).
		Str("recipient_id", n.RecipientID).
		Str("type", string(n.Type)).
		Str("target_kind", string(n.Target.Kind)).
		Str("target_id", n.Target.ID).
		Msg(n.Title)
	return nil
}

// MultiSink delivers to every sink and joins their errors.
type MultiSink []Sink

func (m MultiSink) Deliver(ctx context.Context, n domain.Notification) error {
	var errs []error
	for _, s := range m {
		if s == nil {
			continue
		}
		if err := s.Deliver(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
