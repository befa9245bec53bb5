// Package bootstrap wires storage, delivery and the application service for
// the taskflow binaries.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"taskflow/internal/adapter/memory"
	"taskflow/internal/adapter/repo"
	"taskflow/internal/delivery"
	"taskflow/internal/domain"
	"taskflow/internal/infra"
	"taskflow/internal/infra/credentials"
	"taskflow/internal/plans"
	"taskflow/internal/service"
	"taskflow/internal/sweep"
)

// Runtime bundles the components shared by the api, the worker and the CLI.
type Runtime struct {
	Config     *infra.Config
	Logger     zerolog.Logger
	Store      domain.Store
	Dispatcher *delivery.Dispatcher
	// SQL is nil when running on the memory driver.
	SQL     *infra.SQLRunner
	closers []func()
}

// Open connects the configured store and builds the notification dispatcher.
func Open(ctx context.Context, cfg *infra.Config, logger zerolog.Logger) (*Runtime, error) {
	rt := &Runtime{Config: cfg, Logger: logger}
	switch cfg.StorageDriver {
	case infra.StorageDriverMemory:
		rt.Store = memory.NewStore()
		logger.Warn().Msg("using in-memory storage; data is lost on restart")
	default:
		pool, err := infra.NewDBPool(ctx, cfg)
		if err != nil {
			return nil, err
		}
		rt.closers = append(rt.closers, pool.Close)
		rt.SQL = infra.NewSQLRunner(pool, logger)
		rt.Store = repo.NewStore(rt.SQL)
	}

	var hook credentials.Webhook
	if creds := rt.Credentials(); creds != nil && cfg.NotifyWebhookURL == "" {
		stored, err := creds.NotifyWebhook(ctx)
		if err != nil {
			logger.Warn().Err(err).Msg("load stored notify webhook failed")
		}
		hook = stored
	}
	rt.Dispatcher = delivery.NewDispatcher(rt.Store.Notifications(), buildSink(cfg, hook, logger), logger)
	return rt, nil
}

// Credentials returns the integration credential store, or nil on the memory driver.
func (rt *Runtime) Credentials() *credentials.Store {
	if rt.SQL == nil {
		return nil
	}
	return credentials.NewStore(rt.SQL)
}

// SeedPlans upserts the configured plan catalog.
func (rt *Runtime) SeedPlans(ctx context.Context) ([]domain.Plan, error) {
	catalog, err := plans.Load(rt.Config.PlansFile)
	if err != nil {
		return nil, err
	}
	seeded, err := plans.Seed(ctx, rt.Store.Plans(), catalog)
	if err != nil {
		return nil, fmt.Errorf("seed plans: %w", err)
	}
	return seeded, nil
}

func (rt *Runtime) Service() *service.Service {
	return service.New(service.Options{
		Store:       rt.Store,
		Dispatcher:  rt.Dispatcher,
		Logger:      rt.Logger,
		DefaultPlan: rt.Config.DefaultPlan,
	})
}

func (rt *Runtime) Sweeper() *sweep.Runner {
	return sweep.NewRunner(sweep.Options{
		Store:          rt.Store,
		Dispatcher:     rt.Dispatcher,
		Logger:         rt.Logger.With().Str("component", "sweep").Logger(),
		ReminderWindow: rt.Config.ReminderWindow,
		ExpiryWarning:  rt.Config.SubscriptionWarning,
	})
}

// Close releases the database pool, if any.
func (rt *Runtime) Close() {
	for i := len(rt.closers) - 1; i >= 0; i-- {
		rt.closers[i]()
	}
	rt.closers = nil
}

// buildSink always logs notifications and additionally posts them to the
// webhook from config, falling back to the stored one.
func buildSink(cfg *infra.Config, stored credentials.Webhook, logger zerolog.Logger) delivery.Sink {
	sinks := delivery.MultiSink{delivery.LogSink{Logger: logger.With().Str("component", "notify").Logger()}}
	url, secret := cfg.NotifyWebhookURL, cfg.NotifyWebhookSecret
	if url == "" && stored.Configured() {
		url, secret = stored.URL, stored.Secret
	}
	if url != "" {
		sinks = append(sinks, delivery.NewWebhookSink(url, secret, cfg.NotifyWebhookTTL, logger))
	}
	return sinks
}
