// Package service orchestrates the domain components behind every mutation:
// access policy, state machine, dependency graph, usage limits and
// notification fan-out.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"taskflow/internal/delivery"
	"taskflow/internal/domain"
	"taskflow/internal/fanout"
	"taskflow/internal/limits"
)

// Options configures a Service.
type Options struct {
	Store       domain.Store
	Dispatcher  *delivery.Dispatcher
	Logger      zerolog.Logger
	DefaultPlan string
	Now         func() time.Time
}

// Service is the application layer used by HTTP handlers, the worker and the CLI.
type Service struct {
	store      domain.Store
	limits     *limits.Enforcer
	dispatcher *delivery.Dispatcher
	logger     zerolog.Logger
	plan       string
	now        func() time.Time
}

// New builds a Service.
func New(opts Options) *Service {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	plan := opts.DefaultPlan
	if plan == "" {
		plan = domain.DefaultPlanName
	}
	return &Service{
		store:      opts.Store,
		limits:     limits.NewEnforcer(opts.Store, plan).WithClock(now),
		dispatcher: opts.Dispatcher,
		logger:     opts.Logger,
		plan:       plan,
		now:        now,
	}
}

// Store exposes the underlying store for background jobs.
func (s *Service) Store() domain.Store { return s.store }

// Now returns the service clock.
func (s *Service) Now() time.Time { return s.now() }

func requireActor(actor *domain.Actor) error {
	if actor == nil || actor.UserID == "" {
		return domain.ErrUnauthorized
	}
	return nil
}

func (s *Service) loadProject(ctx context.Context, store domain.Store, id string) (*domain.Project, error) {
	p, err := store.Projects().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load project: %w", err)
	}
	return p, nil
}

// loadTask returns the task together with its parent project.
func (s *Service) loadTask(ctx context.Context, store domain.Store, id string) (*domain.Task, *domain.Project, error) {
	t, err := store.Tasks().GetByID(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("load task: %w", err)
	}
	p, err := s.loadProject(ctx, store, t.ProjectID)
	if err != nil {
		return nil, nil, err
	}
	return t, p, nil
}

// displayName resolves the name shown in notification messages.
func (s *Service) displayName(ctx context.Context, userID string) string {
	u, err := s.store.Users().GetByID(ctx, userID)
	if err != nil {
		return userID
	}
	if strings.TrimSpace(u.Name) != "" {
		return u.Name
	}
	return u.Email
}

// record appends an activity entry. Failures are logged only.
func (s *Service) record(ctx context.Context, actorID string, action domain.ActivityAction, target domain.Target, description string) {
	info := domain.ClientInfoFromContext(ctx)
	a := &domain.Activity{
		ID:          uuid.NewString(),
		ActorID:     actorID,
		Action:      action,
		Target:      target,
		Description: description,
		IPAddress:   info.IPAddress,
		UserAgent:   info.UserAgent,
		Country:     info.Country,
	}
	if err := s.store.Activity().Append(ctx, a); err != nil {
		s.logger.Warn().Err(err).
			Str("actor_id", actorID).
			Str("action", string(action)).
			Msg("record activity failed")
	}
}

func (s *Service) publish(ctx context.Context, e fanout.Event) {
	s.dispatcher.Publish(ctx, e)
}

// validateDeadline rejects deadlines in the past.
func (s *Service) validateDeadline(field string, deadline *time.Time) error {
	if deadline != nil && deadline.Before(s.now()) {
		return domain.Invalid(field, "deadline cannot be in the past")
	}
	return nil
}
