package service

import (
	"context"
	"errors"
	"fmt"

	"taskflow/internal/domain"
)

// SubscriptionView pairs a subscription with its plan.
type SubscriptionView struct {
	Subscription domain.Subscription
	Plan         domain.Plan
}

// ListPlans returns the purchasable plans.
func (s *Service) ListPlans(ctx context.Context) ([]domain.Plan, error) {
	return s.store.Plans().ListActive(ctx)
}

// GetSubscription returns the user's subscription, creating one on the
// default plan the first time.
func (s *Service) GetSubscription(ctx context.Context, userID string) (*SubscriptionView, error) {
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}
	sub, err := s.store.Subscriptions().GetByUserID(ctx, userID)
	switch {
	case err == nil:
		plan, err := s.store.Plans().GetByID(ctx, sub.PlanID)
		if err != nil {
			return nil, fmt.Errorf("load plan: %w", err)
		}
		return &SubscriptionView{Subscription: *sub, Plan: *plan}, nil
	case !errors.Is(err, domain.ErrNotFound):
		return nil, fmt.Errorf("load subscription: %w", err)
	}

	plan, err := s.store.Plans().GetByName(ctx, s.plan)
	if err != nil {
		return nil, fmt.Errorf("load %s plan: %w", s.plan, err)
	}
	sub = &domain.Subscription{
		UserID:    userID,
		PlanID:    plan.ID,
		Status:    domain.SubscriptionActive,
		StartDate: s.now(),
		AutoRenew: true,
	}
	sub.ApplyPlanPeriod(*plan)
	if err := s.store.Subscriptions().Upsert(ctx, sub); err != nil {
		return nil, fmt.Errorf("create subscription: %w", err)
	}
	return &SubscriptionView{Subscription: *sub, Plan: *plan}, nil
}

// ChangePlan moves the user to the named active plan, starting a new period.
func (s *Service) ChangePlan(ctx context.Context, userID, planName string) (*SubscriptionView, error) {
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}
	plan, err := s.activePlan(ctx, planName)
	if err != nil {
		return nil, err
	}
	view, err := s.GetSubscription(ctx, userID)
	if err != nil {
		return nil, err
	}
	sub := view.Subscription
	previous := view.Plan.Name
	sub.PlanID = plan.ID
	sub.Status = domain.SubscriptionActive
	sub.StartDate = s.now()
	sub.EndDate = nil
	sub.ApplyPlanPeriod(*plan)
	if err := s.store.Subscriptions().Upsert(ctx, &sub); err != nil {
		return nil, fmt.Errorf("save subscription: %w", err)
	}
	s.record(ctx, userID, domain.ActionSubscriptionChanged, domain.SubscriptionTarget(sub.ID),
		fmt.Sprintf("Changed plan from %s to %s", previous, plan.Name))
	return &SubscriptionView{Subscription: sub, Plan: *plan}, nil
}

// StartTrial puts the user on a trial of the named plan. Each user gets one trial.
func (s *Service) StartTrial(ctx context.Context, userID, planName string) (*SubscriptionView, error) {
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}
	plan, err := s.activePlan(ctx, planName)
	if err != nil {
		return nil, err
	}
	if plan.IsFree() {
		return nil, domain.Invalid("plan", "free plans have no trial")
	}
	view, err := s.GetSubscription(ctx, userID)
	if err != nil {
		return nil, err
	}
	sub := view.Subscription
	if sub.TrialEndDate != nil {
		return nil, fmt.Errorf("%w: trial already used", domain.ErrConflict)
	}
	now := s.now()
	trialEnd := now.Add(domain.TrialPeriod)
	sub.PlanID = plan.ID
	sub.Status = domain.SubscriptionTrialing
	sub.StartDate = now
	sub.TrialEndDate = &trialEnd
	sub.EndDate = &trialEnd
	if err := s.store.Subscriptions().Upsert(ctx, &sub); err != nil {
		return nil, fmt.Errorf("save subscription: %w", err)
	}
	s.record(ctx, userID, domain.ActionSubscriptionChanged, domain.SubscriptionTarget(sub.ID),
		fmt.Sprintf("Started %s trial", plan.Name))
	return &SubscriptionView{Subscription: sub, Plan: *plan}, nil
}

func (s *Service) activePlan(ctx context.Context, name string) (*domain.Plan, error) {
	if name == "" {
		return nil, domain.Invalid("plan", "is required")
	}
	plan, err := s.store.Plans().GetByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("load plan: %w", err)
	}
	if !plan.IsActive {
		return nil, domain.Invalid("plan", "is not available")
	}
	return plan, nil
}
