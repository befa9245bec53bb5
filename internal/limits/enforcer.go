// Package limits enforces subscription plan limits on resource creation.
package limits

import (
	"context"
	"errors"
	"fmt"
	"time"

	"taskflow/internal/domain"
)

// Resource names a limited resource.
type Resource string

const (
	ResourceProjects Resource = "projects"
	ResourceMembers  Resource = "team_members"
	ResourceTasks    Resource = "tasks"
)

const (
	ReasonProjects = "Projects limit reached"
	ReasonMembers  = "Team members limit reached"
	ReasonTasks    = "Tasks limit reached"
	ReasonOK       = "Within limits"
)

// Usage is what a user currently consumes. Members counts member rows across
// every project the user owns.
type Usage struct {
	Projects int
	Members  int
	Tasks    int
}

// Check evaluates projects, then members, then tasks and stops at the first
// exhausted limit. Unlimited limits are skipped.
func Check(plan domain.Plan, usage Usage) (bool, string) {
	if r, hit := firstExhausted(plan, usage); hit {
		return false, reasonFor(r)
	}
	return true, ReasonOK
}

// Require returns a LimitExceededError when the plan is exhausted.
func Require(plan domain.Plan, usage Usage) error {
	if r, hit := firstExhausted(plan, usage); hit {
		return &domain.LimitExceededError{Resource: string(r), Reason: reasonFor(r)}
	}
	return nil
}

// RequireResource gates a creation that consumes r. Other resources are not
// consulted.
func RequireResource(plan domain.Plan, usage Usage, r Resource) error {
	var limit, used int
	switch r {
	case ResourceProjects:
		limit, used = plan.ProjectsLimit, usage.Projects
	case ResourceMembers:
		limit, used = plan.TeamMembersLimit, usage.Members
	case ResourceTasks:
		limit, used = plan.TasksLimit, usage.Tasks
	default:
		return fmt.Errorf("unknown resource %q", r)
	}
	if exhausted(limit, used) {
		return &domain.LimitExceededError{Resource: string(r), Reason: reasonFor(r)}
	}
	return nil
}

func firstExhausted(plan domain.Plan, usage Usage) (Resource, bool) {
	switch {
	case exhausted(plan.ProjectsLimit, usage.Projects):
		return ResourceProjects, true
	case exhausted(plan.TeamMembersLimit, usage.Members):
		return ResourceMembers, true
	case exhausted(plan.TasksLimit, usage.Tasks):
		return ResourceTasks, true
	}
	return "", false
}

func exhausted(limit, used int) bool {
	if limit == domain.Unlimited {
		return false
	}
	return used >= limit
}

func reasonFor(r Resource) string {
	switch r {
	case ResourceProjects:
		return ReasonProjects
	case ResourceMembers:
		return ReasonMembers
	case ResourceTasks:
		return ReasonTasks
	}
	return ReasonOK
}

// Report is the outcome of a limit check for one user.
type Report struct {
	WithinLimits bool
	Message      string
	Plan         domain.Plan
	Usage        Usage
}

// Enforcer resolves a user's plan and usage from storage.
type Enforcer struct {
	store    domain.Store
	fallback string
	now      func() time.Time
}

// NewEnforcer builds an Enforcer. Users without a live subscription fall back
// to the plan named fallback.
func NewEnforcer(store domain.Store, fallback string) *Enforcer {
	if fallback == "" {
		fallback = domain.DefaultPlanName
	}
	return &Enforcer{store: store, fallback: fallback, now: time.Now}
}

// WithClock replaces the time source used to decide whether a subscription is live.
func (e *Enforcer) WithClock(now func() time.Time) *Enforcer {
	e.now = now
	return e
}

// In returns a copy of e reading from store, typically an open project
// transaction.
func (e *Enforcer) In(store domain.Store) *Enforcer {
	c := *e
	c.store = store
	return &c
}

// PlanFor returns the plan governing userID: the subscribed plan while the
// subscription is active or trialing, the fallback plan otherwise.
func (e *Enforcer) PlanFor(ctx context.Context, userID string) (domain.Plan, error) {
	sub, err := e.store.Subscriptions().GetByUserID(ctx, userID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return domain.Plan{}, fmt.Errorf("load subscription: %w", err)
	}
	now := e.now()
	if err == nil && (sub.IsActiveSubscription(now) || sub.IsTrialPeriod(now)) {
		plan, err := e.store.Plans().GetByID(ctx, sub.PlanID)
		if err != nil {
			return domain.Plan{}, fmt.Errorf("load subscription plan: %w", err)
		}
		return *plan, nil
	}
	plan, err := e.store.Plans().GetByName(ctx, e.fallback)
	if err != nil {
		return domain.Plan{}, fmt.Errorf("load %s plan: %w", e.fallback, err)
	}
	return *plan, nil
}

// UsageFor counts what userID currently consumes.
func (e *Enforcer) UsageFor(ctx context.Context, userID string) (Usage, error) {
	var u Usage
	var err error
	if u.Projects, err = e.store.Projects().CountOwned(ctx, userID); err != nil {
		return u, fmt.Errorf("count projects: %w", err)
	}
	if u.Members, err = e.store.Projects().CountMembersOfOwned(ctx, userID); err != nil {
		return u, fmt.Errorf("count members: %w", err)
	}
	if u.Tasks, err = e.store.Tasks().CountInOwnedProjects(ctx, userID); err != nil {
		return u, fmt.Errorf("count tasks: %w", err)
	}
	return u, nil
}

// Report runs Check for userID.
func (e *Enforcer) Report(ctx context.Context, userID string) (Report, error) {
	plan, err := e.PlanFor(ctx, userID)
	if err != nil {
		return Report{}, err
	}
	usage, err := e.UsageFor(ctx, userID)
	if err != nil {
		return Report{}, err
	}
	ok, msg := Check(plan, usage)
	return Report{WithinLimits: ok, Message: msg, Plan: plan, Usage: usage}, nil
}

// Enforce fails with a LimitExceededError when userID has no room left for
// one more r.
func (e *Enforcer) Enforce(ctx context.Context, userID string, r Resource) error {
	plan, err := e.PlanFor(ctx, userID)
	if err != nil {
		return err
	}
	usage, err := e.UsageFor(ctx, userID)
	if err != nil {
		return err
	}
	return RequireResource(plan, usage, r)
}
