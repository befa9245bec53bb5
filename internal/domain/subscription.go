package domain

import "time"

// Unlimited marks a plan limit that is never enforced.
const Unlimited = -1

// DefaultPlanName is used for users without a subscription.
const DefaultPlanName = "Free"

// PaidPeriod is the billing period assigned to paid plans without an explicit end date.
const PaidPeriod = 30 * 24 * time.Hour

// TrialPeriod is the length of a trial.
const TrialPeriod = 7 * 24 * time.Hour

// Plan describes the limits and price of a subscription tier.
type Plan struct {
	ID               string
	Name             string
	Description      string
	PriceCents       int64
	ProjectsLimit    int
	TeamMembersLimit int
	TasksLimit       int
	Features         []string
	IsActive         bool
	CreatedAt        time.Time
}

// IsFree reports whether the plan costs nothing.
func (p Plan) IsFree() bool { return p.PriceCents == 0 }

// SubscriptionStatus enumerates subscription lifecycle states.
type SubscriptionStatus string

const (
	SubscriptionActive    SubscriptionStatus = "active"
	SubscriptionTrialing  SubscriptionStatus = "trialing"
	SubscriptionCancelled SubscriptionStatus = "cancelled"
	SubscriptionPastDue   SubscriptionStatus = "past_due"
)

// Valid reports whether the status is known.
func (s SubscriptionStatus) Valid() bool {
	switch s {
	case SubscriptionActive, SubscriptionTrialing, SubscriptionCancelled, SubscriptionPastDue:
		return true
	}
	return false
}

// Subscription binds a user to exactly one plan.
type Subscription struct {
	ID           string
	UserID       string
	PlanID       string
	Status       SubscriptionStatus
	StartDate    time.Time
	EndDate      *time.Time
	TrialEndDate *time.Time
	AutoRenew    bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsActiveSubscription reports whether the subscription is active and not past its end date.
func (s *Subscription) IsActiveSubscription(now time.Time) bool {
	if s == nil || s.Status != SubscriptionActive {
		return false
	}
	return s.EndDate == nil || s.EndDate.After(now)
}

// IsTrialPeriod reports whether the subscription is inside its trial window.
func (s *Subscription) IsTrialPeriod(now time.Time) bool {
	return s != nil && s.Status == SubscriptionTrialing && s.TrialEndDate != nil && s.TrialEndDate.After(now)
}

// DaysUntilExpiry returns whole days left before EndDate, or -1 when open-ended.
func (s *Subscription) DaysUntilExpiry(now time.Time) int {
	if s == nil || s.EndDate == nil {
		return -1
	}
	d := s.EndDate.Sub(now)
	if d <= 0 {
		return 0
	}
	return int(d / (24 * time.Hour))
}

// ApplyPlanPeriod sets EndDate for paid plans that have none.
func (s *Subscription) ApplyPlanPeriod(plan Plan) {
	if s == nil || plan.IsFree() || s.EndDate != nil {
		return
	}
	end := s.StartDate.Add(PaidPeriod)
	s.EndDate = &end
}
