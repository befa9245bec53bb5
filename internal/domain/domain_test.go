package domain

import (
	"errors"
	"testing"
	"time"
)

func TestComputeProjectStats(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	past := now.Add(-48 * time.Hour)
	future := now.Add(48 * time.Hour)

	tests := []struct {
		name         string
		deadline     *time.Time
		tasks        []Task
		wantPct      float64
		wantComplete bool
		wantOverdue  bool
		wantLate     int
	}{
		{
			name:         "no tasks is vacuously complete",
			wantComplete: true,
		},
		{
			name:     "one of three rounds to two decimals",
			deadline: &future,
			tasks: []Task{
				{Status: TaskStatusCompleted},
				{Status: TaskStatusTodo},
				{Status: TaskStatusReview},
			},
			wantPct: 33.33,
		},
		{
			name:     "past deadline with open work is overdue",
			deadline: &past,
			tasks: []Task{
				{Status: TaskStatusInProgress, Deadline: &past},
				{Status: TaskStatusCompleted, Deadline: &past},
			},
			wantPct:     50,
			wantOverdue: true,
			wantLate:    1,
		},
		{
			name:         "completed project is never overdue",
			deadline:     &past,
			tasks:        []Task{{Status: TaskStatusCompleted}},
			wantPct:      100,
			wantComplete: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := &Project{ID: "p1", OwnerID: "u1", Deadline: tc.deadline}
			got := ComputeProjectStats(p, tc.tasks, now)
			if got.ProgressPercentage != tc.wantPct {
				t.Fatalf("ProgressPercentage = %v, want %v", got.ProgressPercentage, tc.wantPct)
			}
			if got.IsCompleted != tc.wantComplete {
				t.Fatalf("IsCompleted = %v, want %v", got.IsCompleted, tc.wantComplete)
			}
			if got.IsOverdue != tc.wantOverdue {
				t.Fatalf("IsOverdue = %v, want %v", got.IsOverdue, tc.wantOverdue)
			}
			if got.OverdueTasks != tc.wantLate {
				t.Fatalf("OverdueTasks = %d, want %d", got.OverdueTasks, tc.wantLate)
			}
		})
	}
}

func TestProjectParticipantsDeduplicatesOwner(t *testing.T) {
	p := &Project{OwnerID: "owner", MemberIDs: []string{"owner", "m1", "m2", "m1"}}
	got := p.Participants()
	want := []string{"owner", "m1", "m2"}
	if len(got) != len(want) {
		t.Fatalf("Participants() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Participants()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
	if !p.HasMember("owner") || p.HasMember("") || p.HasMember("stranger") {
		t.Fatalf("HasMember mismatch")
	}
}

func TestSubscriptionActivity(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	later := now.Add(72 * time.Hour)
	earlier := now.Add(-time.Hour)

	if !(&Subscription{Status: SubscriptionActive}).IsActiveSubscription(now) {
		t.Fatalf("open-ended active subscription should be active")
	}
	if !(&Subscription{Status: SubscriptionActive, EndDate: &later}).IsActiveSubscription(now) {
		t.Fatalf("future end date should be active")
	}
	if (&Subscription{Status: SubscriptionActive, EndDate: &earlier}).IsActiveSubscription(now) {
		t.Fatalf("past end date should be inactive")
	}
	if (&Subscription{Status: SubscriptionCancelled}).IsActiveSubscription(now) {
		t.Fatalf("cancelled subscription should be inactive")
	}
	if got := (&Subscription{EndDate: &later}).DaysUntilExpiry(now); got != 3 {
		t.Fatalf("DaysUntilExpiry = %d, want 3", got)
	}
}

func TestApplyPlanPeriod(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	sub := &Subscription{StartDate: start}
	sub.ApplyPlanPeriod(Plan{Name: "Free"})
	if sub.EndDate != nil {
		t.Fatalf("free plan should stay open-ended")
	}
	sub.ApplyPlanPeriod(Plan{Name: "Pro", PriceCents: 1999})
	if sub.EndDate == nil || !sub.EndDate.Equal(start.Add(PaidPeriod)) {
		t.Fatalf("EndDate = %v, want start+30d", sub.EndDate)
	}
}

func TestTypedErrorsMatchSentinels(t *testing.T) {
	cases := []struct {
		err    error
		target error
	}{
		{&UnmetDependenciesError{TaskIDs: []string{"a"}}, ErrUnmetDependencies},
		{&LimitExceededError{Resource: "projects"}, ErrLimitExceeded},
		{&TransitionError{From: TaskStatusTodo, To: TaskStatusReview}, ErrInvalidTransition},
		{Invalid("deadline", "must not be in the past"), ErrValidation},
	}
	for _, tc := range cases {
		if !errors.Is(tc.err, tc.target) {
			t.Fatalf("errors.Is(%v, %v) = false", tc.err, tc.target)
		}
	}
}
