// Package sweep runs the periodic notification jobs: deadline reminders,
// weekly project reports and subscription expiry warnings. Each job claims
// its period before doing any work, so a period is processed at most once
// across workers and restarts.
package sweep

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"taskflow/internal/delivery"
	"taskflow/internal/domain"
	"taskflow/internal/fanout"
)

const (
	JobDeadlineReminders  = "deadline_reminders"
	JobWeeklyReports      = "weekly_reports"
	JobSubscriptionExpiry = "subscription_expiry"
)

const (
	defaultReminderWindow = 24 * time.Hour
	defaultExpiryWarning  = 3 * 24 * time.Hour
	reportLookback        = 7 * 24 * time.Hour
)

// Result summarises one job invocation.
type Result struct {
	Job           string
	Period        string
	Skipped       bool
	Events        int
	Notifications int
}

// Options configures a Runner.
type Options struct {
	Store          domain.Store
	Dispatcher     *delivery.Dispatcher
	Logger         zerolog.Logger
	Now            func() time.Time
	ReminderWindow time.Duration
	ExpiryWarning  time.Duration
}

// Runner executes sweep jobs against a store.
type Runner struct {
	store          domain.Store
	dispatcher     *delivery.Dispatcher
	logger         zerolog.Logger
	now            func() time.Time
	reminderWindow time.Duration
	expiryWarning  time.Duration
}

// NewRunner builds a Runner, filling unset durations with defaults.
func NewRunner(opts Options) *Runner {
	r := &Runner{
		store:          opts.Store,
		dispatcher:     opts.Dispatcher,
		logger:         opts.Logger,
		now:            opts.Now,
		reminderWindow: opts.ReminderWindow,
		expiryWarning:  opts.ExpiryWarning,
	}
	if r.now == nil {
		r.now = time.Now
	}
	if r.reminderWindow <= 0 {
		r.reminderWindow = defaultReminderWindow
	}
	if r.expiryWarning <= 0 {
		r.expiryWarning = defaultExpiryWarning
	}
	return r
}

// Jobs lists the job names accepted by Run.
func Jobs() []string {
	return []string{JobDeadlineReminders, JobWeeklyReports, JobSubscriptionExpiry}
}

// Run executes one job by name.
func (r *Runner) Run(ctx context.Context, job string) (Result, error) {
	switch job {
	case JobDeadlineReminders:
		return r.DeadlineReminders(ctx)
	case JobWeeklyReports:
		return r.WeeklyReports(ctx)
	case JobSubscriptionExpiry:
		return r.SubscriptionExpiry(ctx)
	}
	return Result{Job: job}, fmt.Errorf("unknown sweep job %q", job)
}

// RunAll executes every job and joins their errors. A failing job does not
// stop the others.
func (r *Runner) RunAll(ctx context.Context) ([]Result, error) {
	var (
		results []Result
		errs    []error
	)
	for _, job := range Jobs() {
		res, err := r.Run(ctx, job)
		if err != nil {
			r.logger.Error().Err(err).Str("job", job).Msg("sweep: job failed")
			errs = append(errs, fmt.Errorf("%s: %w", job, err))
		}
		results = append(results, res)
	}
	return results, errors.Join(errs...)
}

// DeadlineReminders notifies about unfinished tasks and projects due within
// the reminder window. Runs once per UTC day.
func (r *Runner) DeadlineReminders(ctx context.Context) (Result, error) {
	now := r.now()
	res, ok, err := r.claim(ctx, JobDeadlineReminders, DayKey(now))
	if err != nil || !ok {
		return res, err
	}
	to := now.Add(r.reminderWindow)

	tasks, err := r.store.Tasks().ListDueBetween(ctx, now, to)
	if err != nil {
		return res, fmt.Errorf("list due tasks: %w", err)
	}
	projects := make(map[string]*domain.Project)
	for _, t := range tasks {
		p, ok := projects[t.ProjectID]
		if !ok {
			p, err = r.store.Projects().GetByID(ctx, t.ProjectID)
			if err != nil {
				r.logger.Warn().Err(err).Str("task_id", t.ID).Msg("sweep: load project of due task failed")
				continue
			}
			projects[t.ProjectID] = p
		}
		res.add(r.dispatcher.Publish(ctx, fanout.TaskDeadline{Task: t, Project: *p}))
	}

	due, err := r.store.Projects().ListDueBetween(ctx, now, to)
	if err != nil {
		return res, fmt.Errorf("list due projects: %w", err)
	}
	for _, p := range due {
		res.add(r.dispatcher.Publish(ctx, fanout.ProjectDeadline{Project: p}))
	}
	r.done(res)
	return res, nil
}

// WeeklyReports sends a progress summary for every project whose tasks
// changed during the last week. Runs once per ISO week.
func (r *Runner) WeeklyReports(ctx context.Context) (Result, error) {
	now := r.now()
	res, ok, err := r.claim(ctx, JobWeeklyReports, WeekKey(now))
	if err != nil || !ok {
		return res, err
	}
	since := now.Add(-reportLookback)

	projects, err := r.store.Projects().ListWithTaskActivitySince(ctx, since)
	if err != nil {
		return res, fmt.Errorf("list active projects: %w", err)
	}
	for i := range projects {
		p := projects[i]
		tasks, err := r.store.Tasks().List(ctx, domain.TaskFilter{ProjectID: p.ID})
		if err != nil {
			r.logger.Warn().Err(err).Str("project_id", p.ID).Msg("sweep: list project tasks failed")
			continue
		}
		res.add(r.dispatcher.Publish(ctx, fanout.WeeklyReport{
			Project:           p,
			Stats:             domain.ComputeProjectStats(&p, tasks, now),
			CompletedThisWeek: domain.CompletedSince(tasks, since),
		}))
	}
	r.done(res)
	return res, nil
}

// SubscriptionExpiry warns users whose active subscription ends within the
// warning window. Runs once per UTC day.
func (r *Runner) SubscriptionExpiry(ctx context.Context) (Result, error) {
	now := r.now()
	res, ok, err := r.claim(ctx, JobSubscriptionExpiry, DayKey(now))
	if err != nil || !ok {
		return res, err
	}

	subs, err := r.store.Subscriptions().ListActiveEndingBetween(ctx, now, now.Add(r.expiryWarning))
	if err != nil {
		return res, fmt.Errorf("list expiring subscriptions: %w", err)
	}
	names := make(map[string]string)
	for _, sub := range subs {
		name, ok := names[sub.PlanID]
		if !ok {
			if plan, err := r.store.Plans().GetByID(ctx, sub.PlanID); err == nil {
				name = plan.Name
			} else {
				r.logger.Warn().Err(err).Str("plan_id", sub.PlanID).Msg("sweep: load plan failed")
			}
			names[sub.PlanID] = name
		}
		res.add(r.dispatcher.Publish(ctx, fanout.SubscriptionExpiring{Subscription: sub, PlanName: name, Now: now}))
	}
	r.done(res)
	return res, nil
}

func (r *Runner) claim(ctx context.Context, job, period string) (Result, bool, error) {
	res := Result{Job: job, Period: period}
	ok, err := r.store.Sweeps().Claim(ctx, job, period)
	if err != nil {
		return res, false, fmt.Errorf("claim %s/%s: %w", job, period, err)
	}
	if !ok {
		res.Skipped = true
		r.logger.Debug().Str("job", job).Str("period", period).Msg("sweep: period already claimed")
	}
	return res, ok, nil
}

func (r *Runner) done(res Result) {
	r.logger.Info().
		Str("job", res.Job).
		Str("period", res.Period).
		Int("events", res.Events).
		Int("notifications", res.Notifications).
		Msg("sweep: job finished")
}

func (res *Result) add(stored int) {
	res.Events++
	res.Notifications += stored
}

// DayKey is the period key of daily jobs.
func DayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// WeekKey is the period key of weekly jobs, e.g. "2026-W23".
func WeekKey(t time.Time) string {
	year, week := t.UTC().ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}
