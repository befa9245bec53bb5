package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"taskflow/internal/adapter/memory"
	"taskflow/internal/delivery"
	"taskflow/internal/domain"
	"taskflow/internal/limits"
	"taskflow/internal/plans"
)

var testNow = time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)

type fixture struct {
	svc   *Service
	store *memory.Store
	owner *domain.Actor
	dev   *domain.Actor
	other *domain.Actor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	clock := func() time.Time { return testNow }
	store := memory.NewStore(memory.WithClock(clock))
	catalog, err := plans.Load("")
	if err != nil {
		t.Fatalf("load plans: %v", err)
	}
	if _, err := plans.Seed(ctx, store.Plans(), catalog); err != nil {
		t.Fatalf("seed plans: %v", err)
	}
	svc := New(Options{
		Store:      store,
		Dispatcher: delivery.NewDispatcher(store.Notifications(), nil, zerolog.Nop()),
		Logger:     zerolog.Nop(),
		Now:        clock,
	})
	f := &fixture{svc: svc, store: store}
	for _, u := range []struct {
		email string
		dst   **domain.Actor
	}{
		{"owner@example.com", &f.owner},
		{"dev@example.com", &f.dev},
		{"other@example.com", &f.other},
	} {
		user, err := svc.RegisterUser(ctx, u.email, "", "")
		if err != nil {
			t.Fatalf("register %s: %v", u.email, err)
		}
		*u.dst = domain.NewActor(user.ID, user.Role)
	}
	return f
}

func (f *fixture) project(t *testing.T) *domain.Project {
	t.Helper()
	p, err := f.svc.CreateProject(context.Background(), f.owner, ProjectInput{Name: "Launch"})
	if err != nil {
		t.Fatalf("create project: %v", err)
	}
	return p
}

func (f *fixture) task(t *testing.T, projectID, title string, in TaskInput) *domain.Task {
	t.Helper()
	in.Title = title
	task, err := f.svc.CreateTask(context.Background(), f.owner, projectID, in)
	if err != nil {
		t.Fatalf("create task %s: %v", title, err)
	}
	return task
}

func (f *fixture) inbox(t *testing.T, actor *domain.Actor) []domain.Notification {
	t.Helper()
	list, err := f.svc.ListNotifications(context.Background(), actor, false)
	if err != nil {
		t.Fatalf("list notifications: %v", err)
	}
	return list.Items
}

func countType(items []domain.Notification, typ domain.NotificationType) int {
	n := 0
	for _, item := range items {
		if item.Type == typ {
			n++
		}
	}
	return n
}

func TestCompletionWaitsForPrerequisite(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.project(t)
	b := f.task(t, p.ID, "B", TaskInput{})
	a := f.task(t, p.ID, "A", TaskInput{DependsOn: []string{b.ID}})

	_, err := f.svc.TransitionTaskStatus(ctx, f.owner, a.ID, domain.TaskStatusCompleted)
	var unmet *domain.UnmetDependenciesError
	if !errors.As(err, &unmet) || len(unmet.TaskIDs) != 1 || unmet.TaskIDs[0] != b.ID {
		t.Fatalf("expected unmet dependency on B, got %v", err)
	}
	if got, _ := f.store.Tasks().GetByID(ctx, a.ID); got.Status != domain.TaskStatusTodo {
		t.Fatalf("failed transition must not write, status = %s", got.Status)
	}

	if _, err := f.svc.TransitionTaskStatus(ctx, f.owner, b.ID, domain.TaskStatusCompleted); err != nil {
		t.Fatalf("complete B: %v", err)
	}
	prev, err := f.svc.TransitionTaskStatus(ctx, f.owner, a.ID, domain.TaskStatusCompleted)
	if err != nil {
		t.Fatalf("complete A: %v", err)
	}
	if prev != domain.TaskStatusTodo {
		t.Fatalf("previous status = %s, want todo", prev)
	}

	// Reopening a prerequisite does not cascade.
	if _, err := f.svc.TransitionTaskStatus(ctx, f.owner, b.ID, domain.TaskStatusInProgress); err != nil {
		t.Fatalf("reopen B: %v", err)
	}
	if got, _ := f.store.Tasks().GetByID(ctx, a.ID); got.Status != domain.TaskStatusCompleted {
		t.Fatalf("dependent changed to %s", got.Status)
	}
}

func TestCycleRejectedAndGraphUnchanged(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.project(t)
	a := f.task(t, p.ID, "A", TaskInput{})
	b := f.task(t, p.ID, "B", TaskInput{})
	c := f.task(t, p.ID, "C", TaskInput{})

	if err := f.svc.AddTaskDependency(ctx, f.owner, a.ID, b.ID); err != nil {
		t.Fatalf("A->B: %v", err)
	}
	if err := f.svc.AddTaskDependency(ctx, f.owner, b.ID, c.ID); err != nil {
		t.Fatalf("B->C: %v", err)
	}
	if err := f.svc.AddTaskDependency(ctx, f.owner, c.ID, a.ID); !errors.Is(err, domain.ErrCircularDependency) {
		t.Fatalf("C->A: expected circular dependency, got %v", err)
	}
	if err := f.svc.AddTaskDependency(ctx, f.owner, a.ID, a.ID); !errors.Is(err, domain.ErrSelfDependency) {
		t.Fatalf("A->A: expected self dependency, got %v", err)
	}
	if err := f.svc.AddTaskDependency(ctx, f.owner, a.ID, b.ID); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("duplicate: expected conflict, got %v", err)
	}

	edges, _ := f.store.Dependencies().ListByProject(ctx, p.ID)
	if len(edges) != 2 {
		t.Fatalf("graph changed: %+v", edges)
	}
	deps, err := f.svc.TransitiveDependencies(ctx, f.owner, a.ID)
	if err != nil || len(deps) != 2 {
		t.Fatalf("TransitiveDependencies(A) = %v, %v", deps, err)
	}
	dependents, _ := f.svc.TransitiveDependents(ctx, f.owner, c.ID)
	if len(dependents) != 2 {
		t.Fatalf("TransitiveDependents(C) = %v", dependents)
	}

	view, err := f.svc.DependencyView(ctx, f.owner, a.ID)
	if err != nil || !view.Blocked || len(view.DirectDependencies) != 1 {
		t.Fatalf("DependencyView(A) = %+v, %v", view, err)
	}
	if err := f.svc.RemoveTaskDependency(ctx, f.owner, a.ID, b.ID); err != nil {
		t.Fatalf("remove A->B: %v", err)
	}
	if err := f.svc.RemoveTaskDependency(ctx, f.owner, a.ID, b.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("remove missing edge: expected not found, got %v", err)
	}
}

func TestCrossProjectDependencyRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if _, err := f.svc.ChangePlan(ctx, f.owner.UserID, "Pro"); err != nil {
		t.Fatalf("upgrade: %v", err)
	}
	p1 := f.project(t)
	p2 := f.project(t)
	a := f.task(t, p1.ID, "A", TaskInput{})
	x := f.task(t, p2.ID, "X", TaskInput{})

	if err := f.svc.AddTaskDependency(ctx, f.owner, a.ID, x.ID); !errors.Is(err, domain.ErrCrossProjectDependency) {
		t.Fatalf("expected cross project error, got %v", err)
	}
	if _, err := f.svc.CreateTask(ctx, f.owner, p1.ID, TaskInput{Title: "Y", DependsOn: []string{x.ID}}); !errors.Is(err, domain.ErrCrossProjectDependency) {
		t.Fatalf("create with foreign dependency: got %v", err)
	}
	if tasks, _ := f.store.Tasks().List(ctx, domain.TaskFilter{ProjectID: p1.ID}); len(tasks) != 1 {
		t.Fatalf("rejected task was stored: %d tasks", len(tasks))
	}
}

func TestProjectsLimitOnFreePlan(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.project(t)

	_, err := f.svc.CreateProject(ctx, f.owner, ProjectInput{Name: "Second"})
	var le *domain.LimitExceededError
	if !errors.As(err, &le) || le.Reason != limits.ReasonProjects {
		t.Fatalf("expected projects limit, got %v", err)
	}
	report, err := f.svc.CheckUsageLimits(ctx, f.owner.UserID)
	if err != nil {
		t.Fatalf("CheckUsageLimits: %v", err)
	}
	if report.WithinLimits || report.Message != "Projects limit reached" {
		t.Fatalf("unexpected report %+v", report)
	}

	// Tasks are gated on their own limit.
	f.task(t, p.ID, "still allowed", TaskInput{})

	if _, err := f.svc.ChangePlan(ctx, f.owner.UserID, "Pro"); err != nil {
		t.Fatalf("upgrade: %v", err)
	}
	if _, err := f.svc.CreateProject(ctx, f.owner, ProjectInput{Name: "Second"}); err != nil {
		t.Fatalf("unlimited plan should allow more projects: %v", err)
	}
}

func TestMembersLimitOnFreePlan(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.project(t)

	if _, err := f.svc.AddMember(ctx, f.owner, p.ID, f.dev.UserID); err != nil {
		t.Fatalf("add dev: %v", err)
	}
	_, err := f.svc.AddMember(ctx, f.owner, p.ID, f.other.UserID)
	if !errors.Is(err, domain.ErrLimitExceeded) {
		t.Fatalf("expected members limit, got %v", err)
	}
	if _, err := f.svc.AddMember(ctx, f.owner, p.ID, f.dev.UserID); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("re-adding a member: expected conflict, got %v", err)
	}

	invites := f.inbox(t, f.dev)
	if len(invites) != 1 || invites[0].Type != domain.NotificationProjectInvite {
		t.Fatalf("dev should get one invite, got %+v", invites)
	}
}

func TestStatusChangeByOwnerAssigneeNotifiesNobody(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.project(t)
	task := f.task(t, p.ID, "Solo", TaskInput{AssigneeID: f.owner.UserID})

	if _, err := f.svc.TransitionTaskStatus(ctx, f.owner, task.ID, domain.TaskStatusInProgress); err != nil {
		t.Fatalf("transition: %v", err)
	}
	if got := f.inbox(t, f.owner); len(got) != 0 {
		t.Fatalf("owner acting on own task should not be notified, got %+v", got)
	}
}

func TestAssigneeTransitionNotifiesOwner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.project(t)
	if _, err := f.svc.AddMember(ctx, f.owner, p.ID, f.dev.UserID); err != nil {
		t.Fatalf("add member: %v", err)
	}
	task := f.task(t, p.ID, "Ship", TaskInput{AssigneeID: f.dev.UserID})

	if got := countType(f.inbox(t, f.dev), domain.NotificationTaskAssigned); got != 1 {
		t.Fatalf("dev should get one assignment notification, got %d", got)
	}

	if _, err := f.svc.TransitionTaskStatus(ctx, f.dev, task.ID, domain.TaskStatusInProgress); err != nil {
		t.Fatalf("assignee transition: %v", err)
	}
	ownerInbox := f.inbox(t, f.owner)
	if len(ownerInbox) != 1 || ownerInbox[0].Type != domain.NotificationTaskStatusChanged {
		t.Fatalf("owner inbox = %+v", ownerInbox)
	}
	if len(f.inbox(t, f.dev)) != 2 {
		t.Fatalf("the actor must not be notified of their own change")
	}
}

func TestTransitionRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.project(t)
	task := f.task(t, p.ID, "T", TaskInput{})

	if _, err := f.svc.TransitionTaskStatus(ctx, f.other, task.ID, domain.TaskStatusInProgress); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("outsider: expected forbidden, got %v", err)
	}
	if _, err := f.svc.TransitionTaskStatus(ctx, f.owner, task.ID, domain.TaskStatusReview); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("todo->review: expected invalid transition, got %v", err)
	}
	if _, err := f.svc.TransitionTaskStatus(ctx, f.owner, task.ID, domain.TaskStatus("archived")); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("unknown status: expected validation error, got %v", err)
	}
	if _, err := f.svc.TransitionTaskStatus(ctx, nil, task.ID, domain.TaskStatusInProgress); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("nil actor: expected unauthorized, got %v", err)
	}
	allowed, err := f.svc.AllowedTransitions(ctx, f.owner, task.ID)
	if err != nil || len(allowed) != 2 {
		t.Fatalf("AllowedTransitions = %v, %v", allowed, err)
	}
}

func TestMemberCannotModifyUnassignedTask(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.project(t)
	if _, err := f.svc.AddMember(ctx, f.owner, p.ID, f.dev.UserID); err != nil {
		t.Fatalf("add member: %v", err)
	}
	task := f.task(t, p.ID, "T", TaskInput{})
	title := "renamed"

	if _, err := f.svc.GetTask(ctx, f.dev, task.ID); err != nil {
		t.Fatalf("member should read tasks: %v", err)
	}
	if _, err := f.svc.UpdateTask(ctx, f.dev, task.ID, TaskUpdate{Title: &title}); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("member update: expected forbidden, got %v", err)
	}
	if err := f.svc.DeleteTask(ctx, f.dev, task.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("member delete: expected forbidden, got %v", err)
	}
	if _, err := f.svc.AssignTask(ctx, f.owner, task.ID, f.dev.UserID); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if _, err := f.svc.UpdateTask(ctx, f.dev, task.ID, TaskUpdate{Title: &title}); err != nil {
		t.Fatalf("assignee update: %v", err)
	}
	if _, err := f.svc.AssignTask(ctx, f.owner, task.ID, f.other.UserID); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("assigning a non-member: expected validation error, got %v", err)
	}
}

func TestRemoveMemberUnassignsTasks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.project(t)
	if _, err := f.svc.AddMember(ctx, f.owner, p.ID, f.dev.UserID); err != nil {
		t.Fatalf("add member: %v", err)
	}
	task := f.task(t, p.ID, "T", TaskInput{AssigneeID: f.dev.UserID})

	if err := f.svc.RemoveMember(ctx, f.owner, p.ID, f.owner.UserID); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("removing the owner: expected validation error, got %v", err)
	}
	if err := f.svc.RemoveMember(ctx, f.owner, p.ID, f.dev.UserID); err != nil {
		t.Fatalf("remove member: %v", err)
	}
	got, _ := f.store.Tasks().GetByID(ctx, task.ID)
	if got.AssigneeID != "" {
		t.Fatalf("task still assigned to removed member")
	}
	if _, err := f.svc.GetProject(ctx, f.dev, p.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("removed member: expected forbidden, got %v", err)
	}
}

func TestAssignToRemovedMemberRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.project(t)
	task := f.task(t, p.ID, "T", TaskInput{})
	if _, err := f.svc.AddMember(ctx, f.owner, p.ID, f.dev.UserID); err != nil {
		t.Fatalf("add member: %v", err)
	}
	if err := f.svc.RemoveMember(ctx, f.owner, p.ID, f.dev.UserID); err != nil {
		t.Fatalf("remove member: %v", err)
	}

	if _, err := f.svc.AssignTask(ctx, f.owner, task.ID, f.dev.UserID); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("assign to removed member: expected validation error, got %v", err)
	}
	if got, _ := f.store.Tasks().GetByID(ctx, task.ID); got.AssigneeID != "" {
		t.Fatalf("rejected assignment was written: %q", got.AssigneeID)
	}
	if _, err := f.svc.CreateTask(ctx, f.owner, p.ID, TaskInput{Title: "U", AssigneeID: f.dev.UserID}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("create assigned to removed member: expected validation error, got %v", err)
	}
}

func TestConcurrentAssignAndRemoveKeepAssigneeInProject(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.project(t)
	task := f.task(t, p.ID, "T", TaskInput{})

	for i := 0; i < 25; i++ {
		if _, err := f.svc.AddMember(ctx, f.owner, p.ID, f.dev.UserID); err != nil {
			t.Fatalf("round %d: add member: %v", i, err)
		}
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = f.svc.AssignTask(ctx, f.owner, task.ID, f.dev.UserID)
		}()
		go func() {
			defer wg.Done()
			_ = f.svc.RemoveMember(ctx, f.owner, p.ID, f.dev.UserID)
		}()
		wg.Wait()

		got, err := f.store.Tasks().GetByID(ctx, task.ID)
		if err != nil {
			t.Fatalf("round %d: load task: %v", i, err)
		}
		if got.AssigneeID != "" {
			t.Fatalf("round %d: task assigned to removed member %q", i, got.AssigneeID)
		}
	}
}

func TestConcurrentTaskCreationRespectsQuota(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.project(t)
	// Free allows 50 tasks; leave room for two.
	for i := 0; i < 48; i++ {
		seed := &domain.Task{Title: "seed", Status: domain.TaskStatusTodo, Priority: domain.TaskPriorityMedium, ProjectID: p.ID}
		if err := f.store.Tasks().Create(ctx, seed); err != nil {
			t.Fatalf("seed task: %v", err)
		}
	}

	const workers = 6
	errs := make(chan error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.CreateTask(ctx, f.owner, p.ID, TaskInput{Title: "racer"})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	created, limited := 0, 0
	for err := range errs {
		switch {
		case err == nil:
			created++
		case errors.Is(err, domain.ErrLimitExceeded):
			limited++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if created != 2 || limited != workers-2 {
		t.Fatalf("created=%d limited=%d, want 2 and %d", created, limited, workers-2)
	}
}

func TestDeadlineValidation(t *testing.T) {
	f := newFixture(t)
	past := testNow.Add(-time.Hour)
	_, err := f.svc.CreateProject(context.Background(), f.owner, ProjectInput{Name: "Late", Deadline: &past})
	var ve *domain.ValidationError
	if !errors.As(err, &ve) || ve.Field != "deadline" {
		t.Fatalf("expected deadline validation error, got %v", err)
	}
}

func TestSubscriptionLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	view, err := f.svc.GetSubscription(ctx, f.owner.UserID)
	if err != nil {
		t.Fatalf("GetSubscription: %v", err)
	}
	if view.Plan.Name != "Free" || view.Subscription.EndDate != nil {
		t.Fatalf("default subscription = %+v", view)
	}

	trial, err := f.svc.StartTrial(ctx, f.owner.UserID, "Pro")
	if err != nil {
		t.Fatalf("StartTrial: %v", err)
	}
	if !trial.Subscription.IsTrialPeriod(testNow) || trial.Subscription.TrialEndDate.Sub(testNow) != domain.TrialPeriod {
		t.Fatalf("unexpected trial %+v", trial.Subscription)
	}
	if _, err := f.svc.StartTrial(ctx, f.owner.UserID, "Pro"); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("second trial: expected conflict, got %v", err)
	}

	paid, err := f.svc.ChangePlan(ctx, f.owner.UserID, "Pro")
	if err != nil {
		t.Fatalf("ChangePlan: %v", err)
	}
	if paid.Subscription.EndDate == nil || paid.Subscription.EndDate.Sub(testNow) != domain.PaidPeriod {
		t.Fatalf("paid plan should run 30 days, got %+v", paid.Subscription.EndDate)
	}
	if _, err := f.svc.ChangePlan(ctx, f.owner.UserID, "Enterprise"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("unknown plan: expected not found, got %v", err)
	}

	activity, _ := f.svc.ListActivity(ctx, f.owner, 10)
	var changes int
	for _, a := range activity {
		if a.Action == domain.ActionSubscriptionChanged {
			changes++
		}
	}
	if changes != 2 {
		t.Fatalf("expected 2 subscription changes in activity, got %d", changes)
	}
}

func TestActivityCarriesClientInfo(t *testing.T) {
	f := newFixture(t)
	ctx := domain.WithClientInfo(context.Background(), domain.ClientInfo{IPAddress: "203.0.113.7", UserAgent: "curl/8", Country: "ID"})
	p, err := f.svc.CreateProject(ctx, f.owner, ProjectInput{Name: "Traced"})
	if err != nil {
		t.Fatalf("create project: %v", err)
	}
	entries, err := f.svc.ListProjectActivity(context.Background(), f.owner, p.ID, 5)
	if err != nil || len(entries) != 1 {
		t.Fatalf("ListProjectActivity = %+v, %v", entries, err)
	}
	if e := entries[0]; e.IPAddress != "203.0.113.7" || e.Country != "ID" || e.Action != domain.ActionCreated {
		t.Fatalf("unexpected entry %+v", e)
	}
}

func TestNotificationInbox(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.project(t)
	if _, err := f.svc.AddMember(ctx, f.owner, p.ID, f.dev.UserID); err != nil {
		t.Fatalf("add member: %v", err)
	}
	items := f.inbox(t, f.dev)
	id := items[0].ID

	if err := f.svc.MarkRead(ctx, f.owner, id); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("foreign mark read: expected not found, got %v", err)
	}
	if err := f.svc.MarkRead(ctx, f.dev, id); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	list, _ := f.svc.ListNotifications(ctx, f.dev, true)
	if len(list.Items) != 0 || list.UnreadCount != 0 {
		t.Fatalf("unread after MarkRead = %+v", list)
	}
	if err := f.svc.MarkUnread(ctx, f.dev, id); err != nil {
		t.Fatalf("MarkUnread: %v", err)
	}
	if n, _ := f.svc.MarkAllRead(ctx, f.dev); n != 1 {
		t.Fatalf("MarkAllRead changed %d", n)
	}
	if err := f.svc.DeleteNotification(ctx, f.dev, id); err != nil {
		t.Fatalf("DeleteNotification: %v", err)
	}
	if len(f.inbox(t, f.dev)) != 0 {
		t.Fatalf("inbox should be empty")
	}
}

func TestProjectReport(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.project(t)
	soon := testNow.Add(48 * time.Hour)
	done := f.task(t, p.ID, "done", TaskInput{AssigneeID: f.owner.UserID})
	f.task(t, p.ID, "open", TaskInput{Deadline: &soon})
	if _, err := f.svc.TransitionTaskStatus(ctx, f.owner, done.ID, domain.TaskStatusCompleted); err != nil {
		t.Fatalf("complete: %v", err)
	}

	report, err := f.svc.ProjectReport(ctx, f.owner, p.ID)
	if err != nil {
		t.Fatalf("ProjectReport: %v", err)
	}
	if report.Stats.TotalTasks != 2 || report.Stats.ProgressPercentage != 50 || report.Stats.IsCompleted {
		t.Fatalf("unexpected stats %+v", report.Stats)
	}
	if len(report.UpcomingDeadlines) != 1 || len(report.Members) != 1 || report.Members[0].CompletedTasks != 1 {
		t.Fatalf("unexpected report %+v", report)
	}
	if _, err := f.svc.ProjectReport(ctx, f.other, p.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("outsider report: expected forbidden, got %v", err)
	}

	digest, err := f.svc.WeeklyDigest(ctx, f.owner)
	if err != nil || digest.AssignedTasks != 1 || digest.CompletedThisWeek != 1 || digest.ProjectsInvolved != 1 {
		t.Fatalf("WeeklyDigest = %+v, %v", digest, err)
	}
}

func TestDeleteProjectOwnerOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.project(t)
	f.task(t, p.ID, "T", TaskInput{})
	if _, err := f.svc.AddMember(ctx, f.owner, p.ID, f.dev.UserID); err != nil {
		t.Fatalf("add member: %v", err)
	}
	if err := f.svc.DeleteProject(ctx, f.dev, p.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("member delete: expected forbidden, got %v", err)
	}
	if err := f.svc.DeleteProject(ctx, f.owner, p.ID); err != nil {
		t.Fatalf("owner delete: %v", err)
	}
	if tasks, _ := f.store.Tasks().List(ctx, domain.TaskFilter{ProjectID: p.ID}); len(tasks) != 0 {
		t.Fatalf("tasks should cascade, %d left", len(tasks))
	}
}

func TestPermissions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.project(t)
	if _, err := f.svc.AddMember(ctx, f.owner, p.ID, f.dev.UserID); err != nil {
		t.Fatalf("add member: %v", err)
	}
	perms, err := f.svc.Permissions(ctx, f.dev, p.ID, "")
	if err != nil {
		t.Fatalf("Permissions: %v", err)
	}
	if !perms["read"] || perms["modify"] || perms["delete"] {
		t.Fatalf("member project permissions = %v", perms)
	}
	if ok, err := f.svc.EvaluateAccess(ctx, f.other, p.ID, "", "read"); err != nil || ok {
		t.Fatalf("outsider read = %v, %v", ok, err)
	}
	if _, err := f.svc.EvaluateAccess(ctx, f.owner, "missing", "", "read"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("missing project err = %v", err)
	}
}
