package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"taskflow/internal/domain"
)

func seedProject(t *testing.T, s *Store) (*domain.Project, *domain.Task, *domain.Task) {
	t.Helper()
	ctx := context.Background()
	p := &domain.Project{Name: "Launch", OwnerID: "owner", MemberIDs: []string{"owner", "dev"}}
	if err := s.Projects().Create(ctx, p); err != nil {
		t.Fatalf("create project: %v", err)
	}
	a := &domain.Task{Title: "A", Status: domain.TaskStatusTodo, Priority: domain.TaskPriorityMedium, ProjectID: p.ID}
	b := &domain.Task{Title: "B", Status: domain.TaskStatusTodo, Priority: domain.TaskPriorityMedium, ProjectID: p.ID}
	for _, task := range []*domain.Task{a, b} {
		if err := s.Tasks().Create(ctx, task); err != nil {
			t.Fatalf("create task: %v", err)
		}
	}
	return p, a, b
}

func TestDependencyConstraints(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	_, a, b := seedProject(t, s)

	if err := s.Dependencies().Add(ctx, domain.Dependency{TaskID: a.ID, DependsOnID: b.ID}); err != nil {
		t.Fatalf("add edge: %v", err)
	}
	if err := s.Dependencies().Add(ctx, domain.Dependency{TaskID: a.ID, DependsOnID: b.ID}); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("duplicate edge: expected ErrConflict, got %v", err)
	}
	if err := s.Dependencies().Add(ctx, domain.Dependency{TaskID: a.ID, DependsOnID: a.ID}); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("self edge: expected ErrConflict, got %v", err)
	}
	if err := s.Dependencies().Add(ctx, domain.Dependency{TaskID: a.ID, DependsOnID: "missing"}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("dangling edge: expected ErrNotFound, got %v", err)
	}

	prereqs, err := s.Dependencies().ListPrerequisites(ctx, a.ID)
	if err != nil || len(prereqs) != 1 || prereqs[0].ID != b.ID {
		t.Fatalf("ListPrerequisites = %+v, %v", prereqs, err)
	}
}

func TestDeleteTaskDropsEdges(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	p, a, b := seedProject(t, s)
	if err := s.Dependencies().Add(ctx, domain.Dependency{TaskID: a.ID, DependsOnID: b.ID}); err != nil {
		t.Fatalf("add edge: %v", err)
	}
	if err := s.Tasks().Delete(ctx, b.ID); err != nil {
		t.Fatalf("delete task: %v", err)
	}
	edges, _ := s.Dependencies().ListByProject(ctx, p.ID)
	if len(edges) != 0 {
		t.Fatalf("expected edges to be removed, got %+v", edges)
	}
}

func TestUsageCounts(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	seedProject(t, s)

	projects, _ := s.Projects().CountOwned(ctx, "owner")
	members, _ := s.Projects().CountMembersOfOwned(ctx, "owner")
	tasks, _ := s.Tasks().CountInOwnedProjects(ctx, "owner")
	if projects != 1 || members != 2 || tasks != 2 {
		t.Fatalf("usage = %d/%d/%d, want 1/2/2", projects, members, tasks)
	}
	if n, _ := s.Projects().CountOwned(ctx, "dev"); n != 0 {
		t.Fatalf("members do not own projects, got %d", n)
	}
}

func TestTaskListMemberFilter(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	seedProject(t, s)

	visible, _ := s.Tasks().List(ctx, domain.TaskFilter{MemberID: "dev"})
	hidden, _ := s.Tasks().List(ctx, domain.TaskFilter{MemberID: "stranger"})
	if len(visible) != 2 || len(hidden) != 0 {
		t.Fatalf("member filter: visible=%d hidden=%d", len(visible), len(hidden))
	}
}

func TestProjectsDueBetweenSkipsFinished(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s := NewStore(WithClock(func() time.Time { return now }))
	ctx := context.Background()
	p, a, b := seedProject(t, s)
	due := now.Add(6 * time.Hour)
	p.Deadline = &due
	if err := s.Projects().Update(ctx, p); err != nil {
		t.Fatalf("update project: %v", err)
	}

	got, _ := s.Projects().ListDueBetween(ctx, now, now.Add(24*time.Hour))
	if len(got) != 1 {
		t.Fatalf("expected project to be due, got %d", len(got))
	}
	for _, id := range []string{a.ID, b.ID} {
		_ = s.Tasks().UpdateStatus(ctx, id, domain.TaskStatusCompleted)
	}
	got, _ = s.Projects().ListDueBetween(ctx, now, now.Add(24*time.Hour))
	if len(got) != 0 {
		t.Fatalf("finished project should not be due, got %d", len(got))
	}
}

func TestNotificationsScopedToRecipient(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	n := &domain.Notification{RecipientID: "u1", Type: domain.NotificationSystemMessage, Title: "hi"}
	if err := s.Notifications().Create(ctx, n); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s.Notifications().SetRead(ctx, n.ID, "u2", true); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("foreign recipient should get ErrNotFound, got %v", err)
	}
	if changed, _ := s.Notifications().MarkAllRead(ctx, "u1"); changed != 1 {
		t.Fatalf("MarkAllRead changed %d", changed)
	}
	if unread, _ := s.Notifications().CountUnread(ctx, "u1"); unread != 0 {
		t.Fatalf("unread = %d", unread)
	}
}

func TestSweepClaimOnce(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	first, _ := s.Sweeps().Claim(ctx, "weekly_reports", "2026-W11")
	second, _ := s.Sweeps().Claim(ctx, "weekly_reports", "2026-W11")
	other, _ := s.Sweeps().Claim(ctx, "weekly_reports", "2026-W12")
	if !first || second || !other {
		t.Fatalf("claims = %v %v %v", first, second, other)
	}
}

func TestWithinProjectSerializes(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	p, _, _ := seedProject(t, s)

	var (
		mu      sync.Mutex
		inside  int
		maxSeen int
		wg      sync.WaitGroup
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.WithinProject(ctx, p.ID, func(ctx context.Context, tx domain.Store) error {
				mu.Lock()
				inside++
				if inside > maxSeen {
					maxSeen = inside
				}
				mu.Unlock()
				time.Sleep(time.Millisecond)
				mu.Lock()
				inside--
				mu.Unlock()
				return nil
			})
		}()
	}
	wg.Wait()
	if maxSeen != 1 {
		t.Fatalf("expected exclusive access, saw %d concurrent callers", maxSeen)
	}

	if err := s.WithinProject(ctx, "missing", func(context.Context, domain.Store) error { return nil }); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("missing project: expected ErrNotFound, got %v", err)
	}
}
