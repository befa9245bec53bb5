// Package memory implements domain.Store in process memory. It backs the
// "memory" storage driver and the service tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"taskflow/internal/domain"
)

type edgeKey struct {
	taskID      string
	dependsOnID string
}

type state struct {
	mu            sync.RWMutex
	users         map[string]domain.User
	projects      map[string]domain.Project
	tasks         map[string]domain.Task
	edges         map[edgeKey]domain.Dependency
	plans         map[string]domain.Plan
	subscriptions map[string]domain.Subscription
	notifications map[string]domain.Notification
	activity      []domain.Activity
	sweeps        map[string]struct{}

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex

	now func() time.Time
}

// Store is safe for concurrent use. Writes to the graph and task statuses of
// one project are serialized by WithinProject.
type Store struct {
	st *state
}

// Option configures a Store.
type Option func(*state)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *state) { s.now = now }
}

// NewStore returns an empty store.
func NewStore(opts ...Option) *Store {
	st := &state{
		users:         map[string]domain.User{},
		projects:      map[string]domain.Project{},
		tasks:         map[string]domain.Task{},
		edges:         map[edgeKey]domain.Dependency{},
		plans:         map[string]domain.Plan{},
		subscriptions: map[string]domain.Subscription{},
		notifications: map[string]domain.Notification{},
		sweeps:        map[string]struct{}{},
		locks:         map[string]*sync.Mutex{},
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(st)
	}
	return &Store{st: st}
}

func (s *Store) Users() domain.UserRepository                 { return userRepo{s.st} }
func (s *Store) Projects() domain.ProjectRepository           { return projectRepo{s.st} }
func (s *Store) Tasks() domain.TaskRepository                 { return taskRepo{s.st} }
func (s *Store) Dependencies() domain.DependencyRepository    { return dependencyRepo{s.st} }
func (s *Store) Plans() domain.PlanRepository                 { return planRepo{s.st} }
func (s *Store) Subscriptions() domain.SubscriptionRepository { return subscriptionRepo{s.st} }
func (s *Store) Notifications() domain.NotificationRepository { return notificationRepo{s.st} }
func (s *Store) Activity() domain.ActivityRepository          { return activityRepo{s.st} }
func (s *Store) Sweeps() domain.SweepRepository               { return sweepRepo{s.st} }

// WithinProject holds the project's mutex while fn runs. fn must not call
// WithinProject for the same project again. There is no rollback: writes
// made by fn before it fails stay applied.
func (s *Store) WithinProject(ctx context.Context, projectID string, fn func(ctx context.Context, tx domain.Store) error) error {
	s.st.mu.RLock()
	_, ok := s.st.projects[projectID]
	s.st.mu.RUnlock()
	if !ok {
		return domain.ErrNotFound
	}

	lock := s.st.projectLock(projectID)
	lock.Lock()
	defer lock.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(ctx, s)
}

func (st *state) projectLock(projectID string) *sync.Mutex {
	st.locksMu.Lock()
	defer st.locksMu.Unlock()
	l, ok := st.locks[projectID]
	if !ok {
		l = &sync.Mutex{}
		st.locks[projectID] = l
	}
	return l
}

func newID(id string) string {
	if id != "" {
		return id
	}
	return uuid.NewString()
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func cloneProject(p domain.Project) domain.Project {
	p.Deadline = cloneTime(p.Deadline)
	p.MemberIDs = append([]string(nil), p.MemberIDs...)
	return p
}

func cloneTask(t domain.Task) domain.Task {
	t.Deadline = cloneTime(t.Deadline)
	return t
}

func sortProjects(ps []domain.Project, less func(a, b domain.Project) bool) []domain.Project {
	sort.SliceStable(ps, func(i, j int) bool { return less(ps[i], ps[j]) })
	return ps
}

func sortTasks(ts []domain.Task, less func(a, b domain.Task) bool) []domain.Task {
	sort.SliceStable(ts, func(i, j int) bool { return less(ts[i], ts[j]) })
	return ts
}

var _ domain.Store = (*Store)(nil)
