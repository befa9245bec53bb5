package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"taskflow/internal/domain"
)

type userRepo struct{ st *state }

func (r userRepo) Create(_ context.Context, u *domain.User) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	u.ID = newID(u.ID)
	if _, ok := r.st.users[u.ID]; ok {
		return fmt.Errorf("%w: user %s exists", domain.ErrConflict, u.ID)
	}
	for _, existing := range r.st.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return fmt.Errorf("%w: email already registered", domain.ErrConflict)
		}
	}
	now := r.st.now()
	u.CreatedAt, u.UpdatedAt = now, now
	r.st.users[u.ID] = *u
	return nil
}

func (r userRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()
	u, ok := r.st.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &u, nil
}

func (r userRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()
	for _, u := range r.st.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, domain.ErrNotFound
}

type projectRepo struct{ st *state }

func (r projectRepo) Create(_ context.Context, p *domain.Project) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	p.ID = newID(p.ID)
	if _, ok := r.st.projects[p.ID]; ok {
		return fmt.Errorf("%w: project %s exists", domain.ErrConflict, p.ID)
	}
	now := r.st.now()
	p.CreatedAt, p.UpdatedAt = now, now
	p.MemberIDs = dedupe(p.MemberIDs)
	r.st.projects[p.ID] = cloneProject(*p)
	return nil
}

func (r projectRepo) GetByID(_ context.Context, id string) (*domain.Project, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()
	p, ok := r.st.projects[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := cloneProject(p)
	return &out, nil
}

func (r projectRepo) Update(_ context.Context, p *domain.Project) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	cur, ok := r.st.projects[p.ID]
	if !ok {
		return domain.ErrNotFound
	}
	cur.Name = p.Name
	cur.Description = p.Description
	cur.Deadline = cloneTime(p.Deadline)
	cur.UpdatedAt = r.st.now()
	r.st.projects[p.ID] = cur
	p.UpdatedAt = cur.UpdatedAt
	return nil
}

func (r projectRepo) Delete(_ context.Context, id string) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	if _, ok := r.st.projects[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.st.projects, id)
	for tid, t := range r.st.tasks {
		if t.ProjectID == id {
			r.st.deleteTaskLocked(tid)
		}
	}
	return nil
}

func (r projectRepo) ListForUser(_ context.Context, userID string) ([]domain.Project, error) {
	return r.filter(func(p domain.Project) bool { return p.HasMember(userID) }, newestProjectFirst), nil
}

func (r projectRepo) AddMember(_ context.Context, projectID, userID string) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	p, ok := r.st.projects[projectID]
	if !ok {
		return domain.ErrNotFound
	}
	for _, id := range p.MemberIDs {
		if id == userID {
			return fmt.Errorf("%w: already a member", domain.ErrConflict)
		}
	}
	p.MemberIDs = append(p.MemberIDs, userID)
	r.st.projects[projectID] = p
	return nil
}

func (r projectRepo) RemoveMember(_ context.Context, projectID, userID string) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	p, ok := r.st.projects[projectID]
	if !ok {
		return domain.ErrNotFound
	}
	kept := p.MemberIDs[:0:0]
	for _, id := range p.MemberIDs {
		if id != userID {
			kept = append(kept, id)
		}
	}
	if len(kept) == len(p.MemberIDs) {
		return domain.ErrNotFound
	}
	p.MemberIDs = kept
	r.st.projects[projectID] = p
	return nil
}

func (r projectRepo) ListDueBetween(_ context.Context, from, to time.Time) ([]domain.Project, error) {
	r.st.mu.RLock()
	open := map[string]bool{}
	for _, t := range r.st.tasks {
		if t.Status != domain.TaskStatusCompleted {
			open[t.ProjectID] = true
		}
	}
	r.st.mu.RUnlock()
	return r.filter(func(p domain.Project) bool {
		return p.Deadline != nil && inWindow(*p.Deadline, from, to) && open[p.ID]
	}, func(a, b domain.Project) bool { return a.Deadline.Before(*b.Deadline) }), nil
}

func (r projectRepo) ListWithTaskActivitySince(_ context.Context, since time.Time) ([]domain.Project, error) {
	r.st.mu.RLock()
	active := map[string]bool{}
	for _, t := range r.st.tasks {
		if !t.UpdatedAt.Before(since) {
			active[t.ProjectID] = true
		}
	}
	r.st.mu.RUnlock()
	return r.filter(func(p domain.Project) bool { return active[p.ID] }, func(a, b domain.Project) bool {
		return a.CreatedAt.Before(b.CreatedAt)
	}), nil
}

func (r projectRepo) CountOwned(_ context.Context, userID string) (int, error) {
	return len(r.filter(func(p domain.Project) bool { return p.OwnerID == userID }, newestProjectFirst)), nil
}

func (r projectRepo) CountMembersOfOwned(_ context.Context, userID string) (int, error) {
	n := 0
	for _, p := range r.filter(func(p domain.Project) bool { return p.OwnerID == userID }, newestProjectFirst) {
		n += len(p.MemberIDs)
	}
	return n, nil
}

func (r projectRepo) filter(keep func(domain.Project) bool, less func(a, b domain.Project) bool) []domain.Project {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()
	var out []domain.Project
	for _, p := range r.st.projects {
		if keep(p) {
			out = append(out, cloneProject(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return sortProjects(out, less)
}

func newestProjectFirst(a, b domain.Project) bool { return a.CreatedAt.After(b.CreatedAt) }

type taskRepo struct{ st *state }

func (r taskRepo) Create(_ context.Context, t *domain.Task) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	if _, ok := r.st.projects[t.ProjectID]; !ok {
		return fmt.Errorf("%w: project %s", domain.ErrNotFound, t.ProjectID)
	}
	t.ID = newID(t.ID)
	if _, ok := r.st.tasks[t.ID]; ok {
		return fmt.Errorf("%w: task %s exists", domain.ErrConflict, t.ID)
	}
	now := r.st.now()
	t.CreatedAt, t.UpdatedAt = now, now
	r.st.tasks[t.ID] = cloneTask(*t)
	return nil
}

func (r taskRepo) GetByID(_ context.Context, id string) (*domain.Task, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()
	t, ok := r.st.tasks[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := cloneTask(t)
	return &out, nil
}

func (r taskRepo) Update(_ context.Context, t *domain.Task) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	cur, ok := r.st.tasks[t.ID]
	if !ok {
		return domain.ErrNotFound
	}
	cur.Title = t.Title
	cur.Description = t.Description
	cur.Priority = t.Priority
	cur.Deadline = cloneTime(t.Deadline)
	cur.AssigneeID = t.AssigneeID
	cur.UpdatedAt = r.st.now()
	r.st.tasks[t.ID] = cur
	t.UpdatedAt = cur.UpdatedAt
	return nil
}

func (r taskRepo) UpdateStatus(_ context.Context, id string, status domain.TaskStatus) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	cur, ok := r.st.tasks[id]
	if !ok {
		return domain.ErrNotFound
	}
	cur.Status = status
	cur.UpdatedAt = r.st.now()
	r.st.tasks[id] = cur
	return nil
}

func (r taskRepo) Delete(_ context.Context, id string) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	if _, ok := r.st.tasks[id]; !ok {
		return domain.ErrNotFound
	}
	r.st.deleteTaskLocked(id)
	return nil
}

func (st *state) deleteTaskLocked(id string) {
	delete(st.tasks, id)
	for k := range st.edges {
		if k.taskID == id || k.dependsOnID == id {
			delete(st.edges, k)
		}
	}
}

func (r taskRepo) List(_ context.Context, f domain.TaskFilter) ([]domain.Task, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()
	var out []domain.Task
	for _, t := range r.st.tasks {
		if f.ProjectID != "" && t.ProjectID != f.ProjectID {
			continue
		}
		if f.AssigneeID != "" && t.AssigneeID != f.AssigneeID {
			continue
		}
		if f.Status != "" && t.Status != f.Status {
			continue
		}
		if f.Priority != "" && t.Priority != f.Priority {
			continue
		}
		if f.MemberID != "" {
			p := r.st.projects[t.ProjectID]
			if !p.HasMember(f.MemberID) {
				continue
			}
		}
		out = append(out, cloneTask(t))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return sortTasks(out, func(a, b domain.Task) bool { return a.CreatedAt.After(b.CreatedAt) }), nil
}

func (r taskRepo) ListDueBetween(_ context.Context, from, to time.Time) ([]domain.Task, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()
	var out []domain.Task
	for _, t := range r.st.tasks {
		if t.Deadline != nil && inWindow(*t.Deadline, from, to) && t.Status != domain.TaskStatusCompleted {
			out = append(out, cloneTask(t))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return sortTasks(out, func(a, b domain.Task) bool { return a.Deadline.Before(*b.Deadline) }), nil
}

func (r taskRepo) CountInOwnedProjects(_ context.Context, userID string) (int, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()
	n := 0
	for _, t := range r.st.tasks {
		if r.st.projects[t.ProjectID].OwnerID == userID {
			n++
		}
	}
	return n, nil
}

type dependencyRepo struct{ st *state }

func (r dependencyRepo) Add(_ context.Context, dep domain.Dependency) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	if dep.TaskID == dep.DependsOnID {
		return fmt.Errorf("%w: task cannot depend on itself", domain.ErrConflict)
	}
	if _, ok := r.st.tasks[dep.TaskID]; !ok {
		return fmt.Errorf("%w: task %s", domain.ErrNotFound, dep.TaskID)
	}
	if _, ok := r.st.tasks[dep.DependsOnID]; !ok {
		return fmt.Errorf("%w: task %s", domain.ErrNotFound, dep.DependsOnID)
	}
	key := edgeKey{dep.TaskID, dep.DependsOnID}
	if _, ok := r.st.edges[key]; ok {
		return fmt.Errorf("%w: dependency exists", domain.ErrConflict)
	}
	dep.CreatedAt = r.st.now()
	r.st.edges[key] = dep
	return nil
}

func (r dependencyRepo) Remove(_ context.Context, taskID, dependsOnID string) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	key := edgeKey{taskID, dependsOnID}
	if _, ok := r.st.edges[key]; !ok {
		return domain.ErrNotFound
	}
	delete(r.st.edges, key)
	return nil
}

func (r dependencyRepo) ListByProject(_ context.Context, projectID string) ([]domain.Dependency, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()
	var out []domain.Dependency
	for k, d := range r.st.edges {
		if r.st.tasks[k.taskID].ProjectID == projectID {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TaskID != out[j].TaskID {
			return out[i].TaskID < out[j].TaskID
		}
		return out[i].DependsOnID < out[j].DependsOnID
	})
	return out, nil
}

func (r dependencyRepo) ListPrerequisites(_ context.Context, taskID string) ([]domain.Task, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()
	var out []domain.Task
	for k := range r.st.edges {
		if k.taskID == taskID {
			if t, ok := r.st.tasks[k.dependsOnID]; ok {
				out = append(out, cloneTask(t))
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type planRepo struct{ st *state }

func (r planRepo) Upsert(_ context.Context, p *domain.Plan) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	for id, existing := range r.st.plans {
		if existing.Name == p.Name {
			p.ID, p.CreatedAt = id, existing.CreatedAt
			r.st.plans[id] = clonePlan(*p)
			return nil
		}
	}
	p.ID = newID(p.ID)
	p.CreatedAt = r.st.now()
	r.st.plans[p.ID] = clonePlan(*p)
	return nil
}

func (r planRepo) GetByID(_ context.Context, id string) (*domain.Plan, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()
	p, ok := r.st.plans[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := clonePlan(p)
	return &out, nil
}

func (r planRepo) GetByName(_ context.Context, name string) (*domain.Plan, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()
	for _, p := range r.st.plans {
		if p.Name == name {
			out := clonePlan(p)
			return &out, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r planRepo) ListActive(_ context.Context) ([]domain.Plan, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()
	var out []domain.Plan
	for _, p := range r.st.plans {
		if p.IsActive {
			out = append(out, clonePlan(p))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].PriceCents != out[j].PriceCents {
			return out[i].PriceCents < out[j].PriceCents
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func clonePlan(p domain.Plan) domain.Plan {
	p.Features = append([]string(nil), p.Features...)
	return p
}

type subscriptionRepo struct{ st *state }

func (r subscriptionRepo) GetByUserID(_ context.Context, userID string) (*domain.Subscription, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()
	s, ok := r.st.subscriptions[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := cloneSubscription(s)
	return &out, nil
}

func (r subscriptionRepo) Upsert(_ context.Context, s *domain.Subscription) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	if _, ok := r.st.plans[s.PlanID]; !ok {
		return fmt.Errorf("%w: plan %s", domain.ErrNotFound, s.PlanID)
	}
	now := r.st.now()
	if cur, ok := r.st.subscriptions[s.UserID]; ok {
		s.ID, s.CreatedAt = cur.ID, cur.CreatedAt
	} else {
		s.ID = uuid.NewString()
		s.CreatedAt = now
	}
	s.UpdatedAt = now
	r.st.subscriptions[s.UserID] = cloneSubscription(*s)
	return nil
}

func (r subscriptionRepo) ListActiveEndingBetween(_ context.Context, from, to time.Time) ([]domain.Subscription, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()
	var out []domain.Subscription
	for _, s := range r.st.subscriptions {
		if s.Status == domain.SubscriptionActive && s.EndDate != nil && inWindow(*s.EndDate, from, to) {
			out = append(out, cloneSubscription(s))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].EndDate.Equal(*out[j].EndDate) {
			return out[i].EndDate.Before(*out[j].EndDate)
		}
		return out[i].UserID < out[j].UserID
	})
	return out, nil
}

func cloneSubscription(s domain.Subscription) domain.Subscription {
	s.EndDate = cloneTime(s.EndDate)
	s.TrialEndDate = cloneTime(s.TrialEndDate)
	return s
}

type notificationRepo struct{ st *state }

func (r notificationRepo) Create(_ context.Context, n *domain.Notification) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	n.ID = newID(n.ID)
	n.IsRead = false
	n.CreatedAt = r.st.now()
	r.st.notifications[n.ID] = *n
	return nil
}

func (r notificationRepo) ListByRecipient(_ context.Context, recipientID string, unreadOnly bool) ([]domain.Notification, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()
	var out []domain.Notification
	for _, n := range r.st.notifications {
		if n.RecipientID != recipientID || (unreadOnly && n.IsRead) {
			continue
		}
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r notificationRepo) SetRead(_ context.Context, id, recipientID string, read bool) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	n, ok := r.st.notifications[id]
	if !ok || n.RecipientID != recipientID {
		return domain.ErrNotFound
	}
	n.IsRead = read
	r.st.notifications[id] = n
	return nil
}

func (r notificationRepo) MarkAllRead(_ context.Context, recipientID string) (int, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	changed := 0
	for id, n := range r.st.notifications {
		if n.RecipientID == recipientID && !n.IsRead {
			n.IsRead = true
			r.st.notifications[id] = n
			changed++
		}
	}
	return changed, nil
}

func (r notificationRepo) Delete(_ context.Context, id, recipientID string) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	n, ok := r.st.notifications[id]
	if !ok || n.RecipientID != recipientID {
		return domain.ErrNotFound
	}
	delete(r.st.notifications, id)
	return nil
}

func (r notificationRepo) CountUnread(_ context.Context, recipientID string) (int, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()
	n := 0
	for _, item := range r.st.notifications {
		if item.RecipientID == recipientID && !item.IsRead {
			n++
		}
	}
	return n, nil
}

type activityRepo struct{ st *state }

func (r activityRepo) Append(_ context.Context, a *domain.Activity) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	a.ID = newID(a.ID)
	a.CreatedAt = r.st.now()
	r.st.activity = append(r.st.activity, *a)
	return nil
}

func (r activityRepo) ListByActor(_ context.Context, actorID string, limit int) ([]domain.Activity, error) {
	return r.latest(func(a domain.Activity) bool { return a.ActorID == actorID }, limit), nil
}

func (r activityRepo) ListByTarget(_ context.Context, target domain.Target, limit int) ([]domain.Activity, error) {
	return r.latest(func(a domain.Activity) bool { return a.Target == target }, limit), nil
}

func (r activityRepo) latest(keep func(domain.Activity) bool, limit int) []domain.Activity {
	if limit <= 0 {
		limit = 50
	}
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()
	var out []domain.Activity
	for i := len(r.st.activity) - 1; i >= 0 && len(out) < limit; i-- {
		if keep(r.st.activity[i]) {
			out = append(out, r.st.activity[i])
		}
	}
	return out
}

type sweepRepo struct{ st *state }

func (r sweepRepo) Claim(_ context.Context, job, period string) (bool, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	key := job + "|" + period
	if _, ok := r.st.sweeps[key]; ok {
		return false, nil
	}
	r.st.sweeps[key] = struct{}{}
	return true, nil
}

func inWindow(t, from, to time.Time) bool {
	return !t.Before(from) && t.Before(to)
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok || id == "" {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
