package handlers

import (
	"time"

	"taskflow/internal/access"
	"taskflow/internal/domain"
	"taskflow/internal/limits"
	"taskflow/internal/service"
)

type userResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func toUser(u *domain.User) userResponse {
	return userResponse{ID: u.ID, Email: u.Email, Name: u.Name, Role: string(u.Role), CreatedAt: u.CreatedAt}
}

type projectResponse struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Deadline    *time.Time `json:"deadline"`
	OwnerID     string     `json:"owner_id"`
	MemberIDs   []string   `json:"member_ids"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func toProject(p *domain.Project) projectResponse {
	members := p.MemberIDs
	if members == nil {
		members = []string{}
	}
	return projectResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Deadline:    p.Deadline,
		OwnerID:     p.OwnerID,
		MemberIDs:   members,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func toProjects(items []domain.Project) []projectResponse {
	out := make([]projectResponse, 0, len(items))
	for i := range items {
		out = append(out, toProject(&items[i]))
	}
	return out
}

type taskResponse struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	Deadline    *time.Time `json:"deadline"`
	ProjectID   string     `json:"project_id"`
	AssigneeID  *string    `json:"assignee_id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func toTask(t *domain.Task) taskResponse {
	var assignee *string
	if t.AssigneeID != "" {
		id := t.AssigneeID
		assignee = &id
	}
	return taskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		Priority:    string(t.Priority),
		Deadline:    t.Deadline,
		ProjectID:   t.ProjectID,
		AssigneeID:  assignee,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func toTasks(items []domain.Task) []taskResponse {
	out := make([]taskResponse, 0, len(items))
	for i := range items {
		out = append(out, toTask(&items[i]))
	}
	return out
}

type targetResponse struct {
	Kind string `json:"kind"`
	ID   string `json:"id"`
}

func toTarget(t domain.Target) *targetResponse {
	if t.IsZero() {
		return nil
	}
	return &targetResponse{Kind: string(t.Kind), ID: t.ID}
}

type notificationResponse struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Title     string          `json:"title"`
	Message   string          `json:"message"`
	Target    *targetResponse `json:"target"`
	IsRead    bool            `json:"is_read"`
	CreatedAt time.Time       `json:"created_at"`
}

func toNotifications(items []domain.Notification) []notificationResponse {
	out := make([]notificationResponse, 0, len(items))
	for _, n := range items {
		out = append(out, notificationResponse{
			ID:        n.ID,
			Type:      string(n.Type),
			Title:     n.Title,
			Message:   n.Message,
			Target:    toTarget(n.Target),
			IsRead:    n.IsRead,
			CreatedAt: n.CreatedAt,
		})
	}
	return out
}

type activityResponse struct {
	ID          string          `json:"id"`
	ActorID     string          `json:"actor_id"`
	Action      string          `json:"action"`
	Target      *targetResponse `json:"target"`
	Description string          `json:"description"`
	IPAddress   string          `json:"ip_address,omitempty"`
	UserAgent   string          `json:"user_agent,omitempty"`
	Country     string          `json:"country,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

func toActivity(items []domain.Activity) []activityResponse {
	out := make([]activityResponse, 0, len(items))
	for _, a := range items {
		out = append(out, activityResponse{
			ID:          a.ID,
			ActorID:     a.ActorID,
			Action:      string(a.Action),
			Target:      toTarget(a.Target),
			Description: a.Description,
			IPAddress:   a.IPAddress,
			UserAgent:   a.UserAgent,
			Country:     a.Country,
			CreatedAt:   a.CreatedAt,
		})
	}
	return out
}

type planResponse struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	Description      string   `json:"description"`
	PriceCents       int64    `json:"price_cents"`
	ProjectsLimit    int      `json:"projects_limit"`
	TeamMembersLimit int      `json:"team_members_limit"`
	TasksLimit       int      `json:"tasks_limit"`
	Features         []string `json:"features"`
}

func toPlan(p domain.Plan) planResponse {
	features := p.Features
	if features == nil {
		features = []string{}
	}
	return planResponse{
		ID:               p.ID,
		Name:             p.Name,
		Description:      p.Description,
		PriceCents:       p.PriceCents,
		ProjectsLimit:    p.ProjectsLimit,
		TeamMembersLimit: p.TeamMembersLimit,
		TasksLimit:       p.TasksLimit,
		Features:         features,
	}
}

type subscriptionResponse struct {
	ID              string       `json:"id"`
	Status          string       `json:"status"`
	StartDate       time.Time    `json:"start_date"`
	EndDate         *time.Time   `json:"end_date"`
	TrialEndDate    *time.Time   `json:"trial_end_date"`
	AutoRenew       bool         `json:"auto_renew"`
	IsActive        bool         `json:"is_active"`
	IsTrial         bool         `json:"is_trial"`
	DaysUntilExpiry int          `json:"days_until_expiry"`
	Plan            planResponse `json:"plan"`
}

func toSubscription(v *service.SubscriptionView, now time.Time) subscriptionResponse {
	s := v.Subscription
	return subscriptionResponse{
		ID:              s.ID,
		Status:          string(s.Status),
		StartDate:       s.StartDate,
		EndDate:         s.EndDate,
		TrialEndDate:    s.TrialEndDate,
		AutoRenew:       s.AutoRenew,
		IsActive:        s.IsActiveSubscription(now),
		IsTrial:         s.IsTrialPeriod(now),
		DaysUntilExpiry: s.DaysUntilExpiry(now),
		Plan:            toPlan(v.Plan),
	}
}

type usageResponse struct {
	Projects    int `json:"projects"`
	TeamMembers int `json:"team_members"`
	Tasks       int `json:"tasks"`
}

type limitsResponse struct {
	WithinLimits bool          `json:"within_limits"`
	Message      string        `json:"message"`
	Plan         planResponse  `json:"plan"`
	Usage        usageResponse `json:"usage"`
}

func toLimits(r limits.Report) limitsResponse {
	return limitsResponse{
		WithinLimits: r.WithinLimits,
		Message:      r.Message,
		Plan:         toPlan(r.Plan),
		Usage:        usageResponse{Projects: r.Usage.Projects, TeamMembers: r.Usage.Members, Tasks: r.Usage.Tasks},
	}
}

type statsResponse struct {
	TotalTasks         int     `json:"total_tasks"`
	CompletedTasks     int     `json:"completed_tasks"`
	InProgressTasks    int     `json:"in_progress_tasks"`
	ReviewTasks        int     `json:"review_tasks"`
	TodoTasks          int     `json:"todo_tasks"`
	OverdueTasks       int     `json:"overdue_tasks"`
	IsCompleted        bool    `json:"is_completed"`
	IsOverdue          bool    `json:"is_overdue"`
	ProgressPercentage float64 `json:"progress_percentage"`
}

func toStats(s domain.ProjectStats) statsResponse {
	return statsResponse(s)
}

type memberStatsResponse struct {
	UserID         string `json:"user_id"`
	AssignedTasks  int    `json:"assigned_tasks"`
	CompletedTasks int    `json:"completed_tasks"`
}

type reportResponse struct {
	Project           projectResponse       `json:"project"`
	Stats             statsResponse         `json:"stats"`
	DaysSinceCreated  int                   `json:"days_since_created"`
	Members           []memberStatsResponse `json:"members"`
	UpcomingDeadlines []taskResponse        `json:"upcoming_deadlines"`
}

func toReport(r *service.ProjectReport) reportResponse {
	members := make([]memberStatsResponse, 0, len(r.Members))
	for _, m := range r.Members {
		members = append(members, memberStatsResponse(m))
	}
	return reportResponse{
		Project:           toProject(&r.Project),
		Stats:             toStats(r.Stats),
		DaysSinceCreated:  r.DaysSinceCreated,
		Members:           members,
		UpcomingDeadlines: toTasks(r.UpcomingDeadlines),
	}
}

type digestResponse struct {
	AssignedTasks     int            `json:"assigned_tasks"`
	CompletedThisWeek int            `json:"completed_this_week"`
	OverdueTasks      int            `json:"overdue_tasks"`
	ProjectsInvolved  int            `json:"projects_involved"`
	UpcomingDeadlines []taskResponse `json:"upcoming_deadlines"`
}

func toDigest(d *service.Digest) digestResponse {
	return digestResponse{
		AssignedTasks:     d.AssignedTasks,
		CompletedThisWeek: d.CompletedThisWeek,
		OverdueTasks:      d.OverdueTasks,
		ProjectsInvolved:  d.ProjectsInvolved,
		UpcomingDeadlines: toTasks(d.UpcomingDeadlines),
	}
}

type dependencyResponse struct {
	TaskID                 string   `json:"task_id"`
	DirectDependencies     []string `json:"direct_dependencies"`
	DirectDependents       []string `json:"direct_dependents"`
	TransitiveDependencies []string `json:"transitive_dependencies"`
	TransitiveDependents   []string `json:"transitive_dependents"`
	Blocked                bool     `json:"blocked"`
}

func toDependencyView(v *service.DependencyView) dependencyResponse {
	return dependencyResponse{
		TaskID:                 v.TaskID,
		DirectDependencies:     nonNil(v.DirectDependencies),
		DirectDependents:       nonNil(v.DirectDependents),
		TransitiveDependencies: nonNil(v.TransitiveDependencies),
		TransitiveDependents:   nonNil(v.TransitiveDependents),
		Blocked:                v.Blocked,
	}
}

func toPermissions(perms map[access.Operation]bool) map[string]bool {
	out := make(map[string]bool, len(perms))
	for op, ok := range perms {
		out["can_"+string(op)] = ok
	}
	return out
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
