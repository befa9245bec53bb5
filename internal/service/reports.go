package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"taskflow/internal/domain"
)

const (
	upcomingWindow = 7 * 24 * time.Hour
	week           = 7 * 24 * time.Hour
)

// MemberStats summarises one member's share of a project.
type MemberStats struct {
	UserID         string
	AssignedTasks  int
	CompletedTasks int
}

// ProjectReport is the detailed project overview.
type ProjectReport struct {
	Project           domain.Project
	Stats             domain.ProjectStats
	DaysSinceCreated  int
	Members           []MemberStats
	UpcomingDeadlines []domain.Task
}

// ProjectReport builds the overview of a project the actor can read.
func (s *Service) ProjectReport(ctx context.Context, actor *domain.Actor, projectID string) (*ProjectReport, error) {
	p, err := s.GetProject(ctx, actor, projectID)
	if err != nil {
		return nil, err
	}
	tasks, err := s.store.Tasks().List(ctx, domain.TaskFilter{ProjectID: p.ID})
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	now := s.now()

	byMember := make(map[string]*MemberStats)
	members := make([]MemberStats, 0, len(p.Participants()))
	for _, id := range p.Participants() {
		members = append(members, MemberStats{UserID: id})
	}
	for i := range members {
		byMember[members[i].UserID] = &members[i]
	}
	for _, t := range tasks {
		if m, ok := byMember[t.AssigneeID]; ok {
			m.AssignedTasks++
			if t.Status == domain.TaskStatusCompleted {
				m.CompletedTasks++
			}
		}
	}

	return &ProjectReport{
		Project:           *p,
		Stats:             domain.ComputeProjectStats(p, tasks, now),
		DaysSinceCreated:  int(now.Sub(p.CreatedAt) / (24 * time.Hour)),
		Members:           members,
		UpcomingDeadlines: upcoming(tasks, now, now.Add(upcomingWindow)),
	}, nil
}

// Digest is the per-user weekly summary.
type Digest struct {
	AssignedTasks     int
	CompletedThisWeek int
	OverdueTasks      int
	ProjectsInvolved  int
	UpcomingDeadlines []domain.Task
}

// WeeklyDigest summarises the tasks assigned to the actor.
func (s *Service) WeeklyDigest(ctx context.Context, actor *domain.Actor) (*Digest, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	tasks, err := s.store.Tasks().List(ctx, domain.TaskFilter{AssigneeID: actor.UserID})
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	projects, err := s.store.Projects().ListForUser(ctx, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	now := s.now()
	d := &Digest{
		AssignedTasks:     len(tasks),
		CompletedThisWeek: domain.CompletedSince(tasks, now.Add(-week)),
		ProjectsInvolved:  len(projects),
		UpcomingDeadlines: upcoming(tasks, now, now.Add(upcomingWindow)),
	}
	for i := range tasks {
		if tasks[i].IsOverdue(now) {
			d.OverdueTasks++
		}
	}
	return d, nil
}

// upcoming returns unfinished tasks due in [from, to), soonest first.
func upcoming(tasks []domain.Task, from, to time.Time) []domain.Task {
	var out []domain.Task
	for _, t := range tasks {
		if t.Deadline == nil || t.Status == domain.TaskStatusCompleted {
			continue
		}
		if !t.Deadline.Before(from) && t.Deadline.Before(to) {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Deadline.Before(*out[j].Deadline) })
	return out
}
