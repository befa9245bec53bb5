package domain

import (
	"math"
	"time"
)

// Project groups tasks and the users allowed to work on them.
type Project struct {
	ID          string
	Name        string
	Description string
	Deadline    *time.Time
	OwnerID     string
	MemberIDs   []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsOwner reports whether userID owns the project.
func (p *Project) IsOwner(userID string) bool {
	return p != nil && userID != "" && p.OwnerID == userID
}

// HasMember reports whether userID is the owner or a listed member.
func (p *Project) HasMember(userID string) bool {
	if p == nil || userID == "" {
		return false
	}
	if p.OwnerID == userID {
		return true
	}
	for _, id := range p.MemberIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// Participants returns the owner followed by every other member, without duplicates.
func (p *Project) Participants() []string {
	if p == nil {
		return nil
	}
	out := make([]string, 0, len(p.MemberIDs)+1)
	seen := make(map[string]struct{}, len(p.MemberIDs)+1)
	for _, id := range append([]string{p.OwnerID}, p.MemberIDs...) {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// ProjectStats holds the derived completion figures of a project.
type ProjectStats struct {
	TotalTasks         int
	CompletedTasks     int
	InProgressTasks    int
	ReviewTasks        int
	TodoTasks          int
	OverdueTasks       int
	IsCompleted        bool
	IsOverdue          bool
	ProgressPercentage float64
}

// ComputeProjectStats derives completion figures from the project's tasks.
// A project without tasks is completed with zero progress.
func ComputeProjectStats(p *Project, tasks []Task, now time.Time) ProjectStats {
	var stats ProjectStats
	stats.TotalTasks = len(tasks)
	for i := range tasks {
		switch tasks[i].Status {
		case TaskStatusCompleted:
			stats.CompletedTasks++
		case TaskStatusInProgress:
			stats.InProgressTasks++
		case TaskStatusReview:
			stats.ReviewTasks++
		default:
			stats.TodoTasks++
		}
		if tasks[i].IsOverdue(now) {
			stats.OverdueTasks++
		}
	}
	stats.IsCompleted = stats.CompletedTasks == stats.TotalTasks
	if stats.TotalTasks > 0 {
		pct := float64(stats.CompletedTasks) / float64(stats.TotalTasks) * 100
		stats.ProgressPercentage = math.Round(pct*100) / 100
	}
	if p != nil && p.Deadline != nil && now.After(*p.Deadline) && !stats.IsCompleted {
		stats.IsOverdue = true
	}
	return stats
}
