package fanout

import (
	"fmt"

	"taskflow/internal/domain"
)

// Draft is one notification to be persisted and delivered.
type Draft struct {
	RecipientID string
	Type        domain.NotificationType
	Title       string
	Message     string
	Target      domain.Target
}

// Notification converts the draft into an unsaved notification.
func (d Draft) Notification() *domain.Notification {
	return &domain.Notification{
		RecipientID: d.RecipientID,
		Type:        d.Type,
		Title:       d.Title,
		Message:     d.Message,
		Target:      d.Target,
	}
}

// FanOut computes the recipients and messages for an event. Recipients are
// unique within the result; missing optional fields yield fewer drafts.
func FanOut(e Event) []Draft {
	var out recipients
	switch ev := e.(type) {
	case Assignment:
		title := fmt.Sprintf("You've been assigned a task: %s", ev.Task.Title)
		msg := fmt.Sprintf("The task '%s' in project '%s' has been assigned to you by %s.",
			ev.Task.Title, ev.Project.Name, orFallback(ev.AssignedBy, "the project owner"))
		out.add(ev.AssigneeID, domain.NotificationTaskAssigned, title, msg, domain.TaskTarget(ev.Task.ID))

	case StatusChange:
		title := fmt.Sprintf("Task status changed: %s", ev.Task.Title)
		msg := fmt.Sprintf("The status of task '%s' was changed from %s to %s by %s.",
			ev.Task.Title, StatusLabel(ev.Old), StatusLabel(ev.New), orFallback(ev.ChangedByName, ev.ChangedBy))
		target := domain.TaskTarget(ev.Task.ID)
		if ev.Task.AssigneeID != ev.ChangedBy {
			out.add(ev.Task.AssigneeID, domain.NotificationTaskStatusChanged, title, msg, target)
		}
		if ev.Project.OwnerID != ev.ChangedBy {
			out.add(ev.Project.OwnerID, domain.NotificationTaskStatusChanged, title, msg, target)
		}

	case TaskDeadline:
		title := fmt.Sprintf("Task Deadline Approaching: %s", ev.Task.Title)
		due := formatDeadline(ev.Task.Deadline)
		target := domain.TaskTarget(ev.Task.ID)
		out.add(ev.Task.AssigneeID, domain.NotificationDeadlineReminder, title,
			fmt.Sprintf("The task '%s' is due %s.", ev.Task.Title, due), target)
		out.add(ev.Project.OwnerID, domain.NotificationDeadlineReminder, title,
			fmt.Sprintf("The task '%s' in project '%s' is due %s.", ev.Task.Title, ev.Project.Name, due), target)

	case ProjectDeadline:
		title := fmt.Sprintf("Project Deadline Approaching: %s", ev.Project.Name)
		msg := fmt.Sprintf("The project '%s' is due %s.", ev.Project.Name, formatDeadline(ev.Project.Deadline))
		for _, id := range ev.Project.Participants() {
			out.add(id, domain.NotificationDeadlineReminder, title, msg, domain.ProjectTarget(ev.Project.ID))
		}

	case ProjectInvite:
		title := fmt.Sprintf("Invitation to join project: %s", ev.Project.Name)
		msg := fmt.Sprintf("You have been invited by %s to join the project '%s'.",
			orFallback(ev.InvitedBy, "the project owner"), ev.Project.Name)
		out.add(ev.InvitedUserID, domain.NotificationProjectInvite, title, msg, domain.ProjectTarget(ev.Project.ID))

	case WeeklyReport:
		title := fmt.Sprintf("Weekly Report: %s", ev.Project.Name)
		msg := weeklySummary(ev.Project.Name, ev.Stats, ev.CompletedThisWeek)
		for _, id := range ev.Project.Participants() {
			out.add(id, domain.NotificationSystemMessage, title, msg, domain.ProjectTarget(ev.Project.ID))
		}

	case SubscriptionExpiring:
		end := "soon"
		if ev.Subscription.EndDate != nil {
			end = "on " + ev.Subscription.EndDate.UTC().Format("2006-01-02")
		}
		days := ev.Subscription.DaysUntilExpiry(ev.Now)
		msg := fmt.Sprintf("Your subscription to %s will expire in %d days %s. Renew now to avoid interruption.",
			orFallback(ev.PlanName, "your plan"), days, end)
		out.add(ev.Subscription.UserID, domain.NotificationSubscriptionExpired, "Subscription Expiring Soon", msg,
			domain.SubscriptionTarget(ev.Subscription.ID))
	}
	return out.drafts
}

// recipients accumulates drafts, keeping the first draft per recipient.
type recipients struct {
	seen   map[string]struct{}
	drafts []Draft
}

func (r *recipients) add(id string, typ domain.NotificationType, title, msg string, target domain.Target) {
	if id == "" {
		return
	}
	if r.seen == nil {
		r.seen = make(map[string]struct{})
	}
	if _, ok := r.seen[id]; ok {
		return
	}
	r.seen[id] = struct{}{}
	r.drafts = append(r.drafts, Draft{RecipientID: id, Type: typ, Title: title, Message: msg, Target: target})
}
