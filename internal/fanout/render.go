package fanout

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"taskflow/internal/domain"
)

const deadlineLayout = "2006-01-02 15:04"

// StatusLabel renders a status for humans, e.g. in_progress -> In Progress.
func StatusLabel(s domain.TaskStatus) string {
	if s == "" {
		return "Unknown"
	}
	// Casers keep state; one per call.
	return cases.Title(language.English).String(strings.ReplaceAll(string(s), "_", " "))
}

func formatDeadline(t *time.Time) string {
	if t == nil {
		return "soon"
	}
	return t.UTC().Format(deadlineLayout)
}

func orFallback(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}

func weeklySummary(name string, stats domain.ProjectStats, completedThisWeek int) string {
	return message.NewPrinter(language.English).Sprintf("Weekly Report for %s:\n- Total Tasks: %d\n- Completed This Week: %d\n- Overdue Tasks: %d\n- Progress: %.2f%%",
		name, stats.TotalTasks, completedThisWeek, stats.OverdueTasks, stats.ProgressPercentage)
}
