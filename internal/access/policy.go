// Package access decides what an actor may do with projects and tasks.
// Every check is pure and answers false for missing inputs.
package access

import "taskflow/internal/domain"

// Operation names a guarded action.
type Operation string

const (
	OpRead   Operation = "read"
	OpModify Operation = "modify"
	OpDelete Operation = "delete"
	OpAssign Operation = "assign"
)

// CanAccessProject allows the owner and members.
func CanAccessProject(actor *domain.Actor, p *domain.Project) bool {
	if actor == nil || p == nil {
		return false
	}
	return p.HasMember(actor.UserID)
}

// CanModifyProject allows the owner only.
func CanModifyProject(actor *domain.Actor, p *domain.Project) bool {
	if actor == nil || p == nil {
		return false
	}
	return p.IsOwner(actor.UserID)
}

// CanDeleteProject allows the owner only.
func CanDeleteProject(actor *domain.Actor, p *domain.Project) bool {
	return CanModifyProject(actor, p)
}

// CanAccessTask follows access to the parent project.
func CanAccessTask(actor *domain.Actor, t *domain.Task, parent *domain.Project) bool {
	if !belongs(t, parent) {
		return false
	}
	return CanAccessProject(actor, parent)
}

// CanModifyTask allows whoever may modify the parent project, plus the assignee.
func CanModifyTask(actor *domain.Actor, t *domain.Task, parent *domain.Project) bool {
	if actor == nil || !belongs(t, parent) {
		return false
	}
	if CanModifyProject(actor, parent) {
		return true
	}
	return t.AssigneeID != "" && t.AssigneeID == actor.UserID
}

// CanDeleteTask requires modify rights on the parent project.
func CanDeleteTask(actor *domain.Actor, t *domain.Task, parent *domain.Project) bool {
	if !belongs(t, parent) {
		return false
	}
	return CanModifyProject(actor, parent)
}

// CanAssignTask is equivalent to CanModifyTask.
func CanAssignTask(actor *domain.Actor, t *domain.Task, parent *domain.Project) bool {
	return CanModifyTask(actor, t, parent)
}

// Evaluate dispatches on the operation. With a nil task the project rules apply.
func Evaluate(actor *domain.Actor, op Operation, p *domain.Project, t *domain.Task) bool {
	if t == nil {
		switch op {
		case OpRead:
			return CanAccessProject(actor, p)
		case OpModify, OpAssign:
			return CanModifyProject(actor, p)
		case OpDelete:
			return CanDeleteProject(actor, p)
		}
		return false
	}
	switch op {
	case OpRead:
		return CanAccessTask(actor, t, p)
	case OpModify:
		return CanModifyTask(actor, t, p)
	case OpDelete:
		return CanDeleteTask(actor, t, p)
	case OpAssign:
		return CanAssignTask(actor, t, p)
	}
	return false
}

func belongs(t *domain.Task, parent *domain.Project) bool {
	return t != nil && parent != nil && t.ProjectID == parent.ID
}
