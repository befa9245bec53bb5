package access

import (
	"testing"

	"taskflow/internal/domain"
)

func TestProjectRules(t *testing.T) {
	p := &domain.Project{ID: "p1", OwnerID: "owner", MemberIDs: []string{"owner", "member"}}
	tests := []struct {
		name  string
		actor *domain.Actor
		op    Operation
		want  bool
	}{
		{"owner reads", &domain.Actor{UserID: "owner"}, OpRead, true},
		{"member reads", &domain.Actor{UserID: "member"}, OpRead, true},
		{"stranger cannot read", &domain.Actor{UserID: "stranger"}, OpRead, false},
		{"owner modifies", &domain.Actor{UserID: "owner"}, OpModify, true},
		{"member cannot modify", &domain.Actor{UserID: "member"}, OpModify, false},
		{"member cannot delete", &domain.Actor{UserID: "member"}, OpDelete, false},
		{"owner deletes", &domain.Actor{UserID: "owner"}, OpDelete, true},
		{"nil actor", nil, OpRead, false},
		{"unknown op", &domain.Actor{UserID: "owner"}, Operation("archive"), false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Evaluate(tc.actor, tc.op, p, nil); got != tc.want {
				t.Fatalf("Evaluate(%s) = %v, want %v", tc.op, got, tc.want)
			}
		})
	}
}

func TestTaskRules(t *testing.T) {
	p := &domain.Project{ID: "p1", OwnerID: "owner", MemberIDs: []string{"owner", "member", "assignee"}}
	task := &domain.Task{ID: "t1", ProjectID: "p1", AssigneeID: "assignee"}
	foreign := &domain.Task{ID: "t2", ProjectID: "p2", AssigneeID: "assignee"}

	tests := []struct {
		name  string
		actor *domain.Actor
		task  *domain.Task
		op    Operation
		want  bool
	}{
		{"member reads task", &domain.Actor{UserID: "member"}, task, OpRead, true},
		{"member cannot modify task", &domain.Actor{UserID: "member"}, task, OpModify, false},
		{"assignee modifies task", &domain.Actor{UserID: "assignee"}, task, OpModify, true},
		{"assignee cannot delete task", &domain.Actor{UserID: "assignee"}, task, OpDelete, false},
		{"assignee may reassign", &domain.Actor{UserID: "assignee"}, task, OpAssign, true},
		{"owner deletes task", &domain.Actor{UserID: "owner"}, task, OpDelete, true},
		{"parent mismatch denies", &domain.Actor{UserID: "owner"}, foreign, OpRead, false},
		{"nil actor denies", nil, task, OpModify, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Evaluate(tc.actor, tc.op, p, tc.task); got != tc.want {
				t.Fatalf("Evaluate(%s) = %v, want %v", tc.op, got, tc.want)
			}
		})
	}
}

func TestNilEntitiesNeverPanic(t *testing.T) {
	actor := &domain.Actor{UserID: "u"}
	if CanAccessProject(actor, nil) || CanModifyProject(actor, nil) {
		t.Fatalf("nil project must deny")
	}
	if CanAccessTask(actor, nil, nil) || CanModifyTask(actor, &domain.Task{}, nil) || CanDeleteTask(nil, nil, nil) {
		t.Fatalf("nil task or parent must deny")
	}
}
