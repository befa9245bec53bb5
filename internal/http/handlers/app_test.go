package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"taskflow/internal/domain"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"unmet dependencies", &domain.UnmetDependenciesError{TaskIDs: []string{"a"}}, http.StatusBadRequest, "incomplete_dependencies"},
		{"limit", fmt.Errorf("create: %w", &domain.LimitExceededError{Resource: "projects"}), http.StatusForbidden, "limit_exceeded"},
		{"validation", domain.Invalid("title", "is required"), http.StatusBadRequest, "validation_failed"},
		{"transition", &domain.TransitionError{From: domain.TaskStatusTodo, To: domain.TaskStatusReview}, http.StatusBadRequest, "invalid_transition"},
		{"forbidden", domain.ErrForbidden, http.StatusForbidden, "forbidden"},
		{"not found", fmt.Errorf("load task: %w", domain.ErrNotFound), http.StatusNotFound, "not_found"},
		{"conflict", fmt.Errorf("%w: exists", domain.ErrConflict), http.StatusConflict, "conflict"},
		{"cycle", domain.ErrCircularDependency, http.StatusBadRequest, "circular_dependency"},
		{"cross project", domain.ErrCrossProjectDependency, http.StatusBadRequest, "cross_project_dependency"},
		{"unauthorized", domain.ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
		{"unknown", errors.New("db down"), http.StatusInternalServerError, "internal"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			status, payload := classify(tc.err)
			if status != tc.status || payload.Code != tc.code {
				t.Fatalf("classify() = (%d, %s), want (%d, %s)", status, payload.Code, tc.status, tc.code)
			}
		})
	}
}

func TestInternalErrorsHideDetails(t *testing.T) {
	app := &App{}
	rec := httptest.NewRecorder()
	app.fail(rec, httptest.NewRequest(http.MethodGet, "/", nil), errors.New("password=hunter2"))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "hunter2") {
		t.Fatalf("internal error leaked: %s", rec.Body.String())
	}
}

func TestLimitParam(t *testing.T) {
	tests := []struct {
		query string
		want  int
	}{
		{"", 50},
		{"limit=10", 10},
		{"limit=-1", 50},
		{"limit=abc", 50},
		{"limit=1000", 200},
	}
	for _, tc := range tests {
		r := httptest.NewRequest(http.MethodGet, "/?"+tc.query, nil)
		if got := limitParam(r, 50, 200); got != tc.want {
			t.Errorf("limitParam(%q) = %d, want %d", tc.query, got, tc.want)
		}
	}
}
