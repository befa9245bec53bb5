package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"taskflow/internal/adapter/memory"
	"taskflow/internal/delivery"
	"taskflow/internal/domain"
	"taskflow/internal/http/handlers"
	"taskflow/internal/middleware"
	"taskflow/internal/plans"
	"taskflow/internal/service"
)

type apiFixture struct {
	handler http.Handler
	owner   string
	dev     string
	other   string
	devID   string
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	catalog, err := plans.Load("")
	if err != nil {
		t.Fatalf("load plans: %v", err)
	}
	if _, err := plans.Seed(ctx, store.Plans(), catalog); err != nil {
		t.Fatalf("seed plans: %v", err)
	}
	svc := service.New(service.Options{
		Store:      store,
		Dispatcher: delivery.NewDispatcher(store.Notifications(), nil, zerolog.Nop()),
		Logger:     zerolog.Nop(),
	})
	auth := middleware.NewAuthenticator("test-secret", "taskflow", nil)
	f := &apiFixture{
		handler: NewRouter(Options{
			App:    handlers.NewApp(svc, zerolog.Nop()),
			Auth:   auth,
			Logger: zerolog.Nop(),
		}),
	}
	for _, u := range []struct {
		email string
		token *string
		id    *string
	}{
		{email: "owner@example.com", token: &f.owner},
		{email: "dev@example.com", token: &f.dev, id: &f.devID},
		{email: "other@example.com", token: &f.other},
	} {
		user, err := svc.RegisterUser(ctx, u.email, "", domain.UserRoleMember)
		if err != nil {
			t.Fatalf("register %s: %v", u.email, err)
		}
		token, err := auth.SignToken(user.ID, user.Role, time.Hour)
		if err != nil {
			t.Fatalf("sign token: %v", err)
		}
		*u.token = token
		if u.id != nil {
			*u.id = user.ID
		}
	}
	return f
}

func (f *apiFixture) do(t *testing.T, method, path, token string, body any) (int, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	out := map[string]any{}
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
			t.Fatalf("decode %s %s response %q: %v", method, path, rec.Body.String(), err)
		}
	}
	return rec.Code, out
}

func errorCode(body map[string]any) string {
	e, _ := body["error"].(map[string]any)
	code, _ := e["code"].(string)
	return code
}

func (f *apiFixture) createProject(t *testing.T) string {
	t.Helper()
	status, body := f.do(t, http.MethodPost, "/v1/projects", f.owner, map[string]any{"name": "Launch"})
	if status != http.StatusCreated {
		t.Fatalf("create project status = %d body=%v", status, body)
	}
	return body["id"].(string)
}

func (f *apiFixture) createTask(t *testing.T, projectID, title string, dependsOn ...string) string {
	t.Helper()
	status, body := f.do(t, http.MethodPost, "/v1/projects/"+projectID+"/tasks", f.owner, map[string]any{
		"title":      title,
		"depends_on": dependsOn,
	})
	if status != http.StatusCreated {
		t.Fatalf("create task status = %d body=%v", status, body)
	}
	return body["id"].(string)
}

func TestHealthAndAuth(t *testing.T) {
	f := newAPIFixture(t)
	if status, _ := f.do(t, http.MethodGet, "/v1/healthz", "", nil); status != http.StatusOK {
		t.Fatalf("healthz status = %d", status)
	}
	if status, body := f.do(t, http.MethodGet, "/v1/readyz", "", nil); status != http.StatusOK || body["status"] != "ready" {
		t.Fatalf("readyz = %d %v", status, body)
	}
	status, body := f.do(t, http.MethodGet, "/v1/me", "", nil)
	if status != http.StatusUnauthorized || errorCode(body) != "unauthorized" {
		t.Fatalf("unauthenticated /me = %d %v", status, body)
	}
	status, body = f.do(t, http.MethodGet, "/v1/me", f.dev, nil)
	if status != http.StatusOK || body["email"] != "dev@example.com" {
		t.Fatalf("/me = %d %v", status, body)
	}
}

func TestProjectLimitReturnsForbidden(t *testing.T) {
	f := newAPIFixture(t)
	f.createProject(t)
	status, body := f.do(t, http.MethodPost, "/v1/projects", f.owner, map[string]any{"name": "Second"})
	if status != http.StatusForbidden || errorCode(body) != "limit_exceeded" {
		t.Fatalf("second project = %d %v", status, body)
	}
}

func TestCompletionBlockedByDependency(t *testing.T) {
	f := newAPIFixture(t)
	projectID := f.createProject(t)
	a := f.createTask(t, projectID, "A")
	b := f.createTask(t, projectID, "B", a)

	status, body := f.do(t, http.MethodPut, "/v1/tasks/"+b+"/status", f.owner, map[string]any{"status": "completed"})
	if status != http.StatusBadRequest || errorCode(body) != "incomplete_dependencies" {
		t.Fatalf("complete B = %d %v", status, body)
	}
	ids, _ := body["error"].(map[string]any)["incomplete_dependencies"].([]any)
	if len(ids) != 1 || ids[0] != a {
		t.Fatalf("incomplete_dependencies = %v, want [%s]", ids, a)
	}

	status, body = f.do(t, http.MethodPut, "/v1/tasks/"+a+"/status", f.owner, map[string]any{"status": "completed"})
	if status != http.StatusOK || body["previous_status"] != "todo" {
		t.Fatalf("complete A = %d %v", status, body)
	}
	if status, body = f.do(t, http.MethodPut, "/v1/tasks/"+b+"/status", f.owner, map[string]any{"status": "completed"}); status != http.StatusOK {
		t.Fatalf("complete B after A = %d %v", status, body)
	}
}

func TestDependencyErrors(t *testing.T) {
	f := newAPIFixture(t)
	projectID := f.createProject(t)
	a := f.createTask(t, projectID, "A")
	b := f.createTask(t, projectID, "B", a)

	tests := []struct {
		name   string
		task   string
		target string
		code   string
	}{
		{name: "self", task: a, target: a, code: "self_dependency"},
		{name: "cycle", task: a, target: b, code: "circular_dependency"},
		{name: "duplicate", task: b, target: a, code: "conflict"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			status, body := f.do(t, http.MethodPost, "/v1/tasks/"+tc.task+"/dependencies", f.owner, map[string]any{"depends_on_id": tc.target})
			if errorCode(body) != tc.code {
				t.Fatalf("add dependency = %d %v, want code %s", status, body, tc.code)
			}
		})
	}

	status, body := f.do(t, http.MethodGet, "/v1/tasks/"+a+"/dependencies", f.owner, nil)
	if status != http.StatusOK {
		t.Fatalf("dependency view = %d %v", status, body)
	}
	dependents, _ := body["direct_dependents"].([]any)
	if len(dependents) != 1 || dependents[0] != b {
		t.Fatalf("direct_dependents = %v", dependents)
	}
}

func TestNonMemberIsForbidden(t *testing.T) {
	f := newAPIFixture(t)
	projectID := f.createProject(t)
	status, body := f.do(t, http.MethodGet, "/v1/projects/"+projectID, f.other, nil)
	if status != http.StatusForbidden || errorCode(body) != "forbidden" {
		t.Fatalf("non-member read = %d %v", status, body)
	}
	if status, _ := f.do(t, http.MethodGet, "/v1/projects/missing", f.owner, nil); status != http.StatusNotFound {
		t.Fatalf("missing project status = %d", status)
	}
}

func TestInviteNotifiesMember(t *testing.T) {
	f := newAPIFixture(t)
	projectID := f.createProject(t)
	status, body := f.do(t, http.MethodPost, "/v1/projects/"+projectID+"/members", f.owner, map[string]any{"email": "dev@example.com"})
	if status != http.StatusOK {
		t.Fatalf("add member = %d %v", status, body)
	}

	status, body = f.do(t, http.MethodGet, "/v1/notifications", f.dev, nil)
	if status != http.StatusOK {
		t.Fatalf("list notifications = %d %v", status, body)
	}
	items, _ := body["items"].([]any)
	if len(items) != 1 || body["unread_count"] != float64(1) {
		t.Fatalf("notifications = %v", body)
	}
	first := items[0].(map[string]any)
	if first["type"] != string(domain.NotificationProjectInvite) {
		t.Fatalf("notification type = %v", first["type"])
	}

	id := first["id"].(string)
	if status, _ := f.do(t, http.MethodPost, "/v1/notifications/"+id+"/read", f.dev, nil); status != http.StatusNoContent {
		t.Fatalf("mark read status = %d", status)
	}
	_, body = f.do(t, http.MethodGet, "/v1/notifications?unread=true", f.dev, nil)
	if items, _ := body["items"].([]any); len(items) != 0 {
		t.Fatalf("unread items = %v", items)
	}
}

func TestSubscriptionEndpoints(t *testing.T) {
	f := newAPIFixture(t)
	status, body := f.do(t, http.MethodGet, "/v1/subscription", f.owner, nil)
	if status != http.StatusOK {
		t.Fatalf("get subscription = %d %v", status, body)
	}
	if plan := body["plan"].(map[string]any); plan["name"] != domain.DefaultPlanName {
		t.Fatalf("default plan = %v", plan["name"])
	}
	status, body = f.do(t, http.MethodPut, "/v1/subscription/plan", f.owner, map[string]any{"plan": "Pro"})
	if status != http.StatusOK || body["status"] != string(domain.SubscriptionActive) {
		t.Fatalf("change plan = %d %v", status, body)
	}
	status, body = f.do(t, http.MethodGet, "/v1/me/limits", f.owner, nil)
	if status != http.StatusOK || body["within_limits"] != true {
		t.Fatalf("limits = %d %v", status, body)
	}
}

func TestUnknownFieldsRejected(t *testing.T) {
	f := newAPIFixture(t)
	status, body := f.do(t, http.MethodPost, "/v1/projects", f.owner, map[string]any{"name": "x", "owner_id": "someone"})
	if status != http.StatusBadRequest || errorCode(body) != "bad_request" {
		t.Fatalf("unknown field = %d %v", status, body)
	}
}
