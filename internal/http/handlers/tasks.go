package handlers

import (
	"net/http"
	"time"

	"taskflow/internal/domain"
	"taskflow/internal/service"
)

type createTaskRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Priority    string     `json:"priority"`
	Deadline    *time.Time `json:"deadline"`
	AssigneeID  string     `json:"assignee_id"`
	DependsOn   []string   `json:"depends_on"`
}

type updateTaskRequest struct {
	Title         *string    `json:"title"`
	Description   *string    `json:"description"`
	Priority      *string    `json:"priority"`
	Deadline      *time.Time `json:"deadline"`
	ClearDeadline bool       `json:"clear_deadline"`
}

type statusRequest struct {
	Status string `json:"status"`
}

type assignRequest struct {
	AssigneeID string `json:"assignee_id"`
}

type dependencyRequest struct {
	DependsOnID string `json:"depends_on_id"`
}

// TasksList lists tasks visible to the caller, filtered by the project,
// assignee, status and priority query parameters.
func (a *App) TasksList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.TaskFilter{
		ProjectID:  q.Get("project_id"),
		AssigneeID: q.Get("assignee_id"),
		Status:     domain.TaskStatus(q.Get("status")),
		Priority:   domain.TaskPriority(q.Get("priority")),
	}
	if id := param(r, "projectID"); id != "" {
		filter.ProjectID = id
	}
	if filter.AssigneeID == "me" {
		filter.AssigneeID = a.currentUserID(r)
	}
	items, err := a.Svc.ListTasks(r.Context(), a.actor(r), filter)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{"items": toTasks(items)})
}

func (a *App) TasksCreate(w http.ResponseWriter, r *http.Request) {
	var req createTaskRequest
	if !a.decode(w, r, &req) {
		return
	}
	t, err := a.Svc.CreateTask(r.Context(), a.actor(r), param(r, "projectID"), service.TaskInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    domain.TaskPriority(req.Priority),
		Deadline:    req.Deadline,
		AssigneeID:  req.AssigneeID,
		DependsOn:   req.DependsOn,
	})
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusCreated, toTask(t))
}

func (a *App) TasksGet(w http.ResponseWriter, r *http.Request) {
	t, err := a.Svc.GetTask(r.Context(), a.actor(r), param(r, "taskID"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, toTask(t))
}

func (a *App) TasksUpdate(w http.ResponseWriter, r *http.Request) {
	var req updateTaskRequest
	if !a.decode(w, r, &req) {
		return
	}
	in := service.TaskUpdate{
		Title:         req.Title,
		Description:   req.Description,
		Deadline:      req.Deadline,
		ClearDeadline: req.ClearDeadline,
	}
	if req.Priority != nil {
		p := domain.TaskPriority(*req.Priority)
		in.Priority = &p
	}
	t, err := a.Svc.UpdateTask(r.Context(), a.actor(r), param(r, "taskID"), in)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, toTask(t))
}

func (a *App) TasksDelete(w http.ResponseWriter, r *http.Request) {
	if err := a.Svc.DeleteTask(r.Context(), a.actor(r), param(r, "taskID")); err != nil {
		a.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *App) TasksTransition(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if !a.decode(w, r, &req) {
		return
	}
	target := domain.TaskStatus(req.Status)
	previous, err := a.Svc.TransitionTaskStatus(r.Context(), a.actor(r), param(r, "taskID"), target)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, map[string]string{
		"task_id":         param(r, "taskID"),
		"previous_status": string(previous),
		"status":          string(target),
	})
}

func (a *App) TasksAllowedTransitions(w http.ResponseWriter, r *http.Request) {
	targets, err := a.Svc.AllowedTransitions(r.Context(), a.actor(r), param(r, "taskID"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	out := make([]string, 0, len(targets))
	for _, s := range targets {
		out = append(out, string(s))
	}
	a.json(w, http.StatusOK, map[string]any{"items": out})
}

func (a *App) TasksAssign(w http.ResponseWriter, r *http.Request) {
	var req assignRequest
	if !a.decode(w, r, &req) {
		return
	}
	t, err := a.Svc.AssignTask(r.Context(), a.actor(r), param(r, "taskID"), req.AssigneeID)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, toTask(t))
}

func (a *App) TasksPermissions(w http.ResponseWriter, r *http.Request) {
	perms, err := a.Svc.Permissions(r.Context(), a.actor(r), "", param(r, "taskID"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, toPermissions(perms))
}

func (a *App) DependenciesView(w http.ResponseWriter, r *http.Request) {
	view, err := a.Svc.DependencyView(r.Context(), a.actor(r), param(r, "taskID"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, toDependencyView(view))
}

func (a *App) DependenciesAdd(w http.ResponseWriter, r *http.Request) {
	var req dependencyRequest
	if !a.decode(w, r, &req) {
		return
	}
	if req.DependsOnID == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "depends_on_id is required")
		return
	}
	if err := a.Svc.AddTaskDependency(r.Context(), a.actor(r), param(r, "taskID"), req.DependsOnID); err != nil {
		a.fail(w, r, err)
		return
	}
	a.DependenciesView(w, r)
}

func (a *App) DependenciesRemove(w http.ResponseWriter, r *http.Request) {
	if err := a.Svc.RemoveTaskDependency(r.Context(), a.actor(r), param(r, "taskID"), param(r, "dependsOnID")); err != nil {
		a.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
