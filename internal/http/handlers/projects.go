package handlers

import (
	"net/http"
	"time"

	"taskflow/internal/service"
)

type projectRequest struct {
	Name          *string    `json:"name"`
	Description   *string    `json:"description"`
	Deadline      *time.Time `json:"deadline"`
	ClearDeadline bool       `json:"clear_deadline"`
}

type memberRequest struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

func (a *App) ProjectsList(w http.ResponseWriter, r *http.Request) {
	items, err := a.Svc.ListProjects(r.Context(), a.actor(r))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{"items": toProjects(items)})
}

func (a *App) ProjectsCreate(w http.ResponseWriter, r *http.Request) {
	var req projectRequest
	if !a.decode(w, r, &req) {
		return
	}
	in := service.ProjectInput{Deadline: req.Deadline}
	if req.Name != nil {
		in.Name = *req.Name
	}
	if req.Description != nil {
		in.Description = *req.Description
	}
	p, err := a.Svc.CreateProject(r.Context(), a.actor(r), in)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusCreated, toProject(p))
}

func (a *App) ProjectsGet(w http.ResponseWriter, r *http.Request) {
	p, err := a.Svc.GetProject(r.Context(), a.actor(r), param(r, "projectID"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, toProject(p))
}

func (a *App) ProjectsUpdate(w http.ResponseWriter, r *http.Request) {
	var req projectRequest
	if !a.decode(w, r, &req) {
		return
	}
	p, err := a.Svc.UpdateProject(r.Context(), a.actor(r), param(r, "projectID"), service.ProjectUpdate{
		Name:          req.Name,
		Description:   req.Description,
		Deadline:      req.Deadline,
		ClearDeadline: req.ClearDeadline,
	})
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, toProject(p))
}

func (a *App) ProjectsDelete(w http.ResponseWriter, r *http.Request) {
	if err := a.Svc.DeleteProject(r.Context(), a.actor(r), param(r, "projectID")); err != nil {
		a.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ProjectsAddMember accepts either a user id or an email address.
func (a *App) ProjectsAddMember(w http.ResponseWriter, r *http.Request) {
	var req memberRequest
	if !a.decode(w, r, &req) {
		return
	}
	userID := req.UserID
	if userID == "" && req.Email != "" {
		u, err := a.Svc.FindUserByEmail(r.Context(), req.Email)
		if err != nil {
			a.fail(w, r, err)
			return
		}
		userID = u.ID
	}
	if userID == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "user_id or email is required")
		return
	}
	p, err := a.Svc.AddMember(r.Context(), a.actor(r), param(r, "projectID"), userID)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, toProject(p))
}

func (a *App) ProjectsRemoveMember(w http.ResponseWriter, r *http.Request) {
	if err := a.Svc.RemoveMember(r.Context(), a.actor(r), param(r, "projectID"), param(r, "userID")); err != nil {
		a.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *App) ProjectsReport(w http.ResponseWriter, r *http.Request) {
	report, err := a.Svc.ProjectReport(r.Context(), a.actor(r), param(r, "projectID"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, toReport(report))
}

func (a *App) ProjectsPermissions(w http.ResponseWriter, r *http.Request) {
	perms, err := a.Svc.Permissions(r.Context(), a.actor(r), param(r, "projectID"), "")
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, toPermissions(perms))
}

func (a *App) ProjectsActivity(w http.ResponseWriter, r *http.Request) {
	items, err := a.Svc.ListProjectActivity(r.Context(), a.actor(r), param(r, "projectID"), limitParam(r, 50, 200))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{"items": toActivity(items)})
}
