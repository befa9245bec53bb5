package handlers

import (
	"net/http"
)

type planRequest struct {
	Plan string `json:"plan"`
}

func (a *App) Me(w http.ResponseWriter, r *http.Request) {
	u, err := a.Svc.GetUser(r.Context(), a.currentUserID(r))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, toUser(u))
}

func (a *App) Digest(w http.ResponseWriter, r *http.Request) {
	d, err := a.Svc.WeeklyDigest(r.Context(), a.actor(r))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, toDigest(d))
}

func (a *App) ActivityList(w http.ResponseWriter, r *http.Request) {
	items, err := a.Svc.ListActivity(r.Context(), a.actor(r), limitParam(r, 50, 200))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{"items": toActivity(items)})
}

func (a *App) LimitsCheck(w http.ResponseWriter, r *http.Request) {
	report, err := a.Svc.CheckUsageLimits(r.Context(), a.currentUserID(r))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, toLimits(report))
}

func (a *App) PlansList(w http.ResponseWriter, r *http.Request) {
	plans, err := a.Svc.ListPlans(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	items := make([]planResponse, 0, len(plans))
	for _, p := range plans {
		items = append(items, toPlan(p))
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}

func (a *App) SubscriptionGet(w http.ResponseWriter, r *http.Request) {
	view, err := a.Svc.GetSubscription(r.Context(), a.currentUserID(r))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, toSubscription(view, a.Svc.Now()))
}

func (a *App) SubscriptionChangePlan(w http.ResponseWriter, r *http.Request) {
	var req planRequest
	if !a.decode(w, r, &req) {
		return
	}
	view, err := a.Svc.ChangePlan(r.Context(), a.currentUserID(r), req.Plan)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, toSubscription(view, a.Svc.Now()))
}

func (a *App) SubscriptionStartTrial(w http.ResponseWriter, r *http.Request) {
	var req planRequest
	if !a.decode(w, r, &req) {
		return
	}
	view, err := a.Svc.StartTrial(r.Context(), a.currentUserID(r), req.Plan)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusCreated, toSubscription(view, a.Svc.Now()))
}

func (a *App) NotificationsList(w http.ResponseWriter, r *http.Request) {
	list, err := a.Svc.ListNotifications(r.Context(), a.actor(r), r.URL.Query().Get("unread") == "true")
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"items":        toNotifications(list.Items),
		"unread_count": list.UnreadCount,
	})
}

func (a *App) NotificationsMarkRead(w http.ResponseWriter, r *http.Request) {
	if err := a.Svc.MarkRead(r.Context(), a.actor(r), param(r, "notificationID")); err != nil {
		a.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *App) NotificationsMarkUnread(w http.ResponseWriter, r *http.Request) {
	if err := a.Svc.MarkUnread(r.Context(), a.actor(r), param(r, "notificationID")); err != nil {
		a.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *App) NotificationsMarkAllRead(w http.ResponseWriter, r *http.Request) {
	n, err := a.Svc.MarkAllRead(r.Context(), a.actor(r))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, map[string]int{"updated": n})
}

func (a *App) NotificationsDelete(w http.ResponseWriter, r *http.Request) {
	if err := a.Svc.DeleteNotification(r.Context(), a.actor(r), param(r, "notificationID")); err != nil {
		a.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
