package handlers

import (
	"net/http"
)

// Health reports liveness only.
func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]any{"status": "ok", "time": a.Svc.Now().UTC()})
}

// Ready fails while storage cannot serve a trivial read.
func (a *App) Ready(w http.ResponseWriter, r *http.Request) {
	if _, err := a.Svc.ListPlans(r.Context()); err != nil {
		zerologCtx(r).Warn().Err(err).Msg("readiness check failed")
		a.error(w, http.StatusServiceUnavailable, "unavailable", "storage unavailable")
		return
	}
	a.json(w, http.StatusOK, map[string]string{"status": "ready"})
}
