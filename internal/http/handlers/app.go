package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"taskflow/internal/domain"
	"taskflow/internal/middleware"
	"taskflow/internal/service"
)

const maxBodyBytes = 1 << 20

// App holds the dependencies shared by every handler.
type App struct {
	Svc    *service.Service
	Logger zerolog.Logger
}

func NewApp(svc *service.Service, logger zerolog.Logger) *App {
	return &App{Svc: svc, Logger: logger}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

type errorPayload struct {
	Code                   string   `json:"code"`
	Message                string   `json:"message"`
	Field                  string   `json:"field,omitempty"`
	IncompleteDependencies []string `json:"incomplete_dependencies,omitempty"`
}

func (a *App) error(w http.ResponseWriter, code int, errCode, message string) {
	a.json(w, code, map[string]any{"error": errorPayload{Code: errCode, Message: message}})
}

// fail maps a service error onto the HTTP error envelope.
func (a *App) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, payload := classify(err)
	if status >= http.StatusInternalServerError {
		zerologCtx(r).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	}
	a.json(w, status, map[string]any{"error": payload})
}

func classify(err error) (int, errorPayload) {
	var (
		unmet      *domain.UnmetDependenciesError
		limit      *domain.LimitExceededError
		validation *domain.ValidationError
	)
	switch {
	case errors.As(err, &unmet):
		return http.StatusBadRequest, errorPayload{
			Code:                   "incomplete_dependencies",
			Message:                err.Error(),
			IncompleteDependencies: unmet.TaskIDs,
		}
	case errors.As(err, &limit):
		return http.StatusForbidden, errorPayload{Code: "limit_exceeded", Message: limit.Error(), Field: limit.Resource}
	case errors.As(err, &validation):
		return http.StatusBadRequest, errorPayload{Code: "validation_failed", Message: validation.Message, Field: validation.Field}
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, errorPayload{Code: "unauthorized", Message: "authentication required"}
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, errorPayload{Code: "forbidden", Message: "you do not have permission to perform this action"}
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, errorPayload{Code: "not_found", Message: "resource not found"}
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict, errorPayload{Code: "conflict", Message: err.Error()}
	case errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusBadRequest, errorPayload{Code: "invalid_transition", Message: err.Error()}
	case errors.Is(err, domain.ErrSelfDependency):
		return http.StatusBadRequest, errorPayload{Code: "self_dependency", Message: err.Error()}
	case errors.Is(err, domain.ErrCrossProjectDependency):
		return http.StatusBadRequest, errorPayload{Code: "cross_project_dependency", Message: err.Error()}
	case errors.Is(err, domain.ErrCircularDependency):
		return http.StatusBadRequest, errorPayload{Code: "circular_dependency", Message: err.Error()}
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, errorPayload{Code: "validation_failed", Message: err.Error()}
	}
	return http.StatusInternalServerError, errorPayload{Code: "internal", Message: "internal error"}
}

// decode reads a JSON body into dst. An empty body leaves dst untouched.
func (a *App) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return false
	}
	return true
}

// zerologCtx returns the request-scoped logger set by the logging middleware.
func zerologCtx(r *http.Request) *zerolog.Logger {
	return zerolog.Ctx(r.Context())
}

func (a *App) actor(r *http.Request) *domain.Actor {
	return middleware.ActorFromContext(r.Context())
}

func (a *App) currentUserID(r *http.Request) string {
	if actor := a.actor(r); actor != nil {
		return actor.UserID
	}
	return ""
}

func param(r *http.Request, name string) string {
	return strings.TrimSpace(chi.URLParam(r, name))
}

// limitParam parses ?limit=, clamped to [1, max].
func limitParam(r *http.Request, def, max int) int {
	n, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || n <= 0 {
		return def
	}
	if n > max {
		return max
	}
	return n
}
