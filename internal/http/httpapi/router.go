package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"taskflow/internal/http/handlers"
	"taskflow/internal/middleware"
)

// Options carries the collaborators of the HTTP surface.
type Options struct {
	App            *handlers.App
	Auth           *middleware.Authenticator
	Logger         zerolog.Logger
	AllowedOrigins []string
	RatePerMinute  int
	CountryLookup  middleware.CountryLookup
}

func NewRouter(opts Options) http.Handler {
	app := opts.App
	r := chi.NewRouter()

	r.Use(
		chimw.RealIP,
		middleware.RequestID,
		middleware.Logger(opts.Logger),
		chimw.Recoverer,
		middleware.CORS(opts.AllowedOrigins),
		middleware.RateLimit(opts.RatePerMinute, time.Minute),
		middleware.ClientInfo(opts.CountryLookup),
	)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/healthz", app.Health)
		r.Get("/readyz", app.Ready)

		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthJWT(opts.Auth))

			r.Get("/me", app.Me)
			r.Get("/me/digest", app.Digest)
			r.Get("/me/activity", app.ActivityList)
			r.Get("/me/limits", app.LimitsCheck)

			r.Get("/plans", app.PlansList)
			r.Route("/subscription", func(r chi.Router) {
				r.Get("/", app.SubscriptionGet)
				r.Put("/plan", app.SubscriptionChangePlan)
				r.Post("/trial", app.SubscriptionStartTrial)
			})

			r.Route("/projects", func(r chi.Router) {
				r.Get("/", app.ProjectsList)
				r.Post("/", app.ProjectsCreate)
				r.Route("/{projectID}", func(r chi.Router) {
					r.Get("/", app.ProjectsGet)
					r.Patch("/", app.ProjectsUpdate)
					r.Delete("/", app.ProjectsDelete)
					r.Get("/report", app.ProjectsReport)
					r.Get("/permissions", app.ProjectsPermissions)
					r.Get("/activity", app.ProjectsActivity)
					r.Post("/members", app.ProjectsAddMember)
					r.Delete("/members/{userID}", app.ProjectsRemoveMember)
					r.Get("/tasks", app.TasksList)
					r.Post("/tasks", app.TasksCreate)
				})
			})

			r.Route("/tasks", func(r chi.Router) {
				r.Get("/", app.TasksList)
				r.Route("/{taskID}", func(r chi.Router) {
					r.Get("/", app.TasksGet)
					r.Patch("/", app.TasksUpdate)
					r.Delete("/", app.TasksDelete)
					r.Put("/status", app.TasksTransition)
					r.Get("/transitions", app.TasksAllowedTransitions)
					r.Put("/assignee", app.TasksAssign)
					r.Get("/permissions", app.TasksPermissions)
					r.Get("/dependencies", app.DependenciesView)
					r.Post("/dependencies", app.DependenciesAdd)
					r.Delete("/dependencies/{dependsOnID}", app.DependenciesRemove)
				})
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", app.NotificationsList)
				r.Post("/read-all", app.NotificationsMarkAllRead)
				r.Post("/{notificationID}/read", app.NotificationsMarkRead)
				r.Post("/{notificationID}/unread", app.NotificationsMarkUnread)
				r.Delete("/{notificationID}", app.NotificationsDelete)
			})
		})
	})

	return r
}
