// Package api exposes the hiring service over REST.
//
// Routes:
//
//	GET  /health, /version
//	POST /v1/auth/signup, /v1/auth/signin
//	GET  /v1/pipelines[/{id}]            POST /v1/pipelines, PUT /v1/pipelines/{id}  (admin)
//	GET  /v1/jobs[/{id}], /v1/deadlines  POST /v1/jobs, PUT /v1/jobs/{id}[/pipeline] (admin)
//	POST /v1/jobs/{id}/applications      GET  /v1/jobs/{id}/applications              (admin)
//	POST /v1/jobs/{id}/screen            (admin)
//	POST /v1/applications/{id}/move      POST /v1/applications/{id}/screening         (admin)
//	GET  /v1/me/applications             PUT  /v1/me/profile
//	GET  /v1/applicants/{id}             (admin)
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"jobmate/hiring-service/internal/identity"
	"jobmate/hiring-service/internal/jobs"
	"jobmate/hiring-service/internal/kanban"
	"jobmate/hiring-service/internal/pipeline"
	"jobmate/hiring-service/internal/screening"
	"jobmate/hiring-service/internal/session"
)

// Deps are the services the router dispatches to.
type Deps struct {
	Pipelines *pipeline.Registry
	Jobs      *jobs.Catalog
	Identity  *identity.Resolver
	Kanban    *kanban.Service
	Screening *screening.Service
	Sessions  *session.Issuer
	Version   string
	Logger    *slog.Logger
}

// Handler holds shared dependencies.
type Handler struct {
	Deps
	started time.Time
}

// NewRouter mounts every route. Session identity is attached for all
// routes; the admin ones check it per handler.
func NewRouter(d Deps) *mux.Router {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	h := &Handler{Deps: d, started: time.Now()}

	r := mux.NewRouter()
	r.Use(h.logging, h.recovery, d.Sessions.Middleware())

	r.HandleFunc("/health", h.health).Methods(http.MethodGet)
	r.HandleFunc("/version", h.version).Methods(http.MethodGet)

	v1 := r.PathPrefix("/v1").Subrouter()
	v1.HandleFunc("/auth/signup", h.signup).Methods(http.MethodPost)
	v1.HandleFunc("/auth/signin", h.signin).Methods(http.MethodPost)

	v1.HandleFunc("/pipelines", h.authed(h.listPipelines)).Methods(http.MethodGet)
	v1.HandleFunc("/pipelines", h.admin(h.createPipeline)).Methods(http.MethodPost)
	v1.HandleFunc("/pipelines/{id}", h.authed(h.getPipeline)).Methods(http.MethodGet)
	v1.HandleFunc("/pipelines/{id}", h.admin(h.updatePipeline)).Methods(http.MethodPut)

	v1.HandleFunc("/jobs", h.listJobs).Methods(http.MethodGet)
	v1.HandleFunc("/jobs", h.admin(h.createJob)).Methods(http.MethodPost)
	v1.HandleFunc("/deadlines", h.deadlines).Methods(http.MethodGet)
	v1.HandleFunc("/jobs/{id}", h.getJob).Methods(http.MethodGet)
	v1.HandleFunc("/jobs/{id}", h.admin(h.updateJob)).Methods(http.MethodPut)
	v1.HandleFunc("/jobs/{id}/pipeline", h.admin(h.assignPipeline)).Methods(http.MethodPut)
	v1.HandleFunc("/jobs/{id}/applications", h.apply).Methods(http.MethodPost)
	v1.HandleFunc("/jobs/{id}/applications", h.admin(h.listJobApplications)).Methods(http.MethodGet)
	v1.HandleFunc("/jobs/{id}/screen", h.admin(h.screenJob)).Methods(http.MethodPost)

	v1.HandleFunc("/applications/{id}/move", h.admin(h.moveApplication)).Methods(http.MethodPost)
	v1.HandleFunc("/applications/{id}/screening", h.admin(h.attachScreening)).Methods(http.MethodPost)

	v1.HandleFunc("/me/applications", h.authed(h.myApplications)).Methods(http.MethodGet)
	v1.HandleFunc("/me/profile", h.authed(h.updateProfile)).Methods(http.MethodPut)
	v1.HandleFunc("/applicants/{id}", h.admin(h.getApplicant)).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		jsonError(w, "not found", http.StatusNotFound)
	})
	return r
}

// ─── Middleware ──────────────────────────────────────────────────────────────

func (h *Handler) logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		h.Logger.Debug("request", "method", r.Method, "path", r.URL.Path, "elapsed", time.Since(start))
	})
}

func (h *Handler) recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				h.Logger.Error("panic", "path", r.URL.Path, "err", v)
				jsonError(w, "internal error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) authed(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := session.Require(r.Context()); err != nil {
			h.fail(w, err)
			return
		}
		next(w, r)
	}
}

func (h *Handler) admin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := session.RequireAdmin(r.Context()); err != nil {
			h.fail(w, err)
			return
		}
		next(w, r)
	}
}

// ─── System ──────────────────────────────────────────────────────────────────

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	jsonOK(w, map[string]string{"status": "ok", "service": "hiring-service"})
}

func (h *Handler) version(w http.ResponseWriter, _ *http.Request) {
	jsonOK(w, map[string]any{
		"version": h.Version,
		"uptime":  time.Since(h.started).Round(time.Second).String(),
	})
}
