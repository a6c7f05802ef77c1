// Package router exposes the operational HTTP endpoints: liveness, readiness, backups and metrics.
package router

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/solaros/solar-os/internal/config"
	"github.com/solaros/solar-os/internal/http/middleware"
	"go.uber.org/zap"
)

// Check probes one dependency; a nil error means healthy
type Check func(ctx context.Context) error

// Schedule reports upcoming runs of scheduled jobs
type Schedule interface {
	JobNames() []string
	NextRun(name string) (time.Time, bool)
}

type Router struct {
	cfg      *config.Config
	logger   *zap.Logger
	gatherer prometheus.Gatherer
	checks   map[string]Check
	schedule Schedule
}

// NewRouter creates the ops router. schedule may be nil when no jobs are registered.
func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	gatherer prometheus.Gatherer,
	checks map[string]Check,
	schedule Schedule,
) *Router {
	return &Router{
		cfg:      cfg,
		logger:   logger,
		gatherer: gatherer,
		checks:   checks,
		schedule: schedule,
	}
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.Logging(rt.logger))
	if timeout := rt.cfg.Server.WriteTimeoutDuration(); timeout > 0 {
		r.Use(chimiddleware.Timeout(timeout))
	}

	// Health check (basic liveness probe)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{
			"status":      "healthy",
			"app":         rt.cfg.App.Name,
			"environment": rt.cfg.App.Environment,
		})
	})

	// Readiness probe over the persistence backend and any other registered checks
	r.Get("/health/ready", rt.ready)

	r.Get("/health/jobs", rt.jobs)

	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(rt.gatherer, promhttp.HandlerOpts{}))

	return r
}

func (rt *Router) ready(w http.ResponseWriter, r *http.Request) {
	names := make([]string, 0, len(rt.checks))
	for name := range rt.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	checks := make(map[string]interface{}, len(names))
	allHealthy := true
	for _, name := range names {
		if err := rt.checks[name](r.Context()); err != nil {
			rt.logger.Error("Readiness check failed", zap.String("check", name), zap.Error(err))
			checks[name] = map[string]string{
				"status": "unhealthy",
				"error":  err.Error(),
			}
			allHealthy = false
			continue
		}
		checks[name] = map[string]string{"status": "healthy"}
	}

	if allHealthy {
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"status": "healthy",
			"checks": checks,
		})
		return
	}
	respondJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
		"status": "unhealthy",
		"checks": checks,
	})
}

type jobStatus struct {
	Name    string     `json:"name"`
	NextRun *time.Time `json:"nextRun,omitempty"`
}

func (rt *Router) jobs(w http.ResponseWriter, r *http.Request) {
	out := []jobStatus{}
	if rt.schedule != nil {
		for _, name := range rt.schedule.JobNames() {
			status := jobStatus{Name: name}
			if next, ok := rt.schedule.NextRun(name); ok && !next.IsZero() {
				next := next.UTC()
				status.NextRun = &next
			}
			out = append(out, status)
		}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"jobs": out})
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}
