package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"vehicle-rental-backend/internal/logger"
)

// Pinger is a dependency checked by the readiness probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// OpsHandler serves liveness, readiness and metrics endpoints
type OpsHandler struct {
	checks   map[string]Pinger
	gatherer prometheus.Gatherer
	timeout  time.Duration
}

func NewOpsHandler(checks map[string]Pinger, gatherer prometheus.Gatherer) *OpsHandler {
	return &OpsHandler{
		checks:   checks,
		gatherer: gatherer,
		timeout:  2 * time.Second,
	}
}

// HandleHealth always reports ok while the process serves requests
func (h *OpsHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

// HandleReady pings every dependency and fails if any is unreachable
func (h *OpsHandler) HandleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	code := http.StatusOK
	results := make(map[string]string, len(h.checks))
	for name, p := range h.checks {
		if err := p.Ping(ctx); err != nil {
			logger.Warn("Readiness check failed", "dependency", name, "error", err)
			results[name] = err.Error()
			code = http.StatusServiceUnavailable
			continue
		}
		results[name] = "ok"
	}

	status := "ok"
	if code != http.StatusOK {
		status = "unavailable"
	}
	writeJSON(w, code, map[string]any{"status": status, "checks": results})
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("Failed to write response", "error", err)
	}
}

// RegisterOpsRoutes registers the operational HTTP endpoints. An empty
// metricsPath leaves the Prometheus endpoint out.
func RegisterOpsRoutes(router *mux.Router, h *OpsHandler, metricsPath string) {
	router.HandleFunc("/healthz", h.HandleHealth).Methods("GET")
	router.HandleFunc("/readyz", h.HandleReady).Methods("GET")
	if metricsPath != "" && h.gatherer != nil {
		router.Handle(metricsPath, promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{})).Methods("GET")
	}
}
