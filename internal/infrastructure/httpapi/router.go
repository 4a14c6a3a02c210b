package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/Ragnaroek/terminus/internal/infrastructure/config"
	obs "github.com/Ragnaroek/terminus/internal/infrastructure/observability"
	"github.com/Ragnaroek/terminus/internal/usecase"
)

type Deps struct {
	Cfg     config.Config
	Logger  *zerolog.Logger
	Metrics *obs.Metrics
	Svc     *usecase.TraceService
	Monitor *MonitorHub
	Live    *LiveSessions
}

func NewRouter(d *Deps) http.Handler {
	if d.Monitor == nil {
		d.Monitor = NewMonitorHub()
	}
	if d.Live == nil {
		d.Live = NewLiveSessions()
	}
	return withCORS(d.Cfg, buildBaseMux(d))
}

// buildBaseMux constructs the mux with all routes, without wrappers.
func buildBaseMux(d *Deps) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if d.Svc.Path() == "" {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("no trace loaded"))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	mux.Handle("/metrics", promhttp.HandlerFor(d.Metrics.Registry(), promhttp.HandlerOpts{}))

	mux.HandleFunc("/api/version", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"name":    "terminus",
			"version": obs.Version,
			"commit":  obs.Commit,
			"trace":   d.Svc.Path(),
			"time":    time.Now().UTC(),
		})
	})

	mux.HandleFunc("/api/frames", d.handleListFrames)
	mux.HandleFunc("/api/frames/", d.handleFrameByIndex)

	mux.HandleFunc("/api/sessions", d.handleSessions)
	mux.HandleFunc("/api/sessions/", d.handleSessionByID)

	mux.HandleFunc("/api/monitor/ws", d.Monitor.HandleWS)

	return mux
}

func withCORS(cfg config.Config, h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", cfg.CORSAllowOrigin)
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		h.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
