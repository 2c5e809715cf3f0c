package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	tg "toggl-assistant/internal/adapter/toggl"
	"toggl-assistant/internal/domain"
	"toggl-assistant/internal/usecase"
)

// HTTPServer returns a configured http.Server that exposes the running entry
// and endpoints to stop it and trigger syncs.
// Call ListenAndServe on the returned server in a goroutine and Shutdown it on exit.
func (a *App) HTTPServer(addr string) *http.Server {
	srv := &http.Server{
		Addr:              addr,
		Handler:           a.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	a.log.Info("http trigger server configured", slog.String("addr", addr))
	return srv
}

// Handler builds the routed, instrumented handler behind HTTPServer.
func (a *App) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.HandleFunc("/current", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		entry, ok, err := a.Current(r.Context())
		if err != nil {
			writeError(w, errorStatus(err), err, nil)
			return
		}
		if !ok {
			writeJSON(w, http.StatusOK, map[string]any{"running": false})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"running": true,
			"entry":   newEntryView(entry, a.now()),
		})
	})

	mux.HandleFunc("/stop", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		entry, err := a.Stop(r.Context())
		if err != nil {
			writeError(w, errorStatus(err), err, nil)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"status": "ok",
			"entry":  newEntryView(entry, a.now()),
		})
	})

	// /sync?from=...&to=...
	// from/to accept RFC3339 or YYYY-MM-DD. If omitted, defaults to [now-24h, now].
	mux.HandleFunc("/sync", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		q := r.URL.Query()
		toTime, err := ParseEnd(q.Get("to"), a.now().UTC())
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("to: %w", err), nil)
			return
		}
		fromTime, err := ParseStart(q.Get("from"), toTime.Add(-24*time.Hour))
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("from: %w", err), nil)
			return
		}
		window := map[string]any{
			"from": fromTime.Format(time.RFC3339),
			"to":   toTime.Format(time.RFC3339),
		}

		// Optional timeout override: ?timeout=5m
		ctx := r.Context()
		if tStr := q.Get("timeout"); tStr != "" {
			d, err := time.ParseDuration(tStr)
			if err != nil || d <= 0 {
				writeError(w, http.StatusBadRequest, fmt.Errorf("invalid timeout %q", tStr), window)
				return
			}
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, d)
			defer cancel()
		}

		if err := a.RunOnce(ctx, fromTime, toTime); err != nil {
			writeError(w, errorStatus(err), err, window)
			return
		}
		window["status"] = "ok"
		writeJSON(w, http.StatusOK, window)
	})

	mux.Handle("/metrics", a.metrics.Handler())

	return loggingMiddleware(a.log, a.metrics, mux)
}

type entryView struct {
	ID          int64      `json:"id"`
	ProjectID   *int64     `json:"project_id"`
	Description string     `json:"description"`
	Start       time.Time  `json:"start"`
	Stop        *time.Time `json:"stop"`
	Running     bool       `json:"running"`
	ElapsedSec  int64      `json:"elapsed_sec"`
}

func newEntryView(e domain.TimeEntry, now time.Time) entryView {
	return entryView{
		ID:          e.ID,
		ProjectID:   e.ProjectID,
		Description: e.DescriptionOr(""),
		Start:       e.Start,
		Stop:        e.Stop,
		Running:     e.Running(),
		ElapsedSec:  int64(e.Elapsed(now) / time.Second),
	}
}

// errorStatus maps domain and transport errors onto HTTP status codes.
func errorStatus(err error) int {
	var te *tg.TransportError
	var de *tg.DecodeError
	switch {
	case errors.Is(err, usecase.ErrSyncRunning):
		return http.StatusConflict
	case errors.Is(err, tg.ErrNoRunningEntry):
		return http.StatusNotFound
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.As(err, &te), errors.As(err, &de):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, err error, extra map[string]any) {
	body := map[string]any{"status": "error", "error": err.Error()}
	for k, v := range extra {
		body[k] = v
	}
	writeJSON(w, status, body)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

var knownRoutes = map[string]bool{
	"/healthz": true,
	"/current": true,
	"/stop":    true,
	"/sync":    true,
	"/metrics": true,
}

// loggingMiddleware logs and records every request.
func loggingMiddleware(log *slog.Logger, metrics *Metrics, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		dur := time.Since(start)

		route := r.URL.Path
		if !knownRoutes[route] {
			route = "other"
		}
		metrics.recordRequest(r.Method, route, rec.status, dur)
		log.Info("http request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", rec.status),
			slog.String("remote", r.RemoteAddr),
			slog.Duration("dur", dur),
		)
	})
}

// ParseStart parses a start boundary that may be RFC3339 or YYYY-MM-DD.
// If empty, defaultVal is returned.
func ParseStart(val string, defaultVal time.Time) (time.Time, error) {
	if val == "" {
		return defaultVal, nil
	}
	if t, err := time.Parse(time.RFC3339, val); err == nil {
		return t, nil
	}
	// Try date-only in UTC at 00:00
	if d, err := time.Parse("2006-01-02", val); err == nil {
		return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	return time.Time{}, fmt.Errorf("invalid time %q, expected RFC3339 or YYYY-MM-DD", val)
}

// ParseEnd parses an end boundary that may be RFC3339 or YYYY-MM-DD.
// Date-only form is treated as inclusive by converting to next-day 00:00 UTC.
// If empty, defaultVal is returned.
func ParseEnd(val string, defaultVal time.Time) (time.Time, error) {
	if val == "" {
		return defaultVal, nil
	}
	if t, err := time.Parse(time.RFC3339, val); err == nil {
		return t, nil
	}
	if d, err := time.Parse("2006-01-02", val); err == nil {
		next := d.Add(24 * time.Hour)
		return time.Date(next.Year(), next.Month(), next.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	return time.Time{}, fmt.Errorf("invalid time %q, expected RFC3339 or YYYY-MM-DD", val)
}
