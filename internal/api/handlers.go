package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/jaswanth271103/ISS-Live-Tracker-3D-2D-Ground-Track-IST-Altitude-Speed/internal/env"
	"github.com/jaswanth271103/ISS-Live-Tracker-3D-2D-Ground-Track-IST-Altitude-Speed/internal/sink"
	"github.com/jaswanth271103/ISS-Live-Tracker-3D-2D-Ground-Track-IST-Altitude-Speed/internal/telemetry"
)

// maxEnvSamples caps how many ring samples one /env response returns.
const maxEnvSamples = 500

// Test location for injected samples (New York City).
const (
	injectLat = 40.7128
	injectLon = -74.0060
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// latestHandler serves the current position, or 503 before the first
// successful fetch.
func latestHandler(store *telemetry.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pos, ok := store.Latest()
		if !ok {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "no data yet"})
			return
		}
		writeJSON(w, http.StatusOK, pos)
	}
}

// historyHandler serves the bounded poll history, oldest first (most recent
// last).
func historyHandler(store *telemetry.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		records := store.History()
		writeJSON(w, http.StatusOK, map[string]any{
			"status":  "ok",
			"count":   len(records),
			"records": records,
		})
	}
}

// clampInt parses q as an integer and clamps it into [lo, hi], falling back
// to def when absent or unparseable.
func clampInt(q string, def, lo, hi int) int {
	n := def
	if q != "" {
		if v, err := strconv.Atoi(q); err == nil {
			n = v
		}
	}
	if n < lo {
		n = lo
	}
	if n > hi {
		n = hi
	}
	return n
}

// futureHandler serves the future ground track: n minutes ahead (default
// 45, clamped 1..180), one point every step seconds (default 60, clamped
// 10..180).
func futureHandler(logger *slog.Logger, fetcher *telemetry.Fetcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		minutes := clampInt(r.URL.Query().Get("n"), 45, 1, 180)
		step := clampInt(r.URL.Query().Get("step"), 60, 10, 180)

		track, err := fetcher.FetchFuture(r.Context(), minutes, step)
		if err != nil {
			logger.Warn("future track fetch failed", "error", err)
			writeJSON(w, http.StatusBadGateway, map[string]string{
				"error":  "future_failed",
				"detail": err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, track)
	}
}

// envHandler serves the most recent environment samples, newest first.
func envHandler(ring *env.Ring) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := clampInt(r.URL.Query().Get("limit"), maxEnvSamples, 1, maxEnvSamples)
		samples := ring.Snapshot(limit)
		writeJSON(w, http.StatusOK, map[string]any{
			"status":  "ok",
			"count":   len(samples),
			"samples": samples,
		})
	}
}

// injectHandler synthesizes one ad-hoc sample at the test location, pushes
// it through the pipeline, and returns it.
func injectHandler(sampler *env.Sampler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		smp := sampler.Inject(injectLat, injectLon, time.Now())
		writeJSON(w, http.StatusOK, map[string]any{
			"status": "ok",
			"sample": smp,
		})
	}
}

// downloadHandler serves the durable log files as attachments. Default is
// the environment CSV; ?table=telemetry selects the telemetry CSV and
// ?format=xlsx the workbook (when enabled).
func downloadHandler(csv *sink.CSVSink, workbook *sink.WorkbookSink) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var path, name string
		switch {
		case r.URL.Query().Get("format") == "xlsx":
			if workbook == nil {
				writeJSON(w, http.StatusNotFound, map[string]string{"error": "workbook sink disabled"})
				return
			}
			path = workbook.Path()
			name = "iss_tracker.xlsx"
		case r.URL.Query().Get("table") == "telemetry":
			path = csv.Path(sink.TableTelemetry)
			name = string(sink.TableTelemetry) + ".csv"
		default:
			path = csv.Path(sink.TableEnvironment)
			name = string(sink.TableEnvironment) + ".csv"
		}

		if _, err := os.Stat(path); err != nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "no data yet"})
			return
		}

		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
		http.ServeFile(w, r, path)
	}
}

// healthHandler reports liveliness plus the configured poll cadence.
func healthHandler(pollInterval time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status":                "ok",
			"poll_interval_seconds": pollInterval.Seconds(),
		})
	}
}
