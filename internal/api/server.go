package api

import (
	"io/fs"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/jaswanth271103/ISS-Live-Tracker-3D-2D-Ground-Track-IST-Altitude-Speed/internal/auth"
	"github.com/jaswanth271103/ISS-Live-Tracker-3D-2D-Ground-Track-IST-Altitude-Speed/internal/env"
	"github.com/jaswanth271103/ISS-Live-Tracker-3D-2D-Ground-Track-IST-Altitude-Speed/internal/health"
	"github.com/jaswanth271103/ISS-Live-Tracker-3D-2D-Ground-Track-IST-Altitude-Speed/internal/httputil"
	"github.com/jaswanth271103/ISS-Live-Tracker-3D-2D-Ground-Track-IST-Altitude-Speed/internal/metrics"
	"github.com/jaswanth271103/ISS-Live-Tracker-3D-2D-Ground-Track-IST-Altitude-Speed/internal/sink"
	"github.com/jaswanth271103/ISS-Live-Tracker-3D-2D-Ground-Track-IST-Altitude-Speed/internal/stream"
	"github.com/jaswanth271103/ISS-Live-Tracker-3D-2D-Ground-Track-IST-Altitude-Speed/internal/telemetry"
)

// Server holds the HTTP server and its dependencies.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// Deps bundles what the read-mostly HTTP layer consumes: the query surface
// of the pipeline plus the sinks for downloads.
type Deps struct {
	Store        *telemetry.Store
	Fetcher      *telemetry.Fetcher
	Ring         *env.Ring
	Sampler      *env.Sampler
	CSV          *sink.CSVSink
	Workbook     *sink.WorkbookSink // nil when disabled
	Stream       *stream.Handler
	PollInterval time.Duration
	Web          fs.FS
}

// NewServer creates a configured HTTP server.
func NewServer(addr string, logger *slog.Logger, authCfg auth.Config, deps Deps) *Server {
	mux := http.NewServeMux()

	// Register routes.
	mux.Handle("GET /", http.FileServerFS(deps.Web))
	mux.HandleFunc("GET /iss", latestHandler(deps.Store))
	mux.HandleFunc("GET /latest", latestHandler(deps.Store))
	mux.HandleFunc("GET /history", historyHandler(deps.Store))
	mux.HandleFunc("GET /future", futureHandler(logger, deps.Fetcher))
	mux.HandleFunc("GET /env", envHandler(deps.Ring))
	mux.HandleFunc("POST /env/inject-test", injectHandler(deps.Sampler))
	mux.HandleFunc("GET /download", downloadHandler(deps.CSV, deps.Workbook))
	mux.HandleFunc("GET /health", healthHandler(deps.PollInterval))
	mux.HandleFunc("GET /healthz", health.Healthz)
	mux.HandleFunc("GET /readyz", health.Readyz(func() bool {
		_, ok := deps.Store.Latest()
		return ok
	}))
	mux.Handle("GET /metrics", metrics.Handler())
	if deps.Stream != nil {
		mux.HandleFunc("GET /stream", deps.Stream.HandlePositions)
	}

	// Build middleware chain: metrics -> logging -> auth -> mux.
	var handler http.Handler = mux
	handler = auth.Middleware(authCfg)(handler)
	handler = loggingMiddleware(logger)(handler)
	handler = metrics.Middleware(handler)

	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadTimeout:       10 * time.Second,
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		logger: logger,
	}
}

// HTTPServer returns the underlying *http.Server for external control (e.g. shutdown).
func (s *Server) HTTPServer() *http.Server {
	return s.httpServer
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// probePath returns true for health/readiness probe paths that should not log at INFO.
func probePath(path string) bool {
	return path == "/healthz" || path == "/readyz"
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.statusCode = code
	sr.ResponseWriter.WriteHeader(code)
}

func loggingMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sr := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(sr, r)

			duration := time.Since(start)
			level := slog.LevelInfo
			if probePath(r.URL.Path) {
				level = slog.LevelDebug
			}

			logger.Log(r.Context(), level, "request",
				"component", "api",
				"method", r.Method,
				"path", r.URL.Path,
				"status", strconv.Itoa(sr.statusCode),
				"duration_ms", duration.Milliseconds(),
				"remote_ip", httputil.ClientIP(r, false),
			)
		})
	}
}
