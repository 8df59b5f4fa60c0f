package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "isstracker_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"path", "method", "code"},
	)

	httpDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "isstracker_http_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method"},
	)

	fetchTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "isstracker_fetch_total",
			Help: "Total telemetry fetch attempts.",
		},
	)

	fetchErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "isstracker_fetch_errors_total",
			Help: "Telemetry fetch failures by kind.",
		},
		[]string{"kind"},
	)

	positionAgeSeconds = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "isstracker_position_age_seconds",
			Help: "Age of the latest fetched position in seconds.",
		},
	)

	samplesGeneratedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "isstracker_env_samples_generated_total",
			Help: "Total synthetic environment samples generated.",
		},
	)

	ringSize = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "isstracker_env_ring_size",
			Help: "Current number of samples held in the ring buffer.",
		},
	)

	sinkAppendErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "isstracker_sink_append_errors_total",
			Help: "Append failures by sink.",
		},
		[]string{"sink"},
	)

	tickTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "isstracker_loop_ticks_total",
			Help: "Completed poll loop ticks by loop.",
		},
		[]string{"loop"},
	)

	tickErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "isstracker_loop_tick_errors_total",
			Help: "Failed poll loop ticks by loop.",
		},
		[]string{"loop"},
	)

	streamConnectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "isstracker_stream_connections_total",
			Help: "SSE stream connect/disconnect events.",
		},
		[]string{"event"},
	)

	streamsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "isstracker_streams_active",
			Help: "Currently connected SSE streams.",
		},
	)

	streamErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "isstracker_stream_errors_total",
			Help: "SSE stream errors by reason.",
		},
		[]string{"reason"},
	)
)

func init() {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpDurationSeconds,
		fetchTotal,
		fetchErrorsTotal,
		positionAgeSeconds,
		samplesGeneratedTotal,
		ringSize,
		sinkAppendErrorsTotal,
		tickTotal,
		tickErrorsTotal,
		streamConnectionsTotal,
		streamsActive,
		streamErrorsTotal,
	)
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// IncFetch increments the fetch attempt counter.
func IncFetch() {
	fetchTotal.Inc()
}

// IncFetchErrors increments the fetch error counter for the given kind.
func IncFetchErrors(kind string) {
	fetchErrorsTotal.WithLabelValues(kind).Inc()
}

// SetPositionAge publishes the age of the latest position.
func SetPositionAge(seconds float64) {
	positionAgeSeconds.Set(seconds)
}

// AddSamplesGenerated adds to the generated sample counter.
func AddSamplesGenerated(n int) {
	samplesGeneratedTotal.Add(float64(n))
}

// SetRingSize publishes the current ring buffer occupancy.
func SetRingSize(n int) {
	ringSize.Set(float64(n))
}

// IncSinkAppendErrors increments the append error counter for the given sink.
func IncSinkAppendErrors(sink string) {
	sinkAppendErrorsTotal.WithLabelValues(sink).Inc()
}

// IncTick increments the completed tick counter for the given loop.
func IncTick(loop string) {
	tickTotal.WithLabelValues(loop).Inc()
}

// IncTickErrors increments the failed tick counter for the given loop.
func IncTickErrors(loop string) {
	tickErrorsTotal.WithLabelValues(loop).Inc()
}

// IncStreamConnections records a stream connect or disconnect event.
func IncStreamConnections(event string) {
	streamConnectionsTotal.WithLabelValues(event).Inc()
}

// IncStreamsActive increments the active stream gauge.
func IncStreamsActive() {
	streamsActive.Inc()
}

// DecStreamsActive decrements the active stream gauge.
func DecStreamsActive() {
	streamsActive.Dec()
}

// IncStreamErrors increments the stream error counter for the given reason.
func IncStreamErrors(reason string) {
	streamErrorsTotal.WithLabelValues(reason).Inc()
}

// knownRoutes are the registered paths kept as-is in metric labels.
var knownRoutes = map[string]bool{
	"/":                true,
	"/iss":             true,
	"/latest":          true,
	"/history":         true,
	"/future":          true,
	"/env":             true,
	"/env/inject-test": true,
	"/download":        true,
	"/health":          true,
	"/healthz":         true,
	"/readyz":          true,
	"/metrics":         true,
	"/stream":          true,
}

// normalizeRoute collapses unregistered paths (bots, scanners) into one
// "other" label so they cannot blow up metric cardinality.
func normalizeRoute(path string) string {
	if knownRoutes[path] {
		return path
	}
	return "other"
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Middleware records request count and duration for each request.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		code := strconv.Itoa(rw.statusCode)
		route := normalizeRoute(r.URL.Path)

		httpRequestsTotal.WithLabelValues(route, r.Method, code).Inc()
		httpDurationSeconds.WithLabelValues(route, r.Method).Observe(duration)
	})
}
