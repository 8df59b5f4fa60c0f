// Package stream implements Server-Sent Events (SSE) streaming of the live
// satellite position. Clients connect via GET /stream and receive the latest
// position once per poll interval.
//
// SSE message format:
//
//	data: {"type":"position","timestamp_utc":"...","latitude":...,...}\n\n
//
// Ticks with no position yet are skipped. Keep-alive comments (:\n\n) are
// sent every KeepaliveInterval to prevent proxy timeouts.
package stream

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/jaswanth271103/ISS-Live-Tracker-3D-2D-Ground-Track-IST-Altitude-Speed/internal/httputil"
	"github.com/jaswanth271103/ISS-Live-Tracker-3D-2D-Ground-Track-IST-Altitude-Speed/internal/metrics"
	"github.com/jaswanth271103/ISS-Live-Tracker-3D-2D-Ground-Track-IST-Altitude-Speed/internal/telemetry"
)

// Config holds streaming configuration loaded from environment variables.
type Config struct {
	MaxConcurrentPerIP int           // Max concurrent streams per IP (default: 10).
	KeepaliveInterval  time.Duration // Keep-alive ping interval (default: 30s).
	Interval           time.Duration // Position push interval (the poll interval).
	TrustProxy         bool          // Trust X-Forwarded-For for per-IP limits.
}

// PositionSource supplies the latest position for streaming.
type PositionSource interface {
	Latest() (telemetry.Position, bool)
}

// Handler manages SSE streaming connections.
type Handler struct {
	positions PositionSource
	config    Config
	limiter   *limiter
	logger    *slog.Logger
}

// NewHandler creates a new streaming handler.
func NewHandler(positions PositionSource, config Config, logger *slog.Logger) *Handler {
	return &Handler{
		positions: positions,
		config:    config,
		limiter:   newLimiter(config.MaxConcurrentPerIP),
		logger:    logger,
	}
}

// positionMessage is the SSE payload wrapping a position.
type positionMessage struct {
	Type string `json:"type"`
	telemetry.Position
}

// HandlePositions serves the SSE position stream.
// GET /stream
func (h *Handler) HandlePositions(w http.ResponseWriter, r *http.Request) {
	ip := httputil.ClientIP(r, h.config.TrustProxy)
	if !h.limiter.acquire(ip) {
		metrics.IncStreamErrors("rate_limit")
		h.logger.Warn("stream rate limit exceeded",
			"remote_ip", ip,
			"current_count", h.limiter.count(ip),
		)
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]string{"error": "too many concurrent streams"})
		return
	}

	metrics.IncStreamConnections("connect")
	metrics.IncStreamsActive()

	startTime := time.Now()
	h.logger.Info("stream connected", "remote_ip", ip, "user_agent", r.Header.Get("User-Agent"))

	defer func() {
		h.limiter.release(ip)
		metrics.IncStreamConnections("disconnect")
		metrics.DecStreamsActive()
		h.logger.Info("stream disconnected",
			"remote_ip", ip,
			"duration_seconds", int(time.Since(startTime).Seconds()),
		)
	}()

	flusher, ok := w.(http.Flusher)
	if !ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": "streaming not supported"})
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering.
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	// Clear the server's default WriteTimeout for this long-lived connection.
	rc := http.NewResponseController(w)
	if err := rc.SetWriteDeadline(time.Time{}); err != nil {
		h.logger.Debug("could not clear write deadline", "error", err)
	}

	c := &client{
		w:       w,
		flusher: flusher,
		rc:      rc,
		ip:      ip,
		logger:  h.logger,
	}

	// Jittered retry interval (3-7s) to avoid reconnection storms after a
	// server restart.
	retryMs := 3000 + rand.IntN(4000)
	fmt.Fprintf(w, "retry: %d\n\n", retryMs)
	flusher.Flush()

	// Send the current position immediately so clients do not wait a full
	// interval for the first point.
	var lastEpoch int64
	if pos, ok := h.positions.Latest(); ok {
		if err := c.sendJSON(positionMessage{Type: "position", Position: pos}); err != nil {
			metrics.IncStreamErrors("send_error")
			h.logger.Warn("stream send error", "remote_ip", ip, "error", err)
			return
		}
		lastEpoch = pos.Epoch
	}

	ticker := time.NewTicker(h.config.Interval)
	defer ticker.Stop()

	keepalive := time.NewTicker(h.config.KeepaliveInterval)
	defer keepalive.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			pos, ok := h.positions.Latest()
			if !ok || pos.Epoch == lastEpoch {
				continue
			}
			if err := c.sendJSON(positionMessage{Type: "position", Position: pos}); err != nil {
				metrics.IncStreamErrors("send_error")
				h.logger.Warn("stream send error", "remote_ip", ip, "error", err)
				return
			}
			lastEpoch = pos.Epoch
			keepalive.Reset(h.config.KeepaliveInterval)

		case <-keepalive.C:
			if err := c.sendKeepalive(); err != nil {
				metrics.IncStreamErrors("send_error")
				h.logger.Warn("stream keepalive error", "remote_ip", ip, "error", err)
				return
			}
		}
	}
}
