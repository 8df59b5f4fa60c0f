package sink

import (
	"log/slog"

	"github.com/jaswanth271103/ISS-Live-Tracker-3D-2D-Ground-Track-IST-Altitude-Speed/internal/metrics"
)

// MultiSink fans every append out to each underlying sink. Failures are
// logged and counted but never returned, so one sink going bad (typically
// the workbook) cannot block the others or the producer loops.
type MultiSink struct {
	sinks  []Sink
	logger *slog.Logger
}

// NewMultiSink wraps the given sinks behind one best-effort Append.
func NewMultiSink(logger *slog.Logger, sinks ...Sink) *MultiSink {
	return &MultiSink{sinks: sinks, logger: logger}
}

// Name identifies this sink in logs and metrics.
func (m *MultiSink) Name() string {
	return "multi"
}

// Append writes the row to every sink independently. Always returns nil.
func (m *MultiSink) Append(table Table, row Row) error {
	for _, s := range m.sinks {
		if err := s.Append(table, row); err != nil {
			metrics.IncSinkAppendErrors(s.Name())
			m.logger.Warn("sink append failed",
				"sink", s.Name(),
				"table", string(table),
				"error", err,
			)
		}
	}
	return nil
}
