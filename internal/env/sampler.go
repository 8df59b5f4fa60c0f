package env

import (
	"context"
	"log/slog"
	"time"

	"github.com/jaswanth271103/ISS-Live-Tracker-3D-2D-Ground-Track-IST-Altitude-Speed/internal/metrics"
	"github.com/jaswanth271103/ISS-Live-Tracker-3D-2D-Ground-Track-IST-Altitude-Speed/internal/sink"
	"github.com/jaswanth271103/ISS-Live-Tracker-3D-2D-Ground-Track-IST-Altitude-Speed/internal/telemetry"
)

// PositionSource supplies the latest ground position for sample generation.
type PositionSource interface {
	Latest() (telemetry.Position, bool)
}

// Sampler is the environment producer: each tick it reads the current
// position (falling back to 0,0 before the first fetch), generates one batch,
// and hands every sample to the ring buffer and the sinks.
type Sampler struct {
	gen       *Generator
	positions PositionSource
	ring      *Ring
	sink      sink.Sink
	logger    *slog.Logger
}

// NewSampler wires the environment producer.
func NewSampler(gen *Generator, positions PositionSource, ring *Ring, s sink.Sink, logger *slog.Logger) *Sampler {
	return &Sampler{
		gen:       gen,
		positions: positions,
		ring:      ring,
		sink:      s,
		logger:    logger,
	}
}

// Tick runs one generation cycle. Sink failures are handled inside the sink
// layer; generation itself cannot fail, so the error return exists only for
// the loop contract.
func (s *Sampler) Tick(ctx context.Context) error {
	now := time.Now().UTC()

	lat, lon := 0.0, 0.0
	if pos, ok := s.positions.Latest(); ok {
		lat, lon = pos.Latitude, pos.Longitude
	}

	batch := s.gen.Generate(lat, lon, now)
	for _, smp := range batch {
		s.ring.PushFront(smp)
		if err := s.sink.Append(sink.TableEnvironment, RowFromSample(smp)); err != nil {
			s.logger.Warn("environment sink append failed", "parameter", smp.Parameter, "error", err)
		}
	}

	metrics.AddSamplesGenerated(len(batch))
	metrics.SetRingSize(s.ring.Len())

	s.logger.Debug("environment batch generated",
		"lat", lat,
		"lon", lon,
		"samples", len(batch),
	)
	return nil
}

// Inject synthesizes one ad-hoc temperature sample at the given location,
// pushes it to the ring and the sinks, and returns it. Used by the debug
// endpoint; rows are tagged so they are distinguishable in the logs.
func (s *Sampler) Inject(lat, lon float64, now time.Time) Sample {
	smp := s.gen.Generate(lat, lon, now.UTC())[0]
	smp.Meta = "test"

	s.ring.PushFront(smp)
	if err := s.sink.Append(sink.TableEnvironment, RowFromSample(smp)); err != nil {
		s.logger.Warn("inject sink append failed", "parameter", smp.Parameter, "error", err)
	}

	metrics.AddSamplesGenerated(1)
	metrics.SetRingSize(s.ring.Len())
	return smp
}

// RowFromSample converts a sample to the shared sink row shape.
func RowFromSample(s Sample) sink.Row {
	return sink.Row{
		Timestamp: s.Timestamp,
		Source:    string(s.Source),
		Parameter: s.Parameter,
		Value:     s.Value,
		Latitude:  s.Latitude,
		Longitude: s.Longitude,
		Meta:      s.Meta,
	}
}
