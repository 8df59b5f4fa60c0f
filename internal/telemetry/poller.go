package telemetry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jaswanth271103/ISS-Live-Tracker-3D-2D-Ground-Track-IST-Altitude-Speed/internal/metrics"
	"github.com/jaswanth271103/ISS-Live-Tracker-3D-2D-Ground-Track-IST-Altitude-Speed/internal/sink"
)

// Poller is the telemetry producer: each tick it fetches the current
// position, replaces the shared state, and appends one durable row. A failed
// fetch leaves a heartbeat record so the history keeps its cadence.
type Poller struct {
	fetcher *Fetcher
	store   *Store
	sink    sink.Sink
	logger  *slog.Logger
}

// NewPoller wires the telemetry producer.
func NewPoller(fetcher *Fetcher, store *Store, s sink.Sink, logger *slog.Logger) *Poller {
	return &Poller{
		fetcher: fetcher,
		store:   store,
		sink:    s,
		logger:  logger,
	}
}

// Tick runs one fetch cycle. The state update happens before the sink
// append; an append failure is logged but never undoes or blocks the update.
func (p *Poller) Tick(ctx context.Context) error {
	metrics.IncFetch()

	pos, err := p.fetcher.Fetch(ctx)
	if err != nil {
		var fe *FetchError
		if errors.As(err, &fe) {
			metrics.IncFetchErrors(string(fe.Kind))
		}
		p.store.RecordHeartbeat(time.Now().UTC())
		return err
	}

	p.store.SetLatest(*pos)

	row := sink.Row{
		Timestamp: pos.Timestamp,
		Source:    pos.Source,
		Parameter: "velocity_kmh",
		Value:     pos.VelocityKmh,
		Latitude:  pos.Latitude,
		Longitude: pos.Longitude,
		Meta:      fmt.Sprintf("alt_km=%.2f", pos.AltitudeKm),
	}
	if err := p.sink.Append(sink.TableTelemetry, row); err != nil {
		p.logger.Warn("telemetry sink append failed", "error", err)
	}

	p.logger.Debug("position updated",
		"lat", pos.Latitude,
		"lon", pos.Longitude,
		"altitude_km", pos.AltitudeKm,
		"velocity_kmh", pos.VelocityKmh,
	)
	return nil
}
