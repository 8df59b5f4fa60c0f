package env

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/jaswanth271103/ISS-Live-Tracker-3D-2D-Ground-Track-IST-Altitude-Speed/internal/sink"
	"github.com/jaswanth271103/ISS-Live-Tracker-3D-2D-Ground-Track-IST-Altitude-Speed/internal/telemetry"
)

type fixedPosition struct {
	pos telemetry.Position
	ok  bool
}

func (f fixedPosition) Latest() (telemetry.Position, bool) { return f.pos, f.ok }

type captureSink struct {
	tables []sink.Table
	rows   []sink.Row
}

func (c *captureSink) Append(table sink.Table, row sink.Row) error {
	c.tables = append(c.tables, table)
	c.rows = append(c.rows, row)
	return nil
}

func (c *captureSink) Name() string { return "capture" }

func newTestSampler(src PositionSource, cs *captureSink) (*Sampler, *Ring) {
	ring := NewRing(16)
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	return NewSampler(NewGenerator(zeroNoise{}), src, ring, cs, logger), ring
}

func TestSamplerTickUsesCurrentPosition(t *testing.T) {
	cs := &captureSink{}
	sampler, ring := newTestSampler(fixedPosition{
		pos: telemetry.Position{Latitude: 12, Longitude: 34},
		ok:  true,
	}, cs)

	if err := sampler.Tick(context.Background()); err != nil {
		t.Fatalf("unexpected tick error: %v", err)
	}

	if ring.Len() != 4 {
		t.Errorf("ring holds %d samples after one tick, want 4", ring.Len())
	}
	if len(cs.rows) != 4 {
		t.Fatalf("sink received %d rows, want 4", len(cs.rows))
	}
	for i, table := range cs.tables {
		if table != sink.TableEnvironment {
			t.Errorf("row %d went to table %q, want %q", i, table, sink.TableEnvironment)
		}
	}
	if cs.rows[0].Latitude != 12 || cs.rows[0].Longitude != 34 {
		t.Errorf("row position = (%v, %v), want the current position (12, 34)",
			cs.rows[0].Latitude, cs.rows[0].Longitude)
	}
}

func TestSamplerTickFallsBackToOrigin(t *testing.T) {
	cs := &captureSink{}
	sampler, _ := newTestSampler(fixedPosition{ok: false}, cs)

	if err := sampler.Tick(context.Background()); err != nil {
		t.Fatalf("unexpected tick error: %v", err)
	}
	if cs.rows[0].Latitude != 0 || cs.rows[0].Longitude != 0 {
		t.Errorf("row position = (%v, %v), want the (0, 0) fallback",
			cs.rows[0].Latitude, cs.rows[0].Longitude)
	}
}

func TestSamplerInject(t *testing.T) {
	cs := &captureSink{}
	sampler, ring := newTestSampler(fixedPosition{ok: false}, cs)

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	smp := sampler.Inject(40.7128, -74.0060, now)

	if smp.Parameter != ParamTemperature {
		t.Errorf("injected parameter = %q, want %q", smp.Parameter, ParamTemperature)
	}
	if smp.Meta != "test" {
		t.Errorf("injected meta = %q, want \"test\"", smp.Meta)
	}
	if smp.Latitude != 40.7128 || smp.Longitude != -74.0060 {
		t.Errorf("injected position = (%v, %v), want the requested one", smp.Latitude, smp.Longitude)
	}

	if ring.Len() != 1 {
		t.Errorf("ring holds %d samples after inject, want 1", ring.Len())
	}
	if len(cs.rows) != 1 || cs.rows[0].Meta != "test" {
		t.Errorf("sink rows after inject = %+v, want one tagged row", cs.rows)
	}
}
