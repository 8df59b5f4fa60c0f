package sink

import (
	"errors"
	"io"
	"log/slog"
	"testing"
)

type fakeSink struct {
	name  string
	err   error
	calls int
}

func (f *fakeSink) Append(table Table, row Row) error {
	f.calls++
	return f.err
}

func (f *fakeSink) Name() string { return f.name }

func TestMultiSinkFansOut(t *testing.T) {
	a := &fakeSink{name: "a"}
	b := &fakeSink{name: "b"}
	m := NewMultiSink(slog.New(slog.NewJSONHandler(io.Discard, nil)), a, b)

	if err := m.Append(TableTelemetry, Row{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.calls != 1 || b.calls != 1 {
		t.Errorf("calls = (%d, %d), want (1, 1)", a.calls, b.calls)
	}
}

func TestMultiSinkIsolatesFailures(t *testing.T) {
	bad := &fakeSink{name: "bad", err: errors.New("disk full")}
	good := &fakeSink{name: "good"}
	m := NewMultiSink(slog.New(slog.NewJSONHandler(io.Discard, nil)), bad, good)

	for i := 0; i < 3; i++ {
		if err := m.Append(TableEnvironment, Row{}); err != nil {
			t.Fatalf("append %d: MultiSink must never return an error, got %v", i, err)
		}
	}
	if good.calls != 3 {
		t.Errorf("healthy sink saw %d appends, want 3", good.calls)
	}
	if bad.calls != 3 {
		t.Errorf("failing sink saw %d appends, want 3 (still attempted)", bad.calls)
	}
}
