package telemetry

import (
	"testing"
	"time"
)

func TestStoreLatestBeforeFirstFetch(t *testing.T) {
	store := NewStore(100)
	if _, ok := store.Latest(); ok {
		t.Error("Latest() reported data before any fetch")
	}
	if age := store.AgeSeconds(); age != -1 {
		t.Errorf("AgeSeconds() = %v before any fetch, want -1", age)
	}
	if got := store.History(); len(got) != 0 {
		t.Errorf("History() has %d records before any fetch, want 0", len(got))
	}
}

func TestStoreSetLatest(t *testing.T) {
	store := NewStore(100)
	pos := Position{
		Timestamp:   time.Now().UTC(),
		Latitude:    51.5,
		Longitude:   -0.12,
		AltitudeKm:  420,
		VelocityKmh: 27580.5,
		Source:      DefaultSource,
	}
	store.SetLatest(pos)

	got, ok := store.Latest()
	if !ok {
		t.Fatal("Latest() reported no data after SetLatest")
	}
	if got.Latitude != 51.5 || got.VelocityKmh != 27580.5 {
		t.Errorf("Latest() = %+v, want stored position", got)
	}

	hist := store.History()
	if len(hist) != 1 {
		t.Fatalf("History() has %d records, want 1", len(hist))
	}
	if hist[0].Latitude == nil || *hist[0].Latitude != 51.5 {
		t.Errorf("history record latitude = %v, want 51.5", hist[0].Latitude)
	}
	if age := store.AgeSeconds(); age < 0 || age > 5 {
		t.Errorf("AgeSeconds() = %v, want a small non-negative value", age)
	}
}

func TestStoreHeartbeatKeepsNullFields(t *testing.T) {
	store := NewStore(100)
	store.RecordHeartbeat(time.Now())

	hist := store.History()
	if len(hist) != 1 {
		t.Fatalf("History() has %d records, want 1", len(hist))
	}
	rec := hist[0]
	if rec.Latitude != nil || rec.Longitude != nil || rec.VelocityKmh != nil {
		t.Errorf("heartbeat record has non-null value fields: %+v", rec)
	}
	if rec.Source != DefaultSource {
		t.Errorf("heartbeat source = %q, want %q", rec.Source, DefaultSource)
	}
	if _, ok := store.Latest(); ok {
		t.Error("heartbeat must not set a latest position")
	}
}

func TestStoreHistoryTrim(t *testing.T) {
	const max = 5
	store := NewStore(max)
	base := time.Unix(1700000000, 0).UTC()
	for i := 0; i < max+3; i++ {
		store.SetLatest(Position{Timestamp: base.Add(time.Duration(i) * time.Second)})
	}

	hist := store.History()
	if len(hist) != max {
		t.Fatalf("History() has %d records after overflow, want %d", len(hist), max)
	}
	// Oldest three were evicted; remaining records stay in insertion order.
	if !hist[0].Timestamp.Equal(base.Add(3 * time.Second)) {
		t.Errorf("oldest kept record at %v, want %v", hist[0].Timestamp, base.Add(3*time.Second))
	}
	if !hist[max-1].Timestamp.Equal(base.Add(7 * time.Second)) {
		t.Errorf("newest record at %v, want %v", hist[max-1].Timestamp, base.Add(7*time.Second))
	}
}

func TestStoreHistoryReturnsCopy(t *testing.T) {
	store := NewStore(10)
	store.SetLatest(Position{Latitude: 1})

	hist := store.History()
	lat := 99.0
	hist[0].Latitude = &lat

	if got := store.History(); *got[0].Latitude != 1 {
		t.Error("mutating the returned history slice affected the store")
	}
}
