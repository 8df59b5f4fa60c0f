package env

import (
	"testing"
	"time"
)

func sampleN(n int) Sample {
	return Sample{
		Timestamp: time.Unix(int64(1700000000+n), 0).UTC(),
		Source:    SourcePOWER,
		Parameter: ParamTemperature,
		Value:     float64(n),
	}
}

func TestRingEmpty(t *testing.T) {
	r := NewRing(5)
	if r.Len() != 0 {
		t.Errorf("Len() = %d on empty ring, want 0", r.Len())
	}
	if snap := r.Snapshot(0); len(snap) != 0 {
		t.Errorf("Snapshot() = %d samples on empty ring, want 0", len(snap))
	}
}

func TestRingEvictsOldest(t *testing.T) {
	const capacity = 5
	r := NewRing(capacity)
	for i := 0; i < capacity+3; i++ {
		r.PushFront(sampleN(i))
	}

	if r.Len() != capacity {
		t.Fatalf("Len() = %d after overflow, want %d", r.Len(), capacity)
	}

	snap := r.Snapshot(0)
	if len(snap) != capacity {
		t.Fatalf("Snapshot() = %d samples, want %d", len(snap), capacity)
	}
	// Newest first: 7, 6, 5, 4, 3. Samples 0..2 were evicted.
	for i, smp := range snap {
		want := float64(capacity + 2 - i)
		if smp.Value != want {
			t.Errorf("snap[%d].Value = %v, want %v", i, smp.Value, want)
		}
	}
}

func TestRingSnapshotLimit(t *testing.T) {
	r := NewRing(10)
	for i := 0; i < 6; i++ {
		r.PushFront(sampleN(i))
	}

	snap := r.Snapshot(3)
	if len(snap) != 3 {
		t.Fatalf("Snapshot(3) = %d samples, want 3", len(snap))
	}
	if snap[0].Value != 5 || snap[2].Value != 3 {
		t.Errorf("Snapshot(3) = [%v %v %v], want newest first [5 4 3]",
			snap[0].Value, snap[1].Value, snap[2].Value)
	}

	if snap := r.Snapshot(100); len(snap) != 6 {
		t.Errorf("Snapshot(100) = %d samples, want all 6", len(snap))
	}
}

func TestRingSnapshotIsCopy(t *testing.T) {
	r := NewRing(4)
	r.PushFront(sampleN(1))

	snap := r.Snapshot(0)
	snap[0].Value = 99

	if got := r.Snapshot(0); got[0].Value != 1 {
		t.Error("mutating a snapshot affected the ring")
	}
}

func TestRingMinimumCapacity(t *testing.T) {
	r := NewRing(0)
	r.PushFront(sampleN(1))
	r.PushFront(sampleN(2))
	if r.Len() != 1 {
		t.Errorf("Len() = %d for degenerate capacity, want 1", r.Len())
	}
	if snap := r.Snapshot(0); snap[0].Value != 2 {
		t.Errorf("degenerate ring kept %v, want the newest sample 2", snap[0].Value)
	}
}
