package telemetry

import (
	"sync"
	"time"
)

// Store provides thread-safe access to the latest position and a bounded
// history of poll-tick records. The mutex is held only for value copies,
// never across I/O.
type Store struct {
	mu         sync.Mutex
	latest     *Position
	history    []Record
	historyMax int
}

// NewStore creates an empty Store keeping at most historyMax history records.
func NewStore(historyMax int) *Store {
	return &Store{historyMax: historyMax}
}

// Latest returns a copy of the current position. The second return value is
// false before the first successful fetch.
func (s *Store) Latest() (Position, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.latest == nil {
		return Position{}, false
	}
	return *s.latest, true
}

// SetLatest atomically replaces the current position and appends a full
// history record for the tick.
func (s *Store) SetLatest(p Position) {
	rec := Record{
		Timestamp:   p.Timestamp,
		Latitude:    &p.Latitude,
		Longitude:   &p.Longitude,
		AltitudeKm:  &p.AltitudeKm,
		VelocityKmh: &p.VelocityKmh,
		VelocityKms: &p.VelocityKms,
		Source:      p.Source,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest = &p
	s.appendLocked(rec)
}

// RecordHeartbeat appends a history record with null value fields for a
// failed tick, so the history keeps its fixed cadence.
func (s *Store) RecordHeartbeat(t time.Time) {
	rec := Record{
		Timestamp: t.UTC().Truncate(time.Second),
		Source:    DefaultSource,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.appendLocked(rec)
}

func (s *Store) appendLocked(rec Record) {
	s.history = append(s.history, rec)
	if n := len(s.history) - s.historyMax; n > 0 && s.historyMax > 0 {
		s.history = append(s.history[:0:0], s.history[n:]...)
	}
}

// History returns a copy of the history, oldest first.
func (s *Store) History() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Record, len(s.history))
	copy(out, s.history)
	return out
}

// AgeSeconds returns the age of the current position in seconds, or -1 if no
// position has been fetched yet.
func (s *Store) AgeSeconds() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.latest == nil {
		return -1
	}
	return time.Since(s.latest.Timestamp).Seconds()
}
