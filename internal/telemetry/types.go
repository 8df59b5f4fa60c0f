package telemetry

import (
	"encoding/json"
	"fmt"
	"time"
)

// DefaultSource tags records fetched from the wheretheiss.at API.
const DefaultSource = "wheretheiss.at"

// Position is the latest fetched location/velocity record for the satellite.
// Replaced atomically in the Store on every successful fetch; never mutated
// after construction.
type Position struct {
	Timestamp   time.Time       `json:"timestamp_utc"`
	Epoch       int64           `json:"epoch"`
	Latitude    float64         `json:"latitude"`
	Longitude   float64         `json:"longitude"`
	AltitudeKm  float64         `json:"altitude_km"`
	VelocityKmh float64         `json:"velocity_kmh"`
	VelocityKms float64         `json:"velocity_km_s"`
	Source      string          `json:"source"`
	Raw         json.RawMessage `json:"-"` // original payload, kept for audit
}

// Record is one poll-tick entry in the position history. Value fields are
// pointers so a failed tick still leaves a heartbeat row with nulls, matching
// what /history consumers expect.
type Record struct {
	Timestamp   time.Time `json:"timestamp_utc"`
	Latitude    *float64  `json:"latitude"`
	Longitude   *float64  `json:"longitude"`
	AltitudeKm  *float64  `json:"altitude_km"`
	VelocityKmh *float64  `json:"velocity_kmh"`
	VelocityKms *float64  `json:"velocity_km_s"`
	Source      string    `json:"source"`
}

// FetchErrorKind classifies fetch failures for logging and metrics.
type FetchErrorKind string

const (
	FetchNetwork FetchErrorKind = "network"
	FetchStatus  FetchErrorKind = "http_status"
	FetchParse   FetchErrorKind = "parse"
)

// FetchError wraps a failed fetch attempt with its failure class.
type FetchError struct {
	Kind FetchErrorKind
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
