// Package env synthesizes environmental readings correlated with the
// satellite's ground position and keeps a bounded in-memory history of them.
package env

import "time"

// Source tags a sample with the upstream dataset it emulates.
type Source string

const (
	SourcePOWER Source = "POWER"
	SourceOISST Source = "OISST"
	SourceFIRMS Source = "FIRMS"
)

// Parameter names, fixed per source.
const (
	ParamTemperature = "T2M"
	ParamSolar       = "ALLSKY_SFC_SW_DWN"
	ParamSST         = "sst"
	ParamFireCount   = "fire_count_24h"
)

// SentinelNoOcean marks the sea-surface-temperature slot for land
// positions, so consumers always receive a numeric value.
const SentinelNoOcean = -999.0

// Sample is one synthetic environmental measurement. Immutable once created;
// shared by the ring buffer and the append-only sinks.
type Sample struct {
	Timestamp time.Time `json:"ts"`
	Source    Source    `json:"source"`
	Parameter string    `json:"parameter"`
	Value     float64   `json:"value"`
	Latitude  float64   `json:"lat"`
	Longitude float64   `json:"lon"`
	Meta      string    `json:"meta,omitempty"`
}
