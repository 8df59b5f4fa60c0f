// Package sink implements the durable append-only logs the sampling pipeline
// writes every record to. Two implementations share one contract: a
// line-oriented CSV log (pure append, authoritative) and an xlsx workbook
// (full save per append, best effort). A header is written exactly once per
// table, before any row; rows are appended in arrival order and never
// rewritten.
package sink

import (
	"fmt"
	"strconv"
	"time"
)

// Table names a logical append-only table.
type Table string

const (
	TableTelemetry   Table = "telemetry_log"
	TableEnvironment Table = "environment_log"
)

// Columns is the fixed column order shared by both tables.
var Columns = []string{"timestamp", "source", "parameter", "value", "latitude", "longitude", "meta"}

// Row is one record in a table. Value is always numeric; land samples carry
// the -999.0 sentinel rather than an empty cell.
type Row struct {
	Timestamp time.Time
	Source    string
	Parameter string
	Value     float64
	Latitude  float64
	Longitude float64
	Meta      string
}

// Strings renders the row in the fixed column order.
func (r Row) Strings() []string {
	return []string{
		r.Timestamp.UTC().Format(time.RFC3339),
		r.Source,
		r.Parameter,
		strconv.FormatFloat(r.Value, 'f', -1, 64),
		strconv.FormatFloat(r.Latitude, 'f', -1, 64),
		strconv.FormatFloat(r.Longitude, 'f', -1, 64),
		r.Meta,
	}
}

// Sink is a durable append-only persistence target.
type Sink interface {
	Append(table Table, row Row) error
	Name() string
}

// ErrorKind classifies append failures.
type ErrorKind string

const (
	ErrWrite  ErrorKind = "write"
	ErrLocked ErrorKind = "locked"
)

// SinkError wraps a failed append with the sink that produced it.
type SinkError struct {
	Sink string
	Kind ErrorKind
	Err  error
}

func (e *SinkError) Error() string {
	return fmt.Sprintf("sink %s: %s: %v", e.Sink, e.Kind, e.Err)
}

func (e *SinkError) Unwrap() error {
	return e.Err
}
