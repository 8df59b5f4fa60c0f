package sink

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// CSVSink appends rows to one CSV file per table under a data directory.
// Files are opened O_APPEND per call; the header is written only when the
// file is absent or empty, so restarts never duplicate it. This is the
// authoritative sink.
type CSVSink struct {
	mu  sync.Mutex
	dir string
}

// NewCSVSink creates the data directory if needed and returns the sink.
func NewCSVSink(dir string) (*CSVSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}
	return &CSVSink{dir: dir}, nil
}

// Name identifies this sink in logs and metrics.
func (s *CSVSink) Name() string {
	return "csv"
}

// Path returns the file backing the given table.
func (s *CSVSink) Path(table Table) string {
	return filepath.Join(s.dir, string(table)+".csv")
}

// Append writes one row, emitting the header first iff the file is new.
func (s *CSVSink) Append(table Table, row Row) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.Path(table)
	needHeader := false
	if fi, err := os.Stat(path); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return s.wrap(err)
		}
		needHeader = true
	} else if fi.Size() == 0 {
		needHeader = true
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return s.wrap(err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if needHeader {
		if err := w.Write(Columns); err != nil {
			return s.wrap(err)
		}
	}
	if err := w.Write(row.Strings()); err != nil {
		return s.wrap(err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return s.wrap(err)
	}
	return nil
}

func (s *CSVSink) wrap(err error) error {
	kind := ErrWrite
	if errors.Is(err, fs.ErrPermission) {
		kind = ErrLocked
	}
	return &SinkError{Sink: s.Name(), Kind: kind, Err: err}
}
