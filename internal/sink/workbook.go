package sink

import (
	"errors"
	"fmt"
	"io/fs"
	"sync"
	"time"

	"github.com/xuri/excelize/v2"
)

// WorkbookSink keeps both logical tables as sheets of a single xlsx
// workbook. The format cannot be appended in place, so every Append reloads
// the file, adds one row, and saves the whole document. That makes it the
// best-effort secondary: a failure here never loses data already captured by
// the CSV sink, and a workbook held open by a spreadsheet application
// surfaces as a locked-resource error rather than a crash.
type WorkbookSink struct {
	mu   sync.Mutex
	path string
}

// NewWorkbookSink returns a sink writing to the given xlsx path. The file is
// created lazily on the first append.
func NewWorkbookSink(path string) *WorkbookSink {
	return &WorkbookSink{path: path}
}

// Name identifies this sink in logs and metrics.
func (s *WorkbookSink) Name() string {
	return "workbook"
}

// Path returns the workbook file path.
func (s *WorkbookSink) Path() string {
	return s.path
}

// Append writes one row to the sheet named after the table, creating the
// workbook and the sheet (with its header row) as needed.
func (s *WorkbookSink) Append(table Table, row Row) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, created, err := s.open()
	if err != nil {
		return s.wrap(err)
	}
	defer f.Close()

	sheet := string(table)
	idx, err := f.GetSheetIndex(sheet)
	if err != nil {
		return s.wrap(err)
	}
	if idx < 0 {
		if _, err := f.NewSheet(sheet); err != nil {
			return s.wrap(err)
		}
		header := make([]any, len(Columns))
		for i, c := range Columns {
			header[i] = c
		}
		if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
			return s.wrap(err)
		}
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return s.wrap(err)
	}
	cell, err := excelize.JoinCellName("A", len(rows)+1)
	if err != nil {
		return s.wrap(err)
	}
	values := []any{
		row.Timestamp.UTC().Format(time.RFC3339),
		row.Source,
		row.Parameter,
		row.Value,
		row.Latitude,
		row.Longitude,
		row.Meta,
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return s.wrap(err)
	}

	if created {
		// Drop the default sheet so the workbook holds only logical tables.
		if di, _ := f.GetSheetIndex(defaultSheetName); di >= 0 {
			if err := f.DeleteSheet(defaultSheetName); err != nil {
				return s.wrap(err)
			}
		}
		return s.wrap(f.SaveAs(s.path))
	}
	return s.wrap(f.Save())
}

const defaultSheetName = "Sheet1"

// open loads the existing workbook or starts a fresh one when the file does
// not exist yet. The bool reports whether a new workbook was created.
func (s *WorkbookSink) open() (*excelize.File, bool, error) {
	f, err := excelize.OpenFile(s.path)
	if err == nil {
		return f, false, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return excelize.NewFile(), true, nil
	}
	return nil, false, fmt.Errorf("opening workbook: %w", err)
}

func (s *WorkbookSink) wrap(err error) error {
	if err == nil {
		return nil
	}
	kind := ErrWrite
	if errors.Is(err, fs.ErrPermission) {
		kind = ErrLocked
	}
	return &SinkError{Sink: s.Name(), Kind: kind, Err: err}
}
