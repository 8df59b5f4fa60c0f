package sink

import (
	"encoding/csv"
	"os"
	"strings"
	"testing"
	"time"
)

func testRow(n int) Row {
	return Row{
		Timestamp: time.Unix(int64(1700000000+n), 0).UTC(),
		Source:    "POWER",
		Parameter: "T2M",
		Value:     float64(n) + 0.5,
		Latitude:  10,
		Longitude: 20,
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("opening %s: %v", path, err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return records
}

func TestCSVSinkHeaderWrittenExactlyOnce(t *testing.T) {
	s, err := NewCSVSink(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	const appends = 5
	for i := 0; i < appends; i++ {
		if err := s.Append(TableTelemetry, testRow(i)); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	records := readCSV(t, s.Path(TableTelemetry))
	if len(records) != appends+1 {
		t.Fatalf("file has %d lines, want header + %d rows", len(records), appends)
	}
	if strings.Join(records[0], ",") != strings.Join(Columns, ",") {
		t.Errorf("header = %v, want %v", records[0], Columns)
	}
	for i := 1; i < len(records); i++ {
		if records[i][0] == Columns[0] {
			t.Errorf("line %d repeats the header", i)
		}
	}
}

func TestCSVSinkAppendOrderAndContent(t *testing.T) {
	s, err := NewCSVSink(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 3; i++ {
		if err := s.Append(TableEnvironment, testRow(i)); err != nil {
			t.Fatal(err)
		}
	}

	records := readCSV(t, s.Path(TableEnvironment))
	if len(records) != 4 {
		t.Fatalf("file has %d lines, want 4", len(records))
	}
	for i := 0; i < 3; i++ {
		row := records[i+1]
		if row[3] != testRow(i).Strings()[3] {
			t.Errorf("row %d value = %q, want %q", i, row[3], testRow(i).Strings()[3])
		}
		if row[1] != "POWER" || row[2] != "T2M" {
			t.Errorf("row %d = %v, want POWER/T2M", i, row)
		}
	}
}

// TestCSVSinkSurvivesReopen emulates a process restart: a second sink over the
// same directory must keep appending without a second header.
func TestCSVSinkSurvivesReopen(t *testing.T) {
	dir := t.TempDir()

	first, err := NewCSVSink(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := first.Append(TableTelemetry, testRow(0)); err != nil {
		t.Fatal(err)
	}

	second, err := NewCSVSink(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := second.Append(TableTelemetry, testRow(1)); err != nil {
		t.Fatal(err)
	}

	records := readCSV(t, second.Path(TableTelemetry))
	if len(records) != 3 {
		t.Fatalf("file has %d lines after reopen, want header + 2 rows", len(records))
	}
}

func TestCSVSinkTablesAreSeparateFiles(t *testing.T) {
	s, err := NewCSVSink(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Append(TableTelemetry, testRow(0)); err != nil {
		t.Fatal(err)
	}
	if err := s.Append(TableEnvironment, testRow(1)); err != nil {
		t.Fatal(err)
	}

	if s.Path(TableTelemetry) == s.Path(TableEnvironment) {
		t.Fatal("both tables share a file path")
	}
	if got := readCSV(t, s.Path(TableTelemetry)); len(got) != 2 {
		t.Errorf("telemetry file has %d lines, want 2", len(got))
	}
	if got := readCSV(t, s.Path(TableEnvironment)); len(got) != 2 {
		t.Errorf("environment file has %d lines, want 2", len(got))
	}
}
