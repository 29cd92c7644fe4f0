package export

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"

	"github.com/verte-zerg/humtemp/internal/model"
	"github.com/verte-zerg/humtemp/internal/report"
)

var exportTime = time.Date(2024, 3, 9, 14, 30, 0, 0, time.UTC)

func buildReport(t *testing.T) report.Report {
	t.Helper()
	samples := []model.Sample{
		{Label: "2024-01-01", Humidity: 70, Temperature: 15.8},
		{Label: "2024-01-02", Humidity: 75, Temperature: 14.6},
		{Label: "2024-01-03", Humidity: 80, Temperature: 13.5},
		{Label: "2024-01-04", Humidity: 85, Temperature: 12.1},
		{Label: "2024-01-05", Humidity: 90.5, Temperature: 11.0},
	}
	r, err := report.Build(samples)
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	return r
}

func TestDefaultFileName(t *testing.T) {
	if got := DefaultFileName(exportTime); got != "temperature_predictions_2024-03-09.csv" {
		t.Fatalf("unexpected file name %q", got)
	}
}

func TestWriteRowsAndMetadata(t *testing.T) {
	r := buildReport(t)
	var buf bytes.Buffer
	if err := Write(&buf, r, exportTime); err != nil {
		t.Fatalf("write: %v", err)
	}
	parts := strings.SplitN(buf.String(), "\n\n", 2)
	if len(parts) != 2 {
		t.Fatalf("expected blank line before metadata, got:\n%s", buf.String())
	}

	rows, err := csv.NewReader(strings.NewReader(parts[0])).ReadAll()
	if err != nil {
		t.Fatalf("read rows: %v", err)
	}
	if len(rows) != 1+len(r.Samples) {
		t.Fatalf("expected %d rows, got %d", 1+len(r.Samples), len(rows))
	}
	if strings.Join(rows[0], ",") != strings.Join(Header, ",") {
		t.Fatalf("unexpected header %v", rows[0])
	}
	last := rows[len(rows)-1]
	if last[0] != "2024-01-05" || last[1] != "90.5" || last[2] != "11" {
		t.Fatalf("unexpected raw columns %v", last)
	}
	wantPred := formatFixed(r.LinearPred[4])
	if last[3] != wantPred {
		t.Fatalf("expected linear prediction %s, got %s", wantPred, last[3])
	}
	wantErr := formatFixed(11.0 - r.QuadraticPred[4])
	if last[6] != wantErr {
		t.Fatalf("expected quadratic error %s, got %s", wantErr, last[6])
	}
	if last[7] != string(report.Classify(11.0-r.LinearPred[4])) {
		t.Fatalf("unexpected linear status %s", last[7])
	}

	meta := parts[1]
	if !strings.HasPrefix(meta, "# METADATA\n") {
		t.Fatalf("expected metadata marker, got:\n%s", meta)
	}
	for _, want := range []string{
		"# Linear model," + report.FormatLinear(r.Linear),
		"# Quadratic model,",
		"# R² linear,",
		"# MAE quadratic,",
		"# Created at,2024-03-09T14:30:00Z",
	} {
		if !strings.Contains(meta, want) {
			t.Fatalf("expected %q in metadata:\n%s", want, meta)
		}
	}
}

func TestWriteFilePlain(t *testing.T) {
	r := buildReport(t)
	path := filepath.Join(t.TempDir(), "out", DefaultFileName(exportTime))
	if err := WriteFile(path, r, exportTime, false); err != nil {
		t.Fatalf("write file: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if !strings.HasPrefix(string(data), strings.Join(Header, ",")+"\n") {
		t.Fatalf("unexpected export start: %q", string(data[:40]))
	}
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected only the export in dir, got %d entries", len(entries))
	}
}

func TestWriteFileGzip(t *testing.T) {
	r := buildReport(t)
	path := filepath.Join(t.TempDir(), DefaultFileName(exportTime)+".gz")
	if err := WriteFile(path, r, exportTime, true); err != nil {
		t.Fatalf("write file: %v", err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open export: %v", err)
	}
	defer f.Close()
	zr, err := gzip.NewReader(f)
	if err != nil {
		t.Fatalf("gzip reader: %v", err)
	}
	if zr.Name != DefaultFileName(exportTime) {
		t.Fatalf("unexpected gzip name %q", zr.Name)
	}
	var plain bytes.Buffer
	if _, err := plain.ReadFrom(zr); err != nil {
		t.Fatalf("decompress: %v", err)
	}
	var want bytes.Buffer
	if err := Write(&want, r, exportTime); err != nil {
		t.Fatalf("write: %v", err)
	}
	if plain.String() != want.String() {
		t.Fatalf("decompressed export differs from plain export")
	}
}

func TestWriteFileRequiresPath(t *testing.T) {
	if err := WriteFile("", report.Report{}, exportTime, false); err == nil {
		t.Fatalf("expected error for empty path")
	}
}

