// Package export writes fitted predictions to CSV files.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"

	"github.com/verte-zerg/humtemp/internal/regression"
	"github.com/verte-zerg/humtemp/internal/report"
)

// Header is the column row of an export.
var Header = []string{
	"date",
	"humidity_pct",
	"actual_c",
	"linear_pred_c",
	"quadratic_pred_c",
	"linear_error",
	"quadratic_error",
	"linear_status",
	"quadratic_status",
}

const metadataMarker = "# METADATA"

// DefaultFileName names an export created at now.
func DefaultFileName(now time.Time) string {
	return fmt.Sprintf("temperature_predictions_%s.csv", now.Format("2006-01-02"))
}

// Write writes one row per sample followed by a metadata block.
func Write(w io.Writer, r report.Report, now time.Time) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for i, s := range r.Samples {
		linPred := r.LinearPred[i]
		quadPred := r.QuadraticPred[i]
		linErr := s.Temperature - linPred
		quadErr := s.Temperature - quadPred
		row := []string{
			s.Label,
			formatRaw(s.Humidity),
			formatRaw(s.Temperature),
			formatFixed(linPred),
			formatFixed(quadPred),
			formatFixed(linErr),
			formatFixed(quadErr),
			string(report.Classify(linErr)),
			string(report.Classify(quadErr)),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to write rows: %w", err)
	}

	if _, err := fmt.Fprintf(w, "\n%s\n", metadataMarker); err != nil {
		return fmt.Errorf("failed to write metadata: %w", err)
	}
	meta := [][]string{
		{"# Linear model", report.FormatEquation(r, regression.KindLinear)},
		{"# Quadratic model", report.FormatEquation(r, regression.KindQuadratic)},
		{"# R² linear", strconv.FormatFloat(r.Linear.Metrics.R2, 'f', 4, 64)},
		{"# R² quadratic", strconv.FormatFloat(r.Quadratic.Metrics.R2, 'f', 4, 64)},
		{"# MAE linear", strconv.FormatFloat(r.Linear.Metrics.MAE, 'f', 3, 64)},
		{"# MAE quadratic", strconv.FormatFloat(r.Quadratic.Metrics.MAE, 'f', 3, 64)},
		{"# Created at", now.Format(time.RFC3339)},
	}
	if err := cw.WriteAll(meta); err != nil {
		return fmt.Errorf("failed to write metadata: %w", err)
	}
	return nil
}

// WriteFile writes the export to path through a temp file in the same
// directory, gzip-compressing it when compress is set.
func WriteFile(path string, r report.Report, now time.Time, compress bool) error {
	if path == "" {
		return fmt.Errorf("export path is required")
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create export dir: %w", err)
	}
	tmpFile, err := os.CreateTemp(dir, "humtemp-export-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp export: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if compress {
		zw := gzip.NewWriter(tmpFile)
		zw.Name = strings.TrimSuffix(filepath.Base(path), ".gz")
		zw.ModTime = now
		if err := Write(zw, r, now); err != nil {
			return err
		}
		if err := zw.Close(); err != nil {
			return fmt.Errorf("failed to finish gzip stream: %w", err)
		}
	} else if err := Write(tmpFile, r, now); err != nil {
		return err
	}

	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp export: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to move export into place: %w", err)
	}
	return nil
}

func formatRaw(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatFixed(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
