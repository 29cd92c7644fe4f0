// Package dataset loads humidity/temperature samples from CSV files.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/verte-zerg/humtemp/internal/model"
)

// Load reads samples from the CSV file at path.
func Load(path string) ([]model.Sample, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only dataset.
			_ = cerr
		}
	}()
	samples, err := Parse(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return samples, nil
}

// Parse reads a header row followed by date,humidity,temperature records.
// Columns past the third are ignored.
func Parse(r io.Reader) ([]model.Sample, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var samples []model.Sample
	header := true
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		line, _ := reader.FieldPos(0)
		if header {
			header = false
			continue
		}
		if isBlank(record) {
			continue
		}
		if len(record) < 3 {
			return nil, fmt.Errorf("line %d: expected 3 columns, got %d", line, len(record))
		}
		hum, err := parseValue(record[1])
		if err != nil {
			return nil, fmt.Errorf("line %d: humidity: %w", line, err)
		}
		temp, err := parseValue(record[2])
		if err != nil {
			return nil, fmt.Errorf("line %d: temperature: %w", line, err)
		}
		samples = append(samples, model.Sample{
			Label:       strings.TrimSpace(record[0]),
			Humidity:    hum,
			Temperature: temp,
		})
	}
	if len(samples) == 0 {
		return nil, fmt.Errorf("dataset is empty")
	}
	return samples, nil
}

// Columns splits samples into humidity and temperature slices.
func Columns(samples []model.Sample) (humidity, temperature []float64) {
	humidity = make([]float64, len(samples))
	temperature = make([]float64, len(samples))
	for i, s := range samples {
		humidity[i] = s.Humidity
		temperature[i] = s.Temperature
	}
	return humidity, temperature
}

func parseValue(field string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", field)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("non-finite value %q", field)
	}
	return v, nil
}

func isBlank(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}
