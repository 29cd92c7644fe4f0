// Package model defines shared data structures.
package model

import "time"

// Sample is one observation: a date label, relative humidity in percent and
// temperature in degrees Celsius.
type Sample struct {
	Label       string
	Humidity    float64
	Temperature float64
}

// Defaults shared by the CLI and the dashboard.
const (
	DefaultDataPath = "data.csv"
	DefaultHumidity = 85.0
	MinHumidity     = 0.0
	MaxHumidity     = 100.0
)

// Config defines dashboard and report settings.
type Config struct {
	DataPath   string
	Bins       int
	Humidity   float64
	ExportDir  string
	ExportGzip bool
	Plot       bool
}

// HistoryConfig defines filters for the fit history listing.
type HistoryConfig struct {
	DataPath string
	Last     int
}

// FitRecord captures one fit run for the history store.
type FitRecord struct {
	ID          int64
	CreatedAt   time.Time
	DataPath    string
	Fingerprint uint64
	Samples     int

	LinearSlope     float64
	LinearIntercept float64
	LinearR2        float64
	LinearMAE       float64
	LinearRMSE      float64

	QuadC0   float64
	QuadC1   float64
	QuadC2   float64
	QuadR2   float64
	QuadMAE  float64
	QuadRMSE float64
}
