package dataset

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/verte-zerg/humtemp/internal/model"
)

// Summary describes the raw dataset before any fitting.
type Summary struct {
	Count           int
	HumidityMean    float64
	HumidityMin     float64
	HumidityMax     float64
	TemperatureMean float64
}

// Summarize computes dataset-level statistics. An empty slice yields a zero Summary.
func Summarize(samples []model.Sample) Summary {
	if len(samples) == 0 {
		return Summary{}
	}
	hum, temp := Columns(samples)
	return Summary{
		Count:           len(samples),
		HumidityMean:    stat.Mean(hum, nil),
		HumidityMin:     floats.Min(hum),
		HumidityMax:     floats.Max(hum),
		TemperatureMean: stat.Mean(temp, nil),
	}
}

// Fingerprint hashes the numeric content of samples in order. Labels are not
// part of the hash.
func Fingerprint(samples []model.Sample) uint64 {
	d := xxhash.New()
	var buf [16]byte
	for _, s := range samples {
		binary.LittleEndian.PutUint64(buf[:8], math.Float64bits(s.Humidity))
		binary.LittleEndian.PutUint64(buf[8:], math.Float64bits(s.Temperature))
		_, _ = d.Write(buf[:])
	}
	return d.Sum64()
}
