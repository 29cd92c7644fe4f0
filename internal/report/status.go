package report

import "math"

// Status classifies a temperature deviation.
type Status string

// Deviation thresholds in degrees Celsius.
const (
	accurateBound = 0.5
	neutralBound  = 1.0
)

// Prediction statuses.
const (
	StatusAccurate  Status = "ACCURATE"
	StatusNeutral   Status = "NEUTRAL"
	StatusAttention Status = "ATTENTION"
)

// Classify labels a deviation by its magnitude.
func Classify(delta float64) Status {
	abs := math.Abs(delta)
	switch {
	case abs < accurateBound:
		return StatusAccurate
	case abs < neutralBound:
		return StatusNeutral
	default:
		return StatusAttention
	}
}

// Prediction is the result of evaluating both models at one humidity value.
type Prediction struct {
	Humidity       float64
	Linear         float64
	Quadratic      float64
	Average        float64
	LinearDelta    float64
	QuadraticDelta float64
}

// Predict evaluates both models at rh and compares them with the mean temperature.
func (r Report) Predict(rh float64) Prediction {
	lin := r.Linear.Predict(rh)
	quad := r.Quadratic.Predict(rh)
	avg := r.Summary.TemperatureMean
	return Prediction{
		Humidity:       rh,
		Linear:         lin,
		Quadratic:      quad,
		Average:        avg,
		LinearDelta:    lin - avg,
		QuadraticDelta: quad - avg,
	}
}
