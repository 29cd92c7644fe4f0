package regression

import (
	"fmt"
	"strings"
)

// Predictor evaluates a fitted model at a humidity value.
type Predictor interface {
	Predict(x float64) float64
	Degree() int
}

// Kind selects which fitted model a caller is asking about.
type Kind int

const (
	// KindLinear selects the degree-1 model.
	KindLinear Kind = iota
	// KindQuadratic selects the degree-2 model.
	KindQuadratic
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindLinear:
		return "linear"
	case KindQuadratic:
		return "quadratic"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Title returns the display name of the kind.
func (k Kind) Title() string {
	switch k {
	case KindLinear:
		return "Linear"
	case KindQuadratic:
		return "Polynomial"
	default:
		return k.String()
	}
}

// Other returns the opposite kind.
func (k Kind) Other() Kind {
	if k == KindLinear {
		return KindQuadratic
	}
	return KindLinear
}

// ParseKind accepts "linear"/"lin" and "quadratic"/"quad"/"poly".
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "linear", "lin":
		return KindLinear, nil
	case "quadratic", "quad", "poly", "polynomial":
		return KindQuadratic, nil
	default:
		return 0, fmt.Errorf("unknown model %q (use linear or quadratic)", s)
	}
}

// Predict evaluates m at x.
func Predict(m Predictor, x float64) float64 {
	return m.Predict(x)
}

// PredictAll evaluates m at every x.
func PredictAll(m Predictor, xs []float64) []float64 {
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = m.Predict(x)
	}
	return out
}

// Residuals returns actual[i] - predicted[i].
func Residuals(actual, predicted []float64) ([]float64, error) {
	if len(actual) != len(predicted) {
		return nil, fmt.Errorf("%w: %d actual values, %d predicted", ErrShapeMismatch, len(actual), len(predicted))
	}
	out := make([]float64, len(actual))
	for i := range actual {
		out[i] = actual[i] - predicted[i]
	}
	return out, nil
}
