package ml

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// LogisticRegression is a fitted linear model. Inputs are standardised
// with Mean/Scale when those are present.
type LogisticRegression struct {
	Coefficients []float64 `json:"coefficients"`
	Intercept    float64   `json:"intercept"`
	Mean         []float64 `json:"mean,omitempty"`
	Scale        []float64 `json:"scale,omitempty"`
	Threshold    float64   `json:"threshold,omitempty"`
}

func (lr *LogisticRegression) validate(features int) error {
	if len(lr.Coefficients) != features {
		return fmt.Errorf("expected %d coefficients, got %d", features, len(lr.Coefficients))
	}
	if lr.Mean != nil && len(lr.Mean) != features {
		return fmt.Errorf("expected %d means, got %d", features, len(lr.Mean))
	}
	if lr.Scale != nil {
		if len(lr.Scale) != features {
			return fmt.Errorf("expected %d scales, got %d", features, len(lr.Scale))
		}
		for i, s := range lr.Scale {
			if s == 0 {
				return fmt.Errorf("scale %d is zero", i)
			}
		}
	}
	if lr.Threshold < 0 || lr.Threshold >= 1 {
		return errors.New("threshold must be in [0, 1)")
	}
	if lr.Threshold == 0 {
		lr.Threshold = 0.5
	}
	return nil
}

func (lr *LogisticRegression) score(x []float64) (float64, error) {
	if len(x) != len(lr.Coefficients) {
		return 0, fmt.Errorf("expected %d features, got %d", len(lr.Coefficients), len(x))
	}
	z := x
	if lr.Mean != nil || lr.Scale != nil {
		z = make([]float64, len(x))
		copy(z, x)
		if lr.Mean != nil {
			floats.Sub(z, lr.Mean)
		}
		if lr.Scale != nil {
			floats.Div(z, lr.Scale)
		}
	}
	return sigmoid(floats.Dot(lr.Coefficients, z) + lr.Intercept), nil
}

func (lr *LogisticRegression) proba(x []float64) ([]float64, error) {
	p, err := lr.score(x)
	if err != nil {
		return nil, err
	}
	return []float64{1 - p, p}, nil
}

func (lr *LogisticRegression) predict(x []float64) (int, error) {
	p, err := lr.score(x)
	if err != nil {
		return 0, err
	}
	if p >= lr.Threshold {
		return ClassFraud, nil
	}
	return ClassLegit, nil
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}
