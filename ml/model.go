package ml

import (
	"errors"
	"fmt"

	"smartfraud/features"
)

// Classes of the fraud classifier.
const (
	ClassLegit = 0
	ClassFraud = 1
)

var (
	ErrModelNotFound    = errors.New("model file not found")
	ErrInvalidModel     = errors.New("invalid model file")
	ErrUnsupportedModel = errors.New("unsupported model type")
)

// Classifier is a trained binary classifier over feature records.
type Classifier interface {
	Predict(rec features.Record) (int, error)
	PredictProba(rec features.Record) ([]float64, error)
}

// estimator is the numeric part of a model, after encoding.
type estimator interface {
	predict(x []float64) (int, error)
	proba(x []float64) ([]float64, error)
}

// Model is a loaded model artifact. It is immutable and safe for
// concurrent use.
type Model struct {
	Name    string
	Version string
	Type    string

	columns  []string
	encoders map[string]Encoder
	est      estimator
}

// Predict returns the class label for rec.
func (m *Model) Predict(rec features.Record) (int, error) {
	x, err := m.vectorize(rec)
	if err != nil {
		return 0, err
	}
	return m.est.predict(x)
}

// PredictProba returns [P(legit), P(fraud)] for rec.
func (m *Model) PredictProba(rec features.Record) ([]float64, error) {
	x, err := m.vectorize(rec)
	if err != nil {
		return nil, err
	}
	return m.est.proba(x)
}

// Columns returns the feature order the model expects.
func (m *Model) Columns() []string {
	return append([]string(nil), m.columns...)
}

func (m *Model) vectorize(rec features.Record) ([]float64, error) {
	x := make([]float64, len(m.columns))
	for i, col := range m.columns {
		v, ok := rec.Get(col)
		if !ok {
			return nil, fmt.Errorf("model %s: unknown feature %q", m.Name, col)
		}
		if !v.Categorical {
			x[i] = v.Number
			continue
		}
		enc, ok := m.encoders[col]
		if !ok {
			return nil, fmt.Errorf("model %s: no encoder for categorical feature %q", m.Name, col)
		}
		x[i] = enc.Encode(v.Text)
	}
	return x, nil
}

// Encoder maps the values of a categorical column to numbers.
type Encoder struct {
	Values  map[string]float64 `json:"values"`
	Default float64            `json:"default"`
}

// Encode returns the code for value, or the default for unseen values.
func (e Encoder) Encode(value string) float64 {
	if code, ok := e.Values[value]; ok {
		return code
	}
	return e.Default
}
