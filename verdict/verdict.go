// Package verdict formats classifier output for display.
package verdict

import (
	"fmt"
	"math"
	"strconv"

	"github.com/shopspring/decimal"

	"smartfraud/features"
	"smartfraud/ml"
)

// Style is the visual treatment of a verdict.
type Style string

const (
	StyleError   Style = "error"
	StyleSuccess Style = "success"
)

// Verdict is what the page shows after a submission.
type Verdict struct {
	Fraud    bool
	Headline string
	Detail   string
	Percent  string
	Style    Style
}

// Render turns a predicted label and the fraud-class probability into a
// verdict. The label decides the message; the probability is only shown.
func Render(label int, fraudProbability float64) Verdict {
	percent := Percent(fraudProbability)
	v := Verdict{
		Fraud:   label == ml.ClassFraud,
		Percent: percent,
	}
	if v.Fraud {
		v.Headline = "🚫 FRAUD DETECTED!"
		v.Detail = fmt.Sprintf("Estimated probability: %s%%", percent)
		v.Style = StyleError
	} else {
		v.Headline = "✅ Transaction SAFE!"
		v.Detail = fmt.Sprintf("Estimated fraud probability: %s%%", percent)
		v.Style = StyleSuccess
	}
	return v
}

// Percent formats p as a percentage with two decimals.
func Percent(p float64) string {
	return decimal.NewFromFloat(p).Shift(2).StringFixed(2)
}

// FromProba picks the fraud probability out of a PredictProba result. It
// must be a finite value in [0, 1].
func FromProba(label int, proba []float64) (Verdict, error) {
	if len(proba) <= ml.ClassFraud {
		return Verdict{}, fmt.Errorf("expected %d class probabilities, got %d", ml.ClassFraud+1, len(proba))
	}
	p := proba[ml.ClassFraud]
	if math.IsNaN(p) || p < 0 || p > 1 {
		return Verdict{}, fmt.Errorf("fraud probability %v outside [0, 1]", p)
	}
	return Render(label, p), nil
}

// Row is one line of the transaction details table.
type Row struct {
	Variable string
	Value    string
}

// Summary lists the inputs as submitted next to the derived features.
func Summary(q features.Query, rec features.Record) []Row {
	return []Row{
		{"Amount", q.Amount.StringFixed(2)},
		{"Gender", q.Gender},
		{"State", rec.StateAbbreviation},
		{"City Population", strconv.FormatInt(rec.CityPopulation, 10)},
		{"Category", rec.Category},
		{"Weekday", q.Weekday},
		{"Hour Sin", strconv.FormatFloat(rec.HourSin, 'f', 3, 64)},
		{"Hour Cos", strconv.FormatFloat(rec.HourCos, 'f', 3, 64)},
		{"Age", strconv.Itoa(rec.Age)},
		{"Sector", rec.Sector},
	}
}
