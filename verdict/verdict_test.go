package verdict

import (
	"math"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"smartfraud/features"
)

func TestRenderFraud(t *testing.T) {
	v := Render(1, 0.87654)
	if !v.Fraud || v.Style != StyleError {
		t.Fatalf("expected fraud verdict, got %+v", v)
	}
	if !strings.Contains(v.Headline, "FRAUD DETECTED!") {
		t.Fatalf("unexpected headline %q", v.Headline)
	}
	if v.Detail != "Estimated probability: 87.65%" {
		t.Fatalf("unexpected detail %q", v.Detail)
	}
}

func TestRenderSafe(t *testing.T) {
	v := Render(0, 0.0312)
	if v.Fraud || v.Style != StyleSuccess {
		t.Fatalf("expected safe verdict, got %+v", v)
	}
	if !strings.Contains(v.Headline, "Transaction SAFE!") {
		t.Fatalf("unexpected headline %q", v.Headline)
	}
	if v.Detail != "Estimated fraud probability: 3.12%" {
		t.Fatalf("unexpected detail %q", v.Detail)
	}
}

func TestRenderFollowsLabelNotProbability(t *testing.T) {
	// a model with a custom threshold may flag fraud below 50%
	if v := Render(1, 0.3); !v.Fraud {
		t.Fatal("label 1 must render as fraud")
	}
	if v := Render(0, 0.7); v.Fraud {
		t.Fatal("label 0 must render as safe")
	}
}

func TestPercent(t *testing.T) {
	cases := map[float64]string{
		0:        "0.00",
		1:        "100.00",
		0.5:      "50.00",
		0.12345:  "12.35",
		0.99999:  "100.00",
		0.000049: "0.00",
		0.123:    "12.30",
	}
	for p, want := range cases {
		if got := Percent(p); got != want {
			t.Errorf("Percent(%v) = %q, want %q", p, got, want)
		}
	}
}

func TestFromProba(t *testing.T) {
	v, err := FromProba(1, []float64{0.25, 0.75})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Percent != "75.00" {
		t.Fatalf("expected 75.00, got %s", v.Percent)
	}
	if _, err := FromProba(1, []float64{1}); err == nil {
		t.Fatal("expected error for short probability slice")
	}
}

func TestFromProbaRejectsInvalidProbability(t *testing.T) {
	for _, p := range []float64{math.NaN(), math.Inf(1), math.Inf(-1), -0.01, 1.5} {
		if _, err := FromProba(1, []float64{1 - p, p}); err == nil {
			t.Errorf("expected error for p=%v", p)
		}
	}
}

func TestSummary(t *testing.T) {
	q := features.Query{
		Amount:   decimal.RequireFromString("12.5"),
		Gender:   "Male",
		State:    "Arizona",
		Category: "Travel",
		Weekday:  "Sunday",
		Hour:     6,
		Age:      70,
		Sector:   "other",
	}
	rec, err := features.NewTransformer(nil).Transform(q)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rows := Summary(q, rec)
	want := map[string]string{
		"Amount":          "12.50",
		"State":           "others",
		"City Population": "1608139",
		"Category":        "travel",
		"Weekday":         "Sunday",
		"Hour Sin":        "1.000",
		"Hour Cos":        "0.000",
		"Age":             "70",
	}
	if len(rows) != 10 {
		t.Fatalf("expected 10 rows, got %d", len(rows))
	}
	for _, row := range rows {
		if w, ok := want[row.Variable]; ok && row.Value != w {
			t.Errorf("%s: got %q want %q", row.Variable, row.Value, w)
		}
	}
}
