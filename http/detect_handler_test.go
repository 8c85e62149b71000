package http

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"smartfraud/features"
	"smartfraud/ml"
	"smartfraud/monitoring"
)

type fakeModel struct {
	label int
	proba []float64
	err   error
	seen  []features.Record
}

func (f *fakeModel) Predict(rec features.Record) (int, error) {
	f.seen = append(f.seen, rec)
	return f.label, f.err
}

func (f *fakeModel) PredictProba(rec features.Record) ([]float64, error) {
	return f.proba, f.err
}

func staticLoader(c ml.Classifier) ModelLoader {
	return func(ctx context.Context) (ml.Classifier, error) { return c, nil }
}

func validForm() url.Values {
	return url.Values{
		"amount":   {"250.00"},
		"gender":   {"Female"},
		"age":      {"34"},
		"state":    {"Florida"},
		"city_pop": {""},
		"category": {"Shopping (online)"},
		"weekday":  {"Saturday"},
		"hour":     {"23"},
		"sector":   {"Medios y Comunicación"},
	}
}

func postDetect(t *testing.T, h http.Handler, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/detect", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func newTestMux(loader ModelLoader, metrics *monitoring.MetricsCollector) *http.ServeMux {
	mux := http.NewServeMux()
	RegisterHandlers(mux, NewDetector(nil, loader, metrics, zap.NewNop()))
	return mux
}

func TestDetectFraud(t *testing.T) {
	model := &fakeModel{label: 1, proba: []float64{0.1234, 0.8766}}
	w := postDetect(t, newTestMux(staticLoader(model), nil), validForm())

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "FRAUD DETECTED!") {
		t.Fatalf("expected fraud verdict in page")
	}
	if !strings.Contains(body, "Estimated probability: 87.66%") {
		t.Fatalf("expected probability in page")
	}
	if !strings.Contains(body, "Transaction Details") || !strings.Contains(body, "<td>FL</td>") {
		t.Fatalf("expected details table in page")
	}

	if len(model.seen) != 1 {
		t.Fatalf("expected one prediction, got %d", len(model.seen))
	}
	rec := model.seen[0]
	if rec.StateAbbreviation != "FL" || rec.CityPopulation != 949611 {
		t.Errorf("unexpected state features %s/%d", rec.StateAbbreviation, rec.CityPopulation)
	}
	if rec.Category != "shopping_net" || rec.Weekday != 5 || rec.Gender != 0 {
		t.Errorf("unexpected categorical features %+v", rec)
	}
}

func TestDetectSafe(t *testing.T) {
	model := &fakeModel{label: 0, proba: []float64{0.97, 0.03}}
	w := postDetect(t, newTestMux(staticLoader(model), nil), validForm())

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "Transaction SAFE!") || !strings.Contains(body, "Estimated fraud probability: 3.00%") {
		t.Fatalf("unexpected page: %s", body)
	}
}

func TestDetectUsesCityPopulationOverride(t *testing.T) {
	model := &fakeModel{label: 0, proba: []float64{1, 0}}
	form := validForm()
	form.Set("city_pop", "4200")
	postDetect(t, newTestMux(staticLoader(model), nil), form)

	if len(model.seen) != 1 || model.seen[0].CityPopulation != 4200 {
		t.Fatalf("expected override to reach the model: %+v", model.seen)
	}
}

func TestDetectRejectsTamperedInput(t *testing.T) {
	metrics := monitoring.NewMetricsCollector()
	cases := []struct {
		field, value string
	}{
		{"hour", "24"},
		{"age", "abc"},
		{"category", "casino"},
		{"amount", "-5"},
		{"amount", "0.001"},
		{"amount", "1e-20000000"},
		{"amount", "1e20000000"},
		{"amount", "1E2"},
		{"sector", "Finance"},
	}
	for _, tc := range cases {
		field, value := tc.field, tc.value
		model := &fakeModel{label: 1, proba: []float64{0, 1}}
		form := validForm()
		form.Set(field, value)
		w := postDetect(t, newTestMux(staticLoader(model), metrics), form)

		if w.Code != http.StatusBadRequest {
			t.Errorf("%s=%s: expected 400, got %d", field, value, w.Code)
		}
		if !strings.Contains(w.Body.String(), "invalid "+field) {
			t.Errorf("%s: expected field error in page", field)
		}
		if len(model.seen) != 0 {
			t.Errorf("%s: model should not be called", field)
		}
	}
}

func TestDetectMissingModel(t *testing.T) {
	store, err := ml.NewStore(ml.StoreConfig{Policy: ml.ReloadAlways}, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	metrics := monitoring.NewMetricsCollector()
	loader := StoreLoader(store, filepath.Join(t.TempDir(), "finish_model.json"))

	w := postDetect(t, newTestMux(loader, metrics), validForm())

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "could not be loaded") {
		t.Fatalf("expected fatal message in page")
	}
	if strings.Contains(body, "Transaction Details") {
		t.Fatal("no verdict should be shown on failure")
	}
}

func TestDetectModelError(t *testing.T) {
	model := &fakeModel{err: errors.New("boom")}
	w := postDetect(t, newTestMux(staticLoader(model), nil), validForm())
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), genericFailureMessage) {
		t.Fatal("expected generic failure message")
	}
}

func TestDetectInvalidProbability(t *testing.T) {
	model := &fakeModel{label: 1, proba: []float64{0, math.NaN()}}
	w := postDetect(t, newTestMux(staticLoader(model), nil), validForm())
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, genericFailureMessage) || strings.Contains(body, "Transaction Details") {
		t.Fatalf("expected fatal page without verdict: %s", body)
	}
}

func TestDetectWithRealArtifact(t *testing.T) {
	artifact := ml.Artifact{
		Name:     "fraud-detector",
		Version:  "test",
		Type:     ml.TypeLogisticRegression,
		Features: features.Columns,
		Encoders: map[string]ml.Encoder{
			features.ColState:    {Values: map[string]float64{"FL": 1}},
			features.ColCategory: {Values: map[string]float64{"shopping_net": 1}},
			features.ColSector:   {Values: map[string]float64{}},
		},
		Linear: &ml.LogisticRegression{
			// only the category coefficient is non-zero: p = sigmoid(3)
			Coefficients: []float64{0, 0, 0, 0, 3, 0, 0, 0, 0, 0},
		},
	}
	payload, err := json.Marshal(artifact)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "finish_model.json")
	if err := os.WriteFile(path, payload, 0o600); err != nil {
		t.Fatal(err)
	}

	store, err := ml.NewStore(ml.StoreConfig{Policy: ml.ReloadOnChange}, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	srv := NewServer(DefaultServerConfig(), NewDetector(nil, StoreLoader(store, path), monitoring.NewMetricsCollector(), nil), nil)
	w := postDetect(t, srv.Handler(), validForm())

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "Estimated probability: 95.26%") {
		t.Fatalf("unexpected verdict: %s", w.Body.String())
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Fatal("expected request id header")
	}

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	mw := httptest.NewRecorder()
	srv.Handler().ServeHTTP(mw, req)
	if !strings.Contains(mw.Body.String(), `smartfraud_predictions_total{verdict="fraud"} 1`) {
		t.Fatalf("expected prediction to be counted")
	}
}
