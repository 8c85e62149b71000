package monitoring

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func scrape(t *testing.T, mc *MetricsCollector) string {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	mc.Handler().ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	return w.Body.String()
}

func TestMetricsCollector(t *testing.T) {
	mc := NewMetricsCollector()
	mc.RecordPrediction(true, 3*time.Millisecond)
	mc.RecordPrediction(false, time.Millisecond)
	mc.RecordPrediction(false, time.Millisecond)
	mc.RecordInvalidInput("hour")
	mc.RecordModelError()

	body := scrape(t, mc)
	for _, want := range []string{
		`smartfraud_predictions_total{verdict="fraud"} 1`,
		`smartfraud_predictions_total{verdict="safe"} 2`,
		`smartfraud_invalid_inputs_total{field="hour"} 1`,
		`smartfraud_model_load_errors_total 1`,
		`smartfraud_prediction_duration_seconds_count 3`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("missing %q in scrape output", want)
		}
	}
}

func TestCollectorsAreIndependent(t *testing.T) {
	a := NewMetricsCollector()
	b := NewMetricsCollector()
	a.RecordModelError()
	if strings.Contains(scrape(t, b), "smartfraud_model_load_errors_total 1") {
		t.Fatal("collectors should not share state")
	}
}
