package http

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"time"

	"go.uber.org/zap"

	"smartfraud/features"
	"smartfraud/ml"
	"smartfraud/monitoring"
	"smartfraud/verdict"
)

//go:embed templates/index.html
var indexHTML string

var pageTemplate = template.Must(template.New("index").Parse(indexHTML))

const (
	modelFailureMessage   = "The fraud model could not be loaded. Please contact the administrator."
	genericFailureMessage = "The fraud check could not be completed."
)

// ModelLoader returns the classifier to score one submission with. It is
// called once per submission.
type ModelLoader func(ctx context.Context) (ml.Classifier, error)

// StoreLoader adapts a model store to a ModelLoader for a fixed path.
func StoreLoader(store *ml.Store, path string) ModelLoader {
	return func(ctx context.Context) (ml.Classifier, error) {
		model, err := store.Get(ctx, path)
		if err != nil {
			return nil, err
		}
		return model, nil
	}
}

// Detector scores form submissions: collect, transform, invoke, render.
type Detector struct {
	transformer *features.Transformer
	loadModel   ModelLoader
	metrics     *monitoring.MetricsCollector
	logger      *zap.Logger
}

// NewDetector wires a detector. metrics and logger may be nil.
func NewDetector(transformer *features.Transformer, loadModel ModelLoader, metrics *monitoring.MetricsCollector, logger *zap.Logger) *Detector {
	if transformer == nil {
		transformer = features.NewTransformer(nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Detector{
		transformer: transformer,
		loadModel:   loadModel,
		metrics:     metrics,
		logger:      logger,
	}
}

func RegisterHandlers(mux *http.ServeMux, d *Detector) {
	mux.HandleFunc("GET /api/health", handleHealth)
	mux.HandleFunc("GET /{$}", d.handleForm)
	mux.HandleFunc("POST /detect", d.handleDetect)
	if d.metrics != nil {
		mux.Handle("GET /metrics", d.metrics.Handler())
	}
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

type pageData struct {
	States     []string
	Categories []features.Option
	Sectors    []string
	Weekdays   []string
	Genders    []features.Option
	Form       formValues
	Verdict    *verdict.Verdict
	Summary    []verdict.Row
	FieldError string
	Fatal      string
}

func (d *Detector) newPage(form formValues) pageData {
	return pageData{
		States:     d.transformer.States().Names(),
		Categories: features.CategoryOptions(),
		Sectors:    features.SectorOptions(),
		Weekdays:   features.WeekdayOptions(),
		Genders:    features.GenderOptions(),
		Form:       form,
	}
}

func (d *Detector) handleForm(w http.ResponseWriter, r *http.Request) {
	d.render(w, r, http.StatusOK, d.newPage(defaultFormValues()))
}

func (d *Detector) handleDetect(w http.ResponseWriter, r *http.Request) {
	start := GetStartTime(r.Context())
	if start.IsZero() {
		start = time.Now()
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form submission", http.StatusBadRequest)
		return
	}
	form := readForm(r)
	page := d.newPage(form)

	q, err := form.query()
	var rec features.Record
	if err == nil {
		rec, err = d.transformer.Transform(q)
	}
	if err != nil {
		var verr *features.ValidationError
		if !errors.As(err, &verr) {
			d.fail(w, r, page, err)
			return
		}
		if d.metrics != nil {
			d.metrics.RecordInvalidInput(verr.Field)
		}
		page.FieldError = verr.Error()
		d.render(w, r, http.StatusBadRequest, page)
		return
	}

	v, err := d.score(r.Context(), rec)
	if err != nil {
		d.fail(w, r, page, err)
		return
	}

	page.Verdict = &v
	page.Summary = verdict.Summary(q, rec)
	if d.metrics != nil {
		d.metrics.RecordPrediction(v.Fraud, time.Since(start))
	}
	d.render(w, r, http.StatusOK, page)
}

// score loads the model fresh and asks it for a label and probabilities.
func (d *Detector) score(ctx context.Context, rec features.Record) (verdict.Verdict, error) {
	if d.loadModel == nil {
		return verdict.Verdict{}, errors.New("no model loader configured")
	}
	model, err := d.loadModel(ctx)
	if err != nil {
		return verdict.Verdict{}, err
	}
	label, err := model.Predict(rec)
	if err != nil {
		return verdict.Verdict{}, err
	}
	proba, err := model.PredictProba(rec)
	if err != nil {
		return verdict.Verdict{}, err
	}
	v, err := verdict.FromProba(label, proba)
	if err != nil {
		return verdict.Verdict{}, err
	}

	fields := []zap.Field{
		zap.String("request_id", GetRequestID(ctx)),
		zap.Bool("fraud", v.Fraud),
		zap.String("probability", v.Percent),
	}
	if m, ok := model.(*ml.Model); ok {
		fields = append(fields, zap.String("model", m.Name), zap.String("model_version", m.Version))
	}
	d.logger.Info("transaction scored", fields...)
	return v, nil
}

// fail reports a fatal scoring error. There is no retry or fallback.
func (d *Detector) fail(w http.ResponseWriter, r *http.Request, page pageData, err error) {
	d.logger.Error("fraud check failed",
		zap.String("request_id", GetRequestID(r.Context())),
		zap.Error(err))
	page.Fatal = genericFailureMessage
	if isModelError(err) {
		page.Fatal = modelFailureMessage
		if d.metrics != nil {
			d.metrics.RecordModelError()
		}
	}
	d.render(w, r, http.StatusInternalServerError, page)
}

func isModelError(err error) bool {
	return errors.Is(err, ml.ErrModelNotFound) ||
		errors.Is(err, ml.ErrInvalidModel) ||
		errors.Is(err, ml.ErrUnsupportedModel)
}

func (d *Detector) render(w http.ResponseWriter, r *http.Request, status int, page pageData) {
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, page); err != nil {
		d.logger.Error("render page", zap.String("request_id", GetRequestID(r.Context())), zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}
