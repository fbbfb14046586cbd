package http

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"time"

	"go.uber.org/zap"

	"bookgenre/feedback"
	"bookgenre/monitoring"
	"bookgenre/pipeline"
)

// ChoiceKey is the form key carrying the feedback reaction.
const ChoiceKey = "feedback_choice"

// Options configures a Handler.
type Options struct {
	Predictor *pipeline.Predictor
	Recorder  feedback.Recorder
	Logger    *zap.Logger
	// AnalysisDelay is a cosmetic pause before a prediction is shown.
	AnalysisDelay time.Duration
	// Rand picks quotes; nil seeds from the clock.
	Rand *rand.Rand
	// Now stamps feedback entries; nil means time.Now.
	Now func() time.Time
}

// Handler serves the survey pages and the JSON API.
type Handler struct {
	predictor *pipeline.Predictor
	recorder  feedback.Recorder
	logger    *zap.Logger
	delay     time.Duration
	quotes    *quotePicker
	now       func() time.Time
	pages     *renderer
}

// NewHandler validates opts and parses the page templates.
func NewHandler(opts Options) (*Handler, error) {
	if opts.Predictor == nil {
		return nil, errors.New("predictor is required")
	}
	if opts.Recorder == nil {
		return nil, errors.New("feedback recorder is required")
	}
	pages, err := newRenderer()
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	h := &Handler{
		predictor: opts.Predictor,
		recorder:  opts.Recorder,
		logger:    opts.Logger,
		delay:     opts.AnalysisDelay,
		quotes:    &quotePicker{rng: opts.Rand},
		now:       opts.Now,
		pages:     pages,
	}
	if h.logger == nil {
		h.logger = zap.NewNop()
	}
	if h.quotes.rng == nil {
		h.quotes.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if h.now == nil {
		h.now = time.Now
	}
	return h, nil
}

// Register mounts all routes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", h.handleForm)
	mux.HandleFunc("POST /predict", h.handlePredict)
	mux.HandleFunc("POST /feedback", h.handleFeedback)
	mux.HandleFunc("GET /api/health", h.handleHealth)
	mux.HandleFunc("GET /api/schema", h.handleSchema)
	mux.HandleFunc("POST /api/predict", h.handleAPIPredict)
}

func (h *Handler) handleForm(w http.ResponseWriter, r *http.Request) {
	h.renderPage(w, r, http.StatusOK, "form.html", buildForm(h.predictor.Artifacts(), nil, ""))
}

func (h *Handler) handlePredict(w http.ResponseWriter, r *http.Request) {
	values, ok := h.formValues(w, r)
	if !ok {
		return
	}

	_, result, err := h.run(r.Context(), values, true)
	if err != nil {
		status, message := describeError(err)
		h.renderPage(w, r, status, "form.html", buildForm(h.predictor.Artifacts(), values, message))
		return
	}

	h.renderPage(w, r, http.StatusOK, "result.html", h.resultPage(result, values, ""))
}

func (h *Handler) handleFeedback(w http.ResponseWriter, r *http.Request) {
	values, ok := h.formValues(w, r)
	if !ok {
		return
	}

	// The label is recomputed from the echoed inputs rather than trusted from the page.
	raw, result, err := h.run(r.Context(), values, false)
	if err != nil {
		status, message := describeError(err)
		h.renderPage(w, r, status, "form.html", buildForm(h.predictor.Artifacts(), values, message))
		return
	}

	choice := feedback.Choice(r.PostForm.Get(ChoiceKey))
	if !choice.Valid() {
		h.renderPage(w, r, http.StatusUnprocessableEntity, "result.html",
			h.resultPage(result, values, "Please choose how you feel about this prediction."))
		return
	}

	saved := h.record(r.Context(), result, choice, raw)
	h.renderPage(w, r, http.StatusOK, "thanks.html", thanksPage{
		Label:  result.Label,
		Glyph:  result.Glyph,
		Choice: choice.Text(),
		Saved:  saved,
	})
}

// run captures the submitted values and predicts. The cosmetic delay only applies
// when the prediction is first shown.
func (h *Handler) run(ctx context.Context, values map[string]string, pause bool) (pipeline.RawInput, pipeline.Result, error) {
	artifacts := h.predictor.Artifacts()
	raw, err := pipeline.Capture(artifacts.Schema, artifacts.Encoders, values)
	if err != nil {
		return pipeline.RawInput{}, pipeline.Result{}, err
	}
	if pause {
		if err := h.pause(ctx); err != nil {
			return pipeline.RawInput{}, pipeline.Result{}, err
		}
	}
	result, err := h.predictor.Predict(ctx, raw)
	if err != nil {
		return pipeline.RawInput{}, pipeline.Result{}, err
	}
	return raw, result, nil
}

func (h *Handler) pause(ctx context.Context) error {
	if h.delay <= 0 {
		return nil
	}
	timer := time.NewTimer(h.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// record appends one feedback entry holding the captured values the model scored.
// Failures are logged and reported to the caller as false; they never hide the prediction.
func (h *Handler) record(ctx context.Context, result pipeline.Result, choice feedback.Choice, raw pipeline.RawInput) bool {
	entry := feedback.Entry{
		Timestamp: h.now(),
		Label:     result.Label,
		Choice:    choice,
	}
	for _, v := range raw.Values(h.predictor.Artifacts().Schema) {
		entry.Fields = append(entry.Fields, feedback.Field{Name: v.Name, Value: v.Value})
	}

	err := h.recorder.Record(entry)
	monitoring.RecordFeedback(err)
	if err != nil {
		h.logger.Error("feedback not saved",
			zap.String("request_id", GetRequestID(ctx)),
			zap.String("label", result.Label),
			zap.Error(err),
		)
		return false
	}
	h.logger.Info("feedback saved",
		zap.String("request_id", GetRequestID(ctx)),
		zap.String("label", result.Label),
		zap.String("choice", string(choice)),
	)
	return true
}

// formValues collects the posted value of every schema field.
func (h *Handler) formValues(w http.ResponseWriter, r *http.Request) (map[string]string, bool) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form submission", http.StatusBadRequest)
		return nil, false
	}
	values := make(map[string]string)
	for _, name := range h.predictor.Artifacts().Schema.Fields {
		if _, ok := r.PostForm[name]; ok {
			values[name] = r.PostForm.Get(name)
		}
	}
	return values, true
}

func (h *Handler) resultPage(result pipeline.Result, values map[string]string, message string) resultPage {
	page := resultPage{
		Label:     result.Label,
		Glyph:     result.Glyph,
		Quote:     h.quotes.pick(),
		ChoiceKey: ChoiceKey,
		Choices:   feedbackChoices(),
		Error:     message,
	}
	for _, name := range h.predictor.Artifacts().Schema.Fields {
		if v, ok := values[name]; ok {
			page.Inputs = append(page.Inputs, pipeline.FieldValue{Name: name, Value: v})
		}
	}
	return page
}

// renderPage buffers the page so a template failure can still produce a clean 500.
func (h *Handler) renderPage(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	var buf bytes.Buffer
	if err := h.pages.render(&buf, name, data); err != nil {
		h.logger.Error("render page",
			zap.String("request_id", GetRequestID(r.Context())),
			zap.String("template", name),
			zap.Error(err),
		)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.Debug("write page", zap.Error(err))
	}
}

// describeError maps a pipeline error to a status code and a message fit for the user.
// Deployment problems are not explained to the user; the details are in the log.
func describeError(err error) (int, string) {
	var unknown *pipeline.UnknownCategoryError
	var invalid *pipeline.InvalidInputError
	switch {
	case errors.As(err, &unknown):
		return http.StatusUnprocessableEntity, fmt.Sprintf("%q is not a recognized value for %s.", unknown.Value, Humanize(unknown.Field))
	case errors.As(err, &invalid):
		return http.StatusUnprocessableEntity, fmt.Sprintf("%s: %s.", Humanize(invalid.Field), invalid.Reason)
	case errors.Is(err, pipeline.ErrSchemaMismatch):
		return http.StatusInternalServerError, "The service is misconfigured. Please try again later."
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "The request was interrupted. Please try again."
	default:
		return http.StatusInternalServerError, "An error occurred during prediction. Please try again."
	}
}
