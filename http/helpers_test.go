package http

import (
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"bookgenre/feedback"
	"bookgenre/ml"
	"bookgenre/pipeline"
)

var testFields = []string{"Gender", "Occupation", "Age", "Books_Read_Per_Year"}

var fixedNow = time.Date(2026, 5, 1, 10, 30, 0, 0, time.UTC)

// testArtifacts sends Artist and Doctor to Fantasy, Engineer and Teacher to Science Fiction.
func testArtifacts(t *testing.T) *ml.Artifacts {
	t.Helper()
	schema, err := ml.NewFeatureSchema("v1", testFields)
	require.NoError(t, err)
	gender, err := ml.NewLabelEncoder([]string{"Female", "Male"})
	require.NoError(t, err)
	occupation, err := ml.NewLabelEncoder([]string{"Artist", "Doctor", "Engineer", "Teacher"})
	require.NoError(t, err)
	scaler, err := ml.NewStandardScaler([]float64{0, 0, 0, 0}, []float64{1, 1, 1, 1})
	require.NoError(t, err)
	tree, err := ml.NewDecisionTree([]string{"Fantasy", "Science Fiction"}, len(testFields), []ml.TreeNode{
		{FeatureIdx: 1, Threshold: 1.5, LeftChild: 1, RightChild: 2},
		{IsLeaf: true, ClassIdx: 0},
		{IsLeaf: true, ClassIdx: 1},
	})
	require.NoError(t, err)
	artifacts, err := ml.NewArtifacts(schema, ml.EncoderSet{"Gender": gender, "Occupation": occupation}, scaler, tree)
	require.NoError(t, err)
	return artifacts
}

// memoryRecorder keeps entries in memory, or fails every Record when err is set.
type memoryRecorder struct {
	mu      sync.Mutex
	entries []feedback.Entry
	err     error
}

func (r *memoryRecorder) Record(entry feedback.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.entries = append(r.entries, entry)
	return nil
}

func (r *memoryRecorder) Entries() []feedback.Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]feedback.Entry(nil), r.entries...)
}

func newTestHandler(t *testing.T, recorder feedback.Recorder, delay time.Duration) *Handler {
	t.Helper()
	predictor, err := pipeline.NewPredictor(testArtifacts(t), 16, nil)
	require.NoError(t, err)
	handler, err := NewHandler(Options{
		Predictor:     predictor,
		Recorder:      recorder,
		AnalysisDelay: delay,
		Rand:          rand.New(rand.NewSource(1)),
		Now:           func() time.Time { return fixedNow },
	})
	require.NoError(t, err)
	return handler
}

func newTestMux(t *testing.T, recorder feedback.Recorder, delay time.Duration) *http.ServeMux {
	t.Helper()
	mux := http.NewServeMux()
	newTestHandler(t, recorder, delay).Register(mux)
	return mux
}

func surveyForm(overrides map[string]string) url.Values {
	form := url.Values{
		"Gender":              {"Female"},
		"Occupation":          {"Engineer"},
		"Age":                 {"30"},
		"Books_Read_Per_Year": {"12"},
	}
	for k, v := range overrides {
		if v == "" {
			form.Del(k)
			continue
		}
		form.Set(k, v)
	}
	return form
}

func postForm(target string, form url.Values) *http.Request {
	req, _ := http.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}
