package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookgenre/feedback"
)

func postJSON(target, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestHandleHealth(t *testing.T) {
	mux := newTestMux(t, &memoryRecorder{}, 0)

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","schema_version":"v1"}`, w.Body.String())
}

func TestHandleSchema(t *testing.T) {
	mux := newTestMux(t, &memoryRecorder{}, 0)

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/schema", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var resp SchemaResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "v1", resp.Version)
	assert.Equal(t, []string{"Fantasy", "Science Fiction"}, resp.Labels)
	require.Len(t, resp.Fields, 4)
	assert.Equal(t, SchemaField{Name: "Gender", Type: "categorical", Label: "Gender", Classes: []string{"Female", "Male"}}, resp.Fields[0])
	assert.Equal(t, "Occupation", resp.Fields[1].Name)
	assert.Equal(t, SchemaField{Name: "Books_Read_Per_Year", Type: "numeric", Label: "Books Read Per Year"}, resp.Fields[3])
}

func TestHandleAPIPredict(t *testing.T) {
	recorder := &memoryRecorder{}
	mux := newTestMux(t, recorder, 0)

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, postJSON("/api/predict",
		`{"inputs":{"Gender":"Male","Occupation":"Doctor","Age":41,"Books_Read_Per_Year":"5"}}`))

	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Fantasy", resp["label"])
	assert.Equal(t, "🧙‍♂️", resp["glyph"])
	assert.Contains(t, Quotes, resp["quote"])
	assert.NotContains(t, resp, "feedback_saved")
	assert.Empty(t, recorder.Entries())
}

func TestHandleAPIPredictWithFeedback(t *testing.T) {
	recorder := &memoryRecorder{}
	mux := newTestMux(t, recorder, 0)

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, postJSON("/api/predict",
		`{"inputs":{"Gender":"Female","Occupation":"Engineer","Age":30.5,"Books_Read_Per_Year":12},"feedback":"okay"}`))

	require.Equal(t, http.StatusOK, w.Code)
	var resp PredictResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Science Fiction", resp.Label)
	require.NotNil(t, resp.FeedbackSaved)
	assert.True(t, *resp.FeedbackSaved)

	entries := recorder.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, feedback.Okay, entries[0].Choice)
	assert.Equal(t, []feedback.Field{
		{Name: "Gender", Value: "Female"},
		{Name: "Occupation", Value: "Engineer"},
		{Name: "Age", Value: "30.5"},
		{Name: "Books_Read_Per_Year", Value: "12"},
	}, entries[0].Fields)
}

func TestHandleAPIPredictFeedbackFailure(t *testing.T) {
	mux := newTestMux(t, &memoryRecorder{err: errors.New("read-only file system")}, 0)

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, postJSON("/api/predict",
		`{"inputs":{"Gender":"Female","Occupation":"Engineer","Age":30,"Books_Read_Per_Year":12},"feedback":"hate"}`))

	require.Equal(t, http.StatusOK, w.Code)
	var resp PredictResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Science Fiction", resp.Label)
	require.NotNil(t, resp.FeedbackSaved)
	assert.False(t, *resp.FeedbackSaved)
}

func TestHandleAPIPredictErrors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
		kind   string
	}{
		{"malformed json", `{"inputs":`, http.StatusBadRequest, "bad_request"},
		{"no inputs", `{}`, http.StatusUnprocessableEntity, "invalid_request"},
		{"unknown feedback", `{"inputs":{"Gender":"Female"},"feedback":"adored"}`, http.StatusUnprocessableEntity, "invalid_request"},
		{
			"unknown category",
			`{"inputs":{"Gender":"Other","Occupation":"Engineer","Age":30,"Books_Read_Per_Year":12}}`,
			http.StatusUnprocessableEntity, "unknown_category",
		},
		{
			"negative number",
			`{"inputs":{"Gender":"Female","Occupation":"Engineer","Age":-1,"Books_Read_Per_Year":12}}`,
			http.StatusUnprocessableEntity, "invalid_input",
		},
		{
			"unsupported value type",
			`{"inputs":{"Gender":"Female","Occupation":"Engineer","Age":true,"Books_Read_Per_Year":12}}`,
			http.StatusUnprocessableEntity, "invalid_input",
		},
		{
			"missing field",
			`{"inputs":{"Gender":"Female","Occupation":"Engineer","Age":30}}`,
			http.StatusUnprocessableEntity, "invalid_request",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := &memoryRecorder{}
			mux := newTestMux(t, recorder, 0)

			w := httptest.NewRecorder()
			mux.ServeHTTP(w, postJSON("/api/predict", tt.body))

			assert.Equal(t, tt.status, w.Code)
			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.kind, resp.Error)
			assert.NotEmpty(t, resp.Message)
			assert.Empty(t, recorder.Entries())
		})
	}
}

func TestHandleAPIPredictNamesMissingInputs(t *testing.T) {
	mux := newTestMux(t, &memoryRecorder{}, 0)

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, postJSON("/api/predict", `{"inputs":{"Occupation":"Engineer","Age":30}}`))

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "invalid_request", resp.Error)
	assert.Equal(t, "missing inputs: Gender, Books_Read_Per_Year", resp.Message)
}
