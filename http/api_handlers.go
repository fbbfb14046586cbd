// Package http 提供API处理器
package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"bookgenre/feedback"
	"bookgenre/pipeline"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// PredictRequest 预测请求
type PredictRequest struct {
	Inputs   map[string]any `json:"inputs" validate:"required"`
	Feedback string         `json:"feedback,omitempty" validate:"omitempty,oneof=loved okay meh inaccurate hate"`
}

// PredictResponse 预测响应；仅当请求携带反馈时返回 feedback_saved
type PredictResponse struct {
	Label         string `json:"label"`
	Glyph         string `json:"glyph"`
	Quote         string `json:"quote"`
	FeedbackSaved *bool  `json:"feedback_saved,omitempty"`
}

// SchemaField 特征模式中的单个字段
type SchemaField struct {
	Name    string   `json:"name"`
	Type    string   `json:"type"`
	Label   string   `json:"label"`
	Classes []string `json:"classes,omitempty"`
}

// SchemaResponse 特征模式响应
type SchemaResponse struct {
	Version string        `json:"version"`
	Fields  []SchemaField `json:"fields"`
	Labels  []string      `json:"labels"`
}

// ErrorResponse 错误响应
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// ============ 系统 ============

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]string{
		"status":         "ok",
		"schema_version": h.predictor.Artifacts().Schema.Version,
	})
}

// ============ 特征模式 ============

func (h *Handler) handleSchema(w http.ResponseWriter, r *http.Request) {
	artifacts := h.predictor.Artifacts()
	resp := SchemaResponse{
		Version: artifacts.Schema.Version,
		Labels:  artifacts.Model.Classes(),
	}
	for _, name := range artifacts.Schema.Fields {
		field := SchemaField{Name: name, Type: "numeric", Label: Humanize(name)}
		if enc, ok := artifacts.Encoders[name]; ok {
			field.Type = "categorical"
			field.Classes = enc.Classes()
		}
		resp.Fields = append(resp.Fields, field)
	}
	h.respondJSON(w, http.StatusOK, resp)
}

// ============ 预测 ============

func (h *Handler) handleAPIPredict(w http.ResponseWriter, r *http.Request) {
	var req PredictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: "bad_request", Message: "invalid JSON body"})
		return
	}
	if err := validate.Struct(req); err != nil {
		h.respondJSON(w, http.StatusUnprocessableEntity, ErrorResponse{Error: "invalid_request", Message: validationMessage(err)})
		return
	}

	if missing := h.missingInputs(req.Inputs); len(missing) > 0 {
		h.respondJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "invalid_request",
			Message: "missing inputs: " + strings.Join(missing, ", "),
		})
		return
	}

	values, err := inputValues(req.Inputs)
	if err != nil {
		h.respondError(w, err)
		return
	}

	// API 调用不做展示用的延时
	raw, result, err := h.run(r.Context(), values, false)
	if err != nil {
		h.respondError(w, err)
		return
	}

	resp := PredictResponse{
		Label: result.Label,
		Glyph: result.Glyph,
		Quote: h.quotes.pick(),
	}
	if req.Feedback != "" {
		saved := h.record(r.Context(), result, feedback.Choice(req.Feedback), raw)
		resp.FeedbackSaved = &saved
	}
	h.respondJSON(w, http.StatusOK, resp)
}

// missingInputs 按模式顺序返回请求中缺少的字段；API 调用方漏传字段属于请求错误
func (h *Handler) missingInputs(inputs map[string]any) []string {
	var missing []string
	for _, name := range h.predictor.Artifacts().Schema.Fields {
		if _, ok := inputs[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

// inputValues 将 JSON 值统一转换为表单文本，数值使用最短表示
func inputValues(inputs map[string]any) (map[string]string, error) {
	values := make(map[string]string, len(inputs))
	for name, v := range inputs {
		switch x := v.(type) {
		case string:
			values[name] = x
		case float64:
			values[name] = pipeline.FormatNumber(x)
		default:
			return nil, &pipeline.InvalidInputError{Field: name, Value: fmt.Sprint(v), Reason: "must be a string or a number"}
		}
	}
	return values, nil
}

func validationMessage(err error) string {
	var errs validator.ValidationErrors
	if errors.As(err, &errs) && len(errs) > 0 {
		return fmt.Sprintf("%s failed %q", errs[0].Field(), errs[0].Tag())
	}
	return err.Error()
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	status, message := describeError(err)
	h.respondJSON(w, status, ErrorResponse{Error: pipeline.Kind(err), Message: message})
}

// respondJSON 统一JSON响应
func (h *Handler) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Warn("encode JSON response", zap.Error(err))
	}
}
