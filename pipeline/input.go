package pipeline

import (
	"math"
	"strconv"
	"strings"

	"bookgenre/ml"
)

// RawInput 一次提交的原始字段值，捕获后不可修改
type RawInput struct {
	categorical map[string]string
	numeric     map[string]float64
}

// FieldValue 字段名与原始值的文本形式
type FieldValue struct {
	Name  string
	Value string
}

// NewRawInput 复制给定的字段值并构造 RawInput
func NewRawInput(categorical map[string]string, numeric map[string]float64) RawInput {
	in := RawInput{
		categorical: make(map[string]string, len(categorical)),
		numeric:     make(map[string]float64, len(numeric)),
	}
	for k, v := range categorical {
		in.categorical[k] = v
	}
	for k, v := range numeric {
		in.numeric[k] = v
	}
	return in
}

// Categorical 返回分类字段的原始值
func (in RawInput) Categorical(field string) (string, bool) {
	v, ok := in.categorical[field]
	return v, ok
}

// Numeric 返回数值字段的原始值
func (in RawInput) Numeric(field string) (float64, bool) {
	v, ok := in.numeric[field]
	return v, ok
}

// Values 按模式顺序返回所有已捕获字段的文本形式
func (in RawInput) Values(schema ml.FeatureSchema) []FieldValue {
	values := make([]FieldValue, 0, schema.Len())
	for _, field := range schema.Fields {
		if v, ok := in.categorical[field]; ok {
			values = append(values, FieldValue{Name: field, Value: v})
			continue
		}
		if v, ok := in.numeric[field]; ok {
			values = append(values, FieldValue{Name: field, Value: FormatNumber(v)})
		}
	}
	return values
}

// Capture 将表单字符串值解析为 RawInput。
// 分类字段原样保留；数值字段必须是有限的非负数，空串按 0 处理。
// 缺失字段不会在此报错，由 Encode 报告 SchemaMismatchError。
func Capture(schema ml.FeatureSchema, encoders ml.EncoderSet, values map[string]string) (RawInput, error) {
	categorical := make(map[string]string)
	numeric := make(map[string]float64)
	for _, field := range schema.Fields {
		raw, ok := values[field]
		if !ok {
			continue
		}
		if encoders.Has(field) {
			categorical[field] = raw
			continue
		}
		v, err := parseNumber(field, raw)
		if err != nil {
			return RawInput{}, err
		}
		numeric[field] = v
	}
	return RawInput{categorical: categorical, numeric: numeric}, nil
}

func parseNumber(field, raw string) (float64, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, &InvalidInputError{Field: field, Value: raw, Reason: "not a number"}
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &InvalidInputError{Field: field, Value: raw, Reason: "not a finite number"}
	}
	if v < 0 {
		return 0, &InvalidInputError{Field: field, Value: raw, Reason: "must not be negative"}
	}
	return v, nil
}

// FormatNumber 数值的最短文本表示
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
