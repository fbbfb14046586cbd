package pipeline

import (
	"errors"
	"fmt"
	"strings"
)

// 错误类别
var (
	// ErrUnknownCategory 分类字段的值不在编码器已知类别中（用户输入问题）
	ErrUnknownCategory = errors.New("unknown category")
	// ErrSchemaMismatch 输入或向量与特征模式不一致（部署/配置问题）
	ErrSchemaMismatch = errors.New("schema mismatch")
	// ErrInvalidInput 数值字段无法解析或为负数
	ErrInvalidInput = errors.New("invalid input")
	// ErrPrediction 缩放器或分类器执行失败
	ErrPrediction = errors.New("prediction failed")
)

// 错误类别的稳定名称，用于指标标签与 API 错误码
const (
	KindUnknownCategory = "unknown_category"
	KindSchemaMismatch  = "schema_mismatch"
	KindInvalidInput    = "invalid_input"
	KindPrediction      = "prediction_failed"
	KindInternal        = "internal"
)

// UnknownCategoryError 分类值未知
type UnknownCategoryError struct {
	Field string
	Value string
	Known []string
}

func (e *UnknownCategoryError) Error() string {
	return fmt.Sprintf("unknown category %q for field %s (known: %s)", e.Value, e.Field, strings.Join(e.Known, ", "))
}

func (e *UnknownCategoryError) Is(target error) bool {
	return target == ErrUnknownCategory
}

// SchemaMismatchError 原始输入缺少模式字段
type SchemaMismatchError struct {
	Field string
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("schema mismatch: field %s missing from input", e.Field)
}

func (e *SchemaMismatchError) Is(target error) bool {
	return target == ErrSchemaMismatch
}

// WidthMismatchError 编码向量宽度与缩放器期望宽度不一致
type WidthMismatchError struct {
	Expected int
	Got      int
}

func (e *WidthMismatchError) Error() string {
	return fmt.Sprintf("schema mismatch: scaler expects %d features, vector has %d", e.Expected, e.Got)
}

func (e *WidthMismatchError) Is(target error) bool {
	return target == ErrSchemaMismatch
}

// InvalidInputError 数值输入非法
type InvalidInputError struct {
	Field  string
	Value  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid value %q for field %s: %s", e.Value, e.Field, e.Reason)
}

func (e *InvalidInputError) Is(target error) bool {
	return target == ErrInvalidInput
}

// PredictionError 包装缩放器或分类器返回的错误
type PredictionError struct {
	Err error
}

func (e *PredictionError) Error() string {
	return fmt.Sprintf("prediction failed: %v", e.Err)
}

func (e *PredictionError) Unwrap() error {
	return e.Err
}

func (e *PredictionError) Is(target error) bool {
	return target == ErrPrediction
}

// Kind 返回错误类别名称
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnknownCategory):
		return KindUnknownCategory
	case errors.Is(err, ErrInvalidInput):
		return KindInvalidInput
	case errors.Is(err, ErrSchemaMismatch):
		return KindSchemaMismatch
	case errors.Is(err, ErrPrediction):
		return KindPrediction
	default:
		return KindInternal
	}
}

// IsUserError 判断错误是否由用户输入引起
func IsUserError(err error) bool {
	return errors.Is(err, ErrUnknownCategory) || errors.Is(err, ErrInvalidInput)
}
