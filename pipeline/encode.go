package pipeline

import (
	"fmt"

	"bookgenre/ml"
)

// EncodedVector 按模式顺序排列的编码后特征
type EncodedVector []float64

// ScaledVector 缩放后的特征，直接交给分类器
type ScaledVector []float64

// Encode 按模式顺序逐字段编码：分类字段替换为编码器给出的整数编码，数值字段原样透传。
func Encode(raw RawInput, schema ml.FeatureSchema, encoders ml.EncoderSet) (EncodedVector, error) {
	vector := make(EncodedVector, 0, schema.Len())
	for _, field := range schema.Fields {
		if encoder, ok := encoders[field]; ok {
			value, present := raw.Categorical(field)
			if !present {
				return nil, &SchemaMismatchError{Field: field}
			}
			code, err := encoder.Transform(value)
			if err != nil {
				return nil, &UnknownCategoryError{Field: field, Value: value, Known: encoder.Classes()}
			}
			vector = append(vector, float64(code))
			continue
		}
		value, present := raw.Numeric(field)
		if !present {
			return nil, &SchemaMismatchError{Field: field}
		}
		vector = append(vector, value)
	}
	return vector, nil
}

// Scale 校验宽度后调用缩放器。宽度不一致属于部署错误，不做截断或填充。
func Scale(vector EncodedVector, scaler ml.FeatureScaler) (scaled ScaledVector, err error) {
	if len(vector) != scaler.ExpectedWidth() {
		return nil, &WidthMismatchError{Expected: scaler.ExpectedWidth(), Got: len(vector)}
	}
	defer func() {
		if r := recover(); r != nil {
			scaled = nil
			err = &PredictionError{Err: fmt.Errorf("scaler panic: %v", r)}
		}
	}()
	out, err := scaler.Transform(vector)
	if err != nil {
		return nil, &PredictionError{Err: err}
	}
	if len(out) != len(vector) {
		return nil, &PredictionError{Err: fmt.Errorf("scaler returned %d values for %d inputs", len(out), len(vector))}
	}
	return out, nil
}

// Invoke 对单个样本调用分类器；分类器的错误与 panic 都转换为 PredictionError。
func Invoke(scaled ScaledVector, model ml.Classifier) (label string, err error) {
	defer func() {
		if r := recover(); r != nil {
			label = ""
			err = &PredictionError{Err: fmt.Errorf("classifier panic: %v", r)}
		}
	}()
	label, err = model.Predict(scaled)
	if err != nil {
		return "", &PredictionError{Err: err}
	}
	return label, nil
}
