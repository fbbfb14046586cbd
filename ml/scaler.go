package ml

import (
	"errors"
	"fmt"
)

// StandardScaler applies (x - mean) / scale per column.
type StandardScaler struct {
	Mean  []float64
	Scale []float64
}

func NewStandardScaler(mean, scale []float64) (*StandardScaler, error) {
	if len(mean) == 0 {
		return nil, fmt.Errorf("%w: standard scaler has no columns", ErrInvalidArtifacts)
	}
	if len(mean) != len(scale) {
		return nil, fmt.Errorf("%w: mean/scale length mismatch (%d vs %d)", ErrInvalidArtifacts, len(mean), len(scale))
	}
	for i, s := range scale {
		if s == 0 {
			return nil, fmt.Errorf("%w: zero scale at column %d", ErrInvalidArtifacts, i)
		}
	}
	return &StandardScaler{
		Mean:  append([]float64(nil), mean...),
		Scale: append([]float64(nil), scale...),
	}, nil
}

func (s *StandardScaler) ExpectedWidth() int {
	return len(s.Mean)
}

func (s *StandardScaler) Transform(vector []float64) ([]float64, error) {
	if len(vector) != len(s.Mean) {
		return nil, fmt.Errorf("%w: expected %d, got %d", ErrWidthMismatch, len(s.Mean), len(vector))
	}
	out := make([]float64, len(vector))
	for i, v := range vector {
		out[i] = (v - s.Mean[i]) / s.Scale[i]
	}
	return out, nil
}

// MinMaxScaler maps each column onto [0, 1] using the fitted bounds.
type MinMaxScaler struct {
	Min []float64
	Max []float64
}

func NewMinMaxScaler(mins, maxs []float64) (*MinMaxScaler, error) {
	if len(mins) == 0 {
		return nil, fmt.Errorf("%w: minmax scaler has no columns", ErrInvalidArtifacts)
	}
	if len(mins) != len(maxs) {
		return nil, fmt.Errorf("%w: min/max length mismatch (%d vs %d)", ErrInvalidArtifacts, len(mins), len(maxs))
	}
	for i := range mins {
		if maxs[i] < mins[i] {
			return nil, fmt.Errorf("%w: max below min at column %d", ErrInvalidArtifacts, i)
		}
	}
	return &MinMaxScaler{
		Min: append([]float64(nil), mins...),
		Max: append([]float64(nil), maxs...),
	}, nil
}

func (s *MinMaxScaler) ExpectedWidth() int {
	return len(s.Min)
}

func (s *MinMaxScaler) Transform(vector []float64) ([]float64, error) {
	return NormalizeVector(vector, s.Min, s.Max)
}

func NormalizeFeature(value, min, max float64) float64 {
	if max == min {
		return 0
	}
	return (value - min) / (max - min)
}

func NormalizeVector(values []float64, mins []float64, maxs []float64) ([]float64, error) {
	if len(mins) != len(maxs) {
		return nil, errors.New("mins/maxs length mismatch")
	}
	if len(values) != len(mins) {
		return nil, fmt.Errorf("%w: expected %d, got %d", ErrWidthMismatch, len(mins), len(values))
	}
	result := make([]float64, len(values))
	for i := range values {
		result[i] = NormalizeFeature(values[i], mins[i], maxs[i])
	}
	return result, nil
}
