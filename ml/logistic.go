package ml

import (
	"fmt"
	"math"
)

// LogisticRegression is a fitted linear classifier. With more than two classes it
// holds one coefficient row per class and predicts the argmax score. With two
// classes it may hold a single row, in which case a positive score selects classes[1].
type LogisticRegression struct {
	classes   []string
	coef      [][]float64
	intercept []float64
}

func NewLogisticRegression(classes []string, coef [][]float64, intercept []float64) (*LogisticRegression, error) {
	if len(classes) < 2 {
		return nil, fmt.Errorf("%w: logistic regression needs at least two classes", ErrInvalidArtifacts)
	}
	binary := len(classes) == 2 && len(coef) == 1
	if !binary && len(coef) != len(classes) {
		return nil, fmt.Errorf("%w: %d coefficient rows for %d classes", ErrInvalidArtifacts, len(coef), len(classes))
	}
	if len(intercept) != len(coef) {
		return nil, fmt.Errorf("%w: %d intercepts for %d coefficient rows", ErrInvalidArtifacts, len(intercept), len(coef))
	}
	width := len(coef[0])
	if width == 0 {
		return nil, fmt.Errorf("%w: empty coefficient row", ErrInvalidArtifacts)
	}
	rows := make([][]float64, len(coef))
	for i, row := range coef {
		if len(row) != width {
			return nil, fmt.Errorf("%w: coefficient row %d has width %d, want %d", ErrInvalidArtifacts, i, len(row), width)
		}
		rows[i] = append([]float64(nil), row...)
	}
	return &LogisticRegression{
		classes:   append([]string(nil), classes...),
		coef:      rows,
		intercept: append([]float64(nil), intercept...),
	}, nil
}

func (m *LogisticRegression) Classes() []string {
	return append([]string(nil), m.classes...)
}

func (m *LogisticRegression) NumFeatures() int {
	return len(m.coef[0])
}

func (m *LogisticRegression) Predict(features []float64) (string, error) {
	if len(features) != m.NumFeatures() {
		return "", fmt.Errorf("%w: expected %d, got %d", ErrWidthMismatch, m.NumFeatures(), len(features))
	}
	if len(m.coef) == 1 {
		if m.score(0, features) > 0 {
			return m.classes[1], nil
		}
		return m.classes[0], nil
	}
	best := 0
	bestScore := math.Inf(-1)
	for i := range m.coef {
		if s := m.score(i, features); s > bestScore {
			best, bestScore = i, s
		}
	}
	return m.classes[best], nil
}

func (m *LogisticRegression) score(row int, features []float64) float64 {
	sum := m.intercept[row]
	for j, v := range features {
		sum += m.coef[row][j] * v
	}
	return sum
}
