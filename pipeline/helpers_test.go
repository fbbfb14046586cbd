package pipeline

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"bookgenre/ml"
)

var testFields = []string{"Gender", "Occupation", "Age", "Books_Read_Per_Year"}

func testSchema(t *testing.T) ml.FeatureSchema {
	t.Helper()
	schema, err := ml.NewFeatureSchema("test", testFields)
	require.NoError(t, err)
	return schema
}

func testEncoders(t *testing.T) ml.EncoderSet {
	t.Helper()
	gender, err := ml.NewLabelEncoder([]string{"Female", "Male"})
	require.NoError(t, err)
	occupation, err := ml.NewLabelEncoder([]string{"Artist", "Doctor", "Engineer", "Teacher"})
	require.NoError(t, err)
	return ml.EncoderSet{"Gender": gender, "Occupation": occupation}
}

// identityScaler returns its input unchanged.
type identityScaler struct{ width int }

func (s identityScaler) ExpectedWidth() int { return s.width }

func (s identityScaler) Transform(v []float64) ([]float64, error) {
	return append([]float64(nil), v...), nil
}

type stubModel struct {
	label string
	err   error
	panic bool
	calls int
}

func (m *stubModel) Classes() []string { return []string{m.label} }
func (m *stubModel) NumFeatures() int  { return len(testFields) }

func (m *stubModel) Predict([]float64) (string, error) {
	m.calls++
	if m.panic {
		panic("index out of range")
	}
	return m.label, m.err
}

func testArtifacts(t *testing.T, model ml.Classifier) *ml.Artifacts {
	t.Helper()
	artifacts, err := ml.NewArtifacts(testSchema(t), testEncoders(t), identityScaler{width: len(testFields)}, model)
	require.NoError(t, err)
	return artifacts
}

func engineerInput() RawInput {
	return NewRawInput(
		map[string]string{"Gender": "Female", "Occupation": "Engineer"},
		map[string]float64{"Age": 30, "Books_Read_Per_Year": 12},
	)
}

var errBoom = errors.New("boom")
