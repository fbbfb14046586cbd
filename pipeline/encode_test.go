package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookgenre/ml"
)

func TestEncodeFemaleEngineer(t *testing.T) {
	vector, err := Encode(engineerInput(), testSchema(t), testEncoders(t))
	require.NoError(t, err)
	assert.Equal(t, EncodedVector{0, 2, 30, 12}, vector)
}

func TestEncodeFollowsSchemaOrder(t *testing.T) {
	reordered, err := ml.NewFeatureSchema("reordered", []string{"Books_Read_Per_Year", "Occupation", "Age", "Gender"})
	require.NoError(t, err)

	vector, err := Encode(engineerInput(), reordered, testEncoders(t))
	require.NoError(t, err)
	require.Len(t, vector, reordered.Len())
	assert.Equal(t, EncodedVector{12, 2, 30, 0}, vector)
}

func TestEncodeIsDeterministic(t *testing.T) {
	schema, encoders := testSchema(t), testEncoders(t)
	first, err := Encode(engineerInput(), schema, encoders)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := Encode(engineerInput(), schema, encoders)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestEncodeRoundTripsCategoricalCodes(t *testing.T) {
	schema, encoders := testSchema(t), testEncoders(t)
	vector, err := Encode(engineerInput(), schema, encoders)
	require.NoError(t, err)

	for _, field := range schema.CategoricalFields(encoders) {
		decoded, err := encoders[field].Inverse(int(vector[schema.Index(field)]))
		require.NoError(t, err)
		original, _ := engineerInput().Categorical(field)
		assert.Equal(t, original, decoded)
	}
}

func TestEncodeUnknownCategory(t *testing.T) {
	raw := NewRawInput(
		map[string]string{"Gender": "Nonbinary", "Occupation": "Engineer"},
		map[string]float64{"Age": 30, "Books_Read_Per_Year": 12},
	)
	vector, err := Encode(raw, testSchema(t), testEncoders(t))
	require.Error(t, err)
	assert.Nil(t, vector)
	assert.ErrorIs(t, err, ErrUnknownCategory)
	assert.NotErrorIs(t, err, ErrSchemaMismatch)

	var unknown *UnknownCategoryError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "Gender", unknown.Field)
	assert.Equal(t, "Nonbinary", unknown.Value)
	assert.Equal(t, []string{"Female", "Male"}, unknown.Known)
}

func TestEncodeMissingField(t *testing.T) {
	raw := NewRawInput(
		map[string]string{"Gender": "Female", "Occupation": "Engineer"},
		map[string]float64{"Age": 30},
	)
	_, err := Encode(raw, testSchema(t), testEncoders(t))
	assert.ErrorIs(t, err, ErrSchemaMismatch)

	var missing *SchemaMismatchError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "Books_Read_Per_Year", missing.Field)
}

func TestEncodeCategoricalProvidedAsNumberIsMissing(t *testing.T) {
	raw := NewRawInput(
		map[string]string{"Occupation": "Engineer"},
		map[string]float64{"Gender": 0, "Age": 30, "Books_Read_Per_Year": 12},
	)
	_, err := Encode(raw, testSchema(t), testEncoders(t))
	assert.ErrorIs(t, err, ErrSchemaMismatch)
}

func TestEncodePassesZeroThrough(t *testing.T) {
	raw := NewRawInput(
		map[string]string{"Gender": "Male", "Occupation": "Artist"},
		map[string]float64{"Age": 0, "Books_Read_Per_Year": 0.0},
	)
	vector, err := Encode(raw, testSchema(t), testEncoders(t))
	require.NoError(t, err)
	assert.Equal(t, EncodedVector{1, 0, 0, 0}, vector)
}

func TestScaleWidthMismatch(t *testing.T) {
	scaled, err := Scale(EncodedVector{0, 2, 30, 12}, identityScaler{width: 5})
	require.Error(t, err)
	assert.Nil(t, scaled)
	assert.ErrorIs(t, err, ErrSchemaMismatch)
	assert.NotErrorIs(t, err, ErrUnknownCategory)

	var width *WidthMismatchError
	require.ErrorAs(t, err, &width)
	assert.Equal(t, 5, width.Expected)
	assert.Equal(t, 4, width.Got)
}

func TestScaleAppliesScaler(t *testing.T) {
	scaler, err := ml.NewStandardScaler([]float64{0, 0, 20, 10}, []float64{1, 2, 10, 2})
	require.NoError(t, err)

	scaled, err := Scale(EncodedVector{0, 2, 30, 12}, scaler)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0, 1, 1, 1}, []float64(scaled), 1e-9)
}

type panickyScaler struct{}

func (panickyScaler) ExpectedWidth() int                     { return 1 }
func (panickyScaler) Transform([]float64) ([]float64, error) { panic("bad matrix") }

func TestScalePanicBecomesPredictionError(t *testing.T) {
	_, err := Scale(EncodedVector{1}, panickyScaler{})
	assert.ErrorIs(t, err, ErrPrediction)
}

func TestInvoke(t *testing.T) {
	label, err := Invoke(ScaledVector{0, 0, 0, 0}, &stubModel{label: "Horror"})
	require.NoError(t, err)
	assert.Equal(t, "Horror", label)

	_, err = Invoke(ScaledVector{0, 0, 0, 0}, &stubModel{err: errBoom})
	assert.ErrorIs(t, err, ErrPrediction)
	assert.ErrorIs(t, err, errBoom)

	_, err = Invoke(ScaledVector{0, 0, 0, 0}, &stubModel{panic: true})
	assert.ErrorIs(t, err, ErrPrediction)
}
