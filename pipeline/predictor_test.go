package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestPredictorPredict(t *testing.T) {
	model := &stubModel{label: "Horror"}
	predictor, err := NewPredictor(testArtifacts(t, model), 0, zap.NewNop())
	require.NoError(t, err)

	result, err := predictor.Predict(context.Background(), engineerInput())
	require.NoError(t, err)
	assert.Equal(t, "Horror", result.Label)
	assert.Equal(t, "👻", result.Glyph)
	assert.Equal(t, EncodedVector{0, 2, 30, 12}, result.Encoded)
	assert.False(t, result.Cached)
}

func TestPredictorUnknownCategorySkipsModel(t *testing.T) {
	model := &stubModel{label: "Horror"}
	predictor, err := NewPredictor(testArtifacts(t, model), 0, nil)
	require.NoError(t, err)

	raw := NewRawInput(
		map[string]string{"Gender": "Nonbinary", "Occupation": "Engineer"},
		map[string]float64{"Age": 30, "Books_Read_Per_Year": 12},
	)
	_, err = predictor.Predict(context.Background(), raw)
	assert.ErrorIs(t, err, ErrUnknownCategory)
	assert.Zero(t, model.calls)
}

func TestPredictorCachesLabels(t *testing.T) {
	model := &stubModel{label: "Mystery"}
	predictor, err := NewPredictor(testArtifacts(t, model), 8, zap.NewNop())
	require.NoError(t, err)

	first, err := predictor.Predict(context.Background(), engineerInput())
	require.NoError(t, err)
	second, err := predictor.Predict(context.Background(), engineerInput())
	require.NoError(t, err)

	assert.Equal(t, first.Label, second.Label)
	assert.False(t, first.Cached)
	assert.True(t, second.Cached)
	assert.Equal(t, 1, model.calls)
}

func TestPredictorSurvivesModelFailure(t *testing.T) {
	model := &stubModel{panic: true}
	predictor, err := NewPredictor(testArtifacts(t, model), 8, zap.NewNop())
	require.NoError(t, err)

	_, err = predictor.Predict(context.Background(), engineerInput())
	assert.ErrorIs(t, err, ErrPrediction)

	model.panic = false
	model.label = "Comedy"
	result, err := predictor.Predict(context.Background(), engineerInput())
	require.NoError(t, err)
	assert.Equal(t, "Comedy", result.Label)
}

func TestPredictorRespectsCancelledContext(t *testing.T) {
	predictor, err := NewPredictor(testArtifacts(t, &stubModel{label: "Horror"}), 0, zap.NewNop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = predictor.Predict(ctx, engineerInput())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewPredictorRequiresArtifacts(t *testing.T) {
	_, err := NewPredictor(nil, 0, nil)
	assert.Error(t, err)
}

func TestGlyphFor(t *testing.T) {
	assert.Equal(t, "👻", GlyphFor("Horror"))
	assert.Equal(t, "🚀", GlyphFor("Science Fiction"))
	assert.Equal(t, FallbackGlyph, GlyphFor("Poetry"))
	assert.Equal(t, FallbackGlyph, GlyphFor(""))
}
