package ml

import "errors"

var (
	// ErrInvalidArtifacts marks any problem found while loading or validating the artifact store.
	ErrInvalidArtifacts = errors.New("invalid artifacts")
	// ErrUnknownLabel is returned by an encoder asked to transform a label outside its classes.
	ErrUnknownLabel = errors.New("unknown label")
	// ErrUnknownCode is returned by an encoder asked to invert a code outside its classes.
	ErrUnknownCode = errors.New("unknown code")
	// ErrWidthMismatch is returned when a vector does not have the width an artifact was fit on.
	ErrWidthMismatch = errors.New("feature width mismatch")
)

// CategoricalEncoder maps a closed set of string labels to integer codes.
type CategoricalEncoder interface {
	Classes() []string
	Transform(label string) (int, error)
	Inverse(code int) (string, error)
}

// FeatureScaler transforms an encoded vector of a fixed width.
type FeatureScaler interface {
	ExpectedWidth() int
	Transform(vector []float64) ([]float64, error)
}

// Classifier predicts one label for one scaled sample.
type Classifier interface {
	Classes() []string
	NumFeatures() int
	Predict(features []float64) (string, error)
}

// EncoderSet holds one encoder per categorical field.
type EncoderSet map[string]CategoricalEncoder

// Has reports whether field is categorical.
func (s EncoderSet) Has(field string) bool {
	_, ok := s[field]
	return ok
}
