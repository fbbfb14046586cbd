package ml

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/multierr"
)

// Artifact file names inside the artifact directory.
const (
	SchemaFile   = "schema.json"
	EncodersFile = "encoders.json"
	ScalerFile   = "scaler.json"
	ModelFile    = "model.json"
)

// Artifacts is the immutable set of pre-fit objects the pipeline runs against.
// It is built once at startup and shared read-only.
type Artifacts struct {
	Schema   FeatureSchema
	Encoders EncoderSet
	Scaler   FeatureScaler
	Model    Classifier
}

type encoderDoc struct {
	Classes []string `json:"classes"`
}

type scalerDoc struct {
	Type  string    `json:"type"`
	Mean  []float64 `json:"mean,omitempty"`
	Scale []float64 `json:"scale,omitempty"`
	Min   []float64 `json:"min,omitempty"`
	Max   []float64 `json:"max,omitempty"`
}

type modelDoc struct {
	Type        string      `json:"type"`
	Classes     []string    `json:"classes"`
	NFeaturesIn int         `json:"n_features_in,omitempty"`
	Nodes       []TreeNode  `json:"nodes,omitempty"`
	Coef        [][]float64 `json:"coef,omitempty"`
	Intercept   []float64   `json:"intercept,omitempty"`
}

// LoadArtifacts reads and validates the four artifact files in dir. All problems
// found are reported together.
func LoadArtifacts(dir string) (*Artifacts, error) {
	var errs error

	var schemaSrc FeatureSchema
	errs = multierr.Append(errs, readJSON(filepath.Join(dir, SchemaFile), &schemaSrc))

	var encoderSrc map[string]encoderDoc
	errs = multierr.Append(errs, readJSON(filepath.Join(dir, EncodersFile), &encoderSrc))

	var scalerSrc scalerDoc
	errs = multierr.Append(errs, readJSON(filepath.Join(dir, ScalerFile), &scalerSrc))

	var modelSrc modelDoc
	errs = multierr.Append(errs, readJSON(filepath.Join(dir, ModelFile), &modelSrc))

	if errs != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArtifacts, errs)
	}

	schema, err := NewFeatureSchema(schemaSrc.Version, schemaSrc.Fields)
	errs = multierr.Append(errs, err)

	encoders := make(EncoderSet, len(encoderSrc))
	for field, doc := range encoderSrc {
		enc, err := NewLabelEncoder(doc.Classes)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("encoder %q: %w", field, err))
			continue
		}
		encoders[field] = enc
	}

	scaler, err := loadScaler(scalerSrc)
	errs = multierr.Append(errs, err)

	model, err := loadModel(modelSrc)
	errs = multierr.Append(errs, err)

	if errs != nil {
		return nil, errs
	}
	return NewArtifacts(schema, encoders, scaler, model)
}

// NewArtifacts cross-checks already constructed artifacts: every encoder must name a
// schema field, and the scaler and model must both expect the schema's width.
func NewArtifacts(schema FeatureSchema, encoders EncoderSet, scaler FeatureScaler, model Classifier) (*Artifacts, error) {
	var errs error
	if err := schema.validate(); err != nil {
		errs = multierr.Append(errs, err)
	}
	if scaler == nil {
		errs = multierr.Append(errs, fmt.Errorf("%w: missing scaler", ErrInvalidArtifacts))
	}
	if model == nil {
		errs = multierr.Append(errs, fmt.Errorf("%w: missing model", ErrInvalidArtifacts))
	}
	for field := range encoders {
		if schema.Index(field) < 0 {
			errs = multierr.Append(errs, fmt.Errorf("%w: encoder for %q which is not in the schema", ErrInvalidArtifacts, field))
		}
	}
	if scaler != nil && scaler.ExpectedWidth() != schema.Len() {
		errs = multierr.Append(errs, fmt.Errorf("%w: scaler expects %d features, schema has %d",
			ErrInvalidArtifacts, scaler.ExpectedWidth(), schema.Len()))
	}
	if model != nil && model.NumFeatures() != schema.Len() {
		errs = multierr.Append(errs, fmt.Errorf("%w: model expects %d features, schema has %d",
			ErrInvalidArtifacts, model.NumFeatures(), schema.Len()))
	}
	if errs != nil {
		return nil, errs
	}
	return &Artifacts{
		Schema:   schema,
		Encoders: encoders,
		Scaler:   scaler,
		Model:    model,
	}, nil
}

func loadScaler(doc scalerDoc) (FeatureScaler, error) {
	switch doc.Type {
	case "standard":
		return NewStandardScaler(doc.Mean, doc.Scale)
	case "minmax":
		return NewMinMaxScaler(doc.Min, doc.Max)
	default:
		return nil, fmt.Errorf("%w: unsupported scaler type %q", ErrInvalidArtifacts, doc.Type)
	}
}

func loadModel(doc modelDoc) (Classifier, error) {
	switch doc.Type {
	case "decision_tree":
		return NewDecisionTree(doc.Classes, doc.NFeaturesIn, doc.Nodes)
	case "logistic_regression":
		model, err := NewLogisticRegression(doc.Classes, doc.Coef, doc.Intercept)
		if err != nil {
			return nil, err
		}
		if doc.NFeaturesIn != 0 && doc.NFeaturesIn != model.NumFeatures() {
			return nil, fmt.Errorf("%w: n_features_in %d disagrees with coefficient width %d",
				ErrInvalidArtifacts, doc.NFeaturesIn, model.NumFeatures())
		}
		return model, nil
	default:
		return nil, fmt.Errorf("%w: unsupported model type %q", ErrInvalidArtifacts, doc.Type)
	}
}

func readJSON(path string, v any) error {
	payload, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(payload, v); err != nil {
		return fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return nil
}
