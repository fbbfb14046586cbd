package ml

import (
	"fmt"
)

// FeatureSchema is the ordered list of field names the scaler and model were fit on.
// The order is part of the artifact contract: a reordered schema produces wrong
// predictions, not errors.
type FeatureSchema struct {
	Version string   `json:"version"`
	Fields  []string `json:"fields"`
}

func NewFeatureSchema(version string, fields []string) (FeatureSchema, error) {
	schema := FeatureSchema{Version: version, Fields: append([]string(nil), fields...)}
	if err := schema.validate(); err != nil {
		return FeatureSchema{}, err
	}
	return schema, nil
}

func (s FeatureSchema) Len() int {
	return len(s.Fields)
}

// Index returns the position of name, or -1.
func (s FeatureSchema) Index(name string) int {
	for i, field := range s.Fields {
		if field == name {
			return i
		}
	}
	return -1
}

// IsCategorical reports whether name is a schema field with an encoder.
func (s FeatureSchema) IsCategorical(name string, encoders EncoderSet) bool {
	return s.Index(name) >= 0 && encoders.Has(name)
}

// CategoricalFields returns the schema fields that have an encoder, in schema order.
func (s FeatureSchema) CategoricalFields(encoders EncoderSet) []string {
	fields := make([]string, 0, len(encoders))
	for _, name := range s.Fields {
		if encoders.Has(name) {
			fields = append(fields, name)
		}
	}
	return fields
}

// NumericFields returns the schema fields without an encoder, in schema order.
func (s FeatureSchema) NumericFields(encoders EncoderSet) []string {
	fields := make([]string, 0, len(s.Fields))
	for _, name := range s.Fields {
		if !encoders.Has(name) {
			fields = append(fields, name)
		}
	}
	return fields
}

func (s FeatureSchema) validate() error {
	if len(s.Fields) == 0 {
		return fmt.Errorf("%w: schema has no fields", ErrInvalidArtifacts)
	}
	seen := make(map[string]struct{}, len(s.Fields))
	for _, name := range s.Fields {
		if name == "" {
			return fmt.Errorf("%w: schema has an empty field name", ErrInvalidArtifacts)
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("%w: schema lists %q twice", ErrInvalidArtifacts, name)
		}
		seen[name] = struct{}{}
	}
	return nil
}
