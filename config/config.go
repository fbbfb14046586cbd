// Package config loads the service configuration from YAML.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v2"

	"bookgenre/logging"
)

type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Artifacts ArtifactsConfig `yaml:"artifacts"`
	Feedback  FeedbackConfig  `yaml:"feedback"`
	Model     ModelConfig     `yaml:"model"`
	UI        UIConfig        `yaml:"ui"`
	Log       logging.Config  `yaml:"log"`
}

type HTTPConfig struct {
	Port         int           `yaml:"port" validate:"min=1,max=65535"`
	Timeout      time.Duration `yaml:"timeout" validate:"gt=0"`
	MaxBodyBytes int64         `yaml:"max_body_bytes" validate:"gt=0"`
}

type ArtifactsConfig struct {
	Dir string `yaml:"dir" validate:"required"`
}

type FeedbackConfig struct {
	Path string `yaml:"path" validate:"required"`
}

type ModelConfig struct {
	// CacheSize bounds the prediction cache; 0 disables it.
	CacheSize int `yaml:"cache_size" validate:"min=0"`
}

type UIConfig struct {
	// AnalysisDelay is a cosmetic pause before the result page is rendered.
	AnalysisDelay time.Duration `yaml:"analysis_delay" validate:"min=0"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		HTTP: HTTPConfig{
			Port:         8501,
			Timeout:      30 * time.Second,
			MaxBodyBytes: 64 << 10,
		},
		Artifacts: ArtifactsConfig{Dir: "./artifacts"},
		Feedback:  FeedbackConfig{Path: "./feedback_log.csv"},
		Model:     ModelConfig{CacheSize: 256},
		Log:       logging.DefaultConfig(),
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load reads path over the defaults. A missing file yields the defaults and found=false.
func Load(path string) (cfg Config, found bool, err error) {
	cfg = Default()
	file, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, false, cfg.Validate()
	}
	if err != nil {
		return Config{}, false, err
	}
	defer file.Close()

	if err := yaml.NewDecoder(file).Decode(&cfg); err != nil {
		return Config{}, true, fmt.Errorf("decode %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, true, err
	}
	return cfg, true, nil
}

func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("invalid config: %s failed %q", verrs[0].Namespace(), verrs[0].Tag())
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
