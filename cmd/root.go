// Package cmd wires configuration, artifacts and the HTTP server into the bookgenre CLI.
package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"bookgenre/config"
	"bookgenre/logging"
	"bookgenre/ml"
	"bookgenre/pipeline"
)

const defaultConfigPath = "config.yaml"

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:   "bookgenre",
		Short: "Book genre preference survey",
		Long: `bookgenre asks a few questions about a reader, predicts their favorite
book genre with a pre-trained classifier and records how they felt about it.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to the YAML config file")

	root.AddCommand(
		newServeCmd(&configPath),
		newPredictCmd(&configPath),
		newSchemaCmd(&configPath),
	)
	return root
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	if err := NewRootCmd().Execute(); err != nil {
		return 1
	}
	return 0
}

// env is what every command needs after startup.
type env struct {
	cfg       config.Config
	logger    *zap.Logger
	artifacts *ml.Artifacts
}

// setup loads config, builds the logger and loads the artifacts once.
// Invalid artifacts are a configuration error and stop the command.
func setup(configPath string) (*env, error) {
	path := resolveConfigPath(configPath)
	cfg, found, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	if !found {
		logger.Info("config file not found, using defaults", zap.String("path", path))
	}

	artifacts, err := ml.LoadArtifacts(cfg.Artifacts.Dir)
	if err != nil {
		logger.Error("artifacts rejected", zap.String("dir", cfg.Artifacts.Dir), zap.Error(err))
		_ = logger.Sync()
		return nil, err
	}
	logger.Info("artifacts loaded",
		zap.String("dir", cfg.Artifacts.Dir),
		zap.String("schema_version", artifacts.Schema.Version),
		zap.Strings("fields", artifacts.Schema.Fields),
		zap.Strings("labels", artifacts.Model.Classes()),
	)
	return &env{cfg: cfg, logger: logger, artifacts: artifacts}, nil
}

func (e *env) predictor() (*pipeline.Predictor, error) {
	return pipeline.NewPredictor(e.artifacts, e.cfg.Model.CacheSize, e.logger)
}

// resolveConfigPath also looks one directory up so the binary works when run from cmd/.
func resolveConfigPath(path string) string {
	if path != defaultConfigPath {
		return path
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		parent := filepath.Join("..", path)
		if _, err := os.Stat(parent); err == nil {
			return parent
		}
	}
	return path
}
