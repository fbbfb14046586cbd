package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"bookgenre/pipeline"
)

func newPredictCmd(configPath *string) *cobra.Command {
	var sets []string

	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Predict a genre for one set of answers",
		Example: `  bookgenre predict --set Gender=Female --set Occupation=Engineer \
    --set Age=30 --set Books_Read_Per_Year=12`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := parseSets(sets)
			if err != nil {
				return err
			}
			e, err := setup(*configPath)
			if err != nil {
				return err
			}
			defer e.logger.Sync()
			return runPredict(cmd.Context(), e, values, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringArrayVarP(&sets, "set", "s", nil, "answer as Field=Value (repeatable)")
	return cmd
}

func runPredict(ctx context.Context, e *env, values map[string]string, out io.Writer) error {
	predictor, err := e.predictor()
	if err != nil {
		return err
	}
	artifacts := predictor.Artifacts()
	raw, err := pipeline.Capture(artifacts.Schema, artifacts.Encoders, values)
	if err != nil {
		return err
	}
	result, err := predictor.Predict(ctx, raw)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "%s %s\n", result.Glyph, result.Label)
	return err
}

// parseSets splits repeated Field=Value flags. A later value for the same field wins.
func parseSets(sets []string) (map[string]string, error) {
	values := make(map[string]string, len(sets))
	for _, s := range sets {
		name, value, ok := strings.Cut(s, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --set %q, want Field=Value", s)
		}
		values[name] = value
	}
	return values, nil
}
