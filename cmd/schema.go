package cmd

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"bookgenre/ml"
)

func newSchemaCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the feature order and known classes of the loaded artifacts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(*configPath)
			if err != nil {
				return err
			}
			defer e.logger.Sync()
			return printSchema(cmd.OutOrStdout(), e.artifacts)
		},
	}
}

func printSchema(out io.Writer, artifacts *ml.Artifacts) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "schema version:\t%s\n", artifacts.Schema.Version)
	fmt.Fprintf(tw, "labels:\t%s\n\n", strings.Join(artifacts.Model.Classes(), ", "))
	fmt.Fprintln(tw, "#\tFIELD\tTYPE\tCLASSES")
	for i, name := range artifacts.Schema.Fields {
		if enc, ok := artifacts.Encoders[name]; ok {
			fmt.Fprintf(tw, "%d\t%s\tcategorical\t%s\n", i, name, strings.Join(enc.Classes(), ", "))
			continue
		}
		fmt.Fprintf(tw, "%d\t%s\tnumeric\t-\n", i, name)
	}
	return tw.Flush()
}
