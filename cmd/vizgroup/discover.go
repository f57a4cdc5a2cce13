package main

import (
	"github.com/spf13/cobra"

	"github.com/spektr-org/vizgroup/helpers"
	"github.com/spektr-org/vizgroup/schema"
)

type discoverOptions struct {
	file    string
	format  string
	sample  int
	include []string
}

func newDiscoverCmd(a *app) *cobra.Command {
	o := &discoverOptions{}
	cmd := &cobra.Command{
		Use:   "discover",
		Short: "List the field paths of a record file and which ones group well",
		Long: `Inspect records and report every field path with its value kind,
cardinality and sample values. Paths that make readable groupings are
marked groupable.

Examples:
  vizgroup discover --file metrics.json --format pretty
  vizgroup discover --file runs.csv --include run.hash --format yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(o.format, formatJSON, formatPretty, formatYAML); err != nil {
				return err
			}
			records, err := helpers.Load(o.file)
			if err != nil {
				return err
			}
			report := schema.Discover(records, schema.DiscoverOptions{
				SampleSize: o.sample,
				MaxSamples: 10,
				Include:    o.include,
			})
			a.log.Info("discovered", "file", o.file, "records", report.Records,
				"paths", len(report.Fields), "groupable", len(report.GroupablePaths()))

			if o.format == formatYAML {
				return writeYAML(cmd.OutOrStdout(), report)
			}
			return writeJSON(cmd.OutOrStdout(), report, o.format)
		},
	}
	cmd.Flags().StringVar(&o.file, "file", "", "Records file (required)")
	cmd.Flags().StringVar(&o.format, "format", "json", "Output format: json, pretty, yaml")
	cmd.Flags().IntVar(&o.sample, "sample", schema.DefaultDiscoverOptions().SampleSize, "Max records to inspect (0 = all)")
	cmd.Flags().StringSliceVar(&o.include, "include", nil, "Force a skipped path back to groupable, repeatable")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
