package main

import (
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/spektr-org/vizgroup/encode"
	"github.com/spektr-org/vizgroup/engine"
	"github.com/spektr-org/vizgroup/helpers"
)

type groupOptions struct {
	file    string
	by      []string
	channel string
	format  string
	legend  bool
}

func newGroupCmd(a *app) *cobra.Command {
	o := &groupOptions{}
	cmd := &cobra.Command{
		Use:   "group",
		Short: "Group records on a visual channel",
		Long: `Group records by one or more field paths and resolve the channel value of
every group. Color and stroke_style map through their palettes; row, column
and any other channel get the group ordinal.

Examples:
  vizgroup group --file metrics.json --by run.hparams.lr --channel color
  vizgroup group --file metrics.yaml --by context.subset --by name --channel row --format pretty
  vizgroup group --file runs.csv --by run.experiment --legend --format csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGroup(cmd, a, o)
		},
	}
	cmd.Flags().StringVar(&o.file, "file", "", "Records file (required)")
	cmd.Flags().StringSliceVar(&o.by, "by", nil, "Field path to group by, repeatable; later paths take precedence in ordering")
	cmd.Flags().StringVar(&o.channel, "channel", string(encode.Color), "Channel: color, stroke_style, row, column or a custom property")
	cmd.Flags().StringVar(&o.format, "format", "json", "Output format: json, pretty, csv")
	cmd.Flags().BoolVar(&o.legend, "legend", false, "Print only the groups, not the annotated records")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

// groupOutput is the JSON shape of a grouping.
type groupOutput struct {
	Channel string               `json:"channel"`
	By      []string             `json:"by"`
	Groups  []encode.LegendEntry `json:"groups"`
	Records []engine.Record      `json:"records,omitempty"`
}

func runGroup(cmd *cobra.Command, a *app, o *groupOptions) error {
	if err := checkFormat(o.format, formatJSON, formatPretty, formatCSV); err != nil {
		return err
	}
	records, err := helpers.Load(o.file)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return errors.Newf("%s holds no records", o.file)
	}

	enc := a.encoder()
	ch := encode.Channel(o.channel)
	encoding := enc.Encode(o.file, records, ch, engine.ByFieldPaths(o.by...))
	legend := enc.Legend(encoding)
	a.log.Info("grouped", "file", o.file, "records", len(records), "groups", len(legend), "channel", o.channel)

	w := cmd.OutOrStdout()
	if o.format == formatCSV {
		if o.legend {
			return writeLegendCSV(w, o.by, legend)
		}
		return writeRecordsCSV(w, enc, encoding)
	}

	out := groupOutput{Channel: o.channel, By: o.by, Groups: legend}
	if !o.legend {
		out.Records = encoding.Items
	}
	return writeJSON(w, out, o.format)
}
