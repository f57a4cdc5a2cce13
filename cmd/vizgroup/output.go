package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strconv"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"github.com/spektr-org/vizgroup/encode"
	"github.com/spektr-org/vizgroup/engine"
)

const (
	formatJSON   = "json"
	formatPretty = "pretty"
	formatCSV    = "csv"
	formatYAML   = "yaml"
	formatJSONL  = "jsonl"
)

func checkFormat(format string, allowed ...string) error {
	if slices.Contains(allowed, format) {
		return nil
	}
	return errors.Newf("unknown format %q (want one of %v)", format, allowed)
}

// ============================================================================
// JSON / YAML OUTPUT
// ============================================================================

func writeJSON(w io.Writer, v any, format string) error {
	var out []byte
	var err error

	if format == formatPretty {
		out, err = json.MarshalIndent(v, "", "  ")
	} else {
		out, err = json.Marshal(v)
	}
	if err != nil {
		return errors.Wrap(err, "failed to marshal output")
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return errors.Wrap(err, "failed to marshal output")
	}
	return enc.Close()
}

func writeJSONLines(w io.Writer, records []engine.Record) error {
	for _, r := range records {
		if _, err := fmt.Fprintln(w, engine.Canonical(r)); err != nil {
			return err
		}
	}
	return nil
}

// ============================================================================
// CSV OUTPUT - one row per group or per record, ready for a spreadsheet
// ============================================================================

func writeLegendCSV(w io.Writer, by []string, legend []encode.LegendEntry) error {
	cw := csv.NewWriter(w)
	header := append([]string{"rank", "group", "value"}, by...)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, e := range legend {
		row := []string{strconv.Itoa(e.Rank), string(e.Key), cell(e.Value)}
		for _, v := range e.Values {
			row = append(row, cell(v))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeRecordsCSV(w io.Writer, enc *encode.Encoder, encoding *encode.Encoding) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"record", "group", "rank", "value"}); err != nil {
		return err
	}
	for i := range encoding.Items {
		g := encoding.Result.Lookup(i)
		row := []string{
			strconv.Itoa(i),
			string(g.Key),
			strconv.Itoa(g.Rank),
			engine.ResolveString(g.Order, enc.Palette(encoding.Channel)),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// cell renders a value for CSV: scalars as text, composites as JSON, nil
// as an empty cell.
func cell(v any) string {
	switch v.(type) {
	case nil:
		return ""
	case map[string]any, engine.Record, []any:
		return engine.Canonical(v)
	}
	return engine.FormatScalar(v)
}
