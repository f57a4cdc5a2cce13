package helpers

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/spektr-org/vizgroup/engine"
)

// ============================================================================
// CSV HELPER - Parses CSV data into []engine.Record
// ============================================================================
// Headers become field names; dotted headers ("run.hash") nest, so field paths
// resolve the same way they do on JSON records. Numeric cells become numbers,
// empty cells become nil.
// ============================================================================

// ParseCSV parses CSV bytes into Records.
func ParseCSV(data []byte) ([]engine.Record, error) {
	return readCSV(strings.NewReader(string(data)))
}

func readCSV(r io.Reader) ([]engine.Record, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read CSV headers")
	}
	keys := make([][]string, len(headers))
	for i, h := range headers {
		keys[i] = strings.Split(strings.TrimSpace(h), ".")
	}

	var records []engine.Record
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				continue // skip malformed rows
			}
			return nil, errors.Wrap(err, "failed to read CSV row")
		}

		rec := engine.Record{}
		for i, val := range row {
			if i >= len(keys) {
				break
			}
			engine.SetPath(rec, keys[i], parseCell(strings.TrimSpace(val)))
		}
		records = append(records, rec)
	}

	return records, nil
}

func parseCell(val string) any {
	if val == "" {
		return nil
	}
	if n, err := strconv.ParseInt(val, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(val, 64); err == nil {
		return f
	}
	return val
}

