package helpers

import (
	"bufio"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/ohler55/ojg/oj"
	"gopkg.in/yaml.v3"

	"github.com/spektr-org/vizgroup/engine"
)

// ============================================================================
// LOADERS - JSON, JSON lines, YAML and CSV records, optionally compressed
// ============================================================================
// Consumer reads from wherever the data lives; Load covers local files.
// Every loader returns normalized records (see engine.Normalize).
// ============================================================================

// Supported record formats.
const (
	FormatJSON  = "json"
	FormatJSONL = "jsonl"
	FormatYAML  = "yaml"
	FormatCSV   = "csv"
)

// ErrUnsupportedFormat is returned for file extensions no loader handles.
var ErrUnsupportedFormat = errors.New("unsupported record format")

// Load reads records from a file, picking the format from its extension:
// .json, .jsonl/.ndjson, .yaml/.yml, .csv, each optionally followed by .gz or
// .zst.
func Load(path string) ([]engine.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", path)
	}
	defer f.Close()

	name := strings.ToLower(filepath.Base(path))
	var r io.Reader = f
	switch filepath.Ext(name) {
	case ".gz":
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to open gzip stream %s", path)
		}
		defer gz.Close()
		r = gz
		name = strings.TrimSuffix(name, ".gz")
	case ".zst":
		zr, err := zstd.NewReader(f)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to open zstd stream %s", path)
		}
		defer zr.Close()
		r = zr
		name = strings.TrimSuffix(name, ".zst")
	}

	format, err := FormatOf(name)
	if err != nil {
		return nil, err
	}
	records, err := Read(r, format)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load %s", path)
	}
	return records, nil
}

// FormatOf maps a file name to its record format.
func FormatOf(name string) (string, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json":
		return FormatJSON, nil
	case ".jsonl", ".ndjson":
		return FormatJSONL, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".csv":
		return FormatCSV, nil
	}
	return "", errors.Wrapf(ErrUnsupportedFormat, "%q", name)
}

// Read parses records of the given format from r.
func Read(r io.Reader, format string) ([]engine.Record, error) {
	switch format {
	case FormatCSV:
		return readCSV(r)
	case FormatJSONL:
		return readJSONLines(r)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read records")
	}
	switch format {
	case FormatJSON:
		return ParseJSON(data)
	case FormatYAML:
		return ParseYAML(data)
	}
	return nil, errors.Wrapf(ErrUnsupportedFormat, "%q", format)
}

// ParseJSON parses a JSON array of objects, or a single object.
func ParseJSON(data []byte) ([]engine.Record, error) {
	doc, err := oj.Parse(data)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse JSON records")
	}
	return ToRecords(doc)
}

// ParseYAML parses a YAML sequence of mappings, or a single mapping.
func ParseYAML(data []byte) ([]engine.Record, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, "failed to parse YAML records")
	}
	return ToRecords(doc)
}

func readJSONLines(r io.Reader) ([]engine.Record, error) {
	var records []engine.Record
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		b := bytes.TrimSpace(scanner.Bytes())
		if len(b) == 0 {
			continue
		}
		doc, err := oj.Parse(b)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", line)
		}
		recs, err := ToRecords(doc)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", line)
		}
		records = append(records, recs...)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to read JSON lines")
	}
	return records, nil
}

// ToRecords converts a decoded document into records: a list of objects or a
// single object.
func ToRecords(doc any) ([]engine.Record, error) {
	switch t := engine.Normalize(doc).(type) {
	case nil:
		return nil, nil
	case map[string]any:
		return []engine.Record{t}, nil
	case []any:
		records := make([]engine.Record, 0, len(t))
		for i, item := range t {
			m, ok := item.(map[string]any)
			if !ok {
				return nil, errors.Newf("item %d is %T, not an object", i, item)
			}
			records = append(records, m)
		}
		return records, nil
	default:
		return nil, errors.Newf("expected an object or a list of objects, got %T", t)
	}
}
