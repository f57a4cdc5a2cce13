package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/spektr-org/vizgroup/encode"
)

const metricsJSON = `[
  {"name": "loss", "context": {"subset": "train"}, "run": {"hash": "a1", "hparams": {"lr": 0.1}}},
  {"name": "loss", "context": {"subset": "val"}, "run": {"hash": "a1", "hparams": {"lr": 0.1}}},
  {"name": "acc", "context": {"subset": "train"}, "run": {"hash": "b2", "hparams": {"lr": 0.01}}}
]`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append(args, "--log-level", "error"))
	err := cmd.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})
	require.NoError(t, cmd.Execute())
	assert.Equal(t, "vizgroup "+version+"\n", out.String())
}

func TestGroupLegendJSON(t *testing.T) {
	file := writeFile(t, "metric.json", metricsJSON)

	out, err := run(t, "group", "--file", file, "--by", "name", "--legend")
	require.NoError(t, err)

	var got struct {
		Channel string `json:"channel"`
		Groups  []struct {
			Values []any  `json:"values"`
			Value  string `json:"value"`
			Rank   int    `json:"rank"`
		} `json:"groups"`
		Records []any `json:"records"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "color", got.Channel)
	require.Len(t, got.Groups, 2)
	assert.Equal(t, []any{"acc"}, got.Groups[0].Values)
	assert.Equal(t, encode.DefaultColors[0], got.Groups[0].Value)
	assert.Equal(t, []any{"loss"}, got.Groups[1].Values)
	assert.Equal(t, 1, got.Groups[1].Rank)
	assert.Empty(t, got.Records)
}

func TestGroupRecordsCSV(t *testing.T) {
	file := writeFile(t, "metric.json", metricsJSON)

	out, err := run(t, "group", "--file", file, "--by", "context.subset", "--channel", "row", "--format", "csv")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "record,group,rank,value", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "0,"))
	assert.True(t, strings.HasSuffix(lines[1], ",0,0"), lines[1])
	assert.True(t, strings.HasSuffix(lines[2], ",1,1"), lines[2])
	assert.True(t, strings.HasSuffix(lines[3], ",0,0"), lines[3])
}

func TestGroupRecordsCSVColors(t *testing.T) {
	file := writeFile(t, "metric.json", metricsJSON)

	out, err := run(t, "group", "--file", file, "--by", "name", "--format", "csv")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasSuffix(lines[1], ",1,"+encode.DefaultColors[1]), lines[1])
	assert.True(t, strings.HasSuffix(lines[3], ",0,"+encode.DefaultColors[0]), lines[3])
}

func TestGroupUnknownFormat(t *testing.T) {
	file := writeFile(t, "metric.json", metricsJSON)
	_, err := run(t, "group", "--file", file, "--format", "xml")
	assert.ErrorContains(t, err, "unknown format")
}

func TestDiscoverYAML(t *testing.T) {
	file := writeFile(t, "metric.json", metricsJSON)

	out, err := run(t, "discover", "--file", file, "--format", "yaml")
	require.NoError(t, err)

	var report struct {
		Records int `yaml:"records"`
		Fields  []struct {
			Path      string `yaml:"path"`
			Groupable bool   `yaml:"groupable"`
		} `yaml:"fields"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(out), &report))
	assert.Equal(t, 3, report.Records)
	paths := make([]string, len(report.Fields))
	for i, f := range report.Fields {
		paths[i] = f.Path
	}
	assert.Equal(t, []string{"context.subset", "name", "run.hash", "run.hparams.lr"}, paths)
}

func TestImportThenQuery(t *testing.T) {
	file := writeFile(t, "metric.json", metricsJSON)
	db := filepath.Join(t.TempDir(), "objects.db")

	_, err := run(t, "import", "--db", db, "--type", "metric", "--file", file)
	require.NoError(t, err)

	out, err := run(t, "query", "--db", db, "--type", "metric",
		"--query", "$[?(@.context.subset == 'train')]", "--color-by", "name", "--format", "jsonl")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	var first map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, "metric", first["type"])
	assert.Equal(t, float64(0), first["key"])
	assert.Equal(t, encode.DefaultColors[1], first["color"])

	out, err = run(t, "query", "--db", db, "--type", "images")
	require.NoError(t, err)
	assert.Equal(t, "[]\n", out)
}

func TestQueryDirectory(t *testing.T) {
	file := writeFile(t, "texts.yaml", "- text: hello\n- text: world\n")

	out, err := run(t, "query", "--dir", filepath.Dir(file), "--type", "texts")
	require.NoError(t, err)

	var items []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &items))
	require.Len(t, items, 2)
	assert.Equal(t, "world", items[1]["text"])
	assert.Equal(t, "texts", items[1]["type"])
}
