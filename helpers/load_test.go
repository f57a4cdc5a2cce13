package helpers

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spektr-org/vizgroup/engine"
)

var metricsJSON = []byte(`[
  {"name": "loss", "run": {"hash": "a1", "hparams": {"lr": 0.01}}, "context": {"subset": "train"}},
  {"name": "loss", "run": {"hash": "b2", "hparams": {"lr": 0.1}}, "context": {"subset": "val"}}
]`)

var metricsYAML = []byte(`
- name: loss
  run:
    hash: a1
    hparams:
      lr: 0.01
  context:
    subset: train
- name: loss
  run:
    hash: b2
    hparams:
      lr: 0.1
  context:
    subset: val
`)

var metricsCSV = []byte(`name,run.hash,run.hparams.lr,context.subset,epochs
loss,a1,0.01,train,10
loss,b2,0.1,val,
`)

func TestParseJSON(t *testing.T) {
	records, err := ParseJSON(metricsJSON)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "b2", engine.Find(records[1], "run.hash"))
	assert.Equal(t, 0.01, engine.Find(records[0], "run.hparams.lr"))

	single, err := ParseJSON([]byte(`{"a": 1}`))
	require.NoError(t, err)
	assert.Equal(t, []engine.Record{{"a": int64(1)}}, single)

	_, err = ParseJSON([]byte(`[1, 2]`))
	assert.Error(t, err)
}

func TestParseYAMLMatchesJSON(t *testing.T) {
	fromYAML, err := ParseYAML(metricsYAML)
	require.NoError(t, err)
	fromJSON, err := ParseJSON(metricsJSON)
	require.NoError(t, err)

	assert.Equal(t, fromJSON, fromYAML)
}

func TestParseCSVNestsDottedHeaders(t *testing.T) {
	records, err := ParseCSV(metricsCSV)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "a1", engine.Find(records[0], "run.hash"))
	assert.Equal(t, 0.1, engine.Find(records[1], "run.hparams.lr"))
	assert.Equal(t, int64(10), records[0]["epochs"])
	assert.Nil(t, records[1]["epochs"])
}

func TestLoadCompressed(t *testing.T) {
	dir := t.TempDir()

	gzPath := filepath.Join(dir, "metric.json.gz")
	f, err := os.Create(gzPath)
	require.NoError(t, err)
	gw := gzip.NewWriter(f)
	_, err = gw.Write(metricsJSON)
	require.NoError(t, err)
	require.NoError(t, gw.Close())
	require.NoError(t, f.Close())

	zstPath := filepath.Join(dir, "metric.yaml.zst")
	f, err = os.Create(zstPath)
	require.NoError(t, err)
	zw, err := zstd.NewWriter(f)
	require.NoError(t, err)
	_, err = zw.Write(metricsYAML)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	fromGz, err := Load(gzPath)
	require.NoError(t, err)
	fromZst, err := Load(zstPath)
	require.NoError(t, err)
	assert.Len(t, fromGz, 2)
	assert.Equal(t, fromGz, fromZst)
}

func TestParseCSVSkipsMalformedRows(t *testing.T) {
	records, err := ParseCSV([]byte("name,v\nx\"y,1\nok,2\n"))
	require.NoError(t, err)
	assert.Equal(t, []engine.Record{{"name": "ok", "v": int64(2)}}, records)
}

func TestLoadTruncatedCSVFails(t *testing.T) {
	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	_, err := gw.Write([]byte("a,b\n"))
	require.NoError(t, err)
	for i := 0; i < 2000; i++ {
		_, err = gw.Write([]byte("1,2\n"))
		require.NoError(t, err)
		if i%100 == 0 {
			require.NoError(t, gw.Flush())
		}
	}
	require.NoError(t, gw.Close())

	path := filepath.Join(t.TempDir(), "metric.csv.gz")
	require.NoError(t, os.WriteFile(path, buf.Bytes()[:buf.Len()/2], 0o644))

	done := make(chan error, 1)
	go func() {
		_, err := Load(path)
		done <- err
	}()
	select {
	case err := <-done:
		assert.Error(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Load did not return on a truncated stream")
	}
}

func TestLoadJSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "texts.jsonl")
	require.NoError(t, os.WriteFile(path, []byte("{\"text\":\"a\"}\n\n{\"text\":\"b\"}\n"), 0o644))

	records, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []engine.Record{{"text": "a"}, {"text": "b"}}, records)
}

func TestLoadUnsupported(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.parquet")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	_, err := Load(path)
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))

	_, err = Load(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}
