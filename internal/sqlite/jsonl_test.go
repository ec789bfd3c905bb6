// Tests for JSONL read and atomic write helpers.
package sqlite

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadJSONL(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    int
	}{
		{"empty file", "", 0},
		{"single record", `{"_id":"a"}` + "\n", 1},
		{"blank lines skipped", "\n" + `{"_id":"a"}` + "\n\n" + `{"_id":"b"}` + "\n", 2},
		{"malformed lines skipped", `{"_id":"a"}` + "\n{not json\n" + `{"_id":"b"}`, 2},
		{"no trailing newline", `{"_id":"a"}`, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "f.jsonl")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))

			records, err := readJSONL(path)
			require.NoError(t, err)
			assert.Len(t, records, tt.want)
		})
	}
}

func TestReadJSONLMissingFile(t *testing.T) {
	_, err := readJSONL(filepath.Join(t.TempDir(), "missing.jsonl"))
	assert.Error(t, err)
}

func TestWriteJSONLRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, fruitsJSONL)
	records := []json.RawMessage{
		json.RawMessage(`{"_id":"1","name":"apple"}`),
		json.RawMessage(`{"_id":"2","name":"pear"}`),
	}

	require.NoError(t, writeJSONL(path, records))

	got, err := readJSONL(path)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.JSONEq(t, string(records[0]), string(got[0]))
	assert.JSONEq(t, string(records[1]), string(got[1]))

	// No temp files are left behind.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestWriteJSONLReplacesContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), fruitsJSONL)
	require.NoError(t, writeJSONL(path, []json.RawMessage{json.RawMessage(`{"_id":"1"}`)}))
	require.NoError(t, writeJSONL(path, nil))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Zero(t, info.Size())
}

func TestEnsureJSONLFilesKeepsExisting(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, fruitsJSONL)
	require.NoError(t, os.WriteFile(path, []byte(`{"_id":"x"}`+"\n"), 0o644))

	require.NoError(t, ensureJSONLFiles(dir))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `{"_id":"x"}`+"\n", string(data))
}
