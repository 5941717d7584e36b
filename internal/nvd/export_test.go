package nvd

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportImportRoundTrip(t *testing.T) {
	records := []Record{
		fakeRecord(0),
		fakeRecord(1),
		fakeRecord(2),
	}
	path := filepath.Join(t.TempDir(), "raw", "cves.json")

	require.NoError(t, Export(records, path))

	loaded, err := Import(path)
	require.NoError(t, err)
	require.Len(t, loaded, len(records))
	for i := range records {
		assert.Equal(t, records[i].ID(), loaded[i].ID())
	}
}

func TestExportWritesMetadata(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cves.json")
	require.NoError(t, Export([]Record{fakeRecord(0)}, path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"metadata"`)
	assert.Contains(t, string(raw), `"count": 1`)
	assert.Contains(t, string(raw), ExportSource)
}

func TestImportRejectsMissingFields(t *testing.T) {
	dir := t.TempDir()

	cases := map[string]string{
		"no_metadata.json":        `{"vulnerabilities": []}`,
		"no_vulnerabilities.json": `{"metadata": {}}`,
		"not_object.json":         `[1, 2, 3]`,
	}
	for name, body := range cases {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

		_, err := Import(path)
		var format *FormatError
		assert.ErrorAs(t, err, &format, name)
	}
}

func TestImportMissingFile(t *testing.T) {
	_, err := Import(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
	// A vanished file is an I/O error, not a FormatError.
	var format *FormatError
	assert.False(t, errors.As(err, &format))
}
