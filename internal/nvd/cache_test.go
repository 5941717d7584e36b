package nvd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testResponse(total int, ids ...string) *Response {
	records := make([]Record, 0, len(ids))
	for _, id := range ids {
		records = append(records, Record{"cve": map[string]interface{}{"id": id}})
	}
	return &Response{TotalResults: total, ResultsPerPage: len(records), Vulnerabilities: records}
}

func TestCacheRoundTrip(t *testing.T) {
	cache := NewCache(t.TempDir(), 0, true, zap.NewNop())

	resp := testResponse(1, "CVE-2024-0001")
	cache.Put("sig-a", resp)

	got, ok := cache.Get("sig-a")
	require.True(t, ok)
	assert.Equal(t, resp.TotalResults, got.TotalResults)
	require.Len(t, got.Vulnerabilities, 1)
	assert.Equal(t, "CVE-2024-0001", got.Vulnerabilities[0].ID())
}

func TestCacheMissWhenAbsent(t *testing.T) {
	cache := NewCache(t.TempDir(), 0, true, zap.NewNop())

	_, ok := cache.Get("never-written")
	assert.False(t, ok)
}

func TestCacheExpiryAtReadTime(t *testing.T) {
	cache := NewCache(t.TempDir(), 0, true, zap.NewNop())
	cache.Put("sig-old", testResponse(1, "CVE-2020-1111"))

	// Entry within the window is served, one day past it is a miss.
	cache.now = func() time.Time { return time.Now().Add(6 * 24 * time.Hour) }
	_, ok := cache.Get("sig-old")
	assert.True(t, ok)

	cache.now = func() time.Time { return time.Now().Add(8 * 24 * time.Hour) }
	_, ok = cache.Get("sig-old")
	assert.False(t, ok)
}

func TestCacheCorruptEntryIsMiss(t *testing.T) {
	dir := t.TempDir()
	cache := NewCache(dir, 0, true, zap.NewNop())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "sig-bad.json"), []byte("{not json"), 0o644))

	_, ok := cache.Get("sig-bad")
	assert.False(t, ok)
}

func TestCacheOverwrite(t *testing.T) {
	cache := NewCache(t.TempDir(), 0, true, zap.NewNop())

	cache.Put("sig", testResponse(1, "CVE-2024-0001"))
	cache.Put("sig", testResponse(1, "CVE-2024-0002"))

	got, ok := cache.Get("sig")
	require.True(t, ok)
	assert.Equal(t, "CVE-2024-0002", got.Vulnerabilities[0].ID())
}

func TestCacheDisabled(t *testing.T) {
	dir := t.TempDir()
	cache := NewCache(dir, 0, false, zap.NewNop())

	cache.Put("sig", testResponse(1, "CVE-2024-0001"))
	_, ok := cache.Get("sig")
	assert.False(t, ok)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCacheEnvelopeIsPlainJSON(t *testing.T) {
	dir := t.TempDir()
	cache := NewCache(dir, 0, true, zap.NewNop())
	cache.Put("sig", testResponse(3, "CVE-2024-0001"))

	raw, err := os.ReadFile(filepath.Join(dir, "sig.json"))
	require.NoError(t, err)

	var env map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &env))
	assert.Contains(t, env, "captured_at")
	assert.Contains(t, env, "response")
}
