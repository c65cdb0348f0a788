package cache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tristendillon/checklist/core/models"
)

func writeSource(t *testing.T, dir, name, content string) (string, []byte) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path, []byte(content)
}

func statFile(t *testing.T, path string) os.FileInfo {
	t.Helper()
	info, err := os.Stat(path)
	require.NoError(t, err)
	return info
}

func TestParseCacheHitAndMiss(t *testing.T) {
	pc, err := NewParseCache(nil)
	require.NoError(t, err)

	path, content := writeSource(t, t.TempDir(), "a.py", "import skbio\n")
	parsed := &models.ParsedFile{Path: path}
	require.NoError(t, pc.Set(path, content, statFile(t, path), parsed))

	got, ok := pc.ValidateAndGet(path)
	require.True(t, ok)
	assert.Same(t, parsed, got)

	_, ok = pc.ValidateAndGet(filepath.Join(filepath.Dir(path), "missing.py"))
	assert.False(t, ok)

	m := pc.GetMetrics()
	assert.Equal(t, int64(1), m.Hits)
	assert.Equal(t, int64(1), m.Misses)
	assert.Equal(t, 1, m.TotalEntries)
	assert.InDelta(t, 50.0, m.HitRate, 0.001)
}

func TestParseCacheDetectsModifiedFile(t *testing.T) {
	pc, err := NewParseCache(nil)
	require.NoError(t, err)

	path, content := writeSource(t, t.TempDir(), "a.py", "import skbio\n")
	require.NoError(t, pc.Set(path, content, statFile(t, path), &models.ParsedFile{Path: path}))

	require.NoError(t, os.WriteFile(path, []byte("import skbio.io.registry\n"), 0o644))
	_, ok := pc.ValidateAndGet(path)
	assert.False(t, ok)

	m := pc.GetMetrics()
	assert.Equal(t, 0, m.TotalEntries)
	assert.Equal(t, int64(1), m.Invalidations)
}

func TestParseCacheEvictsLeastRecentlyUsed(t *testing.T) {
	pc, err := NewParseCache(&CacheConfig{MaxEntries: 2})
	require.NoError(t, err)

	dir := t.TempDir()
	for _, name := range []string{"a.py", "b.py", "c.py"} {
		path, content := writeSource(t, dir, name, "import skbio\n")
		require.NoError(t, pc.Set(path, content, statFile(t, path), &models.ParsedFile{Path: path}))
	}

	_, ok := pc.ValidateAndGet(filepath.Join(dir, "a.py"))
	assert.False(t, ok)
	_, ok = pc.ValidateAndGet(filepath.Join(dir, "c.py"))
	assert.True(t, ok)
	assert.Equal(t, int64(1), pc.GetMetrics().Invalidations)
}

func TestParseCacheInvalidateAndClear(t *testing.T) {
	pc, err := NewParseCache(nil)
	require.NoError(t, err)

	dir := t.TempDir()
	a, ac := writeSource(t, dir, "a.py", "x = 1\n")
	b, bc := writeSource(t, dir, "b.py", "y = 2\n")
	require.NoError(t, pc.Set(a, ac, statFile(t, a), &models.ParsedFile{Path: a}))
	require.NoError(t, pc.Set(b, bc, statFile(t, b), &models.ParsedFile{Path: b}))

	pc.InvalidateFile(a)
	pc.InvalidateFile(a)
	assert.Equal(t, 1, pc.GetMetrics().TotalEntries)

	pc.Clear()
	m := pc.GetMetrics()
	assert.Equal(t, 0, m.TotalEntries)
	assert.Equal(t, int64(2), m.Invalidations)
}

func TestParseCacheRejectsNil(t *testing.T) {
	pc, err := NewParseCache(nil)
	require.NoError(t, err)
	assert.Error(t, pc.Set("a.py", nil, nil, &models.ParsedFile{}))

	path, content := writeSource(t, t.TempDir(), "a.py", "x = 1\n")
	assert.Error(t, pc.Set(path, content, statFile(t, path), nil))
}

func TestNewParseCacheRejectsZeroSize(t *testing.T) {
	_, err := NewParseCache(&CacheConfig{MaxEntries: 0})
	assert.Error(t, err)
}
