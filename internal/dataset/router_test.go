package dataset

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestRouterResolvesLocalReferences(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ocarbon.csv"), []byte("avg_oc\n1\n"), 0o644))

	src := new(MockSource)
	want := tenRows(t, "ocarbon")
	src.On("Read", mock.Anything, "ocarbon", filepath.Join(dir, "ocarbon.csv")).Return(want, nil)

	router := NewRouter(NewLocalFileStorageWithPath(dir), Route{
		Name:   "csv",
		Match:  func(ref string) bool { return strings.HasSuffix(ref, ".csv") },
		Source: src,
		Local:  true,
	})

	got, err := router.Read(context.Background(), "ocarbon", "ocarbon.csv")
	require.NoError(t, err)
	assert.Same(t, want, got)

	fp, err := router.Fingerprint(context.Background(), "ocarbon.csv")
	require.NoError(t, err)
	assert.NotEmpty(t, fp)
}

func TestRouterErrors(t *testing.T) {
	dir := t.TempDir()
	src := new(MockSource)
	router := NewRouter(NewLocalFileStorageWithPath(dir),
		Route{Name: "csv", Match: func(ref string) bool { return strings.HasSuffix(ref, ".csv") }, Source: src, Local: true},
		Route{Name: "table", Match: func(ref string) bool { return strings.HasPrefix(ref, "table:") }},
	)

	_, err := router.Read(context.Background(), "x", "x.bin")
	assert.ErrorContains(t, err, "no source handles")

	_, err = router.Read(context.Background(), "x", "missing.csv")
	assert.Error(t, err)

	_, err = router.Read(context.Background(), "x", "table:ocarbon")
	assert.ErrorContains(t, err, "not configured")

	src.AssertNotCalled(t, "Read", mock.Anything, mock.Anything, mock.Anything)
}

func TestLocalFileStorage(t *testing.T) {
	dir := t.TempDir()
	storage := NewLocalFileStorageWithPath(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "narrative.md"), []byte("Soil *carbon*.\n"), 0o644))

	assert.Equal(t, filepath.Join(dir, "book.xlsx")+"#Sheet2", storage.Resolve("book.xlsx#Sheet2"))
	assert.Equal(t, "/abs/ocarbon.parquet", storage.Resolve("/abs/ocarbon.parquet"))

	ok, err := storage.Exists(context.Background(), "narrative.md")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = storage.Exists(context.Background(), "nope.md")
	require.NoError(t, err)
	assert.False(t, ok)

	text, err := storage.ReadText(context.Background(), "narrative.md")
	require.NoError(t, err)
	assert.Equal(t, "Soil *carbon*.\n", text)

	assert.Error(t, storage.Check(context.Background(), dir))

	limited := NewLocalFileStorage(&StorageConfig{BasePath: dir, MaxFileSize: 4})
	assert.Error(t, limited.Check(context.Background(), filepath.Join(dir, "narrative.md")))
}
