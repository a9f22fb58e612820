package output

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWriter(t *testing.T) *Writer {
	t.Helper()
	return NewWriter(filepath.Join(t.TempDir(), "public"), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestPrepare_RemovesStaleFiles(t *testing.T) {
	w := newTestWriter(t)
	require.NoError(t, os.MkdirAll(filepath.Join(w.Dir, "old", "deep"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(w.Dir, "old", "deep", "stale.html"), []byte("x"), 0o644))

	require.NoError(t, w.Prepare())

	entries, err := os.ReadDir(w.Dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestPrepare_CreatesMissingDir(t *testing.T) {
	w := newTestWriter(t)
	require.NoError(t, w.Prepare())
	info, err := os.Stat(w.Dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestPrepare_RefusesFilesystemRoot(t *testing.T) {
	w := NewWriter("/", nil)
	require.ErrorIs(t, w.Prepare(), ErrUnsafeDestination)
}

func TestCopyAssets(t *testing.T) {
	w := newTestWriter(t)
	require.NoError(t, w.Prepare())

	src := filepath.Join(t.TempDir(), "assets")
	require.NoError(t, os.MkdirAll(filepath.Join(src, "css"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(src, "empty"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "css", "style.css"), []byte("body{}"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "run.sh"), []byte("#!/bin/sh"), 0o755))

	copied, err := w.CopyAssets(src, "assets")
	require.NoError(t, err)
	assert.True(t, copied)

	data, err := os.ReadFile(filepath.Join(w.Dir, "assets", "css", "style.css"))
	require.NoError(t, err)
	assert.Equal(t, "body{}", string(data))

	info, err := os.Stat(filepath.Join(w.Dir, "assets", "run.sh"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())

	info, err = os.Stat(filepath.Join(w.Dir, "assets", "empty"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestCopyAssets_MissingSourceSkipped(t *testing.T) {
	w := newTestWriter(t)
	require.NoError(t, w.Prepare())

	copied, err := w.CopyAssets(filepath.Join(t.TempDir(), "nope"), "assets")
	require.NoError(t, err)
	assert.False(t, copied)
	_, err = os.Stat(filepath.Join(w.Dir, "assets"))
	assert.True(t, os.IsNotExist(err))
}

func TestCopyAssets_SourceIsFile(t *testing.T) {
	w := newTestWriter(t)
	require.NoError(t, w.Prepare())
	f := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(f, nil, 0o644))

	_, err := w.CopyAssets(f, "assets")
	require.Error(t, err)
}

func TestWritePage(t *testing.T) {
	w := newTestWriter(t)
	require.NoError(t, w.Prepare())

	p, err := w.WritePage("posts/hello.html", []byte("<p>hi</p>"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(w.Dir, "posts", "hello.html"), p)

	data, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "<p>hi</p>", string(data))
}

func TestPrepare_RefusesToRemoveProtectedPaths(t *testing.T) {
	root := t.TempDir()
	posts := filepath.Join(root, "public", "src")
	require.NoError(t, os.MkdirAll(posts, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(posts, "hello.md"), []byte("hi"), 0o644))

	w := NewWriter(filepath.Join(root, "public"), nil)
	w.Protect = []string{posts}
	require.ErrorIs(t, w.Prepare(), ErrUnsafeDestination)
	assert.FileExists(t, filepath.Join(posts, "hello.md"))

	w = NewWriter(filepath.Dir(root), nil)
	w.Protect = []string{root}
	require.ErrorIs(t, w.Prepare(), ErrUnsafeDestination)
	assert.DirExists(t, root)
}

func TestPrepare_SiblingOfProtectedPathIsCleared(t *testing.T) {
	root := t.TempDir()
	w := NewWriter(filepath.Join(root, "public"), nil)
	w.Protect = []string{filepath.Join(root, "public-src"), root + string(filepath.Separator) + "posts"}
	require.NoError(t, w.Prepare())
}

func TestCopyAssets_FollowsSymlinkedDirectory(t *testing.T) {
	w := newTestWriter(t)
	require.NoError(t, w.Prepare())

	shared := filepath.Join(t.TempDir(), "shared")
	require.NoError(t, os.MkdirAll(shared, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(shared, "logo.svg"), []byte("<svg/>"), 0o644))

	src := filepath.Join(t.TempDir(), "assets")
	require.NoError(t, os.MkdirAll(src, 0o755))
	require.NoError(t, os.Symlink(shared, filepath.Join(src, "img")))
	require.NoError(t, os.Symlink(filepath.Join(shared, "logo.svg"), filepath.Join(src, "logo.svg")))
	require.NoError(t, os.Symlink(filepath.Join(src, "gone"), filepath.Join(src, "broken")))

	copied, err := w.CopyAssets(src, "assets")
	require.NoError(t, err)
	assert.True(t, copied)

	info, err := os.Lstat(filepath.Join(w.Dir, "assets", "img"))
	require.NoError(t, err)
	assert.True(t, info.IsDir(), "linked directory is copied as a real directory")

	data, err := os.ReadFile(filepath.Join(w.Dir, "assets", "img", "logo.svg"))
	require.NoError(t, err)
	assert.Equal(t, "<svg/>", string(data))
	assert.FileExists(t, filepath.Join(w.Dir, "assets", "logo.svg"))
	assert.NoFileExists(t, filepath.Join(w.Dir, "assets", "broken"))
}

func TestCopyAssets_LinkCycleTerminates(t *testing.T) {
	w := newTestWriter(t)
	require.NoError(t, w.Prepare())

	src := filepath.Join(t.TempDir(), "assets")
	require.NoError(t, os.MkdirAll(src, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "a.css"), []byte("a"), 0o644))
	require.NoError(t, os.Symlink(src, filepath.Join(src, "loop")))

	_, err := w.CopyAssets(src, "assets")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(w.Dir, "assets", "a.css"))
	assert.NoFileExists(t, filepath.Join(w.Dir, "assets", "loop", "a.css"))
}
