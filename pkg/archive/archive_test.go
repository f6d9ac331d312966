package archive

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeeLiangmin/compile-rust-tool/pkg/build"
	"github.com/LeeLiangmin/compile-rust-tool/pkg/config"
)

func target(t *testing.T, triple string) build.Target {
	t.Helper()
	tgt, ok := build.LookupTarget(triple)
	require.True(t, ok)
	return tgt
}

func pairDir(t *testing.T, distDir, tool, triple string, files map[string]string) string {
	t.Helper()
	dir := filepath.Join(distDir, tool, triple)
	require.NoError(t, os.MkdirAll(dir, 0770))
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0770))
	}
	return dir
}

func zipEntries(t *testing.T, path string) map[string]string {
	t.Helper()
	reader, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer reader.Close()

	entries := map[string]string{}
	for _, file := range reader.File {
		handle, err := file.Open()
		require.NoError(t, err)
		data, err := io.ReadAll(handle)
		require.NoError(t, err)
		require.NoError(t, handle.Close())
		entries[file.Name] = string(data)
	}
	return entries
}

func tarGzEntries(t *testing.T, path string) map[string]string {
	t.Helper()
	handle, err := os.Open(path)
	require.NoError(t, err)
	defer handle.Close()

	unzip, err := gzip.NewReader(handle)
	require.NoError(t, err)

	entries := map[string]string{}
	reader := tar.NewReader(unzip)
	for {
		header, err := reader.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		data, err := io.ReadAll(reader)
		require.NoError(t, err)
		entries[header.Name] = string(data)
	}
	return entries
}

func TestPackagePairZip(t *testing.T) {
	distDir := t.TempDir()
	pairDir(t, distDir, "flamegraph", "x86_64-pc-windows-msvc", map[string]string{
		"flamegraph.exe":       "one",
		"cargo-flamegraph.exe": "two",
	})

	tool := config.ToolSpec{Name: "flamegraph", WindowsFormat: "zip"}
	dest, err := PackagePair(context.Background(), distDir, tool, target(t, "x86_64-pc-windows-msvc"))
	require.NoError(t, err)
	assert.Equal(t, "flamegraph.zip", filepath.Base(dest))

	assert.Equal(t, map[string]string{
		"flamegraph.exe":       "one",
		"cargo-flamegraph.exe": "two",
	}, zipEntries(t, dest))
}

func TestPackagePairTarGz(t *testing.T) {
	distDir := t.TempDir()
	pairDir(t, distDir, "flamegraph", "x86_64-unknown-linux-gnu", map[string]string{
		"flamegraph": "one",
	})

	tool := config.ToolSpec{Name: "flamegraph", NonWindowsFormat: "tar.gz"}
	dest, err := PackagePair(context.Background(), distDir, tool, target(t, "x86_64-unknown-linux-gnu"))
	require.NoError(t, err)
	assert.Equal(t, "flamegraph.tar.gz", filepath.Base(dest))

	assert.Equal(t, map[string]string{"flamegraph": "one"}, tarGzEntries(t, dest))
}

func TestPackagePairUnknownFormatFallsBack(t *testing.T) {
	distDir := t.TempDir()
	pairDir(t, distDir, "flamegraph", "x86_64-unknown-linux-gnu", map[string]string{
		"flamegraph": "one",
	})

	tool := config.ToolSpec{Name: "flamegraph", NonWindowsFormat: "tar.zst"}
	dest, err := PackagePair(context.Background(), distDir, tool, target(t, "x86_64-unknown-linux-gnu"))
	require.NoError(t, err)
	assert.Equal(t, "flamegraph."+config.DefaultNonWindowsFormat, filepath.Base(dest))
}

func TestPackagePairRemovesStaleArchives(t *testing.T) {
	distDir := t.TempDir()
	dir := pairDir(t, distDir, "flamegraph", "x86_64-unknown-linux-gnu", map[string]string{
		"flamegraph":        "one",
		"flamegraph.tar.gz": "stale",
	})

	tool := config.ToolSpec{Name: "flamegraph", NonWindowsFormat: "tar.xz"}
	dest, err := PackagePair(context.Background(), distDir, tool, target(t, "x86_64-unknown-linux-gnu"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "flamegraph.tar.xz"), dest)

	_, err = os.Stat(filepath.Join(dir, "flamegraph.tar.gz"))
	assert.True(t, os.IsNotExist(err))
}

func TestPackagePairEmptyDir(t *testing.T) {
	distDir := t.TempDir()
	pairDir(t, distDir, "flamegraph", "x86_64-unknown-linux-gnu", nil)

	tool := config.ToolSpec{Name: "flamegraph", NonWindowsFormat: "tar.gz"}
	dest, err := PackagePair(context.Background(), distDir, tool, target(t, "x86_64-unknown-linux-gnu"))
	require.NoError(t, err)
	assert.Equal(t, "", dest)
}

func TestPackagePairMissingDir(t *testing.T) {
	tool := config.ToolSpec{Name: "flamegraph", NonWindowsFormat: "tar.gz"}
	_, err := PackagePair(context.Background(), t.TempDir(), tool, target(t, "x86_64-unknown-linux-gnu"))
	require.Error(t, err)
}

func TestSupportedFormats(t *testing.T) {
	assert.Equal(t, []string{"tar.br", "tar.gz", "tar.xz", "zip"}, Supported())
}

func TestDefaultFor(t *testing.T) {
	assert.Equal(t, config.DefaultWindowsFormat, DefaultFor(build.FamilyWindows))
	assert.Equal(t, config.DefaultNonWindowsFormat, DefaultFor(build.FamilyUnix))
}
