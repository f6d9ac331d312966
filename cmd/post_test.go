package cmd

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeeLiangmin/compile-rust-tool/pkg/build"
	"github.com/LeeLiangmin/compile-rust-tool/pkg/config"
	"github.com/LeeLiangmin/compile-rust-tool/pkg/manifest"
)

func postSpec(name string, compress bool) config.ToolSpec {
	return config.ToolSpec{
		Name:             name,
		Version:          config.VersionLatest,
		Compress:         compress,
		WindowsFormat:    config.DefaultWindowsFormat,
		NonWindowsFormat: config.DefaultNonWindowsFormat,
	}
}

func writeBinary(t *testing.T, dist, tool, triple, name string) {
	t.Helper()
	dir := filepath.Join(dist, tool, triple)
	require.NoError(t, os.MkdirAll(dir, 0770))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("binary"), 0770))
}

func dirNames(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	return names
}

func TestPostProcess(t *testing.T) {
	dist := t.TempDir()
	writeBinary(t, dist, "alpha", "x86_64-unknown-linux-gnu", "alpha")
	writeBinary(t, dist, "alpha", "x86_64-pc-windows-msvc", "alpha.exe")
	writeBinary(t, dist, "bravo", "x86_64-unknown-linux-gnu", "bravo")

	tools := []config.ToolSpec{
		postSpec("alpha", true),
		postSpec("bravo", false),
		postSpec("charlie", false),
	}

	require.NoError(t, postProcess(context.Background(), tools, dist))

	// every target directory exists for tools that produced output
	for _, tool := range []string{"alpha", "bravo"} {
		for _, target := range build.Targets {
			info, err := os.Stat(filepath.Join(dist, tool, target.Triple))
			require.NoError(t, err)
			assert.True(t, info.IsDir())
		}
	}

	// compress=true gets exactly one archive per built target
	assert.ElementsMatch(t, []string{"alpha", "alpha.tar.gz"},
		dirNames(t, filepath.Join(dist, "alpha", "x86_64-unknown-linux-gnu")))
	assert.ElementsMatch(t, []string{"alpha.exe", "alpha.zip"},
		dirNames(t, filepath.Join(dist, "alpha", "x86_64-pc-windows-msvc")))
	assert.Empty(t, dirNames(t, filepath.Join(dist, "alpha", "x86_64-pc-windows-gnu")))

	// compress=false stays archive-free
	assert.ElementsMatch(t, []string{"bravo"},
		dirNames(t, filepath.Join(dist, "bravo", "x86_64-unknown-linux-gnu")))

	// never-built tools are skipped entirely
	_, err := os.Stat(filepath.Join(dist, "charlie"))
	assert.True(t, os.IsNotExist(err))

	data, err := os.ReadFile(filepath.Join(dist, manifest.FileName))
	require.NoError(t, err)
	var decoded manifest.Manifest
	require.NoError(t, json.Unmarshal(data, &decoded))

	require.Len(t, decoded.Tools, 2)
	assert.Equal(t, "alpha", decoded.Tools[0].CrateName)
	assert.Equal(t, "bravo", decoded.Tools[1].CrateName)

	linux := decoded.Tools[0].Targets["x86_64-unknown-linux-gnu"]
	names := make([]string, 0, len(linux.Files))
	for _, file := range linux.Files {
		names = append(names, file.Name)
	}
	assert.ElementsMatch(t, []string{"alpha", "alpha.tar.gz"}, names)
}

func TestPostProcessRerunReplacesArchives(t *testing.T) {
	dist := t.TempDir()
	writeBinary(t, dist, "alpha", "x86_64-unknown-linux-gnu", "alpha")

	tools := []config.ToolSpec{postSpec("alpha", true)}
	require.NoError(t, postProcess(context.Background(), tools, dist))
	require.NoError(t, postProcess(context.Background(), tools, dist))

	// the second run replaces the archive instead of nesting it
	assert.ElementsMatch(t, []string{"alpha", "alpha.tar.gz"},
		dirNames(t, filepath.Join(dist, "alpha", "x86_64-unknown-linux-gnu")))
}

func TestPostProcessMissingDist(t *testing.T) {
	dist := filepath.Join(t.TempDir(), "dist")
	err := postProcess(context.Background(), []config.ToolSpec{postSpec("alpha", true)}, dist)
	require.Error(t, err)
}
