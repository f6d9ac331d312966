package manifest

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeeLiangmin/compile-rust-tool/pkg/build"
	"github.com/LeeLiangmin/compile-rust-tool/pkg/config"
)

func writeDist(t *testing.T, distDir string, paths map[string]string) {
	t.Helper()
	for path, content := range paths {
		full := filepath.Join(distDir, filepath.FromSlash(path))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0770))
		require.NoError(t, os.WriteFile(full, []byte(content), 0660))
	}
}

func TestGenerate(t *testing.T) {
	distDir := t.TempDir()
	writeDist(t, distDir, map[string]string{
		"flamegraph/version":                                    "v0.6.5",
		"flamegraph/x86_64-unknown-linux-gnu/flamegraph":        "0123456789",
		"flamegraph/x86_64-unknown-linux-gnu/flamegraph.tar.gz": "gz",
		"flamegraph/x86_64-pc-windows-msvc/flamegraph.exe":      "0123",
	})
	// a failed pair leaves an empty target directory behind
	require.NoError(t, os.MkdirAll(filepath.Join(distDir, "flamegraph", "x86_64-pc-windows-gnu"), 0770))

	tools := []config.ToolSpec{
		{Name: "flamegraph", Version: "latest"},
		{Name: "ripgrep", Version: "latest"},
	}

	manifest, err := Generate(distDir, tools, build.Targets)
	require.NoError(t, err)

	assert.NotEmpty(t, manifest.RunID)
	assert.False(t, manifest.GeneratedAt.IsZero())
	assert.Equal(t, "crates.io", manifest.Source)

	// ripgrep never built, so it does not appear
	require.Len(t, manifest.Tools, 1)
	entry := manifest.Tools[0]
	assert.Equal(t, "flamegraph", entry.CrateName)
	assert.Equal(t, "v0.6.5", entry.Version)

	require.Len(t, entry.Targets, 2)
	assert.NotContains(t, entry.Targets, "x86_64-pc-windows-gnu")

	linux := entry.Targets["x86_64-unknown-linux-gnu"]
	require.Len(t, linux.Files, 2)
	assert.Equal(t, File{Name: "flamegraph", Size: 10}, linux.Files[0])
	assert.Equal(t, File{Name: "flamegraph.tar.gz", Size: 2}, linux.Files[1])
}

func TestGenerateVersionFallsBackToConfig(t *testing.T) {
	distDir := t.TempDir()
	writeDist(t, distDir, map[string]string{
		"ripgrep/x86_64-unknown-linux-gnu/rg": "bin",
	})

	tools := []config.ToolSpec{{Name: "ripgrep", Version: "v14.1.0"}}
	manifest, err := Generate(distDir, tools, build.Targets)
	require.NoError(t, err)
	require.Len(t, manifest.Tools, 1)
	assert.Equal(t, "v14.1.0", manifest.Tools[0].Version)
}

func TestGenerateEmptyDist(t *testing.T) {
	manifest, err := Generate(t.TempDir(), []config.ToolSpec{{Name: "ripgrep"}}, build.Targets)
	require.NoError(t, err)
	assert.Empty(t, manifest.Tools)
}

func TestWrite(t *testing.T) {
	distDir := t.TempDir()
	writeDist(t, distDir, map[string]string{
		"ripgrep/x86_64-unknown-linux-gnu/rg": "bin",
	})

	manifest, err := Generate(distDir, []config.ToolSpec{{Name: "ripgrep", Version: "latest"}}, build.Targets)
	require.NoError(t, err)

	path := filepath.Join(distDir, FileName)
	require.NoError(t, manifest.Write(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded Manifest
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, manifest.RunID, decoded.RunID)
	require.Len(t, decoded.Tools, 1)
	assert.Equal(t, "ripgrep", decoded.Tools[0].CrateName)
}
