// Package manifest generates the metadata catalog for a dist tree. The
// manifest is rebuilt from scratch on every run so it never carries stale
// entries from earlier builds.
package manifest

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aidarkhanov/nanoid"
	"github.com/rotisserie/eris"

	"github.com/LeeLiangmin/compile-rust-tool/pkg/build"
	"github.com/LeeLiangmin/compile-rust-tool/pkg/config"
)

// FileName is the manifest filename inside the dist directory.
const FileName = "manifest.json"

type File struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
}

type TargetFiles struct {
	Files []File `json:"files"`
}

type Tool struct {
	CrateName string                 `json:"crate_name"`
	Version   string                 `json:"version"`
	Source    string                 `json:"source"`
	Targets   map[string]TargetFiles `json:"targets"`
}

type Manifest struct {
	GeneratedAt time.Time `json:"generated_at"`
	RunID       string    `json:"run_id"`
	Source      string    `json:"source"`
	Tools       []Tool    `json:"tools"`
}

// Generate scans the dist directory and builds a manifest covering every
// configured tool that produced output. Target directories without files
// (skipped or failed pairs) are left out.
func Generate(distDir string, tools []config.ToolSpec, targets []build.Target) (*Manifest, error) {
	result := &Manifest{
		GeneratedAt: time.Now().UTC(),
		RunID:       nanoid.New(),
		Source:      "crates.io",
		Tools:       []Tool{},
	}

	for _, tool := range tools {
		toolDir := filepath.Join(distDir, tool.Name)
		info, err := os.Stat(toolDir)
		if err != nil {
			if eris.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, eris.Wrapf(err, "Could not stat %s", toolDir)
		}
		if !info.IsDir() {
			continue
		}

		entry := Tool{
			CrateName: tool.Name,
			Version:   toolVersion(toolDir, tool),
			Source:    "crates.io",
			Targets:   map[string]TargetFiles{},
		}

		for _, target := range targets {
			files, err := listFiles(filepath.Join(toolDir, target.Triple))
			if err != nil {
				return nil, err
			}
			if len(files) == 0 {
				continue
			}
			entry.Targets[target.Triple] = TargetFiles{Files: files}
		}

		result.Tools = append(result.Tools, entry)
	}

	return result, nil
}

// toolVersion prefers the version file written during the build and falls
// back to the configured version.
func toolVersion(toolDir string, tool config.ToolSpec) string {
	data, err := os.ReadFile(filepath.Join(toolDir, "version"))
	if err == nil {
		version := strings.TrimSpace(string(data))
		if version != "" {
			return version
		}
	}
	return tool.Version
}

func listFiles(dir string) ([]File, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if eris.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "Failed to read %s", dir)
	}

	files := []File{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return nil, eris.Wrapf(err, "Could not stat %s", entry.Name())
		}
		files = append(files, File{Name: entry.Name(), Size: info.Size()})
	}
	return files, nil
}

// Write serializes the manifest to path, replacing any previous manifest.
func (m *Manifest) Write(path string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return eris.Wrap(err, "Failed to serialize manifest")
	}

	err = os.WriteFile(path, append(data, '\n'), os.FileMode(0660))
	if err != nil {
		return eris.Wrapf(err, "Failed to write %s", path)
	}
	return nil
}
