// Package config reads and writes the declarative tool and download lists.
package config

import (
	"os"
	"sort"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"
)

const (
	// VersionLatest requests whatever version cargo resolves by default.
	VersionLatest = "latest"

	DefaultWindowsFormat    = "zip"
	DefaultNonWindowsFormat = "tar.gz"
)

// ToolSpec describes one crate that should be cross-compiled.
type ToolSpec struct {
	Name             string `yaml:"-"`
	Version          string `yaml:"version"`
	Compress         bool   `yaml:"compress,omitempty"`
	WindowsFormat    string `yaml:"windows_format,omitempty"`
	NonWindowsFormat string `yaml:"non_windows_format,omitempty"`
}

type toolsFile struct {
	Tools map[string]ToolSpec `yaml:"tools"`
}

// DownloadSpec describes one prebuilt release asset to fetch from GitHub.
type DownloadSpec struct {
	Name      string `yaml:"-"`
	Repo      string `yaml:"repo"`
	Asset     string `yaml:"asset"`
	OutputDir string `yaml:"output_dir,omitempty"`
	Method    string `yaml:"method"`
	Tag       string `yaml:"tag,omitempty"`
	Date      string `yaml:"date,omitempty"`
}

type downloadsFile struct {
	Downloads map[string]DownloadSpec `yaml:"downloads"`
}

// LoadTools parses the tool list and returns the specs sorted by name.
func LoadTools(path string) ([]ToolSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "Could not open file %s", path)
	}

	var cfg toolsFile
	err = yaml.Unmarshal(data, &cfg)
	if err != nil {
		return nil, eris.Wrapf(err, "Failed to parse %s", path)
	}

	tools := make([]ToolSpec, 0, len(cfg.Tools))
	for name, spec := range cfg.Tools {
		spec.Name = name
		if err := spec.validate(); err != nil {
			return nil, eris.Wrapf(err, "Invalid entry for tool %s in %s", name, path)
		}
		tools = append(tools, spec)
	}

	sort.Slice(tools, func(a, b int) bool { return tools[a].Name < tools[b].Name })
	return tools, nil
}

func (t *ToolSpec) validate() error {
	if t.Name == "" {
		return eris.New("Tool name must not be empty")
	}

	if t.Version == "" {
		t.Version = VersionLatest
	}
	if t.Version != VersionLatest && !semver.IsValid("v"+strings.TrimPrefix(t.Version, "v")) {
		return eris.Errorf("Version %q is neither %q nor a valid semantic version", t.Version, VersionLatest)
	}

	if t.WindowsFormat == "" {
		t.WindowsFormat = DefaultWindowsFormat
	}
	if t.NonWindowsFormat == "" {
		t.NonWindowsFormat = DefaultNonWindowsFormat
	}
	return nil
}

// CargoVersion returns the version in the form `cargo install --version`
// expects (no leading "v"), or "" for latest.
func (t ToolSpec) CargoVersion() string {
	if t.Version == VersionLatest {
		return ""
	}
	return strings.TrimPrefix(t.Version, "v")
}

// AddTool appends a new tool with version "latest" to the config file and
// rewrites it. Returns false if the tool is already configured.
func AddTool(path, name string) (bool, error) {
	if name == "" {
		return false, eris.New("Tool name must not be empty")
	}

	var cfg toolsFile
	data, err := os.ReadFile(path)
	if err != nil {
		if !eris.Is(err, os.ErrNotExist) {
			return false, eris.Wrapf(err, "Could not open file %s", path)
		}
	} else {
		err = yaml.Unmarshal(data, &cfg)
		if err != nil {
			return false, eris.Wrapf(err, "Failed to parse %s", path)
		}
	}

	if cfg.Tools == nil {
		cfg.Tools = map[string]ToolSpec{}
	}
	if _, ok := cfg.Tools[name]; ok {
		return false, nil
	}

	cfg.Tools[name] = ToolSpec{Version: VersionLatest}
	out, err := yaml.Marshal(cfg)
	if err != nil {
		return false, eris.Wrap(err, "Failed to serialize tool config")
	}

	err = os.WriteFile(path, out, os.FileMode(0660))
	if err != nil {
		return false, eris.Wrapf(err, "Failed to write %s", path)
	}
	return true, nil
}

// LoadDownloads parses the download list and returns the specs sorted by name.
func LoadDownloads(path string) ([]DownloadSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "Could not open file %s", path)
	}

	var cfg downloadsFile
	err = yaml.Unmarshal(data, &cfg)
	if err != nil {
		return nil, eris.Wrapf(err, "Failed to parse %s", path)
	}

	specs := make([]DownloadSpec, 0, len(cfg.Downloads))
	for name, spec := range cfg.Downloads {
		spec.Name = name
		if err := spec.validate(); err != nil {
			return nil, eris.Wrapf(err, "Invalid entry for download %s in %s", name, path)
		}
		specs = append(specs, spec)
	}

	sort.Slice(specs, func(a, b int) bool { return specs[a].Name < specs[b].Name })
	return specs, nil
}

func (d *DownloadSpec) validate() error {
	if !strings.Contains(d.Repo, "/") {
		return eris.Errorf("Repository %q must have the form owner/name", d.Repo)
	}
	if d.Asset == "" {
		return eris.New("No asset filename given")
	}
	if d.OutputDir == "" {
		d.OutputDir = "artifacts/" + d.Name
	}

	switch d.Method {
	case "latest":
	case "tag":
		if d.Tag == "" {
			return eris.New(`Method "tag" requires a tag value`)
		}
	case "date":
		if _, err := time.Parse("2006-01-02", d.Date); err != nil {
			return eris.Wrapf(err, `Method "date" requires a date in the form YYYY-MM-DD, got %q`, d.Date)
		}
	default:
		return eris.Errorf("Unknown resolution method %q (expected tag, date or latest)", d.Method)
	}
	return nil
}
