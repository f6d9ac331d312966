// Package archive wraps collected binaries into per-pair distribution
// archives. Formats register themselves in a small registry; a configured
// format that isn't registered degrades to the platform family default
// instead of failing the run.
package archive

import (
	"context"
	"os"
	"path/filepath"
	"sort"

	"github.com/rotisserie/eris"

	"github.com/LeeLiangmin/compile-rust-tool/pkg/build"
	"github.com/LeeLiangmin/compile-rust-tool/pkg/config"
	"github.com/LeeLiangmin/compile-rust-tool/pkg/console"
)

// WriterFunc creates dest containing the given files (flat, basenames only).
type WriterFunc func(dest string, files []string) error

var formats = map[string]WriterFunc{}

func register(name string, fn WriterFunc) {
	formats[name] = fn
}

// Lookup returns the writer for a format name.
func Lookup(name string) (WriterFunc, bool) {
	fn, ok := formats[name]
	return fn, ok
}

// Supported lists the registered format names.
func Supported() []string {
	names := make([]string, 0, len(formats))
	for name := range formats {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultFor returns the fallback format for a platform family.
func DefaultFor(family build.Family) string {
	if family == build.FamilyWindows {
		return config.DefaultWindowsFormat
	}
	return config.DefaultNonWindowsFormat
}

// Name returns the archive filename for a tool in the given format.
func Name(tool, format string) string {
	return tool + "." + format
}

func isArchive(name, tool string) bool {
	for format := range formats {
		if name == Name(tool, format) {
			return true
		}
	}
	return false
}

// PackagePair creates the single archive for one built (tool, target)
// directory. Stale archives from earlier runs are removed first so exactly
// one archive remains regardless of format changes. Returns the archive
// path, or "" if the directory holds nothing to pack.
func PackagePair(ctx context.Context, distDir string, tool config.ToolSpec, target build.Target) (string, error) {
	dir := filepath.Join(distDir, tool.Name, target.Triple)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", eris.Wrapf(err, "Failed to read %s", dir)
	}

	format := target.ArchiveFormat(tool)
	if _, ok := Lookup(format); !ok {
		fallback := DefaultFor(target.Family)
		console.Log(ctx).Warn().
			Str("tool", tool.Name).
			Str("target", target.Triple).
			Msgf("Archive format %q is not available, falling back to %q", format, fallback)
		format = fallback
	}
	writer, ok := Lookup(format)
	if !ok {
		return "", eris.Errorf("Default archive format %q is not registered", format)
	}

	files := []string{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if isArchive(entry.Name(), tool.Name) {
			err = os.Remove(filepath.Join(dir, entry.Name()))
			if err != nil {
				return "", eris.Wrapf(err, "Failed to remove stale archive %s", entry.Name())
			}
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	if len(files) == 0 {
		console.Log(ctx).Warn().
			Str("tool", tool.Name).
			Str("target", target.Triple).
			Msg("Nothing to package")
		return "", nil
	}
	sort.Strings(files)

	dest := filepath.Join(dir, Name(tool.Name, format))
	err = writer(dest, files)
	if err != nil {
		return "", eris.Wrapf(err, "Failed to create archive %s", dest)
	}
	return dest, nil
}
