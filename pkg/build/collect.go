package build

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
)

// collect copies every binary cargo installed for the tool into the per-pair
// output directory. A crate may install more than one executable (cargo
// subcommands usually ship both `foo` and `cargo-foo`).
func (b *Builder) collect(pair Pair) ([]string, error) {
	outDir := filepath.Join(b.DistDir, pair.Tool.Name, pair.Target.Triple)
	err := os.MkdirAll(outDir, os.FileMode(0770))
	if err != nil {
		return nil, eris.Wrapf(err, "Failed to create output directory %s", outDir)
	}

	names := b.installedBinaries(pair.Tool.Name, pair.Target)
	if len(names) == 0 {
		return nil, eris.Errorf("No binaries found for %s in %s", pair.Tool.Name, b.CargoBin)
	}

	copied := make([]string, 0, len(names))
	for _, name := range names {
		dest := filepath.Join(outDir, name)
		err = copyFile(filepath.Join(b.CargoBin, name), dest)
		if err != nil {
			return nil, err
		}
		copied = append(copied, dest)
	}
	return copied, nil
}

// installedBinaries returns the filenames in the cargo bin directory that
// belong to the tool: the expected names first, then a directory scan as
// fallback for crates whose binary names only share the tool prefix.
func (b *Builder) installedBinaries(tool string, target Target) []string {
	suffix := target.ExeSuffix()
	names := []string{}
	for _, candidate := range []string{tool + suffix, "cargo-" + tool + suffix} {
		_, err := os.Stat(filepath.Join(b.CargoBin, candidate))
		if err == nil {
			names = append(names, candidate)
		}
	}
	if len(names) > 0 {
		return names
	}

	entries, err := os.ReadDir(b.CargoBin)
	if err != nil {
		return nil
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		ext := filepath.Ext(name)
		if ext == ".d" || ext == ".pdb" {
			continue
		}
		base := strings.TrimSuffix(name, suffix)
		if base == tool || base == "cargo-"+tool {
			names = append(names, name)
		}
	}
	return names
}

// installedVersion determines the version cargo actually installed, first
// from `cargo install --list`, then by probing the binary itself.
func (b *Builder) installedVersion(ctx context.Context, pair Pair) string {
	out, err := b.Runner.Output(ctx, "cargo", "install", "--list")
	if err == nil {
		for _, line := range strings.Split(out, "\n") {
			fields := strings.Fields(line)
			if len(fields) < 2 {
				continue
			}
			if fields[0] != pair.Tool.Name && fields[0] != "cargo-"+pair.Tool.Name {
				continue
			}
			return ensureVersionPrefix(strings.TrimSuffix(fields[1], ":"))
		}
	}

	for _, name := range b.installedBinaries(pair.Tool.Name, pair.Target) {
		out, err := b.Runner.Output(ctx, filepath.Join(b.CargoBin, name), "--version")
		if err != nil {
			continue
		}
		fields := strings.Fields(strings.TrimSpace(out))
		if len(fields) >= 2 {
			return ensureVersionPrefix(fields[len(fields)-1])
		}
	}
	return "unknown"
}

func ensureVersionPrefix(version string) string {
	if version == "" {
		return "unknown"
	}
	if !strings.HasPrefix(version, "v") {
		return "v" + version
	}
	return version
}

// writeVersionFile records the installed version next to the per-target
// directories so post-processing can pick it up without cargo.
func (b *Builder) writeVersionFile(tool, version string) error {
	path := filepath.Join(b.DistDir, tool, "version")
	err := os.WriteFile(path, []byte(version), os.FileMode(0660))
	if err != nil {
		return eris.Wrapf(err, "Failed to write %s", path)
	}
	return nil
}

func copyFile(src, dest string) error {
	info, err := os.Stat(src)
	if err != nil {
		return eris.Wrapf(err, "Could not stat %s", src)
	}

	in, err := os.Open(src)
	if err != nil {
		return eris.Wrapf(err, "Failed to open %s", src)
	}
	defer in.Close()

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode())
	if err != nil {
		return eris.Wrapf(err, "Failed to create %s", dest)
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	if err != nil {
		return eris.Wrapf(err, "Failed to copy %s to %s", src, dest)
	}
	return nil
}
