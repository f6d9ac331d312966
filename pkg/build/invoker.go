// Package build schedules the tool/target matrix and drives rustup and
// cargo to produce the binaries for each pair.
package build

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/LeeLiangmin/compile-rust-tool/pkg/config"
	"github.com/LeeLiangmin/compile-rust-tool/pkg/console"
)

// Builder invokes cargo for single (tool, target) pairs and collects the
// resulting binaries into the dist tree.
type Builder struct {
	Runner   Runner
	CargoBin string
	DistDir  string
}

// Result records the outcome of one (tool, target) build.
type Result struct {
	Tool   config.ToolSpec
	Target Target
	Files  []string
	Err    error
}

func (r Result) OK() bool {
	return r.Err == nil
}

// NewBuilder returns a Builder using the real cargo installation.
func NewBuilder(distDir string) *Builder {
	return &Builder{
		Runner:   ExecRunner{},
		CargoBin: DefaultCargoBin(),
		DistDir:  distDir,
	}
}

// DefaultCargoBin returns the directory cargo installs binaries into,
// honoring CARGO_HOME.
func DefaultCargoBin() string {
	home := os.Getenv("CARGO_HOME")
	if home == "" {
		userHome, err := os.UserHomeDir()
		if err != nil {
			userHome = "."
		}
		home = filepath.Join(userHome, ".cargo")
	}
	return filepath.Join(home, "bin")
}

// Build compiles one pair. The returned Result carries the error instead of
// aborting so batch runs can keep going.
func (b *Builder) Build(ctx context.Context, pair Pair) Result {
	result := Result{Tool: pair.Tool, Target: pair.Target}
	logger := console.Log(ctx).With().
		Str("tool", pair.Tool.Name).
		Str("target", pair.Target.Triple).
		Logger()

	// Make sure the cross-compilation toolchain is present. rustup exits
	// zero if the target is already installed, so failures here are only
	// warnings; cargo reports the actionable error below.
	err := b.Runner.Run(ctx, "rustup", "target", "add", pair.Target.Triple)
	if err != nil {
		logger.Warn().Err(err).Msg("rustup target add failed, attempting the build anyway")
	}

	args := []string{"install", "--target", pair.Target.Triple}
	if version := pair.Tool.CargoVersion(); version != "" {
		args = append(args, "--version", version)
	}
	args = append(args, pair.Tool.Name, "--force")
	logger.Debug().Msgf("Running cargo %s", strings.Join(args, " "))

	err = b.Runner.Run(ctx, "cargo", args...)
	if err != nil {
		result.Err = eris.Wrapf(err, "cargo install failed for %s", pair.Tool.Name)
		return result
	}

	files, err := b.collect(pair)
	if err != nil {
		result.Err = err
		return result
	}
	result.Files = files

	version := b.installedVersion(ctx, pair)
	err = b.writeVersionFile(pair.Tool.Name, version)
	if err != nil {
		logger.Warn().Err(err).Msg("Could not record the installed version")
	}

	logger.Info().Msgf("Copied %d binaries (version %s)", len(files), version)
	return result
}

// BuildAll processes the matrix sequentially, recording each pair's outcome.
// A failed pair never aborts the remaining pairs.
func (b *Builder) BuildAll(ctx context.Context, pairs []Pair) []Result {
	results := make([]Result, 0, len(pairs))
	for _, pair := range pairs {
		console.PrintSubtask(pair.Tool.Name + " -> " + pair.Target.Triple)
		result := b.Build(ctx, pair)
		if !result.OK() {
			console.PrintError(eris.ToString(result.Err, false))
		}
		results = append(results, result)
	}
	return results
}
