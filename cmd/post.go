package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/LeeLiangmin/compile-rust-tool/pkg/archive"
	"github.com/LeeLiangmin/compile-rust-tool/pkg/build"
	"github.com/LeeLiangmin/compile-rust-tool/pkg/config"
	"github.com/LeeLiangmin/compile-rust-tool/pkg/console"
	"github.com/LeeLiangmin/compile-rust-tool/pkg/manifest"
)

var postCmd = &cobra.Command{
	Use:   "post",
	Short: "Packages the build output and regenerates the manifest",
	Long: `Creates one archive per built target for every tool with compression
enabled and writes a fresh manifest.json into the dist directory. The
manifest is rebuilt from scratch, so entries for removed tools disappear.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := toolsPath(cmd)
		if err != nil {
			return err
		}
		dist, err := distDir(cmd)
		if err != nil {
			return err
		}

		tools, err := config.LoadTools(path)
		if err != nil {
			return err
		}

		return postProcess(commandContext(cmd), tools, dist)
	},
}

// postProcess archives the built binaries of every compress-flagged tool,
// fills in missing per-target directories and rewrites the manifest.
func postProcess(ctx context.Context, tools []config.ToolSpec, dist string) error {
	_, err := os.Stat(dist)
	if err != nil {
		return eris.Wrapf(err, "Dist directory %s is missing, run a build first", dist)
	}

	console.PrintTask("Packaging build output")

	packaged := 0
	failed := 0
	for _, tool := range tools {
		toolDir := filepath.Join(dist, tool.Name)
		_, err = os.Stat(toolDir)
		if err != nil {
			if eris.Is(err, os.ErrNotExist) {
				continue
			}
			return eris.Wrapf(err, "Could not stat %s", toolDir)
		}

		// Downstream consumers expect the full directory layout even
		// for targets that weren't built on this host.
		for _, target := range build.Targets {
			err = os.MkdirAll(filepath.Join(toolDir, target.Triple), os.FileMode(0770))
			if err != nil {
				return eris.Wrapf(err, "Failed to create target directory for %s", tool.Name)
			}
		}

		if !tool.Compress {
			continue
		}

		for _, target := range build.Targets {
			dest, err := archive.PackagePair(ctx, dist, tool, target)
			if err != nil {
				console.PrintError(eris.ToString(err, false))
				failed++
				continue
			}
			if dest != "" {
				console.PrintSubtask(dest)
				packaged++
			}
		}
	}

	console.PrintTask("Writing manifest")
	data, err := manifest.Generate(dist, tools, build.Targets)
	if err != nil {
		return err
	}

	manifestPath := filepath.Join(dist, manifest.FileName)
	err = data.Write(manifestPath)
	if err != nil {
		return err
	}
	console.PrintSubtask(manifestPath)

	console.PrintTask(fmt.Sprintf("Done: %d archives created, %d failed", packaged, failed))
	return nil
}

func init() {
	rootCmd.AddCommand(postCmd)
}
