package cmd

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/LeeLiangmin/compile-rust-tool/pkg/build"
	"github.com/LeeLiangmin/compile-rust-tool/pkg/config"
	"github.com/LeeLiangmin/compile-rust-tool/pkg/console"
)

var buildCmd = &cobra.Command{
	Use:   "build tool target",
	Short: "Builds one tool for one target triple",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMatrix(cmd, build.Filter{Tool: args[0], Target: args[1]})
	},
}

var buildAllCmd = &cobra.Command{
	Use:   "build-all",
	Short: "Builds every configured tool for every target triple",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMatrix(cmd, build.Filter{})
	},
}

var buildWindowsCmd = &cobra.Command{
	Use:   "build-windows",
	Short: "Builds every configured tool for the Windows targets",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMatrix(cmd, build.Filter{Family: build.FamilyWindows})
	},
}

var buildNonWindowsCmd = &cobra.Command{
	Use:   "build-non-windows",
	Short: "Builds every configured tool for the non-Windows (Linux) targets",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMatrix(cmd, build.Filter{Family: build.FamilyUnix})
	},
}

var buildToolCmd = &cobra.Command{
	Use:   "build-tool tool",
	Short: "Builds one tool for every target triple",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMatrix(cmd, build.Filter{Tool: args[0]})
	},
}

var buildTargetCmd = &cobra.Command{
	Use:   "build-target target",
	Short: "Builds every configured tool for one target triple",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMatrix(cmd, build.Filter{Target: args[0]})
	},
}

func init() {
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(buildAllCmd)
	rootCmd.AddCommand(buildWindowsCmd)
	rootCmd.AddCommand(buildNonWindowsCmd)
	rootCmd.AddCommand(buildToolCmd)
	rootCmd.AddCommand(buildTargetCmd)
}

// runMatrix is the shared driver behind all build subcommands: compute the
// filtered matrix, build each pair in order and report a summary. Failed
// pairs are reported but never stop the batch.
func runMatrix(cmd *cobra.Command, filter build.Filter) error {
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

	pairs, err := build.Matrix(tools, build.Targets, filter)
	if err != nil {
		return err
	}
	if len(pairs) == 0 {
		console.PrintTask("Nothing to build")
		return nil
	}

	ctx := commandContext(cmd)
	console.PrintTask(fmt.Sprintf("Building %d tool/target pairs", len(pairs)))

	builder := build.NewBuilder(dist)
	results := builder.BuildAll(ctx, pairs)

	succeeded := 0
	for _, result := range results {
		if result.OK() {
			succeeded++
		}
	}
	failed := len(results) - succeeded

	console.PrintTask(fmt.Sprintf("Done: %d succeeded, %d failed", succeeded, failed))
	if succeeded == 0 && failed > 0 {
		return eris.New("All builds failed")
	}
	return nil
}
