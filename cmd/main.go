package cmd

import (
	"context"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/LeeLiangmin/compile-rust-tool/pkg/console"
)

var rootCmd = &cobra.Command{
	Use:   "crtool",
	Short: "Cross-compilation helper for Rust CLI tools",
	Long: `This command cross-compiles the Rust tools listed in the config directory
for a fixed set of target triples, packages the results and generates a
manifest for the dist directory. It can also download prebuilt release
assets from GitHub.`,
}

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "config", "directory containing tools.yml and downloads.yml")
	rootCmd.PersistentFlags().StringP("dist", "d", "dist", "output directory for build artifacts")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "show debug output")
}

// commandContext returns the command's context with a console logger
// attached for the packages below cmd.
func commandContext(cmd *cobra.Command) context.Context {
	level := zerolog.InfoLevel
	if verbose, err := cmd.Flags().GetBool("verbose"); err == nil && verbose {
		level = zerolog.DebugLevel
	}

	logger := zerolog.New(console.NewWriter()).Level(level)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return console.WithLogger(ctx, &logger)
}

func configDir(cmd *cobra.Command) (string, error) {
	return cmd.Flags().GetString("config")
}

func distDir(cmd *cobra.Command) (string, error) {
	return cmd.Flags().GetString("dist")
}

func toolsPath(cmd *cobra.Command) (string, error) {
	dir, err := configDir(cmd)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "tools.yml"), nil
}

func downloadsPath(cmd *cobra.Command) (string, error) {
	dir, err := configDir(cmd)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "downloads.yml"), nil
}
