package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/LeeLiangmin/compile-rust-tool/pkg/build"
	"github.com/LeeLiangmin/compile-rust-tool/pkg/config"
	"github.com/LeeLiangmin/compile-rust-tool/pkg/console"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Lists the configured tools and the supported target triples",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := toolsPath(cmd)
		if err != nil {
			return err
		}

		tools, err := config.LoadTools(path)
		if err != nil {
			return err
		}

		console.PrintTask("Configured tools")
		for _, tool := range tools {
			line := fmt.Sprintf("%s (version: %s)", tool.Name, tool.Version)
			if tool.Compress {
				line += fmt.Sprintf(" [%s / %s]", tool.WindowsFormat, tool.NonWindowsFormat)
			}
			console.PrintSubtask(line)
		}

		console.PrintTask("Supported targets")
		for _, target := range build.Targets {
			console.PrintSubtask(target.Triple)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
