package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/LeeLiangmin/compile-rust-tool/pkg/config"
	"github.com/LeeLiangmin/compile-rust-tool/pkg/console"
)

var addToolCmd = &cobra.Command{
	Use:   "add-tool name",
	Short: "Adds a new tool entry to the tool config",
	Long: `Appends the named crate with version "latest" to tools.yml. Edit the file
afterwards to pin a version or enable compression.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := toolsPath(cmd)
		if err != nil {
			return err
		}

		added, err := config.AddTool(path, args[0])
		if err != nil {
			return err
		}

		if added {
			console.PrintTask(fmt.Sprintf("Added tool %q to %s", args[0], path))
		} else {
			console.PrintTask(fmt.Sprintf("Tool %q is already configured", args[0]))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(addToolCmd)
}
