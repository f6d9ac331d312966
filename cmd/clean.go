package cmd

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/LeeLiangmin/compile-rust-tool/pkg/console"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Deletes the dist directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		dist, err := distDir(cmd)
		if err != nil {
			return err
		}

		_, err = os.Stat(dist)
		if err != nil {
			if eris.Is(err, os.ErrNotExist) {
				console.PrintTask(fmt.Sprintf("%s does not exist, nothing to clean", dist))
				return nil
			}
			return eris.Wrapf(err, "Could not stat %s", dist)
		}

		console.PrintTask(fmt.Sprintf("Removing %s", dist))
		err = os.RemoveAll(dist)
		if err != nil {
			return eris.Wrapf(err, "Failed to remove %s", dist)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cleanCmd)
}
