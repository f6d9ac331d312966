package cmd

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/LeeLiangmin/compile-rust-tool/pkg/build"
	"github.com/LeeLiangmin/compile-rust-tool/pkg/console"
)

var installTargetsCmd = &cobra.Command{
	Use:   "install-targets",
	Short: "Installs the rustup toolchains for the target triples",
	Long: `Runs "rustup target add" for every supported target triple so the
build commands can cross-compile. Use the family flags to restrict the set.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		windowsOnly, err := cmd.Flags().GetBool("windows-only")
		if err != nil {
			return err
		}
		nonWindowsOnly, err := cmd.Flags().GetBool("non-windows-only")
		if err != nil {
			return err
		}
		if windowsOnly && nonWindowsOnly {
			return eris.New("--windows-only and --non-windows-only are mutually exclusive")
		}

		var family build.Family
		if windowsOnly {
			family = build.FamilyWindows
		}
		if nonWindowsOnly {
			family = build.FamilyUnix
		}

		ctx := commandContext(cmd)
		runner := build.ExecRunner{}
		console.PrintTask("Installing target toolchains")

		failed := 0
		installed := 0
		for _, target := range build.Targets {
			if family != "" && target.Family != family {
				continue
			}

			console.PrintSubtask(target.Triple)
			err = runner.Run(ctx, "rustup", "target", "add", target.Triple)
			if err != nil {
				console.PrintError(eris.ToString(err, false))
				failed++
				continue
			}
			installed++
		}

		console.PrintTask(fmt.Sprintf("Done: %d installed, %d failed", installed, failed))
		if installed == 0 && failed > 0 {
			return eris.New("No toolchain could be installed")
		}
		return nil
	},
}

func init() {
	installTargetsCmd.Flags().Bool("windows-only", false, "only install the Windows targets")
	installTargetsCmd.Flags().Bool("non-windows-only", false, "only install the non-Windows targets")
	rootCmd.AddCommand(installTargetsCmd)
}
