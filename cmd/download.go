package cmd

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/LeeLiangmin/compile-rust-tool/pkg/config"
	"github.com/LeeLiangmin/compile-rust-tool/pkg/console"
	"github.com/LeeLiangmin/compile-rust-tool/pkg/github"
)

var downloadCmd = &cobra.Command{
	Use:   "download [spec...]",
	Short: "Downloads prebuilt release assets from GitHub",
	Long: `Resolves and downloads the release assets configured in downloads.yml.
Without arguments every spec is processed; pass spec names to restrict the
set. A spec that fails to resolve is reported and skipped, the remaining
specs still run.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := downloadsPath(cmd)
		if err != nil {
			return err
		}

		specs, err := config.LoadDownloads(path)
		if err != nil {
			return err
		}

		listOnly, err := cmd.Flags().GetBool("list")
		if err != nil {
			return err
		}
		if listOnly {
			console.PrintTask("Configured downloads")
			for _, spec := range specs {
				detail := spec.Method
				switch spec.Method {
				case "tag":
					detail += " " + spec.Tag
				case "date":
					detail += " " + spec.Date
				}
				console.PrintSubtask(fmt.Sprintf("%s: %s %s (%s)", spec.Name, spec.Repo, spec.Asset, detail))
			}
			return nil
		}

		if len(args) > 0 {
			selected := make([]config.DownloadSpec, 0, len(args))
			for _, name := range args {
				found := false
				for _, spec := range specs {
					if spec.Name == name {
						selected = append(selected, spec)
						found = true
						break
					}
				}
				if !found {
					return eris.Errorf("Download spec %q is not listed in %s", name, path)
				}
			}
			specs = selected
		}

		client := github.NewClient()
		console.PrintTask(fmt.Sprintf("Downloading %d assets", len(specs)))

		succeeded := 0
		failed := 0
		for _, spec := range specs {
			console.PrintSubtask(fmt.Sprintf("%s: %s %s", spec.Name, spec.Repo, spec.Asset))
			dest, err := client.Fetch(spec)
			if err != nil {
				console.PrintError(eris.ToString(err, false))
				failed++
				continue
			}
			console.PrintSubtask("Saved to " + dest)
			succeeded++
		}

		console.PrintTask(fmt.Sprintf("Done: %d downloaded, %d failed", succeeded, failed))
		if succeeded == 0 && failed > 0 {
			return eris.New("All downloads failed")
		}
		return nil
	},
}

func init() {
	downloadCmd.Flags().Bool("list", false, "list the configured download specs instead of downloading")
	rootCmd.AddCommand(downloadCmd)
}
