package cli

import (
	"github.com/spf13/cobra"

	"astroaspects/internal/app"
)

var (
	importRemoteIDs []int64
	importDryRun    bool
)

var importCmd = &cobra.Command{
	Use:   "import [files...]",
	Short: "Import charts from bundle files or a remote instance",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().Import(cmd.Context(), app.ImportOptions{
			Files:     args,
			RemoteIDs: importRemoteIDs,
			DryRun:    importDryRun,
		})
	},
}

func init() {
	importCmd.Flags().Int64SliceVar(&importRemoteIDs, "remote", nil, "Chart ids to pull from fetcher.base_url")
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "Validate without writing to storage")
}
