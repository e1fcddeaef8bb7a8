package cli

import (
	"github.com/spf13/cobra"

	"astroaspects/internal/app"
)

var exportOpts app.ExportOptions

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a chart as CSV, PNG charts and/or a bundle file",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().Export(cmd.Context(), exportOpts)
	},
}

func init() {
	exportCmd.Flags().Int64Var(&exportOpts.ChartID, "chart", 0, "Chart id")
	exportCmd.Flags().IntVar(&exportOpts.HouseSystem, "house-system", 0, "House system id (defaults to config)")
	exportCmd.Flags().StringVar(&exportOpts.CSVPath, "csv", "", "Path to write the point listing CSV")
	exportCmd.Flags().StringVar(&exportOpts.WheelPath, "wheel", "", "Path to write the house wheel PNG")
	exportCmd.Flags().StringVar(&exportOpts.AspectsPath, "aspects", "", "Path to write the aspect count PNG")
	exportCmd.Flags().StringVar(&exportOpts.BundlePath, "bundle", "", "Path to write the chart bundle (.yaml or .json)")
}
