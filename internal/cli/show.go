package cli

import (
	"github.com/spf13/cobra"

	"astroaspects/internal/app"
)

var (
	showChartID     int64
	showHouseSystem int
	showDraconic    bool
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "List charts, or the points of one chart",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().Show(cmd.Context(), app.ShowOptions{
			ChartID:     showChartID,
			HouseSystem: showHouseSystem,
		})
	},
}

var anglesCmd = &cobra.Command{
	Use:   "angles",
	Short: "Display the six angles of a chart",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireChart(showChartID); err != nil {
			return err
		}
		return getApp().Angles(cmd.Context(), showChartID, showDraconic)
	},
}

var housesCmd = &cobra.Command{
	Use:   "houses",
	Short: "Display the house cusps of a chart",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireChart(showChartID); err != nil {
			return err
		}
		return getApp().Houses(cmd.Context(), app.ShowOptions{
			ChartID:     showChartID,
			HouseSystem: showHouseSystem,
		}, showDraconic)
	},
}

func init() {
	showCmd.Flags().Int64Var(&showChartID, "chart", 0, "Chart id (omit to list charts)")
	showCmd.Flags().IntVar(&showHouseSystem, "house-system", 0, "House system id (defaults to config)")

	anglesCmd.Flags().Int64Var(&showChartID, "chart", 0, "Chart id")
	anglesCmd.Flags().BoolVar(&showDraconic, "draconic", false, "Show draconic angles")

	housesCmd.Flags().Int64Var(&showChartID, "chart", 0, "Chart id")
	housesCmd.Flags().IntVar(&showHouseSystem, "house-system", 0, "House system id (defaults to config)")
	housesCmd.Flags().BoolVar(&showDraconic, "draconic", false, "Show draconic cusps")
}
