package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"astroaspects/internal/app"
	"astroaspects/internal/engine"
)

var (
	aspectsChartID     int64
	aspectsOtherID     int64
	aspectsHouseSystem int
	aspectsSelector    engine.Selector
)

var aspectsCmd = &cobra.Command{
	Use:   "aspects",
	Short: "Display the aspects a point forms with the rest of a chart",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireChart(aspectsChartID); err != nil {
			return err
		}
		if aspectsSelector.Empty() {
			return fmt.Errorf("one of --point, --angle, --part or --draconic-point must be provided")
		}
		return getApp().Aspects(cmd.Context(), app.AspectOptions{
			ChartID:      aspectsChartID,
			OtherChartID: aspectsOtherID,
			HouseSystem:  aspectsHouseSystem,
			Selector:     aspectsSelector,
		})
	},
}

var transitsCmd = &cobra.Command{
	Use:   "transits",
	Short: "List charts that can be laid over a chart",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireChart(aspectsChartID); err != nil {
			return err
		}
		return getApp().Transits(cmd.Context(), aspectsChartID)
	},
}

func init() {
	aspectsCmd.Flags().Int64Var(&aspectsChartID, "chart", 0, "Chart id of the base point")
	aspectsCmd.Flags().Int64Var(&aspectsOtherID, "over", 0, "Second chart whose points are aspected (transit mode)")
	aspectsCmd.Flags().IntVar(&aspectsHouseSystem, "house-system", 0, "House system id (defaults to config)")
	aspectsCmd.Flags().Int64Var(&aspectsSelector.PointID, "point", 0, "Stored point id")
	aspectsCmd.Flags().StringVar(&aspectsSelector.AngleName, "angle", "", "Angle name, e.g. Ascendant")
	aspectsCmd.Flags().StringVar(&aspectsSelector.PartName, "part", "", "Arabic part name, e.g. \"Part of Fortune\"")
	aspectsCmd.Flags().StringVar(&aspectsSelector.DraconicName, "draconic-point", "", "Draconic point name, e.g. \"Dr. Sun\"")

	transitsCmd.Flags().Int64Var(&aspectsChartID, "chart", 0, "Chart id")
}

func requireChart(id int64) error {
	if id <= 0 {
		return fmt.Errorf("--chart must be greater than zero")
	}
	return nil
}
