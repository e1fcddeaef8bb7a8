package cli

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"astroaspects/internal/aspect"
)

var (
	simulateAspect string
	simulateOrb    float64
)

var simulateCmd = &cobra.Command{
	Use:   "simulate-alert",
	Short: "发送一条模拟行运提醒",
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, ok := aspect.ByName(simulateAspect)
		if !ok {
			return fmt.Errorf("unknown aspect %q", simulateAspect)
		}
		if simulateOrb < 0 {
			return errors.New("--orb 不能为负数")
		}
		return getApp().SimulateAlert(cmd.Context(), kind, decimal.NewFromFloat(simulateOrb))
	},
}

func init() {
	simulateCmd.Flags().StringVar(&simulateAspect, "aspect", "Square", "相位名称")
	simulateCmd.Flags().Float64Var(&simulateOrb, "orb", 1.5, "容许度 (度)")
}
