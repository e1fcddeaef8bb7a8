package cli

import (
	"github.com/spf13/cobra"

	"astroaspects/internal/app"
)

var (
	serveListen string
	watchOnce   bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the chart HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().Serve(cmd.Context(), serveListen)
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run the transit watch service",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().Watch(cmd.Context(), app.WatchOptions{Once: watchOnce})
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveListen, "listen", "", "Listen address (defaults to http.listen)")
	watchCmd.Flags().BoolVar(&watchOnce, "once", false, "Run a single check and exit")
}
