package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "pairfeed",
	Short: "AUD/USD candle and forecast feed",
	Long: `PairFeed fetches AUD/USD intraday and daily candles, derives the inverted
USD/AUD pair and writes both, plus a short business-day forecast, as JSON files.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	def := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		def = v
	}
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", def, "path to config file (YAML)")
}
