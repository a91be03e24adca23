package cmd

import (
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Fetch candles and write payload and forecast files once",
	Long: `Run performs a single pass: intraday and daily candles for the configured
symbol, their inverted counterparts and the daily close forecast.

It exits non-zero when no daily data could be fetched or a file write failed.

Example:
  pairfeed run --config configs/config.yaml`,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	sum, err := a.runner.Run(cmd.Context())
	if err != nil {
		a.log.Error().Err(err).Msg("run failed")
		return err
	}
	a.log.Info().
		Int("files", len(sum.Files)).
		Str("model", sum.ForecastModel).
		Dur("took", sum.Finished.Sub(sum.Started)).
		Msg("run complete")
	return nil
}
