package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"PairFeed/internal/scheduler"
)

var runOnStart bool

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Repeat the run on a cron schedule until interrupted",
	Long: `Schedule runs the same pass as "run" on the configured six-field cron
spec (seconds first). When Telegram is configured it also answers /run and
/status commands.`,
	RunE: runSchedule,
}

func init() {
	rootCmd.AddCommand(scheduleCmd)

	scheduleCmd.Flags().BoolVar(&runOnStart, "run-now", os.Getenv("RUN_ON_START") == "true", "run once immediately after starting")
}

func runSchedule(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	sched := scheduler.NewScheduler(ctx, a.runner, a.log)
	if err := sched.Register(a.cfg.Schedule.Cron); err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()

	if a.telegram != nil {
		go a.telegram.StartPolling(ctx, sched.HandleCommand)
		a.log.Info().Msg("telegram polling started")
	}
	if runOnStart {
		go sched.RunNow()
	}

	a.log.Info().Str("cron", a.cfg.Schedule.Cron).Msg("pairfeed is running, press Ctrl+C to stop")
	<-ctx.Done()
	a.log.Info().Msg("shutdown signal received, stopping")
	return nil
}
