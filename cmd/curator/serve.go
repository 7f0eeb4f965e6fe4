package main

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"

	"curator/internal/jobs"
	"curator/internal/logging"
	"curator/internal/metrics"
	"curator/internal/theme"
)

var serveTick time.Duration

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the periodic score updater and feed poller, exposing metrics",
	Args:  cobra.NoArgs,
	RunE: withApp("serve", func(ctx context.Context, a *app, _ []string) error {
		theme.PrintBanner()
		metrics.StartServer(a.cfg.Metrics.Addr)
		logging.Info().
			Str("metrics_addr", a.cfg.Metrics.Addr).
			Dur("score_interval", a.cfg.Schedule.ScoreUpdateInterval).
			Dur("feed_interval", a.cfg.Schedule.FeedPollInterval).
			Msg("serve_start")
		err := jobs.RunLoop(ctx, a.db, jobs.Default(a.cur.Alarms(), a.cfg.Schedule), serveTick)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}),
}

func init() {
	serveCmd.Flags().DurationVar(&serveTick, "tick", time.Minute, "how often to check for due jobs")
	rootCmd.AddCommand(serveCmd)
}
