// Command curator scores the creators you actually watch and ranks new ones to try.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"curator/internal/cmdlog"
	"curator/internal/config"
	"curator/internal/curator"
	"curator/internal/logging"
	"curator/internal/store/sqlitevec"
)

var (
	cfgPath string
	jsonOut bool
)

var rootCmd = &cobra.Command{
	Use:           "curator",
	Short:         "Loyalty scoring and creator discovery",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "./curator.yaml", "config path")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "print results as JSON")
}

type app struct {
	cfg config.Config
	db  *sqlitevec.DB
	cur *curator.Curator
}

func loadConfig() (config.Config, error) {
	cfg, err := config.LoadOrDefault(cfgPath)
	if err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	logging.Init(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
	return cfg, nil
}

func openApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	db, err := sqlitevec.Open(cfg.Storage.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Storage.DBPath, err)
	}
	return &app{cfg: cfg, db: db, cur: curator.FromConfig(db, cfg)}, nil
}

// withApp opens the store for a command, counts and logs the run, and closes
// the store afterwards.
func withApp(name string, fn func(ctx context.Context, a *app, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		return cmdlog.Run(name, func() error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.db.Close()
			return fn(cmd.Context(), a, args)
		})
	}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
