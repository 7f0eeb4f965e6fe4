package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"curator/internal/cmdlog"
	"curator/internal/config"
	"curator/internal/curator"
	"curator/internal/theme"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmdlog.Run("init", func() error {
			if err := config.Save(cfgPath, config.Default()); err != nil {
				return err
			}
			abs, _ := filepath.Abs(cfgPath)
			theme.PrintBanner()
			fmt.Println("Config written to:", abs)
			return nil
		})
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file|->",
	Short: "Import watch history (JSON array or one JSON object per line)",
	Args:  cobra.ExactArgs(1),
	RunE: withApp("import", func(ctx context.Context, a *app, args []string) error {
		var r io.Reader = os.Stdin
		if args[0] != "-" {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			r = f
		}
		rep, err := a.cur.ImportHistory(ctx, r)
		if err != nil {
			return err
		}
		if jsonOut {
			return printJSON(rep)
		}
		fmt.Printf("read=%d added=%d skipped=%d\n", rep.Read, rep.Added, rep.Skipped)
		return nil
	}),
}

var (
	exportFormat string
	exportOut    string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export all data as JSON or the watch log as Markdown",
	Args:  cobra.NoArgs,
	RunE: withApp("export", func(ctx context.Context, a *app, _ []string) error {
		var w io.Writer = os.Stdout
		if exportOut != "" {
			f, err := os.Create(exportOut)
			if err != nil {
				return err
			}
			defer f.Close()
			w = f
		}
		return a.cur.Export(ctx, w, exportFormat)
	}),
}

var resetYes bool

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete every creator, watch, suggestion and embedding",
	Args:  cobra.NoArgs,
	RunE: withApp("reset", func(ctx context.Context, a *app, _ []string) error {
		if !resetYes {
			return errors.New("refusing to reset without --yes")
		}
		if err := a.cur.Reset(ctx); err != nil {
			return err
		}
		fmt.Println("All data cleared.")
		return nil
	}),
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", curator.FormatJSON, "json or markdown")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file (default stdout)")
	resetCmd.Flags().BoolVar(&resetYes, "yes", false, "confirm the reset")
	rootCmd.AddCommand(initCmd, importCmd, exportCmd, resetCmd)
}
