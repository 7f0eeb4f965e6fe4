package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"curator/internal/keywords"
	"curator/internal/model"
	"curator/internal/util"
)

var scoreTop int

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Recompute loyalty scores from the watch history",
	Args:  cobra.NoArgs,
	RunE: withApp("score", func(ctx context.Context, a *app, _ []string) error {
		if _, err := a.cur.RefreshScores(ctx); err != nil {
			return err
		}
		top, err := a.cur.TopCreators(ctx, scoreTop)
		if err != nil {
			return err
		}
		return printCreators(top)
	}),
}

var topCmd = &cobra.Command{
	Use:   "top [n]",
	Short: "List the highest-scoring creators",
	Args:  cobra.MaximumNArgs(1),
	RunE: withApp("top", func(ctx context.Context, a *app, args []string) error {
		n := 10
		if len(args) == 1 {
			v, err := strconv.Atoi(args[0])
			if err != nil || v < 1 {
				return fmt.Errorf("invalid count %q", args[0])
			}
			n = v
		}
		top, err := a.cur.TopCreators(ctx, n)
		if err != nil {
			return err
		}
		return printCreators(top)
	}),
}

func printCreators(cs []model.Creator) error {
	if jsonOut {
		return printJSON(cs)
	}
	for i, c := range cs {
		name := c.Name
		if name == "" {
			name = c.ID
		}
		name = util.Truncate(name, 30)
		kw := keywords.Words(keywords.Top(c.Keywords, 3))
		fmt.Printf("%2d. %-30s score=%3d watches=%-4d %s\n", i+1, name, c.LoyaltyScore, c.Frequency, strings.Join(kw, ", "))
	}
	return nil
}

var statsChannel string

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show watches per day",
	Args:  cobra.NoArgs,
	RunE: withApp("stats", func(ctx context.Context, a *app, _ []string) error {
		days, err := a.cur.WatchStats(ctx, statsChannel)
		if err != nil {
			return err
		}
		if jsonOut {
			return printJSON(days)
		}
		capped := 0
		for _, d := range days {
			flag := ""
			if d.Watches > a.cfg.Scoring.DailySessionCap {
				flag = fmt.Sprintf("  (binge, counts as %d)", a.cfg.Scoring.DailySessionCap)
				capped++
			}
			fmt.Printf("%s  %3d%s\n", d.Day.Format(time.DateOnly), d.Watches, flag)
		}
		fmt.Printf("%d days, %d over the daily cap\n", len(days), capped)
		return nil
	}),
}

var galaxyCmd = &cobra.Command{
	Use:   "galaxy",
	Short: "Print the creator graph as JSON",
	Args:  cobra.NoArgs,
	RunE: withApp("galaxy", func(ctx context.Context, a *app, _ []string) error {
		g, err := a.cur.Galaxy(ctx)
		if err != nil {
			return err
		}
		return printJSON(g)
	}),
}

func init() {
	scoreCmd.Flags().IntVar(&scoreTop, "top", 10, "how many creators to list afterwards")
	statsCmd.Flags().StringVar(&statsChannel, "channel", "", "only count this creator")
	rootCmd.AddCommand(scoreCmd, topCmd, statsCmd, galaxyCmd)
}
