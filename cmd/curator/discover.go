package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"curator/internal/model"
	"curator/internal/util"
)

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Rank discovered creators against your top creators",
	Args:  cobra.NoArgs,
	RunE: withApp("recommend", func(ctx context.Context, a *app, _ []string) error {
		res, err := a.cur.Recommend(ctx)
		if err != nil {
			return err
		}
		if jsonOut {
			return printJSON(res)
		}
		fmt.Printf("mode=%s candidates=%d\n", res.Mode, res.Candidates)
		for i, it := range res.Items {
			tag := ""
			if it.Bridge {
				tag = " [bridge]"
			}
			fmt.Printf("%d. %s  %.3f%s\n   %s\n", i+1, it.Suggestion.ChannelID, it.Score, tag, util.Truncate(it.Reason, 120))
		}
		return nil
	}),
}

func statusCmd(use, short string, status model.SuggestionStatus) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <channel-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: withApp(use, func(ctx context.Context, a *app, args []string) error {
			if err := a.cur.UpdateSuggestionStatus(ctx, args[0], status); err != nil {
				return err
			}
			fmt.Printf("%s -> %s\n", args[0], status)
			return nil
		}),
	}
}

var discoverCmd = &cobra.Command{
	Use:   "discover [source-id featured-id...]",
	Short: "Record channels a creator features; with no arguments list the creators worth scanning",
	RunE: withApp("discover", func(ctx context.Context, a *app, args []string) error {
		if len(args) == 0 {
			ids, err := a.cur.FingerprintSources(ctx)
			if err != nil {
				return err
			}
			if jsonOut {
				return printJSON(ids)
			}
			for _, id := range ids {
				fmt.Println(id)
			}
			return nil
		}
		if len(args) < 2 {
			return errors.New("need a source id and at least one featured channel")
		}
		added, err := a.cur.AddDiscovered(ctx, args[0], args[1:])
		if err != nil {
			return err
		}
		fmt.Printf("%d new suggestions from %s\n", added, args[0])
		return nil
	}),
}

var rabbitClear bool

var rabbitHoleCmd = &cobra.Command{
	Use:   "rabbithole [topic]",
	Short: "Boost one topic in recommendations for a while",
	Args:  cobra.MaximumNArgs(1),
	RunE: withApp("rabbithole", func(ctx context.Context, a *app, args []string) error {
		if len(args) == 0 && !rabbitClear {
			hole, err := a.cur.RabbitHole(ctx)
			if err != nil {
				return err
			}
			if !hole.Active(time.Now()) {
				fmt.Println("No active rabbit hole.")
				return nil
			}
			fmt.Printf("%s until %s\n", hole.Topic, hole.ExpiresAt.Local().Format("15:04"))
			return nil
		}
		topic := ""
		if !rabbitClear {
			topic = args[0]
		}
		hole, err := a.cur.SetRabbitHole(ctx, topic)
		if err != nil {
			return err
		}
		if hole.Topic == "" {
			fmt.Println("Rabbit hole cleared.")
		} else {
			fmt.Printf("Diving into %q until %s\n", hole.Topic, hole.ExpiresAt.Local().Format("15:04"))
		}
		return nil
	}),
}

var researchFile string

var enrichCmd = &cobra.Command{
	Use:   "enrich <creator-id>",
	Short: "Summarize research text into a creator's profile",
	Args:  cobra.ExactArgs(1),
	RunE: withApp("enrich", func(ctx context.Context, a *app, args []string) error {
		r := io.Reader(os.Stdin)
		if researchFile != "" {
			f, err := os.Open(researchFile)
			if err != nil {
				return err
			}
			defer f.Close()
			r = f
		}
		b, err := io.ReadAll(io.LimitReader(r, 1<<20))
		if err != nil {
			return err
		}
		c, err := a.cur.Enrich(ctx, args[0], strings.TrimSpace(string(b)))
		if err != nil {
			return err
		}
		fmt.Println(c.EnrichedDescription)
		return nil
	}),
}

var embedCmd = &cobra.Command{
	Use:   "embed",
	Short: "Embed top creator profiles and recent videos",
	Args:  cobra.NoArgs,
	RunE: withApp("embed", func(ctx context.Context, a *app, _ []string) error {
		rep, err := a.cur.SyncEmbeddings(ctx)
		if err != nil {
			return err
		}
		if jsonOut {
			return printJSON(rep)
		}
		fmt.Printf("creators=%d videos=%d failed=%d\n", rep.Creators, rep.Videos, rep.Failed)
		return nil
	}),
}

var pollCmd = &cobra.Command{
	Use:   "poll",
	Short: "Check creator feeds for new uploads, then rescore",
	Args:  cobra.NoArgs,
	RunE: withApp("poll", func(ctx context.Context, a *app, _ []string) error {
		rep, err := a.cur.PollFeeds(ctx)
		if err != nil {
			return err
		}
		if jsonOut {
			return printJSON(rep)
		}
		fmt.Printf("polled=%d updated=%d skipped=%d failed=%d\n", rep.Polled, rep.Updated, rep.Skipped, rep.Failed)
		return nil
	}),
}

func init() {
	rabbitHoleCmd.Flags().BoolVar(&rabbitClear, "clear", false, "end the current rabbit hole")
	enrichCmd.Flags().StringVar(&researchFile, "research", "", "file with research text (default stdin)")
	rootCmd.AddCommand(
		recommendCmd,
		statusCmd("follow", "Mark a suggestion as followed", model.StatusFollowed),
		statusCmd("ignore", "Hide a suggestion from recommendations", model.StatusIgnored),
		discoverCmd, rabbitHoleCmd, enrichCmd, embedCmd, pollCmd,
	)
}
