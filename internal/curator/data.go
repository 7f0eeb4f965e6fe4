package curator

import (
	"context"
	"fmt"
	"io"
	"time"

	"curator/internal/analytics"
	"curator/internal/export"
	"curator/internal/recommend"
)

// Export formats.
const (
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
)

// Export writes all stored data as JSON, or the watch log as Markdown.
func (c *Curator) Export(ctx context.Context, w io.Writer, format string) error {
	creators, err := c.store.GetCreators(ctx)
	if err != nil {
		return err
	}
	history, err := c.store.GetHistory(ctx)
	if err != nil {
		return err
	}
	switch format {
	case FormatMarkdown:
		return export.Markdown(w, history, creators, c.cfg.Location())
	case FormatJSON, "":
		suggestions, err := c.store.GetSuggestions(ctx)
		if err != nil {
			return err
		}
		embeddings, err := c.store.GetAllEmbeddings(ctx)
		if err != nil {
			return err
		}
		return export.JSON(w, export.Snapshot{
			ExportedAt:  c.now().UTC(),
			Creators:    creators,
			History:     history,
			Suggestions: suggestions,
			Embeddings:  embeddings,
		})
	default:
		return fmt.Errorf("unknown export format %q", format)
	}
}

// Galaxy builds the creator graph from stored profiles.
func (c *Curator) Galaxy(ctx context.Context) (recommend.Galaxy, error) {
	creators, err := c.store.GetCreators(ctx)
	if err != nil {
		return recommend.Galaxy{}, err
	}
	return recommend.BuildGalaxy(creators), nil
}

// DayCount is the number of watches on one local calendar day.
type DayCount struct {
	Day     time.Time `json:"day"`
	Watches int       `json:"watches"`
}

// WatchStats counts watches per local day, oldest first, optionally for one channel.
func (c *Curator) WatchStats(ctx context.Context, channelID string) ([]DayCount, error) {
	history, err := c.store.GetHistory(ctx)
	if err != nil {
		return nil, err
	}
	if channelID != "" {
		history = analytics.ForChannel(history, channelID)
	}
	per := analytics.WatchesPerDay(history, c.cfg.Location())
	out := make([]DayCount, 0, len(per))
	for _, d := range analytics.SortedDays(per) {
		out = append(out, DayCount{Day: d, Watches: per[d]})
	}
	return out, nil
}

// Reset wipes every table.
func (c *Curator) Reset(ctx context.Context) error {
	if err := c.store.ClearAll(ctx); err != nil {
		return err
	}
	c.log.Warn().Msg("store_reset")
	return nil
}
