package curator

import (
	"context"
	"fmt"
	"io"
	"time"

	"curator/internal/enrich"
	"curator/internal/ingest"
	"curator/internal/loyalty"
	"curator/internal/metrics"
	"curator/internal/model"
	"curator/internal/recommend"
)

// RefreshScores recomputes every creator's loyalty score and frequency from
// the full history and saves the result.
func (c *Curator) RefreshScores(ctx context.Context) (map[string]model.Creator, error) {
	start := time.Now()
	creators, err := c.store.GetCreators(ctx)
	if err != nil {
		return nil, fmt.Errorf("load creators: %w", err)
	}
	history, err := c.store.GetHistory(ctx)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	updated := loyalty.UpdateAll(creators, history, LoyaltyOptions(c.cfg), c.now())
	if err := c.store.SaveCreators(ctx, updated); err != nil {
		return nil, fmt.Errorf("save creators: %w", err)
	}
	metrics.ObserveScoreUpdate(start)
	c.log.Info().Int("creators", len(updated)).Int("history", len(history)).Dur("took", time.Since(start)).Msg("scores_refreshed")
	return updated, nil
}

// ImportHistory reads an exported history, stores the entries it has not
// seen, folds their tags into the creators' keywords and rescores.
func (c *Curator) ImportHistory(ctx context.Context, r io.Reader) (ingest.Report, error) {
	entries, err := ingest.ReadHistory(r)
	if err != nil {
		return ingest.Report{}, err
	}
	rep, added, err := ingest.Import(ctx, c.store, entries, c.stop)
	if err != nil {
		return rep, err
	}
	if len(added) > 0 {
		creators, err := c.store.GetCreators(ctx)
		if err != nil {
			return rep, err
		}
		if err := c.store.SaveCreators(ctx, enrich.AccumulateTags(creators, added)); err != nil {
			return rep, err
		}
	}
	c.log.Info().Int("read", rep.Read).Int("added", rep.Added).Int("skipped", rep.Skipped).Msg("history_imported")
	if _, err := c.RefreshScores(ctx); err != nil {
		return rep, err
	}
	return rep, nil
}

// RecordWatch appends a single watch event. It reports false when the event
// was already recorded.
func (c *Curator) RecordWatch(ctx context.Context, h model.HistoryEntry) (bool, error) {
	h = ingest.Normalize(h, c.stop)
	if h.VideoID == "" || h.ChannelID == "" {
		return false, fmt.Errorf("record watch: videoId and channelId are required")
	}
	if h.Timestamp <= 0 {
		h.Timestamp = c.now().UnixMilli()
	}
	added, err := c.store.AddHistoryEntry(ctx, h)
	if err != nil || !added {
		return false, err
	}
	creators, err := c.store.GetCreators(ctx)
	if err != nil {
		return true, err
	}
	updated := enrich.AccumulateTags(creators, []model.HistoryEntry{h})
	return true, c.store.SaveCreator(ctx, updated[h.ChannelID])
}

// TopCreators returns the n highest-scoring creators.
func (c *Curator) TopCreators(ctx context.Context, n int) ([]model.Creator, error) {
	creators, err := c.store.GetCreators(ctx)
	if err != nil {
		return nil, err
	}
	return recommend.TopCreators(creators, n), nil
}
