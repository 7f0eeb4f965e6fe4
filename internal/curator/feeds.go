package curator

import (
	"context"
	"errors"

	"curator/internal/feed"
	"curator/internal/metrics"
	"curator/internal/recommend"
)

// PollReport counts the outcome of one feed poll.
type PollReport struct {
	Polled  int `json:"polled"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// PollFeeds checks the upload feeds of the top Schedule.FeedPollCount
// creators, records their latest upload and rescores so the hiatus rule sees
// fresh upload dates. A failing feed is logged and skipped.
func (c *Curator) PollFeeds(ctx context.Context) (PollReport, error) {
	var rep PollReport
	if c.feed == nil {
		return rep, nil
	}
	creators, err := c.store.GetCreators(ctx)
	if err != nil {
		return rep, err
	}
	for _, cr := range recommend.TopCreators(creators, c.cfg.Schedule.FeedPollCount) {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		latest, err := c.feed.Latest(ctx, cr.ID)
		switch {
		case errors.Is(err, feed.ErrNotPollable):
			rep.Skipped++
			metrics.IncFeedPoll("skipped")
			continue
		case err != nil:
			rep.Failed++
			metrics.IncFeedPoll("error")
			c.log.Warn().Err(err).Str("creator", cr.ID).Msg("feed poll failed")
			continue
		}
		rep.Polled++
		metrics.IncFeedPoll("ok")
		if cr.LastUploadDate != nil && *cr.LastUploadDate == latest.Published && cr.LatestVideo != nil && cr.LatestVideo.ID == latest.ID {
			continue
		}
		cr = cr.Clone()
		published := latest.Published
		cr.LastUploadDate = &published
		if latest.ID != "" && latest.Title != "" {
			cr.LatestVideo = &latest
		}
		if err := c.store.SaveCreator(ctx, cr); err != nil {
			return rep, err
		}
		rep.Updated++
	}
	c.log.Info().Int("polled", rep.Polled).Int("updated", rep.Updated).Int("skipped", rep.Skipped).Int("failed", rep.Failed).Msg("feeds_polled")
	if _, err := c.RefreshScores(ctx); err != nil {
		return rep, err
	}
	return rep, nil
}

// Alarms adapts the curator to the periodic job runner.
type Alarms struct{ c *Curator }

// Alarms returns the score-updater and feed-poller tasks.
func (c *Curator) Alarms() Alarms { return Alarms{c: c} }

func (a Alarms) RefreshScores(ctx context.Context) error {
	_, err := a.c.RefreshScores(ctx)
	return err
}

func (a Alarms) PollFeeds(ctx context.Context) error {
	_, err := a.c.PollFeeds(ctx)
	return err
}
