// Package jobs runs the periodic alarms: loyalty rescoring and feed polling.
package jobs

import (
	"context"
	"errors"
	"time"

	"curator/internal/config"
	"curator/internal/logging"
	"curator/internal/metrics"
	"curator/internal/schedule"
)

// Job names.
const (
	ScoreUpdater = "score-updater"
	FeedPoller   = "feed-poller"
)

// CursorStore keeps each job's last successful run.
type CursorStore interface {
	SaveCursor(ctx context.Context, key, value string) error
	LoadCursor(ctx context.Context, key string) (string, error)
}

// Job is a named task that should run every Interval.
type Job struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

// Tasks is what the default alarms drive.
type Tasks interface {
	RefreshScores(ctx context.Context) error
	PollFeeds(ctx context.Context) error
}

// Default returns the score updater and feed poller at the configured intervals.
func Default(t Tasks, cfg config.ScheduleConfig) []Job {
	return []Job{
		{Name: ScoreUpdater, Interval: cfg.ScoreUpdateInterval, Run: t.RefreshScores},
		{Name: FeedPoller, Interval: cfg.FeedPollInterval, Run: t.PollFeeds},
	}
}

func cursorKey(name string) string { return "job:" + name }

// LastRun returns when the job last succeeded, zero if never.
func LastRun(ctx context.Context, st CursorStore, name string) (time.Time, error) {
	v, err := st.LoadCursor(ctx, cursorKey(name))
	if err != nil || v == "" {
		return time.Time{}, err
	}
	return time.Parse(time.RFC3339Nano, v)
}

// RunOnce runs every due job and records the successful ones. A failing job
// does not stop the others; their errors are joined. It returns the names
// of the jobs that ran successfully.
func RunOnce(ctx context.Context, st CursorStore, jobs []Job, now time.Time) ([]string, error) {
	var ran []string
	var errs []error
	for _, j := range jobs {
		last, err := LastRun(ctx, st, j.Name)
		if err != nil {
			logging.Warn().Err(err).Str("job", j.Name).Msg("job cursor unreadable, running")
			last = time.Time{}
		}
		if !schedule.Due(last, j.Interval, now) {
			continue
		}
		start := time.Now()
		metrics.IncJobRun(j.Name)
		if err := j.Run(ctx); err != nil {
			logging.Error().Err(err).Str("job", j.Name).Msg("job_error")
			errs = append(errs, err)
			continue
		}
		if err := st.SaveCursor(ctx, cursorKey(j.Name), now.UTC().Format(time.RFC3339Nano)); err != nil {
			errs = append(errs, err)
			continue
		}
		logging.Info().Str("job", j.Name).Dur("took", time.Since(start)).Msg("job_ok")
		ran = append(ran, j.Name)
	}
	return ran, errors.Join(errs...)
}

// RunLoop runs RunOnce immediately and then on every tick until ctx is cancelled.
func RunLoop(ctx context.Context, st CursorStore, jobs []Job, tick time.Duration) error {
	t := time.NewTicker(tick)
	defer t.Stop()
	_, _ = RunOnce(ctx, st, jobs, time.Now())
	for {
		select {
		case <-ctx.Done():
			logging.Info().Msg("job_loop_stop")
			return ctx.Err()
		case now := <-t.C:
			_, _ = RunOnce(ctx, st, jobs, now)
		}
	}
}
