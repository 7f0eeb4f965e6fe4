package enrich

import (
	"context"
	"time"
)

// ActionEnrich is the action type recorded per enrichment run.
const ActionEnrich = "enrich"

// ActionStore counts timestamped actions.
type ActionStore interface {
	PutAction(ctx context.Context, ts time.Time, typ string) error
	CountActionsWithin(ctx context.Context, start, end time.Time, typ string) (int, error)
}

// Budget caps how often an action may run per clock hour and per UTC day.
// Zero limits are unlimited.
type Budget struct {
	Store      ActionStore
	Type       string
	MaxPerHour int
	MaxPerDay  int
}

// Allow checks hourly/daily budgets before running.
func (b Budget) Allow(ctx context.Context, now time.Time) (bool, error) {
	now = now.UTC()
	startHour := time.Date(now.Year(), now.Month(), now.Day(), now.Hour(), 0, 0, 0, time.UTC)
	startDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if b.MaxPerHour > 0 {
		n, err := b.Store.CountActionsWithin(ctx, startHour, startHour.Add(time.Hour), b.Type)
		if err != nil {
			return false, err
		}
		if n >= b.MaxPerHour {
			return false, nil
		}
	}
	if b.MaxPerDay > 0 {
		n, err := b.Store.CountActionsWithin(ctx, startDay, startDay.Add(24*time.Hour), b.Type)
		if err != nil {
			return false, err
		}
		if n >= b.MaxPerDay {
			return false, nil
		}
	}
	return true, nil
}

// Record logs one run.
func (b Budget) Record(ctx context.Context, now time.Time) error {
	return b.Store.PutAction(ctx, now, b.Type)
}
