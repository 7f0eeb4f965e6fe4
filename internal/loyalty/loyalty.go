// Package loyalty turns a creator's watch log into a bounded loyalty score.
package loyalty

import (
	"math"
	"sort"
	"time"

	"curator/internal/analytics"
	"curator/internal/model"
)

const (
	DefaultDailySessionCap    = 3
	DefaultMaxFrequencyPoints = 30
	DefaultDecayMonths        = 5

	completionPoints = 70.0
	recentWindow     = 10
	endorsementBoost = 5.0
	endorserMinScore = 80
	decayFactor      = 0.2
	dayMillis        = 86_400_000
)

// Options tunes the scoring constants. Zero values fall back to the defaults.
type Options struct {
	DailySessionCap    int
	MaxFrequencyPoints int
	DecayMonths        int
	// Location decides what a calendar day is for the binge cap. Nil means time.Local.
	Location *time.Location
}

func (o Options) withDefaults() Options {
	if o.DailySessionCap <= 0 {
		o.DailySessionCap = DefaultDailySessionCap
	}
	if o.MaxFrequencyPoints <= 0 {
		o.MaxFrequencyPoints = DefaultMaxFrequencyPoints
	}
	if o.DecayMonths <= 0 {
		o.DecayMonths = DefaultDecayMonths
	}
	if o.Location == nil {
		o.Location = time.Local
	}
	return o
}

// Metrics is the result of scoring one creator. Frequency is the raw watch
// count; the per-day cap only feeds Score.
type Metrics struct {
	Score     int `json:"score"`
	Frequency int `json:"frequency"`
}

// Calculate scores creator against the full history. creators is optional and
// only used for the endorsement boost; pass nil to skip it.
func Calculate(creator model.Creator, history []model.HistoryEntry, creators map[string]model.Creator, opts Options, now time.Time) Metrics {
	opts = opts.withDefaults()
	watches := analytics.ForChannel(history, creator.ID)
	if len(watches) == 0 {
		return Metrics{}
	}
	rawFrequency := len(watches)

	effective := 0
	for _, n := range analytics.WatchesPerDay(watches, opts.Location) {
		effective += min(n, opts.DailySessionCap)
	}

	var lastWatch int64 = math.MinInt64
	for _, w := range watches {
		if w.Timestamp > lastWatch {
			lastWatch = w.Timestamp
		}
	}
	daysSince := float64(now.UnixMilli()-lastWatch) / dayMillis

	recent := append([]model.HistoryEntry(nil), watches...)
	sort.SliceStable(recent, func(i, j int) bool { return recent[i].Timestamp > recent[j].Timestamp })
	if len(recent) > recentWindow {
		recent = recent[:recentWindow]
	}
	var completion, fluff float64
	for _, w := range recent {
		total := w.TotalDuration
		if total == 0 {
			total = 1
		}
		completion += w.WatchTime / total
		if w.TrueDuration != nil && *w.TrueDuration != 0 {
			fluff += *w.TrueDuration / total
		} else {
			fluff++
		}
	}
	avgCompletion := completion / float64(len(recent))
	avgFluff := fluff / float64(len(recent))

	score := avgCompletion*completionPoints + float64(min(effective, opts.MaxFrequencyPoints))

	if creators != nil {
		score += endorsementBoost * float64(endorsers(creator.ID, creators))
	}

	switch {
	case avgFluff < 0.5:
		score *= 0.5
	case avgFluff < 0.7:
		score *= 0.8
	}

	// A creator on hiatus (no upload since the last watch) is exempt from decay.
	if daysSince > float64(opts.DecayMonths*30) && creator.LastUploadDate != nil && *creator.LastUploadDate > lastWatch {
		score *= decayFactor
	}

	final := int(math.Round(math.Min(score, 100)))
	if final < 0 {
		final = 0
	}
	return Metrics{Score: final, Frequency: rawFrequency}
}

func endorsers(id string, creators map[string]model.Creator) int {
	n := 0
	for otherID, c := range creators {
		if otherID == id || c.ID == id {
			continue
		}
		if c.LoyaltyScore > endorserMinScore && c.Endorses(id) {
			n++
		}
	}
	return n
}

// UpdateAll rescores every creator and returns a fresh map. The input map is
// only read, so endorsement lookups always see the scores from before the pass.
func UpdateAll(creators map[string]model.Creator, history []model.HistoryEntry, opts Options, now time.Time) map[string]model.Creator {
	out := make(map[string]model.Creator, len(creators))
	for id, c := range creators {
		m := Calculate(c, history, creators, opts, now)
		next := c.Clone()
		next.LoyaltyScore = m.Score
		next.Frequency = m.Frequency
		out[id] = next
	}
	return out
}
