package analytics

import (
	"sort"
	"time"

	"curator/internal/model"
)

// WatchesPerDay counts watch events per local calendar day. Keys are local
// midnight in loc; two events share a key iff they fall on the same local
// year/month/day. A nil loc means time.Local.
func WatchesPerDay(entries []model.HistoryEntry, loc *time.Location) map[time.Time]int {
	if loc == nil {
		loc = time.Local
	}
	buckets := make(map[time.Time]int)
	for _, e := range entries {
		t := time.UnixMilli(e.Timestamp).In(loc)
		key := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
		buckets[key]++
	}
	return buckets
}

// SortedDays returns the day keys in chronological order.
func SortedDays(m map[time.Time]int) []time.Time {
	keys := make([]time.Time, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Before(keys[j]) })
	return keys
}

// ForChannel filters history down to one creator.
func ForChannel(history []model.HistoryEntry, channelID string) []model.HistoryEntry {
	var out []model.HistoryEntry
	for _, h := range history {
		if h.ChannelID == channelID {
			out = append(out, h)
		}
	}
	return out
}
