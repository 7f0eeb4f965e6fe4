package loyalty

import (
	"reflect"
	"testing"
	"time"

	"curator/internal/model"
)

var now = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func opts() Options { return Options{Location: time.UTC} }

func watch(ch string, ts time.Time) model.HistoryEntry {
	return model.HistoryEntry{VideoID: ts.String(), ChannelID: ch, WatchTime: 100, TotalDuration: 100, Timestamp: ts.UnixMilli()}
}

func sameDay(ch string, n int, mutate func(*model.HistoryEntry)) []model.HistoryEntry {
	var out []model.HistoryEntry
	for i := 0; i < n; i++ {
		h := watch(ch, now.Add(-time.Duration(i)*time.Minute))
		if mutate != nil {
			mutate(&h)
		}
		out = append(out, h)
	}
	return out
}

func TestSameDayBingeIsCapped(t *testing.T) {
	m := Calculate(model.Creator{ID: "c1"}, sameDay("c1", 10, nil), nil, opts(), now)
	if m.Frequency != 10 || m.Score != 73 {
		t.Fatalf("want freq 10 score 73, got %+v", m)
	}
}

func TestDistinctDays(t *testing.T) {
	var h []model.HistoryEntry
	for i := 0; i < 5; i++ {
		h = append(h, watch("c1", now.AddDate(0, 0, -i)))
	}
	m := Calculate(model.Creator{ID: "c1"}, h, nil, opts(), now)
	if m.Score != 75 || m.Frequency != 5 {
		t.Fatalf("want 75/5, got %+v", m)
	}
}

func TestDecayWhenCreatorKeptUploading(t *testing.T) {
	h := []model.HistoryEntry{watch("c1", now.AddDate(0, 0, -160))}
	c := model.Creator{ID: "c1", LastUploadDate: model.Ptr(now.UnixMilli())}
	m := Calculate(c, h, nil, opts(), now)
	if m.Score >= 20 {
		t.Fatalf("expected decayed score < 20, got %d", m.Score)
	}
}

func TestHiatusExemptFromDecay(t *testing.T) {
	old := now.AddDate(0, 0, -160)
	h := []model.HistoryEntry{watch("c1", old)}
	c := model.Creator{ID: "c1", LastUploadDate: model.Ptr(old.AddDate(0, 0, -1).UnixMilli())}
	if m := Calculate(c, h, nil, opts(), now); m.Score != 71 {
		t.Fatalf("hiatus creator should keep 71, got %d", m.Score)
	}
	c.LastUploadDate = nil
	if m := Calculate(c, h, nil, opts(), now); m.Score != 71 {
		t.Fatalf("unknown upload date should keep 71, got %d", m.Score)
	}
}

func TestFluffPenalties(t *testing.T) {
	heavy := sameDay("c1", 10, func(h *model.HistoryEntry) { h.TrueDuration = model.Ptr(40.0) })
	if m := Calculate(model.Creator{ID: "c1"}, heavy, nil, opts(), now); m.Score != 37 {
		t.Fatalf("heavy filler: want 37 got %d", m.Score)
	}
	minor := sameDay("c1", 10, func(h *model.HistoryEntry) { h.TrueDuration = model.Ptr(60.0) })
	if m := Calculate(model.Creator{ID: "c1"}, minor, nil, opts(), now); m.Score != 58 {
		t.Fatalf("minor filler: want 58 got %d", m.Score)
	}
}

func TestEmptyAndZeroDuration(t *testing.T) {
	if m := Calculate(model.Creator{ID: "none"}, sameDay("c1", 3, nil), nil, opts(), now); m != (Metrics{}) {
		t.Fatalf("no history should be zero, got %+v", m)
	}
	h := sameDay("c1", 1, func(h *model.HistoryEntry) { h.TotalDuration = 0; h.WatchTime = 0 })
	m := Calculate(model.Creator{ID: "c1"}, h, nil, opts(), now)
	if m.Score != 1 || m.Frequency != 1 {
		t.Fatalf("zero duration: got %+v", m)
	}
}

func TestScoreIsClampedTo100(t *testing.T) {
	h := sameDay("c1", 1, func(h *model.HistoryEntry) { h.WatchTime = 500 })
	if m := Calculate(model.Creator{ID: "c1"}, h, nil, opts(), now); m.Score != 100 {
		t.Fatalf("want 100 got %d", m.Score)
	}
}

func TestRecentWindowUsesNewestTen(t *testing.T) {
	var h []model.HistoryEntry
	for i := 0; i < 10; i++ {
		h = append(h, watch("c1", now.AddDate(0, 0, -i)))
	}
	// Old half-watched entries fall outside the window.
	for i := 0; i < 5; i++ {
		e := watch("c1", now.AddDate(0, 0, -30-i))
		e.WatchTime = 10
		h = append(h, e)
	}
	if m := Calculate(model.Creator{ID: "c1"}, h, nil, opts(), now); m.Score != 85 || m.Frequency != 15 {
		t.Fatalf("want 85/15 got %+v", m)
	}
}

func TestSocialBoost(t *testing.T) {
	creators := map[string]model.Creator{
		"c1":   {ID: "c1"},
		"fan":  {ID: "fan", LoyaltyScore: 90, Endorsements: []string{"c1"}},
		"fan2": {ID: "fan2", LoyaltyScore: 85, Endorsements: []string{"c1"}},
		"meh":  {ID: "meh", LoyaltyScore: 80, Endorsements: []string{"c1"}},
	}
	h := sameDay("c1", 1, nil)
	if m := Calculate(creators["c1"], h, creators, opts(), now); m.Score != 81 {
		t.Fatalf("want 71+10, got %d", m.Score)
	}
}

func TestUpdateAllIdempotentAndSnapshot(t *testing.T) {
	creators := map[string]model.Creator{
		"a": {ID: "a", LoyaltyScore: 90, Endorsements: []string{"b"}},
		"b": {ID: "b"},
	}
	h := append(sameDay("b", 2, nil), watch("a", now.AddDate(0, 0, -1)))
	h[len(h)-1].WatchTime = 10

	first := UpdateAll(creators, h, opts(), now)
	// a drops to 8 in this pass, yet b still sees a's old 90.
	if first["a"].LoyaltyScore != 8 || first["b"].LoyaltyScore != 77 {
		t.Fatalf("unexpected scores %+v", first)
	}
	if creators["a"].LoyaltyScore != 90 {
		t.Fatal("input map was mutated")
	}
	again := UpdateAll(creators, h, opts(), now)
	if !reflect.DeepEqual(first, again) {
		t.Fatalf("not idempotent:\n%+v\n%+v", first, again)
	}
}
