package enrich

import (
	"context"
	"errors"
	"testing"
	"time"

	"curator/internal/keywords"
	"curator/internal/model"
	"curator/internal/store/sqlitevec"
)

type fakeSummarizer struct {
	text string
	err  error
}

func (f fakeSummarizer) Summarize(ctx context.Context, name, research string) (string, error) {
	return f.text, f.err
}

func TestEnrichCreatorWeightsSummaryKeywords(t *testing.T) {
	c := model.Creator{ID: "@a", Name: "A", Keywords: map[string]int{"rust": 1}}
	s := fakeSummarizer{text: "A channel about Rust compilers and compilers internals."}
	got, err := EnrichCreator(context.Background(), c, "search results", s, keywords.StopSet(keywords.DefaultStopWords))
	if err != nil {
		t.Fatal(err)
	}
	if got.EnrichedDescription != s.text {
		t.Fatalf("description not set: %q", got.EnrichedDescription)
	}
	if got.Keywords["rust"] != 6 || got.Keywords["compilers"] != 5 || got.Keywords["internals"] != 5 {
		t.Fatalf("unexpected keywords %v", got.Keywords)
	}
	if c.Keywords["rust"] != 1 {
		t.Fatal("input creator mutated")
	}
}

func TestEnrichCreatorFailure(t *testing.T) {
	c := model.Creator{ID: "@a"}
	if _, err := EnrichCreator(context.Background(), c, "x", fakeSummarizer{err: errors.New("down")}, nil); err == nil {
		t.Fatal("expected error")
	}
	if _, err := EnrichCreator(context.Background(), c, "x", fakeSummarizer{}, nil); err == nil {
		t.Fatal("empty summary should be an error")
	}
}

func TestAccumulateTags(t *testing.T) {
	creators := map[string]model.Creator{"@a": {ID: "@a", Name: "A"}}
	h := []model.HistoryEntry{
		{ChannelID: "@a", Tags: []string{"Rust", "async"}},
		{ChannelID: "@a", Tags: []string{"rust"}},
		{ChannelID: "@new", Tags: []string{"cooking"}},
	}
	got := AccumulateTags(creators, h)
	if got["@a"].Keywords["rust"] != 2 || got["@a"].Keywords["async"] != 1 {
		t.Fatalf("unexpected %v", got["@a"].Keywords)
	}
	if got["@new"].Keywords["cooking"] != 1 || got["@new"].Name != "@new" {
		t.Fatalf("new creator not created: %+v", got["@new"])
	}
	if creators["@a"].Keywords != nil {
		t.Fatal("input map mutated")
	}
}

func TestBudget(t *testing.T) {
	db, err := sqlitevec.Open(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	b := Budget{Store: db, Type: ActionEnrich, MaxPerHour: 2, MaxPerDay: 3}
	ok, err := b.Allow(ctx, now)
	if err != nil || !ok {
		t.Fatalf("expected allowed, got %v %v", ok, err)
	}
	_ = b.Record(ctx, now)
	_ = b.Record(ctx, now.Add(5*time.Minute))
	if ok, _ = b.Allow(ctx, now.Add(10*time.Minute)); ok {
		t.Fatal("expected blocked by hourly budget")
	}
	_ = b.Record(ctx, now.Add(65*time.Minute))
	if ok, _ = b.Allow(ctx, now.Add(70*time.Minute)); ok {
		t.Fatal("expected blocked by daily budget")
	}
	if ok, _ = b.Allow(ctx, now.Add(24*time.Hour)); !ok {
		t.Fatal("expected a fresh day to be allowed")
	}
}
