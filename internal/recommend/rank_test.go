package recommend

import (
	"context"
	"errors"
	"math"
	"reflect"
	"testing"
	"time"

	"curator/internal/model"
	"curator/internal/suggest"
)

var now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newSug(id, reason string) model.Suggestion {
	return model.Suggestion{ChannelID: id, Reason: reason, Status: model.StatusNew}
}

func TestIsBridgeCreator(t *testing.T) {
	if !IsBridgeCreator("This creator talks about AI and coding tutorials.", []string{"coding", "ai", "cooking"}) {
		t.Fatal("expected bridge with two topics")
	}
	if IsBridgeCreator("Just a coding channel.", []string{"coding", "ai"}) {
		t.Fatal("one topic is not a bridge")
	}
	if !IsBridgeCreator("codingtutorials for GAMEDEV", []string{"coding", "gamedev"}) {
		t.Fatal("substring containment should count")
	}
	if IsBridgeCreator("coding coding coding", []string{"coding", "Coding"}) {
		t.Fatal("duplicate topics must count once")
	}
	if IsBridgeCreator("ai and coding", []string{" ai ", "coding"}) {
		t.Fatal("topics match as given, padding included")
	}
	if IsBridgeCreator("", []string{"a", "b"}) || IsBridgeCreator("anything", nil) {
		t.Fatal("empty input is never a bridge")
	}
}

func semanticInput() Input {
	creators := map[string]model.Creator{
		"a": {ID: "a", Name: "Alpha", LoyaltyScore: 90, Keywords: map[string]int{"rust": 9, "systems": 4, "async": 2}},
		"b": {ID: "b", Name: "Beta", LoyaltyScore: 80, Keywords: map[string]int{"cooking": 3}},
		"c": {ID: "c", Name: "NoVec", LoyaltyScore: 70},
	}
	return Input{
		Creators:          creators,
		CreatorEmbeddings: map[string][]float32{"a": {1, 0}, "b": {0, 1}},
		Now:               now,
		Options:           DefaultOptions(),
	}
}

func TestRankIdenticalToCentroidWinsAndCap(t *testing.T) {
	in := semanticInput()
	in.SuggestionEmbeddings = map[string][]float32{}
	vecs := [][]float32{{1, 0.1}, {0.2, 1}, {1, 0.4}, {0.5, 0.5}, {1, -0.5}, {0.9, 0.3}, {0.1, 0.9}}
	for i, v := range vecs {
		id := string(rune('p' + i))
		in.Suggestions = append(in.Suggestions, newSug(id, "Endorsed by a"))
		in.SuggestionEmbeddings[id] = v
	}
	in.Suggestions = append(in.Suggestions, model.Suggestion{ChannelID: "ignored", Reason: "x", Status: model.StatusIgnored})

	res := Rank(in)
	if res.Mode != ModeSemantic {
		t.Fatalf("mode %s", res.Mode)
	}
	if len(res.Items) != 5 {
		t.Fatalf("want 5 items, got %d", len(res.Items))
	}
	if res.Candidates != 7 {
		t.Fatalf("ignored suggestion should not be a candidate, got %d", res.Candidates)
	}
	if res.Items[0].Suggestion.ChannelID != "s" || math.Abs(res.Items[0].Score-1) > 1e-6 {
		t.Fatalf("centroid twin should lead, got %+v", res.Items[0])
	}
	for i := 1; i < len(res.Items); i++ {
		if res.Items[i].Score > res.Items[i-1].Score {
			t.Fatalf("not sorted at %d", i)
		}
	}
}

func TestRankStableTies(t *testing.T) {
	in := semanticInput()
	in.Suggestions = []model.Suggestion{newSug("first", "r"), newSug("second", "r")}
	in.SuggestionEmbeddings = map[string][]float32{"first": {1, 1}, "second": {1, 1}}
	res := Rank(in)
	if res.Items[0].Suggestion.ChannelID != "first" {
		t.Fatalf("tie should keep input order, got %v", res.Items[0].Suggestion.ChannelID)
	}
}

func TestRankNeighbourAndExplainable(t *testing.T) {
	in := semanticInput()
	in.Suggestions = []model.Suggestion{newSug("x", "Async Rust deep dives")}
	in.SuggestionEmbeddings = map[string][]float32{"x": {1, 0.05}}
	res := Rank(in)
	it := res.Items[0]
	if it.NeighborID != "a" || !it.Explainable {
		t.Fatalf("expected neighbour a and explainable, got %+v", it)
	}
	if !reflect.DeepEqual(it.MatchedKeywords, []string{"rust", "async"}) {
		t.Fatalf("matched keywords %v", it.MatchedKeywords)
	}
	if it.Reason != "Async Rust deep dives" {
		t.Fatal("rank must not rewrite the reason")
	}
}

func TestRankRabbitHoleSemanticBoost(t *testing.T) {
	in := semanticInput()
	in.Suggestions = []model.Suggestion{newSug("x", "Knife skills for cooking"), newSug("y", "other")}
	in.SuggestionEmbeddings = map[string][]float32{"x": {0, 1}, "y": {1, 1}}

	base := Rank(in)
	in.RabbitHole = NewRabbitHole("Cooking", 30*time.Minute, now.Add(-time.Minute))
	boosted := Rank(in)

	if base.Items[0].Suggestion.ChannelID != "y" || boosted.Items[0].Suggestion.ChannelID != "x" {
		t.Fatalf("rabbit hole should lift x: base=%v boosted=%v", base.Items[0].Suggestion.ChannelID, boosted.Items[0].Suggestion.ChannelID)
	}
	var bx, px float64
	for _, it := range base.Items {
		if it.Suggestion.ChannelID == "x" {
			bx = it.Score
		}
	}
	px = boosted.Items[0].Score
	if math.Abs(px-bx-0.5) > 1e-9 {
		t.Fatalf("boost should be 0.5, got %v", px-bx)
	}

	in.RabbitHole = NewRabbitHole("cooking", time.Minute, now.Add(-time.Hour))
	if Rank(in).Items[0].Suggestion.ChannelID != "y" {
		t.Fatal("expired rabbit hole must not boost")
	}
}

func TestRankKeywordFallback(t *testing.T) {
	in := semanticInput()
	in.CreatorEmbeddings = nil
	in.Suggestions = []model.Suggestion{newSug("plain", "misc stuff"), newSug("rusty", "Rust and async, more rust")}
	res := Rank(in)
	if res.Mode != ModeKeyword {
		t.Fatalf("mode %s", res.Mode)
	}
	top := res.Items[0]
	if top.Suggestion.ChannelID != "rusty" || math.Abs(top.Score-0.2) > 1e-9 || top.Mode != ModeKeyword {
		t.Fatalf("want rusty scoring 0.09+0.02+0.09, got %+v", top)
	}
	if top.Explainable || top.NeighborID != "" {
		t.Fatal("keyword matches have no neighbour")
	}

	in.RabbitHole = NewRabbitHole("stuff", time.Hour, now)
	res = Rank(in)
	if res.Items[0].Suggestion.ChannelID != "plain" || res.Items[0].Score != 10 {
		t.Fatalf("keyword rabbit hole should add 10 once, got %+v", res.Items[0])
	}
}

func TestRankPerItemDegradation(t *testing.T) {
	in := semanticInput()
	in.Suggestions = []model.Suggestion{newSug("vec", "anything"), newSug("novec", "rust")}
	in.SuggestionEmbeddings = map[string][]float32{"vec": {1, 0}}
	res := Rank(in)
	modes := map[string]string{}
	for _, it := range res.Items {
		modes[it.Suggestion.ChannelID] = it.Mode
	}
	if modes["vec"] != ModeSemantic || modes["novec"] != ModeKeyword {
		t.Fatalf("unexpected modes %v", modes)
	}
}

func TestRankBridgeFlag(t *testing.T) {
	in := semanticInput()
	in.CreatorEmbeddings = nil
	in.Suggestions = []model.Suggestion{newSug("b", "rust systems programming"), newSug("n", "rust only")}
	res := Rank(in)
	flags := map[string]bool{}
	for _, it := range res.Items {
		flags[it.Suggestion.ChannelID] = it.Bridge
	}
	if !flags["b"] || flags["n"] {
		t.Fatalf("unexpected bridge flags %v", flags)
	}
}

type fakeGen struct {
	err    error
	topics []string
}

func (f *fakeGen) GenerateReason(ctx context.Context, candidate, matched string, topics []string) (suggest.Reason, error) {
	f.topics = topics
	if f.err != nil {
		return suggest.Reason{}, f.err
	}
	return suggest.Reason{Text: candidate + " is like " + matched, Source: "Fake"}, nil
}

func (f *fakeGen) Summarize(ctx context.Context, name, research string) (string, error) {
	return "", nil
}

func TestExplain(t *testing.T) {
	in := semanticInput()
	items := []Scored{
		{Suggestion: newSug("x", "rust"), Reason: "rust", NeighborID: "a", MatchedKeywords: []string{"rust"}, Explainable: true},
		{Suggestion: newSug("y", "Endorsed by b"), Reason: "Endorsed by b"},
	}
	gen := &fakeGen{}
	out := Explain(context.Background(), items, in.Creators, gen)
	if out[0].Reason != "x is like Alpha" || out[0].ReasonSource != "Fake" {
		t.Fatalf("unexpected %+v", out[0])
	}
	if out[1].Reason != "Endorsed by b" || out[1].ReasonSource != "" {
		t.Fatal("below-threshold items keep their literal reason")
	}
	if items[0].Reason != "rust" {
		t.Fatal("input slice was mutated")
	}

	items[0].MatchedKeywords = nil
	out = Explain(context.Background(), items, in.Creators, &fakeGen{err: errors.New("down")})
	if out[0].Reason != "Semantic match with Alpha (vibe: rust, systems, async)." || out[0].ReasonSource != suggest.SourceSystem {
		t.Fatalf("fallback template expected, got %+v", out[0])
	}
}

func TestRankPartialOptionsKeepDefaults(t *testing.T) {
	in := semanticInput()
	in.Creators["d"] = model.Creator{ID: "d", LoyaltyScore: 10, Keywords: map[string]int{"baking": 1, "chess": 1}}
	in.SuggestionEmbeddings = map[string][]float32{}
	vecs := [][]float32{{1, 0.1}, {0.2, 1}, {1, 0.4}, {0.5, 0.5}, {1, -0.5}, {0.9, 0.3}, {0.1, 0.9}, {0.7, 0.6}}
	for i, v := range vecs {
		id := string(rune('p' + i))
		in.Suggestions = append(in.Suggestions, newSug(id, "rust"))
		in.SuggestionEmbeddings[id] = v
	}
	in.Options = Options{SemanticMatchThreshold: 0.3}

	res := Rank(in)
	if res.Mode != ModeSemantic {
		t.Fatalf("unset TopCreators should default, got mode %s", res.Mode)
	}
	if len(res.Items) != 5 {
		t.Fatalf("unset MaxResults should cap at 5, got %d", len(res.Items))
	}
	if want := []string{"rust", "systems", "cooking", "async", "baking"}; !reflect.DeepEqual(res.TopTopics, want) {
		t.Fatalf("unset BridgeTopics should keep the top 5, got %v", res.TopTopics)
	}

	// cos((1,-0.5), centroid) is about 0.32: explainable only under the lowered threshold.
	low := semanticInput()
	low.Suggestions = []model.Suggestion{newSug("q", "rust")}
	low.SuggestionEmbeddings = map[string][]float32{"q": {1, -0.5}}
	low.Options = Options{SemanticMatchThreshold: 0.3}
	if it := Rank(low).Items[0]; !it.Explainable || it.NeighborID != "a" {
		t.Fatalf("threshold override ignored: %+v", it)
	}
	low.Options = Options{MaxResults: 5}
	if it := Rank(low).Items[0]; it.Explainable {
		t.Fatalf("default threshold 0.4 should apply: %+v", it)
	}
}
