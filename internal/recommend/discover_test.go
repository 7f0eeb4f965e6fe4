package recommend

import (
	"reflect"
	"testing"

	"curator/internal/model"
)

func TestAddCandidates(t *testing.T) {
	creators := map[string]model.Creator{"@src": {ID: "@src"}, "@known": {ID: "@known"}}
	existing := []model.Suggestion{{ChannelID: "@old", Reason: "Endorsed by @x", Status: model.StatusIgnored}}
	out, added := AddCandidates(existing, creators, "@src", []string{"@known", "@old", "@fresh", "@fresh", "", "@src"})
	if added != 1 || len(out) != 2 {
		t.Fatalf("want one new suggestion, got %d %v", added, out)
	}
	if out[1] != (model.Suggestion{ChannelID: "@fresh", Reason: "Endorsed by @src", Status: model.StatusNew}) {
		t.Fatalf("unexpected suggestion %+v", out[1])
	}
	if len(existing) != 1 {
		t.Fatal("input slice grew")
	}
}

func TestRecordEndorsements(t *testing.T) {
	c := model.Creator{ID: "@src", Endorsements: []string{"@a"}}
	got := RecordEndorsements(c, []string{"@b", "@a", "@src", "@b"})
	if !reflect.DeepEqual(got.Endorsements, []string{"@a", "@b"}) {
		t.Fatalf("unexpected %v", got.Endorsements)
	}
	if len(c.Endorsements) != 1 {
		t.Fatal("input creator mutated")
	}
}

func TestUpdateStatusAndFingerprint(t *testing.T) {
	s := []model.Suggestion{{ChannelID: "a", Status: model.StatusNew}}
	out, ok := UpdateStatus(s, "a", model.StatusFollowed)
	if !ok || out[0].Status != model.StatusFollowed || s[0].Status != model.StatusNew {
		t.Fatalf("unexpected %v %v", out, ok)
	}
	if _, ok := UpdateStatus(s, "missing", model.StatusIgnored); ok {
		t.Fatal("missing suggestion should report false")
	}

	creators := map[string]model.Creator{
		"a": {ID: "a", LoyaltyScore: 10}, "b": {ID: "b", LoyaltyScore: 50}, "c": {ID: "c", LoyaltyScore: 50},
	}
	if got := FingerprintTopCreators(creators, 2); !reflect.DeepEqual(got, []string{"b", "c"}) {
		t.Fatalf("unexpected fingerprint %v", got)
	}
}

func TestBuildGalaxy(t *testing.T) {
	creators := map[string]model.Creator{
		"a":     {ID: "a", Frequency: 3, LoyaltyScore: 85, Keywords: map[string]int{"rust": 5, "async": 2, "wasm": 1}},
		"b":     {ID: "b", Frequency: 1, LoyaltyScore: 5, Keywords: map[string]int{"rust": 1, "async": 1}},
		"c":     {ID: "c", Frequency: 2, Keywords: map[string]int{"rust": 1}},
		"ghost": {ID: "ghost", Keywords: map[string]int{"rust": 1, "async": 1}},
	}
	g := BuildGalaxy(creators)
	if len(g.Nodes) != 3 {
		t.Fatalf("unwatched creators are excluded, got %d nodes", len(g.Nodes))
	}
	if g.Nodes[0].Val != 8.5 || g.Nodes[1].Val != 2 {
		t.Fatalf("unexpected node sizes %+v", g.Nodes)
	}
	if len(g.Links) != 1 || g.Links[0] != (Link{Source: "a", Target: "b", Value: 2}) {
		t.Fatalf("unexpected links %+v", g.Links)
	}
}
