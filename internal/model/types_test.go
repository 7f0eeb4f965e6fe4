package model

import "testing"

func TestCloneIsDeep(t *testing.T) {
	c := Creator{
		ID:             "@a",
		LastUploadDate: Ptr(int64(5)),
		LatestVideo:    &LatestVideo{ID: "v"},
		Keywords:       map[string]int{"go": 1},
		Endorsements:   []string{"@b"},
	}
	cp := c.Clone()
	*cp.LastUploadDate = 9
	cp.LatestVideo.ID = "w"
	cp.Keywords["go"] = 7
	cp.Endorsements[0] = "@z"
	if *c.LastUploadDate != 5 || c.LatestVideo.ID != "v" || c.Keywords["go"] != 1 || c.Endorsements[0] != "@b" {
		t.Fatalf("clone shares state with original: %+v", c)
	}
	if !c.Endorses("@b") || c.Endorses("@z") {
		t.Fatal("Endorses")
	}
}

func TestSuggestionStatusValid(t *testing.T) {
	for _, s := range []SuggestionStatus{StatusNew, StatusIgnored, StatusFollowed} {
		if !s.Valid() {
			t.Errorf("%s should be valid", s)
		}
	}
	if SuggestionStatus("liked").Valid() {
		t.Error("unknown status accepted")
	}
	if VideoKey("abc") != "video:abc" {
		t.Error("VideoKey")
	}
}
