package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"curator/internal/model"
)

func TestClock(t *testing.T) {
	cases := map[int64]string{0: "00:00:00", 75: "00:01:15", 3725: "01:02:05", -4: "00:00:00"}
	for in, want := range cases {
		if got := Clock(in); got != want {
			t.Errorf("Clock(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestMarkdownNewestFirst(t *testing.T) {
	history := []model.HistoryEntry{
		{VideoID: "old", ChannelID: "@a", Title: "First watch", Timestamp: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC).UnixMilli()},
		{VideoID: "new", ChannelID: "@b", Timestamp: time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC).UnixMilli(),
			Summary:     "A short summary.",
			Annotations: []model.Annotation{{Timestamp: 75.9, Note: "key point"}}},
	}
	creators := map[string]model.Creator{"@a": {ID: "@a", Name: "Alpha"}}

	var buf bytes.Buffer
	if err := Markdown(&buf, history, creators, time.UTC); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "# Curator Watch Log\n\n## new\n") {
		t.Fatalf("newest entry should come first, untitled falls back to id:\n%s", out)
	}
	for _, want := range []string{
		"**Creator:** @b\n",
		"**Creator:** Alpha\n",
		"**Date:** 2024-01-01 09:00:00\n",
		"### Summary\nA short summary.\n",
		"- **[00:01:15](https://www.youtube.com/watch?v=new&t=75)**: key point\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in\n%s", want, out)
		}
	}
	if strings.Index(out, "## new") > strings.Index(out, "## First watch") {
		t.Fatal("order reversed")
	}
}

func TestJSON(t *testing.T) {
	s := Snapshot{
		ExportedAt:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Creators:    map[string]model.Creator{"@a": {ID: "@a", LoyaltyScore: 50}},
		Suggestions: []model.Suggestion{{ChannelID: "@z", Status: model.StatusNew}},
	}
	var buf bytes.Buffer
	if err := JSON(&buf, s); err != nil {
		t.Fatal(err)
	}
	var back Snapshot
	if err := json.Unmarshal(buf.Bytes(), &back); err != nil {
		t.Fatal(err)
	}
	if back.Creators["@a"].LoyaltyScore != 50 || len(back.Suggestions) != 1 || !back.ExportedAt.Equal(s.ExportedAt) {
		t.Fatalf("round trip lost data: %+v", back)
	}
}
