package main

import (
	"context"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"curator/internal/config"
	"curator/internal/curator"
	"curator/internal/store/sqlitevec"
)

func connect(t *testing.T) *mcp.ClientSession {
	t.Helper()
	db, err := sqlitevec.Open(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	server := newServer(curator.New(db, config.Default()))

	ctx := context.Background()
	ct, st := mcp.NewInMemoryTransports()
	if _, err := server.Connect(ctx, st, nil); err != nil {
		t.Fatal(err)
	}
	client := mcp.NewClient(&mcp.Implementation{Name: "test", Version: "0"}, nil)
	cs, err := client.Connect(ctx, ct, nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { cs.Close() })
	return cs
}

func callText(t *testing.T, cs *mcp.ClientSession, name string, args map[string]any) string {
	t.Helper()
	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{Name: name, Arguments: args})
	if err != nil {
		t.Fatalf("%s: %v", name, err)
	}
	if len(res.Content) == 0 {
		t.Fatalf("%s: empty result", name)
	}
	tc, ok := res.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("%s: unexpected content %T", name, res.Content[0])
	}
	return tc.Text
}

func TestToolsRoundTrip(t *testing.T) {
	cs := connect(t)

	out := callText(t, cs, "record_watch", map[string]any{
		"video_id": "v1", "channel_id": "@a", "watch_time": 100, "total_duration": 100, "timestamp": 1700000000000,
	})
	if !strings.Contains(out, `"added": true`) {
		t.Fatalf("record_watch: %s", out)
	}
	out = callText(t, cs, "refresh_scores", map[string]any{})
	if !strings.Contains(out, `"updated": 1`) {
		t.Fatalf("refresh_scores: %s", out)
	}
	out = callText(t, cs, "top_creators", map[string]any{"limit": 5})
	if !strings.Contains(out, `"id": "@a"`) {
		t.Fatalf("top_creators: %s", out)
	}
	out = callText(t, cs, "update_suggestion", map[string]any{"channel_id": "@zz", "status": "followed"})
	if !strings.HasPrefix(out, "error:") {
		t.Fatalf("unknown suggestion should report an error: %s", out)
	}
	out = callText(t, cs, "set_rabbit_hole", map[string]any{"topic": "Chess"})
	if !strings.Contains(out, `"topic": "chess"`) {
		t.Fatalf("set_rabbit_hole: %s", out)
	}
	out = callText(t, cs, "recommend", map[string]any{})
	if !strings.Contains(out, `"mode": "keyword"`) {
		t.Fatalf("recommend: %s", out)
	}
}
