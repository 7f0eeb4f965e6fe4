// curator-mcp exposes curator's scoring and recommendations as an MCP stdio server.
//
// Environment variables:
//
//	CURATOR_CONFIG   config file path (default: ./curator.yaml)
//	CURATOR_DB       SQLite database path, overrides the config
//
// Usage:
//
//	curator-mcp
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/goccy/go-json"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"curator/internal/config"
	"curator/internal/curator"
	"curator/internal/logging"
	"curator/internal/model"
	"curator/internal/store/sqlitevec"
)

func main() {
	path := os.Getenv("CURATOR_CONFIG")
	if path == "" {
		path = "./curator.yaml"
	}
	cfg, err := config.LoadOrDefault(path)
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "curator-mcp: config:", err)
		os.Exit(1)
	}
	// stdout carries the protocol; logs go to stderr.
	logging.Init(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format, Output: os.Stderr})

	db, err := sqlitevec.Open(cfg.Storage.DBPath)
	if err != nil {
		logging.Error().Err(err).Str("db", cfg.Storage.DBPath).Msg("open store")
		os.Exit(1)
	}
	defer db.Close()

	server := newServer(curator.FromConfig(db, cfg))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
		logging.Error().Err(err).Msg("curator-mcp")
		os.Exit(1)
	}
}

func newServer(cur *curator.Curator) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "curator-mcp",
		Version: "1.0.0",
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "refresh_scores",
		Description: "Recompute every creator's loyalty score from the watch history and return the top creators.",
	}, refreshHandler(cur))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "recommend",
		Description: "Rank discovered creators against the user's top creators. Strong matches carry a short explanation.",
	}, recommendHandler(cur))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "top_creators",
		Description: "List the highest-scoring creators with their loyalty score and watch count.",
	}, topHandler(cur))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "set_rabbit_hole",
		Description: "Boost one topic in recommendations for the configured duration. An empty topic clears it.",
	}, rabbitHoleHandler(cur))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "update_suggestion",
		Description: "Mark a discovered creator as followed, ignored or new.",
	}, updateSuggestionHandler(cur))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "record_watch",
		Description: "Append one watch event to the history. Duplicate events (same video and timestamp) are ignored.",
	}, recordWatchHandler(cur))

	return server
}

// --- Input types ---

type emptyInput struct{}

type topInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"How many creators to list (default 10)"`
}

type rabbitHoleInput struct {
	Topic string `json:"topic" jsonschema:"Topic to dive into, e.g. chess. Empty clears the rabbit hole."`
}

type updateSuggestionInput struct {
	ChannelID string `json:"channel_id" jsonschema:"Channel id of the suggestion"`
	Status    string `json:"status"     jsonschema:"One of: new, ignored, followed"`
}

type recordWatchInput struct {
	VideoID       string   `json:"video_id"              jsonschema:"Video id"`
	ChannelID     string   `json:"channel_id"            jsonschema:"Channel id of the creator"`
	Title         string   `json:"title,omitempty"       jsonschema:"Video title; keywords are taken from it when no tags are given"`
	WatchTime     float64  `json:"watch_time"            jsonschema:"Seconds actually watched"`
	TotalDuration float64  `json:"total_duration"        jsonschema:"Video length in seconds"`
	TrueDuration  float64  `json:"true_duration,omitempty" jsonschema:"Length without sponsor or filler segments, in seconds"`
	Timestamp     int64    `json:"timestamp,omitempty"   jsonschema:"Watch time in ms since epoch (default now)"`
	Tags          []string `json:"tags,omitempty"        jsonschema:"Keywords for the video"`
}

// --- Handlers ---

func refreshHandler(cur *curator.Curator) func(context.Context, *mcp.CallToolRequest, emptyInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, _ emptyInput) (*mcp.CallToolResult, any, error) {
		creators, err := cur.RefreshScores(ctx)
		if err != nil {
			return textResult(fmt.Sprintf("error: %v", err)), nil, nil
		}
		top, err := cur.TopCreators(ctx, 10)
		if err != nil {
			return textResult(fmt.Sprintf("error: %v", err)), nil, nil
		}
		return textResult(jsonString(map[string]any{
			"updated": len(creators),
			"top":     creatorsToMaps(top),
		})), nil, nil
	}
}

func recommendHandler(cur *curator.Curator) func(context.Context, *mcp.CallToolRequest, emptyInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, _ emptyInput) (*mcp.CallToolResult, any, error) {
		res, err := cur.Recommend(ctx)
		if err != nil {
			return textResult(fmt.Sprintf("error: %v", err)), nil, nil
		}
		return textResult(jsonString(res)), nil, nil
	}
}

func topHandler(cur *curator.Curator) func(context.Context, *mcp.CallToolRequest, topInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input topInput) (*mcp.CallToolResult, any, error) {
		limit := input.Limit
		if limit <= 0 {
			limit = 10
		}
		top, err := cur.TopCreators(ctx, limit)
		if err != nil {
			return textResult(fmt.Sprintf("error: %v", err)), nil, nil
		}
		return textResult(jsonString(creatorsToMaps(top))), nil, nil
	}
}

func rabbitHoleHandler(cur *curator.Curator) func(context.Context, *mcp.CallToolRequest, rabbitHoleInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input rabbitHoleInput) (*mcp.CallToolResult, any, error) {
		hole, err := cur.SetRabbitHole(ctx, input.Topic)
		if err != nil {
			return textResult(fmt.Sprintf("error: %v", err)), nil, nil
		}
		if hole.Topic == "" {
			return textResult(jsonString(map[string]any{"status": "cleared"})), nil, nil
		}
		return textResult(jsonString(hole)), nil, nil
	}
}

func updateSuggestionHandler(cur *curator.Curator) func(context.Context, *mcp.CallToolRequest, updateSuggestionInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input updateSuggestionInput) (*mcp.CallToolResult, any, error) {
		status := model.SuggestionStatus(input.Status)
		if err := cur.UpdateSuggestionStatus(ctx, input.ChannelID, status); err != nil {
			return textResult(fmt.Sprintf("error: %v", err)), nil, nil
		}
		return textResult(jsonString(map[string]any{
			"channel_id": input.ChannelID,
			"status":     status,
		})), nil, nil
	}
}

func recordWatchHandler(cur *curator.Curator) func(context.Context, *mcp.CallToolRequest, recordWatchInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input recordWatchInput) (*mcp.CallToolResult, any, error) {
		h := model.HistoryEntry{
			VideoID:       input.VideoID,
			ChannelID:     input.ChannelID,
			Title:         input.Title,
			WatchTime:     input.WatchTime,
			TotalDuration: input.TotalDuration,
			Timestamp:     input.Timestamp,
			Tags:          input.Tags,
		}
		if input.TrueDuration > 0 {
			h.TrueDuration = model.Ptr(input.TrueDuration)
		}
		added, err := cur.RecordWatch(ctx, h)
		if err != nil {
			return textResult(fmt.Sprintf("error: %v", err)), nil, nil
		}
		return textResult(jsonString(map[string]any{"added": added})), nil, nil
	}
}

// --- Helpers ---

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}

func creatorsToMaps(cs []model.Creator) []map[string]any {
	out := make([]map[string]any, len(cs))
	for i, c := range cs {
		out[i] = map[string]any{
			"id":            c.ID,
			"name":          c.Name,
			"loyalty_score": c.LoyaltyScore,
			"frequency":     c.Frequency,
		}
	}
	return out
}

func jsonString(v any) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf(`{"error": "marshal: %v"}`, err)
	}
	return string(data)
}
