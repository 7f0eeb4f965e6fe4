// Package export writes the store's contents out for backup or note-taking apps.
package export

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/goccy/go-json"

	"curator/internal/model"
)

// WatchURL is the public link for a video.
func WatchURL(videoID string) string { return "https://www.youtube.com/watch?v=" + videoID }

// Snapshot is a full dump of curator state.
type Snapshot struct {
	ExportedAt  time.Time                `json:"exportedAt"`
	Creators    map[string]model.Creator `json:"creators"`
	History     []model.HistoryEntry     `json:"history"`
	Suggestions []model.Suggestion       `json:"suggestions"`
	Embeddings  []model.EmbeddingEntry   `json:"embeddings,omitempty"`
}

// JSON writes s as indented JSON.
func JSON(w io.Writer, s Snapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}

// Markdown writes the watch log newest first: one section per watch with its
// summary and any notes linked to the moment in the video they refer to.
func Markdown(w io.Writer, history []model.HistoryEntry, creators map[string]model.Creator, loc *time.Location) error {
	if loc == nil {
		loc = time.Local
	}
	bw := bufio.NewWriter(w)
	fmt.Fprint(bw, "# Curator Watch Log\n\n")
	for i := len(history) - 1; i >= 0; i-- {
		h := history[i]
		title := h.Title
		if title == "" {
			title = h.VideoID
		}
		creator := h.ChannelID
		if c, ok := creators[h.ChannelID]; ok && c.Name != "" {
			creator = c.Name
		}
		link := WatchURL(h.VideoID)
		fmt.Fprintf(bw, "## %s\n", title)
		fmt.Fprintf(bw, "**Creator:** %s\n", creator)
		fmt.Fprintf(bw, "**Date:** %s\n", time.UnixMilli(h.Timestamp).In(loc).Format("2006-01-02 15:04:05"))
		fmt.Fprintf(bw, "**Link:** %s\n\n", link)
		if h.Summary != "" {
			fmt.Fprintf(bw, "### Summary\n%s\n\n", h.Summary)
		}
		if len(h.Annotations) > 0 {
			fmt.Fprint(bw, "### Notes\n")
			for _, n := range h.Annotations {
				secs := int64(math.Floor(n.Timestamp))
				fmt.Fprintf(bw, "- **[%s](%s&t=%d)**: %s\n", Clock(secs), link, secs, n.Note)
			}
			fmt.Fprint(bw, "\n")
		}
		fmt.Fprint(bw, "---\n\n")
	}
	return bw.Flush()
}

// Clock formats seconds as hh:mm:ss, wrapping at 24h.
func Clock(secs int64) string {
	if secs < 0 {
		secs = 0
	}
	secs %= 24 * 3600
	return fmt.Sprintf("%02d:%02d:%02d", secs/3600, secs/60%60, secs%60)
}
