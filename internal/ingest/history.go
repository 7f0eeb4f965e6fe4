// Package ingest reads exported watch history and appends it to the store.
package ingest

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-json"

	"curator/internal/keywords"
	"curator/internal/model"
	"curator/internal/util"
)

// HistoryStore appends watch events, ignoring ones it already has.
type HistoryStore interface {
	BulkAddHistory(ctx context.Context, entries []model.HistoryEntry) ([]model.HistoryEntry, error)
}

// Report summarizes one import.
type Report struct {
	Read    int `json:"read"`
	Added   int `json:"added"`
	Skipped int `json:"skipped"` // malformed rows
}

// ReadHistory decodes either a JSON array of entries or one entry per line.
func ReadHistory(r io.Reader) ([]model.HistoryEntry, error) {
	br := bufio.NewReader(r)
	first, err := firstByte(br)
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(br)
	if first == '[' {
		var out []model.HistoryEntry
		if err := dec.Decode(&out); err != nil {
			return nil, fmt.Errorf("decode history array: %w", err)
		}
		return out, nil
	}
	var out []model.HistoryEntry
	for line := 1; ; line++ {
		var h model.HistoryEntry
		err := dec.Decode(&h)
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return out, fmt.Errorf("decode history record %d: %w", line, err)
		}
		out = append(out, h)
	}
}

func firstByte(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.Peek(1)
		if err != nil {
			return 0, err
		}
		if !bytes.ContainsAny(b, " \t\r\n") {
			return b[0], nil
		}
		_, _ = br.ReadByte()
	}
}

// Normalize fills derivable fields: trueDuration from sponsor segments and
// tags from the title when the export carried none.
func Normalize(h model.HistoryEntry, stopWords map[string]struct{}) model.HistoryEntry {
	h.Title = util.NormalizeWhitespace(h.Title)
	h.ChannelID = strings.TrimSpace(h.ChannelID)
	if h.TrueDuration == nil && len(h.Segments) > 0 && h.TotalDuration > 0 {
		filler := 0.0
		for _, s := range h.Segments {
			if s.End > s.Start {
				filler += s.End - s.Start
			}
		}
		h.TrueDuration = model.Ptr(max(h.TotalDuration-filler, 0))
	}
	if len(h.Tags) == 0 && h.Title != "" {
		h.Tags = keywords.Extract(h.Title, stopWords)
	}
	return h
}

// Import normalizes entries, drops ones without a video or channel, and
// appends the rest. It returns the entries the store did not have yet.
func Import(ctx context.Context, st HistoryStore, entries []model.HistoryEntry, stopWords map[string]struct{}) (Report, []model.HistoryEntry, error) {
	rep := Report{Read: len(entries)}
	valid := make([]model.HistoryEntry, 0, len(entries))
	for _, h := range entries {
		h = Normalize(h, stopWords)
		if h.VideoID == "" || h.ChannelID == "" || h.Timestamp <= 0 {
			rep.Skipped++
			continue
		}
		valid = append(valid, h)
	}
	added, err := st.BulkAddHistory(ctx, valid)
	if err != nil {
		return rep, nil, err
	}
	rep.Added = len(added)
	return rep, added, nil
}
