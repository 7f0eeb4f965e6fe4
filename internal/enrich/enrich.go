// Package enrich grows creator keyword profiles from watch tags and web research.
package enrich

import (
	"context"
	"fmt"

	"curator/internal/keywords"
	"curator/internal/model"
	"curator/internal/suggest"
)

// SummaryKeywordWeight is added per keyword found in a research summary.
// Search-derived words weigh more than single video tags to drive clustering.
const SummaryKeywordWeight = 5

// Summarizer condenses research text about a creator.
type Summarizer interface {
	Summarize(ctx context.Context, name, research string) (string, error)
}

// EnrichCreator summarizes research about c and folds the summary's keywords
// into its profile. On a summarizer failure c is returned unchanged with the error.
func EnrichCreator(ctx context.Context, c model.Creator, research string, s Summarizer, stopWords map[string]struct{}) (model.Creator, error) {
	name := c.Name
	if name == "" {
		name = c.ID
	}
	summary, err := s.Summarize(ctx, name, research)
	if err != nil {
		return c, fmt.Errorf("summarize %s: %w", c.ID, err)
	}
	if summary == "" {
		return c, fmt.Errorf("summarize %s: %w", c.ID, suggest.ErrNoSummary)
	}
	out := c.Clone()
	out.EnrichedDescription = summary
	if out.Keywords == nil {
		out.Keywords = map[string]int{}
	}
	keywords.Accumulate(out.Keywords, keywords.Extract(summary, stopWords), SummaryKeywordWeight)
	return out, nil
}

// AccumulateTags adds every history entry's tags to its creator's keyword
// counts, creating creators seen for the first time. The input map is not modified.
func AccumulateTags(creators map[string]model.Creator, entries []model.HistoryEntry) map[string]model.Creator {
	out := make(map[string]model.Creator, len(creators))
	for id, c := range creators {
		out[id] = c.Clone()
	}
	for _, h := range entries {
		c, ok := out[h.ChannelID]
		if !ok {
			c = model.Creator{ID: h.ChannelID, Name: h.ChannelID}
		}
		if c.Keywords == nil {
			c.Keywords = map[string]int{}
		}
		keywords.Accumulate(c.Keywords, h.Tags, 1)
		out[h.ChannelID] = c
	}
	return out
}
