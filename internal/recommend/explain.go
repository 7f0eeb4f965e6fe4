package recommend

import (
	"context"

	"curator/internal/keywords"
	"curator/internal/model"
	"curator/internal/suggest"
)

// fallbackTopics is how many of the neighbour's keywords describe the match
// when none of them appear in the suggestion's reason.
const fallbackTopics = 3

// Explain asks gen to phrase why each explainable item matches its nearest
// creator. Items below the threshold keep their literal reason. A generator
// error falls back to the template, so Explain never fails.
func Explain(ctx context.Context, items []Scored, creators map[string]model.Creator, gen suggest.Generator) []Scored {
	out := make([]Scored, len(items))
	copy(out, items)
	for i := range out {
		it := &out[i]
		if !it.Explainable {
			continue
		}
		neighbor := creators[it.NeighborID]
		name := neighbor.Name
		if name == "" {
			name = it.NeighborID
		}
		topics := it.MatchedKeywords
		if len(topics) == 0 {
			topics = keywords.Words(keywords.Top(neighbor.Keywords, fallbackTopics))
		}
		var r suggest.Reason
		var err error
		if gen != nil {
			r, err = gen.GenerateReason(ctx, it.Suggestion.ChannelID, name, topics)
		}
		if gen == nil || err != nil || r.Text == "" {
			r = suggest.Template(name, topics)
		}
		it.Reason = r.Text
		it.ReasonSource = r.Source
	}
	return out
}
