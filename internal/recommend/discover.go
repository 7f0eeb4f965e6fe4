package recommend

import (
	"fmt"

	"curator/internal/model"
)

// FingerprintTopCreators returns the ids of the n highest-scoring creators,
// the channels whose featured lists are worth scanning for new candidates.
func FingerprintTopCreators(creators map[string]model.Creator, n int) []string {
	top := TopCreators(creators, n)
	ids := make([]string, len(top))
	for i, c := range top {
		ids[i] = c.ID
	}
	return ids
}

// EndorsementReason is the provenance text for a channel featured by source.
func EndorsementReason(sourceID string) string {
	return fmt.Sprintf("Endorsed by %s", sourceID)
}

// AddCandidates appends a new suggestion for every featured channel that is
// neither tracked nor already suggested. It returns the updated list and how
// many were added.
func AddCandidates(suggestions []model.Suggestion, creators map[string]model.Creator, sourceID string, featured []string) ([]model.Suggestion, int) {
	known := make(map[string]struct{}, len(suggestions))
	for _, s := range suggestions {
		known[s.ChannelID] = struct{}{}
	}
	out := append([]model.Suggestion(nil), suggestions...)
	added := 0
	for _, id := range featured {
		if id == "" || id == sourceID {
			continue
		}
		if _, tracked := creators[id]; tracked {
			continue
		}
		if _, dup := known[id]; dup {
			continue
		}
		known[id] = struct{}{}
		out = append(out, model.Suggestion{ChannelID: id, Reason: EndorsementReason(sourceID), Status: model.StatusNew})
		added++
	}
	return out, added
}

// RecordEndorsements merges featured into the creator's endorsement set, keeping first-seen order.
func RecordEndorsements(c model.Creator, featured []string) model.Creator {
	out := c.Clone()
	seen := make(map[string]struct{}, len(out.Endorsements))
	for _, e := range out.Endorsements {
		seen[e] = struct{}{}
	}
	for _, id := range featured {
		if id == "" || id == c.ID {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out.Endorsements = append(out.Endorsements, id)
	}
	return out
}

// UpdateStatus sets the status of the suggestion for channelID. It reports
// false when no such suggestion exists.
func UpdateStatus(suggestions []model.Suggestion, channelID string, status model.SuggestionStatus) ([]model.Suggestion, bool) {
	out := append([]model.Suggestion(nil), suggestions...)
	for i := range out {
		if out[i].ChannelID == channelID {
			out[i].Status = status
			return out, true
		}
	}
	return out, false
}
