package recommend

import (
	"sort"
	"strings"

	"github.com/cloudflare/ahocorasick"

	"curator/internal/keywords"
	"curator/internal/model"
)

// BridgeMinTopics is how many distinct top topics a reason must mention to be a bridge.
const BridgeMinTopics = 2

// GlobalKeywords sums every creator's keyword counts.
func GlobalKeywords(creators map[string]model.Creator) map[string]int {
	out := make(map[string]int)
	for _, c := range creators {
		for k, n := range c.Keywords {
			out[k] += n
		}
	}
	return out
}

// TopTopics is the n most frequent keywords across all creators.
func TopTopics(creators map[string]model.Creator, n int) []string {
	return keywords.Words(keywords.Top(GlobalKeywords(creators), n))
}

// TopCreators returns up to n creators by loyalty score, ties by id.
func TopCreators(creators map[string]model.Creator, n int) []model.Creator {
	out := make([]model.Creator, 0, len(creators))
	for _, c := range creators {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].LoyaltyScore != out[j].LoyaltyScore {
			return out[i].LoyaltyScore > out[j].LoyaltyScore
		}
		return out[i].ID < out[j].ID
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// topicMatcher finds which topics occur as substrings of a text.
type topicMatcher struct {
	m      *ahocorasick.Matcher
	topics []string
}

func newTopicMatcher(topics []string) *topicMatcher {
	seen := make(map[string]struct{}, len(topics))
	var uniq []string
	for _, t := range topics {
		t = strings.ToLower(t)
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		uniq = append(uniq, t)
	}
	if len(uniq) == 0 {
		return &topicMatcher{}
	}
	return &topicMatcher{m: ahocorasick.NewStringMatcher(uniq), topics: uniq}
}

// distinct counts the distinct topics contained in text, case-insensitively.
func (tm *topicMatcher) distinct(text string) int {
	if tm.m == nil || text == "" {
		return 0
	}
	hits := tm.m.MatchThreadSafe([]byte(strings.ToLower(text)))
	found := make(map[int]struct{}, len(hits))
	for _, i := range hits {
		found[i] = struct{}{}
	}
	return len(found)
}

// IsBridgeCreator reports whether reason mentions at least two distinct
// topics. Matching is substring containment, so "coding" matches "codingtutorials".
func IsBridgeCreator(reason string, topTopics []string) bool {
	return newTopicMatcher(topTopics).distinct(reason) >= BridgeMinTopics
}
