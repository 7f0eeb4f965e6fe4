// Package keywords mines frequency-ranked keywords from free text.
package keywords

import (
	"regexp"
	"sort"
	"strings"
)

// MaxKeywords is how many keywords Extract returns.
const MaxKeywords = 15

const minTokenLen = 4

var nonWord = regexp.MustCompile(`[^\w]+`)

// DefaultStopWords are dropped by Extract unless the caller supplies its own list.
var DefaultStopWords = []string{
	"google", "youtube", "http", "https", "www", "video", "channel",
	"subscribe", "social", "media", "twitter", "instagram", "facebook",
	"the", "a", "an", "in", "on", "of", "for", "to", "and", "with", "from",
	"this", "that", "your", "is", "are", "was", "were", "be", "been", "being",
	"ollama", "offline", "profile", "enriched", "search", "curator",
	"about", "after", "all", "also", "any", "back", "because", "but", "can", "come", "could",
	"day", "do", "even", "first", "get", "give", "go", "good", "have", "he", "her", "him", "his",
	"how", "into", "it", "its", "just", "know", "like", "look", "make", "me", "most", "my", "new",
	"no", "not", "now", "only", "or", "other", "our", "out", "over", "people", "say", "see", "she",
	"some", "take", "tell", "than", "their", "them", "then", "there", "these", "they", "think",
	"time", "up", "use", "very", "want", "way", "we", "well", "what", "when", "which", "who",
	"will", "year", "you",
}

// StopSet builds a lookup set from a stop-word list.
func StopSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[strings.ToLower(w)] = struct{}{}
	}
	return set
}

// Tokenize lowercases s and splits it on runs of non-word characters.
func Tokenize(s string) []string {
	return strings.Fields(nonWord.ReplaceAllString(strings.ToLower(s), " "))
}

// Extract returns the MaxKeywords most frequent tokens of text, ignoring
// short tokens and stop words. Ties keep first-seen order.
func Extract(text string, stopWords map[string]struct{}) []string {
	counts := map[string]int{}
	var order []string
	for _, tok := range Tokenize(text) {
		if len(tok) < minTokenLen {
			continue
		}
		if _, stop := stopWords[tok]; stop {
			continue
		}
		if counts[tok] == 0 {
			order = append(order, tok)
		}
		counts[tok]++
	}
	sort.SliceStable(order, func(i, j int) bool { return counts[order[i]] > counts[order[j]] })
	if len(order) > MaxKeywords {
		order = order[:MaxKeywords]
	}
	return order
}

// Accumulate adds weight to dst for every word. dst must be non-nil.
func Accumulate(dst map[string]int, words []string, weight int) {
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w == "" {
			continue
		}
		dst[w] += weight
	}
}

// Count is a keyword with its occurrence count.
type Count struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// Top returns up to n entries of m by descending count, ties alphabetical.
// n <= 0 returns everything.
func Top(m map[string]int, n int) []Count {
	out := make([]Count, 0, len(m))
	for w, c := range m {
		out = append(out, Count{Word: w, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Word < out[j].Word
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// Words strips the counts from a Top result.
func Words(cs []Count) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.Word
	}
	return out
}
