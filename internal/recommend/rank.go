// Package recommend ranks discovered creators against the user's interests.
package recommend

import (
	"sort"
	"strings"
	"time"

	"curator/internal/keywords"
	"curator/internal/model"
	"curator/internal/similarity"
)

// Scoring modes.
const (
	ModeSemantic = "semantic"
	ModeKeyword  = "keyword"
)

// Options holds the ranking constants.
type Options struct {
	TopCreators             int     `json:"topCreators"`
	MaxResults              int     `json:"maxResults"`
	BridgeTopics            int     `json:"bridgeTopics"`
	MaxNeighborKeywords     int     `json:"maxNeighborKeywords"`
	SemanticMatchThreshold  float64 `json:"semanticMatchThreshold"`
	RabbitHoleSemanticBoost float64 `json:"rabbitHoleSemanticBoost"`
	RabbitHoleBoostFactor   float64 `json:"rabbitHoleBoostFactor"`
}

func DefaultOptions() Options {
	return Options{
		TopCreators:             10,
		MaxResults:              5,
		BridgeTopics:            5,
		MaxNeighborKeywords:     5,
		SemanticMatchThreshold:  0.4,
		RabbitHoleSemanticBoost: 0.5,
		RabbitHoleBoostFactor:   10,
	}
}

// withDefaults fills every unset field from DefaultOptions, so a caller can
// override one constant without zeroing the rest.
func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.TopCreators <= 0 {
		o.TopCreators = d.TopCreators
	}
	if o.MaxResults <= 0 {
		o.MaxResults = d.MaxResults
	}
	if o.BridgeTopics <= 0 {
		o.BridgeTopics = d.BridgeTopics
	}
	if o.MaxNeighborKeywords <= 0 {
		o.MaxNeighborKeywords = d.MaxNeighborKeywords
	}
	if o.SemanticMatchThreshold <= 0 {
		o.SemanticMatchThreshold = d.SemanticMatchThreshold
	}
	if o.RabbitHoleSemanticBoost <= 0 {
		o.RabbitHoleSemanticBoost = d.RabbitHoleSemanticBoost
	}
	if o.RabbitHoleBoostFactor <= 0 {
		o.RabbitHoleBoostFactor = d.RabbitHoleBoostFactor
	}
	return o
}

// Input is everything one ranking pass looks at. Embeddings are already
// fetched; a suggestion missing from SuggestionEmbeddings is scored by keywords.
type Input struct {
	Creators             map[string]model.Creator
	Suggestions          []model.Suggestion
	CreatorEmbeddings    map[string][]float32 // by creator id
	SuggestionEmbeddings map[string][]float32 // by suggestion channel id
	RabbitHole           RabbitHole
	Now                  time.Time
	Options              Options
}

// Scored is one ranked suggestion.
type Scored struct {
	Suggestion      model.Suggestion `json:"suggestion"`
	Score           float64          `json:"score"`
	Mode            string           `json:"mode"`
	NeighborID      string           `json:"neighborId,omitempty"`
	MatchedKeywords []string         `json:"matchedKeywords,omitempty"`
	Bridge          bool             `json:"bridge"`
	Explainable     bool             `json:"explainable"`
	Reason          string           `json:"reason"`
	ReasonSource    string           `json:"reasonSource,omitempty"`
}

// Result is the outcome of Rank.
type Result struct {
	Items       []Scored `json:"items"`
	Mode        string   `json:"mode"`
	TopCreators []string `json:"topCreators"`
	TopTopics   []string `json:"topTopics"`
	Candidates  int      `json:"candidates"`
}

type interest struct {
	id  string
	vec []float32
}

// Rank scores every new suggestion and returns the best few. It never mutates its input.
func Rank(in Input) Result {
	opts := in.Options.withDefaults()

	top := TopCreators(in.Creators, opts.TopCreators)
	var interests []interest
	var vecs [][]float32
	res := Result{Mode: ModeKeyword}
	for _, c := range top {
		res.TopCreators = append(res.TopCreators, c.ID)
		if v := in.CreatorEmbeddings[c.ID]; len(v) > 0 {
			interests = append(interests, interest{id: c.ID, vec: v})
			vecs = append(vecs, v)
		}
	}
	centroid := similarity.Centroid(vecs)
	if centroid != nil {
		res.Mode = ModeSemantic
	}

	global := GlobalKeywords(in.Creators)
	res.TopTopics = keywords.Words(keywords.Top(global, opts.BridgeTopics))
	bridges := newTopicMatcher(res.TopTopics)
	hole := in.RabbitHole
	holeActive := hole.Active(in.Now)

	var scored []Scored
	for _, s := range in.Suggestions {
		if s.Status != model.StatusNew {
			continue
		}
		res.Candidates++
		item := Scored{Suggestion: s, Reason: s.Reason, Mode: ModeKeyword}

		vec := in.SuggestionEmbeddings[s.ChannelID]
		if centroid != nil && len(vec) > 0 {
			item.Mode = ModeSemantic
			item.Score = similarity.Cosine(centroid, vec)
			if holeActive && hole.matches(s.Reason) {
				item.Score += opts.RabbitHoleSemanticBoost
			}
			best := 0.0
			for _, it := range interests {
				if sim := similarity.Cosine(it.vec, vec); sim > best {
					best = sim
					item.NeighborID = it.id
				}
			}
			if item.NeighborID != "" {
				item.MatchedKeywords = matchedKeywords(in.Creators[item.NeighborID], s.Reason, opts.MaxNeighborKeywords)
			}
		} else {
			item.Score = keywordScore(s.Reason, global, hole, holeActive, opts.RabbitHoleBoostFactor)
		}

		item.Bridge = bridges.distinct(s.Reason) >= BridgeMinTopics
		item.Explainable = item.Score > opts.SemanticMatchThreshold && item.NeighborID != ""
		scored = append(scored, item)
	}

	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if len(scored) > opts.MaxResults {
		scored = scored[:opts.MaxResults]
	}
	res.Items = scored
	return res
}

// keywordScore adds count/100 for every reason word the user's keyword
// profile knows, plus the rabbit-hole boost once if any word hits the topic.
func keywordScore(reason string, global map[string]int, hole RabbitHole, holeActive bool, boost float64) float64 {
	score := 0.0
	boosted := false
	for _, w := range keywords.Tokenize(reason) {
		if n, ok := global[w]; ok {
			score += float64(n) / 100
		}
		if holeActive && !boosted && strings.Contains(w, strings.ToLower(hole.Topic)) {
			score += boost
			boosted = true
		}
	}
	return score
}

// matchedKeywords is up to n of c's strongest keywords that appear in reason.
func matchedKeywords(c model.Creator, reason string, n int) []string {
	lower := strings.ToLower(reason)
	var out []string
	for _, k := range keywords.Top(c.Keywords, 0) {
		if len(out) == n {
			break
		}
		if strings.Contains(lower, k.Word) {
			out = append(out, k.Word)
		}
	}
	return out
}
