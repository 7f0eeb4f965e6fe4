package curator

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"curator/internal/embed"
	"curator/internal/keywords"
	"curator/internal/metrics"
	"curator/internal/model"
	"curator/internal/recommend"
)

const rabbitHoleCursor = "rabbithole"

// profileKeywords is how many keywords describe a creator in its embedding text.
const profileKeywords = 20

// Recommend ranks the new suggestions against the user's top creators and
// explains the strong matches. Suggestions whose embedding fails are scored
// by keywords instead; the run itself only fails on storage errors.
func (c *Curator) Recommend(ctx context.Context) (recommend.Result, error) {
	runID := uuid.NewString()
	log := c.log.With().Str("run_id", runID).Logger()
	start := time.Now()

	creators, err := c.store.GetCreators(ctx)
	if err != nil {
		return recommend.Result{}, fmt.Errorf("load creators: %w", err)
	}
	suggestions, err := c.store.GetSuggestions(ctx)
	if err != nil {
		return recommend.Result{}, fmt.Errorf("load suggestions: %w", err)
	}
	hole, err := c.RabbitHole(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("rabbit hole unreadable, ignoring")
		hole = recommend.RabbitHole{}
	}

	in := recommend.Input{
		Creators:    creators,
		Suggestions: suggestions,
		RabbitHole:  hole,
		Now:         c.now(),
		Options:     RankOptions(c.cfg),
	}
	if c.embedder != nil {
		in.CreatorEmbeddings, err = c.creatorEmbeddings(ctx)
		if err != nil {
			return recommend.Result{}, err
		}
		in.SuggestionEmbeddings = c.embedSuggestions(ctx, suggestions, log)
	}

	res := recommend.Rank(in)
	res.Items = recommend.Explain(ctx, res.Items, creators, c.gen)
	metrics.IncRankingRun(res.Mode)
	log.Info().
		Str("mode", res.Mode).
		Int("candidates", res.Candidates).
		Int("results", len(res.Items)).
		Bool("rabbit_hole", hole.Active(in.Now)).
		Dur("took", time.Since(start)).
		Msg("recommend_run")
	return res, nil
}

func (c *Curator) creatorEmbeddings(ctx context.Context) (map[string][]float32, error) {
	all, err := c.store.GetAllEmbeddings(ctx)
	if err != nil {
		return nil, fmt.Errorf("load embeddings: %w", err)
	}
	out := make(map[string][]float32, len(all))
	for _, e := range all {
		if strings.HasPrefix(e.ID, model.VideoKey("")) {
			continue
		}
		out[e.ID] = e.Embedding
	}
	return out, nil
}

// embedSuggestions embeds every new suggestion with at most
// Ranking.Concurrency requests in flight.
func (c *Curator) embedSuggestions(ctx context.Context, suggestions []model.Suggestion, log zerolog.Logger) map[string][]float32 {
	limit := c.cfg.Ranking.Concurrency
	if limit < 1 {
		limit = 1
	}
	out := make(map[string][]float32)
	var mu sync.Mutex
	var wg sync.WaitGroup
	sem := make(chan struct{}, limit)
	for _, s := range suggestions {
		if s.Status != model.StatusNew {
			continue
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(s model.Suggestion) {
			defer wg.Done()
			defer func() { <-sem }()
			vec, err := c.embedder.Embed(ctx, embed.SuggestionText(s.ChannelID, s.Reason))
			if err != nil {
				log.Warn().Err(err).Str("channel", s.ChannelID).Msg("suggestion embedding failed, using keywords")
				return
			}
			mu.Lock()
			out[s.ChannelID] = vec
			mu.Unlock()
		}(s)
	}
	wg.Wait()
	return out
}

// SyncReport counts what SyncEmbeddings stored.
type SyncReport struct {
	Creators int `json:"creators"`
	Videos   int `json:"videos"`
	Failed   int `json:"failed"`
}

// SyncEmbeddings embeds the top Embedding.SyncCount creators' profiles and
// any recent titled videos not embedded yet. It stops at the first sign the
// backend is down.
func (c *Curator) SyncEmbeddings(ctx context.Context) (SyncReport, error) {
	var rep SyncReport
	if c.embedder == nil {
		return rep, embed.ErrUnavailable
	}
	creators, err := c.store.GetCreators(ctx)
	if err != nil {
		return rep, err
	}
	n := c.cfg.Embedding.SyncCount
	ts := c.now().UnixMilli()
	for _, cr := range recommend.TopCreators(creators, n) {
		ok, err := c.embedAndSave(ctx, cr.ID, CreatorProfileText(cr), ts)
		if err != nil {
			return rep, err
		}
		if ok {
			rep.Creators++
		} else {
			rep.Failed++
		}
	}

	history, err := c.store.GetHistory(ctx)
	if err != nil {
		return rep, err
	}
	seen := map[string]struct{}{}
	for i := len(history) - 1; i >= 0 && len(seen) < n; i-- {
		h := history[i]
		if h.Title == "" {
			continue
		}
		if _, dup := seen[h.VideoID]; dup {
			continue
		}
		seen[h.VideoID] = struct{}{}
		key := model.VideoKey(h.VideoID)
		if _, err := c.store.GetEmbedding(ctx, key); err == nil {
			continue
		}
		ok, err := c.embedAndSave(ctx, key, h.Title, ts)
		if err != nil {
			return rep, err
		}
		if ok {
			rep.Videos++
		} else {
			rep.Failed++
		}
	}
	c.log.Info().Int("creators", rep.Creators).Int("videos", rep.Videos).Int("failed", rep.Failed).Msg("embeddings_synced")
	return rep, nil
}

// embedAndSave reports false when the text could not be embedded. Only
// storage errors are returned.
func (c *Curator) embedAndSave(ctx context.Context, id, text string, ts int64) (bool, error) {
	vec, err := c.embedder.Embed(ctx, text)
	if err != nil {
		c.log.Debug().Err(err).Str("id", id).Msg("embed failed")
		return false, nil
	}
	return true, c.store.SaveEmbedding(ctx, model.EmbeddingEntry{ID: id, Embedding: vec, Timestamp: ts})
}

// CreatorProfileText is the text embedded for a creator.
func CreatorProfileText(cr model.Creator) string {
	name := cr.Name
	if name == "" {
		name = cr.ID
	}
	parts := []string{name}
	if kw := keywords.Words(keywords.Top(cr.Keywords, profileKeywords)); len(kw) > 0 {
		parts = append(parts, strings.Join(kw, ", "))
	}
	if cr.EnrichedDescription != "" {
		parts = append(parts, cr.EnrichedDescription)
	}
	return strings.Join(parts, ". ")
}

// SetRabbitHole focuses ranking on topic for the configured duration. An
// empty topic clears it.
func (c *Curator) SetRabbitHole(ctx context.Context, topic string) (recommend.RabbitHole, error) {
	hole := recommend.RabbitHole{}
	if strings.TrimSpace(topic) != "" {
		d := time.Duration(c.cfg.RabbitHole.DurationMinutes) * time.Minute
		hole = recommend.NewRabbitHole(topic, d, c.now())
	}
	b, err := json.Marshal(hole)
	if err != nil {
		return hole, err
	}
	if err := c.store.SaveCursor(ctx, rabbitHoleCursor, string(b)); err != nil {
		return hole, err
	}
	c.log.Info().Str("topic", hole.Topic).Time("expires_at", hole.ExpiresAt).Msg("rabbit_hole_set")
	return hole, nil
}

// RabbitHole returns the stored rabbit hole, active or not.
func (c *Curator) RabbitHole(ctx context.Context) (recommend.RabbitHole, error) {
	var hole recommend.RabbitHole
	v, err := c.store.LoadCursor(ctx, rabbitHoleCursor)
	if err != nil || v == "" {
		return hole, err
	}
	if err := json.Unmarshal([]byte(v), &hole); err != nil {
		return recommend.RabbitHole{}, fmt.Errorf("decode rabbit hole: %w", err)
	}
	return hole, nil
}
