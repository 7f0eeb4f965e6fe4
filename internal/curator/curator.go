// Package curator ties storage, scoring, ranking and the model backends
// together behind the operations the CLI and MCP server expose.
package curator

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"curator/internal/config"
	"curator/internal/embed"
	"curator/internal/keywords"
	"curator/internal/logging"
	"curator/internal/loyalty"
	"curator/internal/model"
	"curator/internal/recommend"
	"curator/internal/suggest"
)

// Store is the persistence the curator needs. *sqlitevec.DB satisfies it.
type Store interface {
	GetCreators(ctx context.Context) (map[string]model.Creator, error)
	GetCreator(ctx context.Context, id string) (model.Creator, error)
	SaveCreator(ctx context.Context, c model.Creator) error
	SaveCreators(ctx context.Context, creators map[string]model.Creator) error
	GetHistory(ctx context.Context) ([]model.HistoryEntry, error)
	AddHistoryEntry(ctx context.Context, h model.HistoryEntry) (bool, error)
	BulkAddHistory(ctx context.Context, entries []model.HistoryEntry) ([]model.HistoryEntry, error)
	GetSuggestions(ctx context.Context) ([]model.Suggestion, error)
	SaveSuggestions(ctx context.Context, suggestions []model.Suggestion) error
	UpdateSuggestionStatus(ctx context.Context, channelID string, status model.SuggestionStatus) error
	SaveEmbedding(ctx context.Context, e model.EmbeddingEntry) error
	GetEmbedding(ctx context.Context, id string) ([]float32, error)
	GetAllEmbeddings(ctx context.Context) ([]model.EmbeddingEntry, error)
	SaveCursor(ctx context.Context, key, value string) error
	LoadCursor(ctx context.Context, key string) (string, error)
	PutAction(ctx context.Context, ts time.Time, typ string) error
	CountActionsWithin(ctx context.Context, start, end time.Time, typ string) (int, error)
	ClearAll(ctx context.Context) error
}

// FeedSource reports a creator's newest upload.
type FeedSource interface {
	Latest(ctx context.Context, creatorID string) (model.LatestVideo, error)
}

// Curator runs the application's operations. The embedder, generator and
// feed are optional; without them ranking falls back to keywords, reasons to
// the template and feed polling is skipped.
type Curator struct {
	store    Store
	cfg      config.Config
	embedder embed.Embedder
	gen      suggest.Generator
	feed     FeedSource
	stop     map[string]struct{}
	now      func() time.Time
	log      zerolog.Logger
}

type Option func(*Curator)

func WithEmbedder(e embed.Embedder) Option      { return func(c *Curator) { c.embedder = e } }
func WithGenerator(g suggest.Generator) Option { return func(c *Curator) { c.gen = g } }
func WithFeed(f FeedSource) Option             { return func(c *Curator) { c.feed = f } }

// WithClock overrides time.Now, mostly for tests.
func WithClock(now func() time.Time) Option { return func(c *Curator) { c.now = now } }

// New returns a Curator over st configured by cfg.
func New(st Store, cfg config.Config, opts ...Option) *Curator {
	c := &Curator{
		store: st,
		cfg:   cfg,
		stop:  keywords.StopSet(cfg.StopWords),
		now:   time.Now,
		log:   logging.Component("curator"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Config returns the configuration the curator was built with.
func (c *Curator) Config() config.Config { return c.cfg }

// LoyaltyOptions maps the scoring section of cfg onto the loyalty engine.
func LoyaltyOptions(cfg config.Config) loyalty.Options {
	return loyalty.Options{
		DailySessionCap:    cfg.Scoring.DailySessionCap,
		MaxFrequencyPoints: cfg.Scoring.MaxFrequencyPoints,
		DecayMonths:        cfg.Scoring.DecayMonths,
		Location:           cfg.Location(),
	}
}

// RankOptions maps the ranking and rabbit-hole sections of cfg onto the ranker.
func RankOptions(cfg config.Config) recommend.Options {
	opts := recommend.DefaultOptions()
	opts.TopCreators = cfg.Ranking.TopCreators
	opts.MaxResults = cfg.Ranking.MaxResults
	opts.BridgeTopics = cfg.Ranking.BridgeTopics
	opts.SemanticMatchThreshold = cfg.Ranking.SemanticMatchThreshold
	opts.RabbitHoleSemanticBoost = cfg.Ranking.RabbitHoleSemanticBoost
	opts.RabbitHoleBoostFactor = cfg.RabbitHole.BoostFactor
	return opts
}
