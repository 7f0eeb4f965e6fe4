package curator

import (
	"context"
	"errors"
	"fmt"

	"curator/internal/enrich"
	"curator/internal/model"
	"curator/internal/recommend"
)

// ErrBudgetExhausted means the hourly or daily enrichment allowance is used up.
var ErrBudgetExhausted = errors.New("enrichment budget exhausted")

// fingerprintCreators is how many top creators are worth scanning for featured channels.
const fingerprintCreators = 5

// FingerprintSources returns the creators whose featured channels should be scanned.
func (c *Curator) FingerprintSources(ctx context.Context) ([]string, error) {
	creators, err := c.store.GetCreators(ctx)
	if err != nil {
		return nil, err
	}
	return recommend.FingerprintTopCreators(creators, fingerprintCreators), nil
}

// AddDiscovered records the channels sourceID features: untracked ones become
// new suggestions and, when sourceID is tracked, they join its endorsements.
// It returns how many suggestions were added.
func (c *Curator) AddDiscovered(ctx context.Context, sourceID string, featured []string) (int, error) {
	creators, err := c.store.GetCreators(ctx)
	if err != nil {
		return 0, err
	}
	suggestions, err := c.store.GetSuggestions(ctx)
	if err != nil {
		return 0, err
	}
	updated, added := recommend.AddCandidates(suggestions, creators, sourceID, featured)
	if added > 0 {
		if err := c.store.SaveSuggestions(ctx, updated); err != nil {
			return 0, err
		}
	}
	if src, ok := creators[sourceID]; ok {
		if err := c.store.SaveCreator(ctx, recommend.RecordEndorsements(src, featured)); err != nil {
			return added, err
		}
	}
	c.log.Info().Str("source", sourceID).Int("featured", len(featured)).Int("added", added).Msg("discovered")
	return added, nil
}

// UpdateSuggestionStatus marks a suggestion followed, ignored or new again.
func (c *Curator) UpdateSuggestionStatus(ctx context.Context, channelID string, status model.SuggestionStatus) error {
	if !status.Valid() {
		return fmt.Errorf("unknown status %q", status)
	}
	return c.store.UpdateSuggestionStatus(ctx, channelID, status)
}

// Suggestions lists every stored suggestion in discovery order.
func (c *Curator) Suggestions(ctx context.Context) ([]model.Suggestion, error) {
	return c.store.GetSuggestions(ctx)
}

// Enrich summarizes research text about a creator into its profile, within
// the configured enrichment budget.
func (c *Curator) Enrich(ctx context.Context, creatorID, research string) (model.Creator, error) {
	if c.gen == nil {
		return model.Creator{}, errors.New("enrich: no text generator configured")
	}
	budget := enrich.Budget{
		Store:      c.store,
		Type:       enrich.ActionEnrich,
		MaxPerHour: c.cfg.Enrichment.MaxPerHour,
		MaxPerDay:  c.cfg.Enrichment.MaxPerDay,
	}
	now := c.now()
	ok, err := budget.Allow(ctx, now)
	if err != nil {
		return model.Creator{}, err
	}
	if !ok {
		return model.Creator{}, ErrBudgetExhausted
	}
	cr, err := c.store.GetCreator(ctx, creatorID)
	if err != nil {
		return model.Creator{}, fmt.Errorf("enrich %s: %w", creatorID, err)
	}
	if err := budget.Record(ctx, now); err != nil {
		return model.Creator{}, err
	}
	out, err := enrich.EnrichCreator(ctx, cr, research, c.gen, c.stop)
	if err != nil {
		return cr, err
	}
	if err := c.store.SaveCreator(ctx, out); err != nil {
		return cr, err
	}
	c.log.Info().Str("creator", creatorID).Int("keywords", len(out.Keywords)).Msg("creator_enriched")
	return out, nil
}
