package suggest

import (
	"context"

	"curator/internal/breaker"
	"curator/internal/logging"
	"curator/internal/metrics"
)

const (
	reasonMaxTokens  = 50
	summaryMaxTokens = 200
)

// Provider is one text-generation backend.
type Provider interface {
	Source() string
	Complete(ctx context.Context, prompt string, maxTokens int) (string, error)
}

type guarded struct {
	Provider
	br *breaker.Breaker[string]
}

// Chain asks each provider in turn and falls back to Template, so
// GenerateReason never fails.
type Chain struct {
	providers []guarded
}

// NewChain guards every provider with its own breaker.
func NewChain(s breaker.Settings, providers ...Provider) *Chain {
	c := &Chain{}
	for _, p := range providers {
		c.providers = append(c.providers, guarded{Provider: p, br: breaker.New[string]("llm-"+p.Source(), s)})
	}
	return c
}

func (c *Chain) complete(ctx context.Context, prompt string, maxTokens int) (string, string, bool) {
	for _, p := range c.providers {
		text, err := p.br.Execute(func() (string, error) { return p.Complete(ctx, prompt, maxTokens) })
		if err != nil {
			logging.Debug().Err(err).Str("source", p.Source()).Msg("generation provider failed")
			continue
		}
		if text = cleanReply(text); text != "" {
			return text, p.Source(), true
		}
	}
	return "", "", false
}

func (c *Chain) GenerateReason(ctx context.Context, candidate, matched string, topics []string) (Reason, error) {
	r := Template(matched, topics)
	if text, src, ok := c.complete(ctx, reasonPrompt(candidate, matched, topics), reasonMaxTokens); ok {
		r = Reason{Text: text, Source: src}
	}
	metrics.IncReasonSource(r.Source)
	return r, nil
}

func (c *Chain) Summarize(ctx context.Context, name, research string) (string, error) {
	if research == "" {
		return "", ErrNoSummary
	}
	text, _, ok := c.complete(ctx, summaryPrompt(name, research), summaryMaxTokens)
	if !ok {
		return "", ErrNoSummary
	}
	return text, nil
}
