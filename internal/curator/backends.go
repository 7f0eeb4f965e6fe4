package curator

import (
	"curator/internal/breaker"
	"curator/internal/config"
	"curator/internal/embed"
	"curator/internal/feed"
	"curator/internal/ollama"
	"curator/internal/suggest"
)

// NewEmbedder builds the configured embedding backend behind a circuit
// breaker. It returns nil for provider "none".
func NewEmbedder(cfg config.EmbeddingConfig) embed.Embedder {
	switch cfg.Provider {
	case "ollama":
		inner := embed.NewOllamaEmbedder(ollama.NewClient(cfg.Host), cfg.Model)
		return embed.NewGuarded(inner, "ollama", breaker.DefaultSettings())
	case "openai":
		inner := embed.NewOpenAIEmbedder(cfg.APIKey, embed.WithOpenAIModel(cfg.Model), embed.WithOpenAIDimension(cfg.Dimension))
		return embed.NewGuarded(inner, "openai", breaker.DefaultSettings())
	default:
		return nil
	}
}

// NewGenerator builds the text-generation chain. With provider "none" the
// chain is empty and every reason comes from the template.
func NewGenerator(cfg config.LLMConfig) *suggest.Chain {
	var providers []suggest.Provider
	switch cfg.Provider {
	case "ollama":
		providers = append(providers, suggest.OllamaProvider{Client: ollama.NewClient(cfg.Host), Model: cfg.Model})
	case "openai":
		providers = append(providers, suggest.OpenAIProvider{APIKey: cfg.APIKey, Model: cfg.Model})
	}
	return suggest.NewChain(breaker.DefaultSettings(), providers...)
}

// FromConfig wires a Curator over st with every backend cfg asks for.
func FromConfig(st Store, cfg config.Config) *Curator {
	opts := []Option{
		WithGenerator(NewGenerator(cfg.LLM)),
		WithFeed(feed.NewFetcher()),
	}
	if e := NewEmbedder(cfg.Embedding); e != nil {
		opts = append(opts, WithEmbedder(e))
	}
	return New(st, cfg, opts...)
}
