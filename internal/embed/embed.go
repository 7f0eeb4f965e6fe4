// Package embed provides the embedding collaborators used for semantic ranking.
package embed

import (
	"context"
	"errors"
	"fmt"

	"curator/internal/breaker"
	"curator/internal/metrics"
)

// ErrUnavailable means no embedding could be produced right now. Callers
// degrade to keyword scoring.
var ErrUnavailable = errors.New("embedding backend unavailable")

// Embedder turns text into a vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// SuggestionText is the synthetic text embedded for a discovered candidate.
func SuggestionText(channelID, reason string) string {
	return channelID + ": " + reason
}

// Guarded wraps an Embedder with a circuit breaker. Every failure is reported
// as ErrUnavailable, wrapping the cause.
type Guarded struct {
	inner   Embedder
	backend string
	br      *breaker.Breaker[[]float32]
}

// NewGuarded guards inner. backend labels metrics (e.g. "ollama").
func NewGuarded(inner Embedder, backend string, s breaker.Settings) *Guarded {
	return &Guarded{inner: inner, backend: backend, br: breaker.New[[]float32]("embed-"+backend, s)}
}

func (g *Guarded) Embed(ctx context.Context, text string) ([]float32, error) {
	vec, err := g.br.Execute(func() ([]float32, error) {
		return g.inner.Embed(ctx, text)
	})
	if err != nil {
		metrics.IncEmbeddingFailure(g.backend)
		return nil, fmt.Errorf("%w: %s: %v", ErrUnavailable, g.backend, err)
	}
	if len(vec) == 0 {
		metrics.IncEmbeddingFailure(g.backend)
		return nil, fmt.Errorf("%w: %s returned no vector", ErrUnavailable, g.backend)
	}
	return vec, nil
}
