package embed

import (
	"context"

	"curator/internal/ollama"
)

// DefaultOllamaModel is a small general-purpose embedding model.
const DefaultOllamaModel = "nomic-embed-text"

// OllamaEmbedder embeds through a local Ollama server.
type OllamaEmbedder struct {
	client *ollama.Client
	model  string
}

func NewOllamaEmbedder(client *ollama.Client, model string) *OllamaEmbedder {
	if model == "" {
		model = DefaultOllamaModel
	}
	return &OllamaEmbedder{client: client, model: model}
}

func (e *OllamaEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return e.client.Embed(ctx, e.model, text)
}
